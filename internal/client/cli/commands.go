package cli

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"google.golang.org/grpc/status"

	"github.com/dmitrijs2005/keyshare/internal/common"
	"github.com/dmitrijs2005/keyshare/internal/cryptox"
	"github.com/dmitrijs2005/keyshare/internal/server/proofs"

	gs "github.com/dmitrijs2005/keyshare/internal/server/grpc"
)

// challengeBits bounds the self-test challenge used by prove.
const challengeBits = 256

func (a *App) printErr(err error) {
	fmt.Fprintln(a.out, "Error:", status.Convert(err).Message())
}

func (a *App) requireLogin() bool {
	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, "Please log in first")
		return false
	}
	return true
}

func (a *App) ping(ctx context.Context) {
	var resp gs.PingResponse
	if err := a.call(ctx, gs.MethodPing, &gs.Empty{}, &resp); err != nil {
		a.printErr(err)
		return
	}
	fmt.Fprintln(a.out, "Server:", resp.Status)
}

func (a *App) register(ctx context.Context) {
	userName, err := GetSimpleText(a.reader, "Enter user name", a.out)
	if err != nil {
		a.printErr(err)
		return
	}

	password, err := GetSecret("Enter password", a.out)
	if err != nil {
		a.printErr(err)
		return
	}
	defer common.WipeByteArray(password)

	pin, err := GetSecret("Choose PIN", a.out)
	if err != nil {
		a.printErr(err)
		return
	}
	defer common.WipeByteArray(pin)

	_, pk, created, err := loadOrCreateHolderKey(a.config.KeyFile)
	if err != nil {
		a.printErr(err)
		return
	}
	if created {
		fmt.Fprintln(a.out, "New holder key saved to", a.config.KeyFile)
	}

	req := &gs.RegisterRequest{
		Username:  userName,
		Password:  string(password),
		Pin:       string(pin),
		PublicKey: pk.Bytes(),
	}
	var resp gs.RegisterResponse
	if err := a.call(ctx, gs.MethodRegister, req, &resp); err != nil {
		a.printErr(err)
		return
	}

	fmt.Fprintln(a.out, "Registered, account", resp.ID)
}

func (a *App) login(ctx context.Context) {
	userName, err := GetSimpleText(a.reader, "Enter user name", a.out)
	if err != nil {
		a.printErr(err)
		return
	}

	password, err := GetSecret("Enter password", a.out)
	if err != nil {
		a.printErr(err)
		return
	}
	defer common.WipeByteArray(password)

	a.logout()

	var resp gs.LoginResponse
	if err := a.call(ctx, gs.MethodLogin, &gs.LoginRequest{Username: userName, Password: string(password)}, &resp); err != nil {
		fmt.Fprintln(a.out, "Login unsuccessful:", status.Convert(err).Message())
		return
	}

	a.userName = userName
	a.sessionToken = resp.SessionToken
	fmt.Fprintln(a.out, "Login successful")
}

func (a *App) logout() {
	a.userName = ""
	a.sessionToken = ""
	a.pinToken = ""
}

func (a *App) checkPin(ctx context.Context) {
	if !a.requireLogin() {
		return
	}

	pin, err := GetSecret("Enter PIN", a.out)
	if err != nil {
		a.printErr(err)
		return
	}
	defer common.WipeByteArray(pin)

	var resp gs.CheckPinResponse
	if err := a.call(ctx, gs.MethodCheckPin, &gs.CheckPinRequest{Pin: string(pin)}, &resp); err != nil {
		a.printErr(err)
		return
	}

	switch resp.Status {
	case gs.PinStatusSuccess:
		a.pinToken = resp.Token
		fmt.Fprintln(a.out, "PIN accepted")
	case gs.PinStatusFailure:
		fmt.Fprintf(a.out, "Wrong PIN, %d tries remaining\n", resp.TriesRemaining)
	default:
		a.pinToken = ""
		fmt.Fprintf(a.out, "PIN blocked for %d seconds\n", resp.BlockedSeconds)
	}
}

func (a *App) status(ctx context.Context) {
	if !a.requireLogin() {
		return
	}

	var resp gs.AccountResponse
	if err := a.call(ctx, gs.MethodGetAccount, &gs.Empty{}, &resp); err != nil {
		a.printErr(err)
		return
	}

	fmt.Fprintf(a.out, "Account %s (%s)\n", resp.Username, resp.ID)
	fmt.Fprintf(a.out, "  enrolled: %t\n  enabled: %t\n  email issued: %t\n", resp.Enrolled, resp.Enabled, resp.EmailIssued)
}

func (a *App) logs(ctx context.Context, args []string) {
	if !a.requireLogin() {
		return
	}

	before := time.Now().Unix()
	if len(args) > 0 {
		v, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			fmt.Fprintln(a.out, "Usage: logs [before-unix-time]")
			return
		}
		before = v
	}

	var page gs.LogsResponse
	if err := a.call(ctx, gs.MethodLogs, &gs.LogsRequest{Before: before}, &page); err != nil {
		a.printErr(err)
		return
	}

	if len(page.Entries) == 0 {
		fmt.Fprintln(a.out, "No log entries")
	}
	for _, e := range page.Entries {
		ts := time.Unix(e.Time, 0).UTC().Format(time.DateTime)
		if e.Param != nil {
			fmt.Fprintf(a.out, "%s  %s  %d\n", ts, e.Event, *e.Param)
		} else {
			fmt.Fprintf(a.out, "%s  %s\n", ts, e.Event)
		}
	}
	if page.Prev != nil {
		fmt.Fprintf(a.out, "newer: logs %d\n", *page.Prev)
	}
	if page.Next != nil {
		fmt.Fprintf(a.out, "older: logs %d\n", *page.Next)
	}
}

// prove asks the server for commitments on the given keys, answers a random
// challenge and checks the returned fragment with the holder key.
func (a *App) prove(ctx context.Context, args []string) {
	if !a.requireLogin() {
		return
	}

	keys, err := parseKeys(args)
	if err != nil {
		fmt.Fprintln(a.out, "Usage: prove <issuer> <counter> [<issuer> <counter>...]")
		return
	}

	if a.pinToken == "" {
		fmt.Fprintln(a.out, "Enter your PIN first (pin)")
		return
	}

	sk, _, _, err := loadOrCreateHolderKey(a.config.KeyFile)
	if err != nil {
		a.printErr(err)
		return
	}

	var cms gs.GetCommitmentsResponse
	if err := a.call(ctx, gs.MethodGetCommitments, &gs.GetCommitmentsRequest{Keys: keys}, &cms); err != nil {
		a.printErr(err)
		return
	}

	challenge, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), challengeBits))
	if err != nil {
		a.printErr(err)
		return
	}

	var fragment gs.GetResponseReply
	if err := a.call(ctx, gs.MethodGetResponse, &gs.GetResponseRequest{Challenge: challenge}, &fragment); err != nil {
		a.printErr(err)
		return
	}

	if _, err := cryptox.OpenResponse(sk, &fragment, cms.Commitments); err != nil {
		fmt.Fprintln(a.out, "Proof check failed:", err)
		return
	}
	fmt.Fprintf(a.out, "Proof verified for %d key(s)\n", len(keys))
}

func parseKeys(args []string) ([]proofs.KeyID, error) {
	if len(args) == 0 || len(args)%2 != 0 {
		return nil, fmt.Errorf("want issuer/counter pairs")
	}
	keys := make([]proofs.KeyID, 0, len(args)/2)
	for i := 0; i < len(args); i += 2 {
		counter, err := strconv.Atoi(args[i+1])
		if err != nil {
			return nil, err
		}
		keys = append(keys, proofs.KeyID{Issuer: args[i], Counter: counter})
	}
	return keys, nil
}

func (a *App) block(ctx context.Context) {
	if !a.requireLogin() {
		return
	}

	answer, err := GetSimpleText(a.reader, "Block this account? Only an operator can re-enable it (yes/no)", a.out)
	if err != nil || answer != "yes" {
		return
	}

	if err := a.call(ctx, gs.MethodSetEnabled, &gs.SetFlagRequest{Value: false}, &gs.Empty{}); err != nil {
		a.printErr(err)
		return
	}
	a.pinToken = ""
	fmt.Fprintln(a.out, "Account blocked")
}

func (a *App) unregister(ctx context.Context) {
	if !a.requireLogin() {
		return
	}

	answer, err := GetSimpleText(a.reader, "Delete this account and its log? (yes/no)", a.out)
	if err != nil || answer != "yes" {
		return
	}

	if err := a.call(ctx, gs.MethodUnregister, &gs.Empty{}, &gs.Empty{}); err != nil {
		a.printErr(err)
		return
	}
	a.logout()
	fmt.Fprintln(a.out, "Account deleted")
}
