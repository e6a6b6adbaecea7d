package cli

import (
	"context"
	"fmt"
	"strings"
)

func (a *App) getStatus() string {
	if a.userName == "" {
		return ""
	}
	if a.pinToken != "" {
		return fmt.Sprintf("(%s, pin ok)", a.userName)
	}
	return fmt.Sprintf("(%s)", a.userName)
}

func (a *App) Root(ctx context.Context) {

	fmt.Fprintln(a.out, "Welcome to keyshare CLI (type 'help' for commands)")

	for {
		fmt.Fprintf(a.out, "ks %s> ", a.getStatus())
		line, err := a.reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		if !a.dispatch(ctx, parts[0], parts[1:]) {
			return
		}
	}
}

// dispatch runs one command and reports whether the loop should go on.
func (a *App) dispatch(ctx context.Context, cmd string, args []string) bool {
	switch cmd {
	case "help":
		if a.isLoggedIn() {
			fmt.Fprintln(a.out, "Available commands: pin, status, logs [before], prove <issuer> <counter>..., block, unregister, logout, exit")
		} else {
			fmt.Fprintln(a.out, "Available commands: ping, register, login, exit")
		}
	case "ping":
		a.ping(ctx)
	case "register":
		a.register(ctx)
	case "login":
		a.login(ctx)
	case "pin":
		a.checkPin(ctx)
	case "status":
		a.status(ctx)
	case "logs":
		a.logs(ctx, args)
	case "prove":
		a.prove(ctx, args)
	case "block":
		a.block(ctx)
	case "unregister":
		a.unregister(ctx)
	case "logout":
		a.logout()
	case "exit", "quit":
		fmt.Fprintln(a.out, "Bye!")
		return false
	default:
		fmt.Fprintln(a.out, "Unknown command:", cmd)
	}
	return true
}
