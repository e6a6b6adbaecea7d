package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/dmitrijs2005/keyshare/internal/client/config"

	gs "github.com/dmitrijs2005/keyshare/internal/server/grpc"
)

// caller is the part of gs.Client the CLI uses.
type caller interface {
	Call(ctx context.Context, method string, in, out any) error
}

type App struct {
	config *config.Config
	client caller
	conn   io.Closer
	reader *bufio.Reader
	out    io.Writer

	userName     string
	sessionToken string
	pinToken     string
}

func NewApp(c *config.Config) (*App, error) {
	conn, err := grpc.NewClient(c.ServerEndpointAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", c.ServerEndpointAddr, err)
	}

	return &App{
		config: c,
		client: gs.NewClient(conn),
		conn:   conn,
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}, nil
}

func (a *App) Run(ctx context.Context) {
	defer a.conn.Close()
	a.Root(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.sessionToken != ""
}

// call runs one server method with the current tokens and the configured
// timeout.
func (a *App) call(ctx context.Context, method string, in, out any) error {
	ctx, cancel := context.WithTimeout(ctx, a.config.CallTimeout)
	defer cancel()

	ctx = gs.WithTokens(ctx, a.sessionToken, a.pinToken)
	return a.client.Call(ctx, method, in, out)
}
