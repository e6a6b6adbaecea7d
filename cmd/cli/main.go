package main

import (
	"context"
	"log"

	"github.com/dmitrijs2005/keyshare/internal/client/cli"
	"github.com/dmitrijs2005/keyshare/internal/client/config"
)

func main() {
	app, err := cli.NewApp(config.LoadConfig())
	if err != nil {
		log.Fatalf("keyshare cli: %v", err)
	}
	app.Run(context.Background())
}
