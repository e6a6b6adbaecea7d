package main

import (
	"context"
	"log"

	"github.com/dmitrijs2005/keyshare/internal/server"
	"github.com/dmitrijs2005/keyshare/internal/server/config"
)

func main() {
	app, err := server.NewApp(config.LoadConfig())
	if err != nil {
		log.Fatalf("keyshare server: %v", err)
	}
	app.Run(context.Background())
}
