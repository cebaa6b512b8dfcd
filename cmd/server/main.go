package main

import (
	"context"
	"log"

	"github.com/dmitrijs2005/insight/internal/server"
	"github.com/dmitrijs2005/insight/internal/server/config"
)

func main() {
	cfg := config.LoadConfig()

	app, err := server.NewApp(cfg)
	if err != nil {
		log.Fatalf("init error: %v", err)
	}

	app.Run(context.Background())
}
