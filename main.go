package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"path/filepath"
	"syscall"

	"ghostscout/internal/config"
	"ghostscout/internal/store"
)

func main() {
	configPath := flag.String("config", filepath.Join(store.AppDir(), config.FileName), "Path to config.yaml")
	update := flag.Bool("update", false, "Refresh the OP.GG counter data on startup")
	ask := flag.String("ask", "", "Ask the assistant a question")
	history := flag.String("history", "", "Show recent games for a Riot ID (e.g. 'Player#JP1')")
	engine := flag.String("engine", "", "AI engine name from the config (default: first)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := NewApp(ctx, cfg, *engine)
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}
	defer app.shutdown()

	if *update {
		app.StartUpdate()
	}
	if *ask != "" {
		app.Ask(*ask)
	}
	if *history != "" {
		app.LookupHistory(*history)
	}

	app.Run(ctx)
	log.Println("Shutting down...")
}
