package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/tropicbliss/ESD-Project/internal/app/config"
	"github.com/tropicbliss/ESD-Project/internal/app/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := worker.Run(ctx, cfg); err != nil {
		log.Fatalf("checkout worker exited: %v", err)
	}
}
