package main

import (
	"context"
	"log"
	"time"

	"github.com/tropicbliss/ESD-Project/internal/app/config"
	"github.com/tropicbliss/ESD-Project/internal/app/purger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := purger.Run(ctx, cfg); err != nil {
		log.Fatalf("failed to purge saga journal: %v", err)
	}
}
