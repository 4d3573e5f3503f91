package main

import (
	"context"
	"log"
	"time"

	"github.com/sir_venger/multipart_lite/internal/config"
	meta "github.com/sir_venger/multipart_lite/internal/repo"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	if meta.IsMemoryDSN(cfg.MetaDSN) {
		log.Println("memory meta store selected, skipping migrations")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := meta.ApplyMigrations(ctx, cfg.MetaDSN); err != nil {
		log.Fatal(err)
	}

	log.Println("migrations applied")
}
