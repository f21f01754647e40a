package main

import (
	"log"
	"time"

	"github.com/KiranBagal-17/gully/config"
	_ "github.com/KiranBagal-17/gully/docs"
	"github.com/KiranBagal-17/gully/internal/store"
	"github.com/KiranBagal-17/gully/routes"
)

// @title Gully REST API
// @version 1.0
// @description Live scoring server for gully cricket tournaments 🏏.
// @host localhost:8088
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := config.Initialize(); err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	cfg := config.GetConfig()

	var backend store.Store
	switch cfg.Store.Backend {
	case "memory":
		backend = store.NewMemoryStore()
		log.Println("Using in-memory store")
	default:
		if err := config.DB.AutoMigrate(&store.Document{}); err != nil {
			log.Fatalf("AutoMigrate failed: %v", err)
		}
		log.Println("AutoMigrate successful")
		backend = store.NewGormStore(config.DB)
	}

	st := store.WithRetry(backend, cfg.Store.RetryAttempts,
		time.Duration(cfg.Store.RetryBackoffMillis)*time.Millisecond)

	r := routes.SetupRoutes(st, cfg)

	// Use port from loaded configuration
	log.Printf("Starting server on port %s in %s mode\n", cfg.App.Port, cfg.App.Env)
	if err := r.Run(":" + cfg.App.Port); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
