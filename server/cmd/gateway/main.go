package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"AESFlow/server/internal/api/gateway"
	"AESFlow/server/internal/config"
	"AESFlow/server/internal/pkg/helpers"
	"AESFlow/server/internal/services/cipher"
	"AESFlow/server/internal/storage"
)

// connectArchive opens the trace archive, retrying while the database starts
func connectArchive(cfg config.DatabaseConfig, logger *helpers.Logger) *storage.DB {
	dbConfig := storage.Config{
		Host:     cfg.Host,
		Port:     cfg.Port,
		User:     cfg.User,
		Password: cfg.Password,
		Database: cfg.Database,
		SSLMode:  cfg.SSLMode,
	}

	var db *storage.DB
	var err error
	maxRetries := 30
	retryDelay := 2 * time.Second

	for attempt := 1; attempt <= maxRetries; attempt++ {
		db, err = storage.New(dbConfig)
		if err == nil {
			logger.Info("Connected to database", attempt)
			break
		}

		if attempt < maxRetries {
			logger.Warn(fmt.Sprintf("Failed to connect to database (attempt %d/%d), retrying in %v", attempt, maxRetries, retryDelay), err)
			time.Sleep(retryDelay)
		} else {
			log.Fatalf("Failed to connect to database after %d attempts: %v", maxRetries, err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.InitSchema(ctx); err != nil {
		log.Fatalf("Failed to initialize database schema: %v", err)
	}
	logger.Info("Database schema initialized")

	return db
}

func main() {
	logger := helpers.NewLogger("Main")

	// Load configuration
	cfg := config.Load()
	logger.Info("Configuration loaded", cfg)

	if !helpers.ValidKeyBits(cfg.Engine.DefaultKeyBits) {
		log.Fatalf("ENGINE_DEFAULT_KEY_BITS must be 128, 192 or 256, got %d", cfg.Engine.DefaultKeyBits)
	}

	// The archive is optional; keep the interface nil when it is off
	var archive cipher.Archive
	if cfg.Database.Enabled {
		db := connectArchive(cfg.Database, logger)
		defer db.Close()
		archive = db
	} else {
		logger.Info("Run archive disabled")
	}

	cipherService := cipher.NewService(archive, cfg.Engine.MaxMessageBytes)

	gatewayServer := gateway.New(
		fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		cipherService,
		cfg.Engine.DefaultKeyBits,
	)

	// Start gateway server
	if err := gatewayServer.Start(); err != nil {
		log.Fatalf("Gateway server failed: %v", err)
	}
}
