package main

import (
	"context"
	"os"
	"time"

	"github.com/arcadeline/backend/internal/accounts"
	"github.com/arcadeline/backend/internal/config"
	"github.com/arcadeline/backend/internal/database"
	"github.com/arcadeline/backend/internal/logging"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg := config.Load()
	logging.Setup(cfg.Environment, cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "change-me-in-production"
		log.Warn().Msg("using default admin password, set ADMIN_PASSWORD in production")
	}

	store := accounts.NewStore(db)
	if err := store.SetPassword(ctx, cfg.AdminUsername, password); err != nil {
		log.Fatal().Err(err).Str("username", cfg.AdminUsername).Msg("failed to create admin account")
	}

	log.Info().Str("username", cfg.AdminUsername).Msg("admin account created/updated")
}
