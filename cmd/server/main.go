package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/arcadeline/backend/internal/accounts"
	"github.com/arcadeline/backend/internal/admin"
	"github.com/arcadeline/backend/internal/api"
	"github.com/arcadeline/backend/internal/auth"
	"github.com/arcadeline/backend/internal/config"
	"github.com/arcadeline/backend/internal/database"
	"github.com/arcadeline/backend/internal/events"
	"github.com/arcadeline/backend/internal/gacha"
	"github.com/arcadeline/backend/internal/game"
	"github.com/arcadeline/backend/internal/logging"
	"github.com/arcadeline/backend/internal/metrics"
	"github.com/arcadeline/backend/internal/migrations"
	"github.com/arcadeline/backend/internal/redis"
	"github.com/arcadeline/backend/internal/storage"
	"github.com/arcadeline/backend/internal/ws"
	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

const idleRunMinimum = 30 * time.Second

func main() {
	cfg := config.Load()
	logging.Setup(cfg.Environment, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	arcade, err := config.LoadArcade(cfg.ArcadeFile)
	if err != nil {
		log.Fatal().Err(err).Str("file", cfg.ArcadeFile).Msg("failed to load arcade roster")
	}
	cfg.Arcade = arcade

	db, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if cfg.MigrateOnStart {
		log.Info().Msg("running DB migrations on startup")
		if err := migrations.RunMigrations(cfg.DatabaseURL, "migrations"); err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations")
		}
	}

	if err := admin.SeedRuntimeConfig(ctx, db, cfg); err != nil {
		log.Warn().Err(err).Msg("failed to seed runtime config")
	}
	if err := admin.ApplyRuntimeConfigToConfig(ctx, db, cfg); err != nil {
		log.Warn().Err(err).Msg("failed to apply runtime config")
	}

	rdb, err := redis.Connect(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer rdb.Close()

	mt := metrics.New("arcade")
	hub := ws.NewHub(mt)
	var notifier game.Notifier = hub

	var bus events.Bus
	switch cfg.EventBus {
	case "redis":
		bus = events.NewRedisBus(rdb)
	case "nats":
		nb, err := events.ConnectNATS(cfg.NATSURL)
		if err != nil {
			log.Fatal().Err(err).Str("url", cfg.NATSURL).Msg("failed to connect to NATS")
		}
		bus = nb
	case "none", "":
	default:
		log.Warn().Str("event_bus", cfg.EventBus).Msg("unknown event bus, live updates stay local")
	}
	if bus != nil {
		defer bus.Close()
		relay := events.NewRelay(hub, bus)
		if err := relay.Run(ctx); err != nil {
			log.Fatal().Err(err).Str("event_bus", cfg.EventBus).Msg("failed to start event relay")
		}
		notifier = relay
	}

	store := storage.New(db)
	machine := gacha.NewMachine(arcade.Gacha, cfg.GachaMinutesPerPull, gacha.WithStore(store))
	if err := machine.Load(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to load gacha state")
	}

	clock := clockwork.NewRealClock()
	manager := game.NewManager(arcade.Games, game.Settings{
		TurnTimeout:      cfg.TurnTimeout(),
		CourtesyCooldown: cfg.CourtesyCooldown(),
	},
		game.WithClock(clock),
		game.WithStore(store),
		game.WithRewarder(machine),
		game.WithNotifier(notifier),
		game.WithMetrics(mt),
	)
	if err := manager.Load(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to restore game state")
	}
	manager.StartExpiryWorker(ctx, cfg.ExpiryPollInterval())

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), logging.GinLogger())

	api.SetupRoutes(router, api.Deps{
		Config:   cfg,
		DB:       db,
		Manager:  manager,
		Gacha:    machine,
		IdleRuns: gacha.NewIdleRuns(clock, idleRunMinimum),
		Sessions: auth.NewSessions(rdb, cfg),
		Accounts: accounts.NewStore(db),
		Hub:      hub,
		Metrics:  mt,
		Notify:   notifier.Notify,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Strs("games", arcade.Games).Str("join_url", cfg.BaseURL).Msg("starting arcade server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	if err := machine.Persist(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("failed to persist gacha state on shutdown")
	}
}
