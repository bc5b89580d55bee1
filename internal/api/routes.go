package api

import (
	"github.com/arcadeline/backend/internal/api/handlers"
	"github.com/arcadeline/backend/internal/config"
	"github.com/arcadeline/backend/internal/gacha"
	"github.com/arcadeline/backend/internal/game"
	"github.com/arcadeline/backend/internal/metrics"
	"github.com/arcadeline/backend/internal/middleware"
	"github.com/arcadeline/backend/internal/ws"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

// Deps are the collaborators the routes are wired to. DB may be nil, which
// disables the audit trail and runtime config.
type Deps struct {
	Config   *config.Config
	DB       *sqlx.DB
	Manager  *game.Manager
	Gacha    *gacha.Machine
	IdleRuns *gacha.IdleRuns
	Sessions handlers.Sessions
	Accounts handlers.Accounts
	Hub      *ws.Hub
	Metrics  *metrics.Metrics
	// Notify pings live subscribers after changes made outside the manager.
	Notify func()
}

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, d Deps) {
	cfg := d.Config
	router.Use(middleware.CORSMiddleware(cfg))

	if cfg.Environment != "production" {
		router.Use(func(c *gin.Context) {
			c.Header("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
			c.Header("Pragma", "no-cache")
			c.Header("Expires", "0")
			c.Next()
		})
		log.Debug().Str("component", "api").Msg("no-cache headers enabled")
	}

	secure := cfg.Environment == "production"
	m := d.Manager

	v1 := router.Group("/api/v1")
	v1.Use(handlers.Identify(d.Sessions))
	{
		v1.GET("/health", handlers.HealthCheck)
		v1.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
		v1.GET("/qr", handlers.JoinQRCode(cfg.BaseURL))
		v1.GET("/config", handlers.GetConfig(m, d.Gacha, cfg.BaseURL))

		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/register", handlers.Register(d.Accounts, d.Sessions, secure))
			authGroup.POST("/login", handlers.Login(d.Accounts, d.Sessions, secure))
			authGroup.POST("/logout", handlers.Logout(m, d.Sessions, secure))
		}

		v1.GET("/board", handlers.GetBoard(m, d.Gacha, d.Sessions))
		v1.GET("/ws", middleware.WebSocketCORSCheck(cfg), ws.ServeWS(d.Hub))
		v1.GET("/events", ws.ServeSSE(d.Hub))

		player := v1.Group("", handlers.RequirePlayer())
		{
			games := player.Group("/games/:name")
			games.POST("/join", handlers.JoinGame(m))
			games.POST("/leave", handlers.LeaveGame(m))
			games.POST("/accept", handlers.AcceptTurn(m))
			games.POST("/skip", handlers.SkipTurn(m))
			games.POST("/done", handlers.FinishTurn(m))
			games.POST("/swap", handlers.SwapPlaces(m))

			player.GET("/gacha", handlers.GetCollection(d.Gacha))
			player.POST("/gacha/dismiss", handlers.DismissPull(d.Gacha))
			player.POST("/idle/start", handlers.StartIdleRun(d.IdleRuns))
			player.POST("/idle/complete", handlers.CompleteIdleRun(d.IdleRuns, d.Gacha, d.Notify))
		}

		adminGroup := v1.Group("/admin", handlers.RequireAdmin(d.Sessions))
		{
			adminGroup.POST("/pause", handlers.TogglePause(m, d.DB))
			adminGroup.POST("/reset-stats", handlers.ResetStats(m, d.DB))
			adminGroup.GET("/users", handlers.ListUsers(d.Accounts, d.DB))
			adminGroup.GET("/audit", handlers.GetAuditLog(d.DB))
			adminGroup.GET("/config", handlers.GetRuntimeConfig(d.DB))
			adminGroup.PUT("/config/:key", handlers.UpdateRuntimeConfig(d.DB, m, d.Gacha))

			games := adminGroup.Group("/games/:name")
			games.POST("/kick", handlers.KickPlayer(m, d.DB))
			games.POST("/remove", handlers.RemoveFromQueue(m, d.DB))
			games.POST("/bump-up", handlers.BumpUp(m, d.DB))
			games.POST("/bump-down", handlers.BumpDown(m, d.DB))
			games.POST("/set-playing", handlers.SetPlaying(m, d.DB))
			games.POST("/add", handlers.AddToQueue(m, d.DB))
		}
	}
}
