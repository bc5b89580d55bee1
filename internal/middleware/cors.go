package middleware

import (
	"net/url"
	"strings"
	"time"

	"github.com/arcadeline/backend/internal/config"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// AllowedOrigins lists the browser origins allowed to call the API with
// credentials: the frontend, the kiosk base URL and, in development, the local
// Vite server.
func AllowedOrigins(cfg *config.Config) []string {
	var origins []string
	seen := make(map[string]bool)
	add := func(raw string) {
		origin := originOf(raw)
		if origin == "" || seen[origin] {
			return
		}
		seen[origin] = true
		origins = append(origins, origin)
	}

	add(cfg.FrontendURL)
	add(cfg.BaseURL)
	if cfg.Environment == "development" {
		add("http://localhost:5173")
		add("http://127.0.0.1:5173")
	}
	return origins
}

// originOf reduces a URL to scheme://host[:port].
func originOf(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

// CORSMiddleware returns a CORS middleware configured for the environment
func CORSMiddleware(cfg *config.Config) gin.HandlerFunc {
	origins := AllowedOrigins(cfg)
	log.Info().Str("component", "cors").Str("env", cfg.Environment).Strs("origins", origins).Msg("cors configured")

	corsConfig := cors.Config{
		AllowOrigins: origins,
		AllowMethods: []string{
			"GET", "POST", "PUT", "OPTIONS",
		},
		AllowHeaders: []string{
			"Origin", "Content-Length", "Content-Type", "Authorization",
			"Accept", "Cache-Control", "X-Requested-With",
		},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 {
		corsConfig.AllowOriginFunc = func(string) bool { return false }
	}
	return cors.New(corsConfig)
}

// WebSocketCORSCheck validates WebSocket upgrade origins. Same-host upgrades
// are always allowed so the kiosk page served by this process can connect.
func WebSocketCORSCheck(cfg *config.Config) gin.HandlerFunc {
	allowed := make(map[string]bool)
	for _, o := range AllowedOrigins(cfg) {
		allowed[o] = true
	}

	return func(c *gin.Context) {
		if strings.ToLower(c.GetHeader("Connection")) != "upgrade" ||
			strings.ToLower(c.GetHeader("Upgrade")) != "websocket" {
			c.Next()
			return
		}

		origin := c.GetHeader("Origin")
		if origin == "" {
			c.Next()
			return
		}
		if allowed[origin] {
			c.Next()
			return
		}
		if u, err := url.Parse(origin); err == nil && u.Host == c.Request.Host {
			c.Next()
			return
		}
		if cfg.Environment == "development" &&
			(strings.HasPrefix(origin, "http://localhost:") || strings.HasPrefix(origin, "http://127.0.0.1:")) {
			c.Next()
			return
		}

		c.AbortWithStatusJSON(403, gin.H{"error": "WebSocket origin not allowed"})
	}
}
