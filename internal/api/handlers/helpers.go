package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/arcadeline/backend/internal/auth"
	"github.com/arcadeline/backend/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Sessions is the identity provider used by the handlers.
type Sessions interface {
	Issue(ctx context.Context, username string) (string, error)
	Resolve(ctx context.Context, token string) (string, error)
	Revoke(ctx context.Context, token string) error
	AllowAttempt(ctx context.Context, username string) bool
	IsAdministrator(player string) bool
	TTL() time.Duration
}

// Accounts is the player login store.
type Accounts interface {
	Register(ctx context.Context, username, password string) (*models.User, error)
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
	ListUsernames(ctx context.Context) ([]string, error)
}

const playerKey = "player"

// sessionToken reads the session cookie, falling back to a bearer token.
func sessionToken(c *gin.Context) string {
	if token, err := c.Cookie(auth.CookieName); err == nil && token != "" {
		return token
	}
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return ""
}

// Identify resolves the session on every request. Anonymous requests carry an
// empty player.
func Identify(sessions Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		player := ""
		if token := sessionToken(c); token != "" {
			name, err := sessions.Resolve(c.Request.Context(), token)
			if err == nil {
				player = name
			} else if !errors.Is(err, auth.ErrNoSession) {
				log.Warn().Str("component", "auth").Err(err).Msg("session lookup failed")
			}
		}
		c.Set(playerKey, player)
		c.Next()
	}
}

func currentPlayer(c *gin.Context) string {
	return c.GetString(playerKey)
}

// RequirePlayer rejects anonymous requests.
func RequirePlayer() gin.HandlerFunc {
	return func(c *gin.Context) {
		if currentPlayer(c) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not logged in"})
			return
		}
		c.Next()
	}
}

// RequireAdmin rejects everyone but the administrator.
func RequireAdmin(sessions Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		player := currentPlayer(c)
		if player == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not logged in"})
			return
		}
		if !sessions.IsAdministrator(player) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "administrator only"})
			return
		}
		c.Next()
	}
}

func setSessionCookie(c *gin.Context, token string, ttl time.Duration, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.CookieName, token, int(ttl.Seconds()), "/", "", secure, true)
}

func clearSessionCookie(c *gin.Context, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.CookieName, "", -1, "/", "", secure, true)
}

// logPersistError records a failed durable write. The mutation itself has
// already happened, so the response does not change.
func logPersistError(c *gin.Context, action string, err error) {
	if err == nil {
		return
	}
	log.Error().Str("component", "api").Err(err).
		Str("action", action).
		Str("player", currentPlayer(c)).
		Msg("state change not persisted")
}
