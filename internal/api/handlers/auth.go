package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/arcadeline/backend/internal/accounts"
	"github.com/arcadeline/backend/internal/game"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func bindCredentials(c *gin.Context) (credentials, bool) {
	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password required"})
		return req, false
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password required"})
		return req, false
	}
	return req, true
}

// Register creates an account and logs the new player in.
func Register(store Accounts, sessions Sessions, secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, ok := bindCredentials(c)
		if !ok {
			return
		}
		ctx := c.Request.Context()
		if !sessions.AllowAttempt(ctx, req.Username) {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many attempts, try again shortly"})
			return
		}
		if sessions.IsAdministrator(req.Username) {
			c.JSON(http.StatusForbidden, gin.H{"error": "username is reserved"})
			return
		}

		user, err := store.Register(ctx, req.Username, req.Password)
		switch {
		case errors.Is(err, accounts.ErrUsernameTaken):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		case errors.Is(err, accounts.ErrInvalidUsername), errors.Is(err, accounts.ErrPasswordTooShort):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		case err != nil:
			log.Error().Str("component", "api").Err(err).Msg("registration failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		token, err := sessions.Issue(ctx, user.Username)
		if err != nil {
			log.Error().Str("component", "api").Err(err).Str("player", user.Username).Msg("failed to issue session")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		setSessionCookie(c, token, sessions.TTL(), secure)
		log.Info().Str("component", "api").Str("player", user.Username).Msg("player registered")
		c.JSON(http.StatusCreated, gin.H{"username": user.Username, "token": token})
	}
}

// Login checks the password and starts a session.
func Login(store Accounts, sessions Sessions, secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, ok := bindCredentials(c)
		if !ok {
			return
		}
		ctx := c.Request.Context()
		if !sessions.AllowAttempt(ctx, req.Username) {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many attempts, try again shortly"})
			return
		}

		user, err := store.Authenticate(ctx, req.Username, req.Password)
		if errors.Is(err, accounts.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		if err != nil {
			log.Error().Str("component", "api").Err(err).Msg("login failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		token, err := sessions.Issue(ctx, user.Username)
		if err != nil {
			log.Error().Str("component", "api").Err(err).Str("player", user.Username).Msg("failed to issue session")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		setSessionCookie(c, token, sessions.TTL(), secure)
		c.JSON(http.StatusOK, gin.H{
			"username": user.Username,
			"token":    token,
			"is_admin": sessions.IsAdministrator(user.Username),
		})
	}
}

// Logout takes the player out of every line and slot, then ends the session.
func Logout(m *game.Manager, sessions Sessions, secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if player := currentPlayer(c); player != "" {
			_, err := m.Withdraw(ctx, player)
			logPersistError(c, "logout", err)
		}
		if token := sessionToken(c); token != "" {
			if err := sessions.Revoke(ctx, token); err != nil {
				log.Warn().Str("component", "api").Err(err).Msg("failed to revoke session")
			}
		}
		clearSessionCookie(c, secure)
		c.JSON(http.StatusOK, gin.H{"logged_out": true})
	}
}
