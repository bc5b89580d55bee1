package handlers

import (
	"net/http"
	"strconv"

	"github.com/arcadeline/backend/internal/admin"
	"github.com/arcadeline/backend/internal/game"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

func audit(c *gin.Context, db *sqlx.DB, action string, details map[string]interface{}, success bool) {
	admin.LogAdminAction(c.Request.Context(), db, currentPlayer(c), c.ClientIP(), c.FullPath(), action, details, success)
}

// TogglePause freezes or resumes the whole arcade.
func TogglePause(m *game.Manager, db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		paused, err := m.TogglePause(c.Request.Context())
		logPersistError(c, "pause", err)
		audit(c, db, "toggle_pause", map[string]interface{}{"paused": paused}, true)
		c.JSON(http.StatusOK, gin.H{"paused": paused})
	}
}

// ResetStats starts a new stats period. Lifetime play time is kept.
func ResetStats(m *game.Manager, db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		applied, err := m.ResetStats(c.Request.Context())
		logPersistError(c, "reset_stats", err)
		audit(c, db, "reset_stats", nil, applied)
		c.JSON(http.StatusOK, gin.H{"applied": applied})
	}
}

// ListUsers returns every registered username, for the admin pickers.
func ListUsers(store Accounts, db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := store.ListUsernames(c.Request.Context())
		if err != nil {
			log.Error().Str("component", "admin").Err(err).Msg("failed to list users")
			audit(c, db, "list_users", nil, false)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"users": users})
	}
}

// GetAuditLog pages through the admin audit trail.
func GetAuditLog(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
		offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

		logs, err := admin.GetAdminAuditLogs(c.Request.Context(), db, limit, offset)
		if err != nil {
			log.Error().Str("component", "admin").Err(err).Msg("failed to read audit log")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"entries": logs})
	}
}
