package handlers

import (
	"net/http"
	"strings"

	"github.com/arcadeline/backend/internal/game"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

// KickPlayer ends the current turn on the named game, crediting play time.
func KickPlayer(m *game.Manager, db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		name, ok := lookupGame(c, m)
		if !ok {
			return
		}
		applied, err := m.Kick(c.Request.Context(), name)
		logPersistError(c, "kick", err)
		audit(c, db, "kick", map[string]interface{}{"game": name}, applied)
		c.JSON(http.StatusOK, gin.H{"applied": applied})
	}
}

// adminPlayerAction applies fn to the player named in the request body.
func adminPlayerAction(m *game.Manager, db *sqlx.DB, action string, fn gameAction) gin.HandlerFunc {
	return func(c *gin.Context) {
		name, ok := lookupGame(c, m)
		if !ok {
			return
		}
		var req struct {
			Player string `json:"player"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Player) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "player required"})
			return
		}
		player := strings.TrimSpace(req.Player)

		applied, err := fn(c.Request.Context(), name, player)
		logPersistError(c, action, err)
		audit(c, db, action, map[string]interface{}{"game": name, "player": player}, applied)
		c.JSON(http.StatusOK, gin.H{"applied": applied})
	}
}

func RemoveFromQueue(m *game.Manager, db *sqlx.DB) gin.HandlerFunc {
	return adminPlayerAction(m, db, "remove_from_queue", m.RemoveFromQueue)
}

func BumpUp(m *game.Manager, db *sqlx.DB) gin.HandlerFunc {
	return adminPlayerAction(m, db, "bump_up", m.BumpUp)
}

func BumpDown(m *game.Manager, db *sqlx.DB) gin.HandlerFunc {
	return adminPlayerAction(m, db, "bump_down", m.BumpDown)
}

// SetPlaying force-assigns a player to the game with the turn already
// accepted.
func SetPlaying(m *game.Manager, db *sqlx.DB) gin.HandlerFunc {
	return adminPlayerAction(m, db, "set_playing", m.SetPlaying)
}

// AddToQueue appends a player to the line, ignoring courtesy cooldowns.
func AddToQueue(m *game.Manager, db *sqlx.DB) gin.HandlerFunc {
	return adminPlayerAction(m, db, "add_to_queue", m.AddToQueue)
}
