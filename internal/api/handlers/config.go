package handlers

import (
	"net/http"

	"github.com/arcadeline/backend/internal/gacha"
	"github.com/arcadeline/backend/internal/game"
	"github.com/gin-gonic/gin"
)

// GetConfig returns the values the frontend needs to render the board.
func GetConfig(m *game.Manager, machine *gacha.Machine, baseURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		s := m.Settings()
		c.JSON(http.StatusOK, gin.H{
			"games":                     m.Games(),
			"turn_timeout_seconds":      int(s.TurnTimeout.Seconds()),
			"courtesy_cooldown_seconds": int(s.CourtesyCooldown.Seconds()),
			"gacha_minutes_per_pull":    machine.MinutesPerPull(),
			"join_url":                  baseURL,
		})
	}
}
