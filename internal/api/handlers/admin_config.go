package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/arcadeline/backend/internal/admin"
	"github.com/arcadeline/backend/internal/config"
	"github.com/arcadeline/backend/internal/gacha"
	"github.com/arcadeline/backend/internal/game"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

// GetRuntimeConfig lists the admin-editable settings.
func GetRuntimeConfig(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "runtime config unavailable"})
			return
		}
		configs, err := admin.GetAllRuntimeConfig(c.Request.Context(), db)
		if err != nil {
			log.Error().Str("component", "admin").Err(err).Msg("failed to read runtime config")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"config": configs})
	}
}

// UpdateRuntimeConfig stores a new value and pushes it into the running
// manager and gacha machine.
func UpdateRuntimeConfig(db *sqlx.DB, m *game.Manager, machine *gacha.Machine) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "runtime config unavailable"})
			return
		}
		key := c.Param("key")
		var req struct {
			Value string `json:"value"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "value required"})
			return
		}

		err := admin.UpdateRuntimeConfigValue(c.Request.Context(), db, key, req.Value, currentPlayer(c))
		if errors.Is(err, admin.ErrUnknownConfigKey) {
			audit(c, db, "update_config", map[string]interface{}{"key": key, "value": req.Value}, false)
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		if err != nil {
			audit(c, db, "update_config", map[string]interface{}{"key": key, "value": req.Value}, false)
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		applyLive(m, machine, key, req.Value)
		audit(c, db, "update_config", map[string]interface{}{"key": key, "value": req.Value}, true)
		c.JSON(http.StatusOK, gin.H{"key": key, "value": req.Value})
	}
}

// applyLive applies one override on top of the values currently in effect.
func applyLive(m *game.Manager, machine *gacha.Machine, key, value string) {
	s := m.Settings()
	live := config.Config{
		TurnTimeoutSeconds:      int(s.TurnTimeout / time.Second),
		CourtesyCooldownSeconds: int(s.CourtesyCooldown / time.Second),
		GachaMinutesPerPull:     machine.MinutesPerPull(),
	}
	if !admin.ApplyValue(&live, key, value) {
		return
	}
	m.UpdateSettings(game.Settings{
		TurnTimeout:      live.TurnTimeout(),
		CourtesyCooldown: live.CourtesyCooldown(),
	})
	machine.SetMinutesPerPull(live.GachaMinutesPerPull)
}
