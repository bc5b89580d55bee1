package handlers

import (
	"net/http"

	"github.com/arcadeline/backend/internal/gacha"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// GetCollection lists the player's characters, rarest first.
func GetCollection(machine *gacha.Machine) gin.HandlerFunc {
	return func(c *gin.Context) {
		player := currentPlayer(c)
		c.JSON(http.StatusOK, gin.H{
			"collection": machine.Collection(player),
			"last_pull":  machine.LastPull(player),
		})
	}
}

// DismissPull hides the latest pull results.
func DismissPull(machine *gacha.Machine) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"applied": machine.Dismiss(currentPlayer(c))})
	}
}

func StartIdleRun(runs *gacha.IdleRuns) gin.HandlerFunc {
	return func(c *gin.Context) {
		runs.Start(currentPlayer(c))
		c.JSON(http.StatusOK, gin.H{"status": "started"})
	}
}

// CompleteIdleRun grants one free pull for a finished idle mini-game.
func CompleteIdleRun(runs *gacha.IdleRuns, machine *gacha.Machine, notify func()) gin.HandlerFunc {
	return func(c *gin.Context) {
		player := currentPlayer(c)
		if !runs.Complete(player) {
			c.JSON(http.StatusConflict, gin.H{"error": "no finished idle run"})
			return
		}
		result := machine.Pull(player)
		if err := machine.Persist(c.Request.Context()); err != nil {
			log.Error().Str("component", "api").Err(err).Str("player", player).Msg("gacha state not persisted")
		}
		if notify != nil {
			notify()
		}
		c.JSON(http.StatusOK, gin.H{"status": "completed", "pull": result})
	}
}
