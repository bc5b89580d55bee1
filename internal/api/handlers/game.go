package handlers

import (
	"context"
	"math"
	"net/http"
	"strings"

	"github.com/arcadeline/backend/internal/gacha"
	"github.com/arcadeline/backend/internal/game"
	"github.com/gin-gonic/gin"
)

type gachaStatus struct {
	LastPull        []gacha.Result `json:"last_pull"`
	NextPullSeconds int            `json:"next_pull_seconds"`
	MinutesPerPull  int            `json:"minutes_per_pull"`
}

type boardResponse struct {
	*game.Board
	IsAdmin bool         `json:"is_admin"`
	Gacha   *gachaStatus `json:"gacha,omitempty"`
}

// GetBoard serves the board. Reading it also processes expired turns.
func GetBoard(m *game.Manager, machine *gacha.Machine, sessions Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		player := currentPlayer(c)
		board, err := m.View(c.Request.Context(), player)
		logPersistError(c, "board", err)

		resp := boardResponse{Board: board}
		if player != "" {
			resp.IsAdmin = sessions.IsAdministrator(player)
			resp.Gacha = &gachaStatus{
				LastPull:        machine.LastPull(player),
				NextPullSeconds: int(machine.NextPullIn(m.LifetimePlayTime(player)).Seconds()),
				MinutesPerPull:  machine.MinutesPerPull(),
			}
		}
		c.JSON(http.StatusOK, resp)
	}
}

type gameAction func(ctx context.Context, game, player string) (bool, error)

// lookupGame resolves the :name parameter or answers 404.
func lookupGame(c *gin.Context, m *game.Manager) (string, bool) {
	name := strings.TrimSpace(c.Param("name"))
	if !m.HasGame(name) {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown game"})
		return "", false
	}
	return name, true
}

// playerAction applies fn for the logged in player on the named game. An
// operation whose preconditions do not hold reports applied=false.
func playerAction(m *game.Manager, action string, fn gameAction) gin.HandlerFunc {
	return func(c *gin.Context) {
		name, ok := lookupGame(c, m)
		if !ok {
			return
		}
		applied, err := fn(c.Request.Context(), name, currentPlayer(c))
		logPersistError(c, action, err)
		c.JSON(http.StatusOK, gin.H{"applied": applied})
	}
}

// JoinGame puts the player in line. A refused join reports any courtesy
// cooldown still running.
func JoinGame(m *game.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		name, ok := lookupGame(c, m)
		if !ok {
			return
		}
		player := currentPlayer(c)
		applied, err := m.Join(c.Request.Context(), name, player)
		logPersistError(c, "join", err)

		resp := gin.H{"applied": applied}
		if !applied {
			if wait := m.CooldownRemaining(player, name); wait > 0 {
				resp["cooldown_seconds"] = int(math.Ceil(wait.Seconds()))
			}
		}
		c.JSON(http.StatusOK, resp)
	}
}

func LeaveGame(m *game.Manager) gin.HandlerFunc {
	return playerAction(m, "leave", m.Leave)
}

func AcceptTurn(m *game.Manager) gin.HandlerFunc {
	return playerAction(m, "accept", m.Accept)
}

func SkipTurn(m *game.Manager) gin.HandlerFunc {
	return playerAction(m, "skip", m.Skip)
}

func FinishTurn(m *game.Manager) gin.HandlerFunc {
	return playerAction(m, "done", m.Finish)
}

// SwapPlaces trades the player's place with someone behind them in line.
func SwapPlaces(m *game.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		name, ok := lookupGame(c, m)
		if !ok {
			return
		}
		var req struct {
			Target string `json:"target"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Target) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "target required"})
			return
		}
		applied, err := m.Swap(c.Request.Context(), name, currentPlayer(c), strings.TrimSpace(req.Target))
		logPersistError(c, "swap", err)
		c.JSON(http.StatusOK, gin.H{"applied": applied})
	}
}
