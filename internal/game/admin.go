package game

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Administrative mutators. They bypass the join and accept rules but keep every
// queue invariant: nobody is in a line they occupy and nobody occupies two games.

// Kick ends the current turn on game, crediting any time played.
func (m *Manager) Kick(ctx context.Context, game string) (bool, error) {
	return m.mutate(ctx, func() bool {
		g, ok := m.games[game]
		if !ok || g.Occupant == "" {
			return false
		}
		kicked := g.Occupant
		g.creditPlayTime(m.playNow())
		g.clearTurn()
		m.advance(g)
		m.ripple(g)
		log.Info().Str("component", "game").Str("game", game).Str("player", kicked).Msg("occupant kicked")
		return true
	})
}

// RemoveFromQueue drops player from game's line and forgets their skips there.
func (m *Manager) RemoveFromQueue(ctx context.Context, game, player string) (bool, error) {
	return m.mutate(ctx, func() bool {
		g, ok := m.games[game]
		if !ok || !g.removeFromQueue(player) {
			return false
		}
		delete(g.SkipCounts, player)
		return true
	})
}

// BumpUp moves player one place closer to the front of game's line.
func (m *Manager) BumpUp(ctx context.Context, game, player string) (bool, error) {
	return m.mutate(ctx, func() bool {
		g, ok := m.games[game]
		if !ok {
			return false
		}
		idx := g.indexOf(player)
		if idx <= 0 {
			return false
		}
		g.swap(idx, idx-1)
		return true
	})
}

// BumpDown moves player one place towards the back of game's line.
func (m *Manager) BumpDown(ctx context.Context, game, player string) (bool, error) {
	return m.mutate(ctx, func() bool {
		g, ok := m.games[game]
		if !ok {
			return false
		}
		idx := g.indexOf(player)
		if idx < 0 || idx == len(g.Queue)-1 {
			return false
		}
		g.swap(idx, idx+1)
		return true
	})
}

// SetPlaying force-assigns player to game's slot as an accepted turn. The
// previous occupant's time is credited; a slot the player held elsewhere is
// released first.
func (m *Manager) SetPlaying(ctx context.Context, game, player string) (bool, error) {
	return m.mutate(ctx, func() bool {
		g, ok := m.games[game]
		if !ok || player == "" || g.Occupant == player {
			return false
		}
		now := m.playNow()

		if elsewhere := m.occupiedGame(player); elsewhere != "" {
			other := m.games[elsewhere]
			other.creditPlayTime(now)
			other.clearTurn()
		}

		g.creditPlayTime(now)
		g.removeFromQueue(player)
		g.Occupant = player
		g.TurnStartedAt = timePtr(m.clock.Now())
		g.TurnAccepted = true
		g.PlayStartedAt = timePtr(now)
		delete(g.SkipCounts, player)

		m.ripple(g)
		log.Info().Str("component", "game").Str("game", game).Str("player", player).Msg("occupant force-assigned")
		return true
	})
}

// AddToQueue appends player to game's line without the courtesy cooldown check.
func (m *Manager) AddToQueue(ctx context.Context, game, player string) (bool, error) {
	return m.mutate(ctx, func() bool {
		return m.enqueue(game, player, false)
	})
}

// ResetStats zeroes the displayed play time and session counts of every game.
// Lifetime totals used for gacha entitlement are kept.
func (m *Manager) ResetStats(ctx context.Context) (bool, error) {
	return m.mutate(ctx, func() bool {
		for _, name := range m.order {
			g := m.games[name]
			for player, total := range g.TotalPlayTime {
				g.PlayTimeOffset[player] = total
			}
			g.SessionCounts = make(map[string]int)
		}
		log.Info().Str("component", "game").Msg("displayed stats reset")
		return true
	})
}
