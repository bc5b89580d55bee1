package game

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
)

// skipCurrent gives up g's pending turn. When someone in line can take the slot
// the displaced occupant goes straight behind them and the skip is counted;
// otherwise the displaced occupant departs and their skip history is dropped.
func (m *Manager) skipCurrent(g *GameQueue, reason string) {
	if g.Occupant == "" || m.paused {
		return
	}
	displaced := g.Occupant

	if m.hasAvailableCandidate(g) {
		g.SkipCounts[displaced]++
		m.advance(g)
		g.pushFront(displaced)
	} else {
		delete(g.SkipCounts, displaced)
		m.advance(g)
	}

	m.metrics.TurnSkipped(reason)
	log.Info().Str("component", "game").Str("game", g.Name).Str("player", displaced).
		Str("reason", reason).Str("next", g.Occupant).Msg("turn skipped")

	m.ripple(g)
}

// checkExpiredTurns skips every pending turn whose accept window has run out
// and returns how many were skipped.
func (m *Manager) checkExpiredTurns() int {
	if m.paused {
		return 0
	}
	now := m.clock.Now()
	expired := 0
	for _, name := range m.order {
		g := m.games[name]
		if g.Occupant == "" || g.TurnAccepted || g.TurnStartedAt == nil {
			continue
		}
		if now.Sub(*g.TurnStartedAt) >= m.settings.TurnTimeout {
			m.skipCurrent(g, reasonTimeout)
			expired++
		}
	}
	return expired
}

// cooldownRemaining returns how long player must wait before joining game
// again. Expired entries are removed as they are read.
func (m *Manager) cooldownRemaining(player, game string) time.Duration {
	key := cooldownKey{player: player, game: game}
	expiresAt, ok := m.cooldowns[key]
	if !ok {
		return 0
	}
	remaining := expiresAt.Sub(m.clock.Now())
	if remaining <= 0 {
		delete(m.cooldowns, key)
		return 0
	}
	return remaining
}

// enqueue appends player to the back of game's line and offers the slot when
// the game is vacant.
func (m *Manager) enqueue(game, player string, honourCooldown bool) bool {
	g, ok := m.games[game]
	if !ok || player == "" {
		return false
	}
	if honourCooldown && m.cooldownRemaining(player, game) > 0 {
		return false
	}
	if g.Occupant == player || g.inQueue(player) {
		return false
	}
	g.Queue = append(g.Queue, player)
	if g.Occupant == "" {
		m.advance(g)
	}
	return true
}

// CheckExpiredTurns runs timeout detection on its own, for the background
// worker. Subscribers are only pinged when something expired.
func (m *Manager) CheckExpiredTurns(ctx context.Context) (int, error) {
	var n int
	_, err := m.mutate(ctx, func() bool {
		n = m.checkExpiredTurns()
		return n > 0
	})
	return n, err
}

// CooldownRemaining returns the courtesy cooldown left for player on game.
func (m *Manager) CooldownRemaining(player, game string) time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cooldownRemaining(player, game)
}

// Join puts player at the back of game's line. It is a no-op for unknown
// games, during a courtesy cooldown, or when the player is already in line or
// holding the slot.
func (m *Manager) Join(ctx context.Context, game, player string) (bool, error) {
	return m.mutate(ctx, func() bool {
		return m.enqueue(game, player, true)
	})
}

// Leave takes player out of game's line, or gives up their pending turn. An
// accepted turn has to be ended with Finish.
func (m *Manager) Leave(ctx context.Context, game, player string) (bool, error) {
	return m.mutate(ctx, func() bool {
		g, ok := m.games[game]
		if !ok || player == "" {
			return false
		}
		if g.removeFromQueue(player) {
			return true
		}
		if g.Occupant != player || g.TurnAccepted {
			return false
		}
		g.clearTurn()
		m.advance(g)
		m.ripple(g)
		return true
	})
}

// Swap trades places between player and target when target is behind player
// in game's line.
func (m *Manager) Swap(ctx context.Context, game, player, target string) (bool, error) {
	return m.mutate(ctx, func() bool {
		g, ok := m.games[game]
		if !ok {
			return false
		}
		mine, theirs := g.indexOf(player), g.indexOf(target)
		if mine < 0 || theirs <= mine {
			return false
		}
		g.swap(mine, theirs)
		return true
	})
}

// Skip lets the pending occupant hand the turn to the next person in line.
func (m *Manager) Skip(ctx context.Context, game, player string) (bool, error) {
	return m.mutate(ctx, func() bool {
		g, ok := m.games[game]
		if !ok || player == "" || g.Occupant != player || g.TurnAccepted || m.paused {
			return false
		}
		m.skipCurrent(g, reasonManual)
		return true
	})
}

// Accept confirms a pending turn. It fails once the accept window has run out,
// even if the timeout has not been processed yet.
func (m *Manager) Accept(ctx context.Context, game, player string) (bool, error) {
	return m.mutate(ctx, func() bool {
		g, ok := m.games[game]
		if !ok || player == "" || g.Occupant != player || g.TurnAccepted || g.TurnStartedAt == nil {
			return false
		}
		if m.clock.Now().Sub(*g.TurnStartedAt) >= m.settings.TurnTimeout {
			return false
		}
		g.TurnAccepted = true
		g.PlayStartedAt = timePtr(m.playNow())
		g.SessionCounts[player]++
		delete(g.SkipCounts, player)
		m.metrics.TurnAccepted()
		log.Info().Str("component", "game").Str("game", game).Str("player", player).Msg("turn accepted")
		return true
	})
}

// Finish ends player's turn on game, credits their play time and tells the
// reward subsystem about their new lifetime total.
func (m *Manager) Finish(ctx context.Context, game, player string) (bool, error) {
	applied, err := m.mutate(ctx, func() bool {
		g, ok := m.games[game]
		if !ok || player == "" || g.Occupant != player {
			return false
		}
		played := g.creditPlayTime(m.playNow())
		if m.rewards != nil {
			if pulls := m.rewards.Award(player, m.lifetimeLocked(player)); pulls > 0 {
				log.Info().Str("component", "game").Str("player", player).Int("pulls", pulls).Msg("gacha pulls awarded")
			}
		}
		if len(g.Queue) == 0 {
			m.cooldowns[cooldownKey{player: player, game: game}] = m.clock.Now().Add(m.settings.CourtesyCooldown)
		}
		g.clearTurn()
		m.advance(g)
		m.ripple(g)
		m.metrics.TurnFinished(played)
		log.Info().Str("component", "game").Str("game", game).Str("player", player).
			Dur("played", played).Str("next", g.Occupant).Msg("turn finished")
		return true
	})
	if applied && m.rewards != nil {
		if perr := m.rewards.Persist(ctx); perr != nil {
			err = errors.Join(err, perr)
		}
	}
	return applied, err
}

// Withdraw removes player from every line and vacates any slot they hold, as
// on logout. Time already played is credited.
func (m *Manager) Withdraw(ctx context.Context, player string) (bool, error) {
	return m.mutate(ctx, func() bool {
		if player == "" {
			return false
		}
		changed := false
		for _, name := range m.order {
			g := m.games[name]
			if g.removeFromQueue(player) {
				changed = true
			}
			if g.Occupant == player {
				g.creditPlayTime(m.playNow())
				g.clearTurn()
				m.advance(g)
				changed = true
			}
		}
		if changed {
			m.ripple(nil)
		}
		return changed
	})
}

// TogglePause freezes or resumes advancement and returns the new state. On
// resume every running play clock is shifted past the pause, and vacant games
// are offered to the next eligible player.
func (m *Manager) TogglePause(ctx context.Context) (bool, error) {
	var paused bool
	_, err := m.mutate(ctx, func() bool {
		now := m.clock.Now()
		if !m.paused {
			m.paused = true
			m.pausedAt = timePtr(now)
			paused = true
			log.Info().Str("component", "game").Msg("queue paused")
			return true
		}

		m.paused = false
		if m.pausedAt != nil {
			pause := now.Sub(*m.pausedAt)
			for _, name := range m.order {
				g := m.games[name]
				if g.PlayStartedAt != nil {
					g.PlayStartedAt = timePtr(g.PlayStartedAt.Add(pause))
				}
			}
			log.Info().Str("component", "game").Dur("paused_for", pause).Msg("queue resumed")
		}
		m.pausedAt = nil
		m.ripple(nil)
		paused = false
		return true
	})
	return paused, err
}
