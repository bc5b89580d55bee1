package game

import "github.com/rs/zerolog/log"

// occupiedGame returns the game whose turn slot player holds, or "".
// Game counts are small, so a scan is fine.
func (m *Manager) occupiedGame(player string) string {
	for _, name := range m.order {
		if m.games[name].Occupant == player {
			return name
		}
	}
	return ""
}

// PlayingGame returns the game whose turn slot player holds, or "".
func (m *Manager) PlayingGame(player string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if player == "" {
		return ""
	}
	return m.occupiedGame(player)
}

// hasAvailableCandidate reports whether anyone in g's line is free to play now.
func (m *Manager) hasAvailableCandidate(g *GameQueue) bool {
	for _, p := range g.Queue {
		if m.occupiedGame(p) == "" {
			return true
		}
	}
	return false
}

// advance hands g's turn slot to the first player in line who is not holding a
// slot elsewhere. Players passed over keep their relative order and end up at
// the head of the line, right behind the new occupant. Nobody is dropped.
// Frozen while paused.
func (m *Manager) advance(g *GameQueue) {
	if m.paused {
		return
	}
	g.clearTurn()

	var deferred []string
	for len(g.Queue) > 0 {
		candidate := g.Queue[0]
		g.Queue = g.Queue[1:]
		if m.occupiedGame(candidate) == "" {
			g.startTurn(candidate, m.clock.Now())
			m.metrics.TurnStarted()
			log.Debug().Str("component", "game").Str("game", g.Name).Str("player", candidate).
				Int("deferred", len(deferred)).Msg("turn offered")
			break
		}
		deferred = append(deferred, candidate)
	}
	g.pushFront(deferred...)
}

// ripple tries to fill every vacant game other than except. Resolving one slot
// can free a player who was the only candidate somewhere else.
func (m *Manager) ripple(except *GameQueue) {
	for _, name := range m.order {
		other := m.games[name]
		if other != except && other.Occupant == "" {
			m.advance(other)
		}
	}
}
