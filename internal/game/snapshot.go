package game

import (
	"sort"
	"time"

	"github.com/rs/zerolog/log"
)

// Snapshot is a deep copy of the whole game table, taken under the lock and
// handed to the store after it is released.
type Snapshot struct {
	Seq       uint64
	Games     []GameRecord
	Paused    bool
	PausedAt  *time.Time
	Cooldowns []CooldownRecord
}

// GameRecord is one game's row.
type GameRecord struct {
	Name          string
	Queue         []string
	Occupant      string
	TurnStartedAt *time.Time
	TurnAccepted  bool
	PlayStartedAt *time.Time
	Stats         []PlayerStats
}

// PlayerStats is one (player, game) statistics row.
type PlayerStats struct {
	Player         string
	SkipCount      int
	TotalPlayTime  time.Duration
	SessionCount   int
	PlayTimeOffset time.Duration
}

// CooldownRecord is one live courtesy cooldown.
type CooldownRecord struct {
	Player    string
	Game      string
	ExpiresAt time.Time
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	return timePtr(*t)
}

func (m *Manager) snapshotLocked() *Snapshot {
	m.seq++
	snap := &Snapshot{
		Seq:      m.seq,
		Games:    make([]GameRecord, 0, len(m.order)),
		Paused:   m.paused,
		PausedAt: copyTime(m.pausedAt),
	}

	for _, name := range m.order {
		g := m.games[name]
		rec := GameRecord{
			Name:          g.Name,
			Queue:         append([]string{}, g.Queue...),
			Occupant:      g.Occupant,
			TurnStartedAt: copyTime(g.TurnStartedAt),
			TurnAccepted:  g.TurnAccepted,
			PlayStartedAt: copyTime(g.PlayStartedAt),
		}
		for _, player := range statPlayers(g) {
			rec.Stats = append(rec.Stats, PlayerStats{
				Player:         player,
				SkipCount:      g.SkipCounts[player],
				TotalPlayTime:  g.TotalPlayTime[player],
				SessionCount:   g.SessionCounts[player],
				PlayTimeOffset: g.PlayTimeOffset[player],
			})
		}
		snap.Games = append(snap.Games, rec)
	}

	now := m.clock.Now()
	for key, expiresAt := range m.cooldowns {
		if expiresAt.After(now) {
			snap.Cooldowns = append(snap.Cooldowns, CooldownRecord{
				Player:    key.player,
				Game:      key.game,
				ExpiresAt: expiresAt,
			})
		}
	}
	return snap
}

// Snapshot returns a copy of the current table.
func (m *Manager) Snapshot() *Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// Restore replaces the in-memory table with snap. Rows for games that are no
// longer configured are ignored, and the result is normalized so the queue
// invariants hold even if the stored data does not satisfy them. Vacant games
// with someone waiting are offered to them unless the arcade is paused.
func (m *Manager) Restore(snap *Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, name := range m.order {
		m.games[name] = NewGameQueue(name)
	}
	for _, rec := range snap.Games {
		g, ok := m.games[rec.Name]
		if !ok {
			log.Warn().Str("component", "game").Str("game", rec.Name).Msg("stored game is not configured, ignoring")
			continue
		}
		g.Queue = append([]string{}, rec.Queue...)
		g.Occupant = rec.Occupant
		g.TurnStartedAt = copyTime(rec.TurnStartedAt)
		g.TurnAccepted = rec.TurnAccepted
		g.PlayStartedAt = copyTime(rec.PlayStartedAt)
		for _, st := range rec.Stats {
			if st.SkipCount > 0 {
				g.SkipCounts[st.Player] = st.SkipCount
			}
			if st.TotalPlayTime > 0 {
				g.TotalPlayTime[st.Player] = st.TotalPlayTime
			}
			if st.SessionCount > 0 {
				g.SessionCounts[st.Player] = st.SessionCount
			}
			if st.PlayTimeOffset > 0 {
				g.PlayTimeOffset[st.Player] = st.PlayTimeOffset
			}
		}
	}

	m.paused = snap.Paused
	m.pausedAt = nil
	if snap.Paused {
		m.pausedAt = copyTime(snap.PausedAt)
		if m.pausedAt == nil {
			m.pausedAt = timePtr(m.clock.Now())
		}
	}

	m.cooldowns = make(map[cooldownKey]time.Time, len(snap.Cooldowns))
	for _, cd := range snap.Cooldowns {
		if _, ok := m.games[cd.Game]; ok {
			m.cooldowns[cooldownKey{player: cd.Player, game: cd.Game}] = cd.ExpiresAt
		}
	}

	if snap.Seq > m.seq {
		m.seq = snap.Seq
	}
	m.normalizeLocked()
	m.ripple(nil)
	m.observeLocked()

	log.Info().Str("component", "game").Int("games", len(m.order)).Bool("paused", m.paused).
		Int("cooldowns", len(m.cooldowns)).Msg("game state restored")
}

// normalizeLocked repairs a restored table: turn fields consistent with the
// occupant, one slot per player (first game in configuration order wins), no
// occupant in its own line and no duplicates in a line.
func (m *Manager) normalizeLocked() {
	holding := make(map[string]bool)
	for _, name := range m.order {
		g := m.games[name]

		if g.Occupant != "" && holding[g.Occupant] {
			log.Warn().Str("component", "game").Str("game", name).Str("player", g.Occupant).
				Msg("player restored into two slots, releasing this one")
			g.clearTurn()
		}
		if g.Occupant == "" {
			g.clearTurn()
		} else {
			holding[g.Occupant] = true
			if g.TurnStartedAt == nil {
				g.TurnStartedAt = timePtr(m.clock.Now())
			}
			if g.TurnAccepted && g.PlayStartedAt == nil {
				g.PlayStartedAt = timePtr(m.playNow())
			}
			if !g.TurnAccepted {
				g.PlayStartedAt = nil
			}
		}

		seen := make(map[string]bool, len(g.Queue))
		queue := make([]string, 0, len(g.Queue))
		for _, p := range g.Queue {
			if p == "" || p == g.Occupant || seen[p] {
				continue
			}
			seen[p] = true
			queue = append(queue, p)
		}
		g.Queue = queue
	}
}

// statPlayers lists every player with any statistic recorded for g.
func statPlayers(g *GameQueue) []string {
	seen := make(map[string]bool)
	var players []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			players = append(players, p)
		}
	}
	for p := range g.SkipCounts {
		add(p)
	}
	for p := range g.TotalPlayTime {
		add(p)
	}
	for p := range g.SessionCounts {
		add(p)
	}
	for p := range g.PlayTimeOffset {
		add(p)
	}
	sort.Strings(players)
	return players
}
