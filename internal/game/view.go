package game

import (
	"context"
	"math"
	"sort"
	"time"
)

// Board is the read-only projection served to the presentation layer.
type Board struct {
	Paused             bool        `json:"paused"`
	Now                time.Time   `json:"now"`
	TurnTimeoutSeconds int         `json:"turn_timeout_seconds"`
	Games              []GameView  `json:"games"`
	Player             *PlayerView `json:"player,omitempty"`
}

type GameView struct {
	Name                   string           `json:"name"`
	Queue                  []string         `json:"queue"`
	Occupant               string           `json:"occupant,omitempty"`
	Status                 TurnStatus       `json:"status"`
	AcceptRemainingSeconds int              `json:"accept_remaining_seconds"`
	PlayingSeconds         int              `json:"playing_seconds"`
	Stats                  []PlayerStatView `json:"stats"`
}

type PlayerStatView struct {
	Player      string `json:"player"`
	PlaySeconds int    `json:"play_seconds"`
	Sessions    int    `json:"sessions"`
	Skips       int    `json:"skips"`
}

// Slot states reported in PlayerView.
const (
	SlotPlaying = "playing"
	SlotPending = "pending"
	SlotQueued  = "queued"
	SlotNone    = "none"
)

type PlayerSlot struct {
	State                  string `json:"state"`
	Position               int    `json:"position,omitempty"`
	AcceptRemainingSeconds int    `json:"accept_remaining_seconds,omitempty"`
	CooldownSeconds        int    `json:"cooldown_seconds,omitempty"`
}

type PlayerView struct {
	Player              string                `json:"player"`
	PlayingGame         string                `json:"playing_game,omitempty"`
	Games               map[string]PlayerSlot `json:"games"`
	LifetimePlaySeconds int                   `json:"lifetime_play_seconds"`
}

// View runs timeout detection and then builds the board. When player is not
// empty the board includes that player's own slots and cooldowns.
func (m *Manager) View(ctx context.Context, player string) (*Board, error) {
	m.mu.Lock()
	expired := m.checkExpiredTurns()
	board := m.boardLocked(player)
	var snap *Snapshot
	if expired > 0 {
		snap = m.snapshotLocked()
		m.observeLocked()
	}
	m.mu.Unlock()

	if snap == nil {
		return board, nil
	}
	m.notify()
	return board, m.persist(ctx, snap)
}

func (m *Manager) boardLocked(player string) *Board {
	now := m.playNow()
	board := &Board{
		Paused:             m.paused,
		Now:                now,
		TurnTimeoutSeconds: int(m.settings.TurnTimeout / time.Second),
		Games:              make([]GameView, 0, len(m.order)),
	}

	for _, name := range m.order {
		g := m.games[name]
		gv := GameView{
			Name:     name,
			Queue:    append([]string{}, g.Queue...),
			Occupant: g.Occupant,
			Status:   g.Status(),
			Stats:    []PlayerStatView{},
		}
		switch gv.Status {
		case StatusPending:
			gv.AcceptRemainingSeconds = m.acceptRemaining(g, now)
		case StatusPlaying:
			if g.PlayStartedAt != nil {
				gv.PlayingSeconds = wholeSeconds(now.Sub(*g.PlayStartedAt))
			}
		}
		for _, p := range statPlayers(g) {
			st := PlayerStatView{
				Player:      p,
				PlaySeconds: wholeSeconds(g.DisplayedPlayTime(p)),
				Sessions:    g.SessionCounts[p],
				Skips:       g.SkipCounts[p],
			}
			if st.PlaySeconds == 0 && st.Sessions == 0 && st.Skips == 0 {
				continue
			}
			gv.Stats = append(gv.Stats, st)
		}
		sort.Slice(gv.Stats, func(i, j int) bool {
			if gv.Stats[i].PlaySeconds != gv.Stats[j].PlaySeconds {
				return gv.Stats[i].PlaySeconds > gv.Stats[j].PlaySeconds
			}
			return gv.Stats[i].Player < gv.Stats[j].Player
		})
		board.Games = append(board.Games, gv)
	}

	if player != "" {
		board.Player = m.playerViewLocked(player, now)
	}
	return board
}

func (m *Manager) playerViewLocked(player string, now time.Time) *PlayerView {
	pv := &PlayerView{
		Player:              player,
		PlayingGame:         m.occupiedGame(player),
		Games:               make(map[string]PlayerSlot, len(m.order)),
		LifetimePlaySeconds: wholeSeconds(m.lifetimeLocked(player)),
	}
	for _, name := range m.order {
		g := m.games[name]
		slot := PlayerSlot{State: SlotNone}
		switch {
		case g.Occupant == player && g.TurnAccepted:
			slot.State = SlotPlaying
		case g.Occupant == player:
			slot.State = SlotPending
			slot.AcceptRemainingSeconds = m.acceptRemaining(g, now)
		case g.inQueue(player):
			slot.State = SlotQueued
			slot.Position = g.Position(player)
		default:
			if cd := m.cooldownRemaining(player, name); cd > 0 {
				slot.CooldownSeconds = int(math.Ceil(cd.Seconds()))
			}
		}
		pv.Games[name] = slot
	}
	return pv
}

// acceptRemaining is the whole seconds left in g's accept window, never negative.
func (m *Manager) acceptRemaining(g *GameQueue, now time.Time) int {
	if g.TurnStartedAt == nil {
		return 0
	}
	left := m.settings.TurnTimeout - now.Sub(*g.TurnStartedAt)
	if left <= 0 {
		return 0
	}
	return int(math.Ceil(left.Seconds()))
}

func wholeSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(d / time.Second)
}
