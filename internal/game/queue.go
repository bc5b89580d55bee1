package game

import "time"

// GameQueue is the per-game record: who is waiting, who holds the turn slot and
// the per-player statistics collected for that game.
//
// Invariants kept by the Manager:
//   - Occupant is never also present in Queue.
//   - TurnAccepted implies PlayStartedAt != nil.
//   - Occupant == "" implies TurnStartedAt == nil, !TurnAccepted, PlayStartedAt == nil.
type GameQueue struct {
	Name          string
	Queue         []string
	Occupant      string
	TurnStartedAt *time.Time
	TurnAccepted  bool
	PlayStartedAt *time.Time

	SkipCounts     map[string]int
	TotalPlayTime  map[string]time.Duration
	SessionCounts  map[string]int
	PlayTimeOffset map[string]time.Duration
}

// NewGameQueue returns an empty record with its own containers.
func NewGameQueue(name string) *GameQueue {
	return &GameQueue{
		Name:           name,
		Queue:          []string{},
		SkipCounts:     make(map[string]int),
		TotalPlayTime:  make(map[string]time.Duration),
		SessionCounts:  make(map[string]int),
		PlayTimeOffset: make(map[string]time.Duration),
	}
}

// Status reports whether the slot is idle, pending acceptance or in play.
func (g *GameQueue) Status() TurnStatus {
	switch {
	case g.Occupant == "":
		return StatusIdle
	case g.TurnAccepted:
		return StatusPlaying
	default:
		return StatusPending
	}
}

func (g *GameQueue) clearTurn() {
	g.Occupant = ""
	g.TurnStartedAt = nil
	g.TurnAccepted = false
	g.PlayStartedAt = nil
}

func (g *GameQueue) startTurn(player string, now time.Time) {
	g.Occupant = player
	g.TurnStartedAt = timePtr(now)
	g.TurnAccepted = false
	g.PlayStartedAt = nil
}

// Position is the 1-based place of player in the line, or 0 when absent.
func (g *GameQueue) Position(player string) int {
	return g.indexOf(player) + 1
}

func (g *GameQueue) indexOf(player string) int {
	for i, p := range g.Queue {
		if p == player {
			return i
		}
	}
	return -1
}

func (g *GameQueue) inQueue(player string) bool {
	return g.indexOf(player) >= 0
}

func (g *GameQueue) removeFromQueue(player string) bool {
	idx := g.indexOf(player)
	if idx < 0 {
		return false
	}
	next := make([]string, 0, len(g.Queue)-1)
	next = append(next, g.Queue[:idx]...)
	next = append(next, g.Queue[idx+1:]...)
	g.Queue = next
	return true
}

// pushFront inserts players at the head of the line, keeping their order.
func (g *GameQueue) pushFront(players ...string) {
	if len(players) == 0 {
		return
	}
	next := make([]string, 0, len(players)+len(g.Queue))
	next = append(next, players...)
	next = append(next, g.Queue...)
	g.Queue = next
}

func (g *GameQueue) swap(i, j int) {
	g.Queue[i], g.Queue[j] = g.Queue[j], g.Queue[i]
}

// creditPlayTime adds the time since PlayStartedAt to the occupant's total and
// returns the amount credited. The turn itself is left untouched.
func (g *GameQueue) creditPlayTime(now time.Time) time.Duration {
	if g.Occupant == "" || g.PlayStartedAt == nil {
		return 0
	}
	played := now.Sub(*g.PlayStartedAt)
	if played < 0 {
		played = 0
	}
	g.TotalPlayTime[g.Occupant] += played
	return played
}

// DisplayedPlayTime is the total play time minus the last admin reset baseline.
func (g *GameQueue) DisplayedPlayTime(player string) time.Duration {
	shown := g.TotalPlayTime[player] - g.PlayTimeOffset[player]
	if shown < 0 {
		return 0
	}
	return shown
}

func timePtr(t time.Time) *time.Time {
	return &t
}
