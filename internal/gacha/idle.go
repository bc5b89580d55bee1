package gacha

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// IdleRuns tracks idle mini-game attempts. A completion only counts when it
// follows a start by at least the minimum run length.
type IdleRuns struct {
	mu      sync.Mutex
	clock   clockwork.Clock
	minimum time.Duration
	started map[string]time.Time
}

func NewIdleRuns(clock clockwork.Clock, minimum time.Duration) *IdleRuns {
	return &IdleRuns{
		clock:   clock,
		minimum: minimum,
		started: make(map[string]time.Time),
	}
}

// Start begins or restarts a run for player.
func (r *IdleRuns) Start(player string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started[player] = r.clock.Now()
}

// Complete ends player's run and reports whether it earned a pull. A run that
// finished too early stays open.
func (r *IdleRuns) Complete(player string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	at, ok := r.started[player]
	if !ok || r.clock.Since(at) < r.minimum {
		return false
	}
	delete(r.started, player)
	return true
}
