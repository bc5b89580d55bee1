package game

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/arcadeline/backend/internal/metrics"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// Settings are the tunable durations of the turn policy.
type Settings struct {
	TurnTimeout      time.Duration
	CourtesyCooldown time.Duration
}

// DefaultSettings returns a 60s accept window and a 10s courtesy cooldown.
func DefaultSettings() Settings {
	return Settings{
		TurnTimeout:      60 * time.Second,
		CourtesyCooldown: 10 * time.Second,
	}
}

// Store persists and restores the full game table.
type Store interface {
	LoadSnapshot(ctx context.Context) (*Snapshot, error)
	SaveSnapshot(ctx context.Context, snap *Snapshot) error
}

// Rewarder is the reward subsystem told about a player's lifetime play time
// each time they finish a turn.
type Rewarder interface {
	Award(player string, lifetime time.Duration) int
	Persist(ctx context.Context) error
}

// Notifier is pinged after every state change. Implementations must not block.
type Notifier interface {
	Notify()
}

type cooldownKey struct {
	player string
	game   string
}

// Manager owns every GameQueue together with the pause state and the courtesy
// cooldown ledger. All of it is guarded by one mutex so that advancement in one
// game always sees a consistent view of every other game.
type Manager struct {
	mu        sync.Mutex
	clock     clockwork.Clock
	settings  Settings
	order     []string
	games     map[string]*GameQueue
	paused    bool
	pausedAt  *time.Time
	cooldowns map[cooldownKey]time.Time
	seq       uint64

	store    Store
	rewards  Rewarder
	notifier Notifier
	metrics  *metrics.Metrics

	persistMu sync.Mutex
	persisted uint64
}

// Option configures a Manager.
type Option func(*Manager)

func WithClock(c clockwork.Clock) Option {
	return func(m *Manager) { m.clock = c }
}

func WithStore(s Store) Option {
	return func(m *Manager) { m.store = s }
}

func WithRewarder(r Rewarder) Option {
	return func(m *Manager) { m.rewards = r }
}

func WithNotifier(n Notifier) Option {
	return func(m *Manager) { m.notifier = n }
}

func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Manager) { m.metrics = mt }
}

// NewManager creates one empty GameQueue per configured name. Duplicate and
// blank names are ignored; iteration order follows the configuration.
func NewManager(names []string, settings Settings, opts ...Option) *Manager {
	m := &Manager{
		clock:     clockwork.NewRealClock(),
		settings:  settings,
		games:     make(map[string]*GameQueue, len(names)),
		cooldowns: make(map[cooldownKey]time.Time),
	}
	for _, name := range names {
		if name == "" {
			continue
		}
		if _, exists := m.games[name]; exists {
			continue
		}
		m.games[name] = NewGameQueue(name)
		m.order = append(m.order, name)
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Load restores the last persisted snapshot, if the store has one.
func (m *Manager) Load(ctx context.Context) error {
	if m.store == nil {
		return nil
	}
	snap, err := m.store.LoadSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}
	if snap != nil {
		m.Restore(snap)
	}
	return nil
}

// Games returns the configured game names in order.
func (m *Manager) Games() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// HasGame reports whether name is a configured game.
func (m *Manager) HasGame(name string) bool {
	_, ok := m.games[name]
	return ok
}

// Settings returns the current turn policy durations.
func (m *Manager) Settings() Settings {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settings
}

// UpdateSettings replaces the turn policy durations. Non-positive values keep
// the current setting.
func (m *Manager) UpdateSettings(s Settings) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.TurnTimeout > 0 {
		m.settings.TurnTimeout = s.TurnTimeout
	}
	if s.CourtesyCooldown > 0 {
		m.settings.CourtesyCooldown = s.CourtesyCooldown
	}
	log.Info().Str("component", "game").
		Dur("turn_timeout", m.settings.TurnTimeout).
		Dur("courtesy_cooldown", m.settings.CourtesyCooldown).
		Msg("turn settings updated")
}

// Paused reports whether advancement is frozen.
func (m *Manager) Paused() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.paused
}

// mutate runs fn under the state lock. When fn reports a change the resulting
// snapshot is written to the store after the lock is released and subscribers
// are pinged. The returned error only ever describes the durable write.
func (m *Manager) mutate(ctx context.Context, fn func() bool) (bool, error) {
	m.mu.Lock()
	applied := fn()
	var snap *Snapshot
	if applied {
		snap = m.snapshotLocked()
		m.observeLocked()
	}
	m.mu.Unlock()

	if !applied {
		return false, nil
	}
	m.notify()
	return true, m.persist(ctx, snap)
}

// persist writes snap unless a newer snapshot has already been written.
func (m *Manager) persist(ctx context.Context, snap *Snapshot) error {
	if m.store == nil || snap == nil {
		return nil
	}
	m.persistMu.Lock()
	defer m.persistMu.Unlock()
	if snap.Seq <= m.persisted {
		return nil
	}
	if err := m.store.SaveSnapshot(ctx, snap); err != nil {
		m.metrics.PersistFailed()
		log.Error().Str("component", "game").Err(err).Uint64("seq", snap.Seq).Msg("snapshot write failed")
		return fmt.Errorf("save snapshot %d: %w", snap.Seq, err)
	}
	m.persisted = snap.Seq
	return nil
}

func (m *Manager) notify() {
	if m.notifier != nil {
		m.notifier.Notify()
	}
}

func (m *Manager) observeLocked() {
	if m.metrics == nil {
		return
	}
	for _, name := range m.order {
		g := m.games[name]
		m.metrics.SetQueue(name, len(g.Queue), g.Occupant != "")
	}
	m.metrics.SetPaused(m.paused)
}

// playNow is the instant used for play-time accounting: frozen at pausedAt
// while the arcade is paused, since resume shifts PlayStartedAt past the pause.
func (m *Manager) playNow() time.Time {
	if m.paused && m.pausedAt != nil {
		return *m.pausedAt
	}
	return m.clock.Now()
}

// lifetimeLocked sums a player's accepted play time across all games.
func (m *Manager) lifetimeLocked(player string) time.Duration {
	var total time.Duration
	for _, name := range m.order {
		total += m.games[name].TotalPlayTime[player]
	}
	return total
}

// LifetimePlayTime returns a player's accepted play time across all games.
func (m *Manager) LifetimePlayTime(player string) time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lifetimeLocked(player)
}
