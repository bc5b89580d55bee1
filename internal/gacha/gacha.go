// Package gacha is the cosmetic reward layer: accepted play time earns pulls
// that draw characters by rarity weight.
package gacha

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sort"
	"sync"
	"time"

	"github.com/arcadeline/backend/internal/config"
	"github.com/rs/zerolog/log"
)

// Store persists collections and the number of pulls already granted.
type Store interface {
	LoadGacha(ctx context.Context) (collections map[string]map[string]int, given map[string]int, err error)
	SaveGacha(ctx context.Context, collections map[string]map[string]int, given map[string]int) error
}

// Result is one character drawn in a pull.
type Result struct {
	Name        string `json:"name"`
	Rarity      string `json:"rarity"`
	IsDuplicate bool   `json:"is_duplicate"`
	Count       int    `json:"count"`
}

// Owned is one entry of a player's collection.
type Owned struct {
	Name   string `json:"name"`
	Rarity string `json:"rarity"`
	Count  int    `json:"count"`
}

type Machine struct {
	mu          sync.Mutex
	weights     []config.RarityWeight
	byRarity    map[string][]config.Character
	rarityOf    map[string]string
	rarityRank  map[string]int
	totalWeight int
	perPull     time.Duration
	rng         *rand.Rand
	store       Store

	collections map[string]map[string]int
	given       map[string]int
	lastPull    map[string][]Result
}

type Option func(*Machine)

// WithRand fixes the random source, for tests.
func WithRand(r *rand.Rand) Option {
	return func(m *Machine) { m.rng = r }
}

func WithStore(s Store) Option {
	return func(m *Machine) { m.store = s }
}

// NewMachine builds a machine from the roster. minutesPerPull below one is
// treated as one.
func NewMachine(roster config.GachaRoster, minutesPerPull int, opts ...Option) *Machine {
	m := &Machine{
		weights:     roster.RarityWeights,
		byRarity:    make(map[string][]config.Character),
		rarityOf:    make(map[string]string),
		rarityRank:  make(map[string]int),
		rng:         rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x9e3779b97f4a7c15)),
		collections: make(map[string]map[string]int),
		given:       make(map[string]int),
		lastPull:    make(map[string][]Result),
	}
	m.setMinutesPerPull(minutesPerPull)
	for i, w := range roster.RarityWeights {
		m.rarityRank[w.Rarity] = i
		m.totalWeight += w.Weight
	}
	for _, c := range roster.Characters {
		m.byRarity[c.Rarity] = append(m.byRarity[c.Rarity], c)
		m.rarityOf[c.Name] = c.Rarity
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Machine) setMinutesPerPull(minutes int) {
	if minutes < 1 {
		minutes = 1
	}
	m.perPull = time.Duration(minutes) * time.Minute
}

// SetMinutesPerPull changes how much play time one pull costs.
func (m *Machine) SetMinutesPerPull(minutes int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setMinutesPerPull(minutes)
	log.Info().Str("component", "gacha").Int("minutes_per_pull", minutes).Msg("pull rate updated")
}

func (m *Machine) MinutesPerPull() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int(m.perPull / time.Minute)
}

// Award grants every pull player is entitled to for lifetime play time and
// not yet received. It returns the number of new pulls.
func (m *Machine) Award(player string, lifetime time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	entitled := int(lifetime / m.perPull)
	fresh := entitled - m.given[player]
	if fresh <= 0 {
		return 0
	}

	results := make([]Result, 0, fresh)
	for i := 0; i < fresh; i++ {
		results = append(results, m.pullLocked(player))
	}
	m.lastPull[player] = results
	m.given[player] = entitled
	return fresh
}

// Pull grants one free pull outside the play-time entitlement.
func (m *Machine) Pull(player string) Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := m.pullLocked(player)
	m.lastPull[player] = []Result{r}
	return r
}

func (m *Machine) pullLocked(player string) Result {
	rarity := m.drawRarity()
	pool := m.byRarity[rarity]
	character := pool[m.rng.IntN(len(pool))]

	owned := m.collections[player]
	if owned == nil {
		owned = make(map[string]int)
		m.collections[player] = owned
	}
	dupe := owned[character.Name] > 0
	owned[character.Name]++

	return Result{
		Name:        character.Name,
		Rarity:      character.Rarity,
		IsDuplicate: dupe,
		Count:       owned[character.Name],
	}
}

// drawRarity picks a rarity by weight, skipping rarities with no characters.
func (m *Machine) drawRarity() string {
	n := m.rng.IntN(m.totalWeight)
	for _, w := range m.weights {
		if n < w.Weight && len(m.byRarity[w.Rarity]) > 0 {
			return w.Rarity
		}
		n -= w.Weight
	}
	for _, w := range m.weights {
		if len(m.byRarity[w.Rarity]) > 0 {
			return w.Rarity
		}
	}
	panic("gacha: roster has no characters")
}

// LastPull returns the results still waiting to be shown to player.
func (m *Machine) LastPull(player string) []Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Result(nil), m.lastPull[player]...)
}

// Dismiss clears the pending results for player.
func (m *Machine) Dismiss(player string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.lastPull[player]; !ok {
		return false
	}
	delete(m.lastPull, player)
	return true
}

// Collection lists what player owns, rarest first.
func (m *Machine) Collection(player string) []Owned {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Owned, 0, len(m.collections[player]))
	for name, count := range m.collections[player] {
		out = append(out, Owned{Name: name, Rarity: m.rarityOf[name], Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		ri, rj := m.rank(out[i].Rarity), m.rank(out[j].Rarity)
		if ri != rj {
			return ri > rj
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func (m *Machine) rank(rarity string) int {
	if r, ok := m.rarityRank[rarity]; ok {
		return r
	}
	return -1
}

// NextPullIn is the play time still needed for the next pull.
func (m *Machine) NextPullIn(lifetime time.Duration) time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	if lifetime < 0 {
		lifetime = 0
	}
	return m.perPull - lifetime%m.perPull
}

// Load replaces collections and granted counts with the stored ones.
func (m *Machine) Load(ctx context.Context) error {
	if m.store == nil {
		return nil
	}
	collections, given, err := m.store.LoadGacha(ctx)
	if err != nil {
		return fmt.Errorf("load gacha: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.collections = make(map[string]map[string]int, len(collections))
	for player, owned := range collections {
		m.collections[player] = copyCounts(owned)
	}
	m.given = copyCounts(given)
	log.Info().Str("component", "gacha").Int("players", len(m.collections)).Msg("gacha state loaded")
	return nil
}

// Persist writes a copy of collections and granted counts to the store.
func (m *Machine) Persist(ctx context.Context) error {
	if m.store == nil {
		return nil
	}

	m.mu.Lock()
	collections := make(map[string]map[string]int, len(m.collections))
	for player, owned := range m.collections {
		collections[player] = copyCounts(owned)
	}
	given := copyCounts(m.given)
	m.mu.Unlock()

	if err := m.store.SaveGacha(ctx, collections, given); err != nil {
		return fmt.Errorf("save gacha: %w", err)
	}
	return nil
}

func copyCounts(in map[string]int) map[string]int {
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
