package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Arcade is the roster file: which cabinets exist and what the gacha can drop.
type Arcade struct {
	Games []string    `yaml:"games"`
	Gacha GachaRoster `yaml:"gacha"`
}

type GachaRoster struct {
	RarityWeights []RarityWeight `yaml:"rarity_weights"`
	Characters    []Character    `yaml:"characters"`
}

type RarityWeight struct {
	Rarity string `yaml:"rarity"`
	Weight int    `yaml:"weight"`
}

type Character struct {
	Name   string `yaml:"name" json:"name"`
	Rarity string `yaml:"rarity" json:"rarity"`
}

// DefaultArcade is used when no roster file is present.
func DefaultArcade() *Arcade {
	return &Arcade{
		Games: []string{"Maimai", "Chunithm", "Wacca", "Sound Voltex", "Groove Coaster", "Tea party"},
		Gacha: GachaRoster{
			RarityWeights: []RarityWeight{
				{Rarity: "common", Weight: 60},
				{Rarity: "rare", Weight: 30},
				{Rarity: "epic", Weight: 9},
				{Rarity: "legendary", Weight: 1},
			},
			Characters: []Character{
				{Name: "Coin Slot Cat", Rarity: "common"},
				{Name: "Button Masher", Rarity: "common"},
				{Name: "Card Reader", Rarity: "common"},
				{Name: "Token Goblin", Rarity: "common"},
				{Name: "Slide Note", Rarity: "rare"},
				{Name: "Air Note", Rarity: "rare"},
				{Name: "Hold Chain", Rarity: "rare"},
				{Name: "Full Combo Fox", Rarity: "epic"},
				{Name: "Perfect Pigeon", Rarity: "epic"},
				{Name: "Marathon Tea Kettle", Rarity: "epic"},
				{Name: "All Perfect Dragon", Rarity: "legendary"},
				{Name: "Cabinet Spirit", Rarity: "legendary"},
			},
		},
	}
}

// LoadArcade reads the roster file at path. A missing file yields the
// built-in roster.
func LoadArcade(path string) (*Arcade, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultArcade(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read arcade file: %w", err)
	}

	var arcade Arcade
	if err := yaml.Unmarshal(data, &arcade); err != nil {
		return nil, fmt.Errorf("failed to parse arcade file: %w", err)
	}
	if err := arcade.normalize(); err != nil {
		return nil, fmt.Errorf("invalid arcade file %s: %w", path, err)
	}
	return &arcade, nil
}

// normalize trims names, drops duplicate games and checks the gacha table.
// An empty gacha section falls back to the built-in one.
func (a *Arcade) normalize() error {
	seen := make(map[string]bool, len(a.Games))
	games := make([]string, 0, len(a.Games))
	for _, g := range a.Games {
		g = strings.TrimSpace(g)
		if g == "" || seen[g] {
			continue
		}
		seen[g] = true
		games = append(games, g)
	}
	if len(games) == 0 {
		return errors.New("no games configured")
	}
	a.Games = games

	if len(a.Gacha.Characters) == 0 && len(a.Gacha.RarityWeights) == 0 {
		a.Gacha = DefaultArcade().Gacha
		return nil
	}

	weights := make(map[string]int, len(a.Gacha.RarityWeights))
	for _, w := range a.Gacha.RarityWeights {
		if w.Weight <= 0 {
			return fmt.Errorf("rarity %q needs a positive weight", w.Rarity)
		}
		weights[w.Rarity] = w.Weight
	}
	populated := make(map[string]bool)
	for _, c := range a.Gacha.Characters {
		if _, ok := weights[c.Rarity]; !ok {
			return fmt.Errorf("character %q has unweighted rarity %q", c.Name, c.Rarity)
		}
		populated[c.Rarity] = true
	}
	for _, w := range a.Gacha.RarityWeights {
		if !populated[w.Rarity] {
			return fmt.Errorf("rarity %q has no characters", w.Rarity)
		}
	}
	return nil
}
