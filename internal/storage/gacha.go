package storage

import (
	"context"
	"fmt"

	"github.com/arcadeline/backend/internal/models"
)

// LoadGacha reads every collection and granted-pull count.
func (s *Store) LoadGacha(ctx context.Context) (map[string]map[string]int, map[string]int, error) {
	var owned []models.GachaCollectionRow
	if err := s.db.SelectContext(ctx, &owned, `SELECT username, character, count FROM gacha_collections`); err != nil {
		return nil, nil, fmt.Errorf("select gacha_collections: %w", err)
	}
	var given []models.GachaPullsGivenRow
	if err := s.db.SelectContext(ctx, &given, `SELECT username, pulls FROM gacha_pulls_given`); err != nil {
		return nil, nil, fmt.Errorf("select gacha_pulls_given: %w", err)
	}

	collections := make(map[string]map[string]int)
	for _, row := range owned {
		if collections[row.Username] == nil {
			collections[row.Username] = make(map[string]int)
		}
		collections[row.Username][row.Character] = row.Count
	}
	pulls := make(map[string]int, len(given))
	for _, row := range given {
		pulls[row.Username] = row.Pulls
	}
	return collections, pulls, nil
}

// SaveGacha upserts every collection count and granted-pull count.
func (s *Store) SaveGacha(ctx context.Context, collections map[string]map[string]int, given map[string]int) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for player, owned := range collections {
		for character, count := range owned {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO gacha_collections (username, character, count) VALUES ($1, $2, $3)
				ON CONFLICT (username, character) DO UPDATE SET count = EXCLUDED.count
			`, player, character, count); err != nil {
				return fmt.Errorf("upsert collection %s/%s: %w", player, character, err)
			}
		}
	}
	for player, pulls := range given {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO gacha_pulls_given (username, pulls) VALUES ($1, $2)
			ON CONFLICT (username) DO UPDATE SET pulls = EXCLUDED.pulls
		`, player, pulls); err != nil {
			return fmt.Errorf("upsert pulls given %s: %w", player, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit gacha: %w", err)
	}
	return nil
}
