package storage

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/arcadeline/backend/internal/game"
	"github.com/arcadeline/backend/internal/models"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

const (
	keyQueuePaused    = "queue_paused"
	keyPauseStartedAt = "pause_started_at"
)

// LoadSnapshot reads the last committed game table. It returns nil when
// nothing has been stored yet.
func (s *Store) LoadSnapshot(ctx context.Context) (*game.Snapshot, error) {
	var rows []models.GameStateRow
	if err := s.db.SelectContext(ctx, &rows, `
		SELECT name, queue, occupant, turn_started_at, turn_accepted, play_started_at, updated_at
		FROM game_state
	`); err != nil {
		return nil, fmt.Errorf("select game_state: %w", err)
	}

	var stats []models.PlayerGameStatsRow
	if err := s.db.SelectContext(ctx, &stats, `
		SELECT game, username, skip_count, total_play_seconds, session_count, play_time_offset_seconds
		FROM player_game_stats
		ORDER BY game, username
	`); err != nil {
		return nil, fmt.Errorf("select player_game_stats: %w", err)
	}

	var cooldowns []models.CourtesyCooldownRow
	if err := s.db.SelectContext(ctx, &cooldowns, `
		SELECT username, game, expires_at FROM courtesy_cooldowns WHERE expires_at > NOW()
	`); err != nil {
		return nil, fmt.Errorf("select courtesy_cooldowns: %w", err)
	}

	var globals []models.GlobalStateRow
	if err := s.db.SelectContext(ctx, &globals, `SELECT key, value FROM global_state`); err != nil {
		return nil, fmt.Errorf("select global_state: %w", err)
	}

	if len(rows) == 0 && len(globals) == 0 {
		return nil, nil
	}

	snap := buildSnapshot(rows, stats, cooldowns, globals)
	log.Info().Str("component", "store").Int("games", len(snap.Games)).Int("cooldowns", len(snap.Cooldowns)).
		Msg("loaded game snapshot")
	return snap, nil
}

// SaveSnapshot writes the whole table in one transaction, so a reader after a
// crash sees either this snapshot or the previous one.
func (s *Store) SaveSnapshot(ctx context.Context, snap *game.Snapshot) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, g := range snap.Games {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO game_state (name, queue, occupant, turn_started_at, turn_accepted, play_started_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, NOW())
			ON CONFLICT (name) DO UPDATE SET
				queue = EXCLUDED.queue,
				occupant = EXCLUDED.occupant,
				turn_started_at = EXCLUDED.turn_started_at,
				turn_accepted = EXCLUDED.turn_accepted,
				play_started_at = EXCLUDED.play_started_at,
				updated_at = NOW()
		`, g.Name, pq.Array(nonNil(g.Queue)), nullString(g.Occupant), nullTime(g.TurnStartedAt),
			g.TurnAccepted, nullTime(g.PlayStartedAt)); err != nil {
			return fmt.Errorf("upsert game_state %s: %w", g.Name, err)
		}

		players := make([]string, 0, len(g.Stats))
		for _, st := range g.Stats {
			players = append(players, st.Player)
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO player_game_stats (game, username, skip_count, total_play_seconds, session_count, play_time_offset_seconds)
				VALUES ($1, $2, $3, $4, $5, $6)
				ON CONFLICT (game, username) DO UPDATE SET
					skip_count = EXCLUDED.skip_count,
					total_play_seconds = EXCLUDED.total_play_seconds,
					session_count = EXCLUDED.session_count,
					play_time_offset_seconds = EXCLUDED.play_time_offset_seconds
			`, g.Name, st.Player, st.SkipCount, toSeconds(st.TotalPlayTime), st.SessionCount,
				toSeconds(st.PlayTimeOffset)); err != nil {
				return fmt.Errorf("upsert stats %s/%s: %w", g.Name, st.Player, err)
			}
		}

		if _, err := tx.ExecContext(ctx, `
			DELETE FROM player_game_stats WHERE game = $1 AND NOT (username = ANY($2))
		`, g.Name, pq.Array(players)); err != nil {
			return fmt.Errorf("prune stats %s: %w", g.Name, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM courtesy_cooldowns`); err != nil {
		return fmt.Errorf("clear cooldowns: %w", err)
	}
	for _, cd := range snap.Cooldowns {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO courtesy_cooldowns (username, game, expires_at) VALUES ($1, $2, $3)
		`, cd.Player, cd.Game, cd.ExpiresAt.UTC()); err != nil {
			return fmt.Errorf("insert cooldown %s/%s: %w", cd.Player, cd.Game, err)
		}
	}

	for key, value := range globalValues(snap) {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO global_state (key, value) VALUES ($1, $2)
			ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
		`, key, value); err != nil {
			return fmt.Errorf("upsert global_state %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}
	return nil
}

func buildSnapshot(rows []models.GameStateRow, stats []models.PlayerGameStatsRow,
	cooldowns []models.CourtesyCooldownRow, globals []models.GlobalStateRow) *game.Snapshot {

	byGame := make(map[string][]game.PlayerStats)
	for _, st := range stats {
		byGame[st.Game] = append(byGame[st.Game], game.PlayerStats{
			Player:         st.Username,
			SkipCount:      st.SkipCount,
			TotalPlayTime:  fromSeconds(st.TotalPlaySeconds),
			SessionCount:   st.SessionCount,
			PlayTimeOffset: fromSeconds(st.PlayTimeOffsetSeconds),
		})
	}

	snap := &game.Snapshot{Games: make([]game.GameRecord, 0, len(rows))}
	for _, r := range rows {
		snap.Games = append(snap.Games, game.GameRecord{
			Name:          r.Name,
			Queue:         append([]string{}, r.Queue...),
			Occupant:      r.Occupant.String,
			TurnStartedAt: timeFromNull(r.TurnStartedAt),
			TurnAccepted:  r.TurnAccepted,
			PlayStartedAt: timeFromNull(r.PlayStartedAt),
			Stats:         byGame[r.Name],
		})
	}

	for _, cd := range cooldowns {
		snap.Cooldowns = append(snap.Cooldowns, game.CooldownRecord{
			Player:    cd.Username,
			Game:      cd.Game,
			ExpiresAt: cd.ExpiresAt,
		})
	}

	for _, g := range globals {
		switch g.Key {
		case keyQueuePaused:
			snap.Paused, _ = strconv.ParseBool(g.Value)
		case keyPauseStartedAt:
			if g.Value == "" {
				continue
			}
			if t, err := time.Parse(time.RFC3339Nano, g.Value); err == nil {
				snap.PausedAt = &t
			}
		}
	}
	return snap
}

func globalValues(snap *game.Snapshot) map[string]string {
	values := map[string]string{
		keyQueuePaused:    strconv.FormatBool(snap.Paused),
		keyPauseStartedAt: "",
	}
	if snap.PausedAt != nil {
		values[keyPauseStartedAt] = snap.PausedAt.UTC().Format(time.RFC3339Nano)
	}
	return values
}

// nonNil keeps pq.Array from encoding a nil slice as NULL.
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
