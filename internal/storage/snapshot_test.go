package storage

import (
	"database/sql"
	"reflect"
	"testing"
	"time"

	"github.com/arcadeline/backend/internal/game"
	"github.com/arcadeline/backend/internal/models"
)

func TestBuildSnapshot(t *testing.T) {
	started := time.Date(2024, 5, 1, 18, 0, 0, 0, time.UTC)
	paused := started.Add(90 * time.Second)

	rows := []models.GameStateRow{{
		Name:          "Maimai",
		Queue:         []string{"bob", "carol"},
		Occupant:      sql.NullString{String: "alice", Valid: true},
		TurnStartedAt: sql.NullTime{Time: started, Valid: true},
		TurnAccepted:  true,
		PlayStartedAt: sql.NullTime{Time: started, Valid: true},
	}, {
		Name: "Wacca",
	}}
	stats := []models.PlayerGameStatsRow{{
		Game: "Maimai", Username: "alice", SkipCount: 1, TotalPlaySeconds: 125.5, SessionCount: 2, PlayTimeOffsetSeconds: 60,
	}}
	cooldowns := []models.CourtesyCooldownRow{{Username: "dave", Game: "Wacca", ExpiresAt: started}}
	globals := []models.GlobalStateRow{
		{Key: keyQueuePaused, Value: "true"},
		{Key: keyPauseStartedAt, Value: paused.Format(time.RFC3339Nano)},
	}

	snap := buildSnapshot(rows, stats, cooldowns, globals)

	if len(snap.Games) != 2 {
		t.Fatalf("expected 2 games, got %d", len(snap.Games))
	}
	mm := snap.Games[0]
	if mm.Occupant != "alice" || !mm.TurnAccepted || !mm.PlayStartedAt.Equal(started) {
		t.Fatalf("unexpected game record %+v", mm)
	}
	if !reflect.DeepEqual(mm.Queue, []string{"bob", "carol"}) {
		t.Fatalf("unexpected queue %v", mm.Queue)
	}
	want := game.PlayerStats{
		Player: "alice", SkipCount: 1, TotalPlayTime: 125500 * time.Millisecond, SessionCount: 2, PlayTimeOffset: time.Minute,
	}
	if len(mm.Stats) != 1 || mm.Stats[0] != want {
		t.Fatalf("expected %+v, got %+v", want, mm.Stats)
	}
	if wa := snap.Games[1]; wa.Occupant != "" || wa.TurnStartedAt != nil || len(wa.Queue) != 0 {
		t.Fatalf("expected an empty Wacca record, got %+v", wa)
	}
	if !snap.Paused || snap.PausedAt == nil || !snap.PausedAt.Equal(paused) {
		t.Fatalf("expected paused at %s, got %v %v", paused, snap.Paused, snap.PausedAt)
	}
	if len(snap.Cooldowns) != 1 || snap.Cooldowns[0].Player != "dave" {
		t.Fatalf("unexpected cooldowns %+v", snap.Cooldowns)
	}
}

func TestGlobalValues(t *testing.T) {
	running := globalValues(&game.Snapshot{})
	if running[keyQueuePaused] != "false" || running[keyPauseStartedAt] != "" {
		t.Fatalf("unexpected values %v", running)
	}

	at := time.Date(2024, 5, 1, 18, 0, 0, 0, time.FixedZone("EAT", 3*3600))
	paused := globalValues(&game.Snapshot{Paused: true, PausedAt: &at})
	if paused[keyQueuePaused] != "true" || paused[keyPauseStartedAt] != "2024-05-01T15:00:00Z" {
		t.Fatalf("unexpected values %v", paused)
	}
}

func TestSecondsConversion(t *testing.T) {
	if got := fromSeconds(toSeconds(90 * time.Second)); got != 90*time.Second {
		t.Fatalf("expected 90s, got %s", got)
	}
	if got := fromSeconds(-3); got != 0 {
		t.Fatalf("expected negative seconds clamped, got %s", got)
	}
	if nonNil(nil) == nil {
		t.Fatal("expected a non-nil slice")
	}
}
