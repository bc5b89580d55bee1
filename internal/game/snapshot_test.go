package game

import (
	"context"
	"reflect"
	"testing"
	"time"
)

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	m, fc := newTestManager(t)
	ctx := context.Background()
	m.Join(ctx, "maimai", "A")
	m.Accept(ctx, "maimai", "A")
	m.Join(ctx, "maimai", "B")
	m.Join(ctx, "chunithm", "C")
	fc.Advance(2 * time.Minute)
	m.Finish(ctx, "chunithm", "C")
	m.TogglePause(ctx)

	snap := m.Snapshot()

	restored := NewManager(m.Games(), DefaultSettings(), WithClock(fc))
	restored.Restore(snap)

	for _, name := range m.Games() {
		a, b := m.games[name], restored.games[name]
		if a.Occupant != b.Occupant || !reflect.DeepEqual(a.Queue, b.Queue) || a.TurnAccepted != b.TurnAccepted {
			t.Fatalf("%s: restored %q %v differs from %q %v", name, b.Occupant, b.Queue, a.Occupant, a.Queue)
		}
		if !reflect.DeepEqual(a.SessionCounts, b.SessionCounts) || !reflect.DeepEqual(a.TotalPlayTime, b.TotalPlayTime) {
			t.Fatalf("%s: stats differ after restore", name)
		}
	}
	if !restored.Paused() {
		t.Fatal("expected pause state restored")
	}
	if got := restored.CooldownRemaining("C", "chunithm"); got != 10*time.Second {
		t.Fatalf("expected cooldown restored, got %s", got)
	}
}

func TestRestoreNormalizesBrokenState(t *testing.T) {
	m, fc := newTestManager(t)
	started := fc.Now().Add(-10 * time.Second)

	m.Restore(&Snapshot{
		Seq: 9,
		Games: []GameRecord{
			{Name: "maimai", Queue: []string{"A", "B", "B"}, Occupant: "A", TurnStartedAt: &started},
			{Name: "chunithm", Queue: []string{"D"}, Occupant: "A", TurnAccepted: true},
			{Name: "wacca", TurnAccepted: true, PlayStartedAt: &started},
			{Name: "retired", Queue: []string{"Z"}},
		},
		Cooldowns: []CooldownRecord{
			{Player: "E", Game: "retired", ExpiresAt: fc.Now().Add(time.Minute)},
		},
	})

	if g := m.games["maimai"]; g.Occupant != "A" || !reflect.DeepEqual(g.Queue, []string{"B"}) {
		t.Fatalf("maimai: expected A with [B], got %q %v", g.Occupant, g.Queue)
	}
	if g := m.games["chunithm"]; g.Occupant != "D" || g.TurnAccepted || len(g.Queue) != 0 {
		t.Fatalf("chunithm: expected A's second slot released to D, got %q %v", g.Occupant, g.Queue)
	}
	if g := m.games["wacca"]; g.TurnAccepted || g.PlayStartedAt != nil {
		t.Fatal("wacca: expected stray turn fields cleared")
	}
	if _, ok := m.games["retired"]; ok {
		t.Fatal("expected unconfigured game ignored")
	}
	if len(m.cooldowns) != 0 {
		t.Fatalf("expected cooldown for unknown game dropped, got %d", len(m.cooldowns))
	}
	if m.seq != 9 {
		t.Fatalf("expected sequence carried over, got %d", m.seq)
	}
	checkInvariants(t, m)
}

func TestLoadFromStore(t *testing.T) {
	base, fc := newTestManager(t)
	started := fc.Now()
	store := &memStore{load: &Snapshot{
		Games: []GameRecord{{
			Name:          "maimai",
			Queue:         []string{"B"},
			Occupant:      "A",
			TurnStartedAt: &started,
			TurnAccepted:  true,
			PlayStartedAt: &started,
			Stats:         []PlayerStats{{Player: "A", SessionCount: 3, TotalPlayTime: time.Hour}},
		}},
	}}
	m := NewManager(base.Games(), DefaultSettings(), WithClock(fc), WithStore(store))

	if err := m.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	g := m.games["maimai"]
	if g.Status() != StatusPlaying || g.SessionCounts["A"] != 3 {
		t.Fatalf("expected A playing with 3 sessions, got %s %d", g.Status(), g.SessionCounts["A"])
	}
	if got := m.LifetimePlayTime("A"); got != time.Hour {
		t.Fatalf("expected an hour of lifetime play, got %s", got)
	}
}
