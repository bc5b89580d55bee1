package game

import (
	"context"
	"reflect"
	"testing"
	"time"
)

func TestKickCreditsAndAdvances(t *testing.T) {
	m, fc := newTestManager(t)
	ctx := context.Background()
	m.Join(ctx, "maimai", "A")
	m.Accept(ctx, "maimai", "A")
	m.Join(ctx, "maimai", "B")

	fc.Advance(3 * time.Minute)
	applied, err := m.Kick(ctx, "maimai")
	mustApply(t, "kick", applied, err)

	g := m.games["maimai"]
	if g.Occupant != "B" {
		t.Fatalf("expected B next, got %q", g.Occupant)
	}
	if got := g.TotalPlayTime["A"]; got != 3*time.Minute {
		t.Fatalf("expected 3m credited, got %s", got)
	}
	if m.CooldownRemaining("A", "maimai") != 0 {
		t.Fatal("kick must not set a courtesy cooldown")
	}

	m.Kick(ctx, "maimai")
	applied, err = m.Kick(ctx, "maimai")
	mustReject(t, "kick empty game", applied, err)
}

func TestRemoveAndBump(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()
	for _, p := range []string{"A", "B", "C", "D"} {
		m.Join(ctx, "maimai", p)
	}
	g := m.games["maimai"]
	g.SkipCounts["C"] = 2

	applied, err := m.BumpUp(ctx, "maimai", "D")
	mustApply(t, "bump up", applied, err)
	if !reflect.DeepEqual(g.Queue, []string{"B", "D", "C"}) {
		t.Fatalf("expected [B D C], got %v", g.Queue)
	}
	applied, err = m.BumpUp(ctx, "maimai", "B")
	mustReject(t, "bump up head", applied, err)
	applied, err = m.BumpDown(ctx, "maimai", "B")
	mustApply(t, "bump down", applied, err)
	if !reflect.DeepEqual(g.Queue, []string{"D", "B", "C"}) {
		t.Fatalf("expected [D B C], got %v", g.Queue)
	}
	applied, err = m.BumpDown(ctx, "maimai", "C")
	mustReject(t, "bump down tail", applied, err)

	applied, err = m.RemoveFromQueue(ctx, "maimai", "C")
	mustApply(t, "remove", applied, err)
	if _, ok := g.SkipCounts["C"]; ok {
		t.Fatal("expected skip count dropped on removal")
	}
	applied, err = m.RemoveFromQueue(ctx, "maimai", "A")
	mustReject(t, "remove occupant", applied, err)
}

func TestSetPlayingReleasesOtherSlot(t *testing.T) {
	m, fc := newTestManager(t)
	ctx := context.Background()
	m.Join(ctx, "maimai", "A")
	m.Accept(ctx, "maimai", "A")
	m.Join(ctx, "maimai", "B")
	m.Join(ctx, "chunithm", "C")
	m.Accept(ctx, "chunithm", "C")

	fc.Advance(time.Minute)
	applied, err := m.SetPlaying(ctx, "chunithm", "A")
	mustApply(t, "set playing", applied, err)

	mg, cg := m.games["maimai"], m.games["chunithm"]
	if cg.Occupant != "A" || !cg.TurnAccepted || cg.PlayStartedAt == nil {
		t.Fatalf("expected A playing chunithm, got %q accepted=%v", cg.Occupant, cg.TurnAccepted)
	}
	if got := cg.TotalPlayTime["C"]; got != time.Minute {
		t.Fatalf("expected C credited a minute, got %s", got)
	}
	if got := mg.TotalPlayTime["A"]; got != time.Minute {
		t.Fatalf("expected A credited a minute on maimai, got %s", got)
	}
	if mg.Occupant != "B" {
		t.Fatalf("expected maimai handed to B, got %q", mg.Occupant)
	}
	if cg.SessionCounts["A"] != 0 {
		t.Fatal("force-assigned turns are not counted as sessions")
	}
	checkInvariants(t, m)
}

func TestSetPlayingTakesPlayerOutOfLine(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()
	m.Join(ctx, "maimai", "A")
	m.Join(ctx, "maimai", "B")
	m.Join(ctx, "maimai", "C")

	applied, err := m.SetPlaying(ctx, "maimai", "C")
	mustApply(t, "set playing", applied, err)
	g := m.games["maimai"]
	if g.Occupant != "C" || !reflect.DeepEqual(g.Queue, []string{"B"}) {
		t.Fatalf("expected C playing with [B] waiting, got %q %v", g.Occupant, g.Queue)
	}
}

func TestAddToQueueIgnoresCooldown(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()
	m.Join(ctx, "maimai", "A")
	m.Finish(ctx, "maimai", "A")

	applied, err := m.Join(ctx, "maimai", "A")
	mustReject(t, "join", applied, err)
	applied, err = m.AddToQueue(ctx, "maimai", "A")
	mustApply(t, "admin add", applied, err)
	if got := m.games["maimai"].Occupant; got != "A" {
		t.Fatalf("expected A offered the slot, got %q", got)
	}
	applied, err = m.AddToQueue(ctx, "maimai", "A")
	mustReject(t, "admin add duplicate", applied, err)
}

func TestResetStatsKeepsLifetime(t *testing.T) {
	m, fc := newTestManager(t)
	ctx := context.Background()
	m.Join(ctx, "maimai", "A")
	m.Accept(ctx, "maimai", "A")
	fc.Advance(4 * time.Minute)
	m.Finish(ctx, "maimai", "A")

	applied, err := m.ResetStats(ctx)
	mustApply(t, "reset", applied, err)

	g := m.games["maimai"]
	if got := g.DisplayedPlayTime("A"); got != 0 {
		t.Fatalf("expected displayed time reset, got %s", got)
	}
	if len(g.SessionCounts) != 0 {
		t.Fatalf("expected sessions cleared, got %v", g.SessionCounts)
	}
	if got := m.LifetimePlayTime("A"); got != 4*time.Minute {
		t.Fatalf("expected lifetime kept at 4m, got %s", got)
	}

	fc.Advance(time.Minute)
	m.AddToQueue(ctx, "maimai", "A")
	m.Accept(ctx, "maimai", "A")
	fc.Advance(time.Minute)
	m.Finish(ctx, "maimai", "A")
	if got := g.DisplayedPlayTime("A"); got != time.Minute {
		t.Fatalf("expected one displayed minute after reset, got %s", got)
	}
}
