package game

import (
	"context"
	"testing"
	"time"
)

func TestViewReportsPlayerSlots(t *testing.T) {
	m, fc := newTestManager(t)
	ctx := context.Background()
	m.Join(ctx, "maimai", "A")
	m.Join(ctx, "maimai", "B")
	fc.Advance(15 * time.Second)

	board, err := m.View(ctx, "B")
	if err != nil {
		t.Fatal(err)
	}
	if len(board.Games) != 3 || board.Games[0].Name != "maimai" {
		t.Fatalf("expected games in configured order, got %+v", board.Games)
	}
	mv := board.Games[0]
	if mv.Status != StatusPending || mv.AcceptRemainingSeconds != 45 {
		t.Fatalf("expected pending with 45s left, got %s %d", mv.Status, mv.AcceptRemainingSeconds)
	}
	slot := board.Player.Games["maimai"]
	if slot.State != SlotQueued || slot.Position != 1 {
		t.Fatalf("expected B queued first, got %+v", slot)
	}
	if board.Player.Games["chunithm"].State != SlotNone {
		t.Fatal("expected no slot on chunithm")
	}
}

func TestViewRunsTimeouts(t *testing.T) {
	pings := newPingRecorder()
	m, fc := newTestManager(t, WithNotifier(pings))
	ctx := context.Background()
	m.Join(ctx, "maimai", "A")
	m.Join(ctx, "maimai", "B")
	<-pings.ch
	<-pings.ch

	fc.Advance(time.Minute)
	board, err := m.View(ctx, "A")
	if err != nil {
		t.Fatal(err)
	}
	if board.Games[0].Occupant != "B" {
		t.Fatalf("expected B after A timed out, got %q", board.Games[0].Occupant)
	}
	if slot := board.Player.Games["maimai"]; slot.State != SlotQueued || slot.Position != 1 {
		t.Fatalf("expected A right behind B, got %+v", slot)
	}
	if len(pings.ch) != 1 {
		t.Fatalf("expected one ping for the timeout, got %d", len(pings.ch))
	}

	if _, err := m.View(ctx, ""); err != nil {
		t.Fatal(err)
	}
	if len(pings.ch) != 1 {
		t.Fatal("expected a quiet read not to ping")
	}
}

func TestViewShowsCooldownAndStats(t *testing.T) {
	m, fc := newTestManager(t)
	ctx := context.Background()
	m.Join(ctx, "maimai", "A")
	m.Accept(ctx, "maimai", "A")
	fc.Advance(90 * time.Second)
	m.Finish(ctx, "maimai", "A")
	fc.Advance(4 * time.Second)

	board, _ := m.View(ctx, "A")
	if got := board.Player.Games["maimai"].CooldownSeconds; got != 6 {
		t.Fatalf("expected 6s of cooldown, got %d", got)
	}
	if board.Player.LifetimePlaySeconds != 90 {
		t.Fatalf("expected 90s lifetime, got %d", board.Player.LifetimePlaySeconds)
	}
	stats := board.Games[0].Stats
	if len(stats) != 1 || stats[0].Player != "A" || stats[0].PlaySeconds != 90 || stats[0].Sessions != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestViewFreezesClockWhilePaused(t *testing.T) {
	m, fc := newTestManager(t)
	ctx := context.Background()
	m.Join(ctx, "maimai", "A")
	m.Accept(ctx, "maimai", "A")
	fc.Advance(10 * time.Second)
	m.TogglePause(ctx)
	fc.Advance(time.Minute)

	board, _ := m.View(ctx, "")
	if !board.Paused || board.Games[0].PlayingSeconds != 10 {
		t.Fatalf("expected paused board at 10s of play, got paused=%v %d", board.Paused, board.Games[0].PlayingSeconds)
	}
}
