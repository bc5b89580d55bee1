package game

import (
	"context"
	"testing"
	"time"
)

func TestExpiryWorkerSkipsStaleTurns(t *testing.T) {
	pings := newPingRecorder()
	m, fc := newTestManager(t, WithNotifier(pings))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m.Join(ctx, "maimai", "A")
	m.Join(ctx, "maimai", "B")
	<-pings.ch
	<-pings.ch

	m.StartExpiryWorker(ctx, 2*time.Second)
	waitCtx, waitCancel := context.WithTimeout(ctx, 2*time.Second)
	defer waitCancel()
	if err := fc.BlockUntilContext(waitCtx, 1); err != nil {
		t.Fatalf("worker ticker never registered: %v", err)
	}

	fc.Advance(time.Minute)

	select {
	case <-pings.ch:
	case <-time.After(2 * time.Second):
		t.Fatal("expected the worker to time out A's turn")
	}
	if got := m.PlayingGame("B"); got != "maimai" {
		t.Fatalf("expected B to hold the maimai slot, got %q", got)
	}
}
