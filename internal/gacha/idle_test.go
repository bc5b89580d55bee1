package gacha

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

func TestIdleRuns(t *testing.T) {
	fc := clockwork.NewFakeClock()
	runs := NewIdleRuns(fc, 20*time.Second)

	if runs.Complete("A") {
		t.Fatal("expected completion without a start to fail")
	}

	runs.Start("A")
	fc.Advance(10 * time.Second)
	if runs.Complete("A") {
		t.Fatal("expected an early completion to fail")
	}

	fc.Advance(10 * time.Second)
	if !runs.Complete("A") {
		t.Fatal("expected completion after the minimum run")
	}
	if runs.Complete("A") {
		t.Fatal("expected a run to pay out once")
	}
}
