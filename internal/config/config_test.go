package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TURN_TIMEOUT_SECONDS", "")
	t.Setenv("COURTESY_COOLDOWN_SECONDS", "")
	t.Setenv("ADMIN_USERNAME", "")

	cfg := Load()
	if cfg.TurnTimeout() != 60*time.Second {
		t.Errorf("expected 60s turn timeout, got %s", cfg.TurnTimeout())
	}
	if cfg.CourtesyCooldown() != 10*time.Second {
		t.Errorf("expected 10s cooldown, got %s", cfg.CourtesyCooldown())
	}
	if cfg.AdminUsername != "admin" {
		t.Errorf("expected admin username, got %q", cfg.AdminUsername)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("TURN_TIMEOUT_SECONDS", "90")
	t.Setenv("EVENT_BUS", "NATS")
	t.Setenv("MIGRATE_ON_START", "false")
	t.Setenv("GACHA_MINUTES_PER_PULL", "not-a-number")

	cfg := Load()
	if cfg.TurnTimeoutSeconds != 90 {
		t.Errorf("expected 90, got %d", cfg.TurnTimeoutSeconds)
	}
	if cfg.EventBus != "nats" {
		t.Errorf("expected nats, got %q", cfg.EventBus)
	}
	if cfg.MigrateOnStart {
		t.Error("expected migrations disabled")
	}
	if cfg.GachaMinutesPerPull != 30 {
		t.Errorf("expected fallback to 30, got %d", cfg.GachaMinutesPerPull)
	}
}

func TestLoadArcadeMissingFile(t *testing.T) {
	arcade, err := LoadArcade(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if len(arcade.Games) != 6 || arcade.Games[0] != "Maimai" {
		t.Fatalf("expected built-in roster, got %v", arcade.Games)
	}
}

func TestLoadArcadeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arcade.yaml")
	body := `games:
  - " Taiko "
  - Taiko
  - DDR
gacha:
  rarity_weights:
    - {rarity: common, weight: 3}
    - {rarity: rare, weight: 1}
  characters:
    - {name: Don, rarity: common}
    - {name: Katsu, rarity: rare}
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	arcade, err := LoadArcade(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(arcade.Games) != 2 || arcade.Games[0] != "Taiko" || arcade.Games[1] != "DDR" {
		t.Fatalf("expected [Taiko DDR], got %v", arcade.Games)
	}
	if len(arcade.Gacha.Characters) != 2 {
		t.Fatalf("expected 2 characters, got %d", len(arcade.Gacha.Characters))
	}
}

func TestLoadArcadeRejectsBadGacha(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arcade.yaml")
	body := `games: [Taiko]
gacha:
  rarity_weights:
    - {rarity: common, weight: 1}
  characters:
    - {name: Ghost, rarity: mythic}
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadArcade(path); err == nil {
		t.Fatal("expected an error for a character with an unweighted rarity")
	}
}
