package admin

import (
	"context"
	"testing"

	"github.com/arcadeline/backend/internal/config"
)

func TestValidateValue(t *testing.T) {
	cases := []struct {
		valueType, value string
		ok               bool
	}{
		{"int", "60", true},
		{"int", "sixty", false},
		{"int", "-1", false},
		{"float", "0.5", true},
		{"float", "half", false},
		{"bool", "true", true},
		{"bool", "yes", false},
		{"string", "anything", true},
	}
	for _, c := range cases {
		err := ValidateValue(c.valueType, c.value)
		if (err == nil) != c.ok {
			t.Errorf("ValidateValue(%q, %q) error = %v, want ok=%v", c.valueType, c.value, err, c.ok)
		}
	}
}

func TestApplyValue(t *testing.T) {
	cfg := &config.Config{TurnTimeoutSeconds: 60, CourtesyCooldownSeconds: 10, GachaMinutesPerPull: 30}

	if !ApplyValue(cfg, "turn_timeout_seconds", "45") || cfg.TurnTimeoutSeconds != 45 {
		t.Fatalf("expected turn timeout override, got %d", cfg.TurnTimeoutSeconds)
	}
	if !ApplyValue(cfg, "gacha_minutes_per_pull", "15") || cfg.GachaMinutesPerPull != 15 {
		t.Fatalf("expected pull rate override, got %d", cfg.GachaMinutesPerPull)
	}
	if ApplyValue(cfg, "courtesy_cooldown_seconds", "soon") {
		t.Fatal("expected a non-numeric value to be ignored")
	}
	if ApplyValue(cfg, "commission_flat", "5") {
		t.Fatal("expected an unknown key to be ignored")
	}
	if cfg.CourtesyCooldownSeconds != 10 {
		t.Fatalf("expected cooldown untouched, got %d", cfg.CourtesyCooldownSeconds)
	}
}

func TestAuditWithoutDatabase(t *testing.T) {
	ctx := context.Background()
	if err := LogAdminAction(ctx, nil, "admin", "127.0.0.1", "/api/v1/admin/pause", "pause", nil, true); err != nil {
		t.Fatal(err)
	}
	logs, err := GetAdminAuditLogs(ctx, nil, 10, 0)
	if err != nil || len(logs) != 0 {
		t.Fatalf("expected an empty audit log, got %v %v", logs, err)
	}
}
