package admin

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/arcadeline/backend/internal/config"
	"github.com/arcadeline/backend/internal/models"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

var ErrUnknownConfigKey = errors.New("unknown config key")

type runtimeDefault struct {
	key         string
	valueType   string
	description string
	current     func(*config.Config) int
}

var runtimeDefaults = []runtimeDefault{
	{"turn_timeout_seconds", "int", "Seconds a called player has to accept their turn",
		func(c *config.Config) int { return c.TurnTimeoutSeconds }},
	{"courtesy_cooldown_seconds", "int", "Seconds before a player who emptied a game may rejoin it",
		func(c *config.Config) int { return c.CourtesyCooldownSeconds }},
	{"gacha_minutes_per_pull", "int", "Minutes of accepted play time per gacha pull",
		func(c *config.Config) int { return c.GachaMinutesPerPull }},
}

// SeedRuntimeConfig inserts the editable keys with the environment values.
// Existing rows are left alone.
func SeedRuntimeConfig(ctx context.Context, db *sqlx.DB, cfg *config.Config) error {
	for _, d := range runtimeDefaults {
		_, err := db.ExecContext(ctx, `
			INSERT INTO runtime_config (key, value, value_type, description, updated_by, updated_at)
			VALUES ($1, $2, $3, $4, 'system', NOW())
			ON CONFLICT (key) DO NOTHING
		`, d.key, strconv.Itoa(d.current(cfg)), d.valueType, d.description)
		if err != nil {
			return fmt.Errorf("seed runtime config %s: %w", d.key, err)
		}
	}
	return nil
}

// GetAllRuntimeConfig returns all runtime config entries
func GetAllRuntimeConfig(ctx context.Context, db *sqlx.DB) ([]models.RuntimeConfig, error) {
	configs := []models.RuntimeConfig{}
	err := db.SelectContext(ctx, &configs, `
		SELECT key, value, value_type, description, updated_by, updated_at
		FROM runtime_config
		ORDER BY key
	`)
	return configs, err
}

// GetRuntimeConfigValue returns a single runtime config value
func GetRuntimeConfigValue(ctx context.Context, db *sqlx.DB, key string) (*models.RuntimeConfig, error) {
	var cfg models.RuntimeConfig
	err := db.GetContext(ctx, &cfg, `SELECT key, value, value_type, description, updated_by, updated_at FROM runtime_config WHERE key=$1`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUnknownConfigKey
	}
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ValidateValue checks value against a runtime config type.
func ValidateValue(valueType, value string) error {
	switch valueType {
	case "int":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer value: %s", value)
		}
		if v < 0 {
			return fmt.Errorf("value must not be negative: %d", v)
		}
	case "float":
		if _, err := strconv.ParseFloat(value, 64); err != nil {
			return fmt.Errorf("invalid float value: %s", value)
		}
	case "bool":
		if value != "true" && value != "false" {
			return fmt.Errorf("invalid boolean value: %s (must be 'true' or 'false')", value)
		}
	}
	return nil
}

// UpdateRuntimeConfigValue updates a single runtime config value
func UpdateRuntimeConfigValue(ctx context.Context, db *sqlx.DB, key, value, adminUsername string) error {
	existing, err := GetRuntimeConfigValue(ctx, db, key)
	if err != nil {
		return err
	}
	if err := ValidateValue(existing.ValueType, value); err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		UPDATE runtime_config SET value=$1, updated_by=$2, updated_at=NOW() WHERE key=$3
	`, value, adminUsername, key)
	return err
}

// ApplyValue writes one override into cfg. It reports whether key is known
// and value parsed.
func ApplyValue(cfg *config.Config, key, value string) bool {
	v, err := strconv.Atoi(value)
	if err != nil || v < 0 {
		return false
	}
	switch key {
	case "turn_timeout_seconds":
		cfg.TurnTimeoutSeconds = v
	case "courtesy_cooldown_seconds":
		cfg.CourtesyCooldownSeconds = v
	case "gacha_minutes_per_pull":
		cfg.GachaMinutesPerPull = v
	default:
		return false
	}
	return true
}

// ApplyRuntimeConfigToConfig loads runtime config from DB and applies overrides to the Config struct
func ApplyRuntimeConfigToConfig(ctx context.Context, db *sqlx.DB, cfg *config.Config) error {
	configs, err := GetAllRuntimeConfig(ctx, db)
	if err != nil {
		return err
	}

	applied := 0
	for _, c := range configs {
		if ApplyValue(cfg, c.Key, c.Value) {
			applied++
		}
	}

	log.Info().Str("component", "admin").Int("overrides", applied).Msg("applied runtime config from database")
	return nil
}
