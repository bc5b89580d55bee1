package models

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/lib/pq"
)

// User is a registered player account.
type User struct {
	ID           int64        `db:"id" json:"id"`
	Username     string       `db:"username" json:"username"`
	PasswordHash string       `db:"password_hash" json:"-"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
	LastLoginAt  sql.NullTime `db:"last_login_at" json:"last_login_at,omitempty"`
}

// GameStateRow is one game's persisted queue and turn.
type GameStateRow struct {
	Name          string         `db:"name"`
	Queue         pq.StringArray `db:"queue"`
	Occupant      sql.NullString `db:"occupant"`
	TurnStartedAt sql.NullTime   `db:"turn_started_at"`
	TurnAccepted  bool           `db:"turn_accepted"`
	PlayStartedAt sql.NullTime   `db:"play_started_at"`
	UpdatedAt     time.Time      `db:"updated_at"`
}

// PlayerGameStatsRow holds the per-(game, player) statistics.
type PlayerGameStatsRow struct {
	Game                  string  `db:"game"`
	Username              string  `db:"username"`
	SkipCount             int     `db:"skip_count"`
	TotalPlaySeconds      float64 `db:"total_play_seconds"`
	SessionCount          int     `db:"session_count"`
	PlayTimeOffsetSeconds float64 `db:"play_time_offset_seconds"`
}

type CourtesyCooldownRow struct {
	Username  string    `db:"username"`
	Game      string    `db:"game"`
	ExpiresAt time.Time `db:"expires_at"`
}

type GlobalStateRow struct {
	Key   string `db:"key"`
	Value string `db:"value"`
}

type GachaCollectionRow struct {
	Username  string `db:"username"`
	Character string `db:"character"`
	Count     int    `db:"count"`
}

type GachaPullsGivenRow struct {
	Username string `db:"username"`
	Pulls    int    `db:"pulls"`
}

// AdminAudit represents an admin action audit log entry
type AdminAudit struct {
	ID            int64           `db:"id" json:"id"`
	AdminUsername string          `db:"admin_username" json:"admin_username"`
	IP            sql.NullString  `db:"ip" json:"-"`
	Route         string          `db:"route" json:"route"`
	Action        string          `db:"action" json:"action"`
	Details       json.RawMessage `db:"details" json:"details"`
	Success       bool            `db:"success" json:"success"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
}

// RuntimeConfig is an admin-editable setting that overrides the environment.
type RuntimeConfig struct {
	Key         string         `db:"key" json:"key"`
	Value       string         `db:"value" json:"value"`
	ValueType   string         `db:"value_type" json:"value_type"`
	Description sql.NullString `db:"description" json:"-"`
	UpdatedBy   sql.NullString `db:"updated_by" json:"-"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}
