// Package storage persists the arcade's game table and gacha state in
// PostgreSQL through sqlx.
package storage

import (
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
)

// Store is the durable side of the game manager and the gacha machine.
type Store struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

func toSeconds(d time.Duration) float64 {
	return d.Seconds()
}

func fromSeconds(s float64) time.Duration {
	if s <= 0 {
		return 0
	}
	return time.Duration(s * float64(time.Second))
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func timeFromNull(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
