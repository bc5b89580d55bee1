// Package accounts stores player logins.
package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/arcadeline/backend/internal/models"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidUsername    = errors.New("username must be 1-32 characters")
	ErrPasswordTooShort   = errors.New("password must be at least 4 characters")
)

const (
	maxUsernameLen  = 32
	minPasswordLen  = 4
	uniqueViolation = "23505"
)

type Store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// NormalizeUsername trims surrounding space and validates the length.
func NormalizeUsername(username string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" || len([]rune(username)) > maxUsernameLen {
		return "", ErrInvalidUsername
	}
	return username, nil
}

// Register creates a player account with a bcrypt password hash.
func (s *Store) Register(ctx context.Context, username, password string) (*models.User, error) {
	username, err := NormalizeUsername(username)
	if err != nil {
		return nil, err
	}
	if len(password) < minPasswordLen {
		return nil, ErrPasswordTooShort
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	var u models.User
	err = s.db.GetContext(ctx, &u, `
		INSERT INTO users (username, password_hash, created_at)
		VALUES ($1, $2, NOW())
		RETURNING id, username, password_hash, created_at, last_login_at
	`, username, string(hash))
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return &u, nil
}

// Authenticate checks a username and password pair.
func (s *Store) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)

	var u models.User
	err := s.db.GetContext(ctx, &u, `
		SELECT id, username, password_hash, created_at, last_login_at FROM users WHERE username=$1
	`, username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("select user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	if _, err := s.db.ExecContext(ctx, `UPDATE users SET last_login_at=NOW() WHERE id=$1`, u.ID); err != nil {
		return nil, fmt.Errorf("touch last login: %w", err)
	}
	return &u, nil
}

// SetPassword creates the account or replaces its password.
func (s *Store) SetPassword(ctx context.Context, username, password string) error {
	username, err := NormalizeUsername(username)
	if err != nil {
		return err
	}
	if len(password) < minPasswordLen {
		return ErrPasswordTooShort
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO users (username, password_hash, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (username) DO UPDATE SET password_hash = EXCLUDED.password_hash
	`, username, string(hash))
	return err
}

// ListUsernames returns every registered username in alphabetical order.
func (s *Store) ListUsernames(ctx context.Context) ([]string, error) {
	var names []string
	if err := s.db.SelectContext(ctx, &names, `SELECT username FROM users ORDER BY username`); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return names, nil
}
