// Package auth resolves requests to player names. A login issues an HS256 JWT
// carried in a cookie; the session id inside it must still exist in Redis.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/arcadeline/backend/internal/config"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const CookieName = "arcade_session"

var ErrNoSession = errors.New("no active session")

// Claims is the session token payload. Subject is the username.
type Claims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

type Sessions struct {
	rdb       *redis.Client
	secret    []byte
	ttl       time.Duration
	rateLimit time.Duration
	admin     string
}

func NewSessions(rdb *redis.Client, cfg *config.Config) *Sessions {
	return &Sessions{
		rdb:       rdb,
		secret:    []byte(cfg.JWTSecret),
		ttl:       cfg.SessionTTL(),
		rateLimit: time.Duration(cfg.LoginRateLimitSeconds) * time.Second,
		admin:     cfg.AdminUsername,
	}
}

// TTL is how long an issued session stays valid.
func (s *Sessions) TTL() time.Duration {
	return s.ttl
}

func sessionKey(sid string) string {
	return "session:" + sid
}

// Issue starts a session for username and returns the signed token.
func (s *Sessions) Issue(ctx context.Context, username string) (string, error) {
	sid := uuid.NewString()
	if err := s.rdb.Set(ctx, sessionKey(sid), username, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	token, err := signToken(s.secret, username, sid, time.Now(), s.ttl)
	if err != nil {
		s.rdb.Del(ctx, sessionKey(sid))
		return "", err
	}
	log.Debug().Str("component", "auth").Str("player", username).Str("sid", sid).Msg("session issued")
	return token, nil
}

// Resolve returns the username behind token, or ErrNoSession.
func (s *Sessions) Resolve(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrNoSession
	}
	claims, err := parseToken(s.secret, token)
	if err != nil {
		return "", ErrNoSession
	}
	username, err := s.rdb.Get(ctx, sessionKey(claims.SessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNoSession
	}
	if err != nil {
		return "", fmt.Errorf("lookup session: %w", err)
	}
	if username != claims.Subject {
		return "", ErrNoSession
	}
	return username, nil
}

// Revoke ends the session behind token. Unknown tokens are ignored.
func (s *Sessions) Revoke(ctx context.Context, token string) error {
	claims, err := parseToken(s.secret, token)
	if err != nil {
		return nil
	}
	if err := s.rdb.Del(ctx, sessionKey(claims.SessionID)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// AllowAttempt rate limits login and register attempts per username. Redis
// errors let the attempt through.
func (s *Sessions) AllowAttempt(ctx context.Context, username string) bool {
	if s.rateLimit <= 0 {
		return true
	}
	key := "login_rate:" + strings.ToLower(strings.TrimSpace(username))
	ok, err := s.rdb.SetNX(ctx, key, "1", s.rateLimit).Result()
	if err != nil {
		log.Warn().Str("component", "auth").Err(err).Msg("rate limit check failed")
		return true
	}
	return ok
}

// IsAdministrator reports whether player is the reserved administrator name.
func (s *Sessions) IsAdministrator(player string) bool {
	return IsAdministrator(s.admin, player)
}

// IsAdministrator compares trimmed names case-insensitively. Empty names never
// match.
func IsAdministrator(adminUsername, player string) bool {
	admin := strings.TrimSpace(adminUsername)
	player = strings.TrimSpace(player)
	return admin != "" && player != "" && strings.EqualFold(admin, player)
}

func signToken(secret []byte, username, sid string, now time.Time, ttl time.Duration) (string, error) {
	claims := Claims{
		SessionID: sid,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func parseToken(secret []byte, token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !parsed.Valid || claims.SessionID == "" || claims.Subject == "" {
		return nil, ErrNoSession
	}
	return claims, nil
}
