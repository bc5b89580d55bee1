package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

func TestIsAdministrator(t *testing.T) {
	cases := []struct {
		admin, player string
		want          bool
	}{
		{"admin", "admin", true},
		{"admin", "  ADMIN ", true},
		{"Root", "root", true},
		{"admin", "admin2", false},
		{"admin", "", false},
		{"", "", false},
	}
	for _, c := range cases {
		if got := IsAdministrator(c.admin, c.player); got != c.want {
			t.Errorf("IsAdministrator(%q, %q) = %v, want %v", c.admin, c.player, got, c.want)
		}
	}
}

func TestTokenRoundTrip(t *testing.T) {
	secret := []byte("test-secret")
	token, err := signToken(secret, "alice", "sid-1", time.Now(), time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	claims, err := parseToken(secret, token)
	if err != nil {
		t.Fatal(err)
	}
	if claims.Subject != "alice" || claims.SessionID != "sid-1" {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestParseTokenRejects(t *testing.T) {
	secret := []byte("test-secret")

	expired, _ := signToken(secret, "alice", "sid-1", time.Now().Add(-2*time.Hour), time.Hour)
	if _, err := parseToken(secret, expired); err == nil {
		t.Error("expected an expired token to be rejected")
	}

	other, _ := signToken([]byte("other"), "alice", "sid-1", time.Now(), time.Hour)
	if _, err := parseToken(secret, other); err == nil {
		t.Error("expected a token signed with another key to be rejected")
	}

	noSID, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "alice", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString(secret)
	if _, err := parseToken(secret, noSID); err == nil {
		t.Error("expected a token without a session id to be rejected")
	}

	if _, err := parseToken(secret, "not-a-jwt"); err == nil {
		t.Error("expected garbage to be rejected")
	}
}
