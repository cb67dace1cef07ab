package utils

import (
	"fmt"
	"testing"
	"time"

	"github.com/golang-jwt/jwt"

	"subliBack/internal/models"
)

func TestNewAccessTokenRoundTrip(t *testing.T) {
	m, err := NewManager("test-key")
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	signed, err := m.NewAccessToken(7, models.RoleLister, time.Hour)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}

	claims := &models.Claims{}
	token, err := jwt.ParseWithClaims(signed, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte("test-key"), nil
	})
	if err != nil || !token.Valid {
		t.Fatalf("parse signed token: %v", err)
	}
	if claims.UserID != 7 || claims.Role != models.RoleLister {
		t.Fatalf("claims round trip: got user %d role %q", claims.UserID, claims.Role)
	}
}

func TestRefreshTokensAreUnique(t *testing.T) {
	m, err := NewManager("test-key")
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		token, err := m.NewRefreshToken()
		if err != nil {
			t.Fatalf("NewRefreshToken: %v", err)
		}
		if len(token) != 64 {
			t.Fatalf("expected 64 hex chars, got %d", len(token))
		}
		if seen[token] {
			t.Fatalf("duplicate refresh token after %d draws", i)
		}
		seen[token] = true
	}
}

// An unseeded PRNG replays the same opening codes in every process, which
// would let anyone predict another account's reset code. The codes must not
// match that fixed sequence.
func TestResetCodeNotDeterministic(t *testing.T) {
	got := make([]string, 3)
	for i := range got {
		code, err := NewResetCode()
		if err != nil {
			t.Fatalf("NewResetCode: %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("expected 6-digit code, got %q", code)
		}
		got[i] = code
	}

	if got[0] == "989351" && got[1] == "091121" && got[2] == "475072" {
		t.Fatalf("reset codes follow the unseeded-PRNG sequence: %v", got)
	}
}
