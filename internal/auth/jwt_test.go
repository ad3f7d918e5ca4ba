// AngelaMos | 2026
// jwt_test.go

package auth

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/carterperez-dev/coinvoice/internal/config"
	"github.com/carterperez-dev/coinvoice/internal/core"
)

func newTestJWTManager(t *testing.T, accessExpire time.Duration) *JWTManager {
	t.Helper()

	dir := t.TempDir()
	privPath := filepath.Join(dir, "private.pem")
	pubPath := filepath.Join(dir, "public.pem")

	if err := GenerateKeyPair(privPath, pubPath); err != nil {
		t.Fatalf("GenerateKeyPair() = %v", err)
	}

	m, err := NewJWTManager(config.JWTConfig{
		PrivateKeyPath:     privPath,
		PublicKeyPath:      pubPath,
		AccessTokenExpire:  accessExpire,
		RefreshTokenExpire: 168 * time.Hour,
		Issuer:             "coinvoice",
		Audience:           "coinvoice-api",
	})
	if err != nil {
		t.Fatalf("NewJWTManager() = %v", err)
	}

	return m
}

func TestAccessTokenRoundTrip(t *testing.T) {
	m := newTestJWTManager(t, 15*time.Minute)
	ctx := context.Background()

	signed, err := m.CreateAccessToken(AccessTokenClaims{
		UserID:       "user-123",
		Role:         "user",
		Plan:         "pro",
		TokenVersion: 3,
	})
	if err != nil {
		t.Fatalf("CreateAccessToken() = %v", err)
	}

	claims, jti, exp, err := m.ParseAccessToken(ctx, signed)
	if err != nil {
		t.Fatalf("ParseAccessToken() = %v", err)
	}

	if claims.UserID != "user-123" {
		t.Errorf("UserID = %q, want user-123", claims.UserID)
	}
	if claims.Role != "user" || claims.Plan != "pro" {
		t.Errorf("role/plan = %q/%q, want user/pro", claims.Role, claims.Plan)
	}
	if claims.TokenVersion != 3 {
		t.Errorf("TokenVersion = %d, want 3", claims.TokenVersion)
	}
	if jti == "" {
		t.Error("token ID is empty")
	}
	if time.Until(exp) <= 0 {
		t.Errorf("expiry %v is not in the future", exp)
	}
}

func TestParseAccessTokenRejections(t *testing.T) {
	m := newTestJWTManager(t, 15*time.Minute)
	ctx := context.Background()

	t.Run("garbage token", func(t *testing.T) {
		_, _, _, err := m.ParseAccessToken(ctx, "not.a.token")
		if !errors.Is(err, core.ErrTokenInvalid) {
			t.Errorf("ParseAccessToken() = %v, want ErrTokenInvalid", err)
		}
	})

	t.Run("tampered token", func(t *testing.T) {
		signed, err := m.CreateAccessToken(AccessTokenClaims{UserID: "u1", Role: "user"})
		if err != nil {
			t.Fatalf("CreateAccessToken() = %v", err)
		}

		tampered := signed[:len(signed)-4] + "AAAA"
		if _, _, _, err := m.ParseAccessToken(ctx, tampered); err == nil {
			t.Error("tampered token parsed without error")
		}
	})

	t.Run("token signed by a different key", func(t *testing.T) {
		other := newTestJWTManager(t, 15*time.Minute)
		signed, err := other.CreateAccessToken(AccessTokenClaims{UserID: "u1", Role: "user"})
		if err != nil {
			t.Fatalf("CreateAccessToken() = %v", err)
		}

		if _, _, _, err := m.ParseAccessToken(ctx, signed); err == nil {
			t.Error("foreign token parsed without error")
		}
	})

	t.Run("expired token", func(t *testing.T) {
		short := newTestJWTManager(t, -time.Minute)
		signed, err := short.CreateAccessToken(AccessTokenClaims{UserID: "u1", Role: "user"})
		if err != nil {
			t.Fatalf("CreateAccessToken() = %v", err)
		}

		_, _, _, err = short.ParseAccessToken(ctx, signed)
		if !errors.Is(err, core.ErrTokenExpired) {
			t.Errorf("ParseAccessToken() = %v, want ErrTokenExpired", err)
		}
	})
}

func TestCreateRefreshToken(t *testing.T) {
	m := newTestJWTManager(t, 15*time.Minute)

	data, err := m.CreateRefreshToken("u1", "")
	if err != nil {
		t.Fatalf("CreateRefreshToken() = %v", err)
	}

	if data.Token == "" || data.Hash == "" {
		t.Fatal("refresh token or hash is empty")
	}
	if data.FamilyID == "" {
		t.Error("a new token must start its own family")
	}
	if !m.VerifyRefreshTokenHash(data.Token, data.Hash) {
		t.Error("token does not verify against its own hash")
	}
	if m.VerifyRefreshTokenHash("other-token", data.Hash) {
		t.Error("wrong token verified against the hash")
	}

	// rotation keeps the family
	rotated, err := m.CreateRefreshToken("u1", data.FamilyID)
	if err != nil {
		t.Fatalf("CreateRefreshToken(rotate) = %v", err)
	}
	if rotated.FamilyID != data.FamilyID {
		t.Errorf("rotated family = %q, want %q", rotated.FamilyID, data.FamilyID)
	}
	if rotated.Token == data.Token {
		t.Error("rotation reused the same token")
	}
}

func TestGetKeyID(t *testing.T) {
	m := newTestJWTManager(t, 15*time.Minute)

	kid := m.GetKeyID()
	if kid == "" {
		t.Fatal("GetKeyID() returned an empty key ID")
	}
	if len(kid) != 8 {
		t.Errorf("key ID %q length = %d, want 8", kid, len(kid))
	}
}
