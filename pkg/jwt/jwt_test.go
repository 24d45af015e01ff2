package jwt

import (
	"errors"
	"testing"
	"time"

	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/config"
)

func newTestManager(ttl time.Duration) *Manager {
	return NewManager(&config.AuthConfig{
		JWTSecret:      "test-secret-key-for-unit-testing-2026",
		AccessTokenTTL: ttl,
	})
}

func TestGenerateAndParseAccessToken(t *testing.T) {
	m := newTestManager(15 * time.Minute)
	classroom := int64(7)

	token, err := m.GenerateAccessToken("prof-1", "docente", &classroom)
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}

	claims, err := m.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken failed: %v", err)
	}

	if claims.ProfileID != "prof-1" {
		t.Errorf("expected ProfileID=prof-1, got %s", claims.ProfileID)
	}
	if claims.Role != "docente" {
		t.Errorf("expected Role=docente, got %s", claims.Role)
	}
	if claims.TutorClassroomID == nil || *claims.TutorClassroomID != 7 {
		t.Errorf("expected TutorClassroomID=7, got %v", claims.TutorClassroomID)
	}
	if claims.Issuer != "sistema-calificaciones" {
		t.Errorf("unexpected issuer %s", claims.Issuer)
	}
	if claims.ID == "" {
		t.Error("token id should not be empty")
	}
}

func TestParseToken_Expired(t *testing.T) {
	m := newTestManager(-time.Minute)

	token, err := m.GenerateAccessToken("prof-1", "admin", nil)
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}

	if _, err := m.ParseToken(token); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("expected ErrTokenExpired, got %v", err)
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	m := newTestManager(time.Minute)
	other := NewManager(&config.AuthConfig{JWTSecret: "another-secret-entirely-123", AccessTokenTTL: time.Minute})

	token, _ := other.GenerateAccessToken("prof-1", "admin", nil)
	if _, err := m.ParseToken(token); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestParseToken_Garbage(t *testing.T) {
	m := newTestManager(time.Minute)
	if _, err := m.ParseToken("not.a.token"); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("expected ErrTokenInvalid, got %v", err)
	}
}
