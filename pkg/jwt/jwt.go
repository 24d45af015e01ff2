package jwt

import (
	"errors"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/config"
)

var (
	ErrTokenExpired = errors.New("token expirado")
	ErrTokenInvalid = errors.New("token inválido")
)

// Claims carried by an access token. Role is the raw profile role
// (docente, supervisor, admin, subdirector, ...).
type Claims struct {
	ProfileID        string `json:"profile_id"`
	Role             string `json:"role"`
	TutorClassroomID *int64 `json:"tutor_classroom_id,omitempty"`
	jwtv5.RegisteredClaims
}

// Manager signs and parses access tokens.
type Manager struct {
	secret []byte
	ttl    time.Duration
	issuer string
}

// NewManager creates a Manager from the auth config.
func NewManager(cfg *config.AuthConfig) *Manager {
	issuer := cfg.Issuer
	if issuer == "" {
		issuer = "sistema-calificaciones"
	}
	return &Manager{
		secret: []byte(cfg.JWTSecret),
		ttl:    cfg.AccessTokenTTL,
		issuer: issuer,
	}
}

// TTL returns the access token lifetime.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// GenerateAccessToken signs a token for the given profile.
func (m *Manager) GenerateAccessToken(profileID, role string, tutorClassroomID *int64) (string, error) {
	now := time.Now()
	claims := Claims{
		ProfileID:        profileID,
		Role:             role,
		TutorClassroomID: tutorClassroomID,
		RegisteredClaims: jwtv5.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   profileID,
			IssuedAt:  jwtv5.NewNumericDate(now),
			ExpiresAt: jwtv5.NewNumericDate(now.Add(m.ttl)),
			Issuer:    m.issuer,
		},
	}

	token := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// ParseToken validates signature and expiry.
func (m *Manager) ParseToken(tokenString string) (*Claims, error) {
	token, err := jwtv5.ParseWithClaims(tokenString, &Claims{}, func(t *jwtv5.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtv5.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return m.secret, nil
	}, jwtv5.WithIssuer(m.issuer))

	if err != nil {
		if errors.Is(err, jwtv5.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
