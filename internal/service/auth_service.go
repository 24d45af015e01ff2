package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/internal/dto"
	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/internal/grading"
	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/internal/model"
	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/internal/repository"
	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/pkg/jwt"
)

var (
	ErrInvalidCredentials = errors.New("correo o contraseña incorrectos")
	ErrProfileNotFound    = errors.New("perfil no encontrado")
)

// TokenBlacklist revokes tokens before they expire.
type TokenBlacklist interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
}

// AuthService staff authentication
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	// Logout revokes the token until it would expire anyway.
	Logout(ctx context.Context, jti string, expiresAt time.Time) error
	Me(ctx context.Context, caller Caller) (*dto.ProfileResponse, error)
}

type authService struct {
	repo      *repository.Repository
	jwtMgr    *jwt.Manager
	blacklist TokenBlacklist
	logger    *zap.Logger
}

// NewAuthService creates an AuthService. blacklist may be nil when Redis
// is not available; logout then only clears the client side.
func NewAuthService(repo *repository.Repository, jwtMgr *jwt.Manager, blacklist TokenBlacklist, logger *zap.Logger) AuthService {
	return &authService{repo: repo, jwtMgr: jwtMgr, blacklist: blacklist, logger: logger}
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	// 1. profile by email
	profile, err := s.repo.Profile.GetByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("failed to load profile", zap.Error(err))
		return nil, err
	}

	// 2. password (bcrypt)
	if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	// 3. token
	token, err := s.jwtMgr.GenerateAccessToken(profile.ID, profile.Role, profile.TutorClassroomID)
	if err != nil {
		s.logger.Error("failed to sign access token", zap.Error(err))
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken: token,
		ExpiresIn:   int(s.jwtMgr.TTL().Seconds()),
		Profile:     toProfileResponse(profile),
	}, nil
}

func (s *authService) Logout(ctx context.Context, jti string, expiresAt time.Time) error {
	if s.blacklist == nil || jti == "" {
		return nil
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := s.blacklist.BlacklistToken(ctx, jti, ttl); err != nil {
		s.logger.Error("failed to revoke token", zap.String("jti", jti), zap.Error(err))
		return err
	}
	return nil
}

func (s *authService) Me(ctx context.Context, caller Caller) (*dto.ProfileResponse, error) {
	profile, err := s.repo.Profile.GetByID(ctx, caller.ProfileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		s.logger.Error("failed to load profile", zap.String("profile_id", caller.ProfileID), zap.Error(err))
		return nil, err
	}
	resp := toProfileResponse(profile)
	return &resp, nil
}

func toProfileResponse(p *model.Profile) dto.ProfileResponse {
	resp := dto.ProfileResponse{
		ID:               p.ID,
		FullName:         p.FullName,
		Role:             p.Role,
		AppRole:          string(grading.RoleFromProfile(p.Role)),
		TutorClassroomID: p.TutorClassroomID,
	}
	if p.Email != nil {
		resp.Email = *p.Email
	}
	return resp
}
