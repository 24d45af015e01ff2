package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/internal/model"
)

// ProfileRepository staff profiles
type ProfileRepository interface {
	GetByID(ctx context.Context, id string) (*model.Profile, error)
	GetByEmail(ctx context.Context, email string) (*model.Profile, error)
	GetTutorOf(ctx context.Context, classroomID int64) (*model.Profile, error)
}

type profileRepo struct {
	db *gorm.DB
}

// NewProfileRepo creates a ProfileRepository.
func NewProfileRepo(db *gorm.DB) ProfileRepository {
	return &profileRepo{db: db}
}

func (r *profileRepo) GetByID(ctx context.Context, id string) (*model.Profile, error) {
	var p model.Profile
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *profileRepo) GetByEmail(ctx context.Context, email string) (*model.Profile, error) {
	var p model.Profile
	err := r.db.WithContext(ctx).
		Where("LOWER(email) = LOWER(?) AND active = ?", email, true).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *profileRepo) GetTutorOf(ctx context.Context, classroomID int64) (*model.Profile, error) {
	var p model.Profile
	err := r.db.WithContext(ctx).
		Where("tutor_classroom_id = ? AND active = ?", classroomID, true).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}
