package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/internal/model"
)

// PeriodRepository academic years and their bimestres
type PeriodRepository interface {
	GetActiveYear(ctx context.Context) (*model.AcademicYear, error)
	GetByID(ctx context.Context, id int64) (*model.Bimestre, error)
	ListByYear(ctx context.Context, yearID int64) ([]model.Bimestre, error)
	SetLocked(ctx context.Context, id int64, locked bool) error
}

type periodRepo struct {
	db *gorm.DB
}

// NewPeriodRepo creates a PeriodRepository.
func NewPeriodRepo(db *gorm.DB) PeriodRepository {
	return &periodRepo{db: db}
}

func (r *periodRepo) GetActiveYear(ctx context.Context) (*model.AcademicYear, error) {
	var year model.AcademicYear
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		First(&year).Error
	if err != nil {
		return nil, err
	}
	return &year, nil
}

// GetByID always hits the database; lock state is never cached.
func (r *periodRepo) GetByID(ctx context.Context, id int64) (*model.Bimestre, error) {
	var b model.Bimestre
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&b).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *periodRepo) ListByYear(ctx context.Context, yearID int64) ([]model.Bimestre, error) {
	var list []model.Bimestre
	err := r.db.WithContext(ctx).
		Where("academic_year_id = ?", yearID).
		Order("id ASC").
		Find(&list).Error
	return list, err
}

func (r *periodRepo) SetLocked(ctx context.Context, id int64, locked bool) error {
	res := r.db.WithContext(ctx).
		Model(&model.Bimestre{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_locked":  locked,
			"updated_at": gorm.Expr("NOW()"),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
