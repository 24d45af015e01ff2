package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/internal/model"
)

// BehaviorField is one of the two independently graded tutor fields.
type BehaviorField string

const (
	FieldComportamiento BehaviorField = "behavior_grade"
	FieldValores        BehaviorField = "values_grade"
)

// BehaviorRepository comportamiento / valores grades
type BehaviorRepository interface {
	ListByStudents(ctx context.Context, bimestreID int64, studentIDs []string) ([]model.BehaviorGrade, error)
	// SetField writes one field and leaves the other untouched.
	SetField(ctx context.Context, studentID string, bimestreID int64, field BehaviorField, value *string, updatedBy string) error
	CountFilled(ctx context.Context, bimestreID int64, studentIDs []string) (int, error)
}

type behaviorRepo struct {
	db *gorm.DB
}

// NewBehaviorRepo creates a BehaviorRepository.
func NewBehaviorRepo(db *gorm.DB) BehaviorRepository {
	return &behaviorRepo{db: db}
}

func (r *behaviorRepo) ListByStudents(ctx context.Context, bimestreID int64, studentIDs []string) ([]model.BehaviorGrade, error) {
	if len(studentIDs) == 0 {
		return nil, nil
	}
	var list []model.BehaviorGrade
	err := r.db.WithContext(ctx).
		Where("bimestre_id = ? AND student_id IN ?", bimestreID, studentIDs).
		Find(&list).Error
	return list, err
}

func (r *behaviorRepo) SetField(ctx context.Context, studentID string, bimestreID int64, field BehaviorField, value *string, updatedBy string) error {
	row := &model.BehaviorGrade{StudentID: studentID, BimestreID: bimestreID}
	row.UpdatedBy = &updatedBy
	switch field {
	case FieldComportamiento:
		row.BehaviorGrade = value
	case FieldValores:
		row.ValuesGrade = value
	default:
		return gorm.ErrInvalidField
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "student_id"}, {Name: "bimestre_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				string(field): value,
				"updated_by":  updatedBy,
				"updated_at":  gorm.Expr("NOW()"),
			}),
		}).
		Create(row).Error
}

// CountFilled counts non-empty fields, two possible per student.
func (r *behaviorRepo) CountFilled(ctx context.Context, bimestreID int64, studentIDs []string) (int, error) {
	if len(studentIDs) == 0 {
		return 0, nil
	}
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.BehaviorGrade{}).
		Select("COALESCE(SUM(" +
			"CASE WHEN COALESCE(behavior_grade, '') <> '' THEN 1 ELSE 0 END + " +
			"CASE WHEN COALESCE(values_grade, '') <> '' THEN 1 ELSE 0 END), 0)").
		Where("bimestre_id = ? AND student_id IN ?", bimestreID, studentIDs).
		Scan(&n).Error
	return int(n), err
}
