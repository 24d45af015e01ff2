package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/internal/model"
)

// FamilyRepository family commitments and their evaluations
type FamilyRepository interface {
	ListCommitments(ctx context.Context, activeOnly bool) ([]model.FamilyCommitment, error)
	ListEvaluations(ctx context.Context, bimestreID int64, studentIDs []string) ([]model.FamilyEvaluation, error)
	Upsert(ctx context.Context, e *model.FamilyEvaluation) error
	Delete(ctx context.Context, studentID string, commitmentID, bimestreID int64) error
	CountFilled(ctx context.Context, bimestreID int64, studentIDs []string, commitmentIDs []int64) (int, error)
}

type familyRepo struct {
	db *gorm.DB
}

// NewFamilyRepo creates a FamilyRepository.
func NewFamilyRepo(db *gorm.DB) FamilyRepository {
	return &familyRepo{db: db}
}

func (r *familyRepo) ListCommitments(ctx context.Context, activeOnly bool) ([]model.FamilyCommitment, error) {
	q := r.db.WithContext(ctx).Order("id ASC")
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	var list []model.FamilyCommitment
	err := q.Find(&list).Error
	return list, err
}

func (r *familyRepo) ListEvaluations(ctx context.Context, bimestreID int64, studentIDs []string) ([]model.FamilyEvaluation, error) {
	if len(studentIDs) == 0 {
		return nil, nil
	}
	var list []model.FamilyEvaluation
	err := r.db.WithContext(ctx).
		Where("bimestre_id = ? AND student_id IN ?", bimestreID, studentIDs).
		Find(&list).Error
	return list, err
}

func (r *familyRepo) Upsert(ctx context.Context, e *model.FamilyEvaluation) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "student_id"}, {Name: "commitment_id"}, {Name: "bimestre_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"grade":      e.Grade,
				"updated_by": e.UpdatedBy,
				"updated_at": gorm.Expr("NOW()"),
			}),
		}).
		Create(e).Error
}

func (r *familyRepo) Delete(ctx context.Context, studentID string, commitmentID, bimestreID int64) error {
	return r.db.WithContext(ctx).
		Where("student_id = ? AND commitment_id = ? AND bimestre_id = ?", studentID, commitmentID, bimestreID).
		Delete(&model.FamilyEvaluation{}).Error
}

func (r *familyRepo) CountFilled(ctx context.Context, bimestreID int64, studentIDs []string, commitmentIDs []int64) (int, error) {
	if len(studentIDs) == 0 || len(commitmentIDs) == 0 {
		return 0, nil
	}
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.FamilyEvaluation{}).
		Where("bimestre_id = ? AND student_id IN ? AND commitment_id IN ? AND grade <> ''", bimestreID, studentIDs, commitmentIDs).
		Count(&n).Error
	return int(n), err
}
