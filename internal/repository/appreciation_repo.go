package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/internal/model"
)

// AppreciationCount selects what Count counts.
type AppreciationCount int

const (
	CountApproved  AppreciationCount = iota // is_approved = true
	CountCommented                          // non-empty comment
	CountPending                            // is_approved = false
)

// AppreciationFilter for List. StudentIDs is required.
type AppreciationFilter struct {
	BimestreID    int64
	StudentIDs    []string
	ExcludeDrafts bool
	Approved      *bool
}

// AppreciationRepository tutor appreciations
type AppreciationRepository interface {
	Get(ctx context.Context, studentID string, bimestreID int64) (*model.StudentAppreciation, error)
	List(ctx context.Context, f AppreciationFilter) ([]model.StudentAppreciation, error)
	Upsert(ctx context.Context, a *model.StudentAppreciation) error
	Count(ctx context.Context, bimestreID int64, studentIDs []string, what AppreciationCount) (int, error)
}

type appreciationRepo struct {
	db *gorm.DB
}

// NewAppreciationRepo creates an AppreciationRepository.
func NewAppreciationRepo(db *gorm.DB) AppreciationRepository {
	return &appreciationRepo{db: db}
}

func (r *appreciationRepo) Get(ctx context.Context, studentID string, bimestreID int64) (*model.StudentAppreciation, error) {
	var a model.StudentAppreciation
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND bimestre_id = ?", studentID, bimestreID).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *appreciationRepo) List(ctx context.Context, f AppreciationFilter) ([]model.StudentAppreciation, error) {
	if len(f.StudentIDs) == 0 {
		return nil, nil
	}
	q := r.db.WithContext(ctx).
		Preload("Student").
		Where("bimestre_id = ? AND student_id IN ?", f.BimestreID, f.StudentIDs)
	if f.ExcludeDrafts {
		q = q.Where("is_approved IS NOT NULL")
	}
	if f.Approved != nil {
		q = q.Where("is_approved = ?", *f.Approved)
	}
	var list []model.StudentAppreciation
	err := q.Order("updated_at DESC").Find(&list).Error
	return list, err
}

// Upsert writes comment and approval together so an edit and the
// approval reset it implies land atomically.
func (r *appreciationRepo) Upsert(ctx context.Context, a *model.StudentAppreciation) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "student_id"}, {Name: "bimestre_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"comment":     a.Comment,
				"is_approved": a.IsApproved,
				"tutor_id":    gorm.Expr("COALESCE(?, student_appreciations.tutor_id)", a.TutorID),
				"approved_by": a.ApprovedBy,
				"updated_at":  gorm.Expr("NOW()"),
			}),
		}).
		Create(a).Error
}

func (r *appreciationRepo) Count(ctx context.Context, bimestreID int64, studentIDs []string, what AppreciationCount) (int, error) {
	if len(studentIDs) == 0 {
		return 0, nil
	}
	conds := []string{"bimestre_id = ?", "student_id IN ?"}
	switch what {
	case CountApproved:
		conds = append(conds, "is_approved = TRUE")
	case CountPending:
		conds = append(conds, "is_approved = FALSE")
	case CountCommented:
		conds = append(conds, "COALESCE(TRIM(comment), '') <> ''")
	}
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.StudentAppreciation{}).
		Where(strings.Join(conds, " AND "), bimestreID, studentIDs).
		Count(&n).Error
	return int(n), err
}
