package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/internal/model"
)

// GradeRepository competency grades. Every list/count method returns
// nothing for an empty student set.
type GradeRepository interface {
	// ListByStudents returns the grades of the students; a nil
	// competencyIDs means every competency.
	ListByStudents(ctx context.Context, bimestreID int64, studentIDs []string, competencyIDs []int64) ([]model.StudentGrade, error)
	Get(ctx context.Context, studentID string, competencyID, bimestreID int64) (*model.StudentGrade, error)
	Upsert(ctx context.Context, g *model.StudentGrade) error
	Delete(ctx context.Context, studentID string, competencyID, bimestreID int64) error
	UpdateConclusion(ctx context.Context, studentID string, competencyID, bimestreID int64, conclusion, updatedBy string) error
	CountFilled(ctx context.Context, bimestreID int64, studentIDs []string, competencyIDs []int64) (int, error)
	CountByGrade(ctx context.Context, bimestreID int64, grade string) (int, error)
}

type gradeRepo struct {
	db *gorm.DB
}

// NewGradeRepo creates a GradeRepository.
func NewGradeRepo(db *gorm.DB) GradeRepository {
	return &gradeRepo{db: db}
}

func (r *gradeRepo) ListByStudents(ctx context.Context, bimestreID int64, studentIDs []string, competencyIDs []int64) ([]model.StudentGrade, error) {
	if len(studentIDs) == 0 || (competencyIDs != nil && len(competencyIDs) == 0) {
		return nil, nil
	}
	q := r.db.WithContext(ctx).
		Where("bimestre_id = ? AND student_id IN ?", bimestreID, studentIDs)
	if competencyIDs != nil {
		q = q.Where("competency_id IN ?", competencyIDs)
	}
	var list []model.StudentGrade
	err := q.Find(&list).Error
	return list, err
}

func (r *gradeRepo) Get(ctx context.Context, studentID string, competencyID, bimestreID int64) (*model.StudentGrade, error) {
	var g model.StudentGrade
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND competency_id = ? AND bimestre_id = ?", studentID, competencyID, bimestreID).
		First(&g).Error
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// Upsert inserts or replaces the grade of (student, competency, bimestre).
func (r *gradeRepo) Upsert(ctx context.Context, g *model.StudentGrade) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "student_id"},
				{Name: "competency_id"},
				{Name: "bimestre_id"},
			},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"grade":                  g.Grade,
				"descriptive_conclusion": g.DescriptiveConclusion,
				"updated_by":             g.UpdatedBy,
				"updated_at":             gorm.Expr("NOW()"),
			}),
		}).
		Create(g).Error
}

func (r *gradeRepo) Delete(ctx context.Context, studentID string, competencyID, bimestreID int64) error {
	return r.db.WithContext(ctx).
		Where("student_id = ? AND competency_id = ? AND bimestre_id = ?", studentID, competencyID, bimestreID).
		Delete(&model.StudentGrade{}).Error
}

func (r *gradeRepo) UpdateConclusion(ctx context.Context, studentID string, competencyID, bimestreID int64, conclusion, updatedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.StudentGrade{}).
		Where("student_id = ? AND competency_id = ? AND bimestre_id = ?", studentID, competencyID, bimestreID).
		Updates(map[string]interface{}{
			"descriptive_conclusion": conclusion,
			"updated_by":             updatedBy,
			"updated_at":             gorm.Expr("NOW()"),
		}).Error
}

func (r *gradeRepo) CountFilled(ctx context.Context, bimestreID int64, studentIDs []string, competencyIDs []int64) (int, error) {
	if len(studentIDs) == 0 || len(competencyIDs) == 0 {
		return 0, nil
	}
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.StudentGrade{}).
		Where("bimestre_id = ? AND student_id IN ? AND competency_id IN ? AND grade <> ''", bimestreID, studentIDs, competencyIDs).
		Count(&n).Error
	return int(n), err
}

func (r *gradeRepo) CountByGrade(ctx context.Context, bimestreID int64, grade string) (int, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.StudentGrade{}).
		Where("bimestre_id = ? AND grade = ?", bimestreID, grade).
		Count(&n).Error
	return int(n), err
}
