package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/internal/model"
)

// CurriculumRepository curricular areas, competencies and course assignments.
// Assignment listings skip inactive areas.
type CurriculumRepository interface {
	ListAreas(ctx context.Context) ([]model.CurricularArea, error)
	SetAreaActive(ctx context.Context, id int64, active bool) error

	GetAssignment(ctx context.Context, id int64) (*model.CourseAssignment, error)
	ListAssignmentsByProfile(ctx context.Context, profileID string) ([]model.CourseAssignment, error)
	ListAssignmentsByClassroom(ctx context.Context, classroomID int64) ([]model.CourseAssignment, error)
	ListActiveAssignments(ctx context.Context) ([]model.CourseAssignment, error)
}

type curriculumRepo struct {
	db *gorm.DB
}

// NewCurriculumRepo creates a CurriculumRepository.
func NewCurriculumRepo(db *gorm.DB) CurriculumRepository {
	return &curriculumRepo{db: db}
}

func (r *curriculumRepo) ListAreas(ctx context.Context) ([]model.CurricularArea, error) {
	var list []model.CurricularArea
	err := r.db.WithContext(ctx).
		Preload("Competencies", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Order(`level ASC, "order" ASC, id ASC`).
		Find(&list).Error
	return list, err
}

func (r *curriculumRepo) SetAreaActive(ctx context.Context, id int64, active bool) error {
	res := r.db.WithContext(ctx).
		Model(&model.CurricularArea{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"active":     active,
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

// assignments preloads what every caller needs and hides inactive areas.
func (r *curriculumRepo) assignments(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Joins("JOIN curricular_areas ca ON ca.id = course_assignments.area_id AND ca.active = ?", true).
		Preload("Area.Competencies", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Classroom").
		Preload("Profile").
		Order(`course_assignments.classroom_id ASC, ca."order" ASC, course_assignments.id ASC`)
}

func (r *curriculumRepo) GetAssignment(ctx context.Context, id int64) (*model.CourseAssignment, error) {
	var a model.CourseAssignment
	err := r.db.WithContext(ctx).
		Preload("Area.Competencies", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Classroom").
		Preload("Profile").
		Where("id = ?", id).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *curriculumRepo) ListAssignmentsByProfile(ctx context.Context, profileID string) ([]model.CourseAssignment, error) {
	var list []model.CourseAssignment
	err := r.assignments(ctx).
		Where("course_assignments.profile_id = ?", profileID).
		Find(&list).Error
	return list, err
}

func (r *curriculumRepo) ListAssignmentsByClassroom(ctx context.Context, classroomID int64) ([]model.CourseAssignment, error) {
	var list []model.CourseAssignment
	err := r.assignments(ctx).
		Where("course_assignments.classroom_id = ?", classroomID).
		Find(&list).Error
	return list, err
}

func (r *curriculumRepo) ListActiveAssignments(ctx context.Context) ([]model.CourseAssignment, error) {
	var list []model.CourseAssignment
	err := r.assignments(ctx).
		Joins("JOIN classrooms cl ON cl.id = course_assignments.classroom_id AND cl.active = ?", true).
		Find(&list).Error
	return list, err
}
