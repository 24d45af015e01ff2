package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/internal/model"
)

// ClassroomRepository classrooms and their students
type ClassroomRepository interface {
	GetByID(ctx context.Context, id int64) (*model.Classroom, error)
	ListActive(ctx context.Context) ([]model.Classroom, error)
	// ListTutoredIDs returns the classrooms that have a homeroom teacher.
	ListTutoredIDs(ctx context.Context) ([]int64, error)
}

type classroomRepo struct {
	db *gorm.DB
}

// NewClassroomRepo creates a ClassroomRepository.
func NewClassroomRepo(db *gorm.DB) ClassroomRepository {
	return &classroomRepo{db: db}
}

func (r *classroomRepo) GetByID(ctx context.Context, id int64) (*model.Classroom, error) {
	var c model.Classroom
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *classroomRepo) ListActive(ctx context.Context) ([]model.Classroom, error) {
	var list []model.Classroom
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("id ASC").
		Find(&list).Error
	return list, err
}

func (r *classroomRepo) ListTutoredIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&model.Profile{}).
		Where("tutor_classroom_id IS NOT NULL AND active = ?", true).
		Distinct().
		Pluck("tutor_classroom_id", &ids).Error
	return ids, err
}

// StudentRepository students
type StudentRepository interface {
	GetByID(ctx context.Context, id string) (*model.Student, error)
	// ListByClassroom orders by last name then first name.
	ListByClassroom(ctx context.Context, classroomID int64) ([]model.Student, error)
	CountByClassroom(ctx context.Context) (map[int64]int, error)
}

type studentRepo struct {
	db *gorm.DB
}

// NewStudentRepo creates a StudentRepository.
func NewStudentRepo(db *gorm.DB) StudentRepository {
	return &studentRepo{db: db}
}

func (r *studentRepo) GetByID(ctx context.Context, id string) (*model.Student, error) {
	var s model.Student
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *studentRepo) ListByClassroom(ctx context.Context, classroomID int64) ([]model.Student, error) {
	var list []model.Student
	err := r.db.WithContext(ctx).
		Where("classroom_id = ?", classroomID).
		Order("last_name ASC, first_name ASC").
		Find(&list).Error
	return list, err
}

func (r *studentRepo) CountByClassroom(ctx context.Context) (map[int64]int, error) {
	var rows []struct {
		ClassroomID int64
		Total       int
	}
	err := r.db.WithContext(ctx).
		Model(&model.Student{}).
		Select("classroom_id, COUNT(*) AS total").
		Where("classroom_id IS NOT NULL").
		Group("classroom_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[int64]int, len(rows))
	for _, row := range rows {
		out[row.ClassroomID] = row.Total
	}
	return out, nil
}
