package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository aggregates every repository behind one value so services can
// swap the whole set for a transaction.
type Repository struct {
	db *gorm.DB

	Period       PeriodRepository
	Classroom    ClassroomRepository
	Student      StudentRepository
	Profile      ProfileRepository
	Curriculum   CurriculumRepository
	Grade        GradeRepository
	Behavior     BehaviorRepository
	Family       FamilyRepository
	Appreciation AppreciationRepository
}

// NewRepository wires every repository on db.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:           db,
		Period:       NewPeriodRepo(db),
		Classroom:    NewClassroomRepo(db),
		Student:      NewStudentRepo(db),
		Profile:      NewProfileRepo(db),
		Curriculum:   NewCurriculumRepo(db),
		Grade:        NewGradeRepo(db),
		Behavior:     NewBehaviorRepo(db),
		Family:       NewFamilyRepo(db),
		Appreciation: NewAppreciationRepo(db),
	}
}

// BeginTx starts a transaction. A Repository assembled without a database
// (unit tests) returns a nil tx, which WithTx treats as "no transaction".
func (r *Repository) BeginTx(ctx context.Context) (*gorm.DB, error) {
	if r.db == nil {
		return nil, nil
	}
	tx := r.db.WithContext(ctx).Begin()
	return tx, tx.Error
}

// WithTx returns a Repository bound to tx.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return NewRepository(tx)
}
