package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/internal/dto"
	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/internal/grading"
	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/internal/model"
	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/internal/repository"
)

// ── shared errors ──

var (
	ErrForbiddenRole       = errors.New("su rol no permite esta operación")
	ErrNotTutor            = errors.New("no tiene un aula a cargo como tutor")
	ErrStudentNotFound     = errors.New("estudiante no encontrado")
	ErrStudentNotInSection = errors.New("el estudiante no pertenece a su aula")
	ErrClassroomNotFound   = errors.New("aula no encontrada")
)

// Caller is the authenticated staff member behind a request.
type Caller struct {
	ProfileID string
	Role      grading.Role
}

// NewCaller normalizes the stored profile role.
func NewCaller(profileID, profileRole string) Caller {
	return Caller{ProfileID: profileID, Role: grading.RoleFromProfile(profileRole)}
}

// guardPeriod re-reads the period and evaluates the capability for action.
// A non-empty reason means the write must be skipped without touching the
// store. The period is never taken from a cache.
func guardPeriod(ctx context.Context, repo *repository.Repository, logger *zap.Logger, caller Caller, periodID int64, action grading.Action) (*model.Bimestre, string, error) {
	period, err := loadPeriod(ctx, repo, logger, periodID)
	if err != nil {
		return nil, "", err
	}
	reason := grading.Check(caller.Role, toGradingPeriod(period), action)
	if reason != "" {
		logger.Debug("write skipped",
			zap.Int64("period_id", periodID),
			zap.String("role", string(caller.Role)),
			zap.String("reason", reason),
		)
	}
	return period, reason, nil
}

// loadPeriod fetches a bimestre of the active academic year.
func loadPeriod(ctx context.Context, repo *repository.Repository, logger *zap.Logger, periodID int64) (*model.Bimestre, error) {
	period, err := repo.Period.GetByID(ctx, periodID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPeriodNotFound
		}
		logger.Error("failed to load period", zap.Int64("period_id", periodID), zap.Error(err))
		return nil, err
	}
	year, err := repo.Period.GetActiveYear(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoActiveYear
		}
		logger.Error("failed to load active year", zap.Error(err))
		return nil, err
	}
	if period.AcademicYearID != year.ID {
		return nil, ErrPeriodNotInActiveYear
	}
	return period, nil
}

func toGradingPeriod(b *model.Bimestre) *grading.Period {
	if b == nil {
		return nil
	}
	return &grading.Period{ID: b.ID, IsLocked: b.IsLocked}
}

// tutorStudent resolves a student the caller may write tutor data for.
// Review roles reach every student; a teacher only those of the classroom
// they tutor.
func tutorStudent(ctx context.Context, repo *repository.Repository, logger *zap.Logger, caller Caller, studentID string) (*model.Student, error) {
	student, err := repo.Student.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		logger.Error("failed to load student", zap.String("student_id", studentID), zap.Error(err))
		return nil, err
	}
	if caller.Role.IsStaff() {
		return student, nil
	}
	classroomID, err := tutoredClassroom(ctx, repo, logger, caller)
	if err != nil {
		return nil, err
	}
	if student.ClassroomID == nil || *student.ClassroomID != classroomID {
		return nil, ErrStudentNotInSection
	}
	return student, nil
}

// tutoredClassroom returns the classroom the caller is homeroom teacher of,
// read from the profile on every call.
func tutoredClassroom(ctx context.Context, repo *repository.Repository, logger *zap.Logger, caller Caller) (int64, error) {
	profile, err := repo.Profile.GetByID(ctx, caller.ProfileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrProfileNotFound
		}
		logger.Error("failed to load profile", zap.String("profile_id", caller.ProfileID), zap.Error(err))
		return 0, err
	}
	if profile.TutorClassroomID == nil {
		return 0, ErrNotTutor
	}
	return *profile.TutorClassroomID, nil
}

func studentIDsOf(students []model.Student) []string {
	ids := make([]string, 0, len(students))
	for _, s := range students {
		ids = append(ids, s.ID)
	}
	return ids
}

func toPermissions(p grading.Permissions) *dto.Permissions {
	v := dto.Permissions(p)
	return &v
}
