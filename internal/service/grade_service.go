package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/internal/dto"
	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/internal/grading"
	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/internal/model"
	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/internal/repository"
	pkgerrors "github.com/gustav0-ri0s/sistema-de-calificaciones-VC/pkg/errors"
)

// ── grade errors ──

var (
	ErrNotCourseOwner        = errors.New("el curso no está asignado a usted")
	ErrCompetencyNotInCourse = errors.New("la competencia no pertenece al curso")
	ErrStudentNotInCourse    = errors.New("el estudiante no pertenece al aula del curso")
	ErrGradeWriteFailed      = errors.New("no se pudo guardar la calificación")
	ErrConclusionEmpty       = errors.New("la conclusión descriptiva no puede estar vacía")
)

// AllCompetencies targets every competency of the course in a mass conclusion.
const AllCompetencies = "ALL"

// GradeService competency grades of one course
type GradeService interface {
	GetCourseSheet(ctx context.Context, caller Caller, assignmentID, periodID int64) (*dto.CourseSheetResponse, error)
	SetGrade(ctx context.Context, caller Caller, req *dto.SetGradeRequest) (*dto.GradeMutationResponse, error)
	// PreviewMassConclusion counts the cells a mass conclusion would reach.
	PreviewMassConclusion(ctx context.Context, caller Caller, req *dto.MassConclusionRequest) (int, error)
	ApplyMassConclusion(ctx context.Context, caller Caller, req *dto.MassConclusionRequest) (*dto.MassConclusionResponse, error)
}

type gradeService struct {
	repo    *repository.Repository
	logger  *zap.Logger
	counter *counter
}

// NewGradeService creates a GradeService.
func NewGradeService(repo *repository.Repository, logger *zap.Logger) GradeService {
	return &gradeService{repo: repo, logger: logger, counter: newCounter(repo, logger)}
}

// ────────────────────── GetCourseSheet ──────────────────────

func (s *gradeService) GetCourseSheet(ctx context.Context, caller Caller, assignmentID, periodID int64) (*dto.CourseSheetResponse, error) {
	period, err := loadPeriod(ctx, s.repo, s.logger, periodID)
	if err != nil {
		return nil, err
	}
	a, err := s.assignment(ctx, caller, assignmentID, false)
	if err != nil {
		return nil, err
	}

	students, err := s.repo.Student.ListByClassroom(ctx, a.ClassroomID)
	if err != nil {
		s.logger.Error("failed to list students", zap.Int64("classroom_id", a.ClassroomID), zap.Error(err))
		return nil, err
	}
	studentIDs := studentIDsOf(students)
	comps := a.CompetencyIDs()

	grades, err := s.repo.Grade.ListByStudents(ctx, periodID, studentIDs, comps)
	if err != nil {
		s.logger.Error("failed to list grades", zap.Int64("assignment_id", a.ID), zap.Error(err))
		return nil, err
	}

	level := classroomLevel(a)
	resp := &dto.CourseSheetResponse{
		AssignmentID: a.ID,
		CourseName:   a.CourseName(),
		Classroom:    toClassroomResponse(a.Classroom),
		Period:       *toPeriodResponse(period, caller),
		Competencies: toCompetencyResponses(a),
		Students:     make([]dto.StudentRow, 0, len(students)),
		Grades:       make([]dto.GradeCellResponse, 0, len(grades)),
	}
	for i := range students {
		resp.Students = append(resp.Students, dto.StudentRow{ID: students[i].ID, FullName: students[i].FullName()})
	}
	for i := range grades {
		g := &grades[i]
		resp.Grades = append(resp.Grades, dto.GradeCellResponse{
			StudentID:          g.StudentID,
			CompetencyID:       g.CompetencyID,
			Grade:              g.Grade,
			Conclusion:         g.Conclusion(),
			ConclusionRequired: grading.ConclusionRequired(level, grading.Level(g.Grade)),
		})
	}

	resp.Completion = s.courseCompletion(ctx, periodID, a)
	return resp, nil
}

// ────────────────────── SetGrade ──────────────────────

func (s *gradeService) SetGrade(ctx context.Context, caller Caller, req *dto.SetGradeRequest) (*dto.GradeMutationResponse, error) {
	level, err := grading.ParseLevel(req.Grade)
	if err != nil {
		return nil, err
	}

	_, reason, err := guardPeriod(ctx, s.repo, s.logger, caller, req.PeriodID, grading.ActionSetGrade)
	if err != nil {
		return nil, err
	}
	if reason != "" {
		return &dto.GradeMutationResponse{MutationResult: *dto.Skipped(reason), Grade: req.Grade}, nil
	}

	a, err := s.assignment(ctx, caller, req.AssignmentID, true)
	if err != nil {
		return nil, err
	}
	if !containsID(a.CompetencyIDs(), req.CompetencyID) {
		return nil, ErrCompetencyNotInCourse
	}
	if err := s.checkStudent(ctx, req.StudentID, a.ClassroomID); err != nil {
		return nil, err
	}

	if level.IsEmpty() {
		if err := s.repo.Grade.Delete(ctx, req.StudentID, req.CompetencyID, req.PeriodID); err != nil {
			s.logger.Error("failed to delete grade",
				zap.String("student_id", req.StudentID),
				zap.Int64("competency_id", req.CompetencyID),
				zap.Error(err),
			)
			return nil, fmt.Errorf("%w: %w", ErrGradeWriteFailed, pkgerrors.NewWriteError("delete_grade", err))
		}
	} else {
		conclusion := req.Conclusion
		if conclusion == nil {
			// keep what is stored
			existing, err := s.repo.Grade.Get(ctx, req.StudentID, req.CompetencyID, req.PeriodID)
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				s.logger.Error("failed to read grade", zap.String("student_id", req.StudentID), zap.Error(err))
				return nil, fmt.Errorf("%w: %w", ErrGradeWriteFailed, pkgerrors.NewWriteError("read_grade", err))
			}
			if existing != nil {
				conclusion = existing.DescriptiveConclusion
			}
		}

		g := &model.StudentGrade{
			StudentID:             req.StudentID,
			CompetencyID:          req.CompetencyID,
			BimestreID:            req.PeriodID,
			Grade:                 string(level),
			DescriptiveConclusion: conclusion,
		}
		g.UpdatedBy = &caller.ProfileID
		if err := s.repo.Grade.Upsert(ctx, g); err != nil {
			s.logger.Error("failed to upsert grade",
				zap.String("student_id", req.StudentID),
				zap.Int64("competency_id", req.CompetencyID),
				zap.String("grade", string(level)),
				zap.Error(err),
			)
			return nil, fmt.Errorf("%w: %w", ErrGradeWriteFailed, pkgerrors.NewWriteError("upsert_grade", err))
		}
	}

	return &dto.GradeMutationResponse{
		MutationResult: dto.MutationResult{
			Applied:    true,
			Synced:     true,
			Completion: s.courseCompletion(ctx, req.PeriodID, a),
		},
		Grade:              string(level),
		ConclusionRequired: grading.ConclusionRequired(classroomLevel(a), level),
	}, nil
}

// ────────────────────── mass conclusion ──────────────────────

func (s *gradeService) PreviewMassConclusion(ctx context.Context, caller Caller, req *dto.MassConclusionRequest) (int, error) {
	if _, err := loadPeriod(ctx, s.repo, s.logger, req.PeriodID); err != nil {
		return 0, err
	}
	_, targets, err := s.massTargets(ctx, caller, req, false)
	if err != nil {
		return 0, err
	}
	return len(targets), nil
}

func (s *gradeService) ApplyMassConclusion(ctx context.Context, caller Caller, req *dto.MassConclusionRequest) (*dto.MassConclusionResponse, error) {
	_, reason, err := guardPeriod(ctx, s.repo, s.logger, caller, req.PeriodID, grading.ActionSetGrade)
	if err != nil {
		return nil, err
	}
	if reason != "" {
		return &dto.MassConclusionResponse{MutationResult: *dto.Skipped(reason)}, nil
	}

	text := strings.TrimSpace(req.Conclusion)
	if text == "" {
		return nil, ErrConclusionEmpty
	}

	a, targets, err := s.massTargets(ctx, caller, req, true)
	if err != nil {
		return nil, err
	}
	if len(targets) == 0 {
		return &dto.MassConclusionResponse{
			MutationResult: dto.MutationResult{Applied: true, Synced: true, Completion: s.courseCompletion(ctx, req.PeriodID, a)},
		}, nil
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("failed to begin transaction", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrGradeWriteFailed, pkgerrors.NewWriteError("begin", err))
	}
	defer func() {
		if r := recover(); r != nil {
			if tx != nil {
				tx.Rollback()
			}
			panic(r)
		}
	}()

	txRepo := s.repo.WithTx(tx)
	for _, t := range targets {
		if err := txRepo.Grade.UpdateConclusion(ctx, t.StudentID, t.CompetencyID, req.PeriodID, text, caller.ProfileID); err != nil {
			if tx != nil {
				tx.Rollback()
			}
			s.logger.Error("mass conclusion failed",
				zap.Int64("assignment_id", a.ID),
				zap.String("student_id", t.StudentID),
				zap.Int64("competency_id", t.CompetencyID),
				zap.Error(err),
			)
			return nil, fmt.Errorf("%w: %w", ErrGradeWriteFailed, pkgerrors.NewWriteError("mass_conclusion", err))
		}
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("failed to commit mass conclusion", zap.Error(err))
			return nil, fmt.Errorf("%w: %w", ErrGradeWriteFailed, pkgerrors.NewWriteError("commit", err))
		}
	}

	s.logger.Info("mass conclusion applied",
		zap.Int64("assignment_id", a.ID),
		zap.Int64("period_id", req.PeriodID),
		zap.String("filter", req.Filter),
		zap.Int("affected", len(targets)),
	)

	return &dto.MassConclusionResponse{
		MutationResult: dto.MutationResult{Applied: true, Synced: true, Completion: s.courseCompletion(ctx, req.PeriodID, a)},
		Affected:       len(targets),
	}, nil
}

// massTargets resolves the cells matched by the request.
func (s *gradeService) massTargets(ctx context.Context, caller Caller, req *dto.MassConclusionRequest, forWrite bool) (*model.CourseAssignment, []grading.CellKey, error) {
	criteria, err := grading.NewMassCriteria(req.Filter, req.FilterGrade)
	if err != nil {
		return nil, nil, err
	}
	a, err := s.assignment(ctx, caller, req.AssignmentID, forWrite)
	if err != nil {
		return nil, nil, err
	}

	var comps []int64
	if strings.EqualFold(strings.TrimSpace(req.CompetencyID), AllCompetencies) {
		comps = a.CompetencyIDs()
	} else {
		id, err := strconv.ParseInt(strings.TrimSpace(req.CompetencyID), 10, 64)
		if err != nil || !containsID(a.CompetencyIDs(), id) {
			return nil, nil, ErrCompetencyNotInCourse
		}
		comps = []int64{id}
	}

	students, err := s.repo.Student.ListByClassroom(ctx, a.ClassroomID)
	if err != nil {
		s.logger.Error("failed to list students", zap.Int64("classroom_id", a.ClassroomID), zap.Error(err))
		return nil, nil, err
	}
	studentIDs := studentIDsOf(students)

	grades, err := s.repo.Grade.ListByStudents(ctx, req.PeriodID, studentIDs, comps)
	if err != nil {
		s.logger.Error("failed to list grades", zap.Int64("assignment_id", a.ID), zap.Error(err))
		return nil, nil, err
	}
	cells := make(map[grading.CellKey]grading.Cell, len(grades))
	for i := range grades {
		g := &grades[i]
		cells[grading.CellKey{StudentID: g.StudentID, CompetencyID: g.CompetencyID}] = grading.Cell{
			Grade:      grading.Level(g.Grade),
			Conclusion: strings.TrimSpace(g.Conclusion()),
		}
	}

	return a, grading.SelectTargets(criteria, comps, studentIDs, cells), nil
}

// ────────────────────── helpers ──────────────────────

// assignment loads a course; teachers may only write their own courses.
// Reads are open to the owner and to review roles.
func (s *gradeService) assignment(ctx context.Context, caller Caller, id int64, forWrite bool) (*model.CourseAssignment, error) {
	a, err := s.repo.Curriculum.GetAssignment(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		s.logger.Error("failed to load assignment", zap.Int64("assignment_id", id), zap.Error(err))
		return nil, err
	}
	if caller.Role == grading.RoleDocente && !ownsAssignment(caller, a) {
		if forWrite {
			return nil, ErrNotCourseOwner
		}
		// a homeroom teacher may read the courses of the classroom
		classroomID, err := tutoredClassroom(ctx, s.repo, s.logger, caller)
		if err != nil || classroomID != a.ClassroomID {
			return nil, ErrNotCourseOwner
		}
	}
	return a, nil
}

func (s *gradeService) checkStudent(ctx context.Context, studentID string, classroomID int64) error {
	student, err := s.repo.Student.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStudentNotFound
		}
		s.logger.Error("failed to load student", zap.String("student_id", studentID), zap.Error(err))
		return err
	}
	if student.ClassroomID == nil || *student.ClassroomID != classroomID {
		return ErrStudentNotInCourse
	}
	return nil
}

func (s *gradeService) courseCompletion(ctx context.Context, periodID int64, a *model.CourseAssignment) *dto.CompletionResponse {
	b := s.counter.course(ctx, periodID, a)
	return dto.NewCompletionResponse(grading.ScopeCourse, strconv.FormatInt(a.ID, 10), periodID, grading.DefaultBar(grading.ScopeCourse), b)
}

func classroomLevel(a *model.CourseAssignment) string {
	if a.Classroom != nil {
		return a.Classroom.Level
	}
	if a.Area != nil {
		return a.Area.Level
	}
	return ""
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func toClassroomResponse(c *model.Classroom) dto.ClassroomResponse {
	if c == nil {
		return dto.ClassroomResponse{}
	}
	return dto.ClassroomResponse{ID: c.ID, Name: c.DisplayName(), Level: c.Level}
}

func toCompetencyResponses(a *model.CourseAssignment) []dto.CompetencyResponse {
	out := []dto.CompetencyResponse{}
	if a.Area == nil {
		return out
	}
	for _, c := range a.Area.Competencies {
		out = append(out, dto.CompetencyResponse{ID: c.ID, Name: c.Name})
	}
	return out
}
