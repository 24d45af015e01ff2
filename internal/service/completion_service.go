package service

import (
	"context"
	"errors"
	"strconv"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/internal/dto"
	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/internal/grading"
	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/internal/model"
	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/internal/repository"
)

// ── completion errors ──

var (
	ErrInvalidScope       = errors.New("alcance de avance inválido")
	ErrScopeIDRequired    = errors.New("el alcance requiere un identificador")
	ErrAssignmentNotFound = errors.New("curso asignado no encontrado")
)

// CompletionQuery selects what to count. A zero Bar means the scope
// default; a nil Categories means every category.
type CompletionQuery struct {
	Scope      grading.ScopeKind
	ID         string
	PeriodID   int64
	Bar        grading.AppreciationBar
	Categories grading.CategorySet
}

// CompletionService recounts completion on demand; nothing is cached.
type CompletionService interface {
	Compute(ctx context.Context, caller Caller, q CompletionQuery) (*dto.CompletionResponse, error)
}

type completionService struct {
	repo    *repository.Repository
	logger  *zap.Logger
	counter *counter
}

// NewCompletionService creates a CompletionService.
func NewCompletionService(repo *repository.Repository, logger *zap.Logger) CompletionService {
	return &completionService{repo: repo, logger: logger, counter: newCounter(repo, logger)}
}

func (s *completionService) Compute(ctx context.Context, caller Caller, q CompletionQuery) (*dto.CompletionResponse, error) {
	if !q.Scope.Valid() {
		return nil, ErrInvalidScope
	}
	if _, err := loadPeriod(ctx, s.repo, s.logger, q.PeriodID); err != nil {
		return nil, err
	}
	bar := q.Bar
	if bar == "" {
		bar = grading.DefaultBar(q.Scope)
	}

	var b grading.Breakdown
	switch q.Scope {
	case grading.ScopeCourse:
		id, err := strconv.ParseInt(q.ID, 10, 64)
		if err != nil || id <= 0 {
			return nil, ErrScopeIDRequired
		}
		a, err := s.repo.Curriculum.GetAssignment(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrAssignmentNotFound
			}
			return nil, err
		}
		if caller.Role == grading.RoleDocente && !ownsAssignment(caller, a) {
			return nil, ErrNotCourseOwner
		}
		b = s.counter.course(ctx, q.PeriodID, a)
	case grading.ScopeSection:
		id, err := strconv.ParseInt(q.ID, 10, 64)
		if err != nil || id <= 0 {
			return nil, ErrScopeIDRequired
		}
		if _, err := s.repo.Classroom.GetByID(ctx, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrClassroomNotFound
			}
			return nil, err
		}
		b = s.counter.section(ctx, q.PeriodID, id, s.counter.isTutored(ctx, id), bar, q.Categories)
	case grading.ScopeTeacher:
		profileID := q.ID
		if profileID == "" || caller.Role == grading.RoleDocente {
			profileID = caller.ProfileID
		}
		profile, err := s.repo.Profile.GetByID(ctx, profileID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrProfileNotFound
			}
			return nil, err
		}
		b = s.counter.teacher(ctx, q.PeriodID, profile, bar, q.Categories)
	case grading.ScopeGlobal:
		if !caller.Role.IsStaff() {
			return nil, ErrForbiddenRole
		}
		b = s.counter.global(ctx, q.PeriodID, bar, q.Categories)
	}

	return dto.NewCompletionResponse(q.Scope, q.ID, q.PeriodID, bar, b), nil
}

// ═══════════════════════════════════════════════════════════
// counter
// ═══════════════════════════════════════════════════════════
//
// counter turns store reads into tallies. A failed read is logged and
// counts as zero so a dashboard degrades instead of failing.

type counter struct {
	repo   *repository.Repository
	logger *zap.Logger
}

func newCounter(repo *repository.Repository, logger *zap.Logger) *counter {
	return &counter{repo: repo, logger: logger}
}

func (c *counter) students(ctx context.Context, classroomID int64) []string {
	students, err := c.repo.Student.ListByClassroom(ctx, classroomID)
	if err != nil {
		c.logger.Warn("completion: failed to list students", zap.Int64("classroom_id", classroomID), zap.Error(err))
		return nil
	}
	return studentIDsOf(students)
}

func (c *counter) activeCommitmentIDs(ctx context.Context) []int64 {
	commitments, err := c.repo.Family.ListCommitments(ctx, true)
	if err != nil {
		c.logger.Warn("completion: failed to list commitments", zap.Error(err))
		return nil
	}
	ids := make([]int64, 0, len(commitments))
	for _, cm := range commitments {
		ids = append(ids, cm.ID)
	}
	return ids
}

func (c *counter) isTutored(ctx context.Context, classroomID int64) bool {
	ids, err := c.repo.Classroom.ListTutoredIDs(ctx)
	if err != nil {
		c.logger.Warn("completion: failed to list tutored classrooms", zap.Error(err))
		return false
	}
	for _, id := range ids {
		if id == classroomID {
			return true
		}
	}
	return false
}

// academic tallies one course for the given students.
func (c *counter) academic(ctx context.Context, periodID int64, a *model.CourseAssignment, studentIDs []string) grading.Tally {
	comps := a.CompetencyIDs()
	t := grading.Tally{Expected: grading.AcademicExpected(len(studentIDs), len(comps))}
	if t.Expected == 0 {
		return t
	}
	n, err := c.repo.Grade.CountFilled(ctx, periodID, studentIDs, comps)
	if err != nil {
		c.logger.Warn("completion: failed to count grades", zap.Int64("assignment_id", a.ID), zap.Error(err))
		return t
	}
	t.Filled = n
	return t
}

// tutor adds the behavior, family and appreciation tallies of one tutored
// classroom into b.
func (c *counter) tutor(ctx context.Context, periodID int64, studentIDs []string, commitmentIDs []int64, bar grading.AppreciationBar, cats grading.CategorySet, b grading.Breakdown) {
	n := len(studentIDs)

	if cats.Has(grading.CategoryBehavior) {
		t := grading.Tally{Expected: grading.BehaviorExpected(n)}
		if t.Expected > 0 {
			filled, err := c.repo.Behavior.CountFilled(ctx, periodID, studentIDs)
			if err != nil {
				c.logger.Warn("completion: failed to count behavior", zap.Error(err))
			} else {
				t.Filled = filled
			}
		}
		b[grading.CategoryBehavior] = b[grading.CategoryBehavior].Add(t)
	}

	if cats.Has(grading.CategoryFamily) {
		t := grading.Tally{Expected: grading.FamilyExpected(n, len(commitmentIDs))}
		if t.Expected > 0 {
			filled, err := c.repo.Family.CountFilled(ctx, periodID, studentIDs, commitmentIDs)
			if err != nil {
				c.logger.Warn("completion: failed to count family evaluations", zap.Error(err))
			} else {
				t.Filled = filled
			}
		}
		b[grading.CategoryFamily] = b[grading.CategoryFamily].Add(t)
	}

	if cats.Has(grading.CategoryAppreciation) {
		t := grading.Tally{Expected: grading.AppreciationExpected(n)}
		if t.Expected > 0 {
			what := repository.CountCommented
			if bar == grading.BarApproved {
				what = repository.CountApproved
			}
			filled, err := c.repo.Appreciation.Count(ctx, periodID, studentIDs, what)
			if err != nil {
				c.logger.Warn("completion: failed to count appreciations", zap.Error(err))
			} else {
				t.Filled = filled
			}
		}
		b[grading.CategoryAppreciation] = b[grading.CategoryAppreciation].Add(t)
	}
}

// course is academic only.
func (c *counter) course(ctx context.Context, periodID int64, a *model.CourseAssignment) grading.Breakdown {
	students := c.students(ctx, a.ClassroomID)
	return grading.Breakdown{grading.CategoryAcademic: c.academic(ctx, periodID, a, students)}
}

// section counts every active course of the classroom and, when it has a
// homeroom teacher, its tutor categories.
func (c *counter) section(ctx context.Context, periodID, classroomID int64, tutored bool, bar grading.AppreciationBar, cats grading.CategorySet) grading.Breakdown {
	b := grading.Breakdown{}
	students := c.students(ctx, classroomID)
	c.sectionInto(ctx, periodID, classroomID, students, tutored, nil, bar, cats, b)
	return b
}

func (c *counter) sectionInto(ctx context.Context, periodID, classroomID int64, students []string, tutored bool, commitmentIDs []int64, bar grading.AppreciationBar, cats grading.CategorySet, b grading.Breakdown) {
	if cats.Has(grading.CategoryAcademic) {
		assignments, err := c.repo.Curriculum.ListAssignmentsByClassroom(ctx, classroomID)
		if err != nil {
			c.logger.Warn("completion: failed to list courses", zap.Int64("classroom_id", classroomID), zap.Error(err))
		}
		total := b[grading.CategoryAcademic]
		for i := range assignments {
			total = total.Add(c.academic(ctx, periodID, &assignments[i], students))
		}
		b[grading.CategoryAcademic] = total
	}
	if tutored {
		if commitmentIDs == nil && cats.Has(grading.CategoryFamily) {
			commitmentIDs = c.activeCommitmentIDs(ctx)
		}
		c.tutor(ctx, periodID, students, commitmentIDs, bar, cats, b)
	}
}

// teacher counts the profile's own courses plus its tutored classroom.
func (c *counter) teacher(ctx context.Context, periodID int64, profile *model.Profile, bar grading.AppreciationBar, cats grading.CategorySet) grading.Breakdown {
	b := grading.Breakdown{}
	if cats.Has(grading.CategoryAcademic) {
		assignments, err := c.repo.Curriculum.ListAssignmentsByProfile(ctx, profile.ID)
		if err != nil {
			c.logger.Warn("completion: failed to list teacher courses", zap.String("profile_id", profile.ID), zap.Error(err))
		}
		byClassroom := make(map[int64][]string)
		total := grading.Tally{}
		for i := range assignments {
			a := &assignments[i]
			students, ok := byClassroom[a.ClassroomID]
			if !ok {
				students = c.students(ctx, a.ClassroomID)
				byClassroom[a.ClassroomID] = students
			}
			total = total.Add(c.academic(ctx, periodID, a, students))
		}
		b[grading.CategoryAcademic] = total
	}
	if profile.TutorClassroomID != nil {
		students := c.students(ctx, *profile.TutorClassroomID)
		var commitments []int64
		if cats.Has(grading.CategoryFamily) {
			commitments = c.activeCommitmentIDs(ctx)
		}
		c.tutor(ctx, periodID, students, commitments, bar, cats, b)
	}
	return b
}

// global walks every active classroom.
func (c *counter) global(ctx context.Context, periodID int64, bar grading.AppreciationBar, cats grading.CategorySet) grading.Breakdown {
	b := grading.Breakdown{}
	classrooms, err := c.repo.Classroom.ListActive(ctx)
	if err != nil {
		c.logger.Warn("completion: failed to list classrooms", zap.Error(err))
		return b
	}
	tutored := c.tutoredSet(ctx)
	var commitments []int64
	if cats.Has(grading.CategoryFamily) {
		commitments = c.activeCommitmentIDs(ctx)
	}
	for _, cl := range classrooms {
		students := c.students(ctx, cl.ID)
		c.sectionInto(ctx, periodID, cl.ID, students, tutored[cl.ID], commitments, bar, cats, b)
	}
	return b
}

func (c *counter) tutoredSet(ctx context.Context) map[int64]bool {
	ids, err := c.repo.Classroom.ListTutoredIDs(ctx)
	if err != nil {
		c.logger.Warn("completion: failed to list tutored classrooms", zap.Error(err))
		return nil
	}
	set := make(map[int64]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func ownsAssignment(caller Caller, a *model.CourseAssignment) bool {
	return a.ProfileID != nil && *a.ProfileID == caller.ProfileID
}
