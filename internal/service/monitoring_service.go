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

// MonitoringService pedagogical monitoring dashboards for review roles
type MonitoringService interface {
	Sections(ctx context.Context, caller Caller, q *dto.SectionsQuery) (*dto.SectionListResponse, error)
	SectionDetail(ctx context.Context, caller Caller, classroomID, periodID int64) (*dto.SectionDetailResponse, error)
	StudentAudit(ctx context.Context, caller Caller, studentID string, periodID int64) (*dto.ReportCardResponse, error)
	Overview(ctx context.Context, caller Caller, periodID int64) (*dto.OverviewResponse, error)
}

type monitoringService struct {
	repo    *repository.Repository
	logger  *zap.Logger
	counter *counter
}

// NewMonitoringService creates a MonitoringService.
func NewMonitoringService(repo *repository.Repository, logger *zap.Logger) MonitoringService {
	return &monitoringService{repo: repo, logger: logger, counter: newCounter(repo, logger)}
}

func (s *monitoringService) authorize(ctx context.Context, caller Caller, periodID int64) (*model.Bimestre, error) {
	if !grading.Capabilities(caller.Role, nil).CanAudit {
		return nil, ErrForbiddenRole
	}
	return loadPeriod(ctx, s.repo, s.logger, periodID)
}

// ────────────────────── Sections ──────────────────────

func (s *monitoringService) Sections(ctx context.Context, caller Caller, q *dto.SectionsQuery) (*dto.SectionListResponse, error) {
	if _, err := s.authorize(ctx, caller, q.PeriodID); err != nil {
		return nil, err
	}

	classrooms, err := s.repo.Classroom.ListActive(ctx)
	if err != nil {
		s.logger.Error("failed to list classrooms", zap.Error(err))
		return nil, err
	}
	tutored := s.counter.tutoredSet(ctx)
	bar := grading.DefaultBar(grading.ScopeSection)

	cards := make([]grading.SectionCard, 0, len(classrooms))
	for i := range classrooms {
		cl := &classrooms[i]
		students := s.counter.students(ctx, cl.ID)
		assignments, err := s.repo.Curriculum.ListAssignmentsByClassroom(ctx, cl.ID)
		if err != nil {
			s.logger.Warn("monitoring: failed to list courses", zap.Int64("classroom_id", cl.ID), zap.Error(err))
		}

		b := grading.Breakdown{}
		s.counter.sectionInto(ctx, q.PeriodID, cl.ID, students, tutored[cl.ID], nil, bar, nil, b)

		pending, err := s.repo.Appreciation.Count(ctx, q.PeriodID, students, repository.CountPending)
		if err != nil {
			s.logger.Warn("monitoring: failed to count pending appreciations", zap.Int64("classroom_id", cl.ID), zap.Error(err))
			pending = 0
		}

		cards = append(cards, grading.SectionCard{
			ClassroomID:          cl.ID,
			Name:                 cl.DisplayName(),
			Level:                cl.Level,
			StudentCount:         len(students),
			TotalCourses:         len(assignments),
			Progress:             b.Total().Percentage(),
			PendingAppreciations: pending,
		})
	}

	status := grading.SectionStatus(q.Status)
	if status == "" {
		status = grading.StatusAll
	}
	cards = grading.FilterSections(cards, status, q.Query)
	grading.SortByUrgency(cards)

	return &dto.SectionListResponse{PeriodID: q.PeriodID, Sections: cards}, nil
}

// ────────────────────── SectionDetail ──────────────────────

func (s *monitoringService) SectionDetail(ctx context.Context, caller Caller, classroomID, periodID int64) (*dto.SectionDetailResponse, error) {
	if _, err := s.authorize(ctx, caller, periodID); err != nil {
		return nil, err
	}
	classroom, err := s.repo.Classroom.GetByID(ctx, classroomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClassroomNotFound
		}
		s.logger.Error("failed to load classroom", zap.Int64("classroom_id", classroomID), zap.Error(err))
		return nil, err
	}

	students, err := s.repo.Student.ListByClassroom(ctx, classroomID)
	if err != nil {
		s.logger.Error("failed to list students", zap.Int64("classroom_id", classroomID), zap.Error(err))
		return nil, err
	}
	ids := studentIDsOf(students)

	assignments, err := s.repo.Curriculum.ListAssignmentsByClassroom(ctx, classroomID)
	if err != nil {
		s.logger.Error("failed to list courses", zap.Int64("classroom_id", classroomID), zap.Error(err))
		return nil, err
	}
	var comps []int64
	for i := range assignments {
		comps = append(comps, assignments[i].CompetencyIDs()...)
	}

	filled := make(map[string]int, len(students))
	if len(comps) > 0 {
		grades, err := s.repo.Grade.ListByStudents(ctx, periodID, ids, comps)
		if err != nil {
			s.logger.Warn("monitoring: failed to list grades", zap.Int64("classroom_id", classroomID), zap.Error(err))
		}
		for _, g := range grades {
			if g.Grade != "" {
				filled[g.StudentID]++
			}
		}
	}

	appreciations, err := s.repo.Appreciation.List(ctx, repository.AppreciationFilter{
		BimestreID:    periodID,
		StudentIDs:    ids,
		ExcludeDrafts: true,
	})
	if err != nil {
		s.logger.Warn("monitoring: failed to list appreciations", zap.Int64("classroom_id", classroomID), zap.Error(err))
	}
	state := make(map[string]grading.AppreciationState, len(appreciations))
	for _, a := range appreciations {
		state[a.StudentID] = grading.NewAppreciation(a.Comment, a.IsApproved).State()
	}

	resp := &dto.SectionDetailResponse{
		Classroom: toClassroomResponse(classroom),
		Students:  make([]dto.SectionStudentRow, 0, len(students)),
	}
	if tutor, err := s.repo.Profile.GetTutorOf(ctx, classroomID); err == nil {
		resp.TutorName = tutor.FullName
	}
	for i := range students {
		st := &students[i]
		apprState, ok := state[st.ID]
		if !ok {
			apprState = grading.StateEmpty
		}
		resp.Students = append(resp.Students, dto.SectionStudentRow{
			StudentRow:        dto.StudentRow{ID: st.ID, FullName: st.FullName()},
			Academic:          dto.NewTallyResponse(grading.Tally{Filled: filled[st.ID], Expected: len(comps)}),
			AppreciationState: string(apprState),
		})
	}

	bar := grading.DefaultBar(grading.ScopeSection)
	b := grading.Breakdown{}
	s.counter.sectionInto(ctx, periodID, classroomID, ids, s.counter.isTutored(ctx, classroomID), nil, bar, nil, b)
	resp.Completion = dto.NewCompletionResponse(grading.ScopeSection, strconv.FormatInt(classroomID, 10), periodID, bar, b)
	return resp, nil
}

// ────────────────────── StudentAudit ──────────────────────

func (s *monitoringService) StudentAudit(ctx context.Context, caller Caller, studentID string, periodID int64) (*dto.ReportCardResponse, error) {
	period, err := s.authorize(ctx, caller, periodID)
	if err != nil {
		return nil, err
	}
	return reportCardData(ctx, s.repo, s.logger, caller, period, studentID)
}

// ────────────────────── Overview ──────────────────────

func (s *monitoringService) Overview(ctx context.Context, caller Caller, periodID int64) (*dto.OverviewResponse, error) {
	if _, err := s.authorize(ctx, caller, periodID); err != nil {
		return nil, err
	}
	resp := &dto.OverviewResponse{PeriodID: periodID}

	classrooms, err := s.repo.Classroom.ListActive(ctx)
	if err != nil {
		s.logger.Error("failed to list classrooms", zap.Error(err))
		return nil, err
	}
	counts, err := s.repo.Student.CountByClassroom(ctx)
	if err != nil {
		s.logger.Warn("overview: failed to count students", zap.Error(err))
	}
	var allStudents []string
	for _, cl := range classrooms {
		resp.TotalStudents += counts[cl.ID]
		allStudents = append(allStudents, s.counter.students(ctx, cl.ID)...)
	}

	if assignments, err := s.repo.Curriculum.ListActiveAssignments(ctx); err != nil {
		s.logger.Warn("overview: failed to list courses", zap.Error(err))
	} else {
		resp.TotalCourses = len(assignments)
	}

	if pending, err := s.repo.Appreciation.Count(ctx, periodID, allStudents, repository.CountPending); err != nil {
		s.logger.Warn("overview: failed to count pending appreciations", zap.Error(err))
	} else {
		resp.PendingAppreciations = pending
	}

	if low, err := s.repo.Grade.CountByGrade(ctx, periodID, string(grading.LevelC)); err != nil {
		s.logger.Warn("overview: failed to count low grades", zap.Error(err))
	} else {
		resp.LowGrades = low
	}

	bar := grading.DefaultBar(grading.ScopeGlobal)
	resp.Completion = dto.NewCompletionResponse(grading.ScopeGlobal, "", periodID, bar, s.counter.global(ctx, periodID, bar, nil))
	return resp, nil
}
