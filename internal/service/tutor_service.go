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

// ── behavior / family errors ──

var (
	ErrInvalidBehaviorField = errors.New("campo de comportamiento inválido")
	ErrCommitmentNotFound   = errors.New("compromiso de familia no encontrado o inactivo")
)

// Behavior field names on the wire.
const (
	BehaviorComportamiento = "comportamiento"
	BehaviorValores        = "valores"
)

// TutorService homeroom data: behavior, family commitments and the tutor
// sheet. Write failures are reported through MutationResult.Synced.
type TutorService interface {
	// GetTutorSheet returns the sheet of classroomID, or of the caller's
	// tutored classroom when classroomID is 0.
	GetTutorSheet(ctx context.Context, caller Caller, periodID, classroomID int64) (*dto.TutorSheetResponse, error)
	SetBehavior(ctx context.Context, caller Caller, req *dto.SetBehaviorRequest) (*dto.MutationResult, error)
	ListCommitments(ctx context.Context) ([]dto.CommitmentResponse, error)
	SetFamilyEvaluation(ctx context.Context, caller Caller, req *dto.SetFamilyRequest) (*dto.MutationResult, error)
}

type tutorService struct {
	repo    *repository.Repository
	logger  *zap.Logger
	counter *counter
	drafts  *DraftBuffer
}

// NewTutorService creates a TutorService. drafts may be nil; when set,
// buffered appreciation drafts overlay the stored state on the sheet.
func NewTutorService(repo *repository.Repository, drafts *DraftBuffer, logger *zap.Logger) TutorService {
	return &tutorService{repo: repo, logger: logger, counter: newCounter(repo, logger), drafts: drafts}
}

// ────────────────────── GetTutorSheet ──────────────────────

func (s *tutorService) GetTutorSheet(ctx context.Context, caller Caller, periodID, classroomID int64) (*dto.TutorSheetResponse, error) {
	period, err := loadPeriod(ctx, s.repo, s.logger, periodID)
	if err != nil {
		return nil, err
	}

	if !caller.Role.IsStaff() || classroomID == 0 {
		tutored, err := tutoredClassroom(ctx, s.repo, s.logger, caller)
		if err != nil {
			return nil, err
		}
		if classroomID != 0 && classroomID != tutored {
			return nil, ErrStudentNotInSection
		}
		classroomID = tutored
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

	commitments, err := s.repo.Family.ListCommitments(ctx, true)
	if err != nil {
		s.logger.Error("failed to list commitments", zap.Error(err))
		return nil, err
	}
	behaviors, err := s.repo.Behavior.ListByStudents(ctx, periodID, ids)
	if err != nil {
		s.logger.Error("failed to list behavior grades", zap.Error(err))
		return nil, err
	}
	evaluations, err := s.repo.Family.ListEvaluations(ctx, periodID, ids)
	if err != nil {
		s.logger.Error("failed to list family evaluations", zap.Error(err))
		return nil, err
	}
	appreciations, err := s.repo.Appreciation.List(ctx, repository.AppreciationFilter{
		BimestreID:    periodID,
		StudentIDs:    ids,
		ExcludeDrafts: !grading.Capabilities(caller.Role, nil).CanViewDrafts,
	})
	if err != nil {
		s.logger.Error("failed to list appreciations", zap.Error(err))
		return nil, err
	}

	behaviorBy := make(map[string]*model.BehaviorGrade, len(behaviors))
	for i := range behaviors {
		behaviorBy[behaviors[i].StudentID] = &behaviors[i]
	}
	familyBy := make(map[string]map[int64]string)
	for _, e := range evaluations {
		if familyBy[e.StudentID] == nil {
			familyBy[e.StudentID] = make(map[int64]string)
		}
		familyBy[e.StudentID][e.CommitmentID] = e.Grade
	}
	apprBy := make(map[string]grading.Appreciation, len(appreciations))
	for _, a := range appreciations {
		apprBy[a.StudentID] = grading.NewAppreciation(a.Comment, a.IsApproved)
	}

	resp := &dto.TutorSheetResponse{
		Classroom:   toClassroomResponse(classroom),
		Period:      *toPeriodResponse(period, caller),
		Commitments: toCommitmentResponses(commitments),
		Students:    make([]dto.TutorStudentRow, 0, len(students)),
	}
	for i := range students {
		st := &students[i]
		row := dto.TutorStudentRow{
			StudentRow: dto.StudentRow{ID: st.ID, FullName: st.FullName()},
			Family:     familyBy[st.ID],
		}
		if row.Family == nil {
			row.Family = map[int64]string{}
		}
		if b := behaviorBy[st.ID]; b != nil {
			row.Comportamiento = deref(b.BehaviorGrade)
			row.Valores = deref(b.ValuesGrade)
		}
		appr := apprBy[st.ID]
		if s.drafts != nil {
			if buffered, _, ok := s.drafts.Get(DraftKey{StudentID: st.ID, PeriodID: periodID}); ok {
				if caller.Role == grading.RoleDocente || buffered.VisibleToReviewers() {
					appr = buffered
				}
			}
		}
		row.AppreciationState = string(appr.State())
		resp.Students = append(resp.Students, row)
	}

	resp.Completion = s.sectionCompletion(ctx, periodID, classroomID)
	return resp, nil
}

// ────────────────────── SetBehavior ──────────────────────

func (s *tutorService) SetBehavior(ctx context.Context, caller Caller, req *dto.SetBehaviorRequest) (*dto.MutationResult, error) {
	var field repository.BehaviorField
	switch req.Field {
	case BehaviorComportamiento:
		field = repository.FieldComportamiento
	case BehaviorValores:
		field = repository.FieldValores
	default:
		return nil, ErrInvalidBehaviorField
	}
	level, err := grading.ParseLevel(req.Grade)
	if err != nil {
		return nil, err
	}

	_, reason, err := guardPeriod(ctx, s.repo, s.logger, caller, req.PeriodID, grading.ActionSetBehavior)
	if err != nil {
		return nil, err
	}
	if reason != "" {
		return dto.Skipped(reason), nil
	}

	student, err := tutorStudent(ctx, s.repo, s.logger, caller, req.StudentID)
	if err != nil {
		return nil, err
	}

	var value *string
	if !level.IsEmpty() {
		v := string(level)
		value = &v
	}

	result := &dto.MutationResult{Applied: true, Synced: true}
	if err := s.repo.Behavior.SetField(ctx, req.StudentID, req.PeriodID, field, value, caller.ProfileID); err != nil {
		s.logger.Error("failed to save behavior grade",
			zap.String("student_id", req.StudentID),
			zap.Int64("period_id", req.PeriodID),
			zap.String("field", req.Field),
			zap.Error(err),
		)
		result.Synced = false
	}

	if student.ClassroomID != nil {
		result.Completion = s.sectionCompletion(ctx, req.PeriodID, *student.ClassroomID)
	}
	return result, nil
}

// ────────────────────── family ──────────────────────

func (s *tutorService) ListCommitments(ctx context.Context) ([]dto.CommitmentResponse, error) {
	commitments, err := s.repo.Family.ListCommitments(ctx, true)
	if err != nil {
		s.logger.Error("failed to list commitments", zap.Error(err))
		return nil, err
	}
	return toCommitmentResponses(commitments), nil
}

func (s *tutorService) SetFamilyEvaluation(ctx context.Context, caller Caller, req *dto.SetFamilyRequest) (*dto.MutationResult, error) {
	level, err := grading.ParseLevel(req.Grade)
	if err != nil {
		return nil, err
	}

	_, reason, err := guardPeriod(ctx, s.repo, s.logger, caller, req.PeriodID, grading.ActionSetFamily)
	if err != nil {
		return nil, err
	}
	if reason != "" {
		return dto.Skipped(reason), nil
	}

	student, err := tutorStudent(ctx, s.repo, s.logger, caller, req.StudentID)
	if err != nil {
		return nil, err
	}
	if err := s.checkCommitment(ctx, req.CommitmentID); err != nil {
		return nil, err
	}

	result := &dto.MutationResult{Applied: true, Synced: true}
	if level.IsEmpty() {
		err = s.repo.Family.Delete(ctx, req.StudentID, req.CommitmentID, req.PeriodID)
	} else {
		e := &model.FamilyEvaluation{
			StudentID:    req.StudentID,
			CommitmentID: req.CommitmentID,
			BimestreID:   req.PeriodID,
			Grade:        string(level),
		}
		e.UpdatedBy = &caller.ProfileID
		err = s.repo.Family.Upsert(ctx, e)
	}
	if err != nil {
		s.logger.Error("failed to save family evaluation",
			zap.String("student_id", req.StudentID),
			zap.Int64("commitment_id", req.CommitmentID),
			zap.Error(err),
		)
		result.Synced = false
	}

	if student.ClassroomID != nil {
		result.Completion = s.sectionCompletion(ctx, req.PeriodID, *student.ClassroomID)
	}
	return result, nil
}

func (s *tutorService) checkCommitment(ctx context.Context, id int64) error {
	commitments, err := s.repo.Family.ListCommitments(ctx, true)
	if err != nil {
		s.logger.Error("failed to list commitments", zap.Error(err))
		return err
	}
	for _, c := range commitments {
		if c.ID == id {
			return nil
		}
	}
	return ErrCommitmentNotFound
}

func (s *tutorService) sectionCompletion(ctx context.Context, periodID, classroomID int64) *dto.CompletionResponse {
	bar := grading.DefaultBar(grading.ScopeSection)
	b := s.counter.section(ctx, periodID, classroomID, s.counter.isTutored(ctx, classroomID), bar, nil)
	return dto.NewCompletionResponse(grading.ScopeSection, strconv.FormatInt(classroomID, 10), periodID, bar, b)
}

func toCommitmentResponses(commitments []model.FamilyCommitment) []dto.CommitmentResponse {
	out := make([]dto.CommitmentResponse, 0, len(commitments))
	for _, c := range commitments {
		out = append(out, dto.CommitmentResponse{ID: c.ID, Description: c.Description, Active: c.Active})
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
