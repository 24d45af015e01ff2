package service

import (
	"context"
	"errors"
	"sort"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/internal/dto"
	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/internal/grading"
	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/internal/model"
	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/internal/repository"
)

// Appreciation list filters.
const (
	AppreciationStatusPending  = "pending"
	AppreciationStatusApproved = "approved"
	AppreciationStatusAll      = "all"
)

// AppreciationService tutor appreciations and their review.
//
// Saves are debounced through the DraftBuffer; submit and approval changes
// flush the buffered value and write at once. A failed write never rolls
// back the returned state: the entry stays in the buffer as failed until a
// retry reaches the store.
type AppreciationService interface {
	List(ctx context.Context, caller Caller, q *dto.AppreciationListQuery) ([]dto.AppreciationResponse, error)
	SaveDraft(ctx context.Context, caller Caller, req *dto.SaveAppreciationRequest) (*dto.AppreciationMutationResponse, error)
	Submit(ctx context.Context, caller Caller, req *dto.AppreciationKeyRequest) (*dto.AppreciationMutationResponse, error)
	SetApproval(ctx context.Context, caller Caller, req *dto.SetApprovalRequest) (*dto.AppreciationMutationResponse, error)
	ToggleApproval(ctx context.Context, caller Caller, req *dto.AppreciationKeyRequest) (*dto.AppreciationMutationResponse, error)
	// SyncStatus lists edits that have not reached the store yet.
	SyncStatus(ctx context.Context, caller Caller, periodID int64) ([]dto.AppreciationResponse, error)
}

type appreciationService struct {
	repo   *repository.Repository
	drafts *DraftBuffer
	logger *zap.Logger
}

// NewAppreciationService creates an AppreciationService on drafts.
func NewAppreciationService(repo *repository.Repository, drafts *DraftBuffer, logger *zap.Logger) AppreciationService {
	return &appreciationService{repo: repo, drafts: drafts, logger: logger}
}

// ────────────────────── List ──────────────────────

func (s *appreciationService) List(ctx context.Context, caller Caller, q *dto.AppreciationListQuery) ([]dto.AppreciationResponse, error) {
	if _, err := loadPeriod(ctx, s.repo, s.logger, q.PeriodID); err != nil {
		return nil, err
	}
	canViewDrafts := grading.Capabilities(caller.Role, nil).CanViewDrafts

	students, err := s.listStudents(ctx, caller, q.ClassroomID)
	if err != nil {
		return nil, err
	}
	if len(students) == 0 {
		return []dto.AppreciationResponse{}, nil
	}

	rows, err := s.repo.Appreciation.List(ctx, repository.AppreciationFilter{
		BimestreID:    q.PeriodID,
		StudentIDs:    studentIDsOf(students),
		ExcludeDrafts: !canViewDrafts,
	})
	if err != nil {
		s.logger.Error("failed to list appreciations", zap.Int64("period_id", q.PeriodID), zap.Error(err))
		return nil, err
	}
	stored := make(map[string]grading.Appreciation, len(rows))
	for _, r := range rows {
		stored[r.StudentID] = grading.NewAppreciation(r.Comment, r.IsApproved)
	}

	needle := strings.ToLower(strings.TrimSpace(q.Query))
	out := make([]dto.AppreciationResponse, 0, len(students))
	for i := range students {
		st := &students[i]
		if needle != "" && !strings.Contains(strings.ToLower(st.FullName()), needle) {
			continue
		}

		key := DraftKey{StudentID: st.ID, PeriodID: q.PeriodID}
		value, ok := stored[st.ID]
		sync := SyncSynced
		if buffered, state, found := s.drafts.Get(key); found {
			value, ok, sync = buffered, true, state
		}

		if !canViewDrafts {
			// review queues only carry submitted comments
			if !ok || !value.VisibleToReviewers() {
				continue
			}
		}
		if !matchesStatus(value, q.Status) {
			continue
		}
		out = append(out, toAppreciationResponse(st, key, value, sync, ""))
	}
	return out, nil
}

func matchesStatus(a grading.Appreciation, status string) bool {
	switch status {
	case AppreciationStatusPending:
		return a.State() == grading.StateSent
	case AppreciationStatusApproved:
		return a.State() == grading.StateApproved
	}
	return true
}

// listStudents returns the students the caller may list: a teacher's
// tutored classroom, or for review roles one classroom or every active one.
func (s *appreciationService) listStudents(ctx context.Context, caller Caller, classroomID int64) ([]model.Student, error) {
	if !caller.Role.IsStaff() {
		tutored, err := tutoredClassroom(ctx, s.repo, s.logger, caller)
		if err != nil {
			return nil, err
		}
		classroomID = tutored
	}
	if classroomID != 0 {
		students, err := s.repo.Student.ListByClassroom(ctx, classroomID)
		if err != nil {
			s.logger.Error("failed to list students", zap.Int64("classroom_id", classroomID), zap.Error(err))
			return nil, err
		}
		return students, nil
	}

	classrooms, err := s.repo.Classroom.ListActive(ctx)
	if err != nil {
		s.logger.Error("failed to list classrooms", zap.Error(err))
		return nil, err
	}
	var all []model.Student
	for _, c := range classrooms {
		students, err := s.repo.Student.ListByClassroom(ctx, c.ID)
		if err != nil {
			s.logger.Error("failed to list students", zap.Int64("classroom_id", c.ID), zap.Error(err))
			return nil, err
		}
		all = append(all, students...)
	}
	return all, nil
}

// ────────────────────── SaveDraft ──────────────────────

func (s *appreciationService) SaveDraft(ctx context.Context, caller Caller, req *dto.SaveAppreciationRequest) (*dto.AppreciationMutationResponse, error) {
	_, reason, err := guardPeriod(ctx, s.repo, s.logger, caller, req.PeriodID, grading.ActionSaveAppreciation)
	if err != nil {
		return nil, err
	}
	if reason != "" {
		return &dto.AppreciationMutationResponse{MutationResult: *dto.Skipped(reason)}, nil
	}

	student, err := tutorStudent(ctx, s.repo, s.logger, caller, req.StudentID)
	if err != nil {
		return nil, err
	}
	key := DraftKey{StudentID: req.StudentID, PeriodID: req.PeriodID}
	current, err := s.current(ctx, key)
	if err != nil {
		return nil, err
	}

	next, changed := current.WithText(req.Comment)
	if !changed {
		return s.result(student, key, current), nil
	}

	s.drafts.Put(key, next, caller)
	if !sameApproval(current, next) {
		// approval resets are written through
		_ = s.drafts.Flush(ctx, key)
	}
	return s.result(student, key, next), nil
}

// ────────────────────── Submit ──────────────────────

func (s *appreciationService) Submit(ctx context.Context, caller Caller, req *dto.AppreciationKeyRequest) (*dto.AppreciationMutationResponse, error) {
	return s.transition(ctx, caller, req.PeriodID, req.StudentID, grading.ActionSubmitAppreciation, grading.Appreciation.Submit)
}

// ────────────────────── approval ──────────────────────

func (s *appreciationService) SetApproval(ctx context.Context, caller Caller, req *dto.SetApprovalRequest) (*dto.AppreciationMutationResponse, error) {
	approved := *req.Approved
	return s.transition(ctx, caller, req.PeriodID, req.StudentID, grading.ActionApproveAppreciation, func(a grading.Appreciation) (grading.Appreciation, error) {
		return a.SetApproval(approved)
	})
}

func (s *appreciationService) ToggleApproval(ctx context.Context, caller Caller, req *dto.AppreciationKeyRequest) (*dto.AppreciationMutationResponse, error) {
	return s.transition(ctx, caller, req.PeriodID, req.StudentID, grading.ActionApproveAppreciation, grading.Appreciation.Toggle)
}

// transition applies step on the latest value, buffered or stored, and
// writes the result immediately.
func (s *appreciationService) transition(ctx context.Context, caller Caller, periodID int64, studentID string, action grading.Action, step func(grading.Appreciation) (grading.Appreciation, error)) (*dto.AppreciationMutationResponse, error) {
	_, reason, err := guardPeriod(ctx, s.repo, s.logger, caller, periodID, action)
	if err != nil {
		return nil, err
	}
	if reason != "" {
		return &dto.AppreciationMutationResponse{MutationResult: *dto.Skipped(reason)}, nil
	}

	student, err := tutorStudent(ctx, s.repo, s.logger, caller, studentID)
	if err != nil {
		return nil, err
	}
	key := DraftKey{StudentID: studentID, PeriodID: periodID}
	current, err := s.current(ctx, key)
	if err != nil {
		return nil, err
	}

	next, err := step(current)
	if err != nil {
		return nil, err
	}

	_, _, buffered := s.drafts.Get(key)
	if !next.Equal(current) || buffered {
		s.drafts.Put(key, next, caller)
		_ = s.drafts.Flush(ctx, key)
	}

	s.logger.Info("appreciation transition",
		zap.String("student_id", studentID),
		zap.Int64("period_id", periodID),
		zap.String("from", string(current.State())),
		zap.String("to", string(next.State())),
		zap.String("by", caller.ProfileID),
	)
	return s.result(student, key, next), nil
}

// ────────────────────── SyncStatus ──────────────────────

func (s *appreciationService) SyncStatus(ctx context.Context, caller Caller, periodID int64) ([]dto.AppreciationResponse, error) {
	out := []dto.AppreciationResponse{}
	for _, st := range s.drafts.Status(periodID) {
		if !caller.Role.IsStaff() && st.EditorID != caller.ProfileID {
			continue
		}
		student, err := s.repo.Student.GetByID(ctx, st.Key.StudentID)
		if err != nil {
			s.logger.Warn("sync status: failed to load student", zap.String("student_id", st.Key.StudentID), zap.Error(err))
			student = &model.Student{ID: st.Key.StudentID}
		}
		out = append(out, toAppreciationResponse(student, st.Key, st.Appreciation, st.State, st.Err))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StudentName < out[j].StudentName })
	return out, nil
}

// ────────────────────── helpers ──────────────────────

// current is the buffered value when one exists, otherwise the stored row.
func (s *appreciationService) current(ctx context.Context, key DraftKey) (grading.Appreciation, error) {
	if v, _, ok := s.drafts.Get(key); ok {
		return v, nil
	}
	row, err := s.repo.Appreciation.Get(ctx, key.StudentID, key.PeriodID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return grading.Appreciation{}, nil
		}
		s.logger.Error("failed to load appreciation",
			zap.String("student_id", key.StudentID),
			zap.Int64("period_id", key.PeriodID),
			zap.Error(err),
		)
		return grading.Appreciation{}, err
	}
	return grading.NewAppreciation(row.Comment, row.IsApproved), nil
}

func (s *appreciationService) result(student *model.Student, key DraftKey, value grading.Appreciation) *dto.AppreciationMutationResponse {
	sync := SyncSynced
	errText := ""
	if _, state, ok := s.drafts.Get(key); ok {
		sync = state
		for _, st := range s.drafts.Status(key.PeriodID) {
			if st.Key == key {
				errText = st.Err
			}
		}
	}
	resp := toAppreciationResponse(student, key, value, sync, errText)
	return &dto.AppreciationMutationResponse{
		MutationResult: dto.MutationResult{Applied: true, Synced: sync == SyncSynced},
		Appreciation:   &resp,
	}
}

func sameApproval(a, b grading.Appreciation) bool {
	if (a.Approval == nil) != (b.Approval == nil) {
		return false
	}
	return a.Approval == nil || *a.Approval == *b.Approval
}

func toAppreciationResponse(st *model.Student, key DraftKey, a grading.Appreciation, sync SyncState, errText string) dto.AppreciationResponse {
	resp := dto.AppreciationResponse{
		StudentID:  key.StudentID,
		PeriodID:   key.PeriodID,
		Comment:    a.Comment,
		IsApproved: a.Approval,
		State:      string(a.State()),
		Sync:       string(sync),
		SyncError:  errText,
	}
	if st != nil {
		if st.LastName != "" || st.FirstName != "" {
			resp.StudentName = st.FullName()
		}
		if st.ClassroomID != nil {
			resp.ClassroomID = *st.ClassroomID
		}
	}
	return resp
}
