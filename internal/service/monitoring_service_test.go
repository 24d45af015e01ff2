package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/internal/dto"
	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/internal/grading"
)

func setupTestMonitoringService() (MonitoringService, *testSchool) {
	_, sc := setupTestCompletionService()
	sc.appreciations.put("s3", 1, "Pendiente de revisión", boolRef(false))
	return NewMonitoringService(sc.repo, zap.NewNop()), sc
}

func TestMonitoringService_Sections_SortedByUrgency(t *testing.T) {
	svc, _ := setupTestMonitoringService()

	resp, err := svc.Sections(context.Background(), supervisorCaller(), &dto.SectionsQuery{PeriodID: 1})
	if err != nil {
		t.Fatalf("Sections failed: %v", err)
	}
	if len(resp.Sections) != 2 {
		t.Fatalf("expected 2 cards, got %d", len(resp.Sections))
	}
	first, second := resp.Sections[0], resp.Sections[1]
	if first.ClassroomID != 20 || first.PendingAppreciations != 1 {
		t.Errorf("the classroom with pending reviews comes first, got %+v", first)
	}
	if second.ClassroomID != 10 || second.Progress != 50 || second.StudentCount != 2 || second.TotalCourses != 1 {
		t.Errorf("unexpected 3ro B card %+v", second)
	}
}

func TestMonitoringService_Sections_Filters(t *testing.T) {
	svc, _ := setupTestMonitoringService()
	ctx := context.Background()

	resp, _ := svc.Sections(ctx, supervisorCaller(), &dto.SectionsQuery{PeriodID: 1, Status: string(grading.StatusPending)})
	if len(resp.Sections) != 1 || resp.Sections[0].ClassroomID != 20 {
		t.Errorf("expected only 1ro A pending, got %+v", resp.Sections)
	}
	resp, _ = svc.Sections(ctx, supervisorCaller(), &dto.SectionsQuery{PeriodID: 1, Query: "primaria"})
	if len(resp.Sections) != 1 || resp.Sections[0].ClassroomID != 10 {
		t.Errorf("expected only the primaria classroom, got %+v", resp.Sections)
	}
}

func TestMonitoringService_ReviewRolesOnly(t *testing.T) {
	svc, _ := setupTestMonitoringService()
	ctx := context.Background()

	if _, err := svc.Sections(ctx, tutorCaller(), &dto.SectionsQuery{PeriodID: 1}); !errors.Is(err, ErrForbiddenRole) {
		t.Errorf("Sections: expected ErrForbiddenRole, got %v", err)
	}
	if _, err := svc.Overview(ctx, tutorCaller(), 1); !errors.Is(err, ErrForbiddenRole) {
		t.Errorf("Overview: expected ErrForbiddenRole, got %v", err)
	}
	if _, err := svc.StudentAudit(ctx, tutorCaller(), "s1", 1); !errors.Is(err, ErrForbiddenRole) {
		t.Errorf("StudentAudit: expected ErrForbiddenRole, got %v", err)
	}
}

func TestMonitoringService_SectionDetail(t *testing.T) {
	svc, _ := setupTestMonitoringService()

	resp, err := svc.SectionDetail(context.Background(), adminCaller(), 10, 1)
	if err != nil {
		t.Fatalf("SectionDetail failed: %v", err)
	}
	if resp.TutorName != "Rosa Huamán" || len(resp.Students) != 2 {
		t.Fatalf("unexpected detail %+v", resp)
	}
	rows := map[string]dto.SectionStudentRow{}
	for _, r := range resp.Students {
		rows[r.ID] = r
	}
	if rows["s1"].Academic.Filled != 2 || rows["s2"].Academic.Filled != 1 || rows["s1"].Academic.Expected != 2 {
		t.Errorf("unexpected per-student tallies %+v", rows)
	}
	if rows["s1"].AppreciationState != string(grading.StateEmpty) {
		t.Errorf("drafts are hidden in monitoring, got %s", rows["s1"].AppreciationState)
	}
	if resp.Completion.Filled != 7 || resp.Completion.Expected != 14 {
		t.Errorf("expected 7/14, got %d/%d", resp.Completion.Filled, resp.Completion.Expected)
	}

	if _, err := svc.SectionDetail(context.Background(), adminCaller(), 77, 1); !errors.Is(err, ErrClassroomNotFound) {
		t.Errorf("expected ErrClassroomNotFound, got %v", err)
	}
}

func TestMonitoringService_StudentAudit(t *testing.T) {
	svc, _ := setupTestMonitoringService()

	card, err := svc.StudentAudit(context.Background(), supervisorCaller(), "s1", 1)
	if err != nil {
		t.Fatalf("StudentAudit failed: %v", err)
	}
	if len(card.Areas) != 1 || card.Areas[0].Filled.Filled != 2 || card.Areas[0].TeacherName != "Rosa Huamán" {
		t.Errorf("unexpected areas %+v", card.Areas)
	}
	if card.Comportamiento != "A" || card.Valores != "A" {
		t.Errorf("unexpected behavior %s/%s", card.Comportamiento, card.Valores)
	}
	if card.Family["Asiste a las reuniones"] != "A" || card.Family["Revisa las tareas"] != "" {
		t.Errorf("unexpected family %+v", card.Family)
	}
	if _, ok := card.Family["Compromiso retirado"]; ok {
		t.Error("inactive commitments are not listed")
	}
	if card.Appreciation != "" || card.AppreciationState != string(grading.StateEmpty) {
		t.Error("a draft appreciation is not shown to reviewers")
	}

	if _, err := svc.StudentAudit(context.Background(), supervisorCaller(), "ghost", 1); !errors.Is(err, ErrStudentNotFound) {
		t.Errorf("expected ErrStudentNotFound, got %v", err)
	}
}

func TestMonitoringService_Overview(t *testing.T) {
	svc, _ := setupTestMonitoringService()

	resp, err := svc.Overview(context.Background(), adminCaller(), 1)
	if err != nil {
		t.Fatalf("Overview failed: %v", err)
	}
	if resp.TotalStudents != 3 || resp.TotalCourses != 2 {
		t.Errorf("unexpected totals %+v", resp)
	}
	if resp.PendingAppreciations != 1 || resp.LowGrades != 1 {
		t.Errorf("expected 1 pending and 1 low grade, got %d / %d", resp.PendingAppreciations, resp.LowGrades)
	}
	if resp.Completion.Expected != 15 || resp.Completion.Filled != 6 {
		t.Errorf("expected global 6/15, got %d/%d", resp.Completion.Filled, resp.Completion.Expected)
	}
}
