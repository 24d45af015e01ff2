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

// reportCardData gathers everything known about one student in one
// period. Review roles get the appreciation only once it was submitted.
func reportCardData(ctx context.Context, repo *repository.Repository, logger *zap.Logger, caller Caller, period *model.Bimestre, studentID string) (*dto.ReportCardResponse, error) {
	student, err := repo.Student.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		logger.Error("failed to load student", zap.String("student_id", studentID), zap.Error(err))
		return nil, err
	}
	if student.ClassroomID == nil {
		return nil, ErrClassroomNotFound
	}
	classroom, err := repo.Classroom.GetByID(ctx, *student.ClassroomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClassroomNotFound
		}
		return nil, err
	}

	assignments, err := repo.Curriculum.ListAssignmentsByClassroom(ctx, classroom.ID)
	if err != nil {
		logger.Error("failed to list courses", zap.Int64("classroom_id", classroom.ID), zap.Error(err))
		return nil, err
	}
	ids := []string{student.ID}
	grades, err := repo.Grade.ListByStudents(ctx, period.ID, ids, nil)
	if err != nil {
		logger.Error("failed to list grades", zap.String("student_id", student.ID), zap.Error(err))
		return nil, err
	}
	gradeBy := make(map[int64]*model.StudentGrade, len(grades))
	for i := range grades {
		gradeBy[grades[i].CompetencyID] = &grades[i]
	}

	resp := &dto.ReportCardResponse{
		Student:   dto.StudentRow{ID: student.ID, FullName: student.FullName()},
		Classroom: toClassroomResponse(classroom),
		Period:    *toPeriodResponse(period, caller),
		Areas:     make([]dto.ReportCardArea, 0, len(assignments)),
		Family:    map[string]string{},
	}

	for i := range assignments {
		a := &assignments[i]
		area := dto.ReportCardArea{AreaID: a.AreaID, Name: a.CourseName()}
		if a.Profile != nil {
			area.TeacherName = a.Profile.FullName
		}
		tally := grading.Tally{}
		if a.Area != nil {
			for _, c := range a.Area.Competencies {
				row := dto.ReportCardCompetency{CompetencyID: c.ID, Name: c.Name}
				if g := gradeBy[c.ID]; g != nil {
					row.Grade = g.Grade
					row.Conclusion = g.Conclusion()
					tally.Filled++
				}
				tally.Expected++
				area.Competencies = append(area.Competencies, row)
			}
		}
		area.Filled = dto.NewTallyResponse(tally)
		resp.Areas = append(resp.Areas, area)
	}

	behaviors, err := repo.Behavior.ListByStudents(ctx, period.ID, ids)
	if err != nil {
		logger.Warn("report card: failed to load behavior", zap.Error(err))
	}
	for _, b := range behaviors {
		resp.Comportamiento = deref(b.BehaviorGrade)
		resp.Valores = deref(b.ValuesGrade)
	}

	commitments, err := repo.Family.ListCommitments(ctx, true)
	if err != nil {
		logger.Warn("report card: failed to load commitments", zap.Error(err))
	}
	evaluations, err := repo.Family.ListEvaluations(ctx, period.ID, ids)
	if err != nil {
		logger.Warn("report card: failed to load family evaluations", zap.Error(err))
	}
	evalBy := make(map[int64]string, len(evaluations))
	for _, e := range evaluations {
		evalBy[e.CommitmentID] = e.Grade
	}
	for _, c := range commitments {
		resp.Family[c.Description] = evalBy[c.ID]
	}

	row, err := repo.Appreciation.Get(ctx, student.ID, period.ID)
	switch {
	case err == nil:
		a := grading.NewAppreciation(row.Comment, row.IsApproved)
		if caller.Role == grading.RoleDocente || a.VisibleToReviewers() {
			resp.Appreciation = a.Comment
			resp.AppreciationState = string(a.State())
		} else {
			resp.AppreciationState = string(grading.StateEmpty)
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		resp.AppreciationState = string(grading.StateEmpty)
	default:
		logger.Warn("report card: failed to load appreciation", zap.Error(err))
		resp.AppreciationState = string(grading.StateEmpty)
	}

	return resp, nil
}
