package service

import (
	"context"
	"errors"
	"strconv"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/internal/dto"
	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/internal/grading"
	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/internal/repository"
)

// CourseService teaching load of the caller
type CourseService interface {
	MyLoad(ctx context.Context, caller Caller, periodID int64) (*dto.TeacherLoadResponse, error)
}

type courseService struct {
	repo    *repository.Repository
	logger  *zap.Logger
	counter *counter
}

// NewCourseService creates a CourseService.
func NewCourseService(repo *repository.Repository, logger *zap.Logger) CourseService {
	return &courseService{repo: repo, logger: logger, counter: newCounter(repo, logger)}
}

func (s *courseService) MyLoad(ctx context.Context, caller Caller, periodID int64) (*dto.TeacherLoadResponse, error) {
	if _, err := loadPeriod(ctx, s.repo, s.logger, periodID); err != nil {
		return nil, err
	}
	profile, err := s.repo.Profile.GetByID(ctx, caller.ProfileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		s.logger.Error("failed to load profile", zap.String("profile_id", caller.ProfileID), zap.Error(err))
		return nil, err
	}

	assignments, err := s.repo.Curriculum.ListAssignmentsByProfile(ctx, profile.ID)
	if err != nil {
		s.logger.Error("failed to list teacher courses", zap.String("profile_id", profile.ID), zap.Error(err))
		return nil, err
	}

	resp := &dto.TeacherLoadResponse{
		PeriodID: periodID,
		Courses:  make([]dto.CourseLoadResponse, 0, len(assignments)),
	}
	studentsBy := make(map[int64][]string)
	for i := range assignments {
		a := &assignments[i]
		students, ok := studentsBy[a.ClassroomID]
		if !ok {
			students = s.counter.students(ctx, a.ClassroomID)
			studentsBy[a.ClassroomID] = students
		}
		resp.Courses = append(resp.Courses, dto.CourseLoadResponse{
			AssignmentID: a.ID,
			CourseName:   a.CourseName(),
			Classroom:    toClassroomResponse(a.Classroom),
			Competencies: toCompetencyResponses(a),
			IsTutor:      profile.IsTutorOf(a.ClassroomID),
			StudentCount: len(students),
			Progress:     dto.NewTallyResponse(s.counter.academic(ctx, periodID, a, students)),
		})
	}

	if profile.TutorClassroomID != nil {
		classroomID := *profile.TutorClassroomID
		classroom, err := s.repo.Classroom.GetByID(ctx, classroomID)
		if err != nil {
			s.logger.Warn("load: failed to read tutored classroom", zap.Int64("classroom_id", classroomID), zap.Error(err))
		} else {
			students := s.counter.students(ctx, classroomID)
			bar := grading.DefaultBar(grading.ScopeSection)
			tutorOnly := grading.CategorySet{
				grading.CategoryBehavior:     true,
				grading.CategoryFamily:       true,
				grading.CategoryAppreciation: true,
			}
			b := grading.Breakdown{}
			s.counter.tutor(ctx, periodID, students, s.counter.activeCommitmentIDs(ctx), bar, tutorOnly, b)
			resp.TutorSection = &dto.TutorSectionLoad{
				Classroom:    toClassroomResponse(classroom),
				StudentCount: len(students),
				Completion:   dto.NewCompletionResponse(grading.ScopeSection, strconv.FormatInt(classroomID, 10), periodID, bar, b),
			}
		}
	}

	bar := grading.DefaultBar(grading.ScopeTeacher)
	resp.OverallStatus = dto.NewCompletionResponse(grading.ScopeTeacher, profile.ID, periodID, bar, s.counter.teacher(ctx, periodID, profile, bar, nil))
	return resp, nil
}
