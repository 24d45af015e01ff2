package service

import (
	"go.uber.org/zap"

	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/config"
	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/internal/repository"
	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/pkg/jwt"
	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/pkg/storage"
)

// Service aggregates every use case.
type Service struct {
	Auth         AuthService
	Period       PeriodService
	Course       CourseService
	Grade        GradeService
	Tutor        TutorService
	Appreciation AppreciationService
	Completion   CompletionService
	Monitoring   MonitoringService
	Writing      WritingService
	Export       ExportService
	Area         AreaService

	// Drafts is shared by the appreciation and tutor services and driven
	// by the retry worker and shutdown.
	Drafts *DraftBuffer
}

// NewService wires the services. blacklist and archive may be nil.
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	archive storage.Archive,
	logger *zap.Logger,
) *Service {
	drafts := NewDraftBuffer(cfg.Grading.AutosaveDelay, AppreciationWriter(repo), logger)

	return &Service{
		Auth:         NewAuthService(repo, jwtMgr, blacklist, logger),
		Period:       NewPeriodService(repo, logger),
		Course:       NewCourseService(repo, logger),
		Grade:        NewGradeService(repo, logger),
		Tutor:        NewTutorService(repo, drafts, logger),
		Appreciation: NewAppreciationService(repo, drafts, logger),
		Completion:   NewCompletionService(repo, logger),
		Monitoring:   NewMonitoringService(repo, logger),
		Writing:      NewWritingService(&cfg.Writing, logger),
		Export:       NewExportService(repo, archive, logger),
		Area:         NewAreaService(repo, logger),
		Drafts:       drafts,
	}
}
