package handler

import "github.com/gustav0-ri0s/sistema-de-calificaciones-VC/internal/service"

// Handler aggregates every HTTP handler.
type Handler struct {
	Auth         *AuthHandler
	Period       *PeriodHandler
	Course       *CourseHandler
	Grade        *GradeHandler
	Tutor        *TutorHandler
	Appreciation *AppreciationHandler
	Monitoring   *MonitoringHandler
	Export       *ExportHandler
	Area         *AreaHandler
}

// NewHandler creates the Handler aggregate.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:         NewAuthHandler(svc.Auth),
		Period:       NewPeriodHandler(svc.Period),
		Course:       NewCourseHandler(svc.Course),
		Grade:        NewGradeHandler(svc.Grade),
		Tutor:        NewTutorHandler(svc.Tutor),
		Appreciation: NewAppreciationHandler(svc.Appreciation, svc.Writing),
		Monitoring:   NewMonitoringHandler(svc.Monitoring, svc.Completion),
		Export:       NewExportHandler(svc.Export),
		Area:         NewAreaHandler(svc.Area),
	}
}
