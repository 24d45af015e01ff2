package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/internal/dto"
	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/internal/grading"
	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/internal/service"
	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/pkg/response"
)

// MonitoringHandler completion and pedagogical monitoring
type MonitoringHandler struct {
	monitoringSvc service.MonitoringService
	completionSvc service.CompletionService
}

// NewMonitoringHandler creates a MonitoringHandler
func NewMonitoringHandler(monitoringSvc service.MonitoringService, completionSvc service.CompletionService) *MonitoringHandler {
	return &MonitoringHandler{monitoringSvc: monitoringSvc, completionSvc: completionSvc}
}

// Completion GET /api/v1/completion?scope=&id=&period_id=&bar=&categories=
func (h *MonitoringHandler) Completion(c *gin.Context) {
	var q dto.CompletionQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, "parámetros inválidos")
		return
	}
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	scope := grading.ScopeKind(q.Scope)
	result, err := h.completionSvc.Compute(c.Request.Context(), caller, service.CompletionQuery{
		Scope:      scope,
		ID:         q.ID,
		PeriodID:   q.PeriodID,
		Bar:        grading.ParseBar(q.Bar, scope),
		Categories: grading.ParseCategories(q.Categories),
	})
	if err != nil {
		h.handleMonitoringError(c, err)
		return
	}

	response.OK(c, result)
}

// ListSections dashboard cards, most urgent first
// GET /api/v1/monitoring/sections?period_id=&status=&q=
func (h *MonitoringHandler) ListSections(c *gin.Context) {
	var q dto.SectionsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, "parámetros inválidos")
		return
	}
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	list, err := h.monitoringSvc.Sections(c.Request.Context(), caller, &q)
	if err != nil {
		h.handleMonitoringError(c, err)
		return
	}

	response.OK(c, list)
}

// GetSection GET /api/v1/monitoring/sections/:id?period_id=
func (h *MonitoringHandler) GetSection(c *gin.Context) {
	classroomID, ok := paramID(c, "id")
	if !ok {
		return
	}
	periodID, ok := queryPeriodID(c)
	if !ok {
		return
	}
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	detail, err := h.monitoringSvc.SectionDetail(c.Request.Context(), caller, classroomID, periodID)
	if err != nil {
		h.handleMonitoringError(c, err)
		return
	}

	response.OK(c, detail)
}

// StudentAudit GET /api/v1/monitoring/students/:id?period_id=
func (h *MonitoringHandler) StudentAudit(c *gin.Context) {
	studentID := c.Param("id")
	if studentID == "" {
		response.BadRequest(c, 10001, "id de estudiante obligatorio")
		return
	}
	periodID, ok := queryPeriodID(c)
	if !ok {
		return
	}
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	audit, err := h.monitoringSvc.StudentAudit(c.Request.Context(), caller, studentID, periodID)
	if err != nil {
		h.handleMonitoringError(c, err)
		return
	}

	response.OK(c, audit)
}

// Overview GET /api/v1/monitoring/overview?period_id=
func (h *MonitoringHandler) Overview(c *gin.Context) {
	periodID, ok := queryPeriodID(c)
	if !ok {
		return
	}
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	overview, err := h.monitoringSvc.Overview(c.Request.Context(), caller, periodID)
	if err != nil {
		h.handleMonitoringError(c, err)
		return
	}

	response.OK(c, overview)
}

func (h *MonitoringHandler) handleMonitoringError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidScope):
		response.BadRequest(c, 25001, "alcance de avance inválido")
	case errors.Is(err, service.ErrScopeIDRequired):
		response.BadRequest(c, 25002, "el alcance requiere un identificador")
	case errors.Is(err, service.ErrAssignmentNotFound):
		response.NotFound(c, 25003, "curso asignado no encontrado")
	case errors.Is(err, service.ErrNotCourseOwner):
		response.Forbidden(c, 22001, "el curso no está asignado a usted")
	default:
		handleCommonError(c, err)
	}
}
