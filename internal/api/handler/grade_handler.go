package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/internal/dto"
	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/internal/grading"
	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/internal/service"
	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/pkg/response"
)

// GradeHandler competency grades of a course
type GradeHandler struct {
	gradeSvc service.GradeService
}

// NewGradeHandler creates a GradeHandler
func NewGradeHandler(gradeSvc service.GradeService) *GradeHandler {
	return &GradeHandler{gradeSvc: gradeSvc}
}

// GetCourseSheet grading matrix of one course
// GET /api/v1/courses/:id/sheet?period_id=
func (h *GradeHandler) GetCourseSheet(c *gin.Context) {
	assignmentID, ok := paramID(c, "id")
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

	sheet, err := h.gradeSvc.GetCourseSheet(c.Request.Context(), caller, assignmentID, periodID)
	if err != nil {
		h.handleGradeError(c, err)
		return
	}

	response.OK(c, sheet)
}

// SetGrade writes or clears one grade cell
// PUT /api/v1/grades
func (h *GradeHandler) SetGrade(c *gin.Context) {
	var req dto.SetGradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "parámetros inválidos")
		return
	}
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	result, err := h.gradeSvc.SetGrade(c.Request.Context(), caller, &req)
	if err != nil {
		h.handleGradeError(c, err)
		return
	}

	response.OK(c, result)
}

// PreviewMassConclusion counts the cells a mass conclusion would reach
// POST /api/v1/grades/mass-conclusion/preview
func (h *GradeHandler) PreviewMassConclusion(c *gin.Context) {
	var req dto.MassConclusionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "parámetros inválidos")
		return
	}
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	n, err := h.gradeSvc.PreviewMassConclusion(c.Request.Context(), caller, &req)
	if err != nil {
		h.handleGradeError(c, err)
		return
	}

	response.OK(c, gin.H{"affected": n})
}

// ApplyMassConclusion POST /api/v1/grades/mass-conclusion
func (h *GradeHandler) ApplyMassConclusion(c *gin.Context) {
	var req dto.MassConclusionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "parámetros inválidos")
		return
	}
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	result, err := h.gradeSvc.ApplyMassConclusion(c.Request.Context(), caller, &req)
	if err != nil {
		h.handleGradeError(c, err)
		return
	}

	response.OK(c, result)
}

func (h *GradeHandler) handleGradeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAssignmentNotFound):
		response.NotFound(c, 22000, "curso asignado no encontrado")
	case errors.Is(err, service.ErrNotCourseOwner):
		response.Forbidden(c, 22001, "el curso no está asignado a usted")
	case errors.Is(err, service.ErrCompetencyNotInCourse):
		response.BadRequest(c, 22002, "la competencia no pertenece al curso")
	case errors.Is(err, service.ErrStudentNotInCourse):
		response.BadRequest(c, 22003, "el estudiante no pertenece al aula del curso")
	case errors.Is(err, service.ErrConclusionEmpty):
		response.BadRequest(c, 22004, "la conclusión descriptiva no puede estar vacía")
	case errors.Is(err, grading.ErrInvalidFilter):
		response.BadRequest(c, 22005, "filtro de conclusión masiva inválido")
	case errors.Is(err, grading.ErrInvalidLevel):
		response.BadRequest(c, 22006, "nivel de logro inválido")
	case errors.Is(err, service.ErrGradeWriteFailed):
		response.ErrorWithDetails(c, http.StatusInternalServerError, 22010, "no se pudo guardar la calificación", err.Error())
	default:
		handleCommonError(c, err)
	}
}
