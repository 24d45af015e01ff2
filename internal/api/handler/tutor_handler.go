package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/internal/dto"
	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/internal/grading"
	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/internal/service"
	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/pkg/response"
)

// TutorHandler homeroom sheet: behavior and family commitments
type TutorHandler struct {
	tutorSvc service.TutorService
}

// NewTutorHandler creates a TutorHandler
func NewTutorHandler(tutorSvc service.TutorService) *TutorHandler {
	return &TutorHandler{tutorSvc: tutorSvc}
}

// GetTutorSheet GET /api/v1/tutor/sheet?period_id=&classroom_id=
// Without classroom_id the caller's tutored classroom is used.
func (h *TutorHandler) GetTutorSheet(c *gin.Context) {
	periodID, ok := queryPeriodID(c)
	if !ok {
		return
	}
	var classroomID int64
	if raw := c.Query("classroom_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			response.BadRequest(c, 10001, "classroom_id inválido")
			return
		}
		classroomID = id
	}
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	sheet, err := h.tutorSvc.GetTutorSheet(c.Request.Context(), caller, periodID, classroomID)
	if err != nil {
		h.handleTutorError(c, err)
		return
	}

	response.OK(c, sheet)
}

// SetBehavior PUT /api/v1/tutor/behavior
func (h *TutorHandler) SetBehavior(c *gin.Context) {
	var req dto.SetBehaviorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "parámetros inválidos")
		return
	}
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	result, err := h.tutorSvc.SetBehavior(c.Request.Context(), caller, &req)
	if err != nil {
		h.handleTutorError(c, err)
		return
	}

	response.OK(c, result)
}

// ListCommitments GET /api/v1/tutor/commitments
func (h *TutorHandler) ListCommitments(c *gin.Context) {
	list, err := h.tutorSvc.ListCommitments(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// SetFamilyEvaluation PUT /api/v1/tutor/family
func (h *TutorHandler) SetFamilyEvaluation(c *gin.Context) {
	var req dto.SetFamilyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "parámetros inválidos")
		return
	}
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	result, err := h.tutorSvc.SetFamilyEvaluation(c.Request.Context(), caller, &req)
	if err != nil {
		h.handleTutorError(c, err)
		return
	}

	response.OK(c, result)
}

func (h *TutorHandler) handleTutorError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidBehaviorField):
		response.BadRequest(c, 23001, "campo de comportamiento inválido")
	case errors.Is(err, service.ErrCommitmentNotFound):
		response.NotFound(c, 23002, "compromiso de familia no encontrado o inactivo")
	case errors.Is(err, grading.ErrInvalidLevel):
		response.BadRequest(c, 23007, "nivel de logro inválido")
	default:
		handleCommonError(c, err)
	}
}
