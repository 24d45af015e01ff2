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

// AppreciationHandler tutor appreciations and their review
type AppreciationHandler struct {
	appreciationSvc service.AppreciationService
	writingSvc      service.WritingService
}

// NewAppreciationHandler creates an AppreciationHandler
func NewAppreciationHandler(appreciationSvc service.AppreciationService, writingSvc service.WritingService) *AppreciationHandler {
	return &AppreciationHandler{appreciationSvc: appreciationSvc, writingSvc: writingSvc}
}

// ListAppreciations GET /api/v1/appreciations?period_id=&classroom_id=&status=&q=
func (h *AppreciationHandler) ListAppreciations(c *gin.Context) {
	var q dto.AppreciationListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, "parámetros inválidos")
		return
	}
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	list, err := h.appreciationSvc.List(c.Request.Context(), caller, &q)
	if err != nil {
		h.handleAppreciationError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// SaveDraft buffers the text; 202 while the write is still pending.
// PUT /api/v1/appreciations/draft
func (h *AppreciationHandler) SaveDraft(c *gin.Context) {
	var req dto.SaveAppreciationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "parámetros inválidos")
		return
	}
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	result, err := h.appreciationSvc.SaveDraft(c.Request.Context(), caller, &req)
	if err != nil {
		h.handleAppreciationError(c, err)
		return
	}

	if result.Applied && result.Appreciation != nil && result.Appreciation.Sync == string(service.SyncPending) {
		response.Accepted(c, result)
		return
	}
	response.OK(c, result)
}

// Submit sends the appreciation to review
// POST /api/v1/appreciations/submit
func (h *AppreciationHandler) Submit(c *gin.Context) {
	var req dto.AppreciationKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "parámetros inválidos")
		return
	}
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	result, err := h.appreciationSvc.Submit(c.Request.Context(), caller, &req)
	if err != nil {
		h.handleAppreciationError(c, err)
		return
	}

	response.OK(c, result)
}

// SetApproval PUT /api/v1/appreciations/approval
func (h *AppreciationHandler) SetApproval(c *gin.Context) {
	var req dto.SetApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "parámetros inválidos")
		return
	}
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	result, err := h.appreciationSvc.SetApproval(c.Request.Context(), caller, &req)
	if err != nil {
		h.handleAppreciationError(c, err)
		return
	}

	response.OK(c, result)
}

// ToggleApproval POST /api/v1/appreciations/toggle
func (h *AppreciationHandler) ToggleApproval(c *gin.Context) {
	var req dto.AppreciationKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "parámetros inválidos")
		return
	}
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	result, err := h.appreciationSvc.ToggleApproval(c.Request.Context(), caller, &req)
	if err != nil {
		h.handleAppreciationError(c, err)
		return
	}

	response.OK(c, result)
}

// SyncStatus edits that have not reached the store
// GET /api/v1/appreciations/sync?period_id=
func (h *AppreciationHandler) SyncStatus(c *gin.Context) {
	periodID, ok := queryPeriodID(c)
	if !ok {
		return
	}
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	list, err := h.appreciationSvc.SyncStatus(c.Request.Context(), caller, periodID)
	if err != nil {
		h.handleAppreciationError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// ImproveText asks the writing assistant for a suggestion. Nothing is saved.
// POST /api/v1/appreciations/improve
func (h *AppreciationHandler) ImproveText(c *gin.Context) {
	var req dto.ImproveTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "parámetros inválidos")
		return
	}

	suggestion, ok := h.writingSvc.Improve(c.Request.Context(), req.Text)
	response.OK(c, dto.ImproveTextResponse{Available: ok, Suggestion: suggestion})
}

func (h *AppreciationHandler) handleAppreciationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, grading.ErrInvalidTransition):
		response.Error(c, http.StatusConflict, 24001, "transición de apreciación no permitida")
	case errors.Is(err, grading.ErrAppreciationEmpty):
		response.BadRequest(c, 24002, "la apreciación no tiene texto")
	default:
		handleCommonError(c, err)
	}
}
