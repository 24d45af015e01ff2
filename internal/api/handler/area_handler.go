package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/internal/dto"
	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/internal/service"
	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/pkg/response"
)

// AreaHandler curricular areas
type AreaHandler struct {
	areaSvc service.AreaService
}

// NewAreaHandler creates an AreaHandler
func NewAreaHandler(areaSvc service.AreaService) *AreaHandler {
	return &AreaHandler{areaSvc: areaSvc}
}

// ListAreas GET /api/v1/areas
func (h *AreaHandler) ListAreas(c *gin.Context) {
	list, err := h.areaSvc.List(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// SetActive PUT /api/v1/areas/:id/active
func (h *AreaHandler) SetActive(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.SetAreaActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "parámetros inválidos")
		return
	}
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	if err := h.areaSvc.SetActive(c.Request.Context(), caller, id, *req.Active); err != nil {
		if errors.Is(err, service.ErrAreaNotFound) {
			response.NotFound(c, 27001, "área curricular no encontrada")
			return
		}
		handleCommonError(c, err)
		return
	}

	response.OK(c, nil)
}
