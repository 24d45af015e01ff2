package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/internal/dto"
	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/internal/service"
	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/pkg/response"
)

// PeriodHandler bimestres of the active academic year
type PeriodHandler struct {
	periodSvc service.PeriodService
}

// NewPeriodHandler creates a PeriodHandler
func NewPeriodHandler(periodSvc service.PeriodService) *PeriodHandler {
	return &PeriodHandler{periodSvc: periodSvc}
}

// ListPeriods GET /api/v1/periods
func (h *PeriodHandler) ListPeriods(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	list, err := h.periodSvc.List(c.Request.Context(), caller)
	if err != nil {
		handleCommonError(c, err)
		return
	}

	response.OK(c, list)
}

// GetCurrentPeriod GET /api/v1/periods/current
func (h *PeriodHandler) GetCurrentPeriod(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	period, err := h.periodSvc.Current(c.Request.Context(), caller)
	if err != nil {
		handleCommonError(c, err)
		return
	}

	response.OK(c, period)
}

// GetPeriod GET /api/v1/periods/:id
func (h *PeriodHandler) GetPeriod(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	period, err := h.periodSvc.Get(c.Request.Context(), caller, id)
	if err != nil {
		handleCommonError(c, err)
		return
	}

	response.OK(c, period)
}

// SetLock opens or closes a bimestre
// PUT /api/v1/periods/:id/lock
func (h *PeriodHandler) SetLock(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.SetLockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "parámetros inválidos")
		return
	}
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	period, err := h.periodSvc.SetLock(c.Request.Context(), caller, id, *req.Locked)
	if err != nil {
		handleCommonError(c, err)
		return
	}

	response.OK(c, period)
}

// Calendar iCalendar feed of the bimestres
// GET /api/v1/periods/calendar.ics
func (h *PeriodHandler) Calendar(c *gin.Context) {
	data, filename, err := h.periodSvc.CalendarICS(c.Request.Context())
	if err != nil {
		handleCommonError(c, err)
		return
	}
	response.FileDownload(c, "text/calendar; charset=utf-8", filename, data)
}
