package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/internal/service"
	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/pkg/response"
)

// CourseHandler teaching load
type CourseHandler struct {
	courseSvc service.CourseService
}

// NewCourseHandler creates a CourseHandler
func NewCourseHandler(courseSvc service.CourseService) *CourseHandler {
	return &CourseHandler{courseSvc: courseSvc}
}

// MyLoad courses and tutor section of the caller with progress
// GET /api/v1/me/load?period_id=
func (h *CourseHandler) MyLoad(c *gin.Context) {
	periodID, ok := queryPeriodID(c)
	if !ok {
		return
	}
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	load, err := h.courseSvc.MyLoad(c.Request.Context(), caller, periodID)
	if err != nil {
		handleCommonError(c, err)
		return
	}

	response.OK(c, load)
}
