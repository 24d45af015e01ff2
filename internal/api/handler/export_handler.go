package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/internal/service"
	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/pkg/response"
)

// ExportHandler report card downloads
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler creates an ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ReportCard libreta of one student
// GET /api/v1/export/report-card/:student_id?period_id=
func (h *ExportHandler) ReportCard(c *gin.Context) {
	studentID := c.Param("student_id")
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

	file, err := h.exportSvc.ReportCard(c.Request.Context(), caller, periodID, studentID)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	h.download(c, file)
}

// ClassroomConsolidated students × competencies of a classroom
// GET /api/v1/export/consolidated/:classroom_id?period_id=
func (h *ExportHandler) ClassroomConsolidated(c *gin.Context) {
	classroomID, ok := paramID(c, "classroom_id")
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

	file, err := h.exportSvc.ClassroomConsolidated(c.Request.Context(), caller, periodID, classroomID)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	h.download(c, file)
}

func (h *ExportHandler) download(c *gin.Context, file *service.ExportFile) {
	if file.ArchiveKey != "" {
		c.Header("X-Archive-Location", file.ArchiveKey)
	}
	response.FileDownload(c, service.XLSXContentType, file.Filename, file.Data.Bytes())
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExportGenerateFail):
		response.Error(c, http.StatusInternalServerError, 26001, "no se pudo generar el archivo Excel")
	default:
		handleCommonError(c, err)
	}
}
