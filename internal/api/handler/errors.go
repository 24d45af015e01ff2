package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/internal/service"
	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/pkg/response"
)

// handleCommonError maps the errors shared by every module. Unknown
// errors become a 500.
func handleCommonError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrForbiddenRole):
		response.Forbidden(c, 10003, "su rol no permite esta operación")
	case errors.Is(err, service.ErrPeriodNotFound):
		response.NotFound(c, 20001, "bimestre no encontrado")
	case errors.Is(err, service.ErrNoActiveYear):
		response.NotFound(c, 20002, "no hay un año académico activo")
	case errors.Is(err, service.ErrPeriodNotInActiveYear):
		response.BadRequest(c, 20003, "el bimestre no pertenece al año académico activo")
	case errors.Is(err, service.ErrProfileNotFound):
		response.NotFound(c, 11002, "perfil no encontrado")
	case errors.Is(err, service.ErrStudentNotFound):
		response.NotFound(c, 23005, "estudiante no encontrado")
	case errors.Is(err, service.ErrClassroomNotFound):
		response.NotFound(c, 23006, "aula no encontrada")
	case errors.Is(err, service.ErrNotTutor):
		response.Forbidden(c, 23003, "no tiene un aula a cargo como tutor")
	case errors.Is(err, service.ErrStudentNotInSection):
		response.Forbidden(c, 23004, "el estudiante no pertenece a su aula")
	default:
		response.InternalError(c)
	}
}
