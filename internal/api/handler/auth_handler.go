package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/internal/dto"
	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/internal/service"
	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/pkg/response"
)

// AuthHandler staff authentication
type AuthHandler struct {
	authSvc service.AuthService
}

// NewAuthHandler creates an AuthHandler
func NewAuthHandler(authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// Login email/password login
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "parámetros inválidos")
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Error(c, http.StatusUnauthorized, 11001, "correo o contraseña incorrectos")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// Logout revokes the current token
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	jti, exp := tokenMeta(c)
	if err := h.authSvc.Logout(c.Request.Context(), jti, exp); err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, nil)
}

// Me the authenticated profile
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	profile, err := h.authSvc.Me(c.Request.Context(), caller)
	if err != nil {
		handleCommonError(c, err)
		return
	}

	response.OK(c, profile)
}
