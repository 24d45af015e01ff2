package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/internal/service"
	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/pkg/response"
)

// Context keys set by middleware.JWTAuth.
const (
	CtxUserID           = "user_id"
	CtxRole             = "role"
	CtxAppRole          = "app_role"
	CtxTutorClassroomID = "tutor_classroom_id"
	CtxTokenJTI         = "token_jti"
	CtxTokenExp         = "token_exp"
)

// MustGetUserID reads the profile id injected by JWTAuth. On failure it
// writes a 401 and returns false; the caller should return right away.
func MustGetUserID(c *gin.Context) (string, bool) {
	return mustGetString(c, CtxUserID)
}

// MustGetRole reads the stored profile role.
func MustGetRole(c *gin.Context) (string, bool) {
	return mustGetString(c, CtxRole)
}

// MustGetCaller builds the service caller of the request.
func MustGetCaller(c *gin.Context) (service.Caller, bool) {
	id, ok := MustGetUserID(c)
	if !ok {
		return service.Caller{}, false
	}
	role, ok := MustGetRole(c)
	if !ok {
		return service.Caller{}, false
	}
	return service.NewCaller(id, role), true
}

func mustGetString(c *gin.Context, key string) (string, bool) {
	v, exists := c.Get(key)
	if !exists {
		response.Unauthorized(c, 10002, "no autenticado")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "no autenticado")
		return "", false
	}
	return s, true
}

// tokenMeta returns the jti and expiry of the current token, if known.
func tokenMeta(c *gin.Context) (string, time.Time) {
	jti := c.GetString(CtxTokenJTI)
	exp, _ := c.Get(CtxTokenExp)
	t, _ := exp.(time.Time)
	return jti, t
}

// paramID parses a positive integer path parameter, writing a 400 otherwise.
func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, 10001, name+" inválido")
		return 0, false
	}
	return id, true
}

// queryPeriodID parses the mandatory period_id query parameter.
func queryPeriodID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Query("period_id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, 10001, "period_id es obligatorio")
		return 0, false
	}
	return id, true
}
