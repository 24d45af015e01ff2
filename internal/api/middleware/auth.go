package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/internal/api/handler"
	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/internal/grading"
	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/pkg/jwt"
	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/pkg/response"
)

// TokenChecker reports revoked tokens. *redis.Client satisfies it.
type TokenChecker interface {
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// JWTAuth validates "Authorization: Bearer <token>" and injects the
// profile into the context. A nil checker skips the revocation check.
func JWTAuth(jwtMgr *jwt.Manager, checker TokenChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, 10002, "falta el encabezado de autenticación")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, 10002, "formato de autenticación inválido")
			c.Abort()
			return
		}

		claims, err := jwtMgr.ParseToken(parts[1])
		if err != nil {
			response.Unauthorized(c, 10002, "token inválido o expirado")
			c.Abort()
			return
		}

		if checker != nil && claims.ID != "" {
			revoked, err := checker.IsBlacklisted(c.Request.Context(), claims.ID)
			// a Redis outage lets the token through
			if err == nil && revoked {
				response.Unauthorized(c, 10002, "la sesión fue cerrada")
				c.Abort()
				return
			}
		}

		c.Set(handler.CtxUserID, claims.ProfileID)
		c.Set(handler.CtxRole, claims.Role)
		c.Set(handler.CtxAppRole, string(grading.RoleFromProfile(claims.Role)))
		if claims.TutorClassroomID != nil {
			c.Set(handler.CtxTutorClassroomID, *claims.TutorClassroomID)
		}
		c.Set(handler.CtxTokenJTI, claims.ID)
		if claims.ExpiresAt != nil {
			c.Set(handler.CtxTokenExp, claims.ExpiresAt.Time)
		}

		c.Next()
	}
}

// RoleAuth admits only the given application roles. Finer checks (course
// ownership, period lock) stay in the services.
func RoleAuth(allowed ...grading.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(handler.CtxAppRole)
		if role == "" {
			response.Unauthorized(c, 10002, "no autenticado")
			c.Abort()
			return
		}

		for _, r := range allowed {
			if role == string(r) {
				c.Next()
				return
			}
		}

		response.Forbidden(c, 10003, "su rol no permite esta operación")
		c.Abort()
	}
}
