package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/config"
	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/internal/api/handler"
	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/internal/api/middleware"
	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/internal/dto"
	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/internal/grading"
	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/pkg/jwt"
	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/pkg/redis"
)

const maxBodyBytes = 1 << 20

// Setup builds the gin engine. rdb may be nil; token revocation and rate
// limiting are then disabled.
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := dto.RegisterValidators(v); err != nil {
			logger.Fatal("failed to register validators", zap.Error(err))
		}
	}

	// left nil when Redis is unavailable
	var (
		checker middleware.TokenChecker
		limiter middleware.RateLimiter
	)
	if rdb != nil {
		checker = rdb
		limiter = rdb
	}

	r := gin.New()

	// ── global middleware ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(maxBodyBytes))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	staff := []grading.Role{grading.RoleSupervisor, grading.RoleAdministrador}

	v1 := r.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/login", middleware.RateLimit(limiter, 10, time.Minute), h.Auth.Login)
		}

		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, checker))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)

			// bimestres
			periods := authorized.Group("/periods")
			{
				periods.GET("", h.Period.ListPeriods)
				periods.GET("/current", h.Period.GetCurrentPeriod)
				periods.GET("/calendar.ics", h.Period.Calendar)
				periods.GET("/:id", h.Period.GetPeriod)
				periods.PUT("/:id/lock", middleware.RoleAuth(grading.RoleAdministrador), h.Period.SetLock)
			}

			// teaching load and course sheets
			authorized.GET("/me/load", h.Course.MyLoad)
			authorized.GET("/courses/:id/sheet", h.Grade.GetCourseSheet)

			grades := authorized.Group("/grades")
			{
				grades.PUT("", h.Grade.SetGrade)
				grades.POST("/mass-conclusion/preview", h.Grade.PreviewMassConclusion)
				grades.POST("/mass-conclusion", h.Grade.ApplyMassConclusion)
			}

			// homeroom
			tutor := authorized.Group("/tutor")
			{
				tutor.GET("/sheet", h.Tutor.GetTutorSheet)
				tutor.GET("/commitments", h.Tutor.ListCommitments)
				tutor.PUT("/behavior", h.Tutor.SetBehavior)
				tutor.PUT("/family", h.Tutor.SetFamilyEvaluation)
			}

			appreciations := authorized.Group("/appreciations")
			{
				appreciations.GET("", h.Appreciation.ListAppreciations)
				appreciations.GET("/sync", h.Appreciation.SyncStatus)
				appreciations.PUT("/draft", h.Appreciation.SaveDraft)
				appreciations.POST("/submit", h.Appreciation.Submit)
				// approval is gated by the service so a teacher gets the rol_sin_permiso no-op
				appreciations.PUT("/approval", h.Appreciation.SetApproval)
				appreciations.POST("/toggle", h.Appreciation.ToggleApproval)
				appreciations.POST("/improve", middleware.RateLimit(limiter, 20, time.Minute), h.Appreciation.ImproveText)
			}

			// completion and monitoring
			authorized.GET("/completion", h.Monitoring.Completion)
			monitoring := authorized.Group("/monitoring", middleware.RoleAuth(staff...))
			{
				monitoring.GET("/overview", h.Monitoring.Overview)
				monitoring.GET("/sections", h.Monitoring.ListSections)
				monitoring.GET("/sections/:id", h.Monitoring.GetSection)
				monitoring.GET("/students/:id", h.Monitoring.StudentAudit)
			}

			export := authorized.Group("/export", middleware.RoleAuth(staff...))
			{
				export.GET("/report-card/:student_id", h.Export.ReportCard)
				export.GET("/consolidated/:classroom_id", h.Export.ClassroomConsolidated)
			}

			areas := authorized.Group("/areas")
			{
				areas.GET("", h.Area.ListAreas)
				areas.PUT("/:id/active", middleware.RoleAuth(grading.RoleAdministrador), h.Area.SetActive)
			}
		}
	}

	return r
}
