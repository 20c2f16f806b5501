// internal/app/router.go
package app

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	auditHandler "rbadmin/internal/handlers/audit"
	authHandler "rbadmin/internal/handlers/auth"
	consoleHandler "rbadmin/internal/handlers/console"
	courseHandler "rbadmin/internal/handlers/courses"
	paymentHandler "rbadmin/internal/handlers/payments"
	settingsHandler "rbadmin/internal/handlers/settings"
	userHandler "rbadmin/internal/handlers/users"
	"rbadmin/internal/middleware"
	"rbadmin/internal/pkg/response"
	"rbadmin/internal/pkg/session"
)

type Handlers struct {
	AuthHandler     *authHandler.AuthHandler
	ConsoleHandler  *consoleHandler.ConsoleHandler
	UserHandler     *userHandler.UserHandler
	CourseHandler   *courseHandler.CourseHandler
	PaymentHandler  *paymentHandler.PaymentHandler
	SettingsHandler *settingsHandler.SettingsHandler
	AuditHandler    *auditHandler.AuditHandler
	AuthMiddleware  *middleware.AuthMiddleware
	Resolver        *session.Resolver
}

type RouterConfig struct {
	Guard           middleware.GuardConfig
	DefaultRedirect string
	CORSOrigins     []string
}

func SetupRouter(r *gin.Engine, logger *zap.Logger, cfg RouterConfig, h *Handlers) {
	r.Use(
		middleware.RecoveryMiddleware(logger),
		middleware.LoggingMiddleware(logger),
		middleware.CORSMiddleware(cfg.CORSOrigins),
	)

	// ==================== Health Check ====================
	// Registered before the guard is attached, so health checks never redirect.
	r.GET("/api/v1/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": "1.0.0"})
	})

	r.Use(
		h.AuthMiddleware.Bind(),
		middleware.RouteGuard(cfg.Guard, logger),
	)

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c, "route not found")
	})

	r.GET(cfg.Guard.FaviconPath, func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/", func(c *gin.Context) { c.Redirect(http.StatusFound, cfg.DefaultRedirect) })

	// ==================== Auth Pages ====================
	r.GET(cfg.Guard.LoginPath, h.AuthHandler.LoginPage)
	r.POST(cfg.Guard.LoginPath, h.AuthHandler.Login)
	r.POST("/logout", h.AuthHandler.Logout)
	r.GET(cfg.Guard.ForbiddenPath, h.AuthHandler.Forbidden)

	// ==================== Console Pages ====================
	r.GET(cfg.Guard.AdminPrefix, h.Resolver.Authenticated(), h.ConsoleHandler.Dashboard)
	pages := r.Group(cfg.Guard.AdminPrefix, h.Resolver.WithRole(session.RoleAdmin))
	{
		pages.GET("/users/:type", h.ConsoleHandler.Users)
		pages.GET("/courses", h.ConsoleHandler.Courses)
		pages.GET("/settings", h.ConsoleHandler.Settings)
	}

	// ==================== Console API (admin) ====================
	api := r.Group(cfg.Guard.AdminPrefix + "/api")
	api.Use(h.AuthMiddleware.AdminOnly()...)
	{
		api.GET("/me", h.AuthHandler.GetMe)
		api.GET("/audit", h.AuditHandler.ListEvents)
	}

	users := api.Group("/users")
	{
		users.GET("", h.UserHandler.ListUsers)
		users.POST("", h.UserHandler.CreateUser)
		users.GET("/:id", h.UserHandler.GetUser)
		users.PUT("/:id", h.UserHandler.UpdateUser)
		users.GET("/:id/balances", h.UserHandler.GetBalances)
	}

	courses := api.Group("/courses")
	{
		courses.GET("", h.CourseHandler.ListCourses)
		courses.POST("", h.CourseHandler.CreateCourse)
		courses.GET("/:id", h.CourseHandler.GetCourse)
		courses.PUT("/:id", h.CourseHandler.UpdateCourse)
		courses.DELETE("/:id", h.CourseHandler.DeleteCourse)
		courses.POST("/:id/enroll", h.CourseHandler.Enroll)
	}

	payments := api.Group("/payments")
	{
		payments.GET("", h.PaymentHandler.ListPayments)
		payments.POST("", h.PaymentHandler.CreatePayment)
	}

	settings := api.Group("/settings")
	{
		settings.GET("", h.SettingsHandler.GetSettings)
		settings.PUT("", h.SettingsHandler.UpdateSettings)
	}
}
