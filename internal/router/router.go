package router

import (
	"time"

	"github.com/aissms/reeval-backend/internal/config"
	"github.com/aissms/reeval-backend/internal/handler"
	"github.com/aissms/reeval-backend/internal/middleware"
	"github.com/aissms/reeval-backend/internal/response"
	"github.com/aissms/reeval-backend/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth          *handler.AuthHandler
	StudentPortal *handler.StudentPortalHandler
	Evaluator     *handler.EvaluatorHandler
	Institute     *handler.InstituteHandler
	WS            *handler.WSHandler
	System        *handler.SystemHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
// authLimiter guards the public login routes and may be nil.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
	authLimiter gin.HandlerFunc,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	router.Use(middleware.Brotli())

	router.GET("/health", handlers.System.Health)

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/v1/auth")
	{
		login := auth.Group("")
		if authLimiter != nil {
			login.Use(authLimiter)
		}
		login.POST("/student/verify", handlers.Auth.StudentVerify)
		login.POST("/evaluator/login", handlers.Auth.EvaluatorLogin)
		login.POST("/institute/login", handlers.Auth.InstituteLogin)

		auth.POST("/logout",
			middleware.RequireRole(authService, service.RoleStudent, service.RoleEvaluator, service.RoleInstitute),
			middleware.CheckActiveSession(authService),
			handlers.Auth.Logout,
		)
	}

	// ─── 2. Student Group ──────────────────────────────────────────────
	studentAPI := router.Group("/api/v1/student")
	studentAPI.Use(
		middleware.RequireRole(authService, service.RoleStudent),
		middleware.CheckActiveSession(authService),
	)
	{
		studentAPI.GET("/requests", handlers.StudentPortal.ListRequests)
		studentAPI.POST("/requests", handlers.StudentPortal.CreateRequest)
		studentAPI.POST("/dashboard", handlers.StudentPortal.Dashboard)
	}

	// ─── 3. Evaluator Group ────────────────────────────────────────────
	evaluatorAPI := router.Group("/api/v1/evaluator")
	evaluatorAPI.Use(
		middleware.RequireRole(authService, service.RoleEvaluator),
		middleware.CheckActiveSession(authService),
	)
	{
		evaluatorAPI.GET("/dashboard", handlers.Evaluator.Dashboard)
		evaluatorAPI.GET("/subjects", handlers.Evaluator.ListSubjects)
		evaluatorAPI.GET("/requests", handlers.Evaluator.ListRequests)
		evaluatorAPI.PATCH("/requests/:id", handlers.Evaluator.ReviewRequest)
	}

	// ─── 4. Institute Group ────────────────────────────────────────────
	instituteAPI := router.Group("/api/v1/institute")
	instituteAPI.Use(
		middleware.RequireRole(authService, service.RoleInstitute),
		middleware.CheckActiveSession(authService),
	)
	{
		instituteAPI.GET("/requests", handlers.Institute.ListRequests)
		instituteAPI.PUT("/requests/urgency", handlers.Institute.BulkUpdateUrgency)
		instituteAPI.PUT("/requests/:id/urgency", handlers.Institute.UpdateUrgency)
		instituteAPI.POST("/requests/reconcile", handlers.Institute.Reconcile)
		instituteAPI.GET("/tickets", handlers.Institute.Tickets)
		instituteAPI.GET("/students", handlers.Institute.ListStudents)
		instituteAPI.GET("/evaluators", handlers.Institute.ListEvaluators)
	}

	// ─── 5. WebSocket Group (Institute WS Auth) ────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(
		middleware.RequireWSRole(authService, service.RoleInstitute),
		middleware.CheckActiveSession(authService),
	)
	{
		ws.GET("/institute/requests/stream", handlers.WS.RequestEventStream)
	}

	return router
}
