package router

import (
	"net/http"
	"time"

	"github.com/akadimia/academy-backend/internal/config"
	"github.com/akadimia/academy-backend/internal/handler"
	"github.com/akadimia/academy-backend/internal/middleware"
	"github.com/akadimia/academy-backend/internal/model"
	"github.com/akadimia/academy-backend/internal/response"
	"github.com/akadimia/academy-backend/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth       *handler.AuthHandler
	Apply      *handler.ApplyHandler
	Exam       *handler.ExamHandler
	Review     *handler.ReviewHandler
	Question   *handler.QuestionHandler
	User       *handler.UserHandler
	Messaging  *handler.MessagingHandler
	Evaluation *handler.EvaluationHandler
	Audit      *handler.AuditHandler
	WS         *handler.WSHandler
	System     *handler.SystemHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
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
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID", "X-Client-Context", "X-Exam-Token"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Apply brotli middleware globally.
	router.Use(middleware.Brotli())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiters: one for credential endpoints, one for the intake flow.
	authLimiter := middleware.NewRateLimiter(30, time.Minute)
	applyLimiter := middleware.NewRateLimiter(60, time.Minute)

	// ─── 1. Auth Group (Staff) ─────────────────────────────────────────
	auth := router.Group("/api/v1/auth")
	auth.Use(authLimiter.Middleware())
	{
		auth.POST("/login", handlers.Auth.Login)
		auth.POST("/logout", middleware.RequireStaffJWT(authService), handlers.Auth.Logout)
		auth.GET("/me", middleware.RequireStaffJWT(authService), handlers.Auth.Me)
	}

	// ─── 2. Apply Group (Public Intake) ────────────────────────────────
	apply := router.Group("/api/v1/apply")
	apply.Use(applyLimiter.Middleware())
	{
		apply.GET("/status", middleware.CacheControl(15), handlers.Apply.Status)
		apply.GET("/discord/login", handlers.Apply.DiscordLogin)
		apply.GET("/discord/callback", handlers.Apply.DiscordCallback)

		// Authenticated applicant routes
		apply.POST("", middleware.RequireApplicantJWT(authService), handlers.Apply.Submit)
		apply.GET("/me", middleware.RequireApplicantJWT(authService), handlers.Apply.MyApplication)
	}

	// ─── 3. Test Group (Applicant JWT) ─────────────────────────────────
	test := router.Group("/api/v1/test")
	test.Use(middleware.RequireApplicantJWT(authService))
	{
		test.POST("/start", handlers.Exam.Start)
		test.GET("/session/:token", handlers.Exam.View)
		test.POST("/session/:token/answer", handlers.Exam.Answer)

		// Resume routes: the token travels in the X-Exam-Token header.
		test.GET("/session", handlers.Exam.View)
		test.POST("/session/answer", handlers.Exam.Answer)
	}

	// ─── 4. Staff Group (Staff JWT + Rank Gates) ───────────────────────
	staff := router.Group("/api/v1")
	staff.Use(middleware.RequireStaffJWT(authService))
	{
		// Candidate review (everyone above cadet)
		review := staff.Group("/review")
		review.Use(middleware.RequireRank(model.Rank.CanReviewApplications))
		{
			review.GET("/candidates", handlers.Review.ListCandidates)
			review.GET("/candidates/:id", handlers.Review.GetCandidate)
			review.POST("/candidates/:id/action", handlers.Review.Act)
			review.POST("/global", middleware.RequireRank(model.Rank.HasDashboardAccess), handlers.Review.GlobalControl)
		}

		// Question bank (command staff)
		questions := staff.Group("/questions")
		questions.Use(middleware.RequireRank(model.Rank.HasDashboardAccess))
		{
			questions.GET("", handlers.Question.List)
			questions.POST("", handlers.Question.Create)
			questions.DELETE("/:id", handlers.Question.Delete)
		}

		// Staff account management
		users := staff.Group("/users")
		{
			users.GET("/ranks", handlers.User.Ranks)
			users.GET("", middleware.RequireRank(model.Rank.HasDashboardAccess), handlers.User.List)
			users.POST("", middleware.RequireRank(model.Rank.CanAddUsers), handlers.User.Create)
			users.PUT("/:id", middleware.RequireRank(model.Rank.CanAddUsers), handlers.User.Update)
			users.DELETE("/:id", middleware.RequireRank(model.Rank.CanAddUsers), handlers.User.Delete)
		}

		// Chat and notifications (all staff)
		staff.GET("/messages/unread", handlers.Messaging.UnreadCounts)
		staff.GET("/messages/:user_id", handlers.Messaging.Conversation)
		staff.POST("/messages/:user_id", handlers.Messaging.Send)
		staff.GET("/notifications", handlers.Messaging.Notifications)
		staff.POST("/notifications/:id/read", handlers.Messaging.MarkNotificationRead)

		// Assignments and evaluations
		assignments := staff.Group("/assignments")
		{
			assignments.GET("", handlers.Evaluation.ListAssignments)
			assignments.POST("", middleware.RequireRank(model.Rank.CanManageAssignments), handlers.Evaluation.CreateAssignment)
			assignments.DELETE("/:id", middleware.RequireRank(model.Rank.CanManageAssignments), handlers.Evaluation.DeleteAssignment)
		}
		staff.GET("/evaluations", handlers.Evaluation.ListEvaluations)
		staff.POST("/evaluations/:cadet_id", handlers.Evaluation.CreateEvaluation)

		// Audit log (command staff)
		staff.GET("/audit", middleware.RequireRank(model.Rank.HasDashboardAccess), handlers.Audit.List)

		// System monitoring (dev only)
		staff.GET("/system/metrics", middleware.RequireMinRank(model.RankPoliceChief), handlers.System.SystemMetricsSSE)
	}

	// ─── 5. WebSocket Group (Staff WS Auth) ────────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireStaffWSAuth(authService))
	{
		ws.GET("/chat/:user_id", handlers.WS.ChatStream)
	}

	return router
}
