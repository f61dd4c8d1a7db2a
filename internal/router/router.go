package router

import (
	"context"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/theoryexam-backend/internal/config"
	"github.com/stemsi/theoryexam-backend/internal/handler"
	"github.com/stemsi/theoryexam-backend/internal/middleware"
	"github.com/stemsi/theoryexam-backend/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Section  *handler.SectionHandler
	Question *handler.QuestionHandler
	Exam     *handler.ExamHandler
	Attempt  *handler.AttemptHandler
	Health   *handler.HealthHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
// ctx bounds background work owned by the router (rate-limiter sweeping).
func SetupRouter(ctx context.Context, handlers *Handlers, cfg *config.Config, log zerolog.Logger) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.Brotli())

	router.GET("/health", handlers.Health.Health)

	api := router.Group("/api/v1")

	// ─── Sections (read-only catalogue) ────────────────────────────────
	sections := api.Group("/sections")
	sections.Use(middleware.CacheControl(60))
	{
		sections.GET("", handlers.Section.List)
		sections.GET("/:section_id", handlers.Section.Get)
		sections.GET("/:section_id/statistics", handlers.Section.Statistics)
	}

	// ─── Questions with answer keys (result review) ────────────────────
	questions := api.Group("/questions")
	questions.Use(middleware.CacheControl(60))
	{
		questions.GET("", handlers.Question.List)
		questions.GET("/:question_id", handlers.Question.Get)
	}

	// ─── Exam generation ───────────────────────────────────────────────
	exams := api.Group("/exams")
	exams.Use(middleware.NoStore())
	{
		exams.GET("/full", handlers.Exam.GetFullExam)
		exams.GET("/section", handlers.Exam.GetSectionExam)
	}

	// ─── Attempts ──────────────────────────────────────────────────────
	// Creation and submission are limited per client IP.
	writeLimit := func(c *gin.Context) { c.Next() }
	if cfg.RateLimit > 0 {
		writeLimit = middleware.NewRateLimiter(ctx, cfg.RateLimit, time.Minute).Middleware()
	}

	attempts := api.Group("/attempts")
	attempts.Use(middleware.NoStore())
	{
		attempts.GET("", handlers.Attempt.List)
		attempts.GET("/statistics", handlers.Attempt.Statistics)
		attempts.GET("/:id", handlers.Attempt.Get)
		attempts.POST("", writeLimit, handlers.Attempt.Create)
		attempts.POST("/:id/submit", writeLimit, handlers.Attempt.Submit)
	}

	return router
}
