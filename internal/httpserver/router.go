package httpserver

import (
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"quizforge-backend/internal/handlers"
	"quizforge-backend/internal/metrics"
	"quizforge-backend/internal/middleware"
)

func SetupRouter(
	r *chi.Mux,
	baseLogger *zap.Logger,
	questions *handlers.QuestionsHandler,
	admin *handlers.AdminHandler,
	cacheStatus *handlers.CacheStatusHandler,
) {

	r.Use(metrics.Middleware)

	// base middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)

	r.Use(middleware.LoggingContext(baseLogger))
	r.Use(middleware.Recoverer())                  // panic recovery
	r.Use(middleware.Timeout(15 * time.Second))    // request timeout
	r.Use(middleware.MaxBodySize(1 * 1024 * 1024)) // 1 MiB max body (ingest batches)

	// request-serving surface
	r.Route("/v1", func(r chi.Router) {
		r.Get("/topics/{topicID}/questions", questions.GetQuestions)
	})

	// producer + operator surface
	r.Route("/internal", func(r chi.Router) {
		r.Post("/pregen/topics/{topicID}/users/{userID}", admin.IngestBatch)
		r.Delete("/pregen/topics/{topicID}/users/{userID}", admin.Invalidate)
		r.Post("/status/topics/{topicID}/users/{userID}", admin.UpdateStatus)
		r.Get("/cache/status", cacheStatus.CacheStatus)
	})

	// health check
	r.Get("/healthz", cacheStatus.Healthz)

	r.Handle("/metrics", metrics.Handler())
}
