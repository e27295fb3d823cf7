package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/looplearn/loop-api/internal/api"
	apiMiddleware "github.com/looplearn/loop-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all
// routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))

	authHandler := api.NewAuthHandler(app.userService, app.jwtService, app.logger)
	topicHandler := api.NewTopicHandler(app.topicService, app.logger)
	evaluationHandler := api.NewEvaluationHandler(app.evaluationService, app.logger)
	feedHandler := api.NewFeedHandler(app.feedService, app.logger)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	r.Route("/api", func(r chi.Router) {
		// Authentication endpoints (public)
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			// Topic catalog and subscriptions
			r.Get("/topics", topicHandler.ListTopics)
			r.Get("/topics/{id}", topicHandler.GetTopic)
			r.Post("/subscriptions", topicHandler.Subscribe)
			r.Delete("/subscriptions/{id}", topicHandler.Unsubscribe)
			r.Get("/subscriptions", topicHandler.ListSubscriptions)

			// Evaluation cycles and progress
			r.Post("/subtopics/{id}/cycles", evaluationHandler.SubmitCycle)
			r.Get("/progress", evaluationHandler.GetProgress)

			// Daily feed
			r.Get("/feed", feedHandler.GetDailyFeed)
			r.Post("/feed/complete", feedHandler.CompleteFeed)
			r.Get("/feed/history", feedHandler.History)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
