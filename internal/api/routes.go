package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

const readTimeout = 10 * time.Second

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(securityHeadersMiddleware)
	r.NotFound(s.handleNotFound)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Route("/api", func(r chi.Router) {
		r.Route("/challenges", func(r chi.Router) {
			r.With(timeoutMiddleware(readTimeout)).Get("/", s.handleListChallenges)
			r.Post("/", s.handleImportChallenge)
			r.With(rateLimitMiddleware(s.verifyLimiter)).Post("/generate", s.handleGenerateChallenge)
			r.With(timeoutMiddleware(readTimeout)).Get("/{id}", s.handleGetChallenge)
			r.With(rateLimitMiddleware(s.verifyLimiter)).Post("/{id}/verify", s.handleVerify)
		})

		r.Route("/xp", func(r chi.Router) {
			r.Post("/flashcard", s.handleFlashcardXP)
			r.Post("/flashcard/deduct", s.handleFlashcardDeduct)
			r.Post("/lesson", s.handleLessonXP)
			r.Post("/course", s.handleCourseXP)
			r.Post("/perfect", s.handlePerfectXP)
		})

		r.Route("/users/{userID}", func(r chi.Router) {
			r.Use(timeoutMiddleware(readTimeout))
			r.Get("/progress", s.handleProgress)
			r.Get("/level", s.handleLevel)
			r.Get("/achievements", s.handleAchievements)
			r.Post("/reset", s.handleReset)
		})
	})
	return r
}
