package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(securityHeadersMiddleware)

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.authMiddleware)

		r.Route("/words", func(r chi.Router) {
			r.Get("/", s.handleListWords)
			r.Get("/{id}", s.handleGetWord)
			r.Group(func(r chi.Router) {
				r.Use(requireAdmin)
				r.Post("/", s.handleCreateWord)
				r.Put("/{id}", s.handleUpdateWord)
				r.Delete("/{id}", s.handleDeleteWord)
			})
		})

		r.Route("/repetitions", func(r chi.Router) {
			r.Get("/", s.handleListRepetitions)
			r.Get("/stats", s.handleRepetitionStats)
			r.Get("/{id}", s.handleGetRepetition)
			r.Delete("/{id}", s.handleDeleteRepetition)
		})

		r.Route("/flashcards/sessions", func(r chi.Router) {
			r.Post("/start", s.handleStartFlashcardSession)
			r.Post("/finish", s.handleFinishFlashcardSession)
			r.Get("/", s.handleListFlashcardSessions)
			r.Get("/{id}", s.handleGetFlashcardSession)
		})
		r.Post("/flashcards/items/{id}/score", s.handleScoreFlashcardItem)

		r.Route("/quizzes/sessions", func(r chi.Router) {
			r.Post("/start", s.handleStartQuizSession)
			r.Post("/finish", s.handleFinishQuizSession)
			r.Get("/", s.handleListQuizSessions)
			r.Get("/{id}", s.handleGetQuizSession)
			r.Post("/packages/next", s.handleGenerateNextPackage)
		})
		r.Post("/quizzes/packages/{id}/submit", s.handleSubmitPackage)

		r.Route("/users/me", func(r chi.Router) {
			r.Get("/", s.handleGetMe)
			r.Put("/settings", s.handleUpdateSettings)
		})
	})

	return r
}
