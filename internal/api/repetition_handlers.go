package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mwrona/vocaflash/internal/auth"
)

func (s *Server) handleListRepetitions(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	reps, err := s.Repetitions.ListRepetitions(r.Context(), user.ID, r.URL.Query().Get("word_id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, reps)
}

func (s *Server) handleGetRepetition(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	rep, err := s.Repetitions.GetRepetition(r.Context(), chi.URLParam(r, "id"), user.ID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, rep)
}

func (s *Server) handleDeleteRepetition(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	if err := s.Repetitions.DeleteRepetition(r.Context(), chi.URLParam(r, "id"), user.ID); err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusNoContent, nil)
}

func (s *Server) handleRepetitionStats(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	stats, err := s.Repetitions.GetStats(r.Context(), user.ID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, stats)
}
