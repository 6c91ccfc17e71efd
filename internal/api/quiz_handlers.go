package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mwrona/vocaflash/internal/auth"
	"github.com/mwrona/vocaflash/internal/services"
)

func (s *Server) handleStartQuizSession(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	session, err := s.Quizzes.StartSession(r.Context(), user.ID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, session)
}

func (s *Server) handleFinishQuizSession(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	session, err := s.Quizzes.FinishSession(r.Context(), user.ID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, session)
}

func (s *Server) handleListQuizSessions(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	sessions, err := s.Quizzes.ListSessions(r.Context(), user.ID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, sessions)
}

func (s *Server) handleGetQuizSession(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	session, err := s.Quizzes.GetSession(r.Context(), chi.URLParam(r, "id"), user.ID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, session)
}

func (s *Server) handleGenerateNextPackage(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	pkg, err := s.Quizzes.GenerateNextPackage(r.Context(), user.ID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, pkg)
}

type submitPackageRequest struct {
	Answers []services.Answer `json:"answers"`
}

func (s *Server) handleSubmitPackage(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	var req submitPackageRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	result, err := s.Quizzes.SubmitPackage(r.Context(), user.ID, chi.URLParam(r, "id"), req.Answers)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, result)
}
