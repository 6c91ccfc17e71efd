package api

import (
	"net/http"

	"github.com/mwrona/vocaflash/internal/auth"
)

func (s *Server) handleGetMe(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	me, err := s.Users.GetUser(r.Context(), user.ID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, me)
}

type settingsRequest struct {
	DailyNewLimit    int    `json:"daily_new_limit"`
	DailyReviewLimit int    `json:"daily_review_limit"`
	LearningStrategy string `json:"learning_strategy"`
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	var req settingsRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	updated, err := s.Users.UpdateSettings(r.Context(), user.ID, req.DailyNewLimit, req.DailyReviewLimit, req.LearningStrategy)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, updated)
}
