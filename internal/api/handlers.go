package api

import (
	"database/sql"
	"encoding/json"
	"net/http"

	"github.com/mwrona/vocaflash/internal/auth"
	"github.com/mwrona/vocaflash/internal/errors"
	"github.com/mwrona/vocaflash/internal/logger"
	"github.com/mwrona/vocaflash/internal/services"
)

type Server struct {
	DB          *sql.DB
	Verifier    *auth.Verifier
	Users       services.UserService
	Words       services.WordService
	Repetitions services.RepetitionService
	Flashcards  services.FlashcardSessionService
	Quizzes     services.QuizSessionService
}

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.FromContext(r.Context()).Error("failed to encode response: %v", err)
	}
}

// decodeJSON decodes the request body into dst, rejecting unknown fields.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errors.NewBadRequestError("invalid request body: " + err.Error())
	}
	return nil
}
