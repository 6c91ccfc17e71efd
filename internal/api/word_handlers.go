package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/mwrona/vocaflash/internal/logger"
	"github.com/mwrona/vocaflash/internal/models"
)

type wordRequest struct {
	Word          string   `json:"word"`
	Level         string   `json:"level"`
	PartOfSpeech  []string `json:"part_of_speech"`
	Pronunciation string   `json:"pronunciation"`
	Meanings      []string `json:"meanings"`
}

func (req wordRequest) toModel() models.Word {
	word := models.Word{
		Word:          req.Word,
		Level:         req.Level,
		PartOfSpeech:  req.PartOfSpeech,
		Pronunciation: req.Pronunciation,
	}
	for _, m := range req.Meanings {
		word.Meanings = append(word.Meanings, models.Meaning{Meaning: m})
	}
	return word
}

func (s *Server) handleListWords(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	filter := models.WordFilter{
		Level:  r.URL.Query().Get("level"),
		Search: r.URL.Query().Get("search"),
	}
	if limit, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && limit > 0 {
		filter.Limit = limit
	}
	if offset, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && offset > 0 {
		filter.Offset = offset
	}

	log.Debug("listing words: level=%s, search=%s", filter.Level, filter.Search)
	list, err := s.Words.ListWords(r.Context(), filter)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, list)
}

func (s *Server) handleGetWord(w http.ResponseWriter, r *http.Request) {
	word, err := s.Words.GetWord(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, word)
}

func (s *Server) handleCreateWord(w http.ResponseWriter, r *http.Request) {
	var req wordRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	word, err := s.Words.CreateWord(r.Context(), req.toModel())
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, word)
}

func (s *Server) handleUpdateWord(w http.ResponseWriter, r *http.Request) {
	var req wordRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	word := req.toModel()
	word.ID = chi.URLParam(r, "id")
	updated, err := s.Words.UpdateWord(r.Context(), word)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, updated)
}

func (s *Server) handleDeleteWord(w http.ResponseWriter, r *http.Request) {
	if err := s.Words.DeleteWord(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusNoContent, nil)
}
