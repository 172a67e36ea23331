package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	p, err := s.ProgressionService.Get(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, p)
}

func (s *Server) handleLevel(w http.ResponseWriter, r *http.Request) {
	info, err := s.ProgressionService.LevelInfo(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, info)
}

func (s *Server) handleAchievements(w http.ResponseWriter, r *http.Request) {
	o, err := s.ProgressionService.Achievements(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, o)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	p, err := s.ProgressionService.Reset(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, p)
}
