package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/vytor/codetrail/internal/logger"
	"github.com/vytor/codetrail/internal/models"
)

type verifyRequest struct {
	UserID string `json:"user_id"`
	Code   string `json:"code"`
	Method string `json:"method"`
}

type generateRequest struct {
	Difficulty string `json:"difficulty"`
	Topic      string `json:"topic"`
	Language   string `json:"language"`
}

type challengeListResponse struct {
	Challenges []models.Challenge `json:"challenges"`
	Total      int                `json:"total"`
	Limit      int                `json:"limit"`
	Offset     int                `json:"offset"`
}

func (s *Server) handleListChallenges(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, err := queryInt(r, "limit", 50)
	if err != nil {
		handleError(w, r, err)
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		handleError(w, r, err)
		return
	}

	filter := models.ChallengeFilter{
		Topic:      strings.TrimSpace(q.Get("topic")),
		Difficulty: strings.ToLower(strings.TrimSpace(q.Get("difficulty"))),
		Language:   strings.TrimSpace(q.Get("language")),
		Limit:      limit,
		Offset:     offset,
	}
	challenges, total, err := s.ChallengeService.ListChallenges(r.Context(), filter)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if challenges == nil {
		challenges = []models.Challenge{}
	}
	writeJSON(w, r, http.StatusOK, challengeListResponse{
		Challenges: challenges,
		Total:      total,
		Limit:      limit,
		Offset:     offset,
	})
}

func (s *Server) handleGetChallenge(w http.ResponseWriter, r *http.Request) {
	c, err := s.ChallengeService.GetChallenge(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, c)
}

func (s *Server) handleImportChallenge(w http.ResponseWriter, r *http.Request) {
	var c models.Challenge
	if err := decodeJSON(w, r, &c); err != nil {
		handleError(w, r, err)
		return
	}
	stored, err := s.ChallengeService.ImportChallenge(r.Context(), c)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, stored)
}

func (s *Server) handleGenerateChallenge(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	c, err := s.ChallengeService.Generate(r.Context(), req.Difficulty, req.Topic, req.Language)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, c)
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var req verifyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	id := chi.URLParam(r, "id")
	log.Debug("verifying submission: challenge_id=%s method=%s bytes=%d", id, req.Method, len(req.Code))
	res, err := s.ChallengeService.Verify(r.Context(), models.Submission{
		ChallengeID: id,
		UserID:      req.UserID,
		Code:        req.Code,
		Method:      req.Method,
	})
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, res)
}
