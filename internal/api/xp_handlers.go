package api

import (
	"net/http"

	"github.com/vytor/codetrail/internal/errors"
	"github.com/vytor/codetrail/internal/services"
)

type flashcardXPRequest struct {
	UserID      string `json:"user_id"`
	FlashcardID string `json:"flashcard_id"`
	XPAmount    *int   `json:"xp_amount"`
}

type lessonXPRequest struct {
	UserID   string `json:"user_id"`
	CourseID string `json:"course_id"`
	LessonID string `json:"lesson_id"`
	XPAmount *int   `json:"xp_amount"`
}

type courseXPRequest struct {
	UserID   string `json:"user_id"`
	CourseID string `json:"course_id"`
	XPAmount *int   `json:"xp_amount"`
}

type perfectXPRequest struct {
	UserID      string `json:"user_id"`
	ChallengeID string `json:"challenge_id"`
	XPAmount    *int   `json:"xp_amount"`
}

func (s *Server) handleFlashcardXP(w http.ResponseWriter, r *http.Request) {
	var req flashcardXPRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	res, err := s.ActivityService.FlashcardLearned(r.Context(), req.UserID, req.FlashcardID, xpOr(req.XPAmount, services.DefaultFlashcardXP))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, res)
}

func (s *Server) handleFlashcardDeduct(w http.ResponseWriter, r *http.Request) {
	var req flashcardXPRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	res, err := s.ActivityService.FlashcardForgotten(r.Context(), req.UserID, req.FlashcardID, xpOr(req.XPAmount, services.DefaultFlashcardXP))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, res)
}

func (s *Server) handleLessonXP(w http.ResponseWriter, r *http.Request) {
	var req lessonXPRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	if req.XPAmount == nil {
		handleError(w, r, errors.NewValidationError("xp_amount", "is required"))
		return
	}
	res, err := s.ActivityService.LessonCompleted(r.Context(), req.UserID, req.CourseID, req.LessonID, *req.XPAmount)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, res)
}

func (s *Server) handleCourseXP(w http.ResponseWriter, r *http.Request) {
	var req courseXPRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	if req.XPAmount == nil {
		handleError(w, r, errors.NewValidationError("xp_amount", "is required"))
		return
	}
	res, err := s.ActivityService.CourseCompleted(r.Context(), req.UserID, req.CourseID, *req.XPAmount)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, res)
}

func (s *Server) handlePerfectXP(w http.ResponseWriter, r *http.Request) {
	var req perfectXPRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	res, err := s.ActivityService.PerfectSolution(r.Context(), req.UserID, req.ChallengeID, xpOr(req.XPAmount, services.DefaultPerfectSolutionXP))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, res)
}
