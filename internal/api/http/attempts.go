package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kambaz-edu/kambaz-server/internal/quiz"
	"github.com/kambaz-edu/kambaz-server/internal/rbac"
)

// POST /api/quizzes/{quizID}/attempts
// Success responds {attempt, score, total}; eligibility failures respond
// 404 / 403 / 422 with no attempt created.
func SubmitAttemptHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Answers []quiz.Answer `json:"answers"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad json")
			return
		}
		attempt, err := svc.Submit(r.Context(), chi.URLParam(r, "quizID"), viewerFromContext(r), req.Answers)
		if err != nil {
			quizError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"attempt": attempt,
			"score":   attempt.Score,
			"total":   attempt.TotalPoints,
		})
	}
}

// GET /api/quizzes/{quizID}/attempts
// Viewers with attempt:view-all see every attempt; everyone else only their own.
func ListAttemptsHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quizID := chi.URLParam(r, "quizID")
		viewer := viewerFromContext(r)
		var (
			attempts []quiz.Attempt
			err      error
		)
		if rbac.Can(viewer.Role, "attempt:view-all") {
			attempts, err = svc.Attempts(r.Context(), quizID)
		} else {
			attempts, err = svc.AttemptsForUser(r.Context(), quizID, viewer.ID)
		}
		if err != nil {
			quizError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, attempts)
	}
}

// GET /api/quizzes/{quizID}/attempts/{attemptID}
func GetAttemptHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		attempt, err := svc.GetAttempt(r.Context(), chi.URLParam(r, "attemptID"))
		if err != nil {
			quizError(w, err)
			return
		}
		if attempt.Quiz != chi.URLParam(r, "quizID") {
			writeError(w, http.StatusNotFound, "attempt not found")
			return
		}
		viewer := viewerFromContext(r)
		if !rbac.Can(viewer.Role, "attempt:view-all") && attempt.User != viewer.ID {
			writeError(w, http.StatusForbidden, "forbidden")
			return
		}
		writeJSON(w, http.StatusOK, attempt)
	}
}
