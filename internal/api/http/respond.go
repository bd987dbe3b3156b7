package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kambaz-edu/kambaz-server/internal/quiz"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// quizError maps the evaluator's taxonomy onto status codes:
// missing quiz 404, unpublished 403, attempt cap 422, anything else 500.
func quizError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, quiz.ErrQuizNotFound):
		writeError(w, http.StatusNotFound, "quiz not found")
	case errors.Is(err, quiz.ErrAttemptNotFound):
		writeError(w, http.StatusNotFound, "attempt not found")
	case errors.Is(err, quiz.ErrNotPublished):
		writeError(w, http.StatusForbidden, "Quiz not published")
	case errors.Is(err, quiz.ErrAttemptLimit):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
