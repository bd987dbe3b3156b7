package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kambaz-edu/kambaz-server/internal/quiz"
	"github.com/kambaz-edu/kambaz-server/internal/rbac"
)

func viewerFromContext(r *http.Request) quiz.Identity {
	return quiz.Identity{
		ID:   rbac.SubjectFromContext(r.Context()),
		Role: rbac.RoleFromContext(r.Context()),
	}
}

// GET /api/courses/{courseID}/quizzes
func ListQuizzesHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courseID := chi.URLParam(r, "courseID")
		quizzes, err := svc.ListForCourse(r.Context(), courseID, viewerFromContext(r))
		if err != nil {
			quizError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, quizzes)
	}
}

// POST /api/courses/{courseID}/quizzes
func CreateQuizHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var q quiz.Quiz
		if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
			writeError(w, http.StatusBadRequest, "bad json")
			return
		}
		q.Course = chi.URLParam(r, "courseID")
		created, err := svc.Create(r.Context(), q, rbac.SubjectFromContext(r.Context()))
		if err != nil {
			quizError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, created)
	}
}

// GET /api/quizzes/{quizID}
// Unpublished quizzes are visible to faculty only.
func GetQuizHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := svc.Get(r.Context(), chi.URLParam(r, "quizID"))
		if err != nil {
			quizError(w, err)
			return
		}
		role := rbac.RoleFromContext(r.Context())
		if !q.Published && role != rbac.RoleFaculty && role != rbac.RoleAdmin {
			writeError(w, http.StatusForbidden, "Quiz not published")
			return
		}
		writeJSON(w, http.StatusOK, q)
	}
}

// PUT /api/quizzes/{quizID}
func UpdateQuizHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var updates quiz.Quiz
		if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
			writeError(w, http.StatusBadRequest, "bad json")
			return
		}
		updated, err := svc.Update(r.Context(), chi.URLParam(r, "quizID"), updates)
		if err != nil {
			quizError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

// DELETE /api/quizzes/{quizID}
func DeleteQuizHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Delete(r.Context(), chi.URLParam(r, "quizID")); err != nil {
			quizError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
	}
}

// POST /api/quizzes/{quizID}/publish
func PublishQuizHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := svc.Publish(r.Context(), chi.URLParam(r, "quizID"), rbac.SubjectFromContext(r.Context()))
		if err != nil {
			quizError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, q)
	}
}

// POST /api/quizzes/{quizID}/unpublish
func UnpublishQuizHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := svc.Unpublish(r.Context(), chi.URLParam(r, "quizID"), rbac.SubjectFromContext(r.Context()))
		if err != nil {
			quizError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, q)
	}
}
