package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	api "github.com/kambaz-edu/kambaz-server/internal/api/http"
	"github.com/kambaz-edu/kambaz-server/internal/quiz"
	"github.com/kambaz-edu/kambaz-server/internal/rbac"
)

func newRouter(svc *quiz.Service) *chi.Mux {
	r := chi.NewRouter()
	r.Get("/api/quizzes/{quizID}", api.GetQuizHandler(svc))
	r.Post("/api/quizzes/{quizID}/attempts", api.SubmitAttemptHandler(svc))
	r.Get("/api/quizzes/{quizID}/attempts", api.ListAttemptsHandler(svc))
	r.Get("/api/quizzes/{quizID}/attempts/{attemptID}", api.GetAttemptHandler(svc))
	return r
}

func seedService(t *testing.T, quizzes ...quiz.Quiz) *quiz.Service {
	t.Helper()
	store := quiz.NewInMemoryStore()
	for _, q := range quizzes {
		if _, err := store.PutQuiz(context.Background(), q); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	return quiz.NewService(store)
}

func do(r http.Handler, method, path, body, sub, role string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	ctx := rbac.WithSubject(req.Context(), sub)
	ctx = rbac.WithRole(ctx, role)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req.WithContext(ctx))
	return w
}

func sampleQuiz(published bool, settings quiz.Settings) quiz.Quiz {
	return quiz.Quiz{
		ID:        "q1",
		Course:    "c1",
		Title:     "Sample",
		Published: published,
		Settings:  settings,
		Questions: []quiz.Question{{
			ID:     "ques1",
			Type:   quiz.TypeMCQ,
			Points: 1,
			Choices: []quiz.Choice{
				{ID: "c-right", IsCorrect: true},
				{ID: "c-wrong"},
			},
		}},
		CreatedAt: time.Now(),
	}
}

func TestSubmitAttemptSuccess(t *testing.T) {
	r := newRouter(seedService(t, sampleQuiz(true, quiz.Settings{MultipleAttempts: false})))

	w := do(r, "POST", "/api/quizzes/q1/attempts",
		`{"answers":[{"questionId":"ques1","answer":"c-right"}]}`, "u1", rbac.RoleStudent)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", w.Code, w.Body.String())
	}
	var resp struct {
		Attempt quiz.Attempt `json:"attempt"`
		Score   float64      `json:"score"`
		Total   float64      `json:"total"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Score != 1 || resp.Total != 1 {
		t.Errorf("score/total: got %v/%v", resp.Score, resp.Total)
	}
	if resp.Attempt.ID == "" || resp.Attempt.AttemptNumber != 1 {
		t.Errorf("attempt: %+v", resp.Attempt)
	}
}

func TestSubmitAttemptStatusMapping(t *testing.T) {
	svc := seedService(t, sampleQuiz(false, quiz.Settings{MultipleAttempts: false}))
	r := newRouter(svc)

	if w := do(r, "POST", "/api/quizzes/missing/attempts", `{"answers":[]}`, "u1", rbac.RoleStudent); w.Code != http.StatusNotFound {
		t.Errorf("missing quiz: got %d, want 404", w.Code)
	}
	if w := do(r, "POST", "/api/quizzes/q1/attempts", `{"answers":[]}`, "u1", rbac.RoleStudent); w.Code != http.StatusForbidden {
		t.Errorf("unpublished for student: got %d, want 403", w.Code)
	}
	// faculty passes the publish gate
	if w := do(r, "POST", "/api/quizzes/q1/attempts", `{"answers":[]}`, "f1", rbac.RoleFaculty); w.Code != http.StatusOK {
		t.Errorf("unpublished for faculty: got %d, want 200", w.Code)
	}
	if w := do(r, "POST", "/api/quizzes/q1/attempts", `{"answers":[]}`, "f1", rbac.RoleFaculty); w.Code != http.StatusUnprocessableEntity {
		t.Errorf("second attempt: got %d, want 422", w.Code)
	}
	if w := do(r, "POST", "/api/quizzes/q1/attempts", `not-json`, "u1", rbac.RoleStudent); w.Code != http.StatusBadRequest {
		t.Errorf("bad json: got %d, want 400", w.Code)
	}
}

func TestGetQuizPublishGate(t *testing.T) {
	r := newRouter(seedService(t, sampleQuiz(false, quiz.DefaultSettings())))

	if w := do(r, "GET", "/api/quizzes/q1", "", "u1", rbac.RoleStudent); w.Code != http.StatusForbidden {
		t.Errorf("student: got %d, want 403", w.Code)
	}
	if w := do(r, "GET", "/api/quizzes/q1", "", "f1", rbac.RoleFaculty); w.Code != http.StatusOK {
		t.Errorf("faculty: got %d, want 200", w.Code)
	}
	if w := do(r, "GET", "/api/quizzes/nope", "", "f1", rbac.RoleFaculty); w.Code != http.StatusNotFound {
		t.Errorf("missing: got %d, want 404", w.Code)
	}
}

func TestAttemptVisibility(t *testing.T) {
	svc := seedService(t, sampleQuiz(true, quiz.Settings{MultipleAttempts: true}))
	r := newRouter(svc)

	w := do(r, "POST", "/api/quizzes/q1/attempts", `{"answers":[]}`, "u1", rbac.RoleStudent)
	if w.Code != http.StatusOK {
		t.Fatalf("submit: %d", w.Code)
	}
	var resp struct {
		Attempt quiz.Attempt `json:"attempt"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if w := do(r, "POST", "/api/quizzes/q1/attempts", `{"answers":[]}`, "u2", rbac.RoleStudent); w.Code != http.StatusOK {
		t.Fatalf("submit u2: %d", w.Code)
	}

	// students list only their own attempts
	w = do(r, "GET", "/api/quizzes/q1/attempts", "", "u1", rbac.RoleStudent)
	var mine []quiz.Attempt
	if err := json.Unmarshal(w.Body.Bytes(), &mine); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(mine) != 1 || mine[0].User != "u1" {
		t.Errorf("student list: %+v", mine)
	}

	// faculty sees everything
	w = do(r, "GET", "/api/quizzes/q1/attempts", "", "f1", rbac.RoleFaculty)
	var all []quiz.Attempt
	if err := json.Unmarshal(w.Body.Bytes(), &all); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("faculty list: got %d, want 2", len(all))
	}

	// a student cannot read someone else's attempt
	path := "/api/quizzes/q1/attempts/" + resp.Attempt.ID
	if w := do(r, "GET", path, "", "u2", rbac.RoleStudent); w.Code != http.StatusForbidden {
		t.Errorf("other student: got %d, want 403", w.Code)
	}
	if w := do(r, "GET", path, "", "u1", rbac.RoleStudent); w.Code != http.StatusOK {
		t.Errorf("owner: got %d, want 200", w.Code)
	}
	if w := do(r, "GET", path, "", "f1", rbac.RoleFaculty); w.Code != http.StatusOK {
		t.Errorf("faculty: got %d, want 200", w.Code)
	}
	if w := do(r, "GET", "/api/quizzes/q1/attempts/ghost", "", "f1", rbac.RoleFaculty); w.Code != http.StatusNotFound {
		t.Errorf("missing attempt: got %d, want 404", w.Code)
	}
}
