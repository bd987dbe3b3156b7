package http

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type Lesson struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type Module struct {
	ID          string   `json:"id"`
	Course      string   `json:"course"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Lessons     []Lesson `json:"lessons"`
}

// GET /api/courses/{courseID}/modules
func ListModulesHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := db.QueryContext(r.Context(),
			`SELECT id,course_id,name,description,lessons_json FROM modules WHERE course_id=$1 ORDER BY created_at`,
			chi.URLParam(r, "courseID"))
		if err != nil {
			writeError(w, http.StatusInternalServerError, "db error")
			return
		}
		defer rows.Close()
		out := []Module{}
		for rows.Next() {
			m, err := scanModule(rows)
			if err != nil {
				writeError(w, http.StatusInternalServerError, "db error")
				return
			}
			out = append(out, m)
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// POST /api/courses/{courseID}/modules
func CreateModuleHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var m Module
		if err := json.NewDecoder(r.Body).Decode(&m); err != nil || m.Name == "" {
			writeError(w, http.StatusBadRequest, "bad json")
			return
		}
		m.ID = uuid.NewString()
		m.Course = chi.URLParam(r, "courseID")
		ensureLessonIDs(m.Lessons)
		lj, err := json.Marshal(lessonsOrEmpty(m.Lessons))
		if err != nil {
			writeError(w, http.StatusInternalServerError, "encode error")
			return
		}
		_, err = db.ExecContext(r.Context(),
			`INSERT INTO modules (id,course_id,name,description,lessons_json,created_at) VALUES ($1,$2,$3,$4,$5,$6)`,
			m.ID, m.Course, m.Name, m.Description, string(lj), time.Now().Unix())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "db error")
			return
		}
		writeJSON(w, http.StatusOK, m)
	}
}

// PUT /api/modules/{moduleID}
func UpdateModuleHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		moduleID := chi.URLParam(r, "moduleID")
		row := db.QueryRowContext(r.Context(),
			`SELECT id,course_id,name,description,lessons_json FROM modules WHERE id=$1`, moduleID)
		existing, err := scanModule(row)
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "module not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "db error")
			return
		}
		var m Module
		if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
			writeError(w, http.StatusBadRequest, "bad json")
			return
		}
		m.ID = moduleID
		m.Course = existing.Course
		if m.Name == "" {
			m.Name = existing.Name
		}
		ensureLessonIDs(m.Lessons)
		lj, err := json.Marshal(lessonsOrEmpty(m.Lessons))
		if err != nil {
			writeError(w, http.StatusInternalServerError, "encode error")
			return
		}
		_, err = db.ExecContext(r.Context(),
			`UPDATE modules SET name=$1, description=$2, lessons_json=$3 WHERE id=$4`,
			m.Name, m.Description, string(lj), moduleID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "db error")
			return
		}
		writeJSON(w, http.StatusOK, m)
	}
}

// DELETE /api/modules/{moduleID}
func DeleteModuleHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := db.ExecContext(r.Context(), `DELETE FROM modules WHERE id=$1`, chi.URLParam(r, "moduleID"))
		if err != nil {
			writeError(w, http.StatusInternalServerError, "db error")
			return
		}
		if n, _ := res.RowsAffected(); n == 0 {
			writeError(w, http.StatusNotFound, "module not found")
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
	}
}

func scanModule(row rowScanner) (Module, error) {
	var m Module
	var lj string
	if err := row.Scan(&m.ID, &m.Course, &m.Name, &m.Description, &lj); err != nil {
		return Module{}, err
	}
	if err := json.Unmarshal([]byte(lj), &m.Lessons); err != nil {
		m.Lessons = []Lesson{}
	}
	return m, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func ensureLessonIDs(lessons []Lesson) {
	for i := range lessons {
		if lessons[i].ID == "" {
			lessons[i].ID = uuid.NewString()
		}
	}
}

func lessonsOrEmpty(lessons []Lesson) []Lesson {
	if lessons == nil {
		return []Lesson{}
	}
	return lessons
}
