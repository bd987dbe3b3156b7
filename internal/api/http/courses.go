package http

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kambaz-edu/kambaz-server/internal/rbac"
)

type Course struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Number      string `json:"number,omitempty"`
	Description string `json:"description,omitempty"`
	StartDate   string `json:"startDate,omitempty"`
	EndDate     string `json:"endDate,omitempty"`
	Department  string `json:"department,omitempty"`
	Credits     int    `json:"credits,omitempty"`
	CreatedBy   string `json:"createdBy,omitempty"`
}

const courseColumns = `id,name,number,description,start_date,end_date,department,credits,created_by`

// GET /api/courses
func ListCoursesHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := db.QueryContext(r.Context(),
			`SELECT `+courseColumns+` FROM courses ORDER BY created_at DESC`)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "db error")
			return
		}
		defer rows.Close()
		out, err := collectCourses(rows)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "db error")
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// POST /api/courses
// The creator is enrolled in the new course.
func CreateCourseHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var c Course
		if err := json.NewDecoder(r.Body).Decode(&c); err != nil || strings.TrimSpace(c.Name) == "" {
			writeError(w, http.StatusBadRequest, "bad json")
			return
		}
		c.ID = uuid.NewString()
		c.CreatedBy = rbac.SubjectFromContext(r.Context())
		_, err := db.ExecContext(r.Context(),
			`INSERT INTO courses (id,name,number,description,start_date,end_date,department,credits,created_by,created_at)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
			c.ID, c.Name, c.Number, c.Description, c.StartDate, c.EndDate, c.Department, c.Credits,
			c.CreatedBy, time.Now().Unix())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "db error")
			return
		}
		if c.CreatedBy != "" {
			if _, err := db.ExecContext(r.Context(),
				`INSERT INTO enrollments (id,user_id,course_id,enrolled_at) VALUES ($1,$2,$3,$4)
				 ON CONFLICT (user_id,course_id) DO NOTHING`,
				c.CreatedBy+"-"+c.ID, c.CreatedBy, c.ID, time.Now().Unix()); err != nil {
				writeError(w, http.StatusInternalServerError, "db error")
				return
			}
		}
		writeJSON(w, http.StatusOK, c)
	}
}

// GET /api/courses/{courseID}
func GetCourseHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := findCourse(r, db, chi.URLParam(r, "courseID"))
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "course not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "db error")
			return
		}
		writeJSON(w, http.StatusOK, c)
	}
}

// PUT /api/courses/{courseID}
func UpdateCourseHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courseID := chi.URLParam(r, "courseID")
		existing, err := findCourse(r, db, courseID)
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "course not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "db error")
			return
		}
		var c Course
		if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
			writeError(w, http.StatusBadRequest, "bad json")
			return
		}
		c.ID = courseID
		c.CreatedBy = existing.CreatedBy
		if c.Name == "" {
			c.Name = existing.Name
		}
		_, err = db.ExecContext(r.Context(),
			`UPDATE courses SET name=$1, number=$2, description=$3, start_date=$4, end_date=$5, department=$6, credits=$7 WHERE id=$8`,
			c.Name, c.Number, c.Description, c.StartDate, c.EndDate, c.Department, c.Credits, courseID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "db error")
			return
		}
		writeJSON(w, http.StatusOK, c)
	}
}

// DELETE /api/courses/{courseID}
// Enrollments, modules and assignments cascade; quizzes are removed explicitly.
func DeleteCourseHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courseID := chi.URLParam(r, "courseID")
		res, err := db.ExecContext(r.Context(), `DELETE FROM courses WHERE id=$1`, courseID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "db error")
			return
		}
		if n, _ := res.RowsAffected(); n == 0 {
			writeError(w, http.StatusNotFound, "course not found")
			return
		}
		if _, err := db.ExecContext(r.Context(), `DELETE FROM quizzes WHERE course_id=$1`, courseID); err != nil {
			writeError(w, http.StatusInternalServerError, "db error")
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
	}
}

func findCourse(r *http.Request, db *sql.DB, id string) (Course, error) {
	var c Course
	var createdBy sql.NullString
	err := db.QueryRowContext(r.Context(),
		`SELECT `+courseColumns+` FROM courses WHERE id=$1`, id).
		Scan(&c.ID, &c.Name, &c.Number, &c.Description, &c.StartDate, &c.EndDate,
			&c.Department, &c.Credits, &createdBy)
	c.CreatedBy = createdBy.String
	return c, err
}

func collectCourses(rows *sql.Rows) ([]Course, error) {
	out := []Course{}
	for rows.Next() {
		var c Course
		var createdBy sql.NullString
		if err := rows.Scan(&c.ID, &c.Name, &c.Number, &c.Description, &c.StartDate, &c.EndDate,
			&c.Department, &c.Credits, &createdBy); err != nil {
			return nil, err
		}
		c.CreatedBy = createdBy.String
		out = append(out, c)
	}
	return out, rows.Err()
}
