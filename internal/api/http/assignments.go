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

type Assignment struct {
	ID            string  `json:"id"`
	Course        string  `json:"course"`
	Title         string  `json:"title"`
	Description   string  `json:"description,omitempty"`
	Points        float64 `json:"points"`
	DueDate       string  `json:"dueDate,omitempty"`
	AvailableDate string  `json:"availableDate,omitempty"`
	UntilDate     string  `json:"untilDate,omitempty"`
}

const assignmentColumns = `id,course_id,title,description,points,due_date,available_date,until_date`

// GET /api/courses/{courseID}/assignments
func ListAssignmentsHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := db.QueryContext(r.Context(),
			`SELECT `+assignmentColumns+` FROM assignments WHERE course_id=$1 ORDER BY created_at`,
			chi.URLParam(r, "courseID"))
		if err != nil {
			writeError(w, http.StatusInternalServerError, "db error")
			return
		}
		defer rows.Close()
		out := []Assignment{}
		for rows.Next() {
			var a Assignment
			if err := rows.Scan(&a.ID, &a.Course, &a.Title, &a.Description, &a.Points,
				&a.DueDate, &a.AvailableDate, &a.UntilDate); err != nil {
				writeError(w, http.StatusInternalServerError, "db error")
				return
			}
			out = append(out, a)
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// POST /api/courses/{courseID}/assignments
func CreateAssignmentHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var a Assignment
		if err := json.NewDecoder(r.Body).Decode(&a); err != nil || a.Title == "" {
			writeError(w, http.StatusBadRequest, "bad json")
			return
		}
		a.ID = uuid.NewString()
		a.Course = chi.URLParam(r, "courseID")
		if a.Points == 0 {
			a.Points = 100
		}
		_, err := db.ExecContext(r.Context(),
			`INSERT INTO assignments (id,course_id,title,description,points,due_date,available_date,until_date,created_at)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
			a.ID, a.Course, a.Title, a.Description, a.Points, a.DueDate, a.AvailableDate, a.UntilDate,
			time.Now().Unix())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "db error")
			return
		}
		writeJSON(w, http.StatusOK, a)
	}
}

// GET /api/assignments/{assignmentID}
func GetAssignmentHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, err := findAssignment(r, db, chi.URLParam(r, "assignmentID"))
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "assignment not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "db error")
			return
		}
		writeJSON(w, http.StatusOK, a)
	}
}

// PUT /api/assignments/{assignmentID}
func UpdateAssignmentHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assignmentID := chi.URLParam(r, "assignmentID")
		existing, err := findAssignment(r, db, assignmentID)
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "assignment not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "db error")
			return
		}
		var a Assignment
		if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
			writeError(w, http.StatusBadRequest, "bad json")
			return
		}
		a.ID = assignmentID
		a.Course = existing.Course
		if a.Title == "" {
			a.Title = existing.Title
		}
		_, err = db.ExecContext(r.Context(),
			`UPDATE assignments SET title=$1, description=$2, points=$3, due_date=$4, available_date=$5, until_date=$6 WHERE id=$7`,
			a.Title, a.Description, a.Points, a.DueDate, a.AvailableDate, a.UntilDate, assignmentID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "db error")
			return
		}
		writeJSON(w, http.StatusOK, a)
	}
}

// DELETE /api/assignments/{assignmentID}
func DeleteAssignmentHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := db.ExecContext(r.Context(),
			`DELETE FROM assignments WHERE id=$1`, chi.URLParam(r, "assignmentID"))
		if err != nil {
			writeError(w, http.StatusInternalServerError, "db error")
			return
		}
		if n, _ := res.RowsAffected(); n == 0 {
			writeError(w, http.StatusNotFound, "assignment not found")
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
	}
}

func findAssignment(r *http.Request, db *sql.DB, id string) (Assignment, error) {
	var a Assignment
	err := db.QueryRowContext(r.Context(),
		`SELECT `+assignmentColumns+` FROM assignments WHERE id=$1`, id).
		Scan(&a.ID, &a.Course, &a.Title, &a.Description, &a.Points, &a.DueDate, &a.AvailableDate, &a.UntilDate)
	return a, err
}
