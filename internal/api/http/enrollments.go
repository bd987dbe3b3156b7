package http

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kambaz-edu/kambaz-server/internal/rbac"
)

type Enrollment struct {
	ID     string `json:"id"`
	User   string `json:"user"`
	Course string `json:"course"`
}

// POST /api/courses/{courseID}/enrollments
// Body may name a user; students can only enroll themselves.
func EnrollHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courseID := chi.URLParam(r, "courseID")
		sub := rbac.SubjectFromContext(r.Context())
		role := rbac.RoleFromContext(r.Context())

		var req struct {
			UserID string `json:"userId"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.UserID == "" {
			req.UserID = sub
		}
		if req.UserID != sub && !rbac.Can(role, "enrollment:manage") {
			writeError(w, http.StatusForbidden, "forbidden")
			return
		}

		e := Enrollment{ID: req.UserID + "-" + courseID, User: req.UserID, Course: courseID}
		_, err := db.ExecContext(r.Context(),
			`INSERT INTO enrollments (id,user_id,course_id,enrolled_at) VALUES ($1,$2,$3,$4)
			 ON CONFLICT (user_id,course_id) DO NOTHING`,
			e.ID, e.User, e.Course, time.Now().Unix())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "db error")
			return
		}
		writeJSON(w, http.StatusOK, e)
	}
}

// DELETE /api/courses/{courseID}/enrollments/{userID}
func UnenrollHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courseID := chi.URLParam(r, "courseID")
		userID := chi.URLParam(r, "userID")
		sub := rbac.SubjectFromContext(r.Context())
		role := rbac.RoleFromContext(r.Context())
		if userID != sub && !rbac.Can(role, "enrollment:manage") {
			writeError(w, http.StatusForbidden, "forbidden")
			return
		}
		_, err := db.ExecContext(r.Context(),
			`DELETE FROM enrollments WHERE user_id=$1 AND course_id=$2`, userID, courseID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "db error")
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
	}
}

// GET /api/courses/{courseID}/users
func ListUsersForCourseHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := db.QueryContext(r.Context(),
			`SELECT u.id,u.username,u.first_name,u.last_name,u.email,u.role
			   FROM users u JOIN enrollments e ON e.user_id=u.id
			  WHERE e.course_id=$1 ORDER BY u.username`,
			chi.URLParam(r, "courseID"))
		if err != nil {
			writeError(w, http.StatusInternalServerError, "db error")
			return
		}
		defer rows.Close()
		out := []User{}
		for rows.Next() {
			var u User
			if err := rows.Scan(&u.ID, &u.Username, &u.FirstName, &u.LastName, &u.Email, &u.Role); err != nil {
				writeError(w, http.StatusInternalServerError, "db error")
				return
			}
			out = append(out, u)
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// GET /api/users/{userID}/courses
// "current" resolves to the caller. Students can only list their own courses.
func ListCoursesForUserHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "userID")
		sub := rbac.SubjectFromContext(r.Context())
		role := rbac.RoleFromContext(r.Context())
		if userID == "current" {
			userID = sub
		}
		if userID != sub && !rbac.Can(role, "enrollment:manage") {
			writeError(w, http.StatusForbidden, "forbidden")
			return
		}
		rows, err := db.QueryContext(r.Context(),
			`SELECT `+prefixedCourseColumns+`
			   FROM courses c JOIN enrollments e ON e.course_id=c.id
			  WHERE e.user_id=$1 ORDER BY c.created_at DESC`, userID)
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

const prefixedCourseColumns = `c.id,c.name,c.number,c.description,c.start_date,c.end_date,c.department,c.credits,c.created_by`
