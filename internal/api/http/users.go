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
	"golang.org/x/crypto/bcrypt"

	"github.com/kambaz-edu/kambaz-server/internal/auth"
	"github.com/kambaz-edu/kambaz-server/internal/rbac"
)

type User struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Role      string `json:"role"`
}

type credentials struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Role      string `json:"role"`
}

func validRole(role string) bool {
	switch role {
	case rbac.RoleStudent, rbac.RoleFaculty, rbac.RoleTA, rbac.RoleAdmin:
		return true
	}
	return false
}

// POST /api/users/signup
func SignupHandler(db *sql.DB, authSvc *auth.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req credentials
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad json")
			return
		}
		req.Username = strings.TrimSpace(req.Username)
		if req.Username == "" || req.Password == "" {
			writeError(w, http.StatusBadRequest, "username and password required")
			return
		}
		if req.Role == "" {
			req.Role = rbac.RoleStudent
		}
		if !validRole(req.Role) || req.Role == rbac.RoleAdmin {
			writeError(w, http.StatusBadRequest, "invalid role")
			return
		}

		var exists int
		err := db.QueryRowContext(r.Context(), `SELECT 1 FROM users WHERE username=$1`, req.Username).Scan(&exists)
		if err == nil {
			writeError(w, http.StatusBadRequest, "Username already taken")
			return
		}
		if !errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusInternalServerError, "db error")
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "hash error")
			return
		}
		u := User{
			ID:        uuid.NewString(),
			Username:  req.Username,
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Email:     req.Email,
			Role:      req.Role,
		}
		_, err = db.ExecContext(r.Context(),
			`INSERT INTO users (id,username,password_hash,first_name,last_name,email,role,created_at)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			u.ID, u.Username, string(hash), u.FirstName, u.LastName, u.Email, u.Role, time.Now().Unix())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "db error")
			return
		}
		token, err := authSvc.IssueJWT(u.ID, u.Role)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "issue token")
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"user": u, "access_token": token})
	}
}

// POST /api/users/signin
func SigninHandler(db *sql.DB, authSvc *auth.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req credentials
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad json")
			return
		}
		var u User
		var hash string
		err := db.QueryRowContext(r.Context(),
			`SELECT id,username,password_hash,first_name,last_name,email,role FROM users WHERE username=$1`,
			req.Username).Scan(&u.ID, &u.Username, &hash, &u.FirstName, &u.LastName, &u.Email, &u.Role)
		if errors.Is(err, sql.ErrNoRows) || (err == nil &&
			bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)) != nil) {
			writeError(w, http.StatusUnauthorized, "Unable to login. Try again later.")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "db error")
			return
		}
		token, err := authSvc.IssueJWT(u.ID, u.Role)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "issue token")
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"user": u, "access_token": token})
	}
}

// POST /api/users/signout
// Tokens are stateless; the client discards its copy.
func SignoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"signedOut": true})
	}
}

// GET /api/users/profile
func ProfileHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := findUser(r, db, rbac.SubjectFromContext(r.Context()))
		if err != nil {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeJSON(w, http.StatusOK, u)
	}
}

// GET /api/users?role=STUDENT
func ListUsersHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		role := r.URL.Query().Get("role")
		var rows *sql.Rows
		var err error
		if role == "" {
			rows, err = db.QueryContext(r.Context(),
				`SELECT id,username,first_name,last_name,email,role FROM users ORDER BY username`)
		} else {
			rows, err = db.QueryContext(r.Context(),
				`SELECT id,username,first_name,last_name,email,role FROM users WHERE role=$1 ORDER BY username`, role)
		}
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

// GET /api/users/{userID}
func GetUserHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := findUser(r, db, chi.URLParam(r, "userID"))
		if err != nil {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeJSON(w, http.StatusOK, u)
	}
}

// PUT /api/users/{userID}
// Admins can update anyone; everyone else only themselves, and never their role.
func UpdateUserHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "userID")
		sub := rbac.SubjectFromContext(r.Context())
		role := rbac.RoleFromContext(r.Context())
		isAdmin := role == rbac.RoleAdmin
		if !isAdmin && sub != userID {
			writeError(w, http.StatusForbidden, "forbidden")
			return
		}

		var req credentials
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad json")
			return
		}
		existing, err := findUser(r, db, userID)
		if err != nil {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		if req.FirstName != "" {
			existing.FirstName = req.FirstName
		}
		if req.LastName != "" {
			existing.LastName = req.LastName
		}
		if req.Email != "" {
			existing.Email = req.Email
		}
		if req.Role != "" && isAdmin {
			if !validRole(req.Role) {
				writeError(w, http.StatusBadRequest, "invalid role")
				return
			}
			existing.Role = req.Role
		}
		_, err = db.ExecContext(r.Context(),
			`UPDATE users SET first_name=$1, last_name=$2, email=$3, role=$4 WHERE id=$5`,
			existing.FirstName, existing.LastName, existing.Email, existing.Role, existing.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "db error")
			return
		}
		if req.Password != "" {
			hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
			if err != nil {
				writeError(w, http.StatusInternalServerError, "hash error")
				return
			}
			if _, err := db.ExecContext(r.Context(),
				`UPDATE users SET password_hash=$1 WHERE id=$2`, string(hash), existing.ID); err != nil {
				writeError(w, http.StatusInternalServerError, "db error")
				return
			}
		}
		writeJSON(w, http.StatusOK, existing)
	}
}

// DELETE /api/users/{userID}
func DeleteUserHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := db.ExecContext(r.Context(), `DELETE FROM users WHERE id=$1`, chi.URLParam(r, "userID"))
		if err != nil {
			writeError(w, http.StatusInternalServerError, "db error")
			return
		}
		if n, _ := res.RowsAffected(); n == 0 {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
	}
}

func findUser(r *http.Request, db *sql.DB, id string) (User, error) {
	var u User
	err := db.QueryRowContext(r.Context(),
		`SELECT id,username,first_name,last_name,email,role FROM users WHERE id=$1`,
		id).Scan(&u.ID, &u.Username, &u.FirstName, &u.LastName, &u.Email, &u.Role)
	return u, err
}
