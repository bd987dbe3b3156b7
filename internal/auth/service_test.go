package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kambaz-edu/kambaz-server/internal/auth"
	"github.com/kambaz-edu/kambaz-server/internal/rbac"
)

func TestIssueAndParse(t *testing.T) {
	svc := auth.NewAuthService("test-secret", time.Hour)
	tok, err := svc.IssueJWT("u1", rbac.RoleFaculty)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	c, err := svc.Parse(tok)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c.Sub != "u1" || c.Role != rbac.RoleFaculty {
		t.Errorf("claims: %+v", c)
	}

	other := auth.NewAuthService("different-secret", time.Hour)
	if _, err := other.Parse(tok); err == nil {
		t.Error("token signed with another secret must not parse")
	}
}

func TestParseRejectsOtherSigningMethods(t *testing.T) {
	svc := auth.NewAuthService("test-secret", time.Hour)

	tok := jwt.NewWithClaims(jwt.SigningMethodHS512, &auth.Claims{Sub: "u1", Role: rbac.RoleStudent})
	signed, err := tok.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := svc.Parse(signed); err == nil {
		t.Error("HS512 token must not parse even with the right secret")
	}
}

func TestJWTMiddleware(t *testing.T) {
	svc := auth.NewAuthService("test-secret", time.Hour)
	var gotSub, gotRole string
	h := auth.JWTMiddleware(svc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSub = rbac.SubjectFromContext(r.Context())
		gotRole = rbac.RoleFromContext(r.Context())
	}))

	// no token
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("no token: got %d, want 401", w.Code)
	}

	// garbage token
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer junk")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("bad token: got %d, want 401", w.Code)
	}

	// valid token reaches the handler with identity in context
	tok, err := svc.IssueJWT("u1", rbac.RoleStudent)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("valid token: got %d, want 200", w.Code)
	}
	if gotSub != "u1" || gotRole != rbac.RoleStudent {
		t.Errorf("context identity: sub=%q role=%q", gotSub, gotRole)
	}
}
