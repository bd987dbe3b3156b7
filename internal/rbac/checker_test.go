package rbac_test

import (
	"testing"

	"github.com/kambaz-edu/kambaz-server/internal/rbac"
)

func TestDefaultPolicy(t *testing.T) {
	c := rbac.NewChecker(nil)

	cases := []struct {
		role string
		perm string
		want bool
	}{
		{rbac.RoleStudent, "attempt:submit", true},
		{rbac.RoleStudent, "attempt:view-own", true},
		{rbac.RoleStudent, "attempt:view-all", false},
		{rbac.RoleStudent, "quiz:create", false},
		{rbac.RoleTA, "attempt:view-all", true},
		{rbac.RoleTA, "quiz:create", false},
		{rbac.RoleFaculty, "quiz:create", true},
		{rbac.RoleFaculty, "quiz:publish", true}, // via quiz:*
		{rbac.RoleFaculty, "users:delete", false},
		{rbac.RoleAdmin, "users:delete", true}, // via *
		{"UNKNOWN", "quiz:view", false},
		{"", "quiz:view", false},
	}
	for _, tc := range cases {
		if got := c.Has(tc.role, tc.perm); got != tc.want {
			t.Errorf("Has(%q, %q) = %v, want %v", tc.role, tc.perm, got, tc.want)
		}
	}
}

func TestAny(t *testing.T) {
	c := rbac.NewChecker(nil)
	if !c.Any(rbac.RoleStudent, "attempt:view-own", "attempt:view-all") {
		t.Error("Any should pass with one matching perm")
	}
	if c.Any(rbac.RoleStudent, "attempt:view-all", "users:delete") {
		t.Error("Any should fail with no matching perm")
	}
}
