package rbac

// Kambaz roles as stored on user records.
const (
	RoleStudent = "STUDENT"
	RoleFaculty = "FACULTY"
	RoleTA      = "TA"
	RoleAdmin   = "ADMIN"
)

// Simple default policy. Expand as needed.
var RolePermissions = map[string][]string{
	RoleStudent: {
		"course:view",
		"module:view",
		"assignment:view",
		"quiz:view",
		"attempt:submit",
		"attempt:view-own",
		"enrollment:self",
		"user:update-own",
	},
	RoleTA: {
		"course:view",
		"module:view",
		"assignment:view",
		"quiz:view",
		"attempt:view-all",
		"enrollment:self",
		"user:update-own",
	},
	RoleFaculty: {
		"course:*",
		"module:*",
		"assignment:*",
		"quiz:*",
		"attempt:submit",
		"attempt:view-all",
		"enrollment:manage",
		"enrollment:self",
		"users:list",
		"user:update-own",
	},
	RoleAdmin: {
		"*", // everything
	},
}
