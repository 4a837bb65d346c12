package model

import "time"

// User represents a backend account. The client only ever holds a read-only
// copy inside the session.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	DepartmentID string    `json:"departmentId,omitempty"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Roles.
const (
	RoleSuperAdmin         = "SUPER_ADMIN"
	RoleITStaff            = "IT_STAFF"
	RoleDepartmentInCharge = "DEPARTMENT_INCHARGE"
)

// RoleAtLeast checks if role meets or exceeds the minimum required role.
func RoleAtLeast(role, minimum string) bool {
	levels := map[string]int{
		RoleSuperAdmin:         3,
		RoleITStaff:            2,
		RoleDepartmentInCharge: 1,
	}
	return levels[role] >= levels[minimum]
}
