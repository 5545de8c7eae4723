package domain

import "fmt"

type Role string

const (
	RoleViewer Role = "viewer"
	RoleEditor Role = "editor"
	RoleAdmin  Role = "admin"
)

func (r Role) rank() int {
	switch r {
	case RoleAdmin:
		return 3
	case RoleEditor:
		return 2
	case RoleViewer:
		return 1
	}
	return 0
}

// User is one entry of users.json.
type User struct {
	Email        string `json:"email"`
	Name         string `json:"name"`
	Role         Role   `json:"role"`
	PasswordHash string `json:"passwordHash"`
}

// Session carries the authenticated admin for the lifetime of one request or CLI run.
type Session struct {
	Email string
	Name  string
	Role  Role
}

// Require returns ErrAuth for a nil session and ErrPermission when the role is too low.
func (s *Session) Require(min Role) error {
	if s == nil {
		return ErrAuth
	}
	if s.Role.rank() < min.rank() {
		return fmt.Errorf("%w: %s role required, have %s", ErrPermission, min, s.Role)
	}
	return nil
}
