package models

import "time"

type UserRole string

const (
	UserRoleAdmin    UserRole = "administrador"
	UserRoleEmployee UserRole = "empleado"
	UserRoleVisitor  UserRole = "visitante"
)

// UserRoles lists the roles in the order the user form offers them.
var UserRoles = []UserRole{UserRoleAdmin, UserRoleEmployee, UserRoleVisitor}

func (r UserRole) Valid() bool {
	switch r {
	case UserRoleAdmin, UserRoleEmployee, UserRoleVisitor:
		return true
	}
	return false
}

func (r UserRole) Label() string {
	switch r {
	case UserRoleAdmin:
		return "Administrador"
	case UserRoleEmployee:
		return "Empleado"
	case UserRoleVisitor:
		return "Visitante"
	}
	return string(r)
}

// Profile is the row written to the backend when a user is created. It is
// never read back or cached by the console.
type Profile struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	Phone       string    `json:"phone"`
	Role        UserRole  `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
}
