package domain

import (
	"strings"
	"time"
)

// Role is the closed set of identities the portal confines users to.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleTeacher Role = "TEACHER"
	RoleStudent Role = "STUDENT"
)

// Roles lists every role in display order.
var Roles = []Role{RoleAdmin, RoleTeacher, RoleStudent}

// ParseRole matches s against the known roles, ignoring case and surrounding space.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleTeacher:
		return RoleTeacher, nil
	case RoleStudent:
		return RoleStudent, nil
	}
	return "", ErrUnknownRole
}

// Segment is the lower-case path segment owned by the role ("admin", "teacher", "student").
func (r Role) Segment() string {
	return strings.ToLower(string(r))
}

// Root is the console path a role is confined to.
func (r Role) Root() string {
	return "/" + r.Segment()
}

// User models an account as returned by the backend.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// FullName joins first and last name the way every table shows it.
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// UserInput is the payload for creating or updating a user from the admin console.
type UserInput struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      Role   `json:"role"`
}

// RegisterInput is the payload for self-registration.
type RegisterInput struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      Role   `json:"role"`
}

// AuthResponse is the backend's answer to a successful login.
type AuthResponse struct {
	AccessToken string `json:"accessToken"`
	User        User   `json:"user"`
}
