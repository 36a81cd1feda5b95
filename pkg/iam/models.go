package iam

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/simple-crm/pkg/errors"
	"github.com/tendant/simple-crm/pkg/rbac"
)

// Status is the account state of a user.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// ParseStatus validates a status tag from outside the process.
func ParseStatus(s string) (Status, error) {
	switch Status(strings.TrimSpace(s)) {
	case StatusActive:
		return StatusActive, nil
	case StatusInactive:
		return StatusInactive, nil
	}
	return "", errors.InvalidInput("status", "must be active or inactive").WithDetail("status", s)
}

// Toggle returns the opposite status.
func (s Status) Toggle() Status {
	if s == StatusActive {
		return StatusInactive
	}
	return StatusActive
}

// User represents a user in the system
type User struct {
	ID             uuid.UUID `json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	LastModifiedAt time.Time `json:"last_modified_at"`
	CreatedBy      string    `json:"created_by,omitempty"`
	Email          string    `json:"email"`
	Name           string    `json:"name"`
	Phone          string    `json:"phone,omitempty"`
	Department     string    `json:"department,omitempty"`
	Role           rbac.Role `json:"role"`
	Status         Status    `json:"status"`
	Permissions    []string  `json:"permissions"`
}

func (u User) Active() bool { return u.Status == StatusActive }

// Actor returns the user as the subject of a guard check.
func (u User) Actor() rbac.Actor { return rbac.Actor{ID: u.ID, Role: u.Role} }

// Target returns the user as the object of a guard check.
func (u User) Target() rbac.Target { return rbac.Target{ID: u.ID, Role: u.Role} }

func (u User) clone() User {
	u.Permissions = append([]string(nil), u.Permissions...)
	return u
}

// UserFilter narrows FindUsers. Zero values match everything.
type UserFilter struct {
	Role   rbac.Role
	Status Status
	Search string
}

func (f UserFilter) match(u User) bool {
	if f.Role.Valid() && u.Role != f.Role {
		return false
	}
	if f.Status != "" && u.Status != f.Status {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		return strings.Contains(strings.ToLower(u.Name), q) ||
			strings.Contains(strings.ToLower(u.Email), q)
	}
	return true
}

// CreateUserParams contains parameters for creating a new user
type CreateUserParams struct {
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	Phone      string    `json:"phone,omitempty"`
	Department string    `json:"department,omitempty"`
	Role       rbac.Role `json:"role"`
	Status     Status    `json:"status,omitempty"`
}

// UserRow is a directory entry annotated with what the viewing actor may do
// to it.
type UserRow struct {
	User
	CanChangeRole bool `json:"can_change_role"`
	CanSetStatus  bool `json:"can_set_status"`
	CanDelete     bool `json:"can_delete"`
}
