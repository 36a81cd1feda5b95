package employee

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/simple-crm/pkg/errors"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusOnLeave  Status = "on_leave"
	StatusInactive Status = "inactive"
)

func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.TrimSpace(s)); st {
	case StatusActive, StatusOnLeave, StatusInactive:
		return st, nil
	}
	return "", errors.InvalidInput("status", "must be active, on_leave or inactive").WithDetail("status", s)
}

// Source records how an employee record came to exist.
type Source string

const (
	SourceManual    Source = "manual"
	SourceCandidate Source = "candidate"
)

type Employee struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Department  string     `json:"department"`
	Position    string     `json:"position"`
	HireDate    time.Time  `json:"hire_date"`
	Status      Status     `json:"status"`
	Source      Source     `json:"source"`
	CandidateID *uuid.UUID `json:"candidate_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Stage is a candidate's position in the hiring pipeline.
type Stage string

const (
	StageApplied   Stage = "applied"
	StageInterview Stage = "interview"
	StageOffer     Stage = "offer"
	StageHired     Stage = "hired"
	StageRejected  Stage = "rejected"
)

// Stages in pipeline order.
var Stages = []Stage{StageApplied, StageInterview, StageOffer, StageHired, StageRejected}

func ParseStage(s string) (Stage, error) {
	st := Stage(strings.TrimSpace(s))
	for _, known := range Stages {
		if st == known {
			return st, nil
		}
	}
	return "", errors.InvalidInput("stage", "unknown candidate stage").WithDetail("stage", s)
}

type Candidate struct {
	ID         uuid.UUID  `json:"id"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Position   string     `json:"position"`
	Department string     `json:"department"`
	Stage      Stage      `json:"stage"`
	AppliedAt  time.Time  `json:"applied_at"`
	EmployeeID *uuid.UUID `json:"employee_id,omitempty"`
}

// Hired reports whether an employee record was created from the candidate.
func (c Candidate) Hired() bool { return c.EmployeeID != nil }

type EmployeeFilter struct {
	Department string
	Status     Status
	Search     string
}

func (f EmployeeFilter) match(e Employee) bool {
	if f.Department != "" && !strings.EqualFold(e.Department, f.Department) {
		return false
	}
	if f.Status != "" && e.Status != f.Status {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		return strings.Contains(strings.ToLower(e.Name), q) ||
			strings.Contains(strings.ToLower(e.Email), q) ||
			strings.Contains(strings.ToLower(e.Position), q)
	}
	return true
}

type CandidateFilter struct {
	Stage Stage
}

type CreateEmployeeParams struct {
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Department string    `json:"department"`
	Position   string    `json:"position"`
	HireDate   time.Time `json:"hire_date"`
}

type CreateCandidateParams struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Position   string `json:"position"`
	Department string `json:"department"`
	Stage      Stage  `json:"stage"`
}
