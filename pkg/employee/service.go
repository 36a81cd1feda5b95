package employee

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/simple-crm/pkg/config"
	"github.com/tendant/simple-crm/pkg/errors"
)

type EmployeeService struct {
	repo EmployeeRepository
	now  func() time.Time
}

func NewEmployeeService(repo EmployeeRepository) *EmployeeService {
	return &EmployeeService{
		repo: repo,
		now:  time.Now,
	}
}

func validationError(message string, errs config.ValidationErrors) error {
	if !errs.HasErrors() {
		return nil
	}
	e := errors.New(errors.ErrCodeValidationFailed, message)
	for _, ve := range errs {
		e = e.WithDetail(ve.Field, ve.Message)
	}
	return e
}

// ListEmployees returns matching employees sorted by name.
func (s *EmployeeService) ListEmployees(ctx context.Context, filter EmployeeFilter) ([]Employee, error) {
	all, err := s.repo.FindEmployees(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to find employees: %w", err)
	}
	out := make([]Employee, 0, len(all))
	for _, e := range all {
		if filter.match(e) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}

func (s *EmployeeService) GetEmployee(ctx context.Context, id uuid.UUID) (Employee, error) {
	return s.repo.GetEmployee(ctx, id)
}

// CreateEmployee adds an employee entered by hand.
func (s *EmployeeService) CreateEmployee(ctx context.Context, params CreateEmployeeParams) (Employee, error) {
	err := validationError("invalid employee", config.CollectErrors(
		config.RequireNonEmpty("name", strings.TrimSpace(params.Name)),
		config.RequireValidEmail("email", strings.TrimSpace(params.Email)),
		config.RequireNonEmpty("department", strings.TrimSpace(params.Department)),
		config.RequireNonEmpty("position", strings.TrimSpace(params.Position)),
	))
	if err != nil {
		return Employee{}, err
	}

	now := s.now()
	hireDate := params.HireDate
	if hireDate.IsZero() {
		hireDate = now
	}
	e, err := s.repo.CreateEmployee(ctx, Employee{
		Name:       strings.TrimSpace(params.Name),
		Email:      strings.TrimSpace(params.Email),
		Department: strings.TrimSpace(params.Department),
		Position:   strings.TrimSpace(params.Position),
		HireDate:   hireDate,
		Status:     StatusActive,
		Source:     SourceManual,
		CreatedAt:  now,
	})
	if err != nil {
		return Employee{}, err
	}
	slog.Info("Employee created", "employeeId", e.ID, "department", e.Department)
	return e, nil
}

// HireCandidate turns a candidate in the hired stage into an employee. A
// candidate can be hired once.
func (s *EmployeeService) HireCandidate(ctx context.Context, candidateID uuid.UUID) (Employee, error) {
	c, err := s.repo.GetCandidate(ctx, candidateID)
	if err != nil {
		return Employee{}, err
	}

	now := s.now()
	e, err := s.repo.HireCandidate(ctx, candidateID, Employee{
		Name:       c.Name,
		Email:      c.Email,
		Department: c.Department,
		Position:   c.Position,
		HireDate:   now,
		Status:     StatusActive,
		Source:     SourceCandidate,
		CreatedAt:  now,
	})
	if err != nil {
		slog.Warn("Hire refused", "candidateId", candidateID, "err", err)
		return Employee{}, err
	}
	slog.Info("Candidate hired", "candidateId", candidateID, "employeeId", e.ID)
	return e, nil
}

func (s *EmployeeService) SetStatus(ctx context.Context, id uuid.UUID, status Status) (Employee, error) {
	if _, err := ParseStatus(string(status)); err != nil {
		return Employee{}, err
	}
	e, err := s.repo.UpdateEmployeeStatus(ctx, id, status)
	if err != nil {
		return Employee{}, err
	}
	slog.Info("Employee status changed", "employeeId", id, "status", status)
	return e, nil
}

func (s *EmployeeService) DeleteEmployee(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteEmployee(ctx, id); err != nil {
		return err
	}
	slog.Info("Employee deleted", "employeeId", id)
	return nil
}

// ListCandidates returns candidates in pipeline order, then by name.
func (s *EmployeeService) ListCandidates(ctx context.Context, filter CandidateFilter) ([]Candidate, error) {
	all, err := s.repo.FindCandidates(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to find candidates: %w", err)
	}
	rank := make(map[Stage]int, len(Stages))
	for i, st := range Stages {
		rank[st] = i
	}

	out := make([]Candidate, 0, len(all))
	for _, c := range all {
		if filter.Stage == "" || c.Stage == filter.Stage {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if rank[out[i].Stage] != rank[out[j].Stage] {
			return rank[out[i].Stage] < rank[out[j].Stage]
		}
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}

func (s *EmployeeService) GetCandidate(ctx context.Context, id uuid.UUID) (Candidate, error) {
	return s.repo.GetCandidate(ctx, id)
}

// AddCandidate registers an applicant. An empty stage means applied.
func (s *EmployeeService) AddCandidate(ctx context.Context, params CreateCandidateParams) (Candidate, error) {
	err := validationError("invalid candidate", config.CollectErrors(
		config.RequireNonEmpty("name", strings.TrimSpace(params.Name)),
		config.RequireValidEmail("email", strings.TrimSpace(params.Email)),
		config.RequireNonEmpty("position", strings.TrimSpace(params.Position)),
	))
	if err != nil {
		return Candidate{}, err
	}
	stage := params.Stage
	if stage == "" {
		stage = StageApplied
	}
	if _, err := ParseStage(string(stage)); err != nil {
		return Candidate{}, err
	}

	return s.repo.CreateCandidate(ctx, Candidate{
		Name:       strings.TrimSpace(params.Name),
		Email:      strings.TrimSpace(params.Email),
		Position:   strings.TrimSpace(params.Position),
		Department: strings.TrimSpace(params.Department),
		Stage:      stage,
		AppliedAt:  s.now(),
	})
}

// AdvanceCandidate moves a candidate to stage. Candidates already turned
// into employees keep their stage.
func (s *EmployeeService) AdvanceCandidate(ctx context.Context, id uuid.UUID, stage Stage) (Candidate, error) {
	if _, err := ParseStage(string(stage)); err != nil {
		return Candidate{}, err
	}
	c, err := s.repo.UpdateCandidateStage(ctx, id, stage)
	if err != nil {
		return Candidate{}, err
	}
	slog.Info("Candidate stage changed", "candidateId", id, "stage", stage)
	return c, nil
}
