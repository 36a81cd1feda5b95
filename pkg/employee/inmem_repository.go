package employee

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/tendant/simple-crm/pkg/errors"
)

var (
	ErrEmployeeNotFound  = errors.New(errors.ErrCodeNotFound, "employee not found")
	ErrCandidateNotFound = errors.New(errors.ErrCodeNotFound, "candidate not found")
	ErrEmailTaken        = errors.New(errors.ErrCodeAlreadyExists, "employee email already in use")
	ErrAlreadyHired      = errors.New(errors.ErrCodeConflict, "candidate already hired")
	ErrNotHiredStage     = errors.New(errors.ErrCodeConflict, "candidate is not in the hired stage")
)

type EmployeeRepository interface {
	CreateEmployee(ctx context.Context, e Employee) (Employee, error)
	GetEmployee(ctx context.Context, id uuid.UUID) (Employee, error)
	FindEmployees(ctx context.Context) ([]Employee, error)
	UpdateEmployeeStatus(ctx context.Context, id uuid.UUID, status Status) (Employee, error)
	DeleteEmployee(ctx context.Context, id uuid.UUID) error

	CreateCandidate(ctx context.Context, c Candidate) (Candidate, error)
	GetCandidate(ctx context.Context, id uuid.UUID) (Candidate, error)
	FindCandidates(ctx context.Context) ([]Candidate, error)
	UpdateCandidateStage(ctx context.Context, id uuid.UUID, stage Stage) (Candidate, error)
	// HireCandidate creates e from the candidate and links the two. It
	// fails unless the candidate is in the hired stage and not yet linked.
	HireCandidate(ctx context.Context, candidateID uuid.UUID, e Employee) (Employee, error)
}

// InMemoryEmployeeRepository implements EmployeeRepository using in-memory storage
type InMemoryEmployeeRepository struct {
	mu         sync.RWMutex
	employees  map[uuid.UUID]Employee
	byEmail    map[string]uuid.UUID
	candidates map[uuid.UUID]Candidate
}

func NewInMemoryEmployeeRepository() *InMemoryEmployeeRepository {
	return &InMemoryEmployeeRepository{
		employees:  make(map[uuid.UUID]Employee),
		byEmail:    make(map[string]uuid.UUID),
		candidates: make(map[uuid.UUID]Candidate),
	}
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// insertEmployee requires r.mu held for writing.
func (r *InMemoryEmployeeRepository) insertEmployee(e Employee) (Employee, error) {
	key := emailKey(e.Email)
	if _, taken := r.byEmail[key]; taken {
		return Employee{}, ErrEmailTaken
	}
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	r.employees[e.ID] = e
	r.byEmail[key] = e.ID
	return e, nil
}

func (r *InMemoryEmployeeRepository) CreateEmployee(ctx context.Context, e Employee) (Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.insertEmployee(e)
}

func (r *InMemoryEmployeeRepository) GetEmployee(ctx context.Context, id uuid.UUID) (Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.employees[id]
	if !ok {
		return Employee{}, ErrEmployeeNotFound
	}
	return e, nil
}

func (r *InMemoryEmployeeRepository) FindEmployees(ctx context.Context) ([]Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Employee, 0, len(r.employees))
	for _, e := range r.employees {
		out = append(out, e)
	}
	return out, nil
}

func (r *InMemoryEmployeeRepository) UpdateEmployeeStatus(ctx context.Context, id uuid.UUID, status Status) (Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.employees[id]
	if !ok {
		return Employee{}, ErrEmployeeNotFound
	}
	e.Status = status
	r.employees[id] = e
	return e, nil
}

// DeleteEmployee removes the record. A candidate it was hired from stays
// linked, so the same candidate cannot be hired twice.
func (r *InMemoryEmployeeRepository) DeleteEmployee(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.employees[id]
	if !ok {
		return ErrEmployeeNotFound
	}
	delete(r.employees, id)
	delete(r.byEmail, emailKey(e.Email))
	return nil
}

func (r *InMemoryEmployeeRepository) CreateCandidate(ctx context.Context, c Candidate) (Candidate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.candidates[c.ID] = c
	return c, nil
}

func (r *InMemoryEmployeeRepository) GetCandidate(ctx context.Context, id uuid.UUID) (Candidate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.candidates[id]
	if !ok {
		return Candidate{}, ErrCandidateNotFound
	}
	return c, nil
}

func (r *InMemoryEmployeeRepository) FindCandidates(ctx context.Context) ([]Candidate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Candidate, 0, len(r.candidates))
	for _, c := range r.candidates {
		out = append(out, c)
	}
	return out, nil
}

func (r *InMemoryEmployeeRepository) UpdateCandidateStage(ctx context.Context, id uuid.UUID, stage Stage) (Candidate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.candidates[id]
	if !ok {
		return Candidate{}, ErrCandidateNotFound
	}
	if c.Hired() {
		return Candidate{}, ErrAlreadyHired
	}
	c.Stage = stage
	r.candidates[id] = c
	return c, nil
}

func (r *InMemoryEmployeeRepository) HireCandidate(ctx context.Context, candidateID uuid.UUID, e Employee) (Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.candidates[candidateID]
	if !ok {
		return Employee{}, ErrCandidateNotFound
	}
	if c.Hired() {
		return Employee{}, ErrAlreadyHired
	}
	if c.Stage != StageHired {
		return Employee{}, ErrNotHiredStage
	}

	e.CandidateID = &candidateID
	created, err := r.insertEmployee(e)
	if err != nil {
		return Employee{}, err
	}
	id := created.ID
	c.EmployeeID = &id
	r.candidates[candidateID] = c
	return created, nil
}
