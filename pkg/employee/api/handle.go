package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/tendant/simple-crm/pkg/auth"
	"github.com/tendant/simple-crm/pkg/employee"
	"github.com/tendant/simple-crm/pkg/errors"
	"github.com/tendant/simple-crm/pkg/rbac"
)

const (
	// EmployeesItem and CandidatesItem are the menu entries that open
	// the employee and candidate routes.
	EmployeesItem  = "employees"
	CandidatesItem = "candidates"
)

type Handle struct {
	employeeService *employee.EmployeeService
	policy          *rbac.Policy
}

func NewHandle(employeeService *employee.EmployeeService, policy *rbac.Policy) Handle {
	if policy == nil {
		policy = rbac.Default()
	}
	return Handle{
		employeeService: employeeService,
		policy:          policy,
	}
}

type CreateEmployeeRequest struct {
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Department string    `json:"department"`
	Position   string    `json:"position"`
	HireDate   time.Time `json:"hire_date"`
}

func (req *CreateEmployeeRequest) Bind(r *http.Request) error { return nil }

type SetStatusRequest struct {
	Status string `json:"status"`
}

func (req *SetStatusRequest) Bind(r *http.Request) error {
	if req.Status == "" {
		return errors.New(errors.ErrCodeMissingRequired, "status is required")
	}
	return nil
}

type CreateCandidateRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Position   string `json:"position"`
	Department string `json:"department"`
	Stage      string `json:"stage"`
}

func (req *CreateCandidateRequest) Bind(r *http.Request) error { return nil }

type SetStageRequest struct {
	Stage string `json:"stage"`
}

func (req *SetStageRequest) Bind(r *http.Request) error {
	if req.Stage == "" {
		return errors.New(errors.ErrCodeMissingRequired, "stage is required")
	}
	return nil
}

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		errors.Render(w, r, errors.InvalidInput("id", "must be a UUID"))
		return uuid.Nil, false
	}
	return id, true
}

func parseEmployeeFilter(r *http.Request) (employee.EmployeeFilter, error) {
	q := r.URL.Query()
	filter := employee.EmployeeFilter{
		Department: q.Get("department"),
		Search:     q.Get("search"),
	}
	if s := q.Get("status"); s != "" {
		status, err := employee.ParseStatus(s)
		if err != nil {
			return filter, err
		}
		filter.Status = status
	}
	return filter, nil
}

// GetEmployees lists employees
// (GET /)
func (h Handle) GetEmployees(w http.ResponseWriter, r *http.Request) {
	filter, err := parseEmployeeFilter(r)
	if err != nil {
		errors.Render(w, r, err)
		return
	}
	employees, err := h.employeeService.ListEmployees(r.Context(), filter)
	if err != nil {
		errors.Render(w, r, err)
		return
	}
	render.JSON(w, r, employees)
}

// GetEmployee returns one employee
// (GET /{id})
func (h Handle) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	e, err := h.employeeService.GetEmployee(r.Context(), id)
	if err != nil {
		errors.Render(w, r, err)
		return
	}
	render.JSON(w, r, e)
}

// PostEmployee adds an employee by hand
// (POST /)
func (h Handle) PostEmployee(w http.ResponseWriter, r *http.Request) {
	req := &CreateEmployeeRequest{}
	if err := render.Bind(r, req); err != nil {
		errors.Render(w, r, errors.BadRequest(err))
		return
	}

	var params employee.CreateEmployeeParams
	copier.Copy(&params, req)
	e, err := h.employeeService.CreateEmployee(r.Context(), params)
	if err != nil {
		errors.Render(w, r, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, e)
}

// PutEmployeeStatus sets the status of an employee
// (PUT /{id}/status)
func (h Handle) PutEmployeeStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	req := &SetStatusRequest{}
	if err := render.Bind(r, req); err != nil {
		errors.Render(w, r, errors.BadRequest(err))
		return
	}
	status, err := employee.ParseStatus(req.Status)
	if err != nil {
		errors.Render(w, r, err)
		return
	}

	e, err := h.employeeService.SetStatus(r.Context(), id, status)
	if err != nil {
		errors.Render(w, r, err)
		return
	}
	render.JSON(w, r, e)
}

// DeleteEmployee removes an employee
// (DELETE /{id})
func (h Handle) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.employeeService.DeleteEmployee(r.Context(), id); err != nil {
		errors.Render(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetCandidates lists candidates in pipeline order
// (GET /)
func (h Handle) GetCandidates(w http.ResponseWriter, r *http.Request) {
	var filter employee.CandidateFilter
	if s := r.URL.Query().Get("stage"); s != "" {
		stage, err := employee.ParseStage(s)
		if err != nil {
			errors.Render(w, r, err)
			return
		}
		filter.Stage = stage
	}
	candidates, err := h.employeeService.ListCandidates(r.Context(), filter)
	if err != nil {
		errors.Render(w, r, err)
		return
	}
	render.JSON(w, r, candidates)
}

// PostCandidate registers an applicant
// (POST /)
func (h Handle) PostCandidate(w http.ResponseWriter, r *http.Request) {
	req := &CreateCandidateRequest{}
	if err := render.Bind(r, req); err != nil {
		errors.Render(w, r, errors.BadRequest(err))
		return
	}

	params := employee.CreateCandidateParams{
		Name:       req.Name,
		Email:      req.Email,
		Position:   req.Position,
		Department: req.Department,
		Stage:      employee.Stage(req.Stage),
	}
	c, err := h.employeeService.AddCandidate(r.Context(), params)
	if err != nil {
		errors.Render(w, r, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, c)
}

// PutCandidateStage moves a candidate along the pipeline
// (PUT /{id}/stage)
func (h Handle) PutCandidateStage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	req := &SetStageRequest{}
	if err := render.Bind(r, req); err != nil {
		errors.Render(w, r, errors.BadRequest(err))
		return
	}
	stage, err := employee.ParseStage(req.Stage)
	if err != nil {
		errors.Render(w, r, err)
		return
	}

	c, err := h.employeeService.AdvanceCandidate(r.Context(), id, stage)
	if err != nil {
		errors.Render(w, r, err)
		return
	}
	render.JSON(w, r, c)
}

// PostHire turns a hired-stage candidate into an employee
// (POST /{id}/hire)
func (h Handle) PostHire(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	e, err := h.employeeService.HireCandidate(r.Context(), id)
	if err != nil {
		errors.Render(w, r, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, e)
}

// EmployeesHandler serves the employee list to roles whose menu shows it.
func EmployeesHandler(h Handle) http.Handler {
	r := chi.NewRouter()
	r.Use(auth.RequireMenuItem(h.policy, EmployeesItem))
	r.Get("/", h.GetEmployees)
	r.Post("/", h.PostEmployee)
	r.Get("/{id}", h.GetEmployee)
	r.Put("/{id}/status", h.PutEmployeeStatus)
	r.Delete("/{id}", h.DeleteEmployee)
	return r
}

// CandidatesHandler serves the hiring pipeline to roles whose menu shows it.
func CandidatesHandler(h Handle) http.Handler {
	r := chi.NewRouter()
	r.Use(auth.RequireMenuItem(h.policy, CandidatesItem))
	r.Get("/", h.GetCandidates)
	r.Post("/", h.PostCandidate)
	r.Put("/{id}/stage", h.PutCandidateStage)
	r.Post("/{id}/hire", h.PostHire)
	return r
}
