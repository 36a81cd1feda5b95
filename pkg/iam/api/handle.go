package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/tendant/simple-crm/pkg/auth"
	"github.com/tendant/simple-crm/pkg/errors"
	"github.com/tendant/simple-crm/pkg/iam"
	"github.com/tendant/simple-crm/pkg/rbac"
)

// DirectoryItem is the menu item that opens the user directory.
const DirectoryItem = "teammates"

type Handle struct {
	iamService *iam.IamService
}

func NewHandle(iamService *iam.IamService) Handle {
	return Handle{
		iamService: iamService,
	}
}

// User is the public shape of a directory entry.
type User struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone,omitempty"`
	Department  string     `json:"department,omitempty"`
	Role        rbac.Role  `json:"role"`
	Status      iam.Status `json:"status"`
	Permissions []string   `json:"permissions"`
	CreatedAt   time.Time  `json:"created_at"`
}

// UserRow is a User plus the actions the caller may take on it.
type UserRow struct {
	User
	CanChangeRole bool `json:"can_change_role"`
	CanSetStatus  bool `json:"can_set_status"`
	CanDelete     bool `json:"can_delete"`
}

type CreateUserRequest struct {
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Phone      string     `json:"phone"`
	Department string     `json:"department"`
	Role       rbac.Role  `json:"role"`
	Status     iam.Status `json:"status"`
}

func (req *CreateUserRequest) Bind(r *http.Request) error {
	if !req.Role.Valid() {
		return errors.New(errors.ErrCodeMissingRequired, "role is required")
	}
	return nil
}

type ChangeRoleRequest struct {
	Role rbac.Role `json:"role"`
}

func (req *ChangeRoleRequest) Bind(r *http.Request) error {
	if !req.Role.Valid() {
		return errors.New(errors.ErrCodeMissingRequired, "role is required")
	}
	return nil
}

type SetStatusRequest struct {
	Status string `json:"status"`
}

func (req *SetStatusRequest) Bind(r *http.Request) error { return nil }

func toUser(u iam.User) User {
	var view User
	copier.CopyWithOption(&view, &u, copier.Option{DeepCopy: true})
	return view
}

func toRows(rows []iam.UserRow) []UserRow {
	views := make([]UserRow, len(rows))
	for i, row := range rows {
		views[i] = UserRow{
			User:          toUser(row.User),
			CanChangeRole: row.CanChangeRole,
			CanSetStatus:  row.CanSetStatus,
			CanDelete:     row.CanDelete,
		}
	}
	return views
}

func actorFrom(w http.ResponseWriter, r *http.Request) (rbac.Actor, bool) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		errors.Render(w, r, errors.Unauthorized("not authenticated"))
	}
	return actor, ok
}

func userID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		errors.Render(w, r, errors.InvalidInput("id", "must be a UUID"))
		return uuid.Nil, false
	}
	return id, true
}

func parseFilter(r *http.Request) (iam.UserFilter, error) {
	q := r.URL.Query()
	filter := iam.UserFilter{Search: q.Get("search")}
	if tag := q.Get("role"); tag != "" {
		role, err := rbac.ParseRole(tag)
		if err != nil {
			return filter, err
		}
		filter.Role = role
	}
	if s := q.Get("status"); s != "" {
		status, err := iam.ParseStatus(s)
		if err != nil {
			return filter, err
		}
		filter.Status = status
	}
	return filter, nil
}

// Get lists users with the caller's permitted actions
// (GET /)
func (h Handle) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	filter, err := parseFilter(r)
	if err != nil {
		errors.Render(w, r, err)
		return
	}

	rows, err := h.iamService.UserRows(r.Context(), actor, filter)
	if err != nil {
		errors.Render(w, r, err)
		return
	}
	render.JSON(w, r, toRows(rows))
}

// GetID returns one user
// (GET /{id})
func (h Handle) GetID(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}
	user, err := h.iamService.GetUser(r.Context(), id)
	if err != nil {
		errors.Render(w, r, err)
		return
	}
	render.JSON(w, r, toUser(user))
}

// Post creates a user
// (POST /)
func (h Handle) Post(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	req := &CreateUserRequest{}
	if err := render.Bind(r, req); err != nil {
		errors.Render(w, r, errors.BadRequest(err))
		return
	}

	var params iam.CreateUserParams
	copier.Copy(&params, req)
	user, err := h.iamService.CreateUser(r.Context(), actor, params)
	if err != nil {
		errors.Render(w, r, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, toUser(user))
}

// PutRole changes the role of a user
// (PUT /{id}/role)
func (h Handle) PutRole(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, ok := userID(w, r)
	if !ok {
		return
	}
	req := &ChangeRoleRequest{}
	if err := render.Bind(r, req); err != nil {
		errors.Render(w, r, errors.BadRequest(err))
		return
	}

	user, err := h.iamService.ChangeRole(r.Context(), actor, id, req.Role)
	if err != nil {
		errors.Render(w, r, err)
		return
	}
	render.JSON(w, r, toUser(user))
}

// PutStatus sets the status of a user
// (PUT /{id}/status)
func (h Handle) PutStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, ok := userID(w, r)
	if !ok {
		return
	}
	req := &SetStatusRequest{}
	if err := render.Bind(r, req); err != nil {
		errors.Render(w, r, errors.BadRequest(err))
		return
	}
	status, err := iam.ParseStatus(req.Status)
	if err != nil {
		errors.Render(w, r, err)
		return
	}

	user, err := h.iamService.SetStatus(r.Context(), actor, id, status)
	if err != nil {
		errors.Render(w, r, err)
		return
	}
	render.JSON(w, r, toUser(user))
}

// PostToggleStatus flips a user between active and inactive
// (POST /{id}/toggle-status)
func (h Handle) PostToggleStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, ok := userID(w, r)
	if !ok {
		return
	}

	user, err := h.iamService.ToggleStatus(r.Context(), actor, id)
	if err != nil {
		errors.Render(w, r, err)
		return
	}
	render.JSON(w, r, toUser(user))
}

// Delete removes a user
// (DELETE /{id})
func (h Handle) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, ok := userID(w, r)
	if !ok {
		return
	}

	if err := h.iamService.DeleteUser(r.Context(), actor, id); err != nil {
		errors.Render(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func Handler(h Handle) http.Handler {
	r := chi.NewRouter()
	r.Use(auth.RequireMenuItem(h.iamService.Policy(), DirectoryItem))
	r.Get("/", h.Get)
	r.Post("/", h.Post)
	r.Get("/{id}", h.GetID)
	r.Put("/{id}/role", h.PutRole)
	r.Put("/{id}/status", h.PutStatus)
	r.Post("/{id}/toggle-status", h.PostToggleStatus)
	r.Delete("/{id}", h.Delete)
	return r
}
