package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/tendant/simple-crm/pkg/auth"
	"github.com/tendant/simple-crm/pkg/errors"
	iamapi "github.com/tendant/simple-crm/pkg/iam/api"
	rolepkg "github.com/tendant/simple-crm/pkg/role"
)

type Handle struct {
	roleService *rolepkg.RoleService
}

func NewHandle(roleService *rolepkg.RoleService) *Handle {
	return &Handle{
		roleService: roleService,
	}
}

type RoleUser struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Status string `json:"status"`
}

// Get lists the role catalog
// (GET /)
func (h *Handle) Get(w http.ResponseWriter, r *http.Request) {
	roles, err := h.roleService.FindRoles(r.Context())
	if err != nil {
		errors.Render(w, r, err)
		return
	}
	render.JSON(w, r, roles)
}

// GetAssignable lists the roles the caller may assign
// (GET /assignable)
func (h *Handle) GetAssignable(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		errors.Render(w, r, errors.Unauthorized("not authenticated"))
		return
	}
	render.JSON(w, r, h.roleService.AssignableRoles(actor))
}

// GetRole describes one role
// (GET /{role})
func (h *Handle) GetRole(w http.ResponseWriter, r *http.Request) {
	info, err := h.roleService.GetRole(r.Context(), chi.URLParam(r, "role"))
	if err != nil {
		errors.Render(w, r, err)
		return
	}
	render.JSON(w, r, info)
}

// GetRoleUsers lists the users holding a role. Like the user directory it
// needs the teammates menu item.
// (GET /{role}/users)
func (h *Handle) GetRoleUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.roleService.GetRoleUsers(r.Context(), chi.URLParam(r, "role"))
	if err != nil {
		errors.Render(w, r, err)
		return
	}

	resp := make([]RoleUser, len(users))
	for i, u := range users {
		resp[i] = RoleUser{
			ID:     u.ID.String(),
			Name:   u.Name,
			Email:  u.Email,
			Status: string(u.Status),
		}
	}
	render.JSON(w, r, resp)
}

func Handler(h *Handle) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.Get)
	r.Get("/assignable", h.GetAssignable)
	r.Get("/{role}", h.GetRole)
	r.With(auth.RequireMenuItem(h.roleService.Policy(), iamapi.DirectoryItem)).Get("/{role}/users", h.GetRoleUsers)
	return r
}
