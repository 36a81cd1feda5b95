package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/tendant/simple-crm/pkg/auth"
	"github.com/tendant/simple-crm/pkg/errors"
	"github.com/tendant/simple-crm/pkg/profile"
)

type Handle struct {
	profileService *profile.ProfileService
}

func NewHandle(profileService *profile.ProfileService) Handle {
	return Handle{
		profileService: profileService,
	}
}

// GetMe returns the signed-in user
// (GET /)
func (h Handle) GetMe(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		errors.Render(w, r, errors.Unauthorized("not authenticated"))
		return
	}
	render.JSON(w, r, h.profileService.GetProfile(user))
}

// GetMenu returns the navigation of the signed-in user
// (GET /menu)
func (h Handle) GetMenu(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		errors.Render(w, r, errors.Unauthorized("not authenticated"))
		return
	}
	render.JSON(w, r, h.profileService.GetMenu(user))
}

func Handler(h Handle) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.GetMe)
	r.Get("/menu", h.GetMenu)
	return r
}
