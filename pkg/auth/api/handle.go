package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/tendant/simple-crm/pkg/auth"
	"github.com/tendant/simple-crm/pkg/errors"
	"github.com/tendant/simple-crm/pkg/tokengenerator"
)

type Handle struct {
	loginService *auth.LoginService
	cookies      tokengenerator.CookieSetter
}

func NewHandle(loginService *auth.LoginService, cookies tokengenerator.CookieSetter) Handle {
	return Handle{
		loginService: loginService,
		cookies:      cookies,
	}
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (req *LoginRequest) Bind(r *http.Request) error {
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		return errors.New(errors.ErrCodeMissingRequired, "email and password are required")
	}
	return nil
}

// Login a demo user
// (POST /login)
func (h Handle) Login(w http.ResponseWriter, r *http.Request) {
	req := &LoginRequest{}
	if err := render.Bind(r, req); err != nil {
		errors.Render(w, r, errors.BadRequest(err))
		return
	}

	session, err := h.loginService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		errors.Render(w, r, err)
		return
	}

	h.cookies.SetCookie(w, tokengenerator.AccessTokenCookie, session.Token, session.ExpiresAt)
	render.Status(r, http.StatusOK)
	render.JSON(w, r, session)
}

// Logout clears the token cookie
// (POST /logout)
func (h Handle) Logout(w http.ResponseWriter, r *http.Request) {
	h.cookies.ClearCookie(w, tokengenerator.AccessTokenCookie)
	w.WriteHeader(http.StatusNoContent)
}

func Handler(h Handle) http.Handler {
	r := chi.NewRouter()
	r.Post("/login", h.Login)
	r.Post("/logout", h.Logout)
	return r
}
