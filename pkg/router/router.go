package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	"github.com/go-chi/render"
	"github.com/tendant/simple-crm/pkg/audit"
	authpkg "github.com/tendant/simple-crm/pkg/auth"
	authapi "github.com/tendant/simple-crm/pkg/auth/api"
	pkgconfig "github.com/tendant/simple-crm/pkg/config"
	employeeapi "github.com/tendant/simple-crm/pkg/employee/api"
	iamapi "github.com/tendant/simple-crm/pkg/iam/api"
	profileapi "github.com/tendant/simple-crm/pkg/profile/api"
	"github.com/tendant/simple-crm/pkg/ratelimit"
	roleapi "github.com/tendant/simple-crm/pkg/role/api"
)

// Config holds all the dependencies and handlers needed to setup routes
type Config struct {
	// Prefix configuration for all routes
	PrefixConfig pkgconfig.PrefixConfig

	// Handlers for each feature
	AuthHandle     authapi.Handle
	ProfileHandle  profileapi.Handle
	UserHandle     iamapi.Handle
	RoleHandle     *roleapi.Handle
	EmployeeHandle employeeapi.Handle

	// Token verification and the directory the actor is reloaded from
	TokenAuth *jwtauth.JWTAuth
	Users     authpkg.UserDirectory

	// Rate limiting and auditing (optional)
	RateLimit *ratelimit.Middleware
	Audit     *audit.Middleware
}

// SetupRoutes mounts all CRM routes on the provided router
func SetupRoutes(router chi.Router, cfg Config) {
	SetupPublicRoutes(router, cfg)
	SetupAuthenticatedRoutes(router, cfg)
}

// SetupPublicRoutes mounts only public routes (no authentication required)
func SetupPublicRoutes(router chi.Router, cfg Config) {
	if cfg.RateLimit != nil {
		router.With(cfg.RateLimit.LoginHandler).Mount(cfg.PrefixConfig.Auth, authapi.Handler(cfg.AuthHandle))
		return
	}
	router.Mount(cfg.PrefixConfig.Auth, authapi.Handler(cfg.AuthHandle))
}

// SetupAuthenticatedRoutes mounts the routes that need a signed-in, active
// user. Handlers read the actor from the request context.
func SetupAuthenticatedRoutes(router chi.Router, cfg Config) {
	router.Group(func(r chi.Router) {
		r.Use(authpkg.Middlewares(cfg.TokenAuth, cfg.Users)...)
		if cfg.RateLimit != nil {
			r.Use(cfg.RateLimit.UserHandler)
		}
		if cfg.Audit != nil {
			r.Use(cfg.Audit.AuditAuthMiddleware)
		}

		// Private endpoint for testing authentication
		r.Get("/private", func(w http.ResponseWriter, r *http.Request) {
			render.PlainText(w, r, http.StatusText(http.StatusOK))
		})

		r.Mount(cfg.PrefixConfig.Me, profileapi.Handler(cfg.ProfileHandle))
		r.Mount(cfg.PrefixConfig.Users, iamapi.Handler(cfg.UserHandle))
		r.Mount(cfg.PrefixConfig.Roles, roleapi.Handler(cfg.RoleHandle))

		// HR sections open to the roles whose menu lists them
		r.Mount(cfg.PrefixConfig.Employees, employeeapi.EmployeesHandler(cfg.EmployeeHandle))
		r.Mount(cfg.PrefixConfig.Candidates, employeeapi.CandidatesHandler(cfg.EmployeeHandle))
	})
}
