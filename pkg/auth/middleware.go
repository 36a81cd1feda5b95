package auth

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/tendant/simple-crm/pkg/client"
	"github.com/tendant/simple-crm/pkg/errors"
	"github.com/tendant/simple-crm/pkg/iam"
	"github.com/tendant/simple-crm/pkg/rbac"
)

type contextKey struct {
	name string
}

var userKey = &contextKey{"CurrentUser"}

// WithUser returns a copy of ctx carrying the acting user.
func WithUser(ctx context.Context, user iam.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFromContext returns the acting user loaded by ActorMiddleware.
func UserFromContext(ctx context.Context) (iam.User, bool) {
	user, ok := ctx.Value(userKey).(iam.User)
	return user, ok
}

// ActorFromContext returns the acting user as a guard subject.
func ActorFromContext(ctx context.Context) (rbac.Actor, bool) {
	user, ok := UserFromContext(ctx)
	if !ok {
		return rbac.Actor{}, false
	}
	return user.Actor(), true
}

// ActorMiddleware turns the token identity from client.AuthUserMiddleware
// into the current directory record. The role in the token must parse, and
// the user must still exist and be active. The actor carries the role held
// now, not the one at login.
func ActorMiddleware(users UserDirectory) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authUser, ok := client.GetAuthUserFromContext(r.Context())
			if !ok {
				errors.Render(w, r, errors.Unauthorized("not authenticated"))
				return
			}

			if _, err := rbac.ParseRole(authUser.ExtraClaims.Role); err != nil {
				slog.Warn("Rejected token with bad role claim", "authUser", authUser)
				errors.Render(w, r, errors.Wrap(err, errors.ErrCodeUnauthorized, "invalid role claim").
					WithDetail("role", authUser.ExtraClaims.Role))
				return
			}

			user, err := users.GetUser(r.Context(), authUser.UserUuid)
			if err != nil {
				if errors.IsCode(err, errors.ErrCodeUserNotFound) {
					errors.Render(w, r, errors.Unauthorized("user no longer exists"))
					return
				}
				errors.Render(w, r, err)
				return
			}
			if !user.Active() {
				errors.Render(w, r, errors.Unauthorized("user is inactive"))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// Middlewares returns the full authentication chain for a protected route
// group: token verification, claim decoding and actor loading.
func Middlewares(tokenAuth *jwtauth.JWTAuth, users UserDirectory) []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		jwtauth.Verifier(tokenAuth),
		jwtauth.Authenticator(tokenAuth),
		client.AuthUserMiddleware,
		ActorMiddleware(users),
	}
}

// RequireMenuItem refuses actors whose navigation does not show item. It
// must run after ActorMiddleware.
func RequireMenuItem(policy *rbac.Policy, item string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFromContext(r.Context())
			if !ok {
				errors.Render(w, r, errors.Unauthorized("not authenticated"))
				return
			}
			if !policy.MenuItemVisible(actor.Role, item) {
				slog.Warn("Section not available to role", "actor", actor, "item", item)
				errors.Render(w, r, errors.Forbidden("section not available").
					WithDetails(map[string]interface{}{"item": item, "role": actor.Role.String()}))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
