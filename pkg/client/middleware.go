package client

import (
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
	"github.com/tendant/simple-crm/pkg/errors"
)

// AuthUserMiddleware reads the claims jwtauth.Verifier stored in the
// request context and exposes them as an *AuthUser. It must run after
// jwtauth.Verifier and jwtauth.Authenticator.
func AuthUserMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, claims, err := jwtauth.FromContext(r.Context())
		if err != nil || claims == nil {
			errors.Render(w, r, errors.New(errors.ErrCodeTokenInvalid, "missing or invalid token"))
			return
		}

		authUser, err := AuthUserFromClaims(claims)
		if err != nil {
			errors.Render(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithAuthUser(r.Context(), authUser)))
	})
}

// AuthUserFromClaims builds an AuthUser from verified token claims. The
// subject must be a user id and agree with extra_claims.user_id when both
// are present.
func AuthUserFromClaims(claims map[string]interface{}) (*AuthUser, error) {
	authUser := new(AuthUser)
	if err := LoadFromMap(claims, authUser); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeTokenInvalid, "invalid token claims")
	}

	if authUser.UserId == "" {
		authUser.UserId = authUser.ExtraClaims.UserId
	}
	if authUser.UserId == "" {
		return nil, errors.New(errors.ErrCodeTokenInvalid, "missing user id in token")
	}
	if extra := authUser.ExtraClaims.UserId; extra != "" && extra != authUser.UserId {
		return nil, errors.New(errors.ErrCodeTokenInvalid, "token subject mismatch")
	}

	id, err := uuid.Parse(authUser.UserId)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeTokenInvalid, "invalid user id in token")
	}
	authUser.UserUuid = id
	return authUser, nil
}
