// Package auth is the simulated sign-in of simple-crm.
//
// Demo users log in with an email and a password kept as a bcrypt hash in
// memory. A successful login returns an HS256 access token whose subject is
// the user id and whose extra_claims hold the user id, name, email and
// role. The token is accepted from the Authorization header or the "jwt"
// cookie.
//
// Protected routes use the chain returned by Middlewares:
//
//	r.Group(func(r chi.Router) {
//		for _, mw := range auth.Middlewares(tokenAuth, iamService) {
//			r.Use(mw)
//		}
//		r.Get("/me", func(w http.ResponseWriter, r *http.Request) {
//			actor, _ := auth.ActorFromContext(r.Context())
//			...
//		})
//	})
//
// ActorMiddleware reloads the user on every request, so a role change or a
// deactivation takes effect without waiting for the token to expire.
package auth
