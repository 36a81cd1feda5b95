// Package errors provides structured error handling with error codes for simple-crm.
//
// Every service returns *Error values carrying a typed code, so HTTP handlers
// can map failures to status codes without string matching.
//
// # Basic Usage
//
//	import "github.com/tendant/simple-crm/pkg/errors"
//
//	// Create a simple error
//	err := errors.New(errors.ErrCodeInvalidRole, "unknown role: owner")
//
//	// Use convenience constructors
//	err := errors.NotFound("employee", id.String())
//	err := errors.AlreadyExists("user", email)
//	err := errors.InvalidInput("email", "is required")
//
// # Authorization Failures
//
// Guards in pkg/rbac return booleans. Services turn a denied check into a
// Forbidden error and attach the reason so the dashboard can explain it:
//
//	if !decision.Allowed {
//		return errors.Forbidden("not allowed to change this user's role").
//			WithDetail("action", "change_role").
//			WithDetail("reason", decision.Reason)
//	}
//
// # Error Inspection
//
//	if errors.IsCode(err, errors.ErrCodeForbidden) {
//		// denial, nothing was written
//	}
//
//	code := errors.GetCode(err)
//	details := errors.GetDetails(err)
//
// # HTTP Status Code Mapping
//
//   - ErrCodeInvalidInput, ErrCodeInvalidRole → 400 Bad Request
//   - ErrCodeUnauthorized, ErrCodeInvalidCredentials → 401 Unauthorized
//   - ErrCodeForbidden, ErrCodeUserDisabled → 403 Forbidden
//   - ErrCodeNotFound, ErrCodeUserNotFound → 404 Not Found
//   - ErrCodeAlreadyExists, ErrCodeUserAlreadyExists → 409 Conflict
//   - anything else → 500 Internal Server Error
//
// Render writes the JSON body for handlers:
//
//	func (h Handle) Delete(w http.ResponseWriter, r *http.Request) {
//		if err := h.iamService.DeleteUser(ctx, actor, id); err != nil {
//			errors.Render(w, r, err)
//			return
//		}
//		render.NoContent(w, r)
//	}
package errors
