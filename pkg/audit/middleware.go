package audit

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/tendant/simple-crm/pkg/auth"
)

// Middleware handles HTTP request auditing
type Middleware struct {
	recorder Recorder
	now      func() time.Time
}

func NewMiddleware(recorder Recorder) *Middleware {
	return &Middleware{
		recorder: recorder,
		now:      time.Now,
	}
}

// AuditAuthMiddleware records every non-read request once it completes. It
// must run after auth.ActorMiddleware; requests without an actor are not
// recorded.
func (m *Middleware) AuditAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r)
			return
		}

		user, ok := auth.UserFromContext(r.Context())
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := m.now()
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		event := Event{
			ActorID:   user.ID,
			ActorRole: user.Role,
			Method:    r.Method,
			URI:       r.RequestURI,
			Status:    status,
			Timestamp: start,
		}
		if reqID := middleware.GetReqID(r.Context()); reqID != "" {
			event = event.WithMetadata("request_id", reqID)
		}
		m.recorder.Record(r.Context(), event)
	})
}
