package client

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"
)

// ExtraClaims is the payload simple-crm puts under "extra_claims".
type ExtraClaims struct {
	UserId string `json:"user_id,omitempty"`
	Name   string `json:"name,omitempty"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role,omitempty"`
}

// AuthUser is the identity asserted by a verified token. It is what the
// token says, not what the directory currently holds.
type AuthUser struct {
	UserId      string      `json:"sub,omitempty"`
	UserUuid    uuid.UUID   `json:"-"`
	ExtraClaims ExtraClaims `json:"extra_claims,omitempty"`
}

func (i AuthUser) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("user", i.UserId),
		slog.String("role", i.ExtraClaims.Role),
	)
}

// contextKey is a value for use with context.WithValue. It's used as
// a pointer so it fits in an interface{} without allocation.
type contextKey struct {
	name string
}

func (k *contextKey) String() string {
	return "crm context value " + k.name
}

var (
	AuthUserKey = &contextKey{"AuthUser"}
)

// LoadFromMap decodes a claims map into c through its JSON tags.
func LoadFromMap[T any](m map[string]interface{}, c *T) error {
	data, err := json.Marshal(m)
	if err == nil {
		err = json.Unmarshal(data, c)
	}
	return err
}

// WithAuthUser returns a copy of ctx carrying user.
func WithAuthUser(ctx context.Context, user *AuthUser) context.Context {
	return context.WithValue(ctx, AuthUserKey, user)
}

// GetAuthUserFromContext returns the user stored by AuthUserMiddleware.
func GetAuthUserFromContext(ctx context.Context) (*AuthUser, bool) {
	user, ok := ctx.Value(AuthUserKey).(*AuthUser)
	return user, ok && user != nil
}
