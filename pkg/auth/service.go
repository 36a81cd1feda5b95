package auth

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/simple-crm/pkg/errors"
	"github.com/tendant/simple-crm/pkg/iam"
	"github.com/tendant/simple-crm/pkg/tokengenerator"
)

// UserDirectory is the part of the user directory authentication reads.
// *iam.IamService satisfies it.
type UserDirectory interface {
	GetUser(ctx context.Context, id uuid.UUID) (iam.User, error)
	GetUserByEmail(ctx context.Context, email string) (iam.User, error)
}

// Session is returned by a successful login.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      iam.User  `json:"user"`
}

type LoginService struct {
	users  UserDirectory
	creds  CredentialStore
	tokens tokengenerator.TokenGenerator
	expiry time.Duration
}

func NewLoginService(users UserDirectory, creds CredentialStore, tokens tokengenerator.TokenGenerator, expiry time.Duration) *LoginService {
	return &LoginService{
		users:  users,
		creds:  creds,
		tokens: tokens,
		expiry: expiry,
	}
}

// Login checks the password of email and issues an access token for the
// matching active user.
func (s *LoginService) Login(ctx context.Context, email, password string) (Session, error) {
	if err := s.creds.VerifyPassword(ctx, email, password); err != nil {
		slog.Warn("Login failed", "email", email, "err", err)
		return Session{}, err
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.IsCode(err, errors.ErrCodeUserNotFound) {
			// Credentials outlived the user.
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, err
	}
	if !user.Active() {
		slog.Warn("Login refused for inactive user", "userId", user.ID)
		return Session{}, ErrUserDisabled
	}

	token, expiresAt, err := s.tokens.GenerateToken(user.ID.String(), s.expiry, ExtraClaims(user))
	if err != nil {
		return Session{}, errors.InternalWrap(err, "failed to issue token")
	}

	slog.Info("User logged in", "userId", user.ID, "role", user.Role)
	return Session{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// ExtraClaims is the claim set carried by access tokens.
func ExtraClaims(user iam.User) map[string]interface{} {
	return map[string]interface{}{
		"user_id": user.ID.String(),
		"name":    user.Name,
		"email":   user.Email,
		"role":    user.Role.String(),
	}
}
