package tokengenerator

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenGenerator interface defines methods for token operations
type TokenGenerator interface {
	// GenerateToken issues a token for subject carrying extraClaims under
	// the "extra_claims" key.
	GenerateToken(subject string, expiry time.Duration, extraClaims map[string]interface{}) (string, time.Time, error)
}

// Claims struct for JWT claims
type Claims struct {
	ExtraClaims map[string]interface{} `json:"extra_claims,omitempty"`
	jwt.RegisteredClaims
}

// JwtTokenGenerator signs HS256 tokens with a shared secret. Tokens are
// verified by jwtauth.New("HS256", ...) built from the same secret.
type JwtTokenGenerator struct {
	Secret   string
	Issuer   string
	Audience string
	now      func() time.Time
}

// NewJwtTokenGenerator creates a new JwtTokenGenerator
func NewJwtTokenGenerator(secret, issuer, audience string) *JwtTokenGenerator {
	return &JwtTokenGenerator{
		Secret:   secret,
		Issuer:   issuer,
		Audience: audience,
		now:      time.Now,
	}
}

// GenerateToken creates a new token with the given subject and claims
func (g *JwtTokenGenerator) GenerateToken(subject string, expiry time.Duration, extraClaims map[string]interface{}) (string, time.Time, error) {
	if expiry <= 0 {
		return "", time.Time{}, fmt.Errorf("token expiry must be positive, got %v", expiry)
	}
	now := g.now().UTC()
	claims := Claims{
		ExtraClaims: extraClaims,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now.Add(-5 * time.Minute)),
			Issuer:    g.Issuer,
			Subject:   subject,
			ID:        uuid.New().String(),
		},
	}
	if g.Audience != "" {
		claims.Audience = jwt.ClaimStrings{g.Audience}
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	ss, err := token.SignedString([]byte(g.Secret))
	if err != nil {
		slog.Error("Failed sign JWT Claim string!", "err", err)
		return "", time.Time{}, err
	}
	return ss, claims.ExpiresAt.Time, nil
}
