package config

import (
	"net/http"
	"time"

	"github.com/sosodev/duration"
)

// JWTConfig holds the settings of the simulated session token.
type JWTConfig struct {
	Secret            string `env:"JWT_SECRET" env-default:"crm-dev-secret-change-me"`
	Issuer            string `env:"JWT_ISSUER" env-default:"simple-crm"`
	Audience          string `env:"JWT_AUDIENCE" env-default:"simple-crm"`
	AccessTokenExpiry string `env:"ACCESS_TOKEN_EXPIRY" env-default:"PT8H"`
	CookieHttpOnly    bool   `env:"COOKIE_HTTP_ONLY" env-default:"true"`
	CookieSecure      bool   `env:"COOKIE_SECURE" env-default:"false"`
}

// ParseAccessTokenExpiry parses the access token expiry duration
func (j JWTConfig) ParseAccessTokenExpiry() (time.Duration, error) {
	return ParseDuration(j.AccessTokenExpiry)
}

// CookieSameSite returns the appropriate SameSite setting based on CookieSecure
func (j JWTConfig) CookieSameSite() http.SameSite {
	if j.CookieSecure {
		return http.SameSiteStrictMode
	}
	return http.SameSiteLaxMode
}

// Validate checks the secret and expiry settings.
func (j JWTConfig) Validate() ValidationErrors {
	errs := CollectErrors(
		RequireNonEmpty("JWT_SECRET", j.Secret),
		RequireNonEmpty("JWT_ISSUER", j.Issuer),
	)
	expiry, err := j.ParseAccessTokenExpiry()
	if err != nil {
		errs = append(errs, ValidationError{Field: "ACCESS_TOKEN_EXPIRY", Message: err.Error()})
	} else if verr := RequirePositiveDuration("ACCESS_TOKEN_EXPIRY", expiry); verr != nil {
		errs = append(errs, *verr)
	}
	return errs
}

// ParseDuration tries ISO8601 ("PT8H") first, then Go duration syntax ("8h").
func ParseDuration(s string) (time.Duration, error) {
	isoDuration, err := duration.Parse(s)
	if err == nil {
		return isoDuration.ToTimeDuration(), nil
	}
	return time.ParseDuration(s)
}
