package tokengenerator

import (
	"net/http"
	"time"
)

// AccessTokenCookie is the cookie jwtauth.TokenFromCookie reads.
const AccessTokenCookie = "jwt"

// CookieSetter interface defines methods for cookie operations
type CookieSetter interface {
	// SetCookie sets a cookie with the given value and expiry
	SetCookie(w http.ResponseWriter, tokenName, tokenValue string, expire time.Time)

	// ClearCookie clears a cookie
	ClearCookie(w http.ResponseWriter, tokenName string)
}

// BaseCookieSetter provides a base implementation of CookieSetter
type BaseCookieSetter struct {
	Path     string
	HttpOnly bool
	Secure   bool
	SameSite http.SameSite
}

// SetCookie sets a cookie with the given value and expiry
func (c *BaseCookieSetter) SetCookie(w http.ResponseWriter, tokenName, tokenValue string, expire time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     tokenName,
		Path:     c.Path,
		Value:    tokenValue,
		Expires:  expire,
		HttpOnly: c.HttpOnly,
		Secure:   c.Secure,
		SameSite: c.SameSite,
	})
}

// ClearCookie clears a cookie
func (c *BaseCookieSetter) ClearCookie(w http.ResponseWriter, tokenName string) {
	http.SetCookie(w, &http.Cookie{
		Name:     tokenName,
		Path:     c.Path,
		Value:    "",
		MaxAge:   -1,
		HttpOnly: c.HttpOnly,
		Secure:   c.Secure,
		SameSite: c.SameSite,
	})
}

// NewCookieSetter creates a new cookie setter
func NewCookieSetter(httpOnly, secure bool, sameSite http.SameSite) CookieSetter {
	return &BaseCookieSetter{
		Path:     "/",
		HttpOnly: httpOnly,
		Secure:   secure,
		SameSite: sameSite,
	}
}
