package security

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

// GenerateSessionID returns a random UUID used as the session key
func GenerateSessionID() string {
	return uuid.New().String()
}

// IsSecureRequest reports whether r arrived over HTTPS, directly or through a TLS-terminating proxy
func IsSecureRequest(r *http.Request) bool {
	return r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" || r.URL.Scheme == "https"
}

// baseCookie is an HttpOnly, Lax cookie scoped to the whole site, Secure when r is
func baseCookie(r *http.Request, name, value string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   IsSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
	}
}

// CreateSessionCookie carries the session ID until the session expires
func CreateSessionCookie(r *http.Request, name, sessionID string, expires time.Time) *http.Cookie {
	c := baseCookie(r, name, sessionID)
	c.Expires = expires
	return c
}

// CreateTempCookie lives for ttl. OAuth state rides in these across the provider redirect.
func CreateTempCookie(r *http.Request, name, value string, ttl time.Duration) *http.Cookie {
	c := baseCookie(r, name, value)
	c.Expires = time.Now().Add(ttl)
	c.MaxAge = int(ttl.Seconds())
	return c
}

// CreateDeleteCookie clears name in the browser
func CreateDeleteCookie(r *http.Request, name string) *http.Cookie {
	c := baseCookie(r, name, "")
	c.MaxAge = -1
	return c
}
