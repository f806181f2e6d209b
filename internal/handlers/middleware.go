package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"alloneword/internal/models"
	"alloneword/internal/security"
	"alloneword/internal/service"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	AccountContextKey ContextKey = "account"
	SessionContextKey ContextKey = "session"
)

// Middleware holds dependencies for middleware functions
type Middleware struct {
	authService  *service.AuthService
	tokenService *service.TokenService
	csrf         *security.CSRFGenerator
	limiter      security.RateLimiter
}

// NewMiddleware creates a new middleware instance
func NewMiddleware(authService *service.AuthService, tokenService *service.TokenService, csrf *security.CSRFGenerator, limiter security.RateLimiter) *Middleware {
	return &Middleware{
		authService:  authService,
		tokenService: tokenService,
		csrf:         csrf,
		limiter:      limiter,
	}
}

// sessionAccount resolves the session cookie. ok is false when there is no valid session.
func (m *Middleware) sessionAccount(r *http.Request) (*models.Account, string, bool) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil, "", false
	}
	account, err := m.authService.ValidateSession(r.Context(), cookie.Value)
	if err != nil {
		if !errors.Is(err, service.ErrSessionNotFound) && !errors.Is(err, service.ErrSessionExpired) {
			slog.Error("failed to validate session", "error", err)
		}
		return nil, "", false
	}
	return account, cookie.Value, true
}

func withAccount(r *http.Request, account *models.Account, sessionID string) *http.Request {
	ctx := context.WithValue(r.Context(), AccountContextKey, account)
	ctx = context.WithValue(ctx, SessionContextKey, sessionID)
	return r.WithContext(ctx)
}

// LoadAccount adds the signed-in account to the context when there is one, without requiring it
func (m *Middleware) LoadAccount(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if account, sessionID, ok := m.sessionAccount(r); ok {
			r = withAccount(r, account, sessionID)
		}
		next(w, r)
	}
}

// RequireAuth is middleware that requires a valid session, redirecting to the login page otherwise
func (m *Middleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		account, sessionID, ok := m.sessionAccount(r)
		if !ok {
			http.SetCookie(w, security.CreateDeleteCookie(r, SessionCookieName))
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next(w, withAccount(r, account, sessionID))
	}
}

// RequireSession is RequireAuth for JSON endpoints: a missing session is a 401
func (m *Middleware) RequireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		account, sessionID, ok := m.sessionAccount(r)
		if !ok {
			respondJSONError(w, http.StatusUnauthorized, ErrUnauthorized)
			return
		}
		next(w, withAccount(r, account, sessionID))
	}
}

// BearerAuth authenticates JSON API requests with a signed token
func (m *Middleware) BearerAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			w.Header().Set("WWW-Authenticate", `Bearer realm="alloneword"`)
			respondJSONError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		account, err := m.tokenService.Account(r.Context(), token)
		if err != nil {
			if !errors.Is(err, service.ErrInvalidToken) {
				slog.Error("failed to verify bearer token", "error", err)
			}
			w.Header().Set("WWW-Authenticate", `Bearer realm="alloneword", error="invalid_token"`)
			respondJSONError(w, http.StatusUnauthorized, service.ErrInvalidToken.Error())
			return
		}
		next(w, withAccount(r, account, ""))
	}
}

// Require lets the request through only if the account's role grants c.
// Page requests without it are sent home.
func (m *Middleware) Require(c models.Capability, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		account := GetAccountFromContext(r.Context())
		if account == nil || !account.Role.Can(c) {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		next(w, r)
	}
}

// RequireJSON is Require for JSON endpoints: a missing capability is a 403
func (m *Middleware) RequireJSON(c models.Capability, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		account := GetAccountFromContext(r.Context())
		if account == nil {
			respondJSONError(w, http.StatusUnauthorized, ErrUnauthorized)
			return
		}
		if !account.Role.Can(c) {
			respondJSONError(w, http.StatusForbidden, ErrForbidden)
			return
		}
		next(w, r)
	}
}

// csrfValid checks the CSRF token of a state-changing request against the session.
// The token comes from the X-CSRF-Token header or the csrf_token form field.
func (m *Middleware) csrfValid(r *http.Request) bool {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		return true
	}

	sessionID, _ := r.Context().Value(SessionContextKey).(string)
	token := r.Header.Get(security.CSRFHeader)
	if token == "" {
		token = r.FormValue(security.CSRFFormField)
	}

	if !m.csrf.ValidateToken(sessionID, token) {
		slog.Warn("csrf token rejected", "method", r.Method, "url", r.URL.Path, "ip", security.GetClientIP(r))
		return false
	}
	return true
}

// CSRFProtect rejects form posts without a valid CSRF token
func (m *Middleware) CSRFProtect(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !m.csrfValid(r) {
			http.Error(w, ErrInvalidCSRFToken, http.StatusForbidden)
			return
		}
		next(w, r)
	}
}

// CSRFProtectJSON is CSRFProtect for JSON endpoints
func (m *Middleware) CSRFProtectJSON(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !m.csrfValid(r) {
			respondJSONError(w, http.StatusForbidden, ErrInvalidCSRFToken)
			return
		}
		next(w, r)
	}
}

// CSRFToken returns the token pages embed in their forms, or "" without a session
func (m *Middleware) CSRFToken(r *http.Request) string {
	sessionID, _ := r.Context().Value(SessionContextKey).(string)
	token, err := m.csrf.GenerateToken(sessionID)
	if err != nil {
		return ""
	}
	return token
}

// RateLimit limits requests per client IP. A limiter failure lets the request through.
func (m *Middleware) RateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := security.GetClientIP(r)
		allowed, err := m.limiter.Allow(r.Context(), ip)
		if err != nil {
			slog.Error("rate limiter unavailable", "error", err)
			allowed = true
		}
		if !allowed {
			slog.Warn("rate limit exceeded", "ip", ip, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, ErrTooManyRequests, http.StatusTooManyRequests)
			return
		}
		next(w, r)
	}
}

// statusRecorder captures the status code written by a handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

func (rec *statusRecorder) Unwrap() http.ResponseWriter {
	return rec.ResponseWriter
}

// Logging middleware logs HTTP requests
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		slog.Info("request",
			"method", r.Method,
			"url", r.URL.String(),
			"status", rec.status,
			"ip", security.GetClientIP(r),
			"agent", r.UserAgent(),
			"duration", time.Since(start),
		)
	})
}

// Recover turns a panic into a logged 500
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if p := recover(); p != nil {
				if p == http.ErrAbortHandler {
					panic(p)
				}
				slog.Error("panic serving request", "method", r.Method, "url", r.URL.Path, "panic", p, "stack", string(debug.Stack()))
				http.Error(w, ErrInternalServerError, http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// GetAccountFromContext retrieves the signed-in account from the request context
func GetAccountFromContext(ctx context.Context) *models.Account {
	account, ok := ctx.Value(AccountContextKey).(*models.Account)
	if !ok {
		return nil
	}
	return account
}
