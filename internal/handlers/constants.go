package handlers

const (
	SessionCookieName = "session_id"

	oauthStateCookie    = "oauth_state"
	oauthProviderCookie = "oauth_provider"

	ErrInvalidFormData     = "Invalid form data"
	ErrUnauthorized        = "Unauthorized"
	ErrForbidden           = "Forbidden"
	ErrNotFound            = "Not found"
	ErrInternalServerError = "Internal server error"
	ErrTooManyRequests     = "Too many requests"
	ErrInvalidCSRFToken    = "Invalid CSRF token"
)
