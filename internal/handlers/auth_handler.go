package handlers

import (
	"errors"
	"net/http"

	"alloneword/internal/models"
	"alloneword/internal/security"
	"alloneword/internal/service"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	authService          *service.AuthService
	renderer             *Renderer
	oauthProviders       map[string]OAuthProvider
	oauthRedirectBaseURL string
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, renderer *Renderer, oauthProviders map[string]OAuthProvider, oauthRedirectBaseURL string) *AuthHandler {
	return &AuthHandler{
		authService:          authService,
		renderer:             renderer,
		oauthProviders:       oauthProviders,
		oauthRedirectBaseURL: oauthRedirectBaseURL,
	}
}

// homeFor is where an account lands after signing in
func homeFor(account *models.Account) string {
	switch account.Role {
	case models.RoleAdmin, models.RoleTeacher:
		return "/teacher"
	case models.RoleParent:
		return "/parent"
	default:
		return "/student"
	}
}

// Home sends signed-in accounts to their dashboard and everyone else to the login page
func (h *AuthHandler) Home(w http.ResponseWriter, r *http.Request) {
	if account := GetAccountFromContext(r.Context()); account != nil {
		http.Redirect(w, r, homeFor(account), http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *AuthHandler) renderLogin(w http.ResponseWriter, r *http.Request, status int, login, errMsg string) {
	data := LoginViewData{
		Page:           h.renderer.page(r, "Log in"),
		OAuthProviders: h.oauthProviderViews(),
		Login:          login,
	}
	data.Error = errMsg
	h.renderer.render(w, status, "login.tmpl", data)
}

// ShowLogin renders the login page
func (h *AuthHandler) ShowLogin(w http.ResponseWriter, r *http.Request) {
	if account := GetAccountFromContext(r.Context()); account != nil {
		http.Redirect(w, r, homeFor(account), http.StatusSeeOther)
		return
	}
	h.renderLogin(w, r, http.StatusOK, "", "")
}

// Login handles login form submission
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, ErrInvalidFormData, http.StatusBadRequest)
		return
	}

	login := r.FormValue("login")
	session, account, err := h.authService.Login(r.Context(), login, r.FormValue("password"))
	if errors.Is(err, service.ErrInvalidCredentials) {
		h.renderLogin(w, r, http.StatusUnauthorized, login, "Invalid username or password")
		return
	}
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error logging in", err)
		return
	}

	http.SetCookie(w, security.CreateSessionCookie(r, SessionCookieName, session.ID, session.ExpiresAt))
	http.Redirect(w, r, homeFor(account), http.StatusSeeOther)
}

func (h *AuthHandler) renderRegister(w http.ResponseWriter, r *http.Request, status int, form service.RegisterInput, errMsg string) {
	form.Password = ""
	data := RegisterViewData{
		Page:           h.renderer.page(r, "Register"),
		OAuthProviders: h.oauthProviderViews(),
		Roles:          models.SelfRegisterRoles,
		Form:           form,
	}
	data.Error = errMsg
	h.renderer.render(w, status, "register.tmpl", data)
}

// ShowRegister renders the registration page
func (h *AuthHandler) ShowRegister(w http.ResponseWriter, r *http.Request) {
	if account := GetAccountFromContext(r.Context()); account != nil {
		http.Redirect(w, r, homeFor(account), http.StatusSeeOther)
		return
	}
	h.renderRegister(w, r, http.StatusOK, service.RegisterInput{Role: models.RoleStudent.String()}, "")
}

// Register handles registration form submission and signs the new account in
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, ErrInvalidFormData, http.StatusBadRequest)
		return
	}

	form := service.RegisterInput{
		Username:    r.FormValue("username"),
		Email:       r.FormValue("email"),
		Password:    r.FormValue("password"),
		DisplayName: r.FormValue("display_name"),
		Role:        r.FormValue("role"),
	}

	account, err := h.authService.Register(r.Context(), form)
	if err != nil {
		status, _ := statusFor(err)
		if status == http.StatusInternalServerError {
			respondWithError(w, status, ErrInternalServerError, "Error registering account", err)
			return
		}
		h.renderRegister(w, r, status, form, userMessage(err))
		return
	}

	session, _, err := h.authService.Login(r.Context(), account.Username, form.Password)
	if err != nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	http.SetCookie(w, security.CreateSessionCookie(r, SessionCookieName, session.ID, session.ExpiresAt))
	http.Redirect(w, r, homeFor(account), http.StatusSeeOther)
}

func (h *AuthHandler) renderAccount(w http.ResponseWriter, r *http.Request, status int, form service.ProfileInput, errMsg, success string) {
	data := AccountViewData{
		Page: h.renderer.page(r, "My account"),
		Form: form,
	}
	data.Error = errMsg
	data.Success = success
	h.renderer.render(w, status, "account.tmpl", data)
}

// ShowAccount renders the signed-in account's profile and password forms
func (h *AuthHandler) ShowAccount(w http.ResponseWriter, r *http.Request) {
	account := GetAccountFromContext(r.Context())
	h.renderAccount(w, r, http.StatusOK, service.ProfileInput{DisplayName: account.DisplayName, Email: account.Email}, "", "")
}

// UpdateAccount saves the profile form
func (h *AuthHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, ErrInvalidFormData, http.StatusBadRequest)
		return
	}

	form := service.ProfileInput{
		DisplayName: r.FormValue("display_name"),
		Email:       r.FormValue("email"),
	}
	updated, err := h.authService.UpdateProfile(r.Context(), GetAccountFromContext(r.Context()), form)
	if err != nil {
		status, _ := statusFor(err)
		if status == http.StatusInternalServerError {
			respondWithError(w, status, ErrInternalServerError, "Error updating profile", err)
			return
		}
		h.renderAccount(w, r, status, form, userMessage(err), "")
		return
	}

	sessionID, _ := r.Context().Value(SessionContextKey).(string)
	r = withAccount(r, updated, sessionID)
	h.renderAccount(w, r, http.StatusOK, service.ProfileInput{DisplayName: updated.DisplayName, Email: updated.Email}, "", "Profile saved")
}

// ChangePassword handles the change password form
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, ErrInvalidFormData, http.StatusBadRequest)
		return
	}

	account := GetAccountFromContext(r.Context())
	profile := service.ProfileInput{DisplayName: account.DisplayName, Email: account.Email}
	err := h.authService.ChangePassword(r.Context(), account, service.PasswordInput{
		Current: r.FormValue("current_password"),
		New:     r.FormValue("new_password"),
	})
	if err != nil {
		status, _ := statusFor(err)
		if status == http.StatusInternalServerError {
			respondWithError(w, status, ErrInternalServerError, "Error changing password", err)
			return
		}
		h.renderAccount(w, r, status, profile, userMessage(err), "")
		return
	}

	h.renderAccount(w, r, http.StatusOK, profile, "", "Password changed")
}

// Logout ends the session
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if sessionID, _ := r.Context().Value(SessionContextKey).(string); sessionID != "" {
		if err := h.authService.Logout(r.Context(), sessionID); err != nil {
			respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error logging out", err)
			return
		}
	}

	http.SetCookie(w, security.CreateDeleteCookie(r, SessionCookieName))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
