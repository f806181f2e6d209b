package handlers

import (
	"bytes"
	"html/template"
	"log/slog"
	"net/http"

	"alloneword/internal/models"
	"alloneword/internal/service"
)

// Renderer executes page templates with the layout data filled in
type Renderer struct {
	templates  *template.Template
	settings   *service.SettingsService
	middleware *Middleware
}

// NewRenderer creates a new renderer
func NewRenderer(templates *template.Template, settings *service.SettingsService, middleware *Middleware) *Renderer {
	return &Renderer{templates: templates, settings: settings, middleware: middleware}
}

// page builds the layout data for r
func (rn *Renderer) page(r *http.Request, title string) Page {
	settings, err := rn.settings.Get(r.Context())
	if err != nil {
		slog.Error("failed to load site settings", "error", err)
		settings = &models.SiteSettings{OrgName: models.DefaultOrgName}
	}
	return Page{
		Title:     title,
		Account:   GetAccountFromContext(r.Context()),
		CSRFToken: rn.middleware.CSRFToken(r),
		Settings:  settings,
	}
}

// render writes the named template with status, or a 500 if it fails to execute
func (rn *Renderer) render(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := rn.templates.ExecuteTemplate(&buf, name, data); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error rendering "+name, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
