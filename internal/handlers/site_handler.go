package handlers

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"alloneword/internal/service"
)

const maxBackupUpload = 32 << 20

// SiteHandler serves the about and contact pages and the admin settings
type SiteHandler struct {
	settingsService *service.SettingsService
	contactService  *service.ContactService
	backupService   *service.BackupService
	renderer        *Renderer
}

// NewSiteHandler creates a new site handler
func NewSiteHandler(settingsService *service.SettingsService, contactService *service.ContactService, backupService *service.BackupService, renderer *Renderer) *SiteHandler {
	return &SiteHandler{
		settingsService: settingsService,
		contactService:  contactService,
		backupService:   backupService,
		renderer:        renderer,
	}
}

// About renders the about page
func (h *SiteHandler) About(w http.ResponseWriter, r *http.Request) {
	h.renderer.render(w, http.StatusOK, "about.tmpl", h.renderer.page(r, "About"))
}

func (h *SiteHandler) renderContact(w http.ResponseWriter, r *http.Request, status int, form service.ContactInput, errMsg, success string) {
	data := ContactViewData{
		Page: h.renderer.page(r, "Contact"),
		Form: form,
	}
	data.Available = data.Settings.ContactEmail != ""
	data.Error = errMsg
	data.Success = success
	h.renderer.render(w, status, "contact.tmpl", data)
}

// ShowContact renders the contact form
func (h *SiteHandler) ShowContact(w http.ResponseWriter, r *http.Request) {
	h.renderContact(w, r, http.StatusOK, service.ContactInput{}, "", "")
}

// Contact emails a contact form message to the organisation
func (h *SiteHandler) Contact(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, ErrInvalidFormData, http.StatusBadRequest)
		return
	}

	form := service.ContactInput{
		Name:    r.FormValue("name"),
		Email:   r.FormValue("email"),
		Message: r.FormValue("message"),
	}
	if err := h.contactService.Send(r.Context(), form); err != nil {
		status, _ := statusFor(err)
		if status == http.StatusInternalServerError {
			slog.Error("failed to send contact message", "error", err)
			h.renderContact(w, r, http.StatusBadGateway, form, "Your message could not be sent. Please try again later.", "")
			return
		}
		h.renderContact(w, r, status, form, userMessage(err), "")
		return
	}

	h.renderContact(w, r, http.StatusOK, service.ContactInput{}, "", "Thanks! Your message has been sent.")
}

func (h *SiteHandler) renderSettings(w http.ResponseWriter, r *http.Request, status int, form *service.SettingsInput, errMsg, success string) {
	data := SettingsViewData{Page: h.renderer.page(r, "Settings")}
	if form != nil {
		data.Form = *form
	} else {
		s := data.Settings
		data.Form = service.SettingsInput{
			OrgName:      s.OrgName,
			ABN:          s.ABN,
			ContactEmail: s.ContactEmail,
			Phone:        s.Phone,
			FooterNote:   s.FooterNote,
			BannerText:   s.BannerText,
			BannerImage:  s.BannerImage,
		}
	}
	data.Error = errMsg
	data.Success = success
	h.renderer.render(w, status, "settings.tmpl", data)
}

// ShowSettings renders the settings form with the current values
func (h *SiteHandler) ShowSettings(w http.ResponseWriter, r *http.Request) {
	h.renderSettings(w, r, http.StatusOK, nil, "", "")
}

// UpdateSettings saves the settings form
func (h *SiteHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, ErrInvalidFormData, http.StatusBadRequest)
		return
	}

	form := service.SettingsInput{
		OrgName:      r.FormValue("org_name"),
		ABN:          r.FormValue("abn"),
		ContactEmail: r.FormValue("contact_email"),
		Phone:        r.FormValue("phone"),
		FooterNote:   r.FormValue("footer_note"),
		BannerText:   r.FormValue("banner_text"),
		BannerImage:  r.FormValue("banner_image"),
	}
	if _, err := h.settingsService.Update(r.Context(), form); err != nil {
		status, _ := statusFor(err)
		if status == http.StatusInternalServerError {
			respondWithError(w, status, "Failed to save settings", "Error updating settings", err)
			return
		}
		h.renderSettings(w, r, status, &form, userMessage(err), "")
		return
	}

	h.renderSettings(w, r, http.StatusOK, nil, "", "Settings saved")
}

// ExportBackup downloads the whole database as JSON
func (h *SiteHandler) ExportBackup(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.backupService.ExportToWriter(r.Context(), &buf); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to export backup", "Error exporting backup", err)
		return
	}

	filename := fmt.Sprintf("alloneword-backup-%s.json", time.Now().Format("20060102-150405"))
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	_, _ = buf.WriteTo(w)
}

// ImportBackup replaces the database with an uploaded backup file
func (h *SiteHandler) ImportBackup(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBackupUpload)
	file, _, err := r.FormFile("backup_file")
	if err != nil {
		h.renderSettings(w, r, http.StatusBadRequest, nil, "Choose a backup file to restore", "")
		return
	}
	defer file.Close()

	if err := h.backupService.ImportFromReader(r.Context(), file); err != nil {
		slog.Error("failed to import backup", "error", err)
		h.renderSettings(w, r, http.StatusBadRequest, nil, "The backup could not be restored: "+err.Error(), "")
		return
	}

	slog.Info("backup restored", "admin", GetAccountFromContext(r.Context()).Username)
	h.renderSettings(w, r, http.StatusOK, nil, "", "Backup restored")
}
