package handlers

import (
	"fmt"
	"net/http"

	"alloneword/internal/service"
)

// PhraseHandler serves phrase management for teachers and admins
type PhraseHandler struct {
	phraseService *service.PhraseService
	renderer      *Renderer
}

// NewPhraseHandler creates a new phrase handler
func NewPhraseHandler(phraseService *service.PhraseService, renderer *Renderer) *PhraseHandler {
	return &PhraseHandler{phraseService: phraseService, renderer: renderer}
}

func phraseForm(r *http.Request) service.PhraseInput {
	return service.PhraseInput{
		Text:      r.FormValue("text"),
		Audio:     r.FormValue("audio"),
		AcaraCode: r.FormValue("acara_code"),
	}
}

func (h *PhraseHandler) renderForm(w http.ResponseWriter, r *http.Request, status int, action string, form service.PhraseInput, errMsg string) {
	title := "New phrase"
	if action != "/phrases" {
		title = "Edit phrase"
	}
	data := PhraseFormViewData{
		Page:   h.renderer.page(r, title),
		Action: action,
		Form:   form,
	}
	data.Error = errMsg
	h.renderer.render(w, status, "phrase_form.tmpl", data)
}

// formFailed re-renders the form for client errors and answers 404/500 otherwise
func (h *PhraseHandler) formFailed(w http.ResponseWriter, r *http.Request, action string, form service.PhraseInput, err error) {
	switch status, _ := statusFor(err); status {
	case http.StatusNotFound:
		http.NotFound(w, r)
	case http.StatusInternalServerError:
		respondWithError(w, status, "Failed to save phrase", "Error saving phrase", err)
	default:
		h.renderForm(w, r, status, action, form, userMessage(err))
	}
}

// List shows every phrase with its engagement counts
func (h *PhraseHandler) List(w http.ResponseWriter, r *http.Request) {
	account := GetAccountFromContext(r.Context())
	phrases, err := h.phraseService.List(r.Context(), account.ID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load phrases", "Error listing phrases", err)
		return
	}
	h.renderer.render(w, http.StatusOK, "phrases.tmpl", PhrasesViewData{
		Page:    h.renderer.page(r, "Phrases"),
		Phrases: phrases,
	})
}

// New shows the empty phrase form
func (h *PhraseHandler) New(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, http.StatusOK, "/phrases", service.PhraseInput{}, "")
}

// Create adds a phrase from the submitted form
func (h *PhraseHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, ErrInvalidFormData, http.StatusBadRequest)
		return
	}

	form := phraseForm(r)
	if _, err := h.phraseService.Create(r.Context(), GetAccountFromContext(r.Context()), form); err != nil {
		h.formFailed(w, r, "/phrases", form, err)
		return
	}
	http.Redirect(w, r, "/phrases", http.StatusSeeOther)
}

// Edit shows the form for an existing phrase
func (h *PhraseHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "phraseID")
	if !ok {
		http.NotFound(w, r)
		return
	}

	phrase, err := h.phraseService.Get(r.Context(), id)
	if err != nil {
		h.formFailed(w, r, "", service.PhraseInput{}, err)
		return
	}
	form := service.PhraseInput{Text: phrase.Text, Audio: phrase.Audio, AcaraCode: phrase.AcaraCode}
	h.renderForm(w, r, http.StatusOK, fmt.Sprintf("/phrases/%d", id), form, "")
}

// Update saves changes to a phrase
func (h *PhraseHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "phraseID")
	if !ok {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, ErrInvalidFormData, http.StatusBadRequest)
		return
	}

	form := phraseForm(r)
	if _, err := h.phraseService.Update(r.Context(), id, form); err != nil {
		h.formFailed(w, r, fmt.Sprintf("/phrases/%d", id), form, err)
		return
	}
	http.Redirect(w, r, "/phrases", http.StatusSeeOther)
}

// Delete removes a phrase along with its attempts, comments and likes
func (h *PhraseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "phraseID")
	if !ok {
		http.NotFound(w, r)
		return
	}

	if err := h.phraseService.Delete(r.Context(), id); err != nil {
		if status, _ := statusFor(err); status == http.StatusNotFound {
			http.NotFound(w, r)
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to delete phrase", "Error deleting phrase", err)
		return
	}
	http.Redirect(w, r, "/phrases", http.StatusSeeOther)
}
