package handlers

import (
	"fmt"
	"net/http"

	"alloneword/internal/models"
	"alloneword/internal/service"
)

// PracticeHandler serves the practice page and its JSON actions
type PracticeHandler struct {
	practiceService   *service.PracticeService
	phraseService     *service.PhraseService
	engagementService *service.EngagementService
	renderer          *Renderer
}

// NewPracticeHandler creates a new practice handler
func NewPracticeHandler(practiceService *service.PracticeService, phraseService *service.PhraseService, engagementService *service.EngagementService, renderer *Renderer) *PracticeHandler {
	return &PracticeHandler{
		practiceService:   practiceService,
		phraseService:     phraseService,
		engagementService: engagementService,
		renderer:          renderer,
	}
}

func (h *PracticeHandler) renderPractice(w http.ResponseWriter, r *http.Request, status int, phraseID int64, errMsg string) {
	account := GetAccountFromContext(r.Context())

	phrase, err := h.phraseService.GetWithStats(r.Context(), phraseID, account.ID)
	if err != nil {
		if s, _ := statusFor(err); s == http.StatusNotFound {
			http.NotFound(w, r)
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to load phrase", "Error loading practice phrase", err)
		return
	}
	comments, err := h.engagementService.Comments(r.Context(), phraseID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load comments", "Error loading comments", err)
		return
	}

	data := PracticeViewData{
		Page:       h.renderer.page(r, "Practice"),
		Phrase:     phrase,
		Comments:   comments,
		CanComment: account.Role.Can(models.CapComment),
	}
	data.Error = errMsg
	h.renderer.render(w, status, "practice.tmpl", data)
}

// ShowPractice renders the practice page for a phrase
func (h *PracticeHandler) ShowPractice(w http.ResponseWriter, r *http.Request) {
	phraseID, ok := pathID(r, "phraseID")
	if !ok {
		http.NotFound(w, r)
		return
	}
	h.renderPractice(w, r, http.StatusOK, phraseID, "")
}

// SubmitAttempt records a practice attempt posted as JSON
func (h *PracticeHandler) SubmitAttempt(w http.ResponseWriter, r *http.Request) {
	phraseID, ok := pathID(r, "phraseID")
	if !ok {
		respondJSONError(w, http.StatusNotFound, service.ErrPhraseNotFound.Error())
		return
	}

	var in service.AttemptInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.practiceService.SubmitAttempt(r.Context(), GetAccountFromContext(r.Context()), phraseID, in)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// AddComment posts a comment from the practice page form
func (h *PracticeHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	phraseID, ok := pathID(r, "phraseID")
	if !ok {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, ErrInvalidFormData, http.StatusBadRequest)
		return
	}

	_, err := h.engagementService.AddComment(r.Context(), GetAccountFromContext(r.Context()), phraseID, service.CommentInput{Body: r.FormValue("body")})
	if err != nil {
		status, _ := statusFor(err)
		switch status {
		case http.StatusNotFound:
			http.NotFound(w, r)
		case http.StatusInternalServerError:
			respondWithError(w, status, "Failed to post comment", "Error adding comment", err)
		default:
			h.renderPractice(w, r, status, phraseID, userMessage(err))
		}
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/practice/%d", phraseID), http.StatusSeeOther)
}

// DeleteComment removes a comment and returns to the practice page
func (h *PracticeHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	phraseID, ok := pathID(r, "phraseID")
	if !ok {
		http.NotFound(w, r)
		return
	}
	commentID, ok := pathID(r, "commentID")
	if !ok {
		http.NotFound(w, r)
		return
	}

	err := h.engagementService.DeleteComment(r.Context(), GetAccountFromContext(r.Context()), phraseID, commentID)
	if err != nil {
		status, msg := statusFor(err)
		switch status {
		case http.StatusNotFound:
			http.NotFound(w, r)
		case http.StatusInternalServerError:
			respondWithError(w, status, "Failed to delete comment", "Error deleting comment", err)
		default:
			http.Error(w, msg, status)
		}
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/practice/%d", phraseID), http.StatusSeeOther)
}

// ToggleLike likes or unlikes a phrase and returns the new count
func (h *PracticeHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	phraseID, ok := pathID(r, "phraseID")
	if !ok {
		respondJSONError(w, http.StatusNotFound, service.ErrPhraseNotFound.Error())
		return
	}

	result, err := h.engagementService.ToggleLike(r.Context(), GetAccountFromContext(r.Context()), phraseID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}
