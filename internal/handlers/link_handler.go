package handlers

import (
	"net/http"

	"alloneword/internal/service"
)

// LinkHandler serves the student to parent link management page
type LinkHandler struct {
	linkService *service.LinkService
	renderer    *Renderer
}

// NewLinkHandler creates a new link handler
func NewLinkHandler(linkService *service.LinkService, renderer *Renderer) *LinkHandler {
	return &LinkHandler{linkService: linkService, renderer: renderer}
}

func (h *LinkHandler) renderLinks(w http.ResponseWriter, r *http.Request, status int, errMsg, success string) {
	overview, err := h.linkService.Overview(r.Context())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load accounts", "Error loading link overview", err)
		return
	}

	parentNames := make(map[int64]string, len(overview.Parents))
	for _, p := range overview.Parents {
		parentNames[p.ID] = p.Name()
	}

	data := LinksViewData{
		Page:        h.renderer.page(r, "Parent links"),
		Students:    overview.Students,
		Parents:     overview.Parents,
		ParentNames: parentNames,
	}
	data.Error = errMsg
	data.Success = success
	h.renderer.render(w, status, "links.tmpl", data)
}

// Show lists students with their linked parent
func (h *LinkHandler) Show(w http.ResponseWriter, r *http.Request) {
	h.renderLinks(w, r, http.StatusOK, "", "")
}

func (h *LinkHandler) linkFailed(w http.ResponseWriter, r *http.Request, err error) {
	status, _ := statusFor(err)
	if status == http.StatusInternalServerError {
		respondWithError(w, status, "Failed to update link", "Error updating parent link", err)
		return
	}
	h.renderLinks(w, r, status, userMessage(err), "")
}

// Link connects a student to a parent
func (h *LinkHandler) Link(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, ErrInvalidFormData, http.StatusBadRequest)
		return
	}

	studentID, err := formID(r, "student_id")
	if err != nil || studentID == nil {
		h.renderLinks(w, r, http.StatusBadRequest, "Choose a student", "")
		return
	}
	parentID, err := formID(r, "parent_id")
	if err != nil || parentID == nil {
		h.renderLinks(w, r, http.StatusBadRequest, "Choose a parent", "")
		return
	}

	if err := h.linkService.Link(r.Context(), *studentID, *parentID); err != nil {
		h.linkFailed(w, r, err)
		return
	}
	http.Redirect(w, r, "/links", http.StatusSeeOther)
}

// Unlink clears a student's parent
func (h *LinkHandler) Unlink(w http.ResponseWriter, r *http.Request) {
	studentID, ok := pathID(r, "studentID")
	if !ok {
		http.NotFound(w, r)
		return
	}

	if err := h.linkService.Unlink(r.Context(), studentID); err != nil {
		h.linkFailed(w, r, err)
		return
	}
	http.Redirect(w, r, "/links", http.StatusSeeOther)
}
