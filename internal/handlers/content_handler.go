package handlers

import (
	"fmt"
	"net/http"

	"alloneword/internal/models"
	"alloneword/internal/service"
)

// ContentHandler serves the examples hub and lessons
type ContentHandler struct {
	contentService *service.ContentService
	phraseService  *service.PhraseService
	renderer       *Renderer
}

// NewContentHandler creates a new content handler
func NewContentHandler(contentService *service.ContentService, phraseService *service.PhraseService, renderer *Renderer) *ContentHandler {
	return &ContentHandler{contentService: contentService, phraseService: phraseService, renderer: renderer}
}

func canManageContent(r *http.Request) bool {
	account := GetAccountFromContext(r.Context())
	return account != nil && account.Role.Can(models.CapManageContent)
}

// contentFailed answers a failed content operation, re-rendering the form via retry for client errors
func contentFailed(w http.ResponseWriter, r *http.Request, err error, retry func(status int, msg string)) {
	status, _ := statusFor(err)
	switch {
	case status == http.StatusInternalServerError:
		respondWithError(w, status, ErrInternalServerError, "Error handling content", err)
	case retry != nil:
		retry(status, userMessage(err))
	case status == http.StatusNotFound:
		http.NotFound(w, r)
	default:
		http.Error(w, userMessage(err), status)
	}
}

// Examples lists the examples hub
func (h *ContentHandler) Examples(w http.ResponseWriter, r *http.Request) {
	examples, err := h.contentService.Examples(r.Context())
	if err != nil {
		contentFailed(w, r, err, nil)
		return
	}
	h.renderer.render(w, http.StatusOK, "examples.tmpl", ExamplesViewData{
		Page:      h.renderer.page(r, "Examples"),
		Examples:  examples,
		CanManage: canManageContent(r),
	})
}

// Example shows one example
func (h *ContentHandler) Example(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "exampleID")
	if !ok {
		http.NotFound(w, r)
		return
	}
	example, err := h.contentService.Example(r.Context(), id)
	if err != nil {
		contentFailed(w, r, err, nil)
		return
	}
	h.renderer.render(w, http.StatusOK, "example.tmpl", ExampleViewData{
		Page:      h.renderer.page(r, example.Title),
		Example:   example,
		CanManage: canManageContent(r),
	})
}

func exampleForm(r *http.Request) (service.ExampleInput, error) {
	linkID, err := formID(r, "link_phrase_id")
	return service.ExampleInput{
		Title:        r.FormValue("title"),
		Image:        r.FormValue("image"),
		Summary:      r.FormValue("summary"),
		Content:      r.FormValue("content"),
		LinkPhraseID: linkID,
		ExternalURL:  r.FormValue("external_url"),
	}, err
}

func (h *ContentHandler) renderExampleForm(w http.ResponseWriter, r *http.Request, status int, action string, form service.ExampleInput, errMsg string) {
	account := GetAccountFromContext(r.Context())
	phrases, err := h.phraseService.List(r.Context(), account.ID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load phrases", "Error listing phrases", err)
		return
	}
	data := ExampleFormViewData{
		Page:    h.renderer.page(r, "Example"),
		Action:  action,
		Form:    form,
		Phrases: phrases,
	}
	data.Error = errMsg
	h.renderer.render(w, status, "example_form.tmpl", data)
}

// NewExample shows the empty example form
func (h *ContentHandler) NewExample(w http.ResponseWriter, r *http.Request) {
	h.renderExampleForm(w, r, http.StatusOK, "/examples", service.ExampleInput{}, "")
}

// CreateExample adds an example from the submitted form
func (h *ContentHandler) CreateExample(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, ErrInvalidFormData, http.StatusBadRequest)
		return
	}
	form, err := exampleForm(r)
	if err != nil {
		h.renderExampleForm(w, r, http.StatusBadRequest, "/examples", form, err.Error())
		return
	}

	example, err := h.contentService.CreateExample(r.Context(), form)
	if err != nil {
		contentFailed(w, r, err, func(status int, msg string) {
			h.renderExampleForm(w, r, status, "/examples", form, msg)
		})
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/examples/%d", example.ID), http.StatusSeeOther)
}

// EditExample shows the form for an existing example
func (h *ContentHandler) EditExample(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "exampleID")
	if !ok {
		http.NotFound(w, r)
		return
	}
	example, err := h.contentService.Example(r.Context(), id)
	if err != nil {
		contentFailed(w, r, err, nil)
		return
	}
	form := service.ExampleInput{
		Title:        example.Title,
		Image:        example.Image,
		Summary:      example.Summary,
		Content:      example.Content,
		LinkPhraseID: example.LinkPhraseID,
		ExternalURL:  example.ExternalURL,
	}
	h.renderExampleForm(w, r, http.StatusOK, fmt.Sprintf("/examples/%d", id), form, "")
}

// UpdateExample saves changes to an example
func (h *ContentHandler) UpdateExample(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "exampleID")
	if !ok {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, ErrInvalidFormData, http.StatusBadRequest)
		return
	}
	action := fmt.Sprintf("/examples/%d", id)
	form, err := exampleForm(r)
	if err != nil {
		h.renderExampleForm(w, r, http.StatusBadRequest, action, form, err.Error())
		return
	}

	if _, err := h.contentService.UpdateExample(r.Context(), id, form); err != nil {
		contentFailed(w, r, err, func(status int, msg string) {
			h.renderExampleForm(w, r, status, action, form, msg)
		})
		return
	}
	http.Redirect(w, r, action, http.StatusSeeOther)
}

// DeleteExample removes an example
func (h *ContentHandler) DeleteExample(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "exampleID")
	if !ok {
		http.NotFound(w, r)
		return
	}
	if err := h.contentService.DeleteExample(r.Context(), id); err != nil {
		contentFailed(w, r, err, nil)
		return
	}
	http.Redirect(w, r, "/examples", http.StatusSeeOther)
}

// Lessons lists every lesson
func (h *ContentHandler) Lessons(w http.ResponseWriter, r *http.Request) {
	lessons, err := h.contentService.Lessons(r.Context())
	if err != nil {
		contentFailed(w, r, err, nil)
		return
	}
	h.renderer.render(w, http.StatusOK, "lessons.tmpl", LessonsViewData{
		Page:      h.renderer.page(r, "Lessons"),
		Lessons:   lessons,
		CanManage: canManageContent(r),
	})
}

// Lesson shows one lesson
func (h *ContentHandler) Lesson(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "lessonID")
	if !ok {
		http.NotFound(w, r)
		return
	}
	lesson, err := h.contentService.Lesson(r.Context(), id)
	if err != nil {
		contentFailed(w, r, err, nil)
		return
	}
	h.renderer.render(w, http.StatusOK, "lesson.tmpl", LessonViewData{
		Page:      h.renderer.page(r, lesson.Title),
		Lesson:    lesson,
		CanManage: canManageContent(r),
	})
}

func lessonForm(r *http.Request) service.LessonInput {
	return service.LessonInput{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Audio:       r.FormValue("audio"),
	}
}

func (h *ContentHandler) renderLessonForm(w http.ResponseWriter, r *http.Request, status int, action string, form service.LessonInput, errMsg string) {
	data := LessonFormViewData{
		Page:   h.renderer.page(r, "Lesson"),
		Action: action,
		Form:   form,
	}
	data.Error = errMsg
	h.renderer.render(w, status, "lesson_form.tmpl", data)
}

// NewLesson shows the empty lesson form
func (h *ContentHandler) NewLesson(w http.ResponseWriter, r *http.Request) {
	h.renderLessonForm(w, r, http.StatusOK, "/lessons", service.LessonInput{}, "")
}

// CreateLesson adds a lesson authored by the signed-in account
func (h *ContentHandler) CreateLesson(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, ErrInvalidFormData, http.StatusBadRequest)
		return
	}
	form := lessonForm(r)

	lesson, err := h.contentService.CreateLesson(r.Context(), GetAccountFromContext(r.Context()), form)
	if err != nil {
		contentFailed(w, r, err, func(status int, msg string) {
			h.renderLessonForm(w, r, status, "/lessons", form, msg)
		})
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/lessons/%d", lesson.ID), http.StatusSeeOther)
}

// EditLesson shows the form for an existing lesson
func (h *ContentHandler) EditLesson(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "lessonID")
	if !ok {
		http.NotFound(w, r)
		return
	}
	lesson, err := h.contentService.Lesson(r.Context(), id)
	if err != nil {
		contentFailed(w, r, err, nil)
		return
	}
	form := service.LessonInput{Title: lesson.Title, Description: lesson.Description, Audio: lesson.Audio}
	h.renderLessonForm(w, r, http.StatusOK, fmt.Sprintf("/lessons/%d", id), form, "")
}

// UpdateLesson saves changes to a lesson
func (h *ContentHandler) UpdateLesson(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "lessonID")
	if !ok {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, ErrInvalidFormData, http.StatusBadRequest)
		return
	}
	action := fmt.Sprintf("/lessons/%d", id)
	form := lessonForm(r)

	if _, err := h.contentService.UpdateLesson(r.Context(), id, form); err != nil {
		contentFailed(w, r, err, func(status int, msg string) {
			h.renderLessonForm(w, r, status, action, form, msg)
		})
		return
	}
	http.Redirect(w, r, action, http.StatusSeeOther)
}

// DeleteLesson removes a lesson
func (h *ContentHandler) DeleteLesson(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "lessonID")
	if !ok {
		http.NotFound(w, r)
		return
	}
	if err := h.contentService.DeleteLesson(r.Context(), id); err != nil {
		contentFailed(w, r, err, nil)
		return
	}
	http.Redirect(w, r, "/lessons", http.StatusSeeOther)
}
