package handlers

import (
	"net/http"

	"alloneword/internal/rank"
	"alloneword/internal/service"
)

// DashboardHandler serves the per-role landing pages
type DashboardHandler struct {
	authService     *service.AuthService
	progressService *service.ProgressService
	phraseService   *service.PhraseService
	renderer        *Renderer
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(authService *service.AuthService, progressService *service.ProgressService, phraseService *service.PhraseService, renderer *Renderer) *DashboardHandler {
	return &DashboardHandler{
		authService:     authService,
		progressService: progressService,
		phraseService:   phraseService,
		renderer:        renderer,
	}
}

func (h *DashboardHandler) renderTeacher(w http.ResponseWriter, r *http.Request, status int, enrolled *service.EnrolledStudent, errMsg string) {
	students, err := h.progressService.AllStudents(r.Context())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load students", "Error loading teacher dashboard", err)
		return
	}

	data := TeacherDashboardViewData{
		Page:     h.renderer.page(r, "Teacher dashboard"),
		Students: students,
		Enrolled: enrolled,
	}
	data.Error = errMsg
	h.renderer.render(w, status, "teacher_dashboard.tmpl", data)
}

// Teacher lists every student with totals, belts and awards
func (h *DashboardHandler) Teacher(w http.ResponseWriter, r *http.Request) {
	h.renderTeacher(w, r, http.StatusOK, nil, "")
}

// EnrolStudent creates a student account and shows its credentials once
func (h *DashboardHandler) EnrolStudent(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, ErrInvalidFormData, http.StatusBadRequest)
		return
	}

	enrolled, err := h.authService.EnrolStudent(r.Context(), r.FormValue("display_name"))
	if err != nil {
		status, _ := statusFor(err)
		if status == http.StatusInternalServerError {
			respondWithError(w, status, "Failed to enrol student", "Error enrolling student", err)
			return
		}
		h.renderTeacher(w, r, status, nil, userMessage(err))
		return
	}

	h.renderTeacher(w, r, http.StatusCreated, enrolled, "")
}

// RemoveStudent deletes a student account from the teacher dashboard
func (h *DashboardHandler) RemoveStudent(w http.ResponseWriter, r *http.Request) {
	studentID, ok := pathID(r, "studentID")
	if !ok {
		http.NotFound(w, r)
		return
	}

	if err := h.authService.RemoveStudent(r.Context(), studentID); err != nil {
		status, _ := statusFor(err)
		if status == http.StatusInternalServerError {
			respondWithError(w, status, "Failed to remove student", "Error removing student", err)
			return
		}
		h.renderTeacher(w, r, status, nil, userMessage(err))
		return
	}

	http.Redirect(w, r, "/teacher", http.StatusSeeOther)
}

// Student shows the signed-in student's points, belt and the phrase list
func (h *DashboardHandler) Student(w http.ResponseWriter, r *http.Request) {
	account := GetAccountFromContext(r.Context())

	stats, err := h.progressService.Stats(r.Context(), account)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load progress", "Error loading student stats", err)
		return
	}
	phrases, err := h.phraseService.List(r.Context(), account.ID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load phrases", "Error listing phrases", err)
		return
	}

	next, remaining, hasNext := rank.Next(stats.CorrectCount)
	h.renderer.render(w, http.StatusOK, "student_dashboard.tmpl", StudentDashboardViewData{
		Page:      h.renderer.page(r, "My dashboard"),
		Stats:     stats,
		NextBelt:  next.Name,
		Remaining: remaining,
		HasNext:   hasNext,
		Phrases:   phrases,
	})
}

// Parent shows the students linked to the signed-in parent
func (h *DashboardHandler) Parent(w http.ResponseWriter, r *http.Request) {
	account := GetAccountFromContext(r.Context())

	children, err := h.progressService.Children(r.Context(), account.ID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load children", "Error loading parent dashboard", err)
		return
	}

	h.renderer.render(w, http.StatusOK, "parent_dashboard.tmpl", ParentDashboardViewData{
		Page:     h.renderer.page(r, "My children"),
		Children: children,
	})
}
