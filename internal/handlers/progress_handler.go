package handlers

import (
	"net/http"
	"time"

	"alloneword/internal/service"
)

// progressDays is how many days the progress graph covers
const progressDays = 30

// ProgressHandler serves the leaderboard and student progress
type ProgressHandler struct {
	progressService    *service.ProgressService
	leaderboardService *service.LeaderboardService
	renderer           *Renderer
}

// NewProgressHandler creates a new progress handler
func NewProgressHandler(progressService *service.ProgressService, leaderboardService *service.LeaderboardService, renderer *Renderer) *ProgressHandler {
	return &ProgressHandler{
		progressService:    progressService,
		leaderboardService: leaderboardService,
		renderer:           renderer,
	}
}

// Leaderboard renders the leaderboard page
func (h *ProgressHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	standings, err := h.leaderboardService.Standings(r.Context())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load leaderboard", "Error building leaderboard", err)
		return
	}
	h.renderer.render(w, http.StatusOK, "leaderboard.tmpl", LeaderboardViewData{
		Page:      h.renderer.page(r, "Leaderboard"),
		Standings: standings,
	})
}

// LeaderboardData returns the leaderboard as JSON
func (h *ProgressHandler) LeaderboardData(w http.ResponseWriter, r *http.Request) {
	standings, err := h.leaderboardService.Standings(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, standings)
}

// Progress renders a student's progress page. Viewers who may not see the
// student are sent home.
func (h *ProgressHandler) Progress(w http.ResponseWriter, r *http.Request) {
	studentID, ok := pathID(r, "studentID")
	if !ok {
		http.NotFound(w, r)
		return
	}

	student, err := h.progressService.Student(r.Context(), GetAccountFromContext(r.Context()), studentID)
	if err != nil {
		switch status, _ := statusFor(err); status {
		case http.StatusNotFound:
			http.NotFound(w, r)
		case http.StatusForbidden:
			http.Redirect(w, r, "/", http.StatusSeeOther)
		default:
			respondWithError(w, http.StatusInternalServerError, "Failed to load student", "Error loading progress", err)
		}
		return
	}

	stats, err := h.progressService.Stats(r.Context(), student)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load progress", "Error loading progress stats", err)
		return
	}

	h.renderer.render(w, http.StatusOK, "progress.tmpl", ProgressViewData{
		Page:    h.renderer.page(r, student.Name()+"'s progress"),
		Student: student,
		Stats:   stats,
	})
}

// ProgressData returns the daily attempt series for a student's graph
func (h *ProgressHandler) ProgressData(w http.ResponseWriter, r *http.Request) {
	studentID, ok := pathID(r, "studentID")
	if !ok {
		respondJSONError(w, http.StatusNotFound, service.ErrAccountNotFound.Error())
		return
	}

	student, err := h.progressService.Student(r.Context(), GetAccountFromContext(r.Context()), studentID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	chart, err := h.progressService.Daily(r.Context(), student.ID, progressDays, time.Now())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, chart)
}
