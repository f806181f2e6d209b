package handlers

import (
	"net/http"

	"alloneword/internal/models"
	"alloneword/internal/service"
)

// APIHandler serves the bearer token JSON API
type APIHandler struct {
	tokenService       *service.TokenService
	practiceService    *service.PracticeService
	progressService    *service.ProgressService
	leaderboardService *service.LeaderboardService
}

// NewAPIHandler creates a new API handler
func NewAPIHandler(tokenService *service.TokenService, practiceService *service.PracticeService, progressService *service.ProgressService, leaderboardService *service.LeaderboardService) *APIHandler {
	return &APIHandler{
		tokenService:       tokenService,
		practiceService:    practiceService,
		progressService:    progressService,
		leaderboardService: leaderboardService,
	}
}

type tokenRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Token exchanges a username and password for a signed token
func (h *APIHandler) Token(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	token, err := h.tokenService.Issue(r.Context(), req.Username, req.Password)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, token)
}

// SubmitAttempt records a practice attempt for the token's account
func (h *APIHandler) SubmitAttempt(w http.ResponseWriter, r *http.Request) {
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

// Leaderboard returns the leaderboard
func (h *APIHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	standings, err := h.leaderboardService.Standings(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, standings)
}

type meResponse struct {
	Username     string   `json:"username"`
	Role         string   `json:"role"`
	TotalCorrect int      `json:"total_correct"`
	Rank         string   `json:"rank"`
	Awards       []string `json:"awards"`
}

// Me describes the token's account and its progress
func (h *APIHandler) Me(w http.ResponseWriter, r *http.Request) {
	account := GetAccountFromContext(r.Context())

	stats, err := h.progressService.Stats(r.Context(), account)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, meResponse{
		Username:     account.Username,
		Role:         account.Role.String(),
		TotalCorrect: stats.CorrectCount,
		Rank:         stats.Belt,
		Awards:       awardNames(stats.Awards),
	})
}

func awardNames(awards []models.RankAward) []string {
	names := make([]string, 0, len(awards))
	for _, a := range awards {
		names = append(names, a.Belt)
	}
	return names
}
