package handlers

import (
	"net/http"

	"alloneword/internal/models"
)

// Handlers groups every handler the router serves
type Handlers struct {
	Middleware *Middleware
	Auth       *AuthHandler
	Dashboard  *DashboardHandler
	Practice   *PracticeHandler
	Progress   *ProgressHandler
	Phrases    *PhraseHandler
	Links      *LinkHandler
	Content    *ContentHandler
	Site       *SiteHandler
	API        *APIHandler
}

// Routes registers every route and wraps the mux with panic recovery and
// request logging. Static files are served from staticDir when it is set.
func (h *Handlers) Routes(staticDir string) http.Handler {
	m := h.Middleware
	mux := http.NewServeMux()

	// page requires a session and capability c
	page := func(c models.Capability, next http.HandlerFunc) http.HandlerFunc {
		return m.RequireAuth(m.Require(c, next))
	}
	// form is page plus CSRF protection
	form := func(c models.Capability, next http.HandlerFunc) http.HandlerFunc {
		return m.RequireAuth(m.CSRFProtect(m.Require(c, next)))
	}
	// data is a session JSON endpoint requiring capability c
	data := func(c models.Capability, next http.HandlerFunc) http.HandlerFunc {
		return m.RequireSession(m.RequireJSON(c, next))
	}
	// action is data plus CSRF protection
	action := func(c models.Capability, next http.HandlerFunc) http.HandlerFunc {
		return m.RequireSession(m.CSRFProtectJSON(m.RequireJSON(c, next)))
	}
	// api is a bearer token endpoint requiring capability c
	api := func(c models.Capability, next http.HandlerFunc) http.HandlerFunc {
		return m.BearerAuth(m.RequireJSON(c, next))
	}

	if staticDir != "" {
		mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))
	}

	// Public routes
	mux.HandleFunc("GET /{$}", m.LoadAccount(h.Auth.Home))
	mux.HandleFunc("GET /login", m.LoadAccount(h.Auth.ShowLogin))
	mux.HandleFunc("POST /login", m.RateLimit(h.Auth.Login))
	mux.HandleFunc("GET /register", m.LoadAccount(h.Auth.ShowRegister))
	mux.HandleFunc("POST /register", m.RateLimit(h.Auth.Register))
	mux.HandleFunc("POST /logout", m.RequireAuth(m.CSRFProtect(h.Auth.Logout)))
	mux.HandleFunc("GET /auth/{provider}/start", h.Auth.StartOAuth)
	mux.HandleFunc("GET /auth/{provider}/callback", m.RateLimit(h.Auth.OAuthCallback))
	mux.HandleFunc("GET /about", m.LoadAccount(h.Site.About))
	mux.HandleFunc("GET /contact", m.LoadAccount(h.Site.ShowContact))
	mux.HandleFunc("POST /contact", m.RateLimit(m.LoadAccount(h.Site.Contact)))

	// Own account
	mux.HandleFunc("GET /account", page(models.CapViewContent, h.Auth.ShowAccount))
	mux.HandleFunc("POST /account", form(models.CapViewContent, h.Auth.UpdateAccount))
	mux.HandleFunc("POST /account/password", m.RateLimit(form(models.CapViewContent, h.Auth.ChangePassword)))

	// Dashboards
	mux.HandleFunc("GET /teacher", page(models.CapViewAllStudents, h.Dashboard.Teacher))
	mux.HandleFunc("POST /students", form(models.CapEnrolStudents, h.Dashboard.EnrolStudent))
	mux.HandleFunc("POST /students/{studentID}/delete", form(models.CapEnrolStudents, h.Dashboard.RemoveStudent))
	mux.HandleFunc("GET /student", page(models.CapPractice, h.Dashboard.Student))
	mux.HandleFunc("GET /parent", page(models.CapViewChildren, h.Dashboard.Parent))

	// Practice
	mux.HandleFunc("GET /practice/{phraseID}", page(models.CapPractice, h.Practice.ShowPractice))
	mux.HandleFunc("POST /practice/{phraseID}/attempts", action(models.CapPractice, h.Practice.SubmitAttempt))
	mux.HandleFunc("POST /practice/{phraseID}/comments", form(models.CapComment, h.Practice.AddComment))
	mux.HandleFunc("POST /practice/{phraseID}/comments/{commentID}/delete", form(models.CapComment, h.Practice.DeleteComment))
	mux.HandleFunc("POST /practice/{phraseID}/like", action(models.CapViewContent, h.Practice.ToggleLike))

	// Leaderboard and progress
	mux.HandleFunc("GET /leaderboard", page(models.CapViewLeaderboard, h.Progress.Leaderboard))
	mux.HandleFunc("GET /leaderboard/data", data(models.CapViewLeaderboard, h.Progress.LeaderboardData))
	mux.HandleFunc("GET /progress/{studentID}", m.RequireAuth(h.Progress.Progress))
	mux.HandleFunc("GET /progress/{studentID}/data", m.RequireSession(h.Progress.ProgressData))

	// Phrase management
	mux.HandleFunc("GET /phrases", page(models.CapManagePhrases, h.Phrases.List))
	mux.HandleFunc("GET /phrases/new", page(models.CapManagePhrases, h.Phrases.New))
	mux.HandleFunc("POST /phrases", form(models.CapManagePhrases, h.Phrases.Create))
	mux.HandleFunc("GET /phrases/{phraseID}/edit", page(models.CapManagePhrases, h.Phrases.Edit))
	mux.HandleFunc("POST /phrases/{phraseID}", form(models.CapManagePhrases, h.Phrases.Update))
	mux.HandleFunc("POST /phrases/{phraseID}/delete", form(models.CapManagePhrases, h.Phrases.Delete))

	// Parent links
	mux.HandleFunc("GET /links", page(models.CapManageLinks, h.Links.Show))
	mux.HandleFunc("POST /links", form(models.CapManageLinks, h.Links.Link))
	mux.HandleFunc("POST /links/{studentID}/delete", form(models.CapManageLinks, h.Links.Unlink))

	// Examples and lessons
	mux.HandleFunc("GET /examples", m.LoadAccount(h.Content.Examples))
	mux.HandleFunc("GET /examples/{exampleID}", m.LoadAccount(h.Content.Example))
	mux.HandleFunc("GET /examples/new", page(models.CapManageContent, h.Content.NewExample))
	mux.HandleFunc("POST /examples", form(models.CapManageContent, h.Content.CreateExample))
	mux.HandleFunc("GET /examples/{exampleID}/edit", page(models.CapManageContent, h.Content.EditExample))
	mux.HandleFunc("POST /examples/{exampleID}", form(models.CapManageContent, h.Content.UpdateExample))
	mux.HandleFunc("POST /examples/{exampleID}/delete", form(models.CapManageContent, h.Content.DeleteExample))
	mux.HandleFunc("GET /lessons", m.LoadAccount(h.Content.Lessons))
	mux.HandleFunc("GET /lessons/{lessonID}", m.LoadAccount(h.Content.Lesson))
	mux.HandleFunc("GET /lessons/new", page(models.CapManageContent, h.Content.NewLesson))
	mux.HandleFunc("POST /lessons", form(models.CapManageContent, h.Content.CreateLesson))
	mux.HandleFunc("GET /lessons/{lessonID}/edit", page(models.CapManageContent, h.Content.EditLesson))
	mux.HandleFunc("POST /lessons/{lessonID}", form(models.CapManageContent, h.Content.UpdateLesson))
	mux.HandleFunc("POST /lessons/{lessonID}/delete", form(models.CapManageContent, h.Content.DeleteLesson))

	// Site settings
	mux.HandleFunc("GET /settings", page(models.CapManageSettings, h.Site.ShowSettings))
	mux.HandleFunc("POST /settings", form(models.CapManageSettings, h.Site.UpdateSettings))
	mux.HandleFunc("GET /settings/backup", page(models.CapManageSettings, h.Site.ExportBackup))
	mux.HandleFunc("POST /settings/backup", form(models.CapManageSettings, h.Site.ImportBackup))

	// Token API
	mux.HandleFunc("POST /api/token", m.RateLimit(h.API.Token))
	mux.HandleFunc("POST /api/phrases/{phraseID}/attempts", api(models.CapPractice, h.API.SubmitAttempt))
	mux.HandleFunc("GET /api/leaderboard", api(models.CapViewLeaderboard, h.API.Leaderboard))
	mux.HandleFunc("GET /api/me", m.BearerAuth(h.API.Me))

	return Recover(Logging(mux))
}
