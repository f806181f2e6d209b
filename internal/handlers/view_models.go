package handlers

import (
	"alloneword/internal/models"
	"alloneword/internal/rank"
	"alloneword/internal/service"
)

// Page carries what every rendered page needs for the layout
type Page struct {
	Title     string
	Account   *models.Account
	CSRFToken string
	Settings  *models.SiteSettings
	Error     string
	Success   string
}

type LoginViewData struct {
	Page
	OAuthProviders []OAuthProviderView
	Login          string
}

type RegisterViewData struct {
	Page
	OAuthProviders []OAuthProviderView
	Roles          []models.Role
	Form           service.RegisterInput
}

type AccountViewData struct {
	Page
	Form service.ProfileInput
}

type TeacherDashboardViewData struct {
	Page
	Students []models.StudentStats
	Enrolled *service.EnrolledStudent
}

type StudentDashboardViewData struct {
	Page
	Stats     *models.StudentStats
	NextBelt  string
	Remaining int
	HasNext   bool
	Phrases   []models.PhraseWithStats
}

type ParentDashboardViewData struct {
	Page
	Children []models.StudentStats
}

type PracticeViewData struct {
	Page
	Phrase     *models.PhraseWithStats
	Comments   []models.Comment
	CanComment bool
}

type PhrasesViewData struct {
	Page
	Phrases []models.PhraseWithStats
}

type PhraseFormViewData struct {
	Page
	Action string
	Form   service.PhraseInput
}

type LinksViewData struct {
	Page
	Students    []models.Account
	Parents     []models.Account
	ParentNames map[int64]string
}

type ExamplesViewData struct {
	Page
	Examples  []models.Example
	CanManage bool
}

type ExampleViewData struct {
	Page
	Example   *models.Example
	CanManage bool
}

type ExampleFormViewData struct {
	Page
	Action  string
	Form    service.ExampleInput
	Phrases []models.PhraseWithStats
}

type LessonsViewData struct {
	Page
	Lessons   []models.Lesson
	CanManage bool
}

type LessonViewData struct {
	Page
	Lesson    *models.Lesson
	CanManage bool
}

type LessonFormViewData struct {
	Page
	Action string
	Form   service.LessonInput
}

type SettingsViewData struct {
	Page
	Form service.SettingsInput
}

type LeaderboardViewData struct {
	Page
	Standings []rank.Standing
}

type ProgressViewData struct {
	Page
	Student *models.Account
	Stats   *models.StudentStats
}

type ContactViewData struct {
	Page
	Available bool
	Form      service.ContactInput
}
