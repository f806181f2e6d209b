package models

import "time"

// Comment is a note left on a phrase's practice page
type Comment struct {
	ID         int64
	AccountID  int64
	PhraseID   int64
	Body       string
	AuthorName string
	CreatedAt  time.Time
}

// Example is an entry in the examples hub
type Example struct {
	ID           int64
	Title        string
	Image        string
	Summary      string
	Content      string
	LinkPhraseID *int64
	ExternalURL  string
	CreatedAt    time.Time
}

// Lesson is a teacher-authored lesson with optional audio
type Lesson struct {
	ID          int64
	Title       string
	Description string
	Audio       string
	CreatedBy   *int64
	CreatedAt   time.Time
}
