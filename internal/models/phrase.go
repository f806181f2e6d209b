package models

import "time"

// Phrase is a practice prompt. Audio and AcaraCode are optional.
type Phrase struct {
	ID        int64
	Text      string
	Audio     string
	AcaraCode string
	CreatedBy *int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PhraseWithStats adds engagement counts for list and practice pages
type PhraseWithStats struct {
	Phrase
	CreatorName  string
	LikesCount   int
	CommentCount int
	LikedByMe    bool
}
