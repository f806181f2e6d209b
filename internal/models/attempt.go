package models

import "time"

// Attempt is one timed practice submission. Attempts are never updated.
type Attempt struct {
	ID          int64
	AccountID   int64
	PhraseID    int64
	IsCorrect   bool
	TimeTaken   int // seconds
	AttemptedAt time.Time
}

// RankAward records that an account reached a belt at least once
type RankAward struct {
	ID        int64
	AccountID int64
	Belt      string
	AwardedAt time.Time
}

// StudentStats summarizes a student's practice for dashboards
type StudentStats struct {
	Account       Account
	TotalAttempts int
	CorrectCount  int
	Belt          string
	Awards        []RankAward
}

// Accuracy is the share of correct attempts as a percentage
func (s StudentStats) Accuracy() float64 {
	if s.TotalAttempts == 0 {
		return 0
	}
	return float64(s.CorrectCount) / float64(s.TotalAttempts) * 100
}
