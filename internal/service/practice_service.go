package service

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"alloneword/internal/database"
	"alloneword/internal/models"
	"alloneword/internal/rank"
	"alloneword/internal/repository"
	"alloneword/internal/validation"
)

var motivations = []string{
	"Excellent! Keep it up!",
	"Great job! You're improving!",
	"Well done! Practice makes perfect!",
	"You're getting better every time!",
	"Keep trying! Success is near!",
}

// AttemptInput is the payload of a practice submission. Pointers let
// validation tell a missing field from false or zero.
type AttemptInput struct {
	IsCorrect *bool `json:"is_correct" validate:"required"`
	TimeTaken *int  `json:"time_taken" validate:"required,min=0"`
}

// AttemptResult is returned to the client after a submission
type AttemptResult struct {
	TotalCorrect int    `json:"total_correct"`
	Rank         string `json:"rank"`
	NewAward     string `json:"new_award,omitempty"`
	Message      string `json:"message"`
}

// PracticeService records attempts and awards belts
type PracticeService struct {
	db       *database.DB
	accounts *repository.AccountRepository
	email    *EmailService
	pick     func(n int) int
}

// NewPracticeService creates a new practice service
func NewPracticeService(db *database.DB, email *EmailService) *PracticeService {
	return &PracticeService{
		db:       db,
		accounts: repository.NewAccountRepository(db),
		email:    email,
		pick:     rand.IntN,
	}
}

// Motivation returns a random encouragement message
func (s *PracticeService) Motivation() string {
	return motivations[s.pick(len(motivations))]
}

// SubmitAttempt records an attempt and, in the same transaction, awards the
// belt the account's correct count has reached if it is not already held.
// Nothing is written when the phrase does not exist or the input is invalid.
func (s *PracticeService) SubmitAttempt(ctx context.Context, account *models.Account, phraseID int64, in AttemptInput) (*AttemptResult, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	var (
		total   int
		belt    rank.Belt
		awarded bool
	)
	err := s.db.WithTx(ctx, func(tx *database.Tx) error {
		// Submissions for one account run one at a time, so each count sees
		// the attempts committed before it. This must be the first statement:
		// a mysql snapshot starts at the first plain read.
		found, err := database.LockRow(ctx, tx, "accounts", account.ID)
		if err != nil {
			return err
		}
		if !found {
			return ErrAccountNotFound
		}

		exists, err := repository.NewPhraseRepository(tx).Exists(ctx, phraseID)
		if err != nil {
			return err
		}
		if !exists {
			return ErrPhraseNotFound
		}

		attempts := repository.NewAttemptRepository(tx)
		if _, err := attempts.Create(ctx, &models.Attempt{
			AccountID: account.ID,
			PhraseID:  phraseID,
			IsCorrect: *in.IsCorrect,
			TimeTaken: *in.TimeTaken,
		}); err != nil {
			return err
		}

		total, err = attempts.CountCorrect(ctx, account.ID)
		if err != nil {
			return err
		}

		belt, err = rank.For(total)
		if err != nil {
			return err
		}

		held, err := attempts.AwardExists(ctx, account.ID, belt.Name)
		if err != nil {
			return err
		}
		if held {
			return nil
		}

		awarded, err = attempts.AwardBelt(ctx, account.ID, belt.Name)
		return err
	})
	if err != nil {
		return nil, err
	}

	result := &AttemptResult{
		TotalCorrect: total,
		Rank:         belt.Name,
		Message:      s.Motivation(),
	}
	if awarded {
		result.NewAward = belt.Name
		slog.Info("belt awarded", "account_id", account.ID, "belt", belt.Name, "total_correct", total)
		s.notifyParent(ctx, account, belt)
	}

	return result, nil
}

func (s *PracticeService) notifyParent(ctx context.Context, account *models.Account, belt rank.Belt) {
	if account.ParentID == nil || belt.Level() == 0 || !s.email.IsEnabled() {
		return
	}

	parent, err := s.accounts.GetByID(ctx, *account.ParentID)
	if err != nil {
		slog.Warn("failed to load parent for belt notice", "account_id", account.ID, "error", err)
		return
	}
	if parent == nil || parent.Email == "" {
		return
	}

	if err := s.email.SendBeltEmail(ctx, parent.Email, parent.Name(), account.Name(), belt.Name); err != nil {
		slog.Warn("failed to send belt email", "account_id", account.ID, "error", fmt.Errorf("belt %s: %w", belt.Name, err))
	}
}
