package repository

import (
	"context"
	"fmt"
	"time"

	"alloneword/internal/database"
	"alloneword/internal/models"
	"alloneword/internal/rank"
)

// AttemptRepository handles attempts and rank awards. Attempts are insert-only.
type AttemptRepository struct {
	db database.DBTX
}

// NewAttemptRepository creates a new attempt repository
func NewAttemptRepository(db database.DBTX) *AttemptRepository {
	return &AttemptRepository{db: db}
}

// Create records an attempt
func (r *AttemptRepository) Create(ctx context.Context, a *models.Attempt) (*models.Attempt, error) {
	attemptedAt := a.AttemptedAt
	if attemptedAt.IsZero() {
		attemptedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO attempts (account_id, phrase_id, is_correct, time_taken, attempted_at)
		VALUES (?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(ctx, query, a.AccountID, a.PhraseID, a.IsCorrect, a.TimeTaken, attemptedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create attempt: %w", err)
	}

	created := *a
	created.ID = id
	created.AttemptedAt = attemptedAt
	return &created, nil
}

// CountCorrect returns the number of correct attempts made by an account
func (r *AttemptRepository) CountCorrect(ctx context.Context, accountID int64) (int, error) {
	var count int
	query := "SELECT COUNT(*) FROM attempts WHERE account_id = ? AND is_correct = ?"
	if err := r.db.QueryRowContext(ctx, query, accountID, true).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count correct attempts: %w", err)
	}
	return count, nil
}

// Totals returns the total and correct attempt counts for an account
func (r *AttemptRepository) Totals(ctx context.Context, accountID int64) (total, correct int, err error) {
	query := `
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN is_correct = ? THEN 1 ELSE 0 END), 0)
		FROM attempts
		WHERE account_id = ?
	`
	if err := r.db.QueryRowContext(ctx, query, true, accountID).Scan(&total, &correct); err != nil {
		return 0, 0, fmt.Errorf("failed to total attempts: %w", err)
	}
	return total, correct, nil
}

// ListSince returns an account's attempts made at or after since, oldest first
func (r *AttemptRepository) ListSince(ctx context.Context, accountID int64, since time.Time) ([]models.Attempt, error) {
	query := `
		SELECT id, account_id, phrase_id, is_correct, time_taken, attempted_at
		FROM attempts
		WHERE account_id = ? AND attempted_at >= ?
		ORDER BY attempted_at, id
	`
	rows, err := r.db.QueryContext(ctx, query, accountID, since.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to query attempts: %w", err)
	}
	defer rows.Close()

	var attempts []models.Attempt
	for rows.Next() {
		var a models.Attempt
		if err := rows.Scan(&a.ID, &a.AccountID, &a.PhraseID, &a.IsCorrect, &a.TimeTaken, &a.AttemptedAt); err != nil {
			return nil, fmt.Errorf("failed to scan attempt: %w", err)
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

// CorrectCounts groups correct attempts by username for the leaderboard.
// Accounts with no correct attempts are not listed.
func (r *AttemptRepository) CorrectCounts(ctx context.Context) ([]rank.Count, error) {
	query := `
		SELECT a.username, COUNT(*)
		FROM attempts t
		JOIN accounts a ON a.id = t.account_id
		WHERE t.is_correct = ?
		GROUP BY a.username
	`
	rows, err := r.db.QueryContext(ctx, query, true)
	if err != nil {
		return nil, fmt.Errorf("failed to count correct attempts: %w", err)
	}
	defer rows.Close()

	var counts []rank.Count
	for rows.Next() {
		var c rank.Count
		if err := rows.Scan(&c.Username, &c.Correct); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// AwardExists reports whether the account already holds the belt
func (r *AttemptRepository) AwardExists(ctx context.Context, accountID int64, belt string) (bool, error) {
	var count int
	query := "SELECT COUNT(*) FROM rank_awards WHERE account_id = ? AND belt = ?"
	if err := r.db.QueryRowContext(ctx, query, accountID, belt).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check award: %w", err)
	}
	return count > 0, nil
}

// AwardBelt records the belt for the account unless it is already held.
// It reports whether a new award row was written.
func (r *AttemptRepository) AwardBelt(ctx context.Context, accountID int64, belt string) (bool, error) {
	query := r.db.GetDialect().InsertIgnore("rank_awards", "account_id", "belt", "awarded_at")
	result, err := r.db.ExecContext(ctx, query, accountID, belt, time.Now().UTC())
	if err != nil {
		if database.IsUniqueViolation(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to record award: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to record award: %w", err)
	}
	return n > 0, nil
}

// ListAwards returns an account's awards in the order they were earned
func (r *AttemptRepository) ListAwards(ctx context.Context, accountID int64) ([]models.RankAward, error) {
	query := `
		SELECT id, account_id, belt, awarded_at
		FROM rank_awards
		WHERE account_id = ?
		ORDER BY awarded_at, id
	`
	rows, err := r.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query awards: %w", err)
	}
	defer rows.Close()

	var awards []models.RankAward
	for rows.Next() {
		var a models.RankAward
		if err := rows.Scan(&a.ID, &a.AccountID, &a.Belt, &a.AwardedAt); err != nil {
			return nil, fmt.Errorf("failed to scan award: %w", err)
		}
		awards = append(awards, a)
	}
	return awards, rows.Err()
}
