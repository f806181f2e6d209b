package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"alloneword/internal/database"
	"alloneword/internal/models"
)

// EngagementRepository handles comments and likes on phrases
type EngagementRepository struct {
	db database.DBTX
}

// NewEngagementRepository creates a new engagement repository
func NewEngagementRepository(db database.DBTX) *EngagementRepository {
	return &EngagementRepository{db: db}
}

// CreateComment adds a comment to a phrase
func (r *EngagementRepository) CreateComment(ctx context.Context, c *models.Comment) (*models.Comment, error) {
	now := time.Now().UTC()
	query := "INSERT INTO comments (account_id, phrase_id, body, created_at) VALUES (?, ?, ?, ?)"
	id, err := r.db.ExecReturningID(ctx, query, c.AccountID, c.PhraseID, c.Body, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	created := *c
	created.ID = id
	created.CreatedAt = now
	return &created, nil
}

// ListComments returns a phrase's comments, newest first
func (r *EngagementRepository) ListComments(ctx context.Context, phraseID int64) ([]models.Comment, error) {
	query := `
		SELECT c.id, c.account_id, c.phrase_id, c.body, COALESCE(NULLIF(a.display_name, ''), a.username), c.created_at
		FROM comments c
		JOIN accounts a ON a.id = c.account_id
		WHERE c.phrase_id = ?
		ORDER BY c.created_at DESC, c.id DESC
	`
	rows, err := r.db.QueryContext(ctx, query, phraseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query comments: %w", err)
	}
	defer rows.Close()

	var comments []models.Comment
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.AccountID, &c.PhraseID, &c.Body, &c.AuthorName, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// GetComment retrieves a comment by ID
func (r *EngagementRepository) GetComment(ctx context.Context, id int64) (*models.Comment, error) {
	query := `
		SELECT c.id, c.account_id, c.phrase_id, c.body, COALESCE(NULLIF(a.display_name, ''), a.username), c.created_at
		FROM comments c
		JOIN accounts a ON a.id = c.account_id
		WHERE c.id = ?
	`
	var c models.Comment
	err := r.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.AccountID, &c.PhraseID, &c.Body, &c.AuthorName, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}
	return &c, nil
}

// DeleteComment removes a comment
func (r *EngagementRepository) DeleteComment(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM comments WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	return nil
}

// AddLike records a like, returning false if the account already liked the phrase
func (r *EngagementRepository) AddLike(ctx context.Context, accountID, phraseID int64) (bool, error) {
	query := r.db.GetDialect().InsertIgnore("likes", "account_id", "phrase_id", "created_at")
	result, err := r.db.ExecContext(ctx, query, accountID, phraseID, time.Now().UTC())
	if err != nil {
		if database.IsUniqueViolation(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to add like: %w", err)
	}
	n, _ := result.RowsAffected()
	return n > 0, nil
}

// RemoveLike deletes a like, returning false if there was none
func (r *EngagementRepository) RemoveLike(ctx context.Context, accountID, phraseID int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM likes WHERE account_id = ? AND phrase_id = ?", accountID, phraseID)
	if err != nil {
		return false, fmt.Errorf("failed to remove like: %w", err)
	}
	n, _ := result.RowsAffected()
	return n > 0, nil
}

// CountLikes returns the number of likes on a phrase
func (r *EngagementRepository) CountLikes(ctx context.Context, phraseID int64) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM likes WHERE phrase_id = ?", phraseID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count likes: %w", err)
	}
	return count, nil
}
