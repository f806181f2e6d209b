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

// PhraseRepository handles database operations for phrases
type PhraseRepository struct {
	db database.DBTX
}

// NewPhraseRepository creates a new phrase repository
func NewPhraseRepository(db database.DBTX) *PhraseRepository {
	return &PhraseRepository{db: db}
}

const phraseColumns = `p.id, p.phrase_text, COALESCE(p.audio, ''), COALESCE(p.acara_code, ''), p.created_by, p.created_at, p.updated_at`

func scanPhrase(row rowScanner, extra ...any) (*models.Phrase, error) {
	p := &models.Phrase{}
	var createdBy sql.NullInt64
	dest := append([]any{&p.ID, &p.Text, &p.Audio, &p.AcaraCode, &createdBy, &p.CreatedAt, &p.UpdatedAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	p.CreatedBy = int64Ptr(createdBy)
	return p, nil
}

// Create inserts a new phrase
func (r *PhraseRepository) Create(ctx context.Context, p *models.Phrase) (*models.Phrase, error) {
	now := time.Now().UTC()
	query := `
		INSERT INTO phrases (phrase_text, audio, acara_code, created_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(ctx, query, p.Text, nullString(p.Audio), nullString(p.AcaraCode), nullInt64(p.CreatedBy), now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create phrase: %w", err)
	}

	created := *p
	created.ID = id
	created.CreatedAt = now
	created.UpdatedAt = now
	return &created, nil
}

// GetByID retrieves a phrase by ID
func (r *PhraseRepository) GetByID(ctx context.Context, id int64) (*models.Phrase, error) {
	query := "SELECT " + phraseColumns + " FROM phrases p WHERE p.id = ?"
	p, err := scanPhrase(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get phrase: %w", err)
	}
	return p, nil
}

// Exists reports whether a phrase with id exists
func (r *PhraseRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM phrases WHERE id = ?", id).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check phrase: %w", err)
	}
	return count > 0, nil
}

// Update changes a phrase's text, audio and curriculum code
func (r *PhraseRepository) Update(ctx context.Context, p *models.Phrase) error {
	query := "UPDATE phrases SET phrase_text = ?, audio = ?, acara_code = ?, updated_at = ? WHERE id = ?"
	result, err := r.db.ExecContext(ctx, query, p.Text, nullString(p.Audio), nullString(p.AcaraCode), time.Now().UTC(), p.ID)
	if err != nil {
		return fmt.Errorf("failed to update phrase: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a phrase along with its attempts, comments and likes
func (r *PhraseRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM phrases WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete phrase: %w", err)
	}
	return nil
}

const phraseStatsQuery = `
	SELECT ` + phraseColumns + `,
		COALESCE(NULLIF(a.display_name, ''), a.username, ''),
		(SELECT COUNT(*) FROM likes l WHERE l.phrase_id = p.id),
		(SELECT COUNT(*) FROM comments c WHERE c.phrase_id = p.id),
		(SELECT COUNT(*) FROM likes m WHERE m.phrase_id = p.id AND m.account_id = ?)
	FROM phrases p
	LEFT JOIN accounts a ON a.id = p.created_by
`

func scanPhraseWithStats(row rowScanner) (*models.PhraseWithStats, error) {
	var ps models.PhraseWithStats
	var likedByMe int
	p, err := scanPhrase(row, &ps.CreatorName, &ps.LikesCount, &ps.CommentCount, &likedByMe)
	if err != nil {
		return nil, err
	}
	ps.Phrase = *p
	ps.LikedByMe = likedByMe > 0
	return &ps, nil
}

// ListWithStats returns all phrases, newest first, with engagement counts as seen by viewerID
func (r *PhraseRepository) ListWithStats(ctx context.Context, viewerID int64) ([]models.PhraseWithStats, error) {
	rows, err := r.db.QueryContext(ctx, phraseStatsQuery+" ORDER BY p.created_at DESC, p.id DESC", viewerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query phrases: %w", err)
	}
	defer rows.Close()

	var phrases []models.PhraseWithStats
	for rows.Next() {
		ps, err := scanPhraseWithStats(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan phrase: %w", err)
		}
		phrases = append(phrases, *ps)
	}
	return phrases, rows.Err()
}

// GetWithStats returns one phrase with engagement counts as seen by viewerID
func (r *PhraseRepository) GetWithStats(ctx context.Context, id, viewerID int64) (*models.PhraseWithStats, error) {
	ps, err := scanPhraseWithStats(r.db.QueryRowContext(ctx, phraseStatsQuery+" WHERE p.id = ?", viewerID, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get phrase: %w", err)
	}
	return ps, nil
}
