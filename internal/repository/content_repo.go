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

// ContentRepository handles the examples hub and lessons
type ContentRepository struct {
	db database.DBTX
}

// NewContentRepository creates a new content repository
func NewContentRepository(db database.DBTX) *ContentRepository {
	return &ContentRepository{db: db}
}

const exampleColumns = `id, title, COALESCE(image, ''), summary, content, link_phrase_id, COALESCE(external_url, ''), created_at`

func scanExample(row rowScanner) (*models.Example, error) {
	e := &models.Example{}
	var linkPhraseID sql.NullInt64
	if err := row.Scan(&e.ID, &e.Title, &e.Image, &e.Summary, &e.Content, &linkPhraseID, &e.ExternalURL, &e.CreatedAt); err != nil {
		return nil, err
	}
	e.LinkPhraseID = int64Ptr(linkPhraseID)
	return e, nil
}

// CreateExample inserts an example
func (r *ContentRepository) CreateExample(ctx context.Context, e *models.Example) (*models.Example, error) {
	now := time.Now().UTC()
	query := `
		INSERT INTO examples (title, image, summary, content, link_phrase_id, external_url, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(ctx, query, e.Title, nullString(e.Image), e.Summary, e.Content,
		nullInt64(e.LinkPhraseID), nullString(e.ExternalURL), now)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to create example: %w", err)
	}

	created := *e
	created.ID = id
	created.CreatedAt = now
	return &created, nil
}

// GetExample retrieves an example by ID
func (r *ContentRepository) GetExample(ctx context.Context, id int64) (*models.Example, error) {
	e, err := scanExample(r.db.QueryRowContext(ctx, "SELECT "+exampleColumns+" FROM examples WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get example: %w", err)
	}
	return e, nil
}

// ListExamples returns examples, newest first
func (r *ContentRepository) ListExamples(ctx context.Context) ([]models.Example, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+exampleColumns+" FROM examples ORDER BY created_at DESC, id DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to query examples: %w", err)
	}
	defer rows.Close()

	var examples []models.Example
	for rows.Next() {
		e, err := scanExample(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan example: %w", err)
		}
		examples = append(examples, *e)
	}
	return examples, rows.Err()
}

// UpdateExample saves changes to an example
func (r *ContentRepository) UpdateExample(ctx context.Context, e *models.Example) error {
	query := `
		UPDATE examples
		SET title = ?, image = ?, summary = ?, content = ?, link_phrase_id = ?, external_url = ?
		WHERE id = ?
	`
	result, err := r.db.ExecContext(ctx, query, e.Title, nullString(e.Image), e.Summary, e.Content,
		nullInt64(e.LinkPhraseID), nullString(e.ExternalURL), e.ID)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to update example: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteExample removes an example
func (r *ContentRepository) DeleteExample(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM examples WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete example: %w", err)
	}
	return nil
}

const lessonColumns = `id, title, description, COALESCE(audio, ''), created_by, created_at`

func scanLesson(row rowScanner) (*models.Lesson, error) {
	l := &models.Lesson{}
	var createdBy sql.NullInt64
	if err := row.Scan(&l.ID, &l.Title, &l.Description, &l.Audio, &createdBy, &l.CreatedAt); err != nil {
		return nil, err
	}
	l.CreatedBy = int64Ptr(createdBy)
	return l, nil
}

// CreateLesson inserts a lesson
func (r *ContentRepository) CreateLesson(ctx context.Context, l *models.Lesson) (*models.Lesson, error) {
	now := time.Now().UTC()
	query := "INSERT INTO lessons (title, description, audio, created_by, created_at) VALUES (?, ?, ?, ?, ?)"
	id, err := r.db.ExecReturningID(ctx, query, l.Title, l.Description, nullString(l.Audio), nullInt64(l.CreatedBy), now)
	if err != nil {
		return nil, fmt.Errorf("failed to create lesson: %w", err)
	}

	created := *l
	created.ID = id
	created.CreatedAt = now
	return &created, nil
}

// GetLesson retrieves a lesson by ID
func (r *ContentRepository) GetLesson(ctx context.Context, id int64) (*models.Lesson, error) {
	l, err := scanLesson(r.db.QueryRowContext(ctx, "SELECT "+lessonColumns+" FROM lessons WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lesson: %w", err)
	}
	return l, nil
}

// ListLessons returns lessons, newest first
func (r *ContentRepository) ListLessons(ctx context.Context) ([]models.Lesson, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+lessonColumns+" FROM lessons ORDER BY created_at DESC, id DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to query lessons: %w", err)
	}
	defer rows.Close()

	var lessons []models.Lesson
	for rows.Next() {
		l, err := scanLesson(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lesson: %w", err)
		}
		lessons = append(lessons, *l)
	}
	return lessons, rows.Err()
}

// UpdateLesson saves changes to a lesson
func (r *ContentRepository) UpdateLesson(ctx context.Context, l *models.Lesson) error {
	query := "UPDATE lessons SET title = ?, description = ?, audio = ? WHERE id = ?"
	result, err := r.db.ExecContext(ctx, query, l.Title, l.Description, nullString(l.Audio), l.ID)
	if err != nil {
		return fmt.Errorf("failed to update lesson: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteLesson removes a lesson
func (r *ContentRepository) DeleteLesson(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM lessons WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete lesson: %w", err)
	}
	return nil
}
