package service

import (
	"context"
	"errors"
	"strings"

	"alloneword/internal/models"
	"alloneword/internal/repository"
	"alloneword/internal/validation"
)

// ExampleInput is the examples hub form
type ExampleInput struct {
	Title        string `json:"title" validate:"notblank,max=200"`
	Image        string `json:"image" validate:"max=255"`
	Summary      string `json:"summary" validate:"max=300"`
	Content      string `json:"content"`
	LinkPhraseID *int64 `json:"link_phrase_id"`
	ExternalURL  string `json:"external_url" validate:"omitempty,url"`
}

// LessonInput is the lesson form
type LessonInput struct {
	Title       string `json:"title" validate:"notblank,max=200"`
	Description string `json:"description"`
	Audio       string `json:"audio" validate:"max=255"`
}

// ContentService manages examples and lessons
type ContentService struct {
	content *repository.ContentRepository
}

// NewContentService creates a new content service
func NewContentService(content *repository.ContentRepository) *ContentService {
	return &ContentService{content: content}
}

func (in ExampleInput) model() *models.Example {
	return &models.Example{
		Title:        strings.TrimSpace(in.Title),
		Image:        strings.TrimSpace(in.Image),
		Summary:      strings.TrimSpace(in.Summary),
		Content:      in.Content,
		LinkPhraseID: in.LinkPhraseID,
		ExternalURL:  strings.TrimSpace(in.ExternalURL),
	}
}

// mapNotFound replaces repository.ErrNotFound with target
func mapNotFound(err error, target error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return target
	}
	return err
}

// CreateExample adds an example to the hub
func (s *ContentService) CreateExample(ctx context.Context, in ExampleInput) (*models.Example, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	e, err := s.content.CreateExample(ctx, in.model())
	return e, mapNotFound(err, ErrPhraseNotFound)
}

// Example returns an example or ErrNotFound
func (s *ContentService) Example(ctx context.Context, id int64) (*models.Example, error) {
	e, err := s.content.GetExample(ctx, id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, ErrNotFound
	}
	return e, nil
}

// Examples lists the hub
func (s *ContentService) Examples(ctx context.Context) ([]models.Example, error) {
	return s.content.ListExamples(ctx)
}

// UpdateExample edits an example
func (s *ContentService) UpdateExample(ctx context.Context, id int64, in ExampleInput) (*models.Example, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if _, err := s.Example(ctx, id); err != nil {
		return nil, err
	}

	e := in.model()
	e.ID = id
	if err := s.content.UpdateExample(ctx, e); err != nil {
		return nil, mapNotFound(err, ErrPhraseNotFound)
	}
	return s.Example(ctx, id)
}

// DeleteExample removes an example
func (s *ContentService) DeleteExample(ctx context.Context, id int64) error {
	if _, err := s.Example(ctx, id); err != nil {
		return err
	}
	return s.content.DeleteExample(ctx, id)
}

// CreateLesson adds a lesson written by creator
func (s *ContentService) CreateLesson(ctx context.Context, creator *models.Account, in LessonInput) (*models.Lesson, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	return s.content.CreateLesson(ctx, &models.Lesson{
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Audio:       strings.TrimSpace(in.Audio),
		CreatedBy:   &creator.ID,
	})
}

// Lesson returns a lesson or ErrNotFound
func (s *ContentService) Lesson(ctx context.Context, id int64) (*models.Lesson, error) {
	l, err := s.content.GetLesson(ctx, id)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, ErrNotFound
	}
	return l, nil
}

// Lessons lists lessons, newest first
func (s *ContentService) Lessons(ctx context.Context) ([]models.Lesson, error) {
	return s.content.ListLessons(ctx)
}

// UpdateLesson edits a lesson
func (s *ContentService) UpdateLesson(ctx context.Context, id int64, in LessonInput) (*models.Lesson, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	l, err := s.Lesson(ctx, id)
	if err != nil {
		return nil, err
	}

	l.Title = strings.TrimSpace(in.Title)
	l.Description = in.Description
	l.Audio = strings.TrimSpace(in.Audio)
	if err := s.content.UpdateLesson(ctx, l); err != nil {
		return nil, mapNotFound(err, ErrNotFound)
	}
	return l, nil
}

// DeleteLesson removes a lesson
func (s *ContentService) DeleteLesson(ctx context.Context, id int64) error {
	if _, err := s.Lesson(ctx, id); err != nil {
		return err
	}
	return s.content.DeleteLesson(ctx, id)
}
