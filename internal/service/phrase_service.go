package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"alloneword/internal/models"
	"alloneword/internal/repository"
	"alloneword/internal/validation"
)

// Speaker generates an audio file for text and returns its file name
type Speaker interface {
	Generate(ctx context.Context, text string) (string, error)
	Delete(filename string) error
}

// PhraseInput is the create and edit phrase form
type PhraseInput struct {
	Text      string `json:"text" validate:"notblank,max=500"`
	Audio     string `json:"audio" validate:"max=255"`
	AcaraCode string `json:"acara_code" validate:"max=50"`
}

// PhraseService manages phrases. A nil speaker disables generated audio.
type PhraseService struct {
	phrases *repository.PhraseRepository
	speaker Speaker
}

// NewPhraseService creates a new phrase service
func NewPhraseService(phrases *repository.PhraseRepository, speaker Speaker) *PhraseService {
	return &PhraseService{phrases: phrases, speaker: speaker}
}

func (in *PhraseInput) normalize() {
	in.Text = strings.TrimSpace(in.Text)
	in.Audio = strings.TrimSpace(in.Audio)
	in.AcaraCode = strings.TrimSpace(in.AcaraCode)
}

// audioFor returns the audio to store: the one given, else generated speech when enabled
func (s *PhraseService) audioFor(ctx context.Context, in PhraseInput) string {
	if in.Audio != "" || s.speaker == nil {
		return in.Audio
	}
	filename, err := s.speaker.Generate(ctx, in.Text)
	if err != nil {
		slog.Warn("failed to generate phrase audio", "text", in.Text, "error", err)
		return ""
	}
	return filename
}

// Create adds a phrase authored by creator
func (s *PhraseService) Create(ctx context.Context, creator *models.Account, in PhraseInput) (*models.Phrase, error) {
	in.normalize()
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	return s.phrases.Create(ctx, &models.Phrase{
		Text:      in.Text,
		Audio:     s.audioFor(ctx, in),
		AcaraCode: in.AcaraCode,
		CreatedBy: &creator.ID,
	})
}

// Get returns a phrase or ErrPhraseNotFound
func (s *PhraseService) Get(ctx context.Context, id int64) (*models.Phrase, error) {
	p, err := s.phrases.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrPhraseNotFound
	}
	return p, nil
}

// GetWithStats returns a phrase with engagement counts for viewer
func (s *PhraseService) GetWithStats(ctx context.Context, id, viewerID int64) (*models.PhraseWithStats, error) {
	p, err := s.phrases.GetWithStats(ctx, id, viewerID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrPhraseNotFound
	}
	return p, nil
}

// List returns every phrase with engagement counts for viewer
func (s *PhraseService) List(ctx context.Context, viewerID int64) ([]models.PhraseWithStats, error) {
	return s.phrases.ListWithStats(ctx, viewerID)
}

// Update edits a phrase. Changing the text regenerates audio unless audio is given.
func (s *PhraseService) Update(ctx context.Context, id int64, in PhraseInput) (*models.Phrase, error) {
	in.normalize()
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	audio := in.Audio
	if audio == "" && in.Text == p.Text {
		audio = p.Audio
	}
	if audio == "" {
		audio = s.audioFor(ctx, in)
	}

	p.Text = in.Text
	p.Audio = audio
	p.AcaraCode = in.AcaraCode
	if err := s.phrases.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to update phrase: %w", err)
	}
	return p, nil
}

// Delete removes a phrase and its attempts, comments and likes
func (s *PhraseService) Delete(ctx context.Context, id int64) error {
	p, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	return s.phrases.Delete(ctx, p.ID)
}
