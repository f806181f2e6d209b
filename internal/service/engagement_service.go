package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"alloneword/internal/database"
	"alloneword/internal/models"
	"alloneword/internal/repository"
	"alloneword/internal/validation"
)

// LikeResult is the like toggle response
type LikeResult struct {
	Liked      bool `json:"liked"`
	LikesCount int  `json:"likes_count"`
}

// CommentInput is the comment form
type CommentInput struct {
	Body string `json:"body" validate:"notblank,max=1000"`
}

// EngagementService handles comments and likes on phrases
type EngagementService struct {
	db         *database.DB
	phrases    *repository.PhraseRepository
	engagement *repository.EngagementRepository
}

// NewEngagementService creates a new engagement service
func NewEngagementService(db *database.DB) *EngagementService {
	return &EngagementService{
		db:         db,
		phrases:    repository.NewPhraseRepository(db),
		engagement: repository.NewEngagementRepository(db),
	}
}

func (s *EngagementService) requirePhrase(ctx context.Context, phraseID int64) error {
	exists, err := s.phrases.Exists(ctx, phraseID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrPhraseNotFound
	}
	return nil
}

// AddComment posts a comment unless it contains a word from the bad words list
func (s *EngagementService) AddComment(ctx context.Context, author *models.Account, phraseID int64, in CommentInput) (*models.Comment, error) {
	in.Body = strings.TrimSpace(in.Body)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if err := s.requirePhrase(ctx, phraseID); err != nil {
		return nil, err
	}

	found, err := s.db.FindBadWords(ctx, in.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to moderate comment: %w", err)
	}
	if len(found) > 0 {
		slog.Info("comment rejected by word filter", "account_id", author.ID, "phrase_id", phraseID, "matches", len(found))
		return nil, ErrCommentRejected
	}

	c, err := s.engagement.CreateComment(ctx, &models.Comment{AccountID: author.ID, PhraseID: phraseID, Body: in.Body})
	if err != nil {
		return nil, err
	}
	c.AuthorName = author.Name()
	return c, nil
}

// Comments returns a phrase's comments, newest first
func (s *EngagementService) Comments(ctx context.Context, phraseID int64) ([]models.Comment, error) {
	return s.engagement.ListComments(ctx, phraseID)
}

// DeleteComment removes a comment from a phrase. Staff can remove any comment,
// everyone else only their own.
func (s *EngagementService) DeleteComment(ctx context.Context, actor *models.Account, phraseID, commentID int64) error {
	c, err := s.engagement.GetComment(ctx, commentID)
	if err != nil {
		return err
	}
	if c == nil || c.PhraseID != phraseID {
		return ErrNotFound
	}
	if c.AccountID != actor.ID && !actor.IsStaff() {
		return ErrForbidden
	}

	if err := s.engagement.DeleteComment(ctx, commentID); err != nil {
		return err
	}
	slog.Info("comment deleted", "comment_id", commentID, "phrase_id", phraseID, "by", actor.ID)
	return nil
}

// ToggleLike likes the phrase, or removes the like if the account already liked it
func (s *EngagementService) ToggleLike(ctx context.Context, account *models.Account, phraseID int64) (*LikeResult, error) {
	if err := s.requirePhrase(ctx, phraseID); err != nil {
		return nil, err
	}

	removed, err := s.engagement.RemoveLike(ctx, account.ID, phraseID)
	if err != nil {
		return nil, err
	}
	liked := false
	if !removed {
		if _, err := s.engagement.AddLike(ctx, account.ID, phraseID); err != nil {
			return nil, err
		}
		liked = true
	}

	count, err := s.engagement.CountLikes(ctx, phraseID)
	if err != nil {
		return nil, err
	}
	return &LikeResult{Liked: liked, LikesCount: count}, nil
}
