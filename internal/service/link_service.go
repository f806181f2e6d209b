package service

import (
	"context"
	"fmt"
	"log/slog"

	"alloneword/internal/models"
	"alloneword/internal/repository"
)

// LinkService manages the optional parent link on student accounts
type LinkService struct {
	accounts *repository.AccountRepository
	email    *EmailService
}

// NewLinkService creates a new link service
func NewLinkService(accounts *repository.AccountRepository, email *EmailService) *LinkService {
	return &LinkService{accounts: accounts, email: email}
}

// LinkOverview lists the accounts shown on the link management page
type LinkOverview struct {
	Students []models.Account
	Parents  []models.Account
}

// Overview returns every student and parent
func (s *LinkService) Overview(ctx context.Context) (*LinkOverview, error) {
	students, err := s.accounts.ListByRole(ctx, models.RoleStudent)
	if err != nil {
		return nil, err
	}
	parents, err := s.accounts.ListByRole(ctx, models.RoleParent)
	if err != nil {
		return nil, err
	}
	return &LinkOverview{Students: students, Parents: parents}, nil
}

// Link sets parentID as the parent of studentID
func (s *LinkService) Link(ctx context.Context, studentID, parentID int64) error {
	if studentID == parentID {
		return ErrSelfLink
	}

	student, err := s.accounts.GetByID(ctx, studentID)
	if err != nil {
		return err
	}
	parent, err := s.accounts.GetByID(ctx, parentID)
	if err != nil {
		return err
	}
	if student == nil || parent == nil {
		return ErrAccountNotFound
	}
	if !student.IsStudent() {
		return ErrNotStudent
	}
	if !parent.IsParent() {
		return ErrNotParent
	}

	if err := s.accounts.SetParent(ctx, studentID, &parentID); err != nil {
		return fmt.Errorf("failed to link student: %w", err)
	}
	slog.Info("student linked to parent", "student_id", studentID, "parent_id", parentID)

	if parent.Email != "" {
		if err := s.email.SendLinkEmail(ctx, parent.Email, parent.Name(), student.Name()); err != nil {
			slog.Warn("failed to send link email", "parent_id", parentID, "error", err)
		}
	}
	return nil
}

// Unlink clears a student's parent
func (s *LinkService) Unlink(ctx context.Context, studentID int64) error {
	student, err := s.accounts.GetByID(ctx, studentID)
	if err != nil {
		return err
	}
	if student == nil || !student.IsStudent() {
		return ErrAccountNotFound
	}
	if err := s.accounts.SetParent(ctx, studentID, nil); err != nil {
		return fmt.Errorf("failed to unlink student: %w", err)
	}
	return nil
}
