package service

import (
	"context"
	"fmt"
	"time"

	"alloneword/internal/models"
	"alloneword/internal/rank"
	"alloneword/internal/repository"
)

// ProgressChart is the daily series drawn on a student's progress graph
type ProgressChart struct {
	Labels   []string `json:"labels"`
	Attempts []int    `json:"attempts"`
	Correct  []int    `json:"correct"`
}

// ProgressService builds dashboards and progress data for students
type ProgressService struct {
	accounts *repository.AccountRepository
	attempts *repository.AttemptRepository
}

// NewProgressService creates a new progress service
func NewProgressService(accounts *repository.AccountRepository, attempts *repository.AttemptRepository) *ProgressService {
	return &ProgressService{accounts: accounts, attempts: attempts}
}

// Stats summarizes an account's attempts, current belt and awards
func (s *ProgressService) Stats(ctx context.Context, account *models.Account) (*models.StudentStats, error) {
	total, correct, err := s.attempts.Totals(ctx, account.ID)
	if err != nil {
		return nil, err
	}

	belt, err := rank.For(correct)
	if err != nil {
		return nil, err
	}

	awards, err := s.attempts.ListAwards(ctx, account.ID)
	if err != nil {
		return nil, err
	}

	return &models.StudentStats{
		Account:       *account,
		TotalAttempts: total,
		CorrectCount:  correct,
		Belt:          belt.Name,
		Awards:        awards,
	}, nil
}

func (s *ProgressService) statsFor(ctx context.Context, accounts []models.Account) ([]models.StudentStats, error) {
	stats := make([]models.StudentStats, 0, len(accounts))
	for i := range accounts {
		st, err := s.Stats(ctx, &accounts[i])
		if err != nil {
			return nil, fmt.Errorf("failed to load stats for %s: %w", accounts[i].Username, err)
		}
		stats = append(stats, *st)
	}
	return stats, nil
}

// AllStudents returns stats for every student, for the teacher dashboard
func (s *ProgressService) AllStudents(ctx context.Context) ([]models.StudentStats, error) {
	students, err := s.accounts.ListByRole(ctx, models.RoleStudent)
	if err != nil {
		return nil, err
	}
	return s.statsFor(ctx, students)
}

// Children returns stats for the students linked to a parent
func (s *ProgressService) Children(ctx context.Context, parentID int64) ([]models.StudentStats, error) {
	children, err := s.accounts.ListChildren(ctx, parentID)
	if err != nil {
		return nil, err
	}
	return s.statsFor(ctx, children)
}

// CanView reports whether viewer may see student's progress: staff see every
// student, parents their own children and students themselves.
func CanView(viewer, student *models.Account) bool {
	switch {
	case viewer.Role.Can(models.CapViewAllStudents):
		return true
	case viewer.ID == student.ID:
		return true
	case viewer.Role.Can(models.CapViewChildren):
		return student.ParentID != nil && *student.ParentID == viewer.ID
	}
	return false
}

// Student loads a student the viewer is allowed to see
func (s *ProgressService) Student(ctx context.Context, viewer *models.Account, studentID int64) (*models.Account, error) {
	student, err := s.accounts.GetByID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if student == nil || !student.IsStudent() {
		return nil, ErrAccountNotFound
	}
	if !CanView(viewer, student) {
		return nil, ErrForbidden
	}
	return student, nil
}

// Daily counts a student's attempts per day for the last days days ending at now.
// Days without attempts are included with zero counts.
func (s *ProgressService) Daily(ctx context.Context, studentID int64, days int, now time.Time) (*ProgressChart, error) {
	if days < 1 {
		days = 1
	}

	now = now.UTC()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -(days - 1))

	attempts, err := s.attempts.ListSince(ctx, studentID, start)
	if err != nil {
		return nil, err
	}

	chart := &ProgressChart{
		Labels:   make([]string, days),
		Attempts: make([]int, days),
		Correct:  make([]int, days),
	}
	index := make(map[string]int, days)
	for i := 0; i < days; i++ {
		label := start.AddDate(0, 0, i).Format(time.DateOnly)
		chart.Labels[i] = label
		index[label] = i
	}

	for _, a := range attempts {
		i, ok := index[a.AttemptedAt.UTC().Format(time.DateOnly)]
		if !ok {
			continue
		}
		chart.Attempts[i]++
		if a.IsCorrect {
			chart.Correct[i]++
		}
	}

	return chart, nil
}
