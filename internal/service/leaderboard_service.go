package service

import (
	"context"
	"fmt"

	"alloneword/internal/rank"
	"alloneword/internal/repository"
)

// LeaderboardService ranks accounts by correct attempts
type LeaderboardService struct {
	attempts *repository.AttemptRepository
}

// NewLeaderboardService creates a new leaderboard service
func NewLeaderboardService(attempts *repository.AttemptRepository) *LeaderboardService {
	return &LeaderboardService{attempts: attempts}
}

// Standings returns every account with at least one correct attempt, most points first
func (s *LeaderboardService) Standings(ctx context.Context) ([]rank.Standing, error) {
	counts, err := s.attempts.CorrectCounts(ctx)
	if err != nil {
		return nil, err
	}

	standings, err := rank.Standings(counts)
	if err != nil {
		return nil, fmt.Errorf("failed to rank leaderboard: %w", err)
	}
	if standings == nil {
		standings = []rank.Standing{}
	}
	return standings, nil
}
