package rank

import (
	"fmt"
	"sort"
)

// Outcome is the part of an attempt the leaderboard looks at
type Outcome struct {
	Username  string
	IsCorrect bool
}

// Count is a username with its number of correct attempts
type Count struct {
	Username string
	Correct  int
}

// Standing is one leaderboard row
type Standing struct {
	Username string `json:"username"`
	Points   int    `json:"points"`
	Rank     string `json:"rank"`
}

// Aggregate counts correct outcomes per username and returns the sorted leaderboard.
// Usernames without a correct outcome are left out.
func Aggregate(outcomes []Outcome) []Standing {
	counts := make(map[string]int)
	for _, o := range outcomes {
		if o.IsCorrect {
			counts[o.Username]++
		}
	}

	grouped := make([]Count, 0, len(counts))
	for username, n := range counts {
		grouped = append(grouped, Count{Username: username, Correct: n})
	}

	// counts built above are never negative
	standings, _ := Standings(grouped)
	return standings
}

// Standings sorts pre-grouped counts by points desc, then username asc, and
// labels each row with its belt.
func Standings(counts []Count) ([]Standing, error) {
	sorted := make([]Count, len(counts))
	copy(sorted, counts)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Correct != sorted[j].Correct {
			return sorted[i].Correct > sorted[j].Correct
		}
		return sorted[i].Username < sorted[j].Username
	})

	out := make([]Standing, len(sorted))
	for i, c := range sorted {
		belt, err := For(c.Correct)
		if err != nil {
			return nil, fmt.Errorf("rank %s: %w", c.Username, err)
		}
		out[i] = Standing{Username: c.Username, Points: c.Correct, Rank: belt.Name}
	}
	return out, nil
}
