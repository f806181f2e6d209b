// Package rank derives belt ranks from correct-attempt counts and builds the leaderboard.
package rank

import "errors"

// ErrNegativeCount is returned for a correct-attempt count below zero
var ErrNegativeCount = errors.New("correct count cannot be negative")

// Belt is a rank label reached once a student has Threshold correct attempts
type Belt struct {
	Name      string
	Threshold int
	level     int
}

// Level is the belt's position in the table, 0 for White. Higher is better.
func (b Belt) Level() int {
	return b.level
}

func (b Belt) String() string {
	return b.Name
}

// table is ordered ascending by threshold
var table = []Belt{
	{"White", 0, 0},
	{"Yellow", 5, 1},
	{"Green", 10, 2},
	{"Blue", 20, 3},
	{"Brown", 35, 4},
	{"Black", 50, 5},
}

// Belts returns a copy of the belt table in ascending order
func Belts() []Belt {
	out := make([]Belt, len(table))
	copy(out, table)
	return out
}

// Lowest is the belt every account starts with
func Lowest() Belt {
	return table[0]
}

// For returns the highest belt whose threshold does not exceed correct
func For(correct int) (Belt, error) {
	if correct < 0 {
		return Belt{}, ErrNegativeCount
	}

	result := Lowest()
	for _, b := range table {
		if b.Threshold <= correct {
			result = b
		}
	}
	return result, nil
}

// Next returns the belt after the one earned at correct and how many more
// correct attempts it needs. ok is false once the top belt is reached.
func Next(correct int) (next Belt, remaining int, ok bool) {
	if correct < 0 {
		correct = 0
	}
	for _, b := range table {
		if b.Threshold > correct {
			return b, b.Threshold - correct, true
		}
	}
	return Belt{}, 0, false
}
