package rank

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFor(t *testing.T) {
	tests := []struct {
		correct int
		want    string
	}{
		{0, "White"},
		{4, "White"},
		{5, "Yellow"},
		{9, "Yellow"},
		{10, "Green"},
		{19, "Green"},
		{20, "Blue"},
		{34, "Blue"},
		{35, "Brown"},
		{49, "Brown"},
		{50, "Black"},
		{1000, "Black"},
	}

	for _, tt := range tests {
		belt, err := For(tt.correct)
		require.NoError(t, err)
		assert.Equal(t, tt.want, belt.Name, "For(%d)", tt.correct)
	}
}

func TestForRejectsNegative(t *testing.T) {
	_, err := For(-1)
	assert.ErrorIs(t, err, ErrNegativeCount)
}

func TestForIsMonotonic(t *testing.T) {
	prev, err := For(0)
	require.NoError(t, err)

	for n := 1; n <= 200; n++ {
		cur, err := For(n)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, cur.Level(), prev.Level(), "belt dropped between %d and %d", n-1, n)
		prev = cur
	}
}

func TestNext(t *testing.T) {
	tests := []struct {
		correct   int
		want      string
		remaining int
		ok        bool
	}{
		{0, "Yellow", 5, true},
		{4, "Yellow", 1, true},
		{5, "Green", 5, true},
		{49, "Black", 1, true},
		{50, "", 0, false},
	}

	for _, tt := range tests {
		next, remaining, ok := Next(tt.correct)
		assert.Equal(t, tt.ok, ok, "Next(%d) ok", tt.correct)
		assert.Equal(t, tt.want, next.Name, "Next(%d)", tt.correct)
		assert.Equal(t, tt.remaining, remaining, "Next(%d) remaining", tt.correct)
	}
}

func TestBeltsIsACopy(t *testing.T) {
	belts := Belts()
	require.Len(t, belts, 6)
	belts[0].Name = "Purple"

	belt, err := For(0)
	require.NoError(t, err)
	assert.Equal(t, "White", belt.Name)
}

func TestLevelsFollowTable(t *testing.T) {
	for i, b := range Belts() {
		assert.Equal(t, i, b.Level(), b.Name)
	}
	assert.Equal(t, "White", Lowest().Name)
	assert.Zero(t, Lowest().Threshold)
}
