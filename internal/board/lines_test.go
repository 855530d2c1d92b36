package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/gridgame-backend/internal/apperror"
)

func TestGenerateLines(t *testing.T) {
	t.Run("Classic board has eight lines", func(t *testing.T) {
		// When: generating lines for a 3x3 board with three to win
		lines, err := GenerateLines(3, 3)
		require.NoError(t, err)

		// Then: three rows, three columns and two diagonals are produced in order
		expected := []Line{
			{1, 2, 3}, {4, 5, 6}, {7, 8, 9},
			{1, 4, 7}, {2, 5, 8}, {3, 6, 9},
			{1, 5, 9},
			{3, 5, 7},
		}
		assert.Equal(t, expected, lines)
	})

	t.Run("Shifted lines on a 4x4 board with three to win", func(t *testing.T) {
		// When: generating lines for a 4x4 board with three to win
		lines, err := GenerateLines(4, 3)
		require.NoError(t, err)

		// Then: every row, column and diagonal appears at both shifts
		assert.Len(t, lines, 24)
		for _, line := range lines {
			assert.Len(t, line, 3)
		}

		assert.Contains(t, lines, Line{2, 3, 4})
		assert.Contains(t, lines, Line{5, 9, 13})
		assert.Contains(t, lines, Line{6, 11, 16})
		assert.Contains(t, lines, Line{8, 11, 14})
		assert.Contains(t, lines, Line{3, 6, 9})
	})

	t.Run("Line count follows the shift formula", func(t *testing.T) {
		for _, tc := range []struct {
			dimension, winLength int
		}{
			{3, 2}, {3, 3}, {4, 2}, {5, 3}, {5, 5}, {7, 4},
		} {
			// When: generating lines for the configuration
			lines, err := GenerateLines(tc.dimension, tc.winLength)
			require.NoError(t, err)

			// Then: there are shifts*(2*dimension+2*shifts) lines of winLength valid positions
			shifts := tc.dimension - tc.winLength + 1
			assert.Len(t, lines, shifts*(2*tc.dimension+2*shifts))

			for _, line := range lines {
				require.Len(t, line, tc.winLength)
				for _, pos := range line {
					assert.GreaterOrEqual(t, int(pos), 1)
					assert.LessOrEqual(t, int(pos), tc.dimension*tc.dimension)
				}
			}
		}
	})

	t.Run("Every line is contiguous and collinear", func(t *testing.T) {
		// Given: lines of a 6x6 board with four to win
		const dimension = 6
		lines, err := GenerateLines(dimension, 4)
		require.NoError(t, err)

		for _, line := range lines {
			// When: decoding each step into row and column deltas
			dRow, dCol := delta(line[0], line[1], dimension)

			// Then: the step is one of the four directions and stays the same along the line
			assert.Contains(t, [][2]int{{0, 1}, {1, 0}, {1, 1}, {1, -1}}, [2]int{dRow, dCol}, "line %v", line)
			for i := 1; i < len(line)-1; i++ {
				r, c := delta(line[i], line[i+1], dimension)
				assert.Equal(t, [2]int{dRow, dCol}, [2]int{r, c}, "line %v", line)
			}
		}
	})

	t.Run("Is deterministic", func(t *testing.T) {
		// When: generating the same configuration twice
		first, err := GenerateLines(5, 3)
		require.NoError(t, err)
		second, err := GenerateLines(5, 3)
		require.NoError(t, err)

		// Then: the lines are identical
		assert.ElementsMatch(t, first, second)
	})

	t.Run("Produces no duplicate lines", func(t *testing.T) {
		lines, err := GenerateLines(5, 2)
		require.NoError(t, err)

		seen := make(map[[2]Position]bool)
		for _, line := range lines {
			key := [2]Position{line[0], line[1]}
			assert.False(t, seen[key], "duplicate line %v", line)
			seen[key] = true
		}
	})

	t.Run("Rejects invalid configurations", func(t *testing.T) {
		for _, tc := range []struct {
			dimension, winLength int
		}{
			{2, 2}, {0, 0}, {3, 1}, {3, 4}, {-3, 2},
		} {
			// When: generating lines for an invalid configuration
			lines, err := GenerateLines(tc.dimension, tc.winLength)

			// Then: a configuration error is returned
			require.ErrorIs(t, err, apperror.ErrInvalidConfiguration)
			assert.Nil(t, lines)
		}
	})
}

func delta(from, to Position, dimension int) (int, int) {
	fromRow, fromCol := int(from-1)/dimension, int(from-1)%dimension
	toRow, toCol := int(to-1)/dimension, int(to-1)%dimension

	return toRow - fromRow, toCol - fromCol
}
