package board

import (
	"fmt"

	"github.com/rocketscienceinc/gridgame-backend/internal/apperror"
)

const (
	MinDimension = 3
	MinWinLength = 2
)

// Position is a 1-based linear cell index in [1, dimension*dimension].
type Position int

// Line is a run of winLength contiguous positions on one row, column or diagonal.
type Line []Position

// GenerateLines returns every winning line of a dimension x dimension board
// where winLength marks in a row win.
//
// For each shift the lines are produced as rows, columns, down-right diagonals
// and down-left diagonals. That order is the tie-break order used by
// WinningMark and BestMove.
func GenerateLines(dimension, winLength int) ([]Line, error) {
	if err := validate(dimension, winLength); err != nil {
		return nil, err
	}

	shifts := dimension - winLength + 1
	lines := make([]Line, 0, shifts*(2*dimension+2*shifts))

	for shift := range shifts {
		lines = appendRows(lines, dimension, winLength, shift)
		lines = appendColumns(lines, dimension, winLength, shift)
		lines = appendForwardDiagonals(lines, dimension, winLength, shift, shifts)
		lines = appendReverseDiagonals(lines, dimension, winLength, shift, shifts)
	}

	return lines, nil
}

func validate(dimension, winLength int) error {
	if dimension < MinDimension {
		return fmt.Errorf("%w: dimension %d is less than %d", apperror.ErrInvalidConfiguration, dimension, MinDimension)
	}

	if winLength < MinWinLength || winLength > dimension {
		return fmt.Errorf("%w: win length %d is outside [%d, %d]", apperror.ErrInvalidConfiguration, winLength, MinWinLength, dimension)
	}

	return nil
}

// appendRows - the shift is a column offset inside each row.
func appendRows(lines []Line, dimension, winLength, shift int) []Line {
	for row := range dimension {
		left := row*dimension + shift

		line := make(Line, 0, winLength)
		for step := 1; step <= winLength; step++ {
			line = append(line, Position(left+step))
		}
		lines = append(lines, line)
	}

	return lines
}

// appendColumns - the shift is a row offset inside each column.
func appendColumns(lines []Line, dimension, winLength, shift int) []Line {
	for column := 1; column <= dimension; column++ {
		top := column + shift*dimension

		line := make(Line, 0, winLength)
		for step := range winLength {
			line = append(line, Position(top+step*dimension))
		}
		lines = append(lines, line)
	}

	return lines
}

func appendForwardDiagonals(lines []Line, dimension, winLength, shift, shifts int) []Line {
	for column := 1; column <= shifts; column++ {
		start := column + shift*dimension

		line := make(Line, 0, winLength)
		for step := range winLength {
			line = append(line, Position(start+step*(dimension+1)))
		}
		lines = append(lines, line)
	}

	return lines
}

func appendReverseDiagonals(lines []Line, dimension, winLength, shift, shifts int) []Line {
	for column := range shifts {
		start := dimension - column + shift*dimension

		line := make(Line, 0, winLength)
		for step := range winLength {
			line = append(line, Position(start+step*(dimension-1)))
		}
		lines = append(lines, line)
	}

	return lines
}
