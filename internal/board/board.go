package board

import (
	"encoding/json"
	"fmt"

	"github.com/rocketscienceinc/gridgame-backend/internal/apperror"
)

// Mark identifies the player occupying a cell. The board only compares marks.
type Mark string

// Empty is the mark of an unoccupied cell.
const Empty Mark = ""

// Board is a square grid with a fixed set of winning lines.
// It is not safe for concurrent use.
type Board struct {
	dimension int
	winLength int
	cells     []Mark
	lines     []Line
}

// New builds an empty dimension x dimension board where winLength marks in a row win.
func New(dimension, winLength int) (*Board, error) {
	lines, err := GenerateLines(dimension, winLength)
	if err != nil {
		return nil, err
	}

	return &Board{
		dimension: dimension,
		winLength: winLength,
		cells:     make([]Mark, dimension*dimension),
		lines:     lines,
	}, nil
}

func (that *Board) Dimension() int {
	return that.dimension
}

func (that *Board) WinLength() int {
	return that.winLength
}

// Lines returns a copy of the winning lines in enumeration order.
func (that *Board) Lines() []Line {
	lines := make([]Line, len(that.lines))
	for i, line := range that.lines {
		lines[i] = append(Line(nil), line...)
	}

	return lines
}

// Cells returns the marks of all cells ordered by position.
func (that *Board) Cells() []Mark {
	return append([]Mark(nil), that.cells...)
}

// Set writes mark into the cell at pos. An occupied cell is overwritten:
// preventing that is up to the caller's turn logic.
func (that *Board) Set(pos Position, mark Mark) error {
	index, err := that.index(pos)
	if err != nil {
		return err
	}

	that.cells[index] = mark

	return nil
}

func (that *Board) Get(pos Position) (Mark, error) {
	index, err := that.index(pos)
	if err != nil {
		return Empty, err
	}

	return that.cells[index], nil
}

func (that *Board) IsFull() bool {
	for _, cell := range that.cells {
		if cell == Empty {
			return false
		}
	}

	return true
}

// WinningMark returns the mark filling the first completed line, if any.
// Winner state is never cached, it always reflects the current cells.
func (that *Board) WinningMark() (Mark, bool) {
	for _, line := range that.lines {
		mark := that.at(line[0])
		if mark == Empty {
			continue
		}

		if that.count(line, mark) == that.winLength {
			return mark, true
		}
	}

	return Empty, false
}

// BestMove looks one move ahead: it completes a line for mark if it can,
// otherwise it blocks a line the opponent could complete next turn.
// The first qualifying line in enumeration order wins the tie-break.
func (that *Board) BestMove(mark, opponent Mark) (Position, bool) {
	if pos, ok := that.squareAtRisk(mark); ok {
		return pos, true
	}

	return that.squareAtRisk(opponent)
}

// Reset empties every cell. The winning lines are kept.
func (that *Board) Reset() {
	for i := range that.cells {
		that.cells[i] = Empty
	}
}

// EmptyPositions returns the unoccupied positions in ascending order.
func (that *Board) EmptyPositions() []Position {
	positions := make([]Position, 0, len(that.cells))
	for i, cell := range that.cells {
		if cell == Empty {
			positions = append(positions, Position(i+1))
		}
	}

	return positions
}

func (that *Board) squareAtRisk(mark Mark) (Position, bool) {
	if mark == Empty {
		return 0, false
	}

	for _, line := range that.lines {
		if that.count(line, mark) != that.winLength-1 || that.count(line, Empty) != 1 {
			continue
		}

		for _, pos := range line {
			if that.at(pos) == Empty {
				return pos, true
			}
		}
	}

	return 0, false
}

func (that *Board) count(line Line, mark Mark) int {
	n := 0
	for _, pos := range line {
		if that.at(pos) == mark {
			n++
		}
	}

	return n
}

// at reads a position already known to be valid.
func (that *Board) at(pos Position) Mark {
	return that.cells[pos-1]
}

func (that *Board) index(pos Position) (int, error) {
	if pos < 1 || int(pos) > len(that.cells) {
		return 0, fmt.Errorf("%w: %d is outside [1, %d]", apperror.ErrInvalidPosition, pos, len(that.cells))
	}

	return int(pos) - 1, nil
}

type boardJSON struct {
	Dimension int    `json:"dimension"`
	WinLength int    `json:"win_length"`
	Cells     []Mark `json:"cells"`
}

func (that *Board) MarshalJSON() ([]byte, error) {
	return json.Marshal(boardJSON{
		Dimension: that.dimension,
		WinLength: that.winLength,
		Cells:     that.cells,
	})
}

// UnmarshalJSON validates the stored parameters and regenerates the lines once.
func (that *Board) UnmarshalJSON(data []byte) error {
	var raw boardJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to unmarshal board: %w", err)
	}

	restored, err := New(raw.Dimension, raw.WinLength)
	if err != nil {
		return err
	}

	if len(raw.Cells) != len(restored.cells) {
		return fmt.Errorf("%w: %d cells stored for dimension %d", apperror.ErrInvalidConfiguration, len(raw.Cells), raw.Dimension)
	}

	copy(restored.cells, raw.Cells)
	*that = *restored

	return nil
}
