package apperror

import "errors"

var (
	ErrGameFinished     = errors.New("game is already finished")
	ErrGameIsNotStarted = errors.New("game is not started")
	ErrGameInProgress   = errors.New("game is still in progress")
	ErrGameAlreadyFull  = errors.New("game already has two players")
	ErrNotYourTurn      = errors.New("it's not your turn")
	ErrNotInGame        = errors.New("player is not in a game")
	ErrAlreadyInGame    = errors.New("player is already in another game")
	ErrCellOccupied     = errors.New("cell is already occupied")
	ErrInvalidMark      = errors.New("mark must be a single non-space character")
	ErrInvalidGameType  = errors.New("unknown game type")
	ErrInvalidName      = errors.New("name must not be blank")

	ErrInvalidConfiguration = errors.New("invalid board configuration")
	ErrInvalidPosition      = errors.New("invalid board position")
)
