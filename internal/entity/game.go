package entity

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rocketscienceinc/gridgame-backend/internal/apperror"
	"github.com/rocketscienceinc/gridgame-backend/internal/board"
)

const (
	StatusFinished = "finished"
	StatusOngoing  = "ongoing"
	StatusWaiting  = "waiting"

	PlayerX   board.Mark = "X"
	PlayerO   board.Mark = "O"
	PlayerTie board.Mark = "-"
)

const (
	PrivateType = "private"
	WithBotType = "bot"
)

const maxPlayers = 2

var (
	ErrUnknownGameStatus = errors.New("unknown game status")
	ErrMissingBoard      = errors.New("stored game has no board")
)

type Game struct {
	ID          string       `json:"id"`
	Type        string       `json:"type"`
	Status      string       `json:"status"`
	Turn        board.Mark   `json:"player_turn"`
	Winner      board.Mark   `json:"winner"`
	Board       *board.Board `json:"board"`
	Players     []*Player    `json:"players,omitempty"`
	WinsToMatch int          `json:"wins_to_match"`
	MatchOver   bool         `json:"match_over"`
}

// NewGame - creates a waiting game on an empty dimension x dimension board.
func NewGame(id, gameType string, dimension, winLength, winsToMatch int) (*Game, error) {
	grid, err := board.New(dimension, winLength)
	if err != nil {
		return nil, fmt.Errorf("failed to create board: %w", err)
	}

	return &Game{
		ID:          id,
		Type:        gameType,
		Status:      StatusWaiting,
		Board:       grid,
		WinsToMatch: winsToMatch,
	}, nil
}

// UnmarshalJSON - a game without a board cannot be played, so it is rejected on load.
func (that *Game) UnmarshalJSON(data []byte) error {
	type stored Game

	var raw stored
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if raw.Board == nil {
		return fmt.Errorf("%w: game id %s", ErrMissingBoard, raw.ID)
	}

	*that = Game(raw)

	return nil
}

// AddPlayer - seats a player. The first seated player moves first.
func (that *Game) AddPlayer(player *Player) error {
	if len(that.Players) >= maxPlayers {
		return fmt.Errorf("%w: game id %s", apperror.ErrGameAlreadyFull, that.ID)
	}

	player.GameID = that.ID
	that.Players = append(that.Players, player)

	if len(that.Players) == maxPlayers {
		that.Status = StatusOngoing
		that.Turn = that.Players[0].Mark
	}

	return nil
}

func (that *Game) MakeTurn(playerMark board.Mark, pos board.Position) error {
	if err := that.ConfirmOngoingState(); err != nil {
		return err
	}

	if that.Turn != playerMark {
		return apperror.ErrNotYourTurn
	}

	current, err := that.Board.Get(pos)
	if err != nil {
		return fmt.Errorf("failed to read cell: %w", err)
	}

	if current != board.Empty {
		return apperror.ErrCellOccupied
	}

	if err = that.Board.Set(pos, playerMark); err != nil {
		return fmt.Errorf("failed to mark cell: %w", err)
	}

	that.UpdateGameState()

	return nil
}

// UpdateGameState - finishes the game on a win or a full board, otherwise passes the turn.
func (that *Game) UpdateGameState() {
	if winner, ok := that.Board.WinningMark(); ok {
		that.finish(winner)
		return
	}

	if that.Board.IsFull() {
		that.finish(PlayerTie)
		return
	}

	that.Status = StatusOngoing
	that.Turn = that.OpponentOf(that.Turn)
}

func (that *Game) finish(winner board.Mark) {
	that.Winner = winner
	that.Status = StatusFinished
	that.Turn = board.Empty

	player := that.PlayerByMark(winner)
	if player == nil {
		return
	}

	player.Score++
	if that.WinsToMatch > 0 && player.Score >= that.WinsToMatch {
		player.MatchWins++
		that.MatchOver = true
	}
}

// Rematch - clears the board for the next game of the match.
// When the previous game decided the match, scores start over.
func (that *Game) Rematch() error {
	if !that.IsFinished() {
		return apperror.ErrGameInProgress
	}

	if that.MatchOver {
		for _, player := range that.Players {
			player.Score = 0
		}
		that.MatchOver = false
	}

	that.Board.Reset()
	that.Winner = board.Empty
	that.Status = StatusOngoing
	that.Turn = that.Players[0].Mark

	return nil
}

func (that *Game) PlayerByMark(mark board.Mark) *Player {
	for _, player := range that.Players {
		if player.Mark == mark {
			return player
		}
	}

	return nil
}

func (that *Game) PlayerByID(id string) *Player {
	for _, player := range that.Players {
		if player.ID == id {
			return player
		}
	}

	return nil
}

func (that *Game) Bot() *Player {
	for _, player := range that.Players {
		if player.IsBot() {
			return player
		}
	}

	return nil
}

// OpponentOf - returns the mark of the other seated player.
func (that *Game) OpponentOf(mark board.Mark) board.Mark {
	for _, player := range that.Players {
		if player.Mark != mark {
			return player.Mark
		}
	}

	return OpponentMark(mark)
}

func (that *Game) IsFinished() bool {
	return that.Status == StatusFinished
}

func (that *Game) IsOngoing() bool {
	return that.Status == StatusOngoing
}

func (that *Game) IsWaiting() bool {
	return that.Status == StatusWaiting
}

func (that *Game) ConfirmOngoingState() error {
	switch {
	case that.IsWaiting():
		return apperror.ErrGameIsNotStarted
	case that.IsFinished():
		return apperror.ErrGameFinished
	case that.IsOngoing():
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownGameStatus, that.Status)
	}
}

// ValidateGameType - only private and bot games exist.
func ValidateGameType(gameType string) error {
	switch gameType {
	case PrivateType, WithBotType:
		return nil
	default:
		return fmt.Errorf("%w: %q", apperror.ErrInvalidGameType, gameType)
	}
}

func (that *Game) IsWithBot() bool {
	return that.Type == WithBotType
}

// NormalizeMark - accepts a single visible character, upper-cased. Empty input means X.
func NormalizeMark(raw string) (board.Mark, error) {
	mark := strings.TrimSpace(raw)
	if mark == "" {
		return PlayerX, nil
	}

	if utf8.RuneCountInString(mark) != 1 {
		return board.Empty, fmt.Errorf("%w: %q", apperror.ErrInvalidMark, raw)
	}

	r, _ := utf8.DecodeRuneInString(mark)
	if !unicode.IsGraphic(r) || board.Mark(mark) == PlayerTie {
		return board.Empty, fmt.Errorf("%w: %q", apperror.ErrInvalidMark, raw)
	}

	return board.Mark(strings.ToUpper(mark)), nil
}

// OpponentMark - the computer plays O unless the human already did.
func OpponentMark(mark board.Mark) board.Mark {
	if mark == PlayerO {
		return PlayerX
	}

	return PlayerO
}
