package entity

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rocketscienceinc/gridgame-backend/internal/apperror"
	"github.com/rocketscienceinc/gridgame-backend/internal/board"
)

const botIDPrefix = "bot:"

// BotNames - the computer opponent picks one of these.
var BotNames = []string{"Tic", "Tac", "Toe"}

type Player struct {
	ID        string     `json:"id"`
	Name      string     `json:"name,omitempty"`
	Mark      board.Mark `json:"mark,omitempty"`
	GameID    string     `json:"game_id,omitempty"`
	Bot       bool       `json:"bot,omitempty"`
	Score     int        `json:"score"`
	MatchWins int        `json:"match_wins"`
}

func NewBotPlayer(gameID, name string, mark board.Mark) *Player {
	return &Player{
		ID:     botIDPrefix + gameID,
		Name:   name,
		Mark:   mark,
		GameID: gameID,
		Bot:    true,
	}
}

func (that *Player) IsBot() bool {
	return that.Bot
}

// LeaveGame detaches the player from its game. Match wins are kept.
func (that *Player) LeaveGame() {
	that.GameID = ""
	that.Mark = board.Empty
	that.Score = 0
}

// NormalizeName - capitalizes every word and collapses whitespace: "  ann  lee " is "Ann Lee".
func NormalizeName(raw string) (string, error) {
	words := strings.Fields(raw)
	if len(words) == 0 {
		return "", fmt.Errorf("%w: %q", apperror.ErrInvalidName, raw)
	}

	for i, word := range words {
		first, size := utf8.DecodeRuneInString(word)
		words[i] = string(unicode.ToUpper(first)) + strings.ToLower(word[size:])
	}

	return strings.Join(words, " "), nil
}
