package service

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/rocketscienceinc/gridgame-backend/internal/board"
	"github.com/rocketscienceinc/gridgame-backend/internal/entity"
)

var (
	ErrBotNotFound      = errors.New("bot player not found")
	ErrNoAvailableMoves = errors.New("no available moves")
)

type BotService interface {
	NewBot(gameID string, mark board.Mark) *entity.Player
	MakeTurn(game *entity.Game) error
}

type botService struct {
	intn func(n int) int
}

func NewBotService() BotService {
	return &botService{
		intn: rand.Intn,
	}
}

// NewBot - a computer player with a name drawn from entity.BotNames.
func (that *botService) NewBot(gameID string, mark board.Mark) *entity.Player {
	name := entity.BotNames[that.intn(len(entity.BotNames))]

	return entity.NewBotPlayer(gameID, name, mark)
}

// MakeTurn - wins if it can, blocks if it must, otherwise plays a random free cell.
func (that *botService) MakeTurn(game *entity.Game) error {
	bot := game.Bot()
	if bot == nil {
		return ErrBotNotFound
	}

	pos, ok := game.Board.BestMove(bot.Mark, game.OpponentOf(bot.Mark))
	if !ok {
		available := game.Board.EmptyPositions()
		if len(available) == 0 {
			return ErrNoAvailableMoves
		}

		pos = available[that.intn(len(available))]
	}

	if err := game.MakeTurn(bot.Mark, pos); err != nil {
		return fmt.Errorf("bot failed to make turn: %w", err)
	}

	return nil
}
