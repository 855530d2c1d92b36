package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/gridgame-backend/internal/board"
	"github.com/rocketscienceinc/gridgame-backend/internal/entity"
)

func newBotGame(t *testing.T, marks map[board.Position]board.Mark) *entity.Game {
	t.Helper()

	game, err := entity.NewGame("g1", entity.WithBotType, 3, 3, 5)
	require.NoError(t, err)
	require.NoError(t, game.AddPlayer(&entity.Player{ID: "human", Mark: entity.PlayerX}))
	require.NoError(t, game.AddPlayer(entity.NewBotPlayer(game.ID, "Tac", entity.PlayerO)))

	for pos, mark := range marks {
		require.NoError(t, game.Board.Set(pos, mark))
	}
	game.Turn = entity.PlayerO

	return game
}

func firstChoice(int) int {
	return 0
}

func TestBotService_MakeTurn(t *testing.T) {
	t.Run("Takes the win", func(t *testing.T) {
		// Given: the bot holds two of the middle row while X threatens the top row
		game := newBotGame(t, map[board.Position]board.Mark{
			1: entity.PlayerX, 2: entity.PlayerX, 7: entity.PlayerX,
			4: entity.PlayerO, 5: entity.PlayerO,
		})

		// When: the bot moves
		err := (&botService{intn: firstChoice}).MakeTurn(game)

		// Then: it completes its row and wins
		require.NoError(t, err)
		assert.Equal(t, entity.PlayerO, game.Winner)
		assert.True(t, game.IsFinished())
	})

	t.Run("Blocks the threat", func(t *testing.T) {
		// Given: X holds two of the top row
		game := newBotGame(t, map[board.Position]board.Mark{
			1: entity.PlayerX, 2: entity.PlayerX,
			5: entity.PlayerO,
		})

		// When: the bot moves
		err := (&botService{intn: firstChoice}).MakeTurn(game)

		// Then: it blocks at 3 and passes the turn
		require.NoError(t, err)
		mark, _ := game.Board.Get(3)
		assert.Equal(t, entity.PlayerO, mark)
		assert.Equal(t, entity.PlayerX, game.Turn)
	})

	t.Run("Falls back to a random free cell", func(t *testing.T) {
		// Given: X on the center only
		game := newBotGame(t, map[board.Position]board.Mark{5: entity.PlayerX})

		var offered int
		bot := &botService{intn: func(n int) int {
			offered = n
			return n - 1
		}}

		// When: the bot moves
		require.NoError(t, bot.MakeTurn(game))

		// Then: it picked among the eight free cells
		assert.Equal(t, 8, offered)
		mark, _ := game.Board.Get(9)
		assert.Equal(t, entity.PlayerO, mark)
	})

	t.Run("Default random source only picks free cells", func(t *testing.T) {
		for range 20 {
			game := newBotGame(t, map[board.Position]board.Mark{5: entity.PlayerX})

			require.NoError(t, NewBotService().MakeTurn(game))

			center, _ := game.Board.Get(5)
			assert.Equal(t, entity.PlayerX, center)
			assert.Len(t, game.Board.EmptyPositions(), 7)
		}
	})

	t.Run("Error without a bot player", func(t *testing.T) {
		game, err := entity.NewGame("g1", entity.PrivateType, 3, 3, 5)
		require.NoError(t, err)

		err = NewBotService().MakeTurn(game)

		require.ErrorIs(t, err, ErrBotNotFound)
	})
}

func TestBotService_NewBot(t *testing.T) {
	for i, name := range entity.BotNames {
		// Given: a bot service whose random source picks index i
		bots := &botService{intn: func(n int) int {
			assert.Equal(t, len(entity.BotNames), n)
			return i
		}}

		// When: creating a bot
		bot := bots.NewBot("g1", entity.PlayerX)

		// Then: it carries the sampled name
		assert.Equal(t, name, bot.Name)
		assert.True(t, bot.IsBot())
		assert.Equal(t, entity.PlayerX, bot.Mark)
	}

	assert.Contains(t, entity.BotNames, NewBotService().NewBot("g1", entity.PlayerO).Name)
}
