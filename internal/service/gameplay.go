package service

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"sync"

	"github.com/rocketscienceinc/gridgame-backend/internal/apperror"
	"github.com/rocketscienceinc/gridgame-backend/internal/board"
	"github.com/rocketscienceinc/gridgame-backend/internal/entity"
	"github.com/rocketscienceinc/gridgame-backend/internal/repository"
)

const gameLockStripes = 64

// Defaults - board and match parameters used when a request leaves them out.
type Defaults struct {
	Dimension   int
	WinLength   int
	WinsToMatch int
}

// GameOptions - parameters of a new game. Zero values fall back to Defaults.
type GameOptions struct {
	Type      string
	Dimension int
	WinLength int
	Mark      string
}

type GamePlayService interface {
	CreateGame(ctx context.Context, playerID string, opts GameOptions) (*entity.Game, error)
	JoinGame(ctx context.Context, gameID, playerID string) (*entity.Game, error)
	MakeTurn(ctx context.Context, playerID string, pos board.Position) (*entity.Game, error)
	Rematch(ctx context.Context, playerID string) (*entity.Game, error)
	LeaveGame(ctx context.Context, playerID string) (*entity.Game, error)

	GetGame(ctx context.Context, playerID string) (*entity.Game, error)
	GetGameByID(ctx context.Context, gameID string) (*entity.Game, error)
}

type gamePlayService struct {
	logger   *slog.Logger
	defaults Defaults

	playerService PlayerService
	gameService   GameService
	botService    BotService

	// read-modify-write of one game is serialized on its stripe
	locks [gameLockStripes]sync.Mutex
}

func NewGamePlayService(
	logger *slog.Logger,
	defaults Defaults,
	playerService PlayerService,
	gameService GameService,
	botService BotService,
) GamePlayService {
	return &gamePlayService{
		logger:        logger.With("component", "gameplay"),
		defaults:      defaults,
		playerService: playerService,
		gameService:   gameService,
		botService:    botService,
	}
}

func (that *gamePlayService) CreateGame(ctx context.Context, playerID string, opts GameOptions) (*entity.Game, error) {
	log := that.logger.With("method", "CreateGame", "playerID", playerID)

	player, err := that.playerService.GetPlayerByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player by id: %w", err)
	}

	if player.GameID != "" {
		game, err := that.gameService.GetGameByID(ctx, player.GameID)
		if err == nil {
			return game, nil
		}

		if !errors.Is(err, repository.ErrGameNotFound) {
			return nil, fmt.Errorf("failed to get current game: %w", err)
		}

		log.Info("current game expired, creating a new one", "gameID", player.GameID)
	}

	mark, err := entity.NormalizeMark(opts.Mark)
	if err != nil {
		return nil, err
	}

	opts = that.withDefaults(opts)
	if err = entity.ValidateGameType(opts.Type); err != nil {
		return nil, err
	}

	game, err := that.gameService.CreateGame(ctx, opts.Type, opts.Dimension, opts.WinLength, that.defaults.WinsToMatch)
	if err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	player.Mark = mark
	player.Score = 0
	if err = game.AddPlayer(player); err != nil {
		return nil, fmt.Errorf("failed to seat player: %w", err)
	}

	if game.IsWithBot() {
		bot := that.botService.NewBot(game.ID, entity.OpponentMark(mark))
		if err = game.AddPlayer(bot); err != nil {
			return nil, fmt.Errorf("failed to add bot to game: %w", err)
		}
	}

	if err = that.playerService.UpdatePlayer(ctx, player); err != nil {
		return nil, fmt.Errorf("failed to seat player: %w", err)
	}

	if err = that.saveGame(ctx, game); err != nil {
		return nil, err
	}

	log.Info("game created", "gameID", game.ID, "type", game.Type,
		"dimension", game.Board.Dimension(), "winLength", game.Board.WinLength())

	return game, nil
}

func (that *gamePlayService) JoinGame(ctx context.Context, gameID, playerID string) (*entity.Game, error) {
	unlock := that.lock(gameID)
	defer unlock()

	game, err := that.gameService.GetGameByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game by id: %w", err)
	}

	player, err := that.playerService.GetPlayerByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player by id: %w", err)
	}

	if game.PlayerByID(player.ID) != nil {
		return game, nil
	}

	if err = that.confirmFree(ctx, player); err != nil {
		return nil, err
	}

	if len(game.Players) > 0 {
		player.Mark = entity.OpponentMark(game.Players[0].Mark)
	}
	player.Score = 0

	if err = game.AddPlayer(player); err != nil {
		return nil, err
	}

	if err = that.playerService.UpdatePlayer(ctx, player); err != nil {
		return nil, fmt.Errorf("failed to seat player: %w", err)
	}

	if err = that.saveGame(ctx, game); err != nil {
		return nil, err
	}

	that.logger.Info("player joined", "method", "JoinGame", "gameID", game.ID, "playerID", player.ID)

	return game, nil
}

func (that *gamePlayService) MakeTurn(ctx context.Context, playerID string, pos board.Position) (*entity.Game, error) {
	log := that.logger.With("method", "MakeTurn", "playerID", playerID)

	player, err := that.currentPlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}

	unlock := that.lock(player.GameID)
	defer unlock()

	game, err := that.gameService.GetGameByID(ctx, player.GameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game by id: %w", err)
	}

	seated := game.PlayerByID(player.ID)
	if seated == nil {
		return nil, apperror.ErrNotInGame
	}

	if err = game.MakeTurn(seated.Mark, pos); err != nil {
		return game, fmt.Errorf("failed to make turn: %w", err)
	}

	log.Debug("turn made", "gameID", game.ID, "position", pos)

	if game.IsWithBot() && game.IsOngoing() {
		if err = that.botService.MakeTurn(game); err != nil {
			return nil, fmt.Errorf("bot failed to make turn: %w", err)
		}
	}

	if game.IsFinished() {
		log.Info("game finished", "gameID", game.ID, "winner", game.Winner, "matchOver", game.MatchOver)
	}

	if err = that.saveGame(ctx, game); err != nil {
		return nil, err
	}

	return game, nil
}

func (that *gamePlayService) Rematch(ctx context.Context, playerID string) (*entity.Game, error) {
	player, err := that.currentPlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}

	unlock := that.lock(player.GameID)
	defer unlock()

	game, err := that.gameService.GetGameByID(ctx, player.GameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game by id: %w", err)
	}

	if err = game.Rematch(); err != nil {
		return game, fmt.Errorf("failed to start rematch: %w", err)
	}

	if err = that.saveGame(ctx, game); err != nil {
		return nil, err
	}

	return game, nil
}

// LeaveGame - deletes the player's game and frees everyone seated in it.
func (that *gamePlayService) LeaveGame(ctx context.Context, playerID string) (*entity.Game, error) {
	log := that.logger.With("method", "LeaveGame", "playerID", playerID)

	player, err := that.currentPlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}

	unlock := that.lock(player.GameID)
	defer unlock()

	game, err := that.gameService.GetGameByID(ctx, player.GameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game by id: %w", err)
	}

	if err = that.gameService.DeleteGame(ctx, game.ID); err != nil {
		log.Error("failed to delete game", "gameID", game.ID, "error", err)
	}

	for _, seated := range game.Players {
		if seated.IsBot() {
			continue
		}

		seated.LeaveGame()
		if err = that.releasePlayer(ctx, seated.ID, game.ID); err != nil {
			log.Error("failed to update", "player", seated.ID, "error", err)
		}
	}

	return game, nil
}

// releasePlayer - clears the stored seat, unless the player already sits in another game.
func (that *gamePlayService) releasePlayer(ctx context.Context, playerID, gameID string) error {
	player, err := that.playerService.GetPlayerByID(ctx, playerID)
	if err != nil {
		return err
	}

	if player.GameID != gameID {
		return nil
	}

	player.LeaveGame()

	return that.playerService.UpdatePlayer(ctx, player)
}

func (that *gamePlayService) GetGame(ctx context.Context, playerID string) (*entity.Game, error) {
	player, err := that.currentPlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}

	return that.GetGameByID(ctx, player.GameID)
}

func (that *gamePlayService) GetGameByID(ctx context.Context, gameID string) (*entity.Game, error) {
	game, err := that.gameService.GetGameByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game by id: %w", err)
	}

	return game, nil
}

func (that *gamePlayService) currentPlayer(ctx context.Context, playerID string) (*entity.Player, error) {
	player, err := that.playerService.GetPlayerByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player by id: %w", err)
	}

	if player.GameID == "" {
		return nil, apperror.ErrNotInGame
	}

	return player, nil
}

// saveGame - stores the game and copies the seat state of its human players onto
// their stored records. A player whose record points at another game is left alone.
func (that *gamePlayService) saveGame(ctx context.Context, game *entity.Game) error {
	stored := make(map[string]*entity.Player, len(game.Players))
	for _, seated := range game.Players {
		if seated.IsBot() {
			continue
		}

		player, err := that.playerService.GetPlayerByID(ctx, seated.ID)
		if err != nil {
			return fmt.Errorf("failed to get player by id: %w", err)
		}

		seated.Name = player.Name
		stored[seated.ID] = player
	}

	if err := that.gameService.UpdateGame(ctx, game); err != nil {
		return fmt.Errorf("failed to update game: %w", err)
	}

	for _, seated := range game.Players {
		player, ok := stored[seated.ID]
		if !ok || player.GameID != game.ID {
			continue
		}

		player.Mark = seated.Mark
		player.Score = seated.Score
		player.MatchWins = seated.MatchWins

		if err := that.playerService.UpdatePlayer(ctx, player); err != nil {
			return fmt.Errorf("failed to update player: %w", err)
		}
	}

	return nil
}

// confirmFree - a player may take a new seat only when the previous game is gone.
func (that *gamePlayService) confirmFree(ctx context.Context, player *entity.Player) error {
	if player.GameID == "" {
		return nil
	}

	_, err := that.gameService.GetGameByID(ctx, player.GameID)
	if err == nil {
		return fmt.Errorf("%w: game id %s", apperror.ErrAlreadyInGame, player.GameID)
	}

	if !errors.Is(err, repository.ErrGameNotFound) {
		return fmt.Errorf("failed to get current game: %w", err)
	}

	return nil
}

func (that *gamePlayService) withDefaults(opts GameOptions) GameOptions {
	if opts.Type == "" {
		opts.Type = entity.WithBotType
	}

	if opts.Dimension == 0 {
		opts.Dimension = that.defaults.Dimension
	}

	if opts.WinLength == 0 {
		opts.WinLength = min(that.defaults.WinLength, opts.Dimension)
	}

	return opts
}

func (that *gamePlayService) lock(gameID string) func() {
	h := fnv.New32a()
	_, _ = h.Write([]byte(gameID))

	mu := &that.locks[h.Sum32()%gameLockStripes]
	mu.Lock()

	return mu.Unlock
}
