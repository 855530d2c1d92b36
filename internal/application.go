package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/rocketscienceinc/gridgame-backend/internal/board"
	"github.com/rocketscienceinc/gridgame-backend/internal/config"
	"github.com/rocketscienceinc/gridgame-backend/internal/repository"
	"github.com/rocketscienceinc/gridgame-backend/internal/repository/storage"
	"github.com/rocketscienceinc/gridgame-backend/internal/service"
	"github.com/rocketscienceinc/gridgame-backend/transport/rest"
	"github.com/rocketscienceinc/gridgame-backend/transport/websocket"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if _, err := board.GenerateLines(conf.Board.Dimension, conf.Board.WinLength); err != nil {
		return fmt.Errorf("invalid default board: %w", err)
	}

	redisAddrString := conf.Redis.GetRedisAddr()
	if redisAddrString == "" {
		return ErrAddrNotFound
	}

	redisStorage, err := storage.New(ctx, redisAddrString)
	if err != nil {
		return fmt.Errorf("could not connect to redis storage: %w", err)
	}

	defer func() {
		if err = redisStorage.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}()

	playerRepo := repository.NewPlayerRepository(redisStorage)
	gameRepo := repository.NewGameRepository(redisStorage, conf.Redis.GameTTL)

	playerService := service.NewPlayerService(playerRepo)
	gameService := service.NewGameService(gameRepo)
	gamePlayService := service.NewGamePlayService(logger, service.Defaults{
		Dimension:   conf.Board.Dimension,
		WinLength:   conf.Board.WinLength,
		WinsToMatch: conf.Match.WinsToMatch,
	}, playerService, gameService, service.NewBotService())

	group, groupCtx := errgroup.WithContext(ctx)

	// run HTTP server
	group.Go(func() error {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		restServer := rest.New(logger, conf.HTTPPort, gamePlayService, playerService)
		if httpErr := restServer.Start(groupCtx); httpErr != nil {
			return fmt.Errorf("HTTP server error: %w", httpErr)
		}
		return nil
	})

	// run Websocket server
	group.Go(func() error {
		log.Info("Starting WebSocket server", "port", conf.SocketPort)
		wsServer := websocket.New(logger, gamePlayService, playerService)
		if wsErr := wsServer.Start(groupCtx, conf.SocketPort); wsErr != nil {
			return fmt.Errorf("WebSocket server error: %w", wsErr)
		}
		return nil
	})

	if err = group.Wait(); err != nil {
		return err
	}

	log.Info("Application context canceled, shutting down")

	return nil
}
