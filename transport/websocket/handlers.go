package websocket

import (
	"context"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/gridgame-backend/internal/service"
)

var (
	errNotConnected     = errors.New("connect first")
	errGameRequired     = errors.New("game_id is required")
	errPositionRequired = errors.New("position is required")
)

// handleConnect - binds the connection to the player and replies with the player and its current game.
// Every other action acts on behalf of the bound player.
func (that *Server) handleConnect(ctx context.Context, c *client, req *Request) error {
	log := that.logger.With("method", "handleConnect")

	player, err := that.players.GetOrCreatePlayer(ctx, req.PlayerID, req.Name)
	if err != nil {
		return fmt.Errorf("failed to create or get player: %w", err)
	}

	that.register(player.ID, c)

	payload := Payload{Player: player}

	if player.GameID != "" {
		game, err := that.gamePlay.GetGame(ctx, player.ID)
		if err == nil {
			payload.Game = newGameView(game)
		} else {
			log.Info("current game is not available", "playerID", player.ID, "error", err)
		}
	}

	c.sendMessage(actionConnect, payload)

	log.Info("successfully connected player", "playerID", player.ID)

	return nil
}

func (that *Server) handleNewGame(ctx context.Context, c *client, req *Request) error {
	if c.playerID == "" {
		return errNotConnected
	}

	game, err := that.gamePlay.CreateGame(ctx, c.playerID, service.GameOptions{
		Type:      req.Type,
		Dimension: req.Dimension,
		WinLength: req.WinLength,
		Mark:      req.Mark,
	})
	if err != nil {
		return fmt.Errorf("failed to create game: %w", err)
	}

	that.broadcast(actionNew, game)

	return nil
}

func (that *Server) handleJoinGame(ctx context.Context, c *client, req *Request) error {
	if c.playerID == "" {
		return errNotConnected
	}

	if req.GameID == "" {
		return errGameRequired
	}

	game, err := that.gamePlay.JoinGame(ctx, req.GameID, c.playerID)
	if err != nil {
		return fmt.Errorf("failed to join game %s: %w", req.GameID, err)
	}

	that.logger.Info("Player joined game", "gameID", game.ID, "playerID", c.playerID)

	that.broadcast(actionJoin, game)

	return nil
}

func (that *Server) handleGameTurn(ctx context.Context, c *client, req *Request) error {
	if c.playerID == "" {
		return errNotConnected
	}

	if req.Position == nil {
		return errPositionRequired
	}

	game, err := that.gamePlay.MakeTurn(ctx, c.playerID, *req.Position)
	if err != nil {
		return fmt.Errorf("failed to make turn: %w", err)
	}

	that.broadcast(actionTurn, game)

	return nil
}

func (that *Server) handleRematch(ctx context.Context, c *client, _ *Request) error {
	if c.playerID == "" {
		return errNotConnected
	}

	game, err := that.gamePlay.Rematch(ctx, c.playerID)
	if err != nil {
		return fmt.Errorf("failed to start rematch: %w", err)
	}

	that.broadcast(actionRematch, game)

	return nil
}

// handleGameLeave - the leaving player and the opponent both get the final game state.
func (that *Server) handleGameLeave(ctx context.Context, c *client, _ *Request) error {
	if c.playerID == "" {
		return errNotConnected
	}

	game, err := that.gamePlay.LeaveGame(ctx, c.playerID)
	if err != nil {
		return fmt.Errorf("failed to leave game: %w", err)
	}

	that.logger.Info("Player leaving", "gameID", game.ID, "playerID", c.playerID)

	that.broadcast(actionLeave, game)

	return nil
}
