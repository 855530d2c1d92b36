package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/gridgame-backend/internal/entity"
)

type PlayerService interface {
	GetOrCreatePlayer(ctx context.Context, id, name string) (*entity.Player, error)
	GetPlayerByID(ctx context.Context, id string) (*entity.Player, error)
	UpdatePlayer(ctx context.Context, player *entity.Player) error
}

type playerRepo interface {
	CreateOrUpdate(ctx context.Context, player *entity.Player) error
	GetByID(ctx context.Context, id string) (*entity.Player, error)
}

type playerService struct {
	playerRepo playerRepo
}

func NewPlayerService(playerRepo playerRepo) PlayerService {
	return &playerService{
		playerRepo: playerRepo,
	}
}

// GetOrCreatePlayer - an empty id registers a new player, who must have a name.
// A known player is renamed when a name is given.
func (that *playerService) GetOrCreatePlayer(ctx context.Context, id, name string) (*entity.Player, error) {
	if id != "" {
		return that.renamePlayer(ctx, id, name)
	}

	normalized, err := entity.NormalizeName(name)
	if err != nil {
		return nil, err
	}

	player := &entity.Player{ID: uuid.NewString(), Name: normalized}
	if err = that.playerRepo.CreateOrUpdate(ctx, player); err != nil {
		return nil, fmt.Errorf("failed to create player: %w", err)
	}

	return player, nil
}

func (that *playerService) renamePlayer(ctx context.Context, id, name string) (*entity.Player, error) {
	player, err := that.GetPlayerByID(ctx, id)
	if err != nil || name == "" {
		return player, err
	}

	normalized, err := entity.NormalizeName(name)
	if err != nil {
		return nil, err
	}

	if normalized == player.Name {
		return player, nil
	}

	player.Name = normalized
	if err = that.UpdatePlayer(ctx, player); err != nil {
		return nil, err
	}

	return player, nil
}

func (that *playerService) GetPlayerByID(ctx context.Context, id string) (*entity.Player, error) {
	player, err := that.playerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get player by id: %w", err)
	}

	return player, nil
}

func (that *playerService) UpdatePlayer(ctx context.Context, player *entity.Player) error {
	if err := that.playerRepo.CreateOrUpdate(ctx, player); err != nil {
		return fmt.Errorf("failed to update player: %w", err)
	}

	return nil
}
