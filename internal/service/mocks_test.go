package service

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/rocketscienceinc/gridgame-backend/internal/entity"
	"github.com/rocketscienceinc/gridgame-backend/internal/repository"
)

type mockPlayerRepo struct {
	mock.Mock
}

func (that *mockPlayerRepo) CreateOrUpdate(ctx context.Context, player *entity.Player) error {
	args := that.Called(ctx, player)
	return args.Error(0)
}

func (that *mockPlayerRepo) GetByID(ctx context.Context, id string) (*entity.Player, error) {
	args := that.Called(ctx, id)
	player, _ := args.Get(0).(*entity.Player)
	return player, args.Error(1)
}

type mockGameRepo struct {
	mock.Mock
}

func (that *mockGameRepo) CreateOrUpdate(ctx context.Context, game *entity.Game) error {
	args := that.Called(ctx, game)
	return args.Error(0)
}

func (that *mockGameRepo) GetByID(ctx context.Context, id string) (*entity.Game, error) {
	args := that.Called(ctx, id)
	game, _ := args.Get(0).(*entity.Game)
	return game, args.Error(1)
}

func (that *mockGameRepo) DeleteByID(ctx context.Context, id string) error {
	args := that.Called(ctx, id)
	return args.Error(0)
}

// memoryStore keeps JSON copies like Redis does, so callers never share pointers with it.
type memoryStore struct {
	mu      sync.Mutex
	games   map[string][]byte
	players map[string][]byte
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		games:   make(map[string][]byte),
		players: make(map[string][]byte),
	}
}

func (that *memoryStore) gameRepo() *memoryGames {
	return &memoryGames{store: that}
}

func (that *memoryStore) playerRepo() *memoryPlayers {
	return &memoryPlayers{store: that}
}

type memoryGames struct {
	store *memoryStore
}

func (that *memoryGames) CreateOrUpdate(_ context.Context, game *entity.Game) error {
	data, err := json.Marshal(game)
	if err != nil {
		return err
	}

	that.store.mu.Lock()
	defer that.store.mu.Unlock()
	that.store.games[game.ID] = data

	return nil
}

func (that *memoryGames) GetByID(_ context.Context, id string) (*entity.Game, error) {
	that.store.mu.Lock()
	data, ok := that.store.games[id]
	that.store.mu.Unlock()

	if !ok {
		return nil, repository.ErrGameNotFound
	}

	var game entity.Game
	if err := json.Unmarshal(data, &game); err != nil {
		return nil, err
	}

	return &game, nil
}

func (that *memoryGames) DeleteByID(_ context.Context, id string) error {
	that.store.mu.Lock()
	defer that.store.mu.Unlock()

	if _, ok := that.store.games[id]; !ok {
		return repository.ErrGameNotFound
	}
	delete(that.store.games, id)

	return nil
}

type memoryPlayers struct {
	store *memoryStore
}

func (that *memoryPlayers) CreateOrUpdate(_ context.Context, player *entity.Player) error {
	data, err := json.Marshal(player)
	if err != nil {
		return err
	}

	that.store.mu.Lock()
	defer that.store.mu.Unlock()
	that.store.players[player.ID] = data

	return nil
}

func (that *memoryPlayers) GetByID(_ context.Context, id string) (*entity.Player, error) {
	that.store.mu.Lock()
	data, ok := that.store.players[id]
	that.store.mu.Unlock()

	if !ok {
		return nil, repository.ErrPlayerNotFound
	}

	var player entity.Player
	if err := json.Unmarshal(data, &player); err != nil {
		return nil, err
	}

	return &player, nil
}
