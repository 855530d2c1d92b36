package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/gridgame-backend/internal/apperror"
	"github.com/rocketscienceinc/gridgame-backend/internal/board"
	"github.com/rocketscienceinc/gridgame-backend/internal/entity"
	"github.com/rocketscienceinc/gridgame-backend/internal/repository"
	"github.com/rocketscienceinc/gridgame-backend/internal/service"
)

type mockGamePlay struct {
	mock.Mock
}

func (that *mockGamePlay) CreateGame(ctx context.Context, playerID string, opts service.GameOptions) (*entity.Game, error) {
	args := that.Called(ctx, playerID, opts)
	game, _ := args.Get(0).(*entity.Game)
	return game, args.Error(1)
}

func (that *mockGamePlay) JoinGame(ctx context.Context, gameID, playerID string) (*entity.Game, error) {
	args := that.Called(ctx, gameID, playerID)
	game, _ := args.Get(0).(*entity.Game)
	return game, args.Error(1)
}

func (that *mockGamePlay) MakeTurn(ctx context.Context, playerID string, pos board.Position) (*entity.Game, error) {
	args := that.Called(ctx, playerID, pos)
	game, _ := args.Get(0).(*entity.Game)
	return game, args.Error(1)
}

func (that *mockGamePlay) Rematch(ctx context.Context, playerID string) (*entity.Game, error) {
	args := that.Called(ctx, playerID)
	game, _ := args.Get(0).(*entity.Game)
	return game, args.Error(1)
}

func (that *mockGamePlay) LeaveGame(ctx context.Context, playerID string) (*entity.Game, error) {
	args := that.Called(ctx, playerID)
	game, _ := args.Get(0).(*entity.Game)
	return game, args.Error(1)
}

func (that *mockGamePlay) GetGame(ctx context.Context, playerID string) (*entity.Game, error) {
	args := that.Called(ctx, playerID)
	game, _ := args.Get(0).(*entity.Game)
	return game, args.Error(1)
}

func (that *mockGamePlay) GetGameByID(ctx context.Context, gameID string) (*entity.Game, error) {
	args := that.Called(ctx, gameID)
	game, _ := args.Get(0).(*entity.Game)
	return game, args.Error(1)
}

type mockPlayers struct {
	mock.Mock
}

func (that *mockPlayers) GetOrCreatePlayer(ctx context.Context, id, name string) (*entity.Player, error) {
	args := that.Called(ctx, id, name)
	player, _ := args.Get(0).(*entity.Player)
	return player, args.Error(1)
}

func newTestRouter() (http.Handler, *mockGamePlay, *mockPlayers) {
	gamePlay := &mockGamePlay{}
	players := &mockPlayers{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return NewRouter(logger, gamePlay, players), gamePlay, players
}

func newTestGame(t *testing.T, id string) *entity.Game {
	t.Helper()

	game, err := entity.NewGame(id, entity.WithBotType, 3, 3, 5)
	require.NoError(t, err)

	return game
}

func serve(router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(method, target, reader))

	return rec
}

func TestPing(t *testing.T) {
	router, _, _ := newTestRouter()

	rec := serve(router, http.MethodGet, "/ping", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pong", rec.Body.String())
}

func TestHandlers_CreatePlayer(t *testing.T) {
	t.Run("Registers a new named player", func(t *testing.T) {
		// Given: the player service creates a player
		router, _, players := newTestRouter()
		players.On("GetOrCreatePlayer", mock.Anything, "", "ann").Return(&entity.Player{ID: "p1", Name: "Ann"}, nil)

		// When: posting only a name
		rec := serve(router, http.MethodPost, "/players", `{"name":"ann"}`)

		// Then: the player is created
		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.JSONEq(t, `{"id":"p1","name":"Ann","score":0,"match_wins":0}`, rec.Body.String())
		players.AssertExpectations(t)
	})

	t.Run("Known id is a lookup", func(t *testing.T) {
		// Given: an existing player
		router, _, players := newTestRouter()
		players.On("GetOrCreatePlayer", mock.Anything, "p1", "").Return(&entity.Player{ID: "p1", Name: "Ann"}, nil)

		// When: posting its id
		rec := serve(router, http.MethodPost, "/players", `{"id":"p1"}`)

		// Then: the player is returned without creating anything
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"id":"p1","name":"Ann","score":0,"match_wins":0}`, rec.Body.String())
	})

	t.Run("Blank name", func(t *testing.T) {
		router, _, players := newTestRouter()
		players.On("GetOrCreatePlayer", mock.Anything, "", "").Return(nil, apperror.ErrInvalidName)

		rec := serve(router, http.MethodPost, "/players", "")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Unknown id", func(t *testing.T) {
		router, _, players := newTestRouter()
		players.On("GetOrCreatePlayer", mock.Anything, "ghost", "").Return(nil, repository.ErrPlayerNotFound)

		rec := serve(router, http.MethodPost, "/players", `{"id":"ghost"}`)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("Malformed body", func(t *testing.T) {
		router, _, _ := newTestRouter()

		rec := serve(router, http.MethodPost, "/players", `{"id":`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandlers_CreateGame(t *testing.T) {
	t.Run("Passes options and returns the board with empty positions", func(t *testing.T) {
		// Given: the service creates a game
		router, gamePlay, _ := newTestRouter()
		game := newTestGame(t, "g1")
		require.NoError(t, game.Board.Set(5, entity.PlayerX))

		opts := service.GameOptions{Type: "private", Dimension: 3, WinLength: 3, Mark: "x"}
		gamePlay.On("CreateGame", mock.Anything, "p1", opts).Return(game, nil)

		// When: posting the options
		rec := serve(router, http.MethodPost, "/games",
			`{"player_id":"p1","type":"private","dimension":3,"win_length":3,"mark":"x"}`)

		// Then: the game is returned with its free cells
		require.Equal(t, http.StatusCreated, rec.Code)

		var resp struct {
			ID             string           `json:"id"`
			EmptyPositions []board.Position `json:"empty_positions"`
			Board          *board.Board     `json:"board"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "g1", resp.ID)
		assert.Equal(t, []board.Position{1, 2, 3, 4, 6, 7, 8, 9}, resp.EmptyPositions)

		mark, err := resp.Board.Get(5)
		require.NoError(t, err)
		assert.Equal(t, entity.PlayerX, mark)
		gamePlay.AssertExpectations(t)
	})

	t.Run("Player id is required", func(t *testing.T) {
		router, gamePlay, _ := newTestRouter()

		rec := serve(router, http.MethodPost, "/games", `{"type":"bot"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		gamePlay.AssertNotCalled(t, "CreateGame", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestHandlers_MakeTurn(t *testing.T) {
	t.Run("Plays the position", func(t *testing.T) {
		router, gamePlay, _ := newTestRouter()
		game := newTestGame(t, "g1")
		gamePlay.On("GetGame", mock.Anything, "p1").Return(game, nil)
		gamePlay.On("MakeTurn", mock.Anything, "p1", board.Position(5)).Return(game, nil)

		rec := serve(router, http.MethodPost, "/games/g1/turns", `{"player_id":"p1","position":5}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		gamePlay.AssertExpectations(t)
	})

	t.Run("Position is required", func(t *testing.T) {
		router, _, _ := newTestRouter()

		rec := serve(router, http.MethodPost, "/games/g1/turns", `{"player_id":"p1"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Player sits in another game", func(t *testing.T) {
		router, gamePlay, _ := newTestRouter()
		gamePlay.On("GetGame", mock.Anything, "p1").Return(newTestGame(t, "other"), nil)

		rec := serve(router, http.MethodPost, "/games/g1/turns", `{"player_id":"p1","position":5}`)

		assert.Equal(t, http.StatusConflict, rec.Code)
		gamePlay.AssertNotCalled(t, "MakeTurn", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestHandlers_LeaveGame(t *testing.T) {
	// Given: a seated player
	router, gamePlay, _ := newTestRouter()
	game := newTestGame(t, "g1")
	gamePlay.On("GetGame", mock.Anything, "p1").Return(game, nil)
	gamePlay.On("LeaveGame", mock.Anything, "p1").Return(game, nil)

	// When: deleting the game with the player in the query
	rec := serve(router, http.MethodDelete, "/games/g1?player_id=p1", "")

	// Then: nothing is returned
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
	gamePlay.AssertExpectations(t)
}

func TestStatusFromError(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{repository.ErrGameNotFound, http.StatusNotFound},
		{repository.ErrPlayerNotFound, http.StatusNotFound},
		{apperror.ErrInvalidConfiguration, http.StatusBadRequest},
		{apperror.ErrInvalidPosition, http.StatusBadRequest},
		{apperror.ErrInvalidMark, http.StatusBadRequest},
		{apperror.ErrInvalidGameType, http.StatusBadRequest},
		{apperror.ErrInvalidName, http.StatusBadRequest},
		{apperror.ErrNotYourTurn, http.StatusConflict},
		{apperror.ErrCellOccupied, http.StatusConflict},
		{apperror.ErrGameFinished, http.StatusConflict},
		{apperror.ErrGameIsNotStarted, http.StatusConflict},
		{apperror.ErrGameAlreadyFull, http.StatusConflict},
		{apperror.ErrNotInGame, http.StatusConflict},
		{apperror.ErrAlreadyInGame, http.StatusConflict},
		{assert.AnError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			wrapped := fmt.Errorf("failed to make turn: %w", tt.err)

			assert.Equal(t, tt.status, statusFromError(wrapped))
		})
	}
}

func TestHandlers_GetGame(t *testing.T) {
	router, gamePlay, _ := newTestRouter()
	gamePlay.On("GetGameByID", mock.Anything, "missing").Return(nil, repository.ErrGameNotFound)

	rec := serve(router, http.MethodGet, "/games/missing", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"game not found"}`, rec.Body.String())
}
