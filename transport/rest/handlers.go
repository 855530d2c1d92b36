package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rocketscienceinc/gridgame-backend/internal/apperror"
	"github.com/rocketscienceinc/gridgame-backend/internal/board"
	"github.com/rocketscienceinc/gridgame-backend/internal/entity"
	"github.com/rocketscienceinc/gridgame-backend/internal/repository"
	"github.com/rocketscienceinc/gridgame-backend/internal/service"
)

type gamePlayService interface {
	CreateGame(ctx context.Context, playerID string, opts service.GameOptions) (*entity.Game, error)
	JoinGame(ctx context.Context, gameID, playerID string) (*entity.Game, error)
	MakeTurn(ctx context.Context, playerID string, pos board.Position) (*entity.Game, error)
	Rematch(ctx context.Context, playerID string) (*entity.Game, error)
	LeaveGame(ctx context.Context, playerID string) (*entity.Game, error)

	GetGame(ctx context.Context, playerID string) (*entity.Game, error)
	GetGameByID(ctx context.Context, gameID string) (*entity.Game, error)
}

type playerService interface {
	GetOrCreatePlayer(ctx context.Context, id, name string) (*entity.Player, error)
}

type Handlers interface {
	CreatePlayer(w http.ResponseWriter, r *http.Request)
	CreateGame(w http.ResponseWriter, r *http.Request)
	GetGame(w http.ResponseWriter, r *http.Request)
	JoinGame(w http.ResponseWriter, r *http.Request)
	MakeTurn(w http.ResponseWriter, r *http.Request)
	Rematch(w http.ResponseWriter, r *http.Request)
	LeaveGame(w http.ResponseWriter, r *http.Request)
}

type playerRequest struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type gameRequest struct {
	PlayerID  string          `json:"player_id"`
	Type      string          `json:"type"`
	Dimension int             `json:"dimension"`
	WinLength int             `json:"win_length"`
	Mark      string          `json:"mark"`
	Position  *board.Position `json:"position"`
}

type gameResponse struct {
	*entity.Game
	EmptyPositions []board.Position `json:"empty_positions"`
}

type errorResponse struct {
	Error string `json:"error"`
}

var errPlayerRequired = errors.New("player_id is required")

var errPositionRequired = errors.New("position is required")

type handlers struct {
	logger *slog.Logger

	gamePlay gamePlayService
	players  playerService
}

func NewHandlers(logger *slog.Logger, gamePlay gamePlayService, players playerService) Handlers {
	return &handlers{
		logger:   logger.With("component", "rest"),
		gamePlay: gamePlay,
		players:  players,
	}
}

// CreatePlayer - registers a named player, or returns (and optionally renames) the one with the given id.
func (that *handlers) CreatePlayer(w http.ResponseWriter, r *http.Request) {
	var req playerRequest
	if err := decode(r, &req); err != nil {
		that.writeError(w, http.StatusBadRequest, err)
		return
	}

	player, err := that.players.GetOrCreatePlayer(r.Context(), req.ID, req.Name)
	if err != nil {
		that.fail(w, "CreatePlayer", err)
		return
	}

	status := http.StatusOK
	if req.ID == "" {
		status = http.StatusCreated
	}

	writeJSON(w, status, player)
}

func (that *handlers) CreateGame(w http.ResponseWriter, r *http.Request) {
	req, ok := that.gameRequest(w, r)
	if !ok {
		return
	}

	game, err := that.gamePlay.CreateGame(r.Context(), req.PlayerID, service.GameOptions{
		Type:      req.Type,
		Dimension: req.Dimension,
		WinLength: req.WinLength,
		Mark:      req.Mark,
	})
	if err != nil {
		that.fail(w, "CreateGame", err)
		return
	}

	writeJSON(w, http.StatusCreated, newGameResponse(game))
}

func (that *handlers) GetGame(w http.ResponseWriter, r *http.Request) {
	game, err := that.gamePlay.GetGameByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		that.fail(w, "GetGame", err)
		return
	}

	writeJSON(w, http.StatusOK, newGameResponse(game))
}

func (that *handlers) JoinGame(w http.ResponseWriter, r *http.Request) {
	req, ok := that.gameRequest(w, r)
	if !ok {
		return
	}

	game, err := that.gamePlay.JoinGame(r.Context(), chi.URLParam(r, "id"), req.PlayerID)
	if err != nil {
		that.fail(w, "JoinGame", err)
		return
	}

	writeJSON(w, http.StatusOK, newGameResponse(game))
}

func (that *handlers) MakeTurn(w http.ResponseWriter, r *http.Request) {
	req, ok := that.gameRequest(w, r)
	if !ok {
		return
	}

	if req.Position == nil {
		that.writeError(w, http.StatusBadRequest, errPositionRequired)
		return
	}

	if !that.confirmSeat(w, r, req.PlayerID) {
		return
	}

	game, err := that.gamePlay.MakeTurn(r.Context(), req.PlayerID, *req.Position)
	if err != nil {
		that.fail(w, "MakeTurn", err)
		return
	}

	writeJSON(w, http.StatusOK, newGameResponse(game))
}

func (that *handlers) Rematch(w http.ResponseWriter, r *http.Request) {
	req, ok := that.gameRequest(w, r)
	if !ok {
		return
	}

	if !that.confirmSeat(w, r, req.PlayerID) {
		return
	}

	game, err := that.gamePlay.Rematch(r.Context(), req.PlayerID)
	if err != nil {
		that.fail(w, "Rematch", err)
		return
	}

	writeJSON(w, http.StatusOK, newGameResponse(game))
}

// LeaveGame - the player id comes from the body or the player_id query parameter.
func (that *handlers) LeaveGame(w http.ResponseWriter, r *http.Request) {
	var req gameRequest
	if err := decode(r, &req); err != nil {
		that.writeError(w, http.StatusBadRequest, err)
		return
	}

	if req.PlayerID == "" {
		req.PlayerID = r.URL.Query().Get("player_id")
	}

	if req.PlayerID == "" {
		that.writeError(w, http.StatusBadRequest, errPlayerRequired)
		return
	}

	if !that.confirmSeat(w, r, req.PlayerID) {
		return
	}

	if _, err := that.gamePlay.LeaveGame(r.Context(), req.PlayerID); err != nil {
		that.fail(w, "LeaveGame", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (that *handlers) gameRequest(w http.ResponseWriter, r *http.Request) (gameRequest, bool) {
	var req gameRequest
	if err := decode(r, &req); err != nil {
		that.writeError(w, http.StatusBadRequest, err)
		return req, false
	}

	if req.PlayerID == "" {
		that.writeError(w, http.StatusBadRequest, errPlayerRequired)
		return req, false
	}

	return req, true
}

// confirmSeat - the game in the path must be the one the player sits in.
func (that *handlers) confirmSeat(w http.ResponseWriter, r *http.Request, playerID string) bool {
	game, err := that.gamePlay.GetGame(r.Context(), playerID)
	if err != nil {
		that.fail(w, "confirmSeat", err)
		return false
	}

	if game.ID != chi.URLParam(r, "id") {
		that.writeError(w, http.StatusConflict, apperror.ErrNotInGame)
		return false
	}

	return true
}

func (that *handlers) fail(w http.ResponseWriter, method string, err error) {
	status := statusFromError(err)
	if status == http.StatusInternalServerError {
		that.logger.Error("request failed", "method", method, "error", err)
	}

	that.writeError(w, status, err)
}

func (that *handlers) writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func statusFromError(err error) int {
	switch {
	case errors.Is(err, repository.ErrGameNotFound),
		errors.Is(err, repository.ErrPlayerNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperror.ErrInvalidConfiguration),
		errors.Is(err, apperror.ErrInvalidPosition),
		errors.Is(err, apperror.ErrInvalidMark),
		errors.Is(err, apperror.ErrInvalidGameType),
		errors.Is(err, apperror.ErrInvalidName):
		return http.StatusBadRequest
	case errors.Is(err, apperror.ErrNotYourTurn),
		errors.Is(err, apperror.ErrCellOccupied),
		errors.Is(err, apperror.ErrGameFinished),
		errors.Is(err, apperror.ErrGameIsNotStarted),
		errors.Is(err, apperror.ErrGameInProgress),
		errors.Is(err, apperror.ErrGameAlreadyFull),
		errors.Is(err, apperror.ErrNotInGame),
		errors.Is(err, apperror.ErrAlreadyInGame):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func newGameResponse(game *entity.Game) gameResponse {
	return gameResponse{
		Game:           game,
		EmptyPositions: game.Board.EmptyPositions(),
	}
}

// decode - an empty body leaves v untouched.
func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}

	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
