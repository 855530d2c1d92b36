package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/gridgame-backend/internal/board"
	"github.com/rocketscienceinc/gridgame-backend/internal/entity"
	"github.com/rocketscienceinc/gridgame-backend/internal/service"
)

const (
	idlePingInterval = 30 * time.Second
	writeTimeout     = 10 * time.Second
	shutdownTimeout  = 5 * time.Second
	sendBufferSize   = 16
)

type gamePlayService interface {
	CreateGame(ctx context.Context, playerID string, opts service.GameOptions) (*entity.Game, error)
	JoinGame(ctx context.Context, gameID, playerID string) (*entity.Game, error)
	MakeTurn(ctx context.Context, playerID string, pos board.Position) (*entity.Game, error)
	Rematch(ctx context.Context, playerID string) (*entity.Game, error)
	LeaveGame(ctx context.Context, playerID string) (*entity.Game, error)

	GetGame(ctx context.Context, playerID string) (*entity.Game, error)
}

type playerService interface {
	GetOrCreatePlayer(ctx context.Context, id, name string) (*entity.Player, error)
}

type handlerFunc func(ctx context.Context, c *client, req *Request) error

type Server struct {
	logger *slog.Logger

	gamePlay gamePlayService
	players  playerService

	upgrader websocket.Upgrader
	handlers map[string]handlerFunc

	connectionsMutex sync.RWMutex
	connections      map[string]*client
}

// client - one websocket connection. Only writeLoop writes to conn.
// playerID is set by connect and only touched by the reading goroutine.
type client struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}

	playerID string
}

func New(logger *slog.Logger, gamePlay gamePlayService, players playerService) *Server {
	server := &Server{
		logger:   logger.With("component", "websocket"),
		gamePlay: gamePlay,
		players:  players,
		upgrader: websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},

		connections: make(map[string]*client),
	}

	server.handlers = map[string]handlerFunc{
		actionConnect: server.handleConnect,
		actionNew:     server.handleNewGame,
		actionJoin:    server.handleJoinGame,
		actionTurn:    server.handleGameTurn,
		actionRematch: server.handleRematch,
		actionLeave:   server.handleGameLeave,
	}

	return server
}

// Start - serves /ws on port until ctx is canceled.
func (that *Server) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.Handle("/ws", that)

	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     mux,
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 30 * time.Second,
		BaseContext: func(_ net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// hijacked connections are not closed by Shutdown
	that.closeAll()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}

	that.logger.Info("WebSocket server stopped")

	return nil
}

// ServeHTTP - upgrades the request and processes messages until the client goes away.
func (that *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "ServeHTTP")

	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	c := &client{
		conn: conn,
		send: make(chan []byte, sendBufferSize),
		done: make(chan struct{}),
	}

	go func() {
		if err := c.writeLoop(); err != nil {
			log.Debug("write loop stopped", "error", err)
		}
		_ = conn.Close()
	}()

	log.Info("WebSocket connection established")

	that.handleMessages(r.Context(), c)

	close(c.done)
	that.handleDisconnect(c)
}

// handleMessages - processes messages from the client.
func (that *Server) handleMessages(ctx context.Context, c *client) {
	log := that.logger.With("method", "handleMessages")

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug("error reading message", "error", err)
			}
			return
		}

		var message Message
		if err = json.Unmarshal(data, &message); err != nil {
			log.Error("failed to unmarshal message", "error", err)
			c.sendError("", "malformed message")
			continue
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Error("unknown action", "action", message.Action)
			c.sendError(message.Action, "unknown action")
			continue
		}

		var req Request
		if len(message.Payload) > 0 {
			if err = json.Unmarshal(message.Payload, &req); err != nil {
				log.Error("failed to unmarshal payload", "error", err)
				c.sendError(message.Action, "malformed payload")
				continue
			}
		}

		if err = handler(ctx, c, &req); err != nil {
			log.Error("error processing message", "action", message.Action, "error", err)
			c.sendError(message.Action, err.Error())
		}
	}
}

// register - binds c to playerID. A connection serves one player at a time.
func (that *Server) register(playerID string, c *client) {
	that.connectionsMutex.Lock()
	defer that.connectionsMutex.Unlock()

	if c.playerID != "" && c.playerID != playerID && that.connections[c.playerID] == c {
		delete(that.connections, c.playerID)
	}

	c.playerID = playerID
	that.connections[playerID] = c
}

func (that *Server) handleDisconnect(c *client) {
	that.connectionsMutex.Lock()
	defer that.connectionsMutex.Unlock()

	for playerID, connection := range that.connections {
		if connection == c {
			delete(that.connections, playerID)
			that.logger.Info("player disconnected", "playerID", playerID)
		}
	}
}

func (that *Server) closeAll() {
	that.connectionsMutex.RLock()
	defer that.connectionsMutex.RUnlock()

	for _, c := range that.connections {
		_ = c.conn.Close()
	}
}

// broadcast - sends the game to every connected human seated in it.
func (that *Server) broadcast(action string, game *entity.Game) {
	view := newGameView(game)

	for _, player := range game.Players {
		if player.IsBot() {
			continue
		}

		that.connectionsMutex.RLock()
		c, ok := that.connections[player.ID]
		that.connectionsMutex.RUnlock()

		if !ok {
			that.logger.Debug("connection not found for player", "playerID", player.ID)
			continue
		}

		c.sendMessage(action, Payload{Player: player, Game: view})
	}
}

func (that *client) sendMessage(action string, payload Payload) {
	data, err := encodeMessage(action, payload)
	if err != nil {
		return
	}

	select {
	case that.send <- data:
	case <-that.done:
	}
}

func (that *client) sendError(action, errorMsg string) {
	that.sendMessage(action, Payload{Error: errorMsg})
}

// writeLoop - pings the peer when nothing was written for a while.
func (that *client) writeLoop() error {
	ticker := time.NewTicker(idlePingInterval)
	defer ticker.Stop()
	lastWrite := time.Now()

	for {
		select {
		case msg := <-that.send:
			_ = that.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := that.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return err
			}
			lastWrite = time.Now()
		case <-ticker.C:
			if time.Since(lastWrite) < idlePingInterval {
				continue
			}
			if err := that.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				return err
			}
			lastWrite = time.Now()
		case <-that.done:
			return nil
		}
	}
}
