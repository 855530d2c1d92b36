package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	logger *slog.Logger
	srv    *http.Server
}

func New(logger *slog.Logger, port string, gamePlay gamePlayService, players playerService) *Server {
	return &Server{
		logger: logger.With("component", "rest"),
		srv: &http.Server{
			Addr:         ":" + port,
			Handler:      NewRouter(logger, gamePlay, players),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  30 * time.Second,
		},
	}
}

// NewRouter - wires the REST routes.
func NewRouter(logger *slog.Logger, gamePlay gamePlayService, players playerService) http.Handler {
	h := NewHandlers(logger, gamePlay, players)
	ping := NewPingHandler()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/ping", ping.PingHandler)
	r.Post("/players", h.CreatePlayer)
	r.Post("/games", h.CreateGame)
	r.Route("/games/{id}", func(r chi.Router) {
		r.Get("/", h.GetGame)
		r.Delete("/", h.LeaveGame)
		r.Post("/join", h.JoinGame)
		r.Post("/turns", h.MakeTurn)
		r.Post("/rematch", h.Rematch)
	})

	return r
}

// Start - serves until ctx is canceled, then shuts down gracefully.
func (that *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := that.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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

	if err := that.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}

	that.logger.Info("HTTP server stopped")

	return nil
}
