package rest

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
)

// matchStore is the read side of the match history.
type matchStore interface {
	PlayerStats(ctx context.Context, name string) (*entity.PlayerStats, error)
	PlayerGames(ctx context.Context, name string, limit, offset int) ([]entity.GameSummary, error)
	RecentGames(ctx context.Context, limit int) ([]entity.GameSummary, error)
	GameByID(ctx context.Context, id int64) (*entity.GameDetail, error)
	ReplayByID(ctx context.Context, id int64) (*entity.Replay, error)
	Leaderboard(ctx context.Context, limit, minGames int) ([]entity.LeaderboardEntry, error)
}

// roomStore lists live rooms from the coordinator's mirror.
type roomStore interface {
	ListActive(ctx context.Context) ([]entity.RoomSnapshot, error)
}

type Server struct {
	logger  *slog.Logger
	matches matchStore
	rooms   roomStore
}

func New(logger *slog.Logger, matches matchStore, rooms roomStore) *Server {
	return &Server{
		logger:  logger,
		matches: matches,
		rooms:   rooms,
	}
}

// Start - starts the read-only reporting HTTP server.
func (that *Server) Start(ctx context.Context, port string) error {
	router := mux.NewRouter()

	router.HandleFunc("/ping", that.handlePing).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/players/{name}/stats", that.handlePlayerStats).Methods(http.MethodGet)
	api.HandleFunc("/players/{name}/games", that.handlePlayerGames).Methods(http.MethodGet)
	api.HandleFunc("/games/recent", that.handleRecentGames).Methods(http.MethodGet)
	api.HandleFunc("/games/{id}", that.handleGameByID).Methods(http.MethodGet)
	api.HandleFunc("/games/{id}/replay", that.handleReplay).Methods(http.MethodGet)
	api.HandleFunc("/leaderboard", that.handleLeaderboard).Methods(http.MethodGet)
	api.HandleFunc("/rooms", that.handleActiveRooms).Methods(http.MethodGet)

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func (that *Server) handlePing(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("pong")); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
