package rest

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rocketscienceinc/gomoku-backend/internal/apperror"
	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
)

const (
	defaultGamesLimit  = 20
	maxGamesLimit      = 100
	defaultRecentLimit = 10
	maxRecentLimit     = 50

	defaultLeaderboardLimit = 100
	maxLeaderboardLimit     = 100
	defaultMinGames         = 5
)

func (that *Server) handlePlayerStats(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(mux.Vars(r)["name"])
	if name == "" {
		that.respondError(w, http.StatusBadRequest, codeInvalidPlayerName, "player name must not be empty")
		return
	}

	stats, err := that.matches.PlayerStats(r.Context(), name)
	if errors.Is(err, apperror.ErrNotFound) {
		that.respondError(w, http.StatusNotFound, codePlayerNotFound, "player not found")
		return
	}
	if err != nil {
		that.internalError(w, "failed to load player stats", err)
		return
	}

	that.respondData(w, http.StatusOK, stats)
}

func (that *Server) handlePlayerGames(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(mux.Vars(r)["name"])
	if name == "" {
		that.respondError(w, http.StatusBadRequest, codeInvalidPlayerName, "player name must not be empty")
		return
	}

	limit, ok := that.queryInt(w, r, "limit", defaultGamesLimit, 1, maxGamesLimit)
	if !ok {
		return
	}

	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if offset < 0 {
		offset = 0
	}

	games, err := that.matches.PlayerGames(r.Context(), name, limit, offset)
	if err != nil {
		that.internalError(w, "failed to load player games", err)
		return
	}

	that.respondData(w, http.StatusOK, map[string]any{
		"games":   games,
		"limit":   limit,
		"offset":  offset,
		"hasMore": len(games) == limit,
	})
}

func (that *Server) handleRecentGames(w http.ResponseWriter, r *http.Request) {
	limit, ok := that.queryInt(w, r, "limit", defaultRecentLimit, 1, maxRecentLimit)
	if !ok {
		return
	}

	games, err := that.matches.RecentGames(r.Context(), limit)
	if err != nil {
		that.internalError(w, "failed to load recent games", err)
		return
	}

	that.respondData(w, http.StatusOK, games)
}

func (that *Server) handleGameByID(w http.ResponseWriter, r *http.Request) {
	id, ok := that.gameID(w, r)
	if !ok {
		return
	}

	game, err := that.matches.GameByID(r.Context(), id)
	if errors.Is(err, apperror.ErrNotFound) {
		that.respondError(w, http.StatusNotFound, codeGameNotFound, "game not found")
		return
	}
	if err != nil {
		that.internalError(w, "failed to load game", err)
		return
	}

	that.respondData(w, http.StatusOK, game)
}

func (that *Server) handleReplay(w http.ResponseWriter, r *http.Request) {
	id, ok := that.gameID(w, r)
	if !ok {
		return
	}

	replay, err := that.matches.ReplayByID(r.Context(), id)
	if errors.Is(err, apperror.ErrNotFound) {
		that.respondError(w, http.StatusNotFound, codeGameNotFound, "game not found")
		return
	}
	if err != nil {
		that.internalError(w, "failed to load replay", err)
		return
	}

	that.respondData(w, http.StatusOK, replay)
}

func (that *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit, ok := that.queryInt(w, r, "limit", defaultLeaderboardLimit, 1, maxLeaderboardLimit)
	if !ok {
		return
	}

	minGames, _ := strconv.Atoi(r.URL.Query().Get("minGames"))
	if minGames <= 0 {
		minGames = defaultMinGames
	}

	leaderboard, err := that.matches.Leaderboard(r.Context(), limit, minGames)
	if err != nil {
		that.internalError(w, "failed to load leaderboard", err)
		return
	}

	that.respondData(w, http.StatusOK, map[string]any{
		"leaderboard": leaderboard,
		"limit":       limit,
		"minGames":    minGames,
	})
}

func (that *Server) handleActiveRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := that.rooms.ListActive(r.Context())
	if err != nil {
		that.internalError(w, "failed to list active rooms", err)
		return
	}

	if rooms == nil {
		rooms = []entity.RoomSnapshot{}
	}

	that.respondData(w, http.StatusOK, rooms)
}

// gameID parses and validates the {id} path variable.
func (that *Server) gameID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id < 1 {
		that.respondError(w, http.StatusBadRequest, codeInvalidGameID, "game id must be a positive integer")
		return 0, false
	}

	return id, true
}

// queryInt parses an optional numeric query parameter, rejecting values
// outside [minValue, maxValue].
func (that *Server) queryInt(w http.ResponseWriter, r *http.Request, param string, fallback, minValue, maxValue int) (int, bool) {
	raw := r.URL.Query().Get(param)
	if raw == "" {
		return fallback, true
	}

	value, err := strconv.Atoi(raw)
	if err != nil || value < minValue || value > maxValue {
		that.respondError(w, http.StatusBadRequest, codeInvalidLimit,
			param+" must be between "+strconv.Itoa(minValue)+" and "+strconv.Itoa(maxValue))
		return 0, false
	}

	return value, true
}

func (that *Server) internalError(w http.ResponseWriter, msg string, err error) {
	that.logger.Error(msg, "error", err)
	that.respondError(w, http.StatusInternalServerError, codeInternalError, "internal server error")
}
