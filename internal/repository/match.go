package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rocketscienceinc/gomoku-backend/internal/apperror"
	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
)

// MatchRepository is the persistence gateway for finished matches plus the
// read side of the reporting API.
type MatchRepository interface {
	SaveMatch(ctx context.Context, record entity.MatchRecord) (int64, error)

	PlayerStats(ctx context.Context, name string) (*entity.PlayerStats, error)
	PlayerGames(ctx context.Context, name string, limit, offset int) ([]entity.GameSummary, error)
	RecentGames(ctx context.Context, limit int) ([]entity.GameSummary, error)
	GameByID(ctx context.Context, id int64) (*entity.GameDetail, error)
	ReplayByID(ctx context.Context, id int64) (*entity.Replay, error)
	Leaderboard(ctx context.Context, limit, minGames int) ([]entity.LeaderboardEntry, error)
}

type matchRepository struct {
	conn *sql.DB
}

func NewMatchRepository(conn *sql.DB) MatchRepository {
	return &matchRepository{
		conn: conn,
	}
}

// SaveMatch records a finished game and bumps both players' aggregates in a
// single transaction. Winner entity.Nobody credits both players a draw.
func (that *matchRepository) SaveMatch(ctx context.Context, record entity.MatchRecord) (int64, error) {
	tx, err := that.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("can't begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint: errcheck // no-op after commit

	blackID, err := getOrCreatePlayer(ctx, tx, record.BlackName)
	if err != nil {
		return 0, err
	}

	whiteID, err := getOrCreatePlayer(ctx, tx, record.WhiteName)
	if err != nil {
		return 0, err
	}

	movesJSON, err := json.Marshal(record.Moves)
	if err != nil {
		return 0, fmt.Errorf("can't marshal moves: %w", err)
	}

	query := `INSERT INTO games (
		room_id, black_player_id, white_player_id, winner,
		total_moves, duration, moves, started_at, finished_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := tx.ExecContext(ctx, query,
		record.RoomID, blackID, whiteID, record.Winner,
		len(record.Moves), record.Duration, string(movesJSON),
		formatTime(record.StartedAt), formatTime(record.FinishedAt),
	)
	if err != nil {
		return 0, fmt.Errorf("can't save game: %w", err)
	}

	matchID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("can't get match id: %w", err)
	}

	blackResult, whiteResult := matchOutcomes(record.Winner)
	if err = bumpPlayerStats(ctx, tx, blackID, blackResult); err != nil {
		return 0, err
	}
	if err = bumpPlayerStats(ctx, tx, whiteID, whiteResult); err != nil {
		return 0, err
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("can't commit transaction: %w", err)
	}

	return matchID, nil
}

const (
	outcomeWin  = "win"
	outcomeLoss = "loss"
	outcomeDraw = "draw"
)

func matchOutcomes(winner entity.Color) (black, white string) {
	switch winner {
	case entity.Black:
		return outcomeWin, outcomeLoss
	case entity.White:
		return outcomeLoss, outcomeWin
	default:
		return outcomeDraw, outcomeDraw
	}
}

func getOrCreatePlayer(ctx context.Context, tx *sql.Tx, name string) (int64, error) {
	insert := `INSERT INTO players (name, created_at, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(name) DO NOTHING`

	now := formatTime(time.Now())
	if _, err := tx.ExecContext(ctx, insert, name, now, now); err != nil {
		return 0, fmt.Errorf("can't create player: %w", err)
	}

	var id int64
	if err := tx.QueryRowContext(ctx, `SELECT id FROM players WHERE name = ?`, name).Scan(&id); err != nil {
		return 0, fmt.Errorf("can't find player: %w", err)
	}

	return id, nil
}

func bumpPlayerStats(ctx context.Context, tx *sql.Tx, playerID int64, outcome string) error {
	query := `UPDATE players SET
		total_games = total_games + 1,
		wins = wins + ?,
		losses = losses + ?,
		draws = draws + ?,
		updated_at = ?
	WHERE id = ?`

	var wins, losses, draws int
	switch outcome {
	case outcomeWin:
		wins = 1
	case outcomeLoss:
		losses = 1
	case outcomeDraw:
		draws = 1
	}

	if _, err := tx.ExecContext(ctx, query, wins, losses, draws, formatTime(time.Now()), playerID); err != nil {
		return fmt.Errorf("can't update player stats: %w", err)
	}

	return nil
}

func (that *matchRepository) PlayerStats(ctx context.Context, name string) (*entity.PlayerStats, error) {
	query := `SELECT name, total_games, wins, losses, draws FROM players WHERE name = ?`

	var stats entity.PlayerStats

	err := that.conn.QueryRowContext(ctx, query, name).
		Scan(&stats.Name, &stats.TotalGames, &stats.Wins, &stats.Losses, &stats.Draws)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("can't find player stats: %w", err)
	}

	stats.WinRate = winRate(stats.Wins, stats.TotalGames)

	return &stats, nil
}

const gameSummaryColumns = `
	g.id, g.room_id, bp.name, wp.name, g.winner, g.total_moves, g.duration, g.finished_at
	FROM games g
	JOIN players bp ON g.black_player_id = bp.id
	JOIN players wp ON g.white_player_id = wp.id`

func (that *matchRepository) PlayerGames(ctx context.Context, name string, limit, offset int) ([]entity.GameSummary, error) {
	query := `SELECT` + gameSummaryColumns + `
		WHERE bp.name = ? OR wp.name = ?
		ORDER BY g.finished_at DESC
		LIMIT ? OFFSET ?`

	rows, err := that.conn.QueryContext(ctx, query, name, name, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("can't list player games: %w", err)
	}
	defer rows.Close()

	return scanGameSummaries(rows)
}

func (that *matchRepository) RecentGames(ctx context.Context, limit int) ([]entity.GameSummary, error) {
	query := `SELECT` + gameSummaryColumns + `
		ORDER BY g.finished_at DESC
		LIMIT ?`

	rows, err := that.conn.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("can't list recent games: %w", err)
	}
	defer rows.Close()

	return scanGameSummaries(rows)
}

func (that *matchRepository) GameByID(ctx context.Context, id int64) (*entity.GameDetail, error) {
	query := `SELECT
		g.id, g.room_id, bp.name, wp.name, g.winner, g.total_moves,
		g.duration, g.moves, g.started_at, g.finished_at
	FROM games g
	JOIN players bp ON g.black_player_id = bp.id
	JOIN players wp ON g.white_player_id = wp.id
	WHERE g.id = ?`

	var (
		detail     entity.GameDetail
		movesJSON  string
		startedAt  string
		finishedAt string
	)

	err := that.conn.QueryRowContext(ctx, query, id).Scan(
		&detail.ID, &detail.RoomID, &detail.BlackName, &detail.WhiteName,
		&detail.Winner, &detail.TotalMoves, &detail.Duration,
		&movesJSON, &startedAt, &finishedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("can't find game: %w", err)
	}

	if err = json.Unmarshal([]byte(movesJSON), &detail.Moves); err != nil {
		return nil, fmt.Errorf("can't unmarshal moves: %w", err)
	}

	if detail.StartedAt, err = parseTime(startedAt); err != nil {
		return nil, err
	}
	if detail.FinishedAt, err = parseTime(finishedAt); err != nil {
		return nil, err
	}

	return &detail, nil
}

func (that *matchRepository) ReplayByID(ctx context.Context, id int64) (*entity.Replay, error) {
	detail, err := that.GameByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return &entity.Replay{
		ID:        detail.ID,
		BlackName: detail.BlackName,
		WhiteName: detail.WhiteName,
		Winner:    detail.Winner,
		Moves:     detail.Moves,
	}, nil
}

// Leaderboard ranks players by win rate, then by total games played.
func (that *matchRepository) Leaderboard(ctx context.Context, limit, minGames int) ([]entity.LeaderboardEntry, error) {
	query := `SELECT name, total_games, wins, losses, draws
		FROM players
		WHERE total_games >= ?
		ORDER BY CAST(wins AS REAL) / total_games DESC, total_games DESC
		LIMIT ?`

	rows, err := that.conn.QueryContext(ctx, query, minGames, limit)
	if err != nil {
		return nil, fmt.Errorf("can't query leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []entity.LeaderboardEntry

	for rows.Next() {
		var stats entity.PlayerStats
		if err = rows.Scan(&stats.Name, &stats.TotalGames, &stats.Wins, &stats.Losses, &stats.Draws); err != nil {
			return nil, fmt.Errorf("can't scan leaderboard row: %w", err)
		}

		stats.WinRate = winRate(stats.Wins, stats.TotalGames)

		entries = append(entries, entity.LeaderboardEntry{
			Rank:        len(entries) + 1,
			PlayerStats: stats,
		})
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("can't iterate leaderboard rows: %w", err)
	}

	return entries, nil
}

func scanGameSummaries(rows *sql.Rows) ([]entity.GameSummary, error) {
	var games []entity.GameSummary

	for rows.Next() {
		var (
			game       entity.GameSummary
			finishedAt string
		)

		err := rows.Scan(
			&game.ID, &game.RoomID, &game.BlackName, &game.WhiteName,
			&game.Winner, &game.TotalMoves, &game.Duration, &finishedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("can't scan game row: %w", err)
		}

		if game.FinishedAt, err = parseTime(finishedAt); err != nil {
			return nil, err
		}

		games = append(games, game)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("can't iterate game rows: %w", err)
	}

	return games, nil
}

func winRate(wins, totalGames int) float64 {
	if totalGames == 0 {
		return 0
	}
	return float64(wins) / float64(totalGames)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("can't parse stored time: %w", err)
	}

	return t, nil
}
