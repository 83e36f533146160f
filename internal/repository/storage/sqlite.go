package storage

import (
	"context"
	"database/sql"
	"fmt"

	// import the SQLite driver to register it with the database/sql package.
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

type SQLiteStorage struct {
	Connection *sql.DB
}

func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("can't open database: %w", err)
	}

	if err = conn.Ping(); err != nil {
		return nil, fmt.Errorf("can't connect to database: %w", err)
	}

	return &SQLiteStorage{Connection: conn}, nil
}

// Init creates the match-history schema when it does not exist yet.
func (that *SQLiteStorage) Init(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS players (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			name        TEXT NOT NULL UNIQUE,
			total_games INTEGER NOT NULL DEFAULT 0,
			wins        INTEGER NOT NULL DEFAULT 0,
			losses      INTEGER NOT NULL DEFAULT 0,
			draws       INTEGER NOT NULL DEFAULT 0,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS games (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			room_id         TEXT NOT NULL,
			black_player_id INTEGER NOT NULL REFERENCES players(id),
			white_player_id INTEGER NOT NULL REFERENCES players(id),
			winner          INTEGER NOT NULL,
			total_moves     INTEGER NOT NULL,
			duration        INTEGER NOT NULL,
			moves           TEXT NOT NULL,
			started_at      TEXT NOT NULL,
			finished_at     TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_games_black_player ON games(black_player_id)`,
		`CREATE INDEX IF NOT EXISTS idx_games_white_player ON games(white_player_id)`,
		`CREATE INDEX IF NOT EXISTS idx_games_finished_at ON games(finished_at)`,
	}

	for _, query := range queries {
		if _, err := that.Connection.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("can't create schema: %w", err)
		}
	}

	return nil
}

func (that *SQLiteStorage) Close() error {
	if err := that.Connection.Close(); err != nil {
		return fmt.Errorf("can't close database: %w", err)
	}

	return nil
}
