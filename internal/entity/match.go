package entity

import "time"

// MatchRecord is the finalized snapshot of a finished room handed to the
// persistence gateway. Winner Nobody means a draw.
type MatchRecord struct {
	RoomID     string    `json:"room_id"`
	BlackName  string    `json:"black_player_name"`
	WhiteName  string    `json:"white_player_name"`
	Winner     Color     `json:"winner"`
	Moves      []Move    `json:"moves"`
	Duration   int       `json:"duration"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

type PlayerStats struct {
	Name       string  `json:"name"`
	TotalGames int     `json:"total_games"`
	Wins       int     `json:"wins"`
	Losses     int     `json:"losses"`
	Draws      int     `json:"draws"`
	WinRate    float64 `json:"win_rate"`
}

type GameSummary struct {
	ID         int64     `json:"id"`
	RoomID     string    `json:"room_id"`
	BlackName  string    `json:"black_player_name"`
	WhiteName  string    `json:"white_player_name"`
	Winner     Color     `json:"winner"`
	TotalMoves int       `json:"total_moves"`
	Duration   int       `json:"duration"`
	FinishedAt time.Time `json:"finished_at"`
}

type GameDetail struct {
	GameSummary
	Moves     []Move    `json:"moves"`
	StartedAt time.Time `json:"started_at"`
}

// Replay carries just enough of a finished game to drive a move scrubber.
type Replay struct {
	ID        int64  `json:"id"`
	BlackName string `json:"black_player_name"`
	WhiteName string `json:"white_player_name"`
	Winner    Color  `json:"winner"`
	Moves     []Move `json:"moves"`
}

type LeaderboardEntry struct {
	Rank int `json:"rank"`
	PlayerStats
}
