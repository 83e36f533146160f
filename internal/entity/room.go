package entity

import "time"

const (
	BoardSize  = 15
	TotalCells = BoardSize * BoardSize

	MaxPlayers = 2
)

type Board [BoardSize][BoardSize]Color

// Room holds the authoritative state of one match. It carries no notion of
// connections or turn legality for a given requester - that is the
// coordinator's job.
type Room struct {
	ID          string    `json:"id"`
	Board       Board     `json:"board"`
	Players     []*Player `json:"players"`
	CurrentTurn Color     `json:"current_turn"`
	MoveHistory []Move    `json:"move_history"`
	GameOver    bool      `json:"game_over"`
	Winner      Color     `json:"winner"`
	StartedAt   time.Time `json:"started_at"`
}

func NewRoom(id string) *Room {
	return &Room{
		ID:          id,
		CurrentTurn: Black,
	}
}

// AddPlayer seats a player, assigning Black to the first arrival and White to
// the second. Returns false without mutation when both slots are taken.
func (that *Room) AddPlayer(id, name string) (*Player, bool) {
	if len(that.Players) >= MaxPlayers {
		return nil, false
	}

	color := Black
	if len(that.Players) == 1 {
		color = White
	}

	player := &Player{ID: id, Name: name, Color: color}
	that.Players = append(that.Players, player)

	return player, true
}

func (that *Room) PlayerByID(id string) *Player {
	for _, player := range that.Players {
		if player.ID == id {
			return player
		}
	}
	return nil
}

// Opponents returns every seated player except the given one.
func (that *Room) Opponents(id string) []*Player {
	opponents := make([]*Player, 0, len(that.Players))
	for _, player := range that.Players {
		if player.ID != id {
			opponents = append(opponents, player)
		}
	}
	return opponents
}

// PlaceStone writes a stone and appends it to the move history. A non-empty
// target cell fails without mutation. Bounds and turn order are validated by
// the caller.
func (that *Room) PlaceStone(row, col int, color Color) bool {
	if that.Board[row][col] != Nobody {
		return false
	}

	that.Board[row][col] = color
	that.MoveHistory = append(that.MoveHistory, Move{Row: row, Col: col, Color: color})

	return true
}

// SwitchTurn flips the current turn unconditionally. Must not be called after
// a game-ending move.
func (that *Room) SwitchTurn() {
	that.CurrentTurn = that.CurrentTurn.Opponent()
}

// Reset clears the match state for a rematch. Seats and room ID are kept.
func (that *Room) Reset() {
	that.Board = Board{}
	that.CurrentTurn = Black
	that.MoveHistory = nil
	that.GameOver = false
	that.Winner = Nobody
	that.StartedAt = time.Time{}
}

// Duration reports the elapsed match time in whole seconds, 0 when the match
// has not started.
func (that *Room) Duration() int {
	if that.StartedAt.IsZero() {
		return 0
	}
	return int(time.Since(that.StartedAt).Seconds())
}

func (that *Room) IsFull() bool {
	return len(that.Players) >= MaxPlayers
}

func (that *Room) IsEmpty() bool {
	return len(that.Players) == 0
}

// RoomSnapshot is the live-room view mirrored to Redis for the reporting API.
type RoomSnapshot struct {
	ID          string    `json:"id"`
	Players     []string  `json:"players"`
	CurrentTurn Color     `json:"current_turn"`
	Moves       int       `json:"moves"`
	GameOver    bool      `json:"game_over"`
	StartedAt   time.Time `json:"started_at"`
}

func (that *Room) Snapshot() RoomSnapshot {
	names := make([]string, 0, len(that.Players))
	for _, player := range that.Players {
		names = append(names, player.Name)
	}

	return RoomSnapshot{
		ID:          that.ID,
		Players:     names,
		CurrentTurn: that.CurrentTurn,
		Moves:       len(that.MoveHistory),
		GameOver:    that.GameOver,
		StartedAt:   that.StartedAt,
	}
}
