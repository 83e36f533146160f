package coordinator

import "github.com/rocketscienceinc/gomoku-backend/internal/entity"

// Event is one server-to-client protocol message. The set of implementations
// below is closed: every message kind the protocol can emit is a concrete
// struct here, so the transport never dispatches on bare strings.
type Event interface {
	EventName() string
}

type PlayerInfo struct {
	Name  string       `json:"name"`
	Color entity.Color `json:"color"`
}

// RoomCreatedEvent is sent to the creator only; the room is not playable yet.
type RoomCreatedEvent struct {
	RoomID     string       `json:"roomId"`
	Color      entity.Color `json:"color"`
	PlayerName string       `json:"playerName"`
}

func (RoomCreatedEvent) EventName() string { return "room_created" }

type RoomJoinedEvent struct {
	RoomID       string       `json:"roomId"`
	Color        entity.Color `json:"color"`
	PlayerName   string       `json:"playerName"`
	OpponentName string       `json:"opponentName"`
}

func (RoomJoinedEvent) EventName() string { return "room_joined" }

type OpponentJoinedEvent struct {
	OpponentName string `json:"opponentName"`
}

func (OpponentJoinedEvent) EventName() string { return "opponent_joined" }

type GameStartEvent struct {
	Players     []PlayerInfo `json:"players"`
	CurrentTurn entity.Color `json:"currentTurn"`
}

func (GameStartEvent) EventName() string { return "game_start" }

type StonePlacedEvent struct {
	Row        int          `json:"row"`
	Col        int          `json:"col"`
	Color      entity.Color `json:"color"`
	MoveNumber int          `json:"moveNumber"`
}

func (StonePlacedEvent) EventName() string { return "stone_placed" }

type TurnChangeEvent struct {
	CurrentTurn entity.Color `json:"currentTurn"`
}

func (TurnChangeEvent) EventName() string { return "turn_change" }

// GameOverEvent carries entity.Nobody as the winner on a draw.
type GameOverEvent struct {
	Winner     entity.Color `json:"winner"`
	WinnerName string       `json:"winnerName"`
}

func (GameOverEvent) EventName() string { return "game_over" }

type GameRestartEvent struct {
	CurrentTurn entity.Color `json:"currentTurn"`
}

func (GameRestartEvent) EventName() string { return "game_restart" }

type ChatMessageEvent struct {
	Name    string       `json:"name"`
	Message string       `json:"message"`
	Color   entity.Color `json:"color"`
}

func (ChatMessageEvent) EventName() string { return "chat_message" }

type OpponentLeftEvent struct {
	Message string `json:"message"`
}

func (OpponentLeftEvent) EventName() string { return "opponent_left" }

// ErrorEvent is only ever delivered to the intent's sender, never broadcast.
type ErrorEvent struct {
	Message string `json:"message"`
}

func (ErrorEvent) EventName() string { return "error_msg" }
