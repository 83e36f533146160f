package websocket

import (
	"encoding/json"
	"fmt"
)

// Client-to-server intents. A closed set: the dispatcher switches over these
// and nothing else.
const (
	intentCreateRoom  = "create_room"
	intentJoinRoom    = "join_room"
	intentPlaceStone  = "place_stone"
	intentRestartGame = "restart_game"
	intentChatMessage = "chat_message"
)

// Message is the wire envelope in both directions.
type Message struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func (that *Message) DecodePayload(v any) error {
	if len(that.Payload) == 0 {
		return fmt.Errorf("missing payload for %q", that.Event)
	}

	if err := json.Unmarshal(that.Payload, v); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	return nil
}

type createRoomPayload struct {
	Name   string `json:"name"`
	RoomID string `json:"roomId,omitempty"`
}

type joinRoomPayload struct {
	Name   string `json:"name"`
	RoomID string `json:"roomId"`
}

type placeStonePayload struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

type chatMessagePayload struct {
	Message string `json:"message"`
}
