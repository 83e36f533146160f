package websocket

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rocketscienceinc/gomoku-backend/internal/coordinator"
)

// client wraps one websocket connection behind the coordinator.Conn
// interface. Writes are serialized with a mutex because broadcasts from the
// coordinator and error replies from the read loop share the connection.
type client struct {
	id   string
	conn *websocket.Conn

	writeMu sync.Mutex
}

func newClient(id string, conn *websocket.Conn) *client {
	return &client{
		id:   id,
		conn: conn,
	}
}

func (that *client) ID() string {
	return that.id
}

func (that *client) Send(event coordinator.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	msg := Message{
		Event:   event.EventName(),
		Payload: payload,
	}

	that.writeMu.Lock()
	defer that.writeMu.Unlock()

	if err = that.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}
