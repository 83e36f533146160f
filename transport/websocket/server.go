package websocket

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rocketscienceinc/gomoku-backend/internal/coordinator"
)

// matchCoordinator is the intent surface the transport feeds. Every method
// reports failures back to the connection itself, so none of them return
// errors here.
type matchCoordinator interface {
	CreateRoom(conn coordinator.Conn, name, requestedID string)
	JoinRoom(conn coordinator.Conn, name, roomID string)
	PlaceStone(conn coordinator.Conn, row, col int)
	Restart(conn coordinator.Conn)
	Chat(conn coordinator.Conn, text string)
	Disconnect(conn coordinator.Conn)
}

type Server struct {
	logger      *slog.Logger
	coordinator matchCoordinator
	upgrader    websocket.Upgrader
}

func New(logger *slog.Logger, coord matchCoordinator) *Server {
	return &Server{
		logger:      logger,
		coordinator: coord,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// Start - starts WebSocket server.
func (that *Server) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", that.handleConnection)

	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     mux,
		IdleTimeout: 30 * time.Second,
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

// handleConnection upgrades the request and pumps intents until the client
// goes away. The read loop is the connection's single logical thread; the
// coordinator serializes across connections.
func (that *Server) handleConnection(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "handleConnection")

	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	client := newClient(uuid.NewString(), conn)

	log = log.With("connID", client.ID())
	log.Info("WebSocket connection established")

	defer func() {
		that.coordinator.Disconnect(client)
		_ = conn.Close()
		log.Info("WebSocket connection closed")
	}()

	for {
		var msg Message
		if err = conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Error("unexpected close", "error", err)
			}
			return
		}

		that.dispatch(client, &msg)
	}
}

// dispatch decodes one intent and routes it. The switch is exhaustive over
// the closed intent set; unknown events are logged and skipped.
func (that *Server) dispatch(client *client, msg *Message) {
	log := that.logger.With("method", "dispatch", "connID", client.ID(), "event", msg.Event)

	switch msg.Event {
	case intentCreateRoom:
		var payload createRoomPayload
		if !that.decode(client, msg, &payload) {
			return
		}
		that.coordinator.CreateRoom(client, payload.Name, payload.RoomID)

	case intentJoinRoom:
		var payload joinRoomPayload
		if !that.decode(client, msg, &payload) {
			return
		}
		that.coordinator.JoinRoom(client, payload.Name, payload.RoomID)

	case intentPlaceStone:
		var payload placeStonePayload
		if !that.decode(client, msg, &payload) {
			return
		}
		that.coordinator.PlaceStone(client, payload.Row, payload.Col)

	case intentRestartGame:
		that.coordinator.Restart(client)

	case intentChatMessage:
		var payload chatMessagePayload
		if !that.decode(client, msg, &payload) {
			return
		}
		that.coordinator.Chat(client, payload.Message)

	default:
		log.Warn("unknown event, skipping")
	}
}

// decode unmarshals an intent payload, answering the sender with an error
// event when it is malformed.
func (that *Server) decode(client *client, msg *Message, payload any) bool {
	if err := msg.DecodePayload(payload); err != nil {
		that.logger.Error("failed to decode payload", "event", msg.Event, "error", err)

		if sendErr := client.Send(coordinator.ErrorEvent{Message: "malformed payload"}); sendErr != nil {
			that.logger.Error("failed to send error response", "error", sendErr)
		}

		return false
	}

	return true
}
