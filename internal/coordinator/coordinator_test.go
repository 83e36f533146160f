package coordinator

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeConn records every event the coordinator sends it.
type fakeConn struct {
	id     string
	events []Event
}

func newFakeConn(id string) *fakeConn {
	return &fakeConn{id: id}
}

func (that *fakeConn) ID() string { return that.id }

func (that *fakeConn) Send(event Event) error {
	that.events = append(that.events, event)
	return nil
}

// last returns the most recent event, failing the test when there is none.
func (that *fakeConn) last(t *testing.T) Event {
	t.Helper()
	require.NotEmpty(t, that.events, "conn %s received no events", that.id)
	return that.events[len(that.events)-1]
}

func (that *fakeConn) clear() { that.events = nil }

// names lists the received event names in order.
func (that *fakeConn) names() []string {
	names := make([]string, 0, len(that.events))
	for _, event := range that.events {
		names = append(names, event.EventName())
	}
	return names
}

// fakeGateway hands saved records to the test over a channel so tests can
// wait out the detached save goroutine.
type fakeGateway struct {
	saved chan entity.MatchRecord
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{saved: make(chan entity.MatchRecord, 4)}
}

func (that *fakeGateway) SaveMatch(_ context.Context, record entity.MatchRecord) (int64, error) {
	that.saved <- record
	return 1, nil
}

func (that *fakeGateway) waitForRecord(t *testing.T) entity.MatchRecord {
	t.Helper()

	select {
	case record := <-that.saved:
		return record
	case <-time.After(2 * time.Second):
		t.Fatal("no match record persisted within 2s")
		return entity.MatchRecord{}
	}
}

type fakeMirror struct{}

func (fakeMirror) Save(_ context.Context, _ entity.RoomSnapshot) error { return nil }

func (fakeMirror) DeleteByID(_ context.Context, _ string) error { return nil }

func newTestCoordinator() (*Coordinator, *fakeGateway) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	gateway := newFakeGateway()

	return New(logger, gateway, fakeMirror{}), gateway
}

// startedGame wires two connections into a playing room with Black to move.
func startedGame(t *testing.T, coord *Coordinator) (black, white *fakeConn) {
	t.Helper()

	black = newFakeConn("conn-black")
	white = newFakeConn("conn-white")

	coord.CreateRoom(black, "Alice", "ROOM01")
	coord.JoinRoom(white, "Bob", "ROOM01")

	black.clear()
	white.clear()

	return black, white
}

func TestCoordinator_CreateRoom(t *testing.T) {
	t.Run("Creator is seated as black with the requested code", func(t *testing.T) {
		coord, _ := newTestCoordinator()
		conn := newFakeConn("conn-1")

		// When: a room is created with an explicit code
		coord.CreateRoom(conn, "Alice", "ROOM01")

		// Then: the creator alone gets room_created
		created, ok := conn.last(t).(RoomCreatedEvent)
		require.True(t, ok)
		assert.Equal(t, "ROOM01", created.RoomID)
		assert.Equal(t, entity.Black, created.Color)
		assert.Equal(t, "Alice", created.PlayerName)
	})

	t.Run("Generated code when none is requested", func(t *testing.T) {
		coord, _ := newTestCoordinator()
		conn := newFakeConn("conn-1")

		coord.CreateRoom(conn, "Alice", "")

		created, ok := conn.last(t).(RoomCreatedEvent)
		require.True(t, ok)
		assert.Len(t, created.RoomID, 6)
	})

	t.Run("Duplicate room code is rejected", func(t *testing.T) {
		coord, _ := newTestCoordinator()
		first := newFakeConn("conn-1")
		second := newFakeConn("conn-2")

		coord.CreateRoom(first, "Alice", "ROOM01")
		coord.CreateRoom(second, "Bob", "ROOM01")

		errEvent, ok := second.last(t).(ErrorEvent)
		require.True(t, ok)
		assert.Contains(t, errEvent.Message, "already exists")
	})

	t.Run("Blank creator name falls back to a default", func(t *testing.T) {
		coord, _ := newTestCoordinator()
		conn := newFakeConn("conn-1")

		coord.CreateRoom(conn, "", "ROOM01")

		created, ok := conn.last(t).(RoomCreatedEvent)
		require.True(t, ok)
		assert.Equal(t, defaultCreatorName, created.PlayerName)
	})
}

func TestCoordinator_JoinRoom(t *testing.T) {
	t.Run("Joining starts the match for both players", func(t *testing.T) {
		coord, _ := newTestCoordinator()
		creator := newFakeConn("conn-1")
		joiner := newFakeConn("conn-2")
		coord.CreateRoom(creator, "Alice", "ROOM01")

		// When: the second player joins
		coord.JoinRoom(joiner, "Bob", "ROOM01")

		// Then: the joiner gets room_joined then game_start
		require.Equal(t, []string{"room_joined", "game_start"}, joiner.names())

		joined, ok := joiner.events[0].(RoomJoinedEvent)
		require.True(t, ok)
		assert.Equal(t, entity.White, joined.Color)
		assert.Equal(t, "Alice", joined.OpponentName)

		// Then: the creator gets opponent_joined then game_start
		require.Equal(t, []string{"room_created", "opponent_joined", "game_start"}, creator.names())

		start, ok := creator.events[2].(GameStartEvent)
		require.True(t, ok)
		assert.Equal(t, entity.Black, start.CurrentTurn)
		require.Len(t, start.Players, 2)
		assert.Equal(t, PlayerInfo{Name: "Alice", Color: entity.Black}, start.Players[0])
		assert.Equal(t, PlayerInfo{Name: "Bob", Color: entity.White}, start.Players[1])
	})

	t.Run("Unknown room code", func(t *testing.T) {
		coord, _ := newTestCoordinator()
		conn := newFakeConn("conn-1")

		coord.JoinRoom(conn, "Bob", "NOPE42")

		errEvent, ok := conn.last(t).(ErrorEvent)
		require.True(t, ok)
		assert.Equal(t, "room not found", errEvent.Message)
	})

	t.Run("Full room rejects a third player", func(t *testing.T) {
		coord, _ := newTestCoordinator()
		startedGame(t, coord)
		third := newFakeConn("conn-3")

		coord.JoinRoom(third, "Carol", "ROOM01")

		errEvent, ok := third.last(t).(ErrorEvent)
		require.True(t, ok)
		assert.Equal(t, "room is full", errEvent.Message)
	})
}

func TestCoordinator_PlaceStone(t *testing.T) {
	t.Run("Valid move broadcasts stone_placed then turn_change", func(t *testing.T) {
		coord, _ := newTestCoordinator()
		black, white := startedGame(t, coord)

		// When: black opens at the center
		coord.PlaceStone(black, 7, 7)

		// Then: both players see the stone and the turn flip
		for _, conn := range []*fakeConn{black, white} {
			require.Equal(t, []string{"stone_placed", "turn_change"}, conn.names())

			placed, ok := conn.events[0].(StonePlacedEvent)
			require.True(t, ok)
			assert.Equal(t, StonePlacedEvent{Row: 7, Col: 7, Color: entity.Black, MoveNumber: 1}, placed)

			turn, ok := conn.events[1].(TurnChangeEvent)
			require.True(t, ok)
			assert.Equal(t, entity.White, turn.CurrentTurn)
		}
	})

	t.Run("Turns alternate back to black", func(t *testing.T) {
		coord, _ := newTestCoordinator()
		black, white := startedGame(t, coord)

		coord.PlaceStone(black, 7, 7)
		coord.PlaceStone(white, 7, 8)

		turn, ok := black.last(t).(TurnChangeEvent)
		require.True(t, ok)
		assert.Equal(t, entity.Black, turn.CurrentTurn)
	})

	t.Run("Out of turn is rejected for the sender only", func(t *testing.T) {
		coord, _ := newTestCoordinator()
		black, white := startedGame(t, coord)

		// When: white moves while it is black's turn
		coord.PlaceStone(white, 7, 7)

		// Then: only white hears about it
		errEvent, ok := white.last(t).(ErrorEvent)
		require.True(t, ok)
		assert.Equal(t, "it's not your turn", errEvent.Message)
		assert.Empty(t, black.events)
	})

	t.Run("Move before an opponent joins", func(t *testing.T) {
		coord, _ := newTestCoordinator()
		conn := newFakeConn("conn-1")
		coord.CreateRoom(conn, "Alice", "ROOM01")

		coord.PlaceStone(conn, 7, 7)

		errEvent, ok := conn.last(t).(ErrorEvent)
		require.True(t, ok)
		assert.Equal(t, "waiting for an opponent to join", errEvent.Message)
	})

	t.Run("Out of range coordinates", func(t *testing.T) {
		coord, _ := newTestCoordinator()
		black, _ := startedGame(t, coord)

		for _, cell := range [][2]int{{-1, 7}, {7, -1}, {15, 7}, {7, 15}} {
			coord.PlaceStone(black, cell[0], cell[1])

			errEvent, ok := black.last(t).(ErrorEvent)
			require.True(t, ok)
			assert.Equal(t, "invalid position", errEvent.Message)
		}
	})

	t.Run("Occupied cell", func(t *testing.T) {
		coord, _ := newTestCoordinator()
		black, white := startedGame(t, coord)
		coord.PlaceStone(black, 7, 7)

		coord.PlaceStone(white, 7, 7)

		errEvent, ok := white.last(t).(ErrorEvent)
		require.True(t, ok)
		assert.Equal(t, "cell is already occupied", errEvent.Message)
	})

	t.Run("Move with no room", func(t *testing.T) {
		coord, _ := newTestCoordinator()
		conn := newFakeConn("conn-1")

		coord.PlaceStone(conn, 7, 7)

		errEvent, ok := conn.last(t).(ErrorEvent)
		require.True(t, ok)
		assert.Equal(t, "room not found", errEvent.Message)
	})
}

func TestCoordinator_Win(t *testing.T) {
	t.Run("Fifth stone in a row ends and persists the match", func(t *testing.T) {
		coord, gateway := newTestCoordinator()
		black, white := startedGame(t, coord)

		// When: black builds a horizontal five while white plays elsewhere
		for i := 0; i < 4; i++ {
			coord.PlaceStone(black, 7, 3+i)
			coord.PlaceStone(white, i, 0)
		}
		black.clear()
		white.clear()

		coord.PlaceStone(black, 7, 7)

		// Then: both players see the final stone and game_over, no turn_change
		for _, conn := range []*fakeConn{black, white} {
			require.Equal(t, []string{"stone_placed", "game_over"}, conn.names())

			over, ok := conn.events[1].(GameOverEvent)
			require.True(t, ok)
			assert.Equal(t, entity.Black, over.Winner)
			assert.Equal(t, "Alice", over.WinnerName)
		}

		// Then: the finished match reaches the gateway
		record := gateway.waitForRecord(t)
		assert.Equal(t, "ROOM01", record.RoomID)
		assert.Equal(t, "Alice", record.BlackName)
		assert.Equal(t, "Bob", record.WhiteName)
		assert.Equal(t, entity.Black, record.Winner)
		assert.Len(t, record.Moves, 9)
		assert.Equal(t, entity.Move{Row: 7, Col: 7, Color: entity.Black}, record.Moves[8])
		assert.False(t, record.StartedAt.IsZero())
		assert.False(t, record.FinishedAt.IsZero())
	})

	t.Run("No moves accepted after game over", func(t *testing.T) {
		coord, gateway := newTestCoordinator()
		black, white := startedGame(t, coord)

		for i := 0; i < 4; i++ {
			coord.PlaceStone(black, 7, 3+i)
			coord.PlaceStone(white, i, 0)
		}
		coord.PlaceStone(black, 7, 7)
		gateway.waitForRecord(t)
		white.clear()

		// When: white tries to keep playing
		coord.PlaceStone(white, 10, 10)

		errEvent, ok := white.last(t).(ErrorEvent)
		require.True(t, ok)
		assert.Equal(t, "game is already finished", errEvent.Message)
	})
}

func TestCoordinator_Restart(t *testing.T) {
	t.Run("Rematch clears the board and black moves first again", func(t *testing.T) {
		coord, gateway := newTestCoordinator()
		black, white := startedGame(t, coord)

		for i := 0; i < 4; i++ {
			coord.PlaceStone(black, 7, 3+i)
			coord.PlaceStone(white, i, 0)
		}
		coord.PlaceStone(black, 7, 7)
		gateway.waitForRecord(t)
		black.clear()
		white.clear()

		// When: either player asks for a rematch
		coord.Restart(white)

		// Then: both players get game_restart with black to move
		for _, conn := range []*fakeConn{black, white} {
			restart, ok := conn.last(t).(GameRestartEvent)
			require.True(t, ok)
			assert.Equal(t, entity.Black, restart.CurrentTurn)
		}

		// Then: the previously winning cell is free again
		black.clear()
		coord.PlaceStone(black, 7, 7)

		placed, ok := black.events[0].(StonePlacedEvent)
		require.True(t, ok)
		assert.Equal(t, 1, placed.MoveNumber)
	})

	t.Run("Restart with no room is a silent no-op", func(t *testing.T) {
		coord, _ := newTestCoordinator()
		conn := newFakeConn("conn-1")

		coord.Restart(conn)

		assert.Empty(t, conn.events)
	})
}

func TestCoordinator_Chat(t *testing.T) {
	t.Run("Chat reaches both players, sender included", func(t *testing.T) {
		coord, _ := newTestCoordinator()
		black, white := startedGame(t, coord)

		coord.Chat(black, "good luck")

		for _, conn := range []*fakeConn{black, white} {
			message, ok := conn.last(t).(ChatMessageEvent)
			require.True(t, ok)
			assert.Equal(t, "Alice", message.Name)
			assert.Equal(t, "good luck", message.Message)
			assert.Equal(t, entity.Black, message.Color)
		}
	})

	t.Run("Chat with no room is a silent no-op", func(t *testing.T) {
		coord, _ := newTestCoordinator()
		conn := newFakeConn("conn-1")

		coord.Chat(conn, "anyone here?")

		assert.Empty(t, conn.events)
	})
}

func TestCoordinator_Disconnect(t *testing.T) {
	t.Run("Disconnect tears the room down for both players", func(t *testing.T) {
		coord, _ := newTestCoordinator()
		black, white := startedGame(t, coord)

		// When: white drops mid-game
		coord.Disconnect(white)

		// Then: black is told the opponent left
		left, ok := black.last(t).(OpponentLeftEvent)
		require.True(t, ok)
		assert.Equal(t, opponentLeftMessage, left.Message)

		// Then: the room is gone for the survivor too
		black.clear()
		coord.PlaceStone(black, 7, 7)

		errEvent, ok := black.last(t).(ErrorEvent)
		require.True(t, ok)
		assert.Equal(t, "room not found", errEvent.Message)
	})

	t.Run("Room code is reusable after teardown", func(t *testing.T) {
		coord, _ := newTestCoordinator()
		black, _ := startedGame(t, coord)
		coord.Disconnect(black)

		fresh := newFakeConn("conn-fresh")
		coord.CreateRoom(fresh, "Carol", "ROOM01")

		created, ok := fresh.last(t).(RoomCreatedEvent)
		require.True(t, ok)
		assert.Equal(t, "ROOM01", created.RoomID)
	})

	t.Run("Unknown connection is a no-op", func(t *testing.T) {
		coord, _ := newTestCoordinator()

		coord.Disconnect(newFakeConn("conn-ghost"))
	})

	t.Run("Unfinished game is never persisted", func(t *testing.T) {
		coord, gateway := newTestCoordinator()
		black, _ := startedGame(t, coord)
		coord.PlaceStone(black, 7, 7)

		coord.Disconnect(black)

		select {
		case record := <-gateway.saved:
			t.Fatalf("unexpected persisted record for room %s", record.RoomID)
		case <-time.After(100 * time.Millisecond):
		}
	})
}
