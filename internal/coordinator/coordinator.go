// Package coordinator routes client intents to rooms, applies the gomoku
// rules, and emits protocol events to every affected connection. It is the
// only writer of the room table and of each room's state.
package coordinator

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/rocketscienceinc/gomoku-backend/internal/apperror"
	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
	"github.com/rocketscienceinc/gomoku-backend/internal/gomoku"
	"github.com/rocketscienceinc/gomoku-backend/internal/pkg"
)

const (
	// How long a detached persistence or mirror write may take before it is
	// abandoned. Match outcomes are already broadcast by then.
	detachedOpTimeout = 5 * time.Second

	roomCodeAttempts = 5

	drawDisplayName     = "draw"
	defaultCreatorName  = "Player 1"
	defaultJoinerName   = "Player 2"
	opponentLeftMessage = "your opponent left the game"
)

var errRoomCodeExhausted = errors.New("could not allocate a unique room code")

// Conn is one client connection as the coordinator sees it. The websocket
// transport implements it; tests use in-memory fakes.
type Conn interface {
	ID() string
	Send(event Event) error
}

// PersistenceGateway durably records finished matches. Calls are
// fire-and-forget: failures are logged and never reach the players.
type PersistenceGateway interface {
	SaveMatch(ctx context.Context, record entity.MatchRecord) (int64, error)
}

// RoomMirror keeps a live-room listing up to date for the reporting API.
// Best effort, same failure semantics as the gateway.
type RoomMirror interface {
	Save(ctx context.Context, snapshot entity.RoomSnapshot) error
	DeleteByID(ctx context.Context, roomID string) error
}

// seat associates a connection with its room and assigned color.
type seat struct {
	roomID string
	color  entity.Color
	conn   Conn
}

type Coordinator struct {
	logger  *slog.Logger
	gateway PersistenceGateway
	mirror  RoomMirror

	// mu serializes all intent handling: every mutation of rooms, seats and
	// the rooms' state happens inside it, so handlers never interleave.
	mu    sync.Mutex
	rooms map[string]*entity.Room
	seats map[string]*seat
}

func New(logger *slog.Logger, gateway PersistenceGateway, mirror RoomMirror) *Coordinator {
	return &Coordinator{
		logger:  logger,
		gateway: gateway,
		mirror:  mirror,
		rooms:   make(map[string]*entity.Room),
		seats:   make(map[string]*seat),
	}
}

// CreateRoom opens a new room with the requester seated as Black. The reply
// goes to the requester only - the room is not playable until someone joins.
func (that *Coordinator) CreateRoom(conn Conn, name, requestedID string) {
	log := that.logger.With("method", "CreateRoom")

	that.mu.Lock()
	defer that.mu.Unlock()

	roomID, err := that.allocateRoomID(requestedID)
	if err != nil {
		that.sendError(conn, err)
		return
	}

	if name == "" {
		name = defaultCreatorName
	}

	room := entity.NewRoom(roomID)
	player, _ := room.AddPlayer(conn.ID(), name)

	that.rooms[roomID] = room
	that.seats[conn.ID()] = &seat{roomID: roomID, color: player.Color, conn: conn}

	that.send(conn, RoomCreatedEvent{
		RoomID:     roomID,
		Color:      player.Color,
		PlayerName: player.Name,
	})

	that.mirrorSave(room)

	log.Info("room created", "roomID", roomID, "connID", conn.ID())
}

// allocateRoomID validates a requested room code or generates a fresh one.
// It runs inside the coordinator lock, so check-and-insert is atomic.
func (that *Coordinator) allocateRoomID(requestedID string) (string, error) {
	if requestedID != "" {
		if _, exists := that.rooms[requestedID]; exists {
			return "", apperror.ErrRoomExists
		}
		return requestedID, nil
	}

	for attempt := 0; attempt < roomCodeAttempts; attempt++ {
		code, err := pkg.GenerateRoomCode()
		if err != nil {
			return "", err
		}
		if _, exists := that.rooms[code]; !exists {
			return code, nil
		}
	}

	return "", errRoomCodeExhausted
}

// JoinRoom seats the requester as White and starts the match.
func (that *Coordinator) JoinRoom(conn Conn, name, roomID string) {
	log := that.logger.With("method", "JoinRoom")

	that.mu.Lock()
	defer that.mu.Unlock()

	room, ok := that.rooms[roomID]
	if !ok {
		that.sendError(conn, apperror.ErrRoomNotFound)
		return
	}

	if room.IsFull() {
		that.sendError(conn, apperror.ErrRoomFull)
		return
	}

	if name == "" {
		name = defaultJoinerName
	}

	player, _ := room.AddPlayer(conn.ID(), name)
	that.seats[conn.ID()] = &seat{roomID: roomID, color: player.Color, conn: conn}

	creator := room.Players[0]

	that.send(conn, RoomJoinedEvent{
		RoomID:       roomID,
		Color:        player.Color,
		PlayerName:   player.Name,
		OpponentName: creator.Name,
	})

	if creatorSeat, seated := that.seats[creator.ID]; seated {
		that.send(creatorSeat.conn, OpponentJoinedEvent{OpponentName: player.Name})
	}

	room.StartedAt = time.Now()

	players := make([]PlayerInfo, 0, len(room.Players))
	for _, p := range room.Players {
		players = append(players, PlayerInfo{Name: p.Name, Color: p.Color})
	}

	that.broadcast(room, GameStartEvent{Players: players, CurrentTurn: entity.Black})

	that.mirrorSave(room)

	log.Info("player joined room", "roomID", roomID, "connID", conn.ID())
}

// PlaceStone validates and applies a move for the requester's room. Every
// rejection is reported to the sender alone and mutates nothing.
func (that *Coordinator) PlaceStone(conn Conn, row, col int) {
	log := that.logger.With("method", "PlaceStone")

	that.mu.Lock()
	defer that.mu.Unlock()

	st, room, err := that.resolve(conn)
	if err != nil {
		that.sendError(conn, err)
		return
	}

	if err = validateMove(room, st.color, row, col); err != nil {
		that.sendError(conn, err)
		return
	}

	if !room.PlaceStone(row, col, st.color) {
		that.sendError(conn, apperror.ErrCellOccupied)
		return
	}

	placed := StonePlacedEvent{
		Row:        row,
		Col:        col,
		Color:      st.color,
		MoveNumber: len(room.MoveHistory),
	}

	switch {
	case gomoku.CheckWin(&room.Board, row, col, st.color):
		room.GameOver = true
		room.Winner = st.color

		that.broadcast(room, placed)
		that.broadcast(room, GameOverEvent{
			Winner:     st.color,
			WinnerName: room.PlayerByID(conn.ID()).Name,
		})

		that.persistFinished(room)

	case gomoku.CheckDraw(room.MoveHistory):
		room.GameOver = true
		room.Winner = entity.Nobody

		that.broadcast(room, placed)
		that.broadcast(room, GameOverEvent{
			Winner:     entity.Nobody,
			WinnerName: drawDisplayName,
		})

		that.persistFinished(room)

	default:
		room.SwitchTurn()

		that.broadcast(room, placed)
		that.broadcast(room, TurnChangeEvent{CurrentTurn: room.CurrentTurn})
	}

	that.mirrorSave(room)

	log.Debug("stone placed", "roomID", room.ID, "row", row, "col", col, "color", st.color)
}

// validateMove enforces turn order and coordinates before the room mutates.
func validateMove(room *entity.Room, color entity.Color, row, col int) error {
	if room.GameOver {
		return apperror.ErrGameFinished
	}

	if !room.IsFull() {
		return apperror.ErrGameNotStarted
	}

	if room.CurrentTurn != color {
		return apperror.ErrNotYourTurn
	}

	if row < 0 || row >= entity.BoardSize || col < 0 || col >= entity.BoardSize {
		return apperror.ErrInvalidPosition
	}

	return nil
}

// Restart resets the requester's room in place for a rematch. Seats and
// colors are kept; the board, history and clock start over with Black to
// move. No-op when the connection has no live room.
func (that *Coordinator) Restart(conn Conn) {
	log := that.logger.With("method", "Restart")

	that.mu.Lock()
	defer that.mu.Unlock()

	_, room, err := that.resolve(conn)
	if err != nil {
		return
	}

	room.Reset()
	room.StartedAt = time.Now()

	that.broadcast(room, GameRestartEvent{CurrentTurn: entity.Black})

	that.mirrorSave(room)

	log.Info("game restarted", "roomID", room.ID)
}

// Chat relays a chat line to everyone in the requester's room, the sender
// included. No-op when the connection has no live room.
func (that *Coordinator) Chat(conn Conn, text string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	st, room, err := that.resolve(conn)
	if err != nil {
		return
	}

	name := "unknown"
	if player := room.PlayerByID(conn.ID()); player != nil {
		name = player.Name
	}

	that.broadcast(room, ChatMessageEvent{Name: name, Message: text, Color: st.color})
}

// Disconnect tears down the connection's room for all parties. There is no
// grace period and no reconnection: the room is gone even mid-game, and
// unfinished games are never persisted.
func (that *Coordinator) Disconnect(conn Conn) {
	log := that.logger.With("method", "Disconnect")

	that.mu.Lock()
	defer that.mu.Unlock()

	st, ok := that.seats[conn.ID()]
	if !ok {
		return
	}

	delete(that.seats, conn.ID())

	room, ok := that.rooms[st.roomID]
	if !ok {
		return
	}

	for _, opponent := range room.Opponents(conn.ID()) {
		if peer, seated := that.seats[opponent.ID]; seated {
			that.send(peer.conn, OpponentLeftEvent{Message: opponentLeftMessage})
		}
		delete(that.seats, opponent.ID)
	}

	delete(that.rooms, room.ID)

	that.mirrorDelete(room.ID)

	log.Info("room torn down after disconnect", "roomID", room.ID, "connID", conn.ID())
}

// resolve maps a connection to its seat and live room.
func (that *Coordinator) resolve(conn Conn) (*seat, *entity.Room, error) {
	st, ok := that.seats[conn.ID()]
	if !ok {
		return nil, nil, apperror.ErrRoomNotFound
	}

	room, ok := that.rooms[st.roomID]
	if !ok {
		return nil, nil, apperror.ErrRoomNotFound
	}

	return st, room, nil
}

// persistFinished snapshots a finished room and hands it to the gateway on a
// detached goroutine. The result is already final to the players, so the
// caller never waits and failures are logged only.
func (that *Coordinator) persistFinished(room *entity.Room) {
	log := that.logger.With("method", "persistFinished", "roomID", room.ID)

	if room.StartedAt.IsZero() || !room.IsFull() {
		log.Warn("incomplete match data, skipping save")
		return
	}

	moves := make([]entity.Move, len(room.MoveHistory))
	copy(moves, room.MoveHistory)

	record := entity.MatchRecord{
		RoomID:     room.ID,
		BlackName:  room.Players[0].Name,
		WhiteName:  room.Players[1].Name,
		Winner:     room.Winner,
		Moves:      moves,
		Duration:   room.Duration(),
		StartedAt:  room.StartedAt,
		FinishedAt: time.Now(),
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), detachedOpTimeout)
		defer cancel()

		matchID, err := that.gateway.SaveMatch(ctx, record)
		if err != nil {
			log.Error("failed to save match", "error", err)
			return
		}

		log.Info("match saved", "matchID", matchID, "moves", len(record.Moves))
	}()
}

// mirrorSave pushes the room snapshot to the live-room mirror, detached.
func (that *Coordinator) mirrorSave(room *entity.Room) {
	snapshot := room.Snapshot()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), detachedOpTimeout)
		defer cancel()

		if err := that.mirror.Save(ctx, snapshot); err != nil {
			that.logger.Error("failed to mirror room", "roomID", snapshot.ID, "error", err)
		}
	}()
}

func (that *Coordinator) mirrorDelete(roomID string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), detachedOpTimeout)
		defer cancel()

		if err := that.mirror.DeleteByID(ctx, roomID); err != nil {
			that.logger.Error("failed to remove room from mirror", "roomID", roomID, "error", err)
		}
	}()
}

// broadcast sends an event to every seated player of the room.
func (that *Coordinator) broadcast(room *entity.Room, event Event) {
	for _, player := range room.Players {
		if st, ok := that.seats[player.ID]; ok {
			that.send(st.conn, event)
		}
	}
}

func (that *Coordinator) send(conn Conn, event Event) {
	if err := conn.Send(event); err != nil {
		that.logger.Error("failed to send event", "event", event.EventName(), "connID", conn.ID(), "error", err)
	}
}

func (that *Coordinator) sendError(conn Conn, err error) {
	that.send(conn, ErrorEvent{Message: err.Error()})
}
