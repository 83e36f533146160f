package apperror

import "errors"

var (
	ErrRoomNotFound    = errors.New("room not found")
	ErrRoomExists      = errors.New("room already exists, pick another code")
	ErrRoomFull        = errors.New("room is full")
	ErrGameFinished    = errors.New("game is already finished")
	ErrGameNotStarted  = errors.New("waiting for an opponent to join")
	ErrNotYourTurn     = errors.New("it's not your turn")
	ErrCellOccupied    = errors.New("cell is already occupied")
	ErrInvalidPosition = errors.New("invalid position")

	ErrNotFound = errors.New("not found")
)
