// Package gomoku holds the pure win and draw rules for a 15x15 five-in-a-row
// board. It never mutates state; room and turn bookkeeping live elsewhere.
package gomoku

import "github.com/rocketscienceinc/gomoku-backend/internal/entity"

const winningCount = 5

// The four axes a line can run along: horizontal, vertical, diagonal and
// anti-diagonal. Each is scanned outward in both directions.
var directions = [4][2]int{
	{0, 1},
	{1, 0},
	{1, 1},
	{1, -1},
}

// CheckWin reports whether the stone just placed at (row, col) completes a
// line of five or more. The caller guarantees the coordinates are in range
// and that board[row][col] already equals player.
func CheckWin(board *entity.Board, row, col int, player entity.Color) bool {
	for _, dir := range directions {
		count := 1

		count += countSame(board, row, col, dir[0], dir[1], player)
		count += countSame(board, row, col, -dir[0], -dir[1], player)

		if count >= winningCount {
			return true
		}
	}

	return false
}

// countSame counts contiguous same-color stones outward from (row, col),
// excluding the origin, clamped at the board edges.
func countSame(board *entity.Board, row, col, dr, dc int, player entity.Color) int {
	count := 0

	for i := 1; i < winningCount; i++ {
		r := row + dr*i
		c := col + dc*i

		if r < 0 || r >= entity.BoardSize || c < 0 || c >= entity.BoardSize {
			break
		}
		if board[r][c] != player {
			break
		}

		count++
	}

	return count
}

// CheckDraw reports whether the board is full. Cells are never overwritten,
// so the move count alone decides it. Must be checked only after CheckWin:
// the 225th move can still complete a line.
func CheckDraw(moveHistory []entity.Move) bool {
	return len(moveHistory) >= entity.TotalCells
}
