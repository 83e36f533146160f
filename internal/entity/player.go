package entity

// Color identifies a player within a match. Black always moves first.
type Color uint8

const (
	// Nobody doubles as the empty cell value and the "draw" winner.
	Nobody Color = 0
	Black  Color = 1
	White  Color = 2
)

func (that Color) Opponent() Color {
	if that == Black {
		return White
	}
	return Black
}

type Player struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color Color  `json:"color"`
}

// Move is an immutable record of one placed stone.
type Move struct {
	Row   int   `json:"row"`
	Col   int   `json:"col"`
	Color Color `json:"color"`
}
