package navigation

// State holds the grid cursor
type State struct {
	Cursor  int
	Columns int
	Count   int
}

// Direction represents movement directions
type Direction string

const (
	DirectionUp    Direction = "up"
	DirectionDown  Direction = "down"
	DirectionLeft  Direction = "left"
	DirectionRight Direction = "right"
	DirectionHome  Direction = "home"
	DirectionEnd   Direction = "end"
)

// Edge reports a move that ran off the page
type Edge int

const (
	EdgeNone Edge = iota
	EdgeNext
	EdgePrev
)
