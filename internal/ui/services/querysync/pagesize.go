package querysync

// Metrics describes the card grid in terminal cells. Card sizes include
// margins and border; paddings are the chrome around the grid.
type Metrics struct {
	CardWidth         int
	CardHeight        int
	HorizontalPadding int
	VerticalPadding   int
}

// Columns returns how many cards fit across width, at least 1
func (m Metrics) Columns(width int) int {
	return fit(width-m.HorizontalPadding, m.CardWidth)
}

// Rows returns how many cards fit down height, at least 1
func (m Metrics) Rows(height int) int {
	return fit(height-m.VerticalPadding, m.CardHeight)
}

// ComputePageSize returns the number of cards that fit in the container
func ComputePageSize(width, height int, m Metrics) int {
	return m.Columns(width) * m.Rows(height)
}

func fit(space, cell int) int {
	if cell <= 0 || space <= 0 {
		return 1
	}
	n := space / cell
	if n < 1 {
		return 1
	}
	return n
}
