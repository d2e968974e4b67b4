package navigation

// Service moves a cursor over the cards of one result page laid out in a
// grid. Moving past the first or last card reports an edge so the caller
// can turn the page.
type Service struct {
	state *State
}

// NewService creates a new navigation service
func NewService() *Service {
	return &Service{
		state: &State{Columns: 1},
	}
}

// GetCursor returns current cursor position
func (s *Service) GetCursor() int {
	return s.state.Cursor
}

// SetGrid updates the layout after a resize or a new result page.
// The cursor is clamped to the new card count.
func (s *Service) SetGrid(columns, count int) {
	if columns < 1 {
		columns = 1
	}
	if count < 0 {
		count = 0
	}
	s.state.Columns = columns
	s.state.Count = count
	s.state.Cursor = s.clampIndex(s.state.Cursor)
}

// Navigate handles navigation in a direction
func (s *Service) Navigate(direction Direction) Edge {
	if s.state.Count == 0 {
		switch direction {
		case DirectionRight, DirectionDown:
			return EdgeNext
		case DirectionLeft, DirectionUp:
			return EdgePrev
		}
		return EdgeNone
	}

	last := s.state.Count - 1
	cols := s.state.Columns

	switch direction {
	case DirectionLeft:
		if s.state.Cursor == 0 {
			return EdgePrev
		}
		s.state.Cursor--
	case DirectionRight:
		if s.state.Cursor == last {
			return EdgeNext
		}
		s.state.Cursor++
	case DirectionUp:
		if s.state.Cursor-cols < 0 {
			return EdgePrev
		}
		s.state.Cursor -= cols
	case DirectionDown:
		if s.state.Cursor+cols > last {
			// partial last row: drop to the final card first
			if s.state.Cursor/cols < last/cols {
				s.state.Cursor = last
				return EdgeNone
			}
			return EdgeNext
		}
		s.state.Cursor += cols
	case DirectionHome:
		s.state.Cursor = 0
	case DirectionEnd:
		s.state.Cursor = last
	}
	return EdgeNone
}

// MoveToIndex moves cursor to specific index
func (s *Service) MoveToIndex(index int) {
	s.state.Cursor = s.clampIndex(index)
}

// Row and Column return the cursor's grid position
func (s *Service) Row() int    { return s.state.Cursor / s.state.Columns }
func (s *Service) Column() int { return s.state.Cursor % s.state.Columns }

func (s *Service) clampIndex(index int) int {
	if index < 0 || s.state.Count == 0 {
		return 0
	}
	if index >= s.state.Count {
		return s.state.Count - 1
	}
	return index
}
