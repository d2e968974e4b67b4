package navigation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGridMoves(t *testing.T) {
	// 3 columns, 7 cards:
	// 0 1 2
	// 3 4 5
	// 6
	s := NewService()
	s.SetGrid(3, 7)

	assert.Equal(t, EdgeNone, s.Navigate(DirectionRight))
	assert.Equal(t, 1, s.GetCursor())
	assert.Equal(t, EdgeNone, s.Navigate(DirectionDown))
	assert.Equal(t, 4, s.GetCursor())
	assert.Equal(t, 1, s.Row())
	assert.Equal(t, 1, s.Column())

	assert.Equal(t, EdgeNone, s.Navigate(DirectionDown), "drops into the partial row")
	assert.Equal(t, 6, s.GetCursor())
	assert.Equal(t, EdgeNext, s.Navigate(DirectionDown))
	assert.Equal(t, EdgeNext, s.Navigate(DirectionRight))
	assert.Equal(t, 6, s.GetCursor())

	assert.Equal(t, EdgeNone, s.Navigate(DirectionUp))
	assert.Equal(t, 3, s.GetCursor())
	assert.Equal(t, EdgeNone, s.Navigate(DirectionHome))
	assert.Equal(t, EdgePrev, s.Navigate(DirectionLeft))
	assert.Equal(t, EdgePrev, s.Navigate(DirectionUp))
	assert.Equal(t, 0, s.GetCursor())

	s.Navigate(DirectionEnd)
	assert.Equal(t, 6, s.GetCursor())
}

func TestSetGridClampsCursor(t *testing.T) {
	s := NewService()
	s.SetGrid(4, 8)
	s.MoveToIndex(7)

	s.SetGrid(2, 3)
	assert.Equal(t, 2, s.GetCursor())

	s.SetGrid(0, 0)
	assert.Equal(t, 0, s.GetCursor())
	assert.Equal(t, EdgeNext, s.Navigate(DirectionRight))
	assert.Equal(t, EdgeNone, s.Navigate(DirectionHome))

	s.SetGrid(2, 3)
	s.MoveToIndex(-5)
	assert.Equal(t, 0, s.GetCursor())
}
