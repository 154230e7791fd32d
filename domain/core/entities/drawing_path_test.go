package entities

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boardcore/domain/core/valueobjects"
)

func TestDrawingPathAppend(t *testing.T) {
	p, err := NewDrawingPath("#000", 4, false)
	require.NoError(t, err)

	p.AppendPoint(0, 0, 0.5)
	p.AppendPoint(10, 0, 0.5)
	p.AppendPoint(math.NaN(), 5, 0.5)
	p.AppendPoint(20, 0, 0.5)

	assert.Len(t, p.Points, 3, "non-finite samples are dropped")
}

func TestDrawingPathIntersectsStroke(t *testing.T) {
	p, err := NewDrawingPath("#000", 8, false)
	require.NoError(t, err)
	p.AppendPoint(0, 0, 1)
	p.AppendPoint(100, 0, 1)

	t.Run("hit within eraser reach", func(t *testing.T) {
		// Reach is eraserRadius 20 plus half the brush size, 24 total.
		eraser := []valueobjects.PathPoint{{X: 100, Y: 23}}
		assert.True(t, p.IntersectsStroke(eraser, 20))
	})

	t.Run("miss outside reach", func(t *testing.T) {
		eraser := []valueobjects.PathPoint{{X: 100, Y: 25}}
		assert.False(t, p.IntersectsStroke(eraser, 20))
	})

	t.Run("hit between stored samples", func(t *testing.T) {
		// The stroke stores only its endpoints; an eraser point over
		// the middle of the segment still erases it.
		eraser := []valueobjects.PathPoint{{X: 50, Y: 23}}
		assert.True(t, p.IntersectsStroke(eraser, 20))
	})

	t.Run("crossing eraser segment hits with distant samples", func(t *testing.T) {
		eraser := []valueobjects.PathPoint{{X: 50, Y: -200}, {X: 50, Y: 200}}
		assert.True(t, p.IntersectsStroke(eraser, 1))
	})

	t.Run("parallel eraser segment outside reach misses", func(t *testing.T) {
		eraser := []valueobjects.PathPoint{{X: 0, Y: 100}, {X: 100, Y: 100}}
		assert.False(t, p.IntersectsStroke(eraser, 20))
	})
}

func TestBookmarkResolve(t *testing.T) {
	item, err := NewTextItem("t", 100, 100, 200, 100)
	require.NoError(t, err)
	lookup := func(id string) (*Item, bool) {
		if id == item.ID {
			return item, true
		}
		return nil, false
	}

	t.Run("tracks its target item", func(t *testing.T) {
		b, err := NewItemBookmark("view", item.ID, 1)
		require.NoError(t, err)
		assert.Equal(t, valueobjects.Point{X: 200, Y: 150}, b.Resolve(lookup))
	})

	t.Run("falls back to stored coordinates when target is gone", func(t *testing.T) {
		b, err := NewItemBookmark("view", "deleted-item", 1)
		require.NoError(t, err)
		b.X, b.Y = 7, 9
		assert.Equal(t, valueobjects.Point{X: 7, Y: 9}, b.Resolve(lookup))
	})
}
