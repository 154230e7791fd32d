package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boardcore/domain/core/valueobjects"
)

func TestNewConnection(t *testing.T) {
	t.Run("connects compatible sockets", func(t *testing.T) {
		c, err := NewConnection("item-a", valueobjects.SocketImageOutput, "item-b", valueobjects.SocketImageInput)
		require.NoError(t, err)
		assert.Equal(t, "item-a", c.FromNodeID)
		assert.True(t, c.References("item-b"))
		assert.False(t, c.References("item-c"))
	})

	t.Run("rejects self connection", func(t *testing.T) {
		_, err := NewConnection("item-a", valueobjects.SocketImageOutput, "item-a", valueobjects.SocketImageInput)
		require.Error(t, err)
	})

	t.Run("rejects mismatched payloads", func(t *testing.T) {
		_, err := NewConnection("item-a", valueobjects.SocketTextOutput, "item-b", valueobjects.SocketImageInput)
		require.Error(t, err)
	})

	t.Run("rejects two outputs", func(t *testing.T) {
		_, err := NewConnection("item-a", valueobjects.SocketImageOutput, "item-b", valueobjects.SocketImageOutput)
		require.Error(t, err)
	})
}

func TestConnectionKey(t *testing.T) {
	a, err := NewConnection("item-a", valueobjects.SocketImageOutput, "item-b", valueobjects.SocketImageInput)
	require.NoError(t, err)
	b, err := NewConnection("item-a", valueobjects.SocketImageOutput, "item-b", valueobjects.SocketImageInput)
	require.NoError(t, err)

	assert.Equal(t, a.Key(), b.Key(), "same endpoints produce the same key")
	assert.NotEqual(t, a.ID, b.ID)
}

func TestNewArrow(t *testing.T) {
	t.Run("rejects self arrow", func(t *testing.T) {
		_, err := NewArrow("item-a", "item-a", "", 2)
		require.Error(t, err)
	})

	t.Run("defaults stroke width", func(t *testing.T) {
		a, err := NewArrow("item-a", "item-b", "#000", 0)
		require.NoError(t, err)
		assert.Equal(t, 2.0, a.StrokeWidth)
	})
}

func TestArrowCurve(t *testing.T) {
	start := valueobjects.Point{X: 0, Y: 0}
	end := valueobjects.Point{X: 200, Y: 100}

	p0, c1, c2, p3 := ArrowCurve(start, end)
	assert.Equal(t, start, p0)
	assert.Equal(t, end, p3)
	assert.Equal(t, 100.0, c1.X, "control handle extends half the span")
	assert.Equal(t, 100.0, c2.X)

	t.Run("short arrows keep a minimum handle", func(t *testing.T) {
		_, c1, _, _ := ArrowCurve(valueobjects.Point{}, valueobjects.Point{X: 10})
		assert.Equal(t, 24.0, c1.X)
	})
}
