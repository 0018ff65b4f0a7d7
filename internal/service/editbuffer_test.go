package service

import (
	"testing"
	"time"

	"cardvault-rest-api/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEditBufferBeginUpdatePeek(t *testing.T) {
	b := NewEditBuffer(time.Minute)
	item := model.Item{Kind: model.KindCard, ID: "c1", Name: "Mantle", Quantity: 1}

	b.Begin(7, item)

	item.Quantity = 3
	require.NoError(t, b.Update(7, item))

	got, isNew, err := b.Peek(7, "c1")
	require.NoError(t, err)
	assert.False(t, isNew)
	assert.Equal(t, 3, got.Quantity)

	// Peek does not consume the entry.
	_, _, err = b.Peek(7, "c1")
	assert.NoError(t, err)
}

func TestEditBufferUpdateWithoutBegin(t *testing.T) {
	b := NewEditBuffer(time.Minute)
	err := b.Update(7, model.Item{ID: "nope"})
	assert.ErrorIs(t, err, ErrNoPendingEdit)
}

func TestEditBufferCancel(t *testing.T) {
	b := NewEditBuffer(time.Minute)
	b.Begin(7, model.Item{ID: "c1"})
	b.Cancel(7, "c1")

	_, _, err := b.Peek(7, "c1")
	assert.ErrorIs(t, err, ErrNoPendingEdit)
}

func TestEditBufferAccountIsolation(t *testing.T) {
	b := NewEditBuffer(time.Minute)
	b.Begin(7, model.Item{ID: "c1", Quantity: 1})

	_, _, err := b.Peek(8, "c1")
	assert.ErrorIs(t, err, ErrNoPendingEdit)
}

func TestEditBufferCloneGetsFreshID(t *testing.T) {
	b := NewEditBuffer(time.Minute)
	src := model.Item{Kind: model.KindCard, ID: "c1", Name: "Mantle", Quantity: 1}

	clone := b.BeginClone(7, src)
	assert.NotEqual(t, src.ID, clone.ID)
	assert.Equal(t, src.Name, clone.Name)

	_, isNew, err := b.Peek(7, clone.ID)
	require.NoError(t, err)
	assert.True(t, isNew)
}

func TestEditBufferOverlayReplacesAndPrepends(t *testing.T) {
	b := NewEditBuffer(time.Minute)
	items := []model.Item{
		{Kind: model.KindCard, ID: "c1", Name: "Mantle", Quantity: 1},
		{Kind: model.KindCard, ID: "c2", Name: "Aaron", Quantity: 1},
	}

	edited := items[0]
	edited.Quantity = 9
	b.Begin(7, items[0])
	require.NoError(t, b.Update(7, edited))

	clone := b.BeginClone(7, items[1])

	out := b.Overlay(7, items)
	require.Len(t, out, 3)
	assert.Equal(t, clone.ID, out[0].ID)
	assert.Equal(t, 9, out[1].Quantity)
	assert.Equal(t, "c2", out[2].ID)

	// The canonical slice is untouched.
	assert.Equal(t, 1, items[0].Quantity)
}

func TestEditBufferOverlayOtherAccountUntouched(t *testing.T) {
	b := NewEditBuffer(time.Minute)
	items := []model.Item{{Kind: model.KindCard, ID: "c1", Quantity: 1}}

	edited := items[0]
	edited.Quantity = 9
	b.Begin(7, items[0])
	require.NoError(t, b.Update(7, edited))

	out := b.Overlay(8, items)
	require.Len(t, out, 1)
	assert.Equal(t, 1, out[0].Quantity)
}

func TestEditBufferSweepExpired(t *testing.T) {
	b := NewEditBuffer(time.Nanosecond)
	b.Begin(7, model.Item{ID: "c1"})

	time.Sleep(5 * time.Millisecond)
	assert.Equal(t, 1, b.SweepExpired())

	_, _, err := b.Peek(7, "c1")
	assert.ErrorIs(t, err, ErrNoPendingEdit)
}
