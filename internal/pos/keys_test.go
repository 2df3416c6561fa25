package pos

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/pdv-backend/internal/checkout"
)

func TestParseKey(t *testing.T) {
	cases := map[string]Key{
		"f1":     KeyF1,
		" F10 ":  KeyF10,
		"esc":    KeyEsc,
		"Escape": KeyEsc,
	}
	for raw, want := range cases {
		got, err := ParseKey(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got)
	}

	_, err := ParseKey("F11")
	require.ErrorIs(t, err, ErrInvalidCommand)
}

func TestEveryKeyIsBound(t *testing.T) {
	for _, k := range []Key{KeyF1, KeyF2, KeyF3, KeyF4, KeyF5, KeyF6, KeyF7, KeyF8, KeyF9, KeyF10, KeyEsc} {
		cmd, ok := CommandFor(k)
		assert.True(t, ok, k)
		assert.NotEmpty(t, cmd)
	}
}

func TestPressDrivesSale(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	res, err := h.terminal.Press(ctx, KeyF7)
	require.ErrorIs(t, err, ErrInvalidCommand)
	assert.Equal(t, DialogNone, res.View.Dialog)

	res, err = h.terminal.Press(ctx, KeyF1)
	require.NoError(t, err)
	assert.Equal(t, checkout.StateOpen, res.View.State)

	_, err = h.terminal.Press(ctx, KeyF9)
	require.ErrorIs(t, err, ErrInvalidCommand, "quantity needs a line")

	res, err = h.terminal.Press(ctx, KeyF3)
	require.NoError(t, err)
	assert.Equal(t, DialogLookup, res.View.Dialog)

	res, err = h.terminal.Type(ctx, "123")
	require.NoError(t, err)
	assert.Equal(t, DialogNone, res.View.Dialog)

	res, err = h.terminal.Press(ctx, KeyF2)
	require.NoError(t, err)
	assert.Equal(t, DialogEditSale, res.View.Dialog)

	res, err = h.terminal.Press(ctx, KeyEsc)
	require.NoError(t, err)
	assert.Equal(t, DialogNone, res.View.Dialog)
	assert.Len(t, res.View.Cart.Lines, 1, "close all keeps the sale")

	res, err = h.terminal.Press(ctx, KeyF4)
	require.NoError(t, err)
	assert.Equal(t, checkout.StateAwaitingBuyerID, res.View.State)

	res, err = h.terminal.Press(ctx, KeyF6)
	require.NoError(t, err)
	assert.Equal(t, checkout.StateIdle, res.View.State)
}
