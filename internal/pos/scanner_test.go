package pos

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/pdv-backend/internal/scan"
)

func waitForLines(t *testing.T, term *Terminal, n int) {
	t.Helper()
	require.Eventually(t, func() bool {
		snap, err := term.Cart(context.Background())
		return err == nil && len(snap.Lines) == n
	}, 2*time.Second, 10*time.Millisecond)
}

func TestScannerFeedsOpenSale(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	codes := make(chan string)
	source := scan.NewChannelSource(codes)

	_, err := h.terminal.OpenScanner(ctx, source)
	require.ErrorIs(t, err, ErrInvalidCommand, "needs an open sale")

	h.start(t)
	res, err := h.terminal.OpenScanner(ctx, source)
	require.NoError(t, err)
	assert.True(t, res.View.ScannerActive)
	assert.Equal(t, DialogScanner, res.View.Dialog)

	_, err = h.terminal.OpenScanner(ctx, source)
	require.ErrorIs(t, err, ErrScannerActive)

	codes <- "123"
	codes <- "123"
	codes <- "456"
	waitForLines(t, h.terminal, 2)

	snap, err := h.terminal.Cart(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Lines[0].Quantity, "repeat inside the window is suppressed")

	res, err = h.terminal.CloseAll(ctx)
	require.NoError(t, err)
	assert.False(t, res.View.ScannerActive)
	assert.False(t, source.Held())
	assert.Len(t, res.View.Cart.Lines, 2)
}

func TestCancelReleasesScanner(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	source := scan.NewChannelSource(make(chan string))
	h.start(t)

	_, err := h.terminal.OpenScanner(ctx, source)
	require.NoError(t, err)
	require.True(t, source.Held())

	_, err = h.terminal.CancelSale(ctx)
	require.NoError(t, err)
	assert.False(t, source.Held())
}

func TestCloseReleasesScanner(t *testing.T) {
	h := newHarness(t)
	source := scan.NewChannelSource(make(chan string))
	h.start(t)

	_, err := h.terminal.OpenScanner(context.Background(), source)
	require.NoError(t, err)
	require.NoError(t, h.terminal.Close())
	assert.False(t, source.Held())
}
