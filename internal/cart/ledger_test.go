package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/pdv-backend/internal/catalog"
	"github.com/angelmondragon/pdv-backend/pkg/money"
)

var (
	soda  = catalog.Item{Code: "123", Description: "Refrigerante", UnitPrice: 500}
	bread = catalog.Item{Code: "456", Description: "Pão", UnitPrice: 320}
	milk  = catalog.Item{Code: "789", Description: "Leite", UnitPrice: 580}
	gum   = catalog.Item{Code: "010", Description: "Chiclete", UnitPrice: 10}
)

func assertConsistent(t *testing.T, l *Ledger) {
	t.Helper()
	snap := l.Snapshot()
	var sum money.Cents
	for i, line := range snap.Lines {
		assert.Equal(t, i+1, line.Number, "line numbers must be contiguous")
		assert.Equal(t, line.UnitPrice.Times(line.Quantity), line.Total)
		sum += line.Total
	}
	assert.Equal(t, sum, snap.Total)
}

func TestAddMergesSameCode(t *testing.T) {
	l := New()
	l.Add(soda)
	line := l.Add(soda)

	assert.Equal(t, 2, line.Quantity)
	assert.Equal(t, 1, l.Len())
	assert.Equal(t, "10.00", l.Total().String())
	assertConsistent(t, l)
}

func TestAddKeepsCapturedPrice(t *testing.T) {
	l := New()
	l.Add(soda)
	repriced := soda
	repriced.UnitPrice = 999
	line := l.Add(repriced)

	assert.Equal(t, money.Cents(500), line.UnitPrice)
	assert.Equal(t, money.Cents(1000), l.Total())
}

func TestTenThousandDimesAreExact(t *testing.T) {
	l := New()
	for i := 0; i < 10000; i++ {
		l.Add(gum)
	}
	assert.Equal(t, "1000.00", l.Total().String())
	assertConsistent(t, l)
}

func TestDecrementOrRemove(t *testing.T) {
	l := New()
	l.Add(soda)
	l.Add(soda)
	l.Add(bread)

	line, kept, err := l.DecrementOrRemove("123")
	require.NoError(t, err)
	assert.True(t, kept)
	assert.Equal(t, 1, line.Quantity)

	_, kept, err = l.DecrementOrRemove("123")
	require.NoError(t, err)
	assert.False(t, kept)

	snap := l.Snapshot()
	require.Len(t, snap.Lines, 1)
	assert.Equal(t, "456", snap.Lines[0].Code)
	assert.Equal(t, 1, snap.Lines[0].Number)
	assertConsistent(t, l)

	_, _, err = l.DecrementOrRemove("nope")
	assert.ErrorIs(t, err, ErrLineNotFound)
}

func TestSetQuantity(t *testing.T) {
	l := New()
	l.Add(soda)
	l.Add(bread)
	l.Add(milk)

	line, err := l.SetQuantity("456", 4)
	require.NoError(t, err)
	assert.Equal(t, money.Cents(1280), line.Total)
	assertConsistent(t, l)

	_, err = l.SetQuantity("456", 0)
	require.NoError(t, err)
	snap := l.Snapshot()
	require.Len(t, snap.Lines, 2)
	assert.Equal(t, []string{"123", "789"}, []string{snap.Lines[0].Code, snap.Lines[1].Code})
	assertConsistent(t, l)

	_, err = l.SetQuantity("456", 1)
	assert.ErrorIs(t, err, ErrLineNotFound)
}

func TestRemovalsKeepNumbersContiguous(t *testing.T) {
	l := New()
	items := []catalog.Item{soda, bread, milk, gum}
	for _, it := range items {
		l.Add(it)
	}

	_, err := l.Void("456")
	require.NoError(t, err)
	assertConsistent(t, l)

	removed, err := l.RemoveLast()
	require.NoError(t, err)
	assert.Equal(t, "010", removed.Code)

	l.Add(bread)
	snap := l.Snapshot()
	codes := make([]string, 0, len(snap.Lines))
	for _, line := range snap.Lines {
		codes = append(codes, line.Code)
	}
	assert.Equal(t, []string{"123", "789", "456"}, codes)
	assertConsistent(t, l)
}

func TestRemoveLastOnEmpty(t *testing.T) {
	_, err := New().RemoveLast()
	assert.ErrorIs(t, err, ErrLineNotFound)
}

func TestClear(t *testing.T) {
	l := New()
	l.Add(soda)
	l.Clear()

	snap := l.Snapshot()
	assert.True(t, snap.Empty())
	assert.Zero(t, snap.Total)
}

func TestSnapshotIsACopy(t *testing.T) {
	l := New()
	l.Add(soda)
	snap := l.Snapshot()
	snap.Lines[0].Quantity = 99

	assert.Equal(t, 1, l.Snapshot().Lines[0].Quantity)
}
