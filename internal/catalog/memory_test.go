package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/pdv-backend/pkg/money"
)

func TestMemoryLookup(t *testing.T) {
	cat := NewMemory(DemoItems()...)
	ctx := context.Background()

	item, err := cat.Lookup(ctx, " 7894900011517 ")
	require.NoError(t, err)
	assert.Equal(t, "Coca-Cola 350ml", item.Description)
	assert.Equal(t, money.Cents(450), item.UnitPrice)

	_, err = cat.Lookup(ctx, "000")
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestMemoryLookupCancelled(t *testing.T) {
	cat := NewMemory(DemoItems()...)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := cat.Lookup(ctx, "7894900011517")
	assert.ErrorIs(t, err, ErrCatalogUnavailable)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMemoryRegister(t *testing.T) {
	cat := NewMemory()
	ctx := context.Background()

	require.NoError(t, cat.Register(ctx, Item{Code: "42", Description: "Café 500g", UnitPrice: 1599}))
	exists, err := cat.Exists(ctx, "42")
	require.NoError(t, err)
	assert.True(t, exists)

	err = cat.Register(ctx, Item{Code: "42", Description: "Outro", UnitPrice: 1})
	assert.ErrorIs(t, err, ErrItemExists)

	err = cat.Register(ctx, Item{Code: "43"})
	assert.ErrorIs(t, err, ErrInvalidItem)
}

func TestSeedSkipsExistingItems(t *testing.T) {
	cat := NewMemory(DemoItems()[0])
	ctx := context.Background()

	added, err := Seed(ctx, cat, DemoItems())
	require.NoError(t, err)
	assert.Equal(t, len(DemoItems())-1, added)

	added, err = Seed(ctx, cat, DemoItems())
	require.NoError(t, err)
	assert.Zero(t, added)

	_, err = Seed(ctx, cat, []Item{{Code: "", Description: "broken"}})
	assert.ErrorIs(t, err, ErrInvalidItem)
}
