package catalog

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/angelmondragon/pdv-backend/pkg/db/models"
	"github.com/angelmondragon/pdv-backend/pkg/enums"
	"github.com/angelmondragon/pdv-backend/pkg/money"
)

func newRepo(t *testing.T) *Repository {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, conn.AutoMigrate(&models.Product{}))

	repo, err := NewRepository(conn)
	require.NoError(t, err)
	return repo
}

func TestRepositoryRegisterAndLookup(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Register(ctx, Item{Code: "7891234567892", Description: "Arroz Branco 5kg", Unit: enums.ProductUnitPiece, UnitPrice: 1890}))

	item, err := repo.Lookup(ctx, "7891234567892")
	require.NoError(t, err)
	assert.Equal(t, "Arroz Branco 5kg", item.Description)
	assert.Equal(t, money.Cents(1890), item.UnitPrice)
	assert.Equal(t, enums.ProductUnitPiece, item.Unit)

	exists, err := repo.Exists(ctx, "7891234567892")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.Exists(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRepositoryLookupNotFound(t *testing.T) {
	repo := newRepo(t)
	_, err := repo.Lookup(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestRepositoryRegisterDuplicate(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	item := Item{Code: "1", Description: "Sal 1kg", UnitPrice: 299}

	require.NoError(t, repo.Register(ctx, item))
	assert.ErrorIs(t, repo.Register(ctx, item), ErrItemExists)
}

func TestNewRepositoryRequiresDB(t *testing.T) {
	_, err := NewRepository(nil)
	assert.Error(t, err)
}
