package catalog

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	dbpkg "github.com/angelmondragon/pdv-backend/pkg/db"
	"github.com/angelmondragon/pdv-backend/pkg/db/models"
	"github.com/angelmondragon/pdv-backend/pkg/enums"
	"github.com/angelmondragon/pdv-backend/pkg/money"
)

// Repository resolves items from the products table.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) (*Repository, error) {
	if db == nil {
		return nil, fmt.Errorf("db required")
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Lookup(ctx context.Context, code string) (Item, error) {
	var row models.Product
	err := r.db.WithContext(ctx).
		Where("barcode = ?", NormalizeCode(code)).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Item{}, ErrItemNotFound
	}
	if err != nil {
		return Item{}, unavailable("select product", err)
	}
	return itemFromModel(row), nil
}

func (r *Repository) Register(ctx context.Context, item Item) error {
	item, err := Validate(item)
	if err != nil {
		return err
	}
	row := models.Product{
		Barcode:     item.Code,
		Description: item.Description,
		Unit:        item.Unit,
		PriceCents:  int64(item.UnitPrice),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if dbpkg.IsUniqueViolation(err, "") {
			return ErrItemExists
		}
		return unavailable("insert product", err)
	}
	return nil
}

func (r *Repository) Exists(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("barcode = ?", NormalizeCode(code)).
		Count(&count).Error
	if err != nil {
		return false, unavailable("count product", err)
	}
	return count > 0, nil
}

func itemFromModel(row models.Product) Item {
	unit := row.Unit
	if unit == "" {
		unit = enums.DefaultProductUnit
	}
	return Item{
		Code:        row.Barcode,
		Description: row.Description,
		Unit:        unit,
		UnitPrice:   money.Cents(row.PriceCents),
	}
}
