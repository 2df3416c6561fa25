package catalog

import (
	"context"
	"sync"

	"github.com/angelmondragon/pdv-backend/pkg/enums"
)

// Memory is a thread-safe in-memory catalog.
type Memory struct {
	mu    sync.RWMutex
	items map[string]Item
}

func NewMemory(items ...Item) *Memory {
	m := &Memory{items: make(map[string]Item, len(items))}
	for _, item := range items {
		if item.Unit == "" {
			item.Unit = enums.DefaultProductUnit
		}
		m.items[NormalizeCode(item.Code)] = item
	}
	return m
}

func (m *Memory) Lookup(ctx context.Context, code string) (Item, error) {
	if err := ctx.Err(); err != nil {
		return Item{}, unavailable("lookup", err)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	item, ok := m.items[NormalizeCode(code)]
	if !ok {
		return Item{}, ErrItemNotFound
	}
	return item, nil
}

// Register checks for an existing code and stores the item under the same lock.
func (m *Memory) Register(_ context.Context, item Item) error {
	item, err := Validate(item)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.items[item.Code]; exists {
		return ErrItemExists
	}
	m.items[item.Code] = item
	return nil
}

func (m *Memory) Exists(_ context.Context, code string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.items[NormalizeCode(code)]
	return ok, nil
}

// DemoItems is the starter catalog used by local runs and scenario replays.
func DemoItems() []Item {
	return []Item{
		{Code: "7894900011517", Description: "Coca-Cola 350ml", Unit: enums.ProductUnitPiece, UnitPrice: 450},
		{Code: "7891234567890", Description: "Pão de Açúcar 500g", Unit: enums.ProductUnitPiece, UnitPrice: 320},
		{Code: "7891234567891", Description: "Leite Integral 1L", Unit: enums.ProductUnitPiece, UnitPrice: 580},
		{Code: "7891234567892", Description: "Arroz Branco 5kg", Unit: enums.ProductUnitPiece, UnitPrice: 1890},
	}
}
