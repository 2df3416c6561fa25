package sales

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/angelmondragon/pdv-backend/internal/checkout"
)

// Memory keeps committed sales in process. It backs scenario replays and
// local runs without a database.
type Memory struct {
	mu    sync.RWMutex
	sales map[int64]stored
	now   func() time.Time
}

type stored struct {
	sale        checkout.Sale
	committedAt time.Time
	receipt     *bool
}

func NewMemory() *Memory {
	return &Memory{
		sales: make(map[int64]stored),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (m *Memory) Commit(ctx context.Context, sale checkout.Sale) (time.Time, error) {
	if err := ctx.Err(); err != nil {
		return time.Time{}, err
	}
	if err := validate(sale); err != nil {
		return time.Time{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.sales[sale.Number]; ok {
		prev := existing.sale
		if !sameSale(prev.OperatorID, prev.TerminalID, prev.CreatedAt, prev.Total, sale) {
			return time.Time{}, numberInUse(sale)
		}
		return existing.committedAt, nil
	}
	at := m.now()
	m.sales[sale.Number] = stored{sale: sale, committedAt: at}
	return at, nil
}

func (m *Memory) RecordReceiptChoice(_ context.Context, saleNumber int64, requested bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sales[saleNumber]
	if !ok {
		return ErrSaleNotFound
	}
	s.receipt = &requested
	m.sales[saleNumber] = s
	return nil
}

func (m *Memory) ListRecent(_ context.Context, operatorID string, limit int) ([]Summary, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	m.mu.RLock()
	out := make([]Summary, 0, len(m.sales))
	for _, s := range m.sales {
		if s.sale.OperatorID != operatorID {
			continue
		}
		out = append(out, s.summary())
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CommittedAt.Equal(out[j].CommittedAt) {
			return out[i].CommittedAt.After(out[j].CommittedAt)
		}
		return out[i].SaleNumber > out[j].SaleNumber
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Sales returns every committed sale ordered by number.
func (m *Memory) Sales() []checkout.Sale {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]checkout.Sale, 0, len(m.sales))
	for _, s := range m.sales {
		out = append(out, s.sale)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out
}

func (s stored) summary() Summary {
	count := 0
	for _, line := range s.sale.Lines {
		count += line.Quantity
	}
	return Summary{
		SaleNumber:       s.sale.Number,
		OperatorID:       s.sale.OperatorID,
		TerminalID:       s.sale.TerminalID,
		BuyerID:          s.sale.BuyerID,
		PaymentMethod:    s.sale.PaymentMethod,
		Note:             s.sale.Note,
		Total:            s.sale.Total,
		ItemCount:        count,
		ReceiptRequested: s.receipt,
		CommittedAt:      s.committedAt,
	}
}
