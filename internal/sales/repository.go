package sales

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/pdv-backend/internal/cart"
	"github.com/angelmondragon/pdv-backend/internal/checkout"
	dbpkg "github.com/angelmondragon/pdv-backend/pkg/db"
	"github.com/angelmondragon/pdv-backend/pkg/db/models"
	"github.com/angelmondragon/pdv-backend/pkg/enums"
	"github.com/angelmondragon/pdv-backend/pkg/money"
	"github.com/angelmondragon/pdv-backend/pkg/outbox"
	"github.com/angelmondragon/pdv-backend/pkg/outbox/payloads"
)

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Repository stores sales with gorm and queues their outbox events in the
// same transaction.
type Repository struct {
	db     *gorm.DB
	events eventEmitter
	now    func() time.Time
}

func NewRepository(db *gorm.DB, events eventEmitter) (*Repository, error) {
	if db == nil {
		return nil, fmt.Errorf("db required")
	}
	if events == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	return &Repository{db: db, events: events, now: func() time.Time { return time.Now().UTC() }}, nil
}

// Commit writes the sale, its items and a sale_committed event atomically.
// Committing the same sale again succeeds with the stored commit time, so a
// retry after a timed out attempt does not fail the sale. A different sale
// under a stored number fails with ErrNumberInUse.
func (r *Repository) Commit(ctx context.Context, sale checkout.Sale) (time.Time, error) {
	if err := validate(sale); err != nil {
		return time.Time{}, err
	}
	committedAt := r.now()

	row := models.Sale{
		SaleNumber:    sale.Number,
		OperatorID:    sale.OperatorID,
		TerminalID:    sale.TerminalID,
		BuyerID:       sale.BuyerID,
		PaymentMethod: sale.PaymentMethod,
		Note:          sale.Note,
		TotalCents:    int64(sale.Total),
		CreatedAt:     sale.CreatedAt.UTC(),
		CommittedAt:   committedAt,
		Items:         make([]models.SaleItem, 0, len(sale.Lines)),
	}
	for _, line := range sale.Lines {
		row.Items = append(row.Items, models.SaleItem{
			ItemNumber:     line.Number,
			Barcode:        line.Code,
			Description:    line.Description,
			Unit:           line.Unit,
			UnitPriceCents: int64(line.UnitPrice),
			Quantity:       line.Quantity,
			TotalCents:     int64(line.Total),
		})
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		return r.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventSaleCommitted,
			AggregateType: enums.AggregateSale,
			AggregateID:   strconv.FormatInt(sale.Number, 10),
			Actor:         &outbox.ActorRef{OperatorID: sale.OperatorID, TerminalID: sale.TerminalID},
			Data:          committedEvent(sale, committedAt),
			OccurredAt:    committedAt,
		})
	})
	if err == nil {
		return committedAt, nil
	}
	if dbpkg.IsUniqueViolation(err, "") {
		existing, findErr := r.header(ctx, sale.Number)
		if findErr == nil {
			if !sameSale(existing.OperatorID, existing.TerminalID, existing.CreatedAt, money.Cents(existing.TotalCents), sale) {
				return time.Time{}, numberInUse(sale)
			}
			return existing.CommittedAt, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: sale %d: %w", ErrPersistFailed, sale.Number, err)
}

// RecordReceiptChoice stores whether the customer asked for a receipt.
func (r *Repository) RecordReceiptChoice(ctx context.Context, saleNumber int64, requested bool) error {
	chosenAt := r.now()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Sale{}).
			Where("sale_number = ?", saleNumber).
			Update("receipt_requested", requested)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrSaleNotFound
		}
		return r.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventSaleReceiptChosen,
			AggregateType: enums.AggregateSale,
			AggregateID:   strconv.FormatInt(saleNumber, 10),
			Data: payloads.SaleReceiptChosenEvent{
				SaleNumber: saleNumber,
				Requested:  requested,
				ChosenAt:   chosenAt,
			},
			OccurredAt: chosenAt,
		})
	})
}

// ListRecent returns the operator's latest sales, newest first.
func (r *Repository) ListRecent(ctx context.Context, operatorID string, limit int) ([]Summary, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	var rows []models.Sale
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("operator_id = ?", operatorID).
		Order("committed_at DESC").
		Order("sale_number DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}

	out := make([]Summary, 0, len(rows))
	for _, row := range rows {
		out = append(out, summaryFromModel(row))
	}
	return out, nil
}

// Get loads one committed sale with its items.
func (r *Repository) Get(ctx context.Context, saleNumber int64) (models.Sale, error) {
	var row models.Sale
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("item_number ASC") }).
		Where("sale_number = ?", saleNumber).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Sale{}, ErrSaleNotFound
	}
	return row, err
}

// Detail loads one committed sale shaped like the cart it came from.
func (r *Repository) Detail(ctx context.Context, saleNumber int64) (Detail, error) {
	row, err := r.Get(ctx, saleNumber)
	if err != nil {
		return Detail{}, err
	}
	lines := make([]cart.Line, 0, len(row.Items))
	for _, item := range row.Items {
		lines = append(lines, cart.Line{
			Number:      item.ItemNumber,
			Code:        item.Barcode,
			Description: item.Description,
			Unit:        item.Unit,
			UnitPrice:   money.Cents(item.UnitPriceCents),
			Quantity:    item.Quantity,
			Total:       money.Cents(item.TotalCents),
		})
	}
	return Detail{Summary: summaryFromModel(row), Lines: lines}, nil
}

// MaxSaleNumber returns the highest stored sale number, 0 when empty.
func (r *Repository) MaxSaleNumber(ctx context.Context) (int64, error) {
	var highest *int64
	err := r.db.WithContext(ctx).
		Model(&models.Sale{}).
		Select("MAX(sale_number)").
		Scan(&highest).Error
	if err != nil {
		return 0, fmt.Errorf("max sale number: %w", err)
	}
	if highest == nil {
		return 0, nil
	}
	return *highest, nil
}

func (r *Repository) header(ctx context.Context, saleNumber int64) (models.Sale, error) {
	var row models.Sale
	err := r.db.WithContext(ctx).
		Select("sale_number", "operator_id", "terminal_id", "total_cents", "created_at", "committed_at").
		Where("sale_number = ?", saleNumber).
		Take(&row).Error
	return row, err
}

func summaryFromModel(row models.Sale) Summary {
	count := 0
	for _, item := range row.Items {
		count += item.Quantity
	}
	return Summary{
		SaleNumber:       row.SaleNumber,
		OperatorID:       row.OperatorID,
		TerminalID:       row.TerminalID,
		BuyerID:          row.BuyerID,
		PaymentMethod:    row.PaymentMethod,
		Note:             row.Note,
		Total:            money.Cents(row.TotalCents),
		ItemCount:        count,
		ReceiptRequested: row.ReceiptRequested,
		CommittedAt:      row.CommittedAt,
	}
}
