package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/angelmondragon/pdv-backend/pkg/db/models"
	"github.com/angelmondragon/pdv-backend/pkg/enums"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := conn.AutoMigrate(&models.OutboxEvent{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

func saleEvent(number string) DomainEvent {
	return DomainEvent{
		EventType:     enums.EventSaleCommitted,
		AggregateType: enums.AggregateSale,
		AggregateID:   number,
		Actor:         &ActorRef{OperatorID: "op-1", TerminalID: "t-1"},
		Data:          map[string]any{"sale_number": number},
	}
}

func TestEmitStoresEnvelope(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(NewRepository(db), nil)

	if err := db.Transaction(func(tx *gorm.DB) error {
		return svc.Emit(context.Background(), tx, saleEvent("10"))
	}); err != nil {
		t.Fatalf("emit: %v", err)
	}

	var rows []models.OutboxEvent
	if err := db.Find(&rows).Error; err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	var envelope PayloadEnvelope
	if err := json.Unmarshal(rows[0].Payload, &envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if envelope.Version != 1 || envelope.EventID == "" || envelope.Actor == nil || envelope.Actor.OperatorID != "op-1" {
		t.Fatalf("unexpected envelope %+v", envelope)
	}
	if rows[0].AggregateID != "10" {
		t.Fatalf("unexpected aggregate id %q", rows[0].AggregateID)
	}
}

func TestEmitRollsBackWithTransaction(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(NewRepository(db), nil)

	errAbort := errors.New("abort")
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := svc.Emit(context.Background(), tx, saleEvent("11")); err != nil {
			return err
		}
		return errAbort
	})
	if !errors.Is(err, errAbort) {
		t.Fatalf("unexpected error: %v", err)
	}

	var count int64
	db.Model(&models.OutboxEvent{}).Count(&count)
	if count != 0 {
		t.Fatalf("expected no rows, got %d", count)
	}
}

func TestEmitValidation(t *testing.T) {
	svc := NewService(NewRepository(nil), nil)
	if err := svc.Emit(context.Background(), nil, saleEvent("1")); err == nil {
		t.Fatalf("expected error without tx")
	}

	db := newTestDB(t)
	bad := saleEvent("")
	if err := svc.Emit(context.Background(), db, bad); err == nil {
		t.Fatalf("expected error without aggregate id")
	}
	bad = saleEvent("1")
	bad.EventType = "unknown"
	if err := svc.Emit(context.Background(), db, bad); err == nil {
		t.Fatalf("expected error for unknown event type")
	}
}

func TestRepositoryPublishLifecycle(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	svc := NewService(repo, nil)
	ctx := context.Background()

	for _, n := range []string{"1", "2", "3"} {
		if err := svc.Emit(ctx, db, saleEvent(n)); err != nil {
			t.Fatalf("emit %s: %v", n, err)
		}
	}

	rows, err := repo.FetchUnpublishedForPublish(db, 10, 3)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}

	if err := repo.MarkPublishedTx(db, rows[0].ID); err != nil {
		t.Fatalf("mark published: %v", err)
	}
	if err := repo.MarkFailedTx(db, rows[1].ID, errors.New(strings.Repeat("x", 2000))); err != nil {
		t.Fatalf("mark failed: %v", err)
	}
	if err := repo.MarkTerminalTx(db, rows[2].ID, errors.New("bad payload"), 3); err != nil {
		t.Fatalf("mark terminal: %v", err)
	}

	pending, err := repo.FetchUnpublishedForPublish(db, 10, 3)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != rows[1].ID {
		t.Fatalf("expected only the failed row, got %+v", pending)
	}
	if pending[0].AttemptCount != 1 || pending[0].LastError == nil || len(*pending[0].LastError) != maxLastErrorLen {
		t.Fatalf("unexpected failure bookkeeping %+v", pending[0])
	}

	parked, err := repo.ListTerminal(db, 3, 10)
	if err != nil {
		t.Fatalf("list terminal: %v", err)
	}
	if len(parked) != 1 || parked[0].ID != rows[2].ID {
		t.Fatalf("unexpected parked rows %+v", parked)
	}
}
