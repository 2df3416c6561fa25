package registry

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/pdv-backend/pkg/config"
	"github.com/angelmondragon/pdv-backend/pkg/db/models"
	"github.com/angelmondragon/pdv-backend/pkg/enums"
	"github.com/angelmondragon/pdv-backend/pkg/outbox"
	"github.com/angelmondragon/pdv-backend/pkg/outbox/payloads"
)

func TestEventRegistryResolveSuccess(t *testing.T) {
	reg := newTestEventRegistry(t)

	payloadBytes := mustMarshal(t, payloads.SaleCommittedEvent{
		SaleNumber:    42,
		OperatorID:    "op-1",
		PaymentMethod: enums.PaymentMethodCash,
		TotalCents:    820,
		Lines: []payloads.SaleLine{
			{ItemNumber: 1, Barcode: "123", Quantity: 1, UnitPriceCents: 500, TotalCents: 500},
			{ItemNumber: 2, Barcode: "456", Quantity: 1, UnitPriceCents: 320, TotalCents: 320},
		},
	})

	event := models.OutboxEvent{
		EventType:     enums.EventSaleCommitted,
		AggregateType: enums.AggregateSale,
		AggregateID:   "42",
		Payload:       mustEnvelope(t, payloadBytes),
	}

	resolved, err := reg.Resolve(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolved.Descriptor.Topic != "sales-topic" {
		t.Fatalf("unexpected topic %q", resolved.Descriptor.Topic)
	}
	payload, ok := resolved.Payload.(*payloads.SaleCommittedEvent)
	if !ok {
		t.Fatalf("unexpected payload type %T", resolved.Payload)
	}
	if payload.SaleNumber != 42 || len(payload.Lines) != 2 || payload.TotalCents != 820 {
		t.Fatalf("payload mismatch %+v", payload)
	}
	if resolved.Envelope.EventID == "" {
		t.Fatalf("envelope missing event id")
	}
}

func TestEventRegistryResolveReceiptChoice(t *testing.T) {
	reg := newTestEventRegistry(t)

	event := models.OutboxEvent{
		EventType:     enums.EventSaleReceiptChosen,
		AggregateType: enums.AggregateSale,
		AggregateID:   "7",
		Payload:       mustEnvelope(t, []byte(`{"sale_number":7,"requested":true}`)),
	}

	resolved, err := reg.Resolve(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	payload := resolved.Payload.(*payloads.SaleReceiptChosenEvent)
	if !payload.Requested || payload.SaleNumber != 7 {
		t.Fatalf("payload mismatch %+v", payload)
	}
}

func TestEventRegistryResolveRejections(t *testing.T) {
	reg := newTestEventRegistry(t)

	cases := map[string]models.OutboxEvent{
		"unknown event": {
			EventType:     enums.OutboxEventType("product_created"),
			AggregateType: enums.AggregateSale,
			AggregateID:   "1",
			Payload:       mustEnvelope(t, []byte(`{}`)),
		},
		"aggregate mismatch": {
			EventType:     enums.EventSaleCommitted,
			AggregateType: enums.OutboxAggregateType("product"),
			AggregateID:   "1",
			Payload:       mustEnvelope(t, []byte(`{}`)),
		},
		"missing aggregate id": {
			EventType:     enums.EventSaleCommitted,
			AggregateType: enums.AggregateSale,
			Payload:       mustEnvelope(t, []byte(`{}`)),
		},
		"null payload": {
			EventType:     enums.EventSaleCommitted,
			AggregateType: enums.AggregateSale,
			AggregateID:   "1",
			Payload:       mustEnvelope(t, []byte("null")),
		},
		"broken envelope": {
			EventType:     enums.EventSaleCommitted,
			AggregateType: enums.AggregateSale,
			AggregateID:   "1",
			Payload:       json.RawMessage(`{"data":`),
		},
	}
	for name, event := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := reg.Resolve(event)
			if err == nil {
				t.Fatalf("expected error")
			}
			var nonRetry NonRetryableError
			if !errors.As(err, &nonRetry) {
				t.Fatalf("expected non-retryable error, got %T", err)
			}
		})
	}
}

func TestNewEventRegistryRequiresTopic(t *testing.T) {
	if _, err := NewEventRegistry(config.PubSubConfig{}); err == nil {
		t.Fatalf("expected error")
	}
}

func newTestEventRegistry(t *testing.T) *EventRegistry {
	t.Helper()
	reg, err := NewEventRegistry(config.PubSubConfig{SalesTopic: "sales-topic"})
	if err != nil {
		t.Fatalf("build registry: %v", err)
	}
	return reg
}

func mustMarshal(t *testing.T, v interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return data
}

func mustEnvelope(t *testing.T, payload []byte) json.RawMessage {
	t.Helper()
	envelope := outbox.PayloadEnvelope{
		Version:    1,
		EventID:    uuid.NewString(),
		OccurredAt: time.Now().UTC(),
		Data:       payload,
	}
	data, err := json.Marshal(envelope)
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	return data
}
