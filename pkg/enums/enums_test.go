package enums

import "testing"

func TestParsePaymentMethodIgnoresCase(t *testing.T) {
	got, err := ParsePaymentMethod(" pix ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != PaymentMethodPIX {
		t.Fatalf("expected PIX, got %s", got)
	}
	if _, err := ParsePaymentMethod("boleto"); err == nil {
		t.Fatal("expected unknown method to fail")
	}
	if len(PaymentMethods()) != 4 {
		t.Fatalf("expected four payment methods")
	}
}

func TestParseProductUnitDefaults(t *testing.T) {
	got, err := ParseProductUnit("")
	if err != nil || got != DefaultProductUnit {
		t.Fatalf("expected default unit, got %s (%v)", got, err)
	}
	got, err = ParseProductUnit("kg")
	if err != nil || got != ProductUnitKilogram {
		t.Fatalf("expected KG, got %s (%v)", got, err)
	}
	if _, err := ParseProductUnit("barrel"); err == nil {
		t.Fatal("expected unknown unit to fail")
	}
}

func TestParseOperatorRole(t *testing.T) {
	got, err := ParseOperatorRole("stock_manager")
	if err != nil || got != OperatorRoleStockManager {
		t.Fatalf("expected STOCK_MANAGER, got %s (%v)", got, err)
	}
	if OperatorRole("ROOT").IsValid() {
		t.Fatal("ROOT should not be a valid role")
	}
}

func TestOutboxEnums(t *testing.T) {
	if _, err := ParseOutboxEventType("sale_committed"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ParseOutboxAggregateType("order"); err == nil {
		t.Fatal("expected unknown aggregate to fail")
	}
}
