package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code      Code
		status    int
		publicMsg string
		retryable bool
		detailsOK bool
	}{
		{code: CodeValidation, status: http.StatusBadRequest, publicMsg: "validation failed", detailsOK: true},
		{code: CodeUnauthorized, status: http.StatusUnauthorized, publicMsg: "authentication required"},
		{code: CodeForbidden, status: http.StatusForbidden, publicMsg: "access denied"},
		{code: CodeNotFound, status: http.StatusNotFound, publicMsg: "resource not found"},
		{code: CodeConflict, status: http.StatusConflict, publicMsg: "conflict detected"},
		{code: CodeStateConflict, status: http.StatusUnprocessableEntity, publicMsg: "command not allowed in current state", detailsOK: true},
		{code: CodePersistence, status: http.StatusBadGateway, publicMsg: "sale could not be saved", retryable: true, detailsOK: true},
		{code: CodeTimeout, status: http.StatusGatewayTimeout, publicMsg: "dependency timed out", retryable: true, detailsOK: true},
		{code: CodeInternal, status: http.StatusInternalServerError, publicMsg: "internal server error", retryable: true},
		{code: CodeDependency, status: http.StatusServiceUnavailable, publicMsg: "dependency unavailable", retryable: true, detailsOK: true},
	}

	for _, tt := range tests {
		meta := MetadataFor(tt.code)
		if meta.HTTPStatus != tt.status {
			t.Fatalf("code %s expected status %d got %d", tt.code, tt.status, meta.HTTPStatus)
		}
		if meta.PublicMessage != tt.publicMsg {
			t.Fatalf("code %s expected public message %q got %q", tt.code, tt.publicMsg, meta.PublicMessage)
		}
		if meta.Retryable != tt.retryable {
			t.Fatalf("code %s expected retryable %v got %v", tt.code, tt.retryable, meta.Retryable)
		}
		if meta.DetailsAllowed != tt.detailsOK {
			t.Fatalf("code %s expected details allowed %v got %v", tt.code, tt.detailsOK, meta.DetailsAllowed)
		}
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor("SOMETHING_UNKNOWN")
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal status, got %d", meta.HTTPStatus)
	}
}

func TestErrorConstructors(t *testing.T) {
	base := New(CodeValidation, "missing code")
	if base.Code() != CodeValidation {
		t.Fatalf("expected validation code, got %s", base.Code())
	}
	if base.Message() != "missing code" {
		t.Fatalf("unexpected message %q", base.Message())
	}
	if base.Details() != nil {
		t.Fatalf("details should be nil by default")
	}

	base.WithDetails(map[string]any{"field": "code"})
	if base.Details() == nil {
		t.Fatalf("details should be preserved")
	}

	cause := stdErrors.New("boom")
	wrapped := Wrap(CodeDependency, cause, "sequencer")
	if !stdErrors.Is(wrapped, cause) {
		t.Fatalf("Wrap did not preserve cause")
	}
	if !wrapped.Retryable() {
		t.Fatalf("dependency errors should be retryable")
	}
	if wrapped.Error() != "DEPENDENCY_ERROR: sequencer: boom" {
		t.Fatalf("unexpected error string %q", wrapped.Error())
	}
}

func TestAsAndHasCode(t *testing.T) {
	err := fmt.Errorf("outer: %w", New(CodeForbidden, "no entry"))
	if got := As(err); got == nil || got.Code() != CodeForbidden {
		t.Fatalf("As failed to return typed error")
	}
	if !HasCode(err, CodeForbidden) {
		t.Fatalf("expected HasCode to match")
	}
	if HasCode(err, CodeNotFound) {
		t.Fatalf("unexpected code match")
	}
	if As(nil) != nil {
		t.Fatalf("As(nil) should return nil")
	}
}

func TestDumpExtractsPgError(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "sales_pkey", TableName: "sales", Message: "duplicate key"}
	err := Wrap(CodePersistence, pgErr, "insert sale")

	d := Dump(err)
	if d.Code != CodePersistence {
		t.Fatalf("expected persistence code, got %s", d.Code)
	}
	if d.Driver != "pgx" || d.StoreCode != "23505" || d.StoreConstraint != "sales_pkey" || d.StoreTable != "sales" {
		t.Fatalf("unexpected pg fields %+v", d)
	}
	if len(d.Chain) != 2 {
		t.Fatalf("expected two chain entries, got %v", d.Chain)
	}
	if Dump(nil).TopMessage != "" {
		t.Fatalf("expected empty dump for nil")
	}
}

func TestDumpExtractsSQLiteError(t *testing.T) {
	liteErr := sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintPrimaryKey}
	err := Wrap(CodePersistence, fmt.Errorf("insert sale 7: %w", liteErr), "commit sale")

	d := Dump(err)
	if d.Driver != "sqlite3" {
		t.Fatalf("expected sqlite3 driver, got %q", d.Driver)
	}
	if d.StoreCode != "19/1555" {
		t.Fatalf("unexpected store code %q", d.StoreCode)
	}

	fields := d.Fields()
	if fields["db_code"] != "19/1555" || fields["error_code"] != CodePersistence {
		t.Fatalf("unexpected fields %v", fields)
	}
	if _, ok := fields["db_table"]; ok {
		t.Fatalf("empty store fields should be omitted: %v", fields)
	}
}

func TestDumpFieldsWithoutStoreError(t *testing.T) {
	fields := Dump(New(CodeDependency, "catalog down")).Fields()
	if _, ok := fields["db_driver"]; ok {
		t.Fatalf("unexpected driver field %v", fields)
	}
	if fields["retryable"] != MetadataFor(CodeDependency).Retryable {
		t.Fatalf("retryable flag not copied: %v", fields)
	}
}
