package errors

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// ErrorDump flattens an error chain into log fields. The store fields are
// filled from whichever driver error sits in the chain: pgx or pq against
// postgres, go-sqlite3 for local runs and replay.
type ErrorDump struct {
	TopMessage string   `json:"top_message"`
	Code       Code     `json:"code,omitempty"`
	Retryable  bool     `json:"retryable,omitempty"`
	Chain      []string `json:"chain,omitempty"`

	Driver          string `json:"driver,omitempty"`
	StoreCode       string `json:"store_code,omitempty"`
	StoreConstraint string `json:"store_constraint,omitempty"`
	StoreTable      string `json:"store_table,omitempty"`
	StoreColumn     string `json:"store_column,omitempty"`
	StoreDetail     string `json:"store_detail,omitempty"`
	StoreMessage    string `json:"store_message,omitempty"`
}

// Fields returns the non-empty parts of the dump keyed for structured logs.
func (d ErrorDump) Fields() map[string]any {
	fields := map[string]any{"error": d.TopMessage}
	if d.Code != "" {
		fields["error_code"] = d.Code
		fields["retryable"] = d.Retryable
	}
	if len(d.Chain) > 1 {
		fields["error_chain"] = d.Chain
	}
	if d.Driver == "" {
		return fields
	}
	fields["db_driver"] = d.Driver
	for key, value := range map[string]string{
		"db_code":       d.StoreCode,
		"db_constraint": d.StoreConstraint,
		"db_table":      d.StoreTable,
		"db_column":     d.StoreColumn,
		"db_detail":     d.StoreDetail,
		"db_message":    d.StoreMessage,
	} {
		if value != "" {
			fields[key] = value
		}
	}
	return fields
}

func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	d := ErrorDump{TopMessage: err.Error()}
	if te := As(err); te != nil {
		d.Code = te.Code()
		d.Retryable = MetadataFor(te.Code()).Retryable
	}
	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}

	var pgxErr *pgconn.PgError
	var pqErr *pq.Error
	var liteErr sqlite3.Error
	switch {
	case errors.As(err, &pgxErr):
		d.Driver = "pgx"
		d.StoreCode = pgxErr.Code
		d.StoreConstraint = pgxErr.ConstraintName
		d.StoreTable = pgxErr.TableName
		d.StoreColumn = pgxErr.ColumnName
		d.StoreDetail = pgxErr.Detail
		d.StoreMessage = pgxErr.Message
	case errors.As(err, &pqErr):
		d.Driver = "pq"
		d.StoreCode = string(pqErr.Code)
		d.StoreConstraint = pqErr.Constraint
		d.StoreTable = pqErr.Table
		d.StoreColumn = pqErr.Column
		d.StoreDetail = pqErr.Detail
		d.StoreMessage = pqErr.Message
	case errors.As(err, &liteErr):
		d.Driver = "sqlite3"
		d.StoreCode = fmt.Sprintf("%d/%d", int(liteErr.Code), int(liteErr.ExtendedCode))
		d.StoreMessage = liteErr.Error()
	}
	return d
}
