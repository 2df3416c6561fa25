package sequencer

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

const sequenceRowID = 1

// Both postgres and sqlite >= 3.35 accept this statement.
const upsertNextSQL = `INSERT INTO sale_sequences (id, last_number, updated_at)
VALUES (?, 1, ?)
ON CONFLICT (id) DO UPDATE
SET last_number = sale_sequences.last_number + 1,
    updated_at = excluded.updated_at
RETURNING last_number`

// SQL issues numbers from the single sale_sequences row with an atomic upsert.
type SQL struct {
	db  *gorm.DB
	now func() time.Time
}

func NewSQL(db *gorm.DB) (*SQL, error) {
	if db == nil {
		return nil, fmt.Errorf("db required")
	}
	return &SQL{db: db, now: time.Now}, nil
}

func (s *SQL) Next(ctx context.Context) (int64, error) {
	var last int64
	err := s.db.WithContext(ctx).
		Raw(upsertNextSQL, sequenceRowID, s.now().UTC()).
		Scan(&last).Error
	if err != nil {
		return 0, fmt.Errorf("%w: upsert sale_sequences: %w", ErrUnavailable, err)
	}
	if last <= 0 {
		return 0, fmt.Errorf("%w: upsert sale_sequences returned %d", ErrUnavailable, last)
	}
	return last, nil
}

// Current returns the last issued number, or 0 when the row does not exist yet.
func (s *SQL) Current(ctx context.Context) (int64, error) {
	var last int64
	err := s.db.WithContext(ctx).
		Raw(`SELECT COALESCE(MAX(last_number), 0) FROM sale_sequences WHERE id = ?`, sequenceRowID).
		Scan(&last).Error
	if err != nil {
		return 0, fmt.Errorf("%w: read sale_sequences: %w", ErrUnavailable, err)
	}
	return last, nil
}
