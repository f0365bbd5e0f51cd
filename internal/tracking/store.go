// Package tracking records conversion events locally and forwards them to
// the ad platform's server-side ingestion API.
package tracking

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PgxPool is the subset of pgxpool.Pool the store needs.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ConversionRecord is one attribution signal tied to a lead by id. The lead
// reference is weak: conversions survive lead deletion.
type ConversionRecord struct {
	LeadID    string
	EventName string
	Value     float64
	Currency  string
	EventID   string
	FBC       string
	GClid     string
}

// Store persists conversion rows in Postgres.
type Store struct {
	pool PgxPool
}

// NewStore creates a conversion store. A nil pool yields a nil store, which
// callers treat as "recording disabled".
func NewStore(pool PgxPool) *Store {
	if pool == nil {
		return nil
	}
	return &Store{pool: pool}
}

// InsertConversion writes one row. Creation failures never roll back the
// lead insert that preceded them.
func (s *Store) InsertConversion(ctx context.Context, rec ConversionRecord) error {
	if s == nil {
		return nil
	}
	query := `
		INSERT INTO conversions (id, lead_id, event_name, value, currency, event_id, fbc, gclid)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), NULLIF($8, ''))
	`
	if _, err := s.pool.Exec(ctx, query,
		uuid.New(),
		rec.LeadID,
		rec.EventName,
		rec.Value,
		rec.Currency,
		rec.EventID,
		rec.FBC,
		rec.GClid,
	); err != nil {
		return fmt.Errorf("tracking: insert conversion: %w", err)
	}
	return nil
}
