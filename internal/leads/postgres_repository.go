package leads

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PgxPool is the subset of pgxpool.Pool the repository needs, so a mock pool
// can stand in during tests.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores leads in the relational database.
type PostgresRepository struct {
	pool PgxPool
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool PgxPool) *PostgresRepository {
	if pool == nil {
		panic("leads: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

// uniqueViolation is the Postgres error code for constraint 23505.
const uniqueViolation = "23505"

// Create inserts a new row. A uniqueness rejection from the store comes back
// as a *DuplicateError naming the colliding field.
func (r *PostgresRepository) Create(ctx context.Context, lead *Lead) (*Lead, error) {
	id := uuid.New()
	query := `
		INSERT INTO leads (id, name, email, phone, message, source, medium, campaign, ip_address, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at
	`
	var createdAt time.Time
	if err := r.pool.QueryRow(ctx, query,
		id,
		lead.Name,
		lead.Email,
		lead.Phone,
		nullable(lead.Message),
		nullable(lead.Source),
		nullable(lead.Medium),
		nullable(lead.Campaign),
		nullable(lead.IPAddress),
		nullable(lead.UserAgent),
	).Scan(&createdAt); err != nil {
		if dup := duplicateField(err); dup != nil {
			return nil, dup
		}
		return nil, fmt.Errorf("leads: insert failed: %w", err)
	}

	stored := *lead
	stored.ID = id.String()
	stored.CreatedAt = createdAt
	return &stored, nil
}

// GetByID fetches a single lead.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Lead, error) {
	query := `
		SELECT id, name, email, phone, COALESCE(message, ''), COALESCE(source, ''),
		       COALESCE(medium, ''), COALESCE(campaign, ''), COALESCE(ip_address, ''),
		       COALESCE(user_agent, ''), created_at
		FROM leads
		WHERE id = $1
	`
	var lead Lead
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&lead.ID,
		&lead.Name,
		&lead.Email,
		&lead.Phone,
		&lead.Message,
		&lead.Source,
		&lead.Medium,
		&lead.Campaign,
		&lead.IPAddress,
		&lead.UserAgent,
		&lead.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("leads: select failed: %w", err)
	}
	return &lead, nil
}

// duplicateField maps a 23505 error to the colliding column. The unique
// indexes are named leads_email_key and leads_phone_key.
func duplicateField(err error) *DuplicateError {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return nil
	}
	if strings.Contains(pgErr.ConstraintName, "phone") {
		return &DuplicateError{Field: "phone"}
	}
	return &DuplicateError{Field: "email"}
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
