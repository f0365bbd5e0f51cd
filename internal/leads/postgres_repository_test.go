package leads

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v3"
)

func newMockRepo(t *testing.T) (*PostgresRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	t.Cleanup(mock.Close)
	return &PostgresRepository{pool: mock}, mock
}

func TestPostgresCreate(t *testing.T) {
	repo, mock := newMockRepo(t)
	createdAt := time.Now().UTC()

	mock.ExpectQuery("INSERT INTO leads").
		WithArgs(pgxmock.AnyArg(), "Maria Silva", "maria@example.com", "5551998535411",
			nil, "organico", nil, nil, "203.0.113.9", "test-agent").
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(createdAt))

	lead, err := repo.Create(context.Background(), &Lead{
		Name:      "Maria Silva",
		Email:     "maria@example.com",
		Phone:     "5551998535411",
		Source:    "organico",
		IPAddress: "203.0.113.9",
		UserAgent: "test-agent",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if lead.ID == "" {
		t.Error("expected generated id")
	}
	if !lead.CreatedAt.Equal(createdAt) {
		t.Errorf("expected store-assigned created_at, got %v", lead.CreatedAt)
	}
}

func TestPostgresCreateDuplicateEmail(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("INSERT INTO leads").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "leads_email_key"})

	_, err := repo.Create(context.Background(), &Lead{
		Name:  "Maria Silva",
		Email: "maria@example.com",
		Phone: "5551998535411",
	})
	var dup *DuplicateError
	if !errors.As(err, &dup) {
		t.Fatalf("expected *DuplicateError, got %v", err)
	}
	if dup.Field != "email" {
		t.Errorf("expected email field, got %q", dup.Field)
	}
}

func TestPostgresCreateDuplicatePhone(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("INSERT INTO leads").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "leads_phone_key"})

	_, err := repo.Create(context.Background(), &Lead{
		Name:  "Maria Silva",
		Email: "maria@example.com",
		Phone: "5551998535411",
	})
	var dup *DuplicateError
	if !errors.As(err, &dup) {
		t.Fatalf("expected *DuplicateError, got %v", err)
	}
	if dup.Field != "phone" {
		t.Errorf("expected phone field, got %q", dup.Field)
	}
}

func TestPostgresCreateOtherErrorIsNotDuplicate(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("INSERT INTO leads").
		WillReturnError(&pgconn.PgError{Code: "57P01"}) // admin_shutdown

	_, err := repo.Create(context.Background(), &Lead{
		Name:  "Maria Silva",
		Email: "maria@example.com",
		Phone: "5551998535411",
	})
	var dup *DuplicateError
	if errors.As(err, &dup) {
		t.Fatal("non-unique violation must not map to DuplicateError")
	}
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestPostgresGetByID(t *testing.T) {
	repo, mock := newMockRepo(t)
	createdAt := time.Now().UTC()

	rows := pgxmock.NewRows([]string{
		"id", "name", "email", "phone", "message", "source",
		"medium", "campaign", "ip_address", "user_agent", "created_at",
	}).AddRow("abc-123", "Maria Silva", "maria@example.com", "5551998535411",
		"", "organico", "", "", "203.0.113.9", "test-agent", createdAt)

	mock.ExpectQuery("SELECT (.+) FROM leads").WithArgs("abc-123").WillReturnRows(rows)

	lead, err := repo.GetByID(context.Background(), "abc-123")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if lead.Name != "Maria Silva" || lead.Source != "organico" {
		t.Errorf("unexpected lead: %+v", lead)
	}
}
