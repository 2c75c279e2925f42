package compliance

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	id "quarters/pkg/domain"
	"quarters/pkg/platform/sentinel"
)

// PostgresInvoices reads the billing module's invoices table. Read-only by
// design; invoice writes belong to billing.
type PostgresInvoices struct {
	db *sql.DB
}

func NewPostgresInvoices(db *sql.DB) *PostgresInvoices {
	return &PostgresInvoices{db: db}
}

func (s *PostgresInvoices) EarliestOutstanding(ctx context.Context, unitID id.UnitID) (*Invoice, error) {
	var (
		unit    uuid.UUID
		status  string
		invoice Invoice
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT unit_id, status, due_date
		FROM invoices
		WHERE unit_id = $1 AND status IN ('OPEN', 'OVERDUE')
		ORDER BY due_date
		LIMIT 1
	`, uuid.UUID(unitID)).Scan(&unit, &status, &invoice.DueDate)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query outstanding invoice: %w", err)
	}
	invoice.UnitID = id.UnitID(unit)
	invoice.Status = InvoiceStatus(status)
	return &invoice, nil
}

func (s *PostgresInvoices) HasPaid(ctx context.Context, unitID id.UnitID) (bool, error) {
	var hasPaid bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM invoices WHERE unit_id = $1 AND status = 'PAID')`,
		uuid.UUID(unitID),
	).Scan(&hasPaid)
	if err != nil {
		return false, fmt.Errorf("query paid invoices: %w", err)
	}
	return hasPaid, nil
}

// PostgresDocuments counts rows in the document module's tenant_documents
// table.
type PostgresDocuments struct {
	db *sql.DB
}

func NewPostgresDocuments(db *sql.DB) *PostgresDocuments {
	return &PostgresDocuments{db: db}
}

func (s *PostgresDocuments) CountByTenant(ctx context.Context, tenantID id.UserID) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tenant_documents WHERE tenant_id = $1`,
		uuid.UUID(tenantID),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count tenant documents: %w", err)
	}
	return count, nil
}
