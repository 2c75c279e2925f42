package tenancy

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	id "quarters/pkg/domain"
	"quarters/pkg/platform/sentinel"
)

// PostgresStore persists tenancies in the tenancies table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const uniqueViolation = "23505"

func (s *PostgresStore) Create(ctx context.Context, t *Tenancy) error {
	query := `
		INSERT INTO tenancies (id, tenant_id, unit_id, active, start_date, end_date, move_out_date, legacy_move_in, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(t.ID), uuid.UUID(t.TenantID), uuid.UUID(t.UnitID),
		t.Active, t.StartDate, t.EndDate, t.MoveOutDate, t.LegacyMoveIn,
		t.CreatedAt, t.UpdatedAt,
	)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return sentinel.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("insert tenancy: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, tenancyID id.TenancyID) (*Tenancy, error) {
	query := `
		SELECT id, tenant_id, unit_id, active, start_date, end_date, move_out_date, legacy_move_in, created_at, updated_at
		FROM tenancies WHERE id = $1
	`
	return s.scanOne(s.db.QueryRowContext(ctx, query, uuid.UUID(tenancyID)))
}

func (s *PostgresStore) FindActiveByTenant(ctx context.Context, tenantID id.UserID) (*Tenancy, error) {
	query := `
		SELECT id, tenant_id, unit_id, active, start_date, end_date, move_out_date, legacy_move_in, created_at, updated_at
		FROM tenancies WHERE tenant_id = $1 AND active ORDER BY start_date DESC LIMIT 1
	`
	return s.scanOne(s.db.QueryRowContext(ctx, query, uuid.UUID(tenantID)))
}

func (s *PostgresStore) End(ctx context.Context, tenancyID id.TenancyID, moveOutDate time.Time) error {
	query := `
		UPDATE tenancies SET active = FALSE, move_out_date = $2, updated_at = NOW()
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query, uuid.UUID(tenancyID), moveOutDate)
	if err != nil {
		return fmt.Errorf("end tenancy: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) scanOne(row *sql.Row) (*Tenancy, error) {
	var (
		t                     Tenancy
		tid, tenantID, unitID uuid.UUID
	)
	err := row.Scan(&tid, &tenantID, &unitID, &t.Active, &t.StartDate, &t.EndDate,
		&t.MoveOutDate, &t.LegacyMoveIn, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan tenancy: %w", err)
	}
	t.ID = id.TenancyID(tid)
	t.TenantID = id.UserID(tenantID)
	t.UnitID = id.UnitID(unitID)
	return &t, nil
}
