package checklist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	id "quarters/pkg/domain"
	"quarters/pkg/platform/sentinel"
)

// PostgresStore persists checklist items in the checklist_items table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const itemColumns = `id, tenancy_id, checklist_type, item_type, title, description,
	is_required, is_completed, completed_at, completed_by, sort_order, created_at, updated_at`

// CreateChecklist inserts the seeded items inside one transaction. An
// advisory lock on the tenancy+type pair serializes concurrent
// initializations so the existence check and the inserts are atomic.
func (s *PostgresStore) CreateChecklist(ctx context.Context, tenancyID id.TenancyID, checklistType Type, items []*Item) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin checklist tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`SELECT pg_advisory_xact_lock(hashtext($1 || ':' || $2))`,
		uuid.UUID(tenancyID).String(), string(checklistType),
	)
	if err != nil {
		return fmt.Errorf("lock checklist init: %w", err)
	}

	var exists bool
	err = tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM checklist_items WHERE tenancy_id = $1 AND checklist_type = $2)`,
		uuid.UUID(tenancyID), string(checklistType),
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check checklist existence: %w", err)
	}
	if exists {
		return sentinel.ErrConflict
	}

	for _, item := range items {
		if err := insertItem(ctx, tx, item); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func insertItem(ctx context.Context, tx *sql.Tx, item *Item) error {
	query := `
		INSERT INTO checklist_items (` + itemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	var completedBy any
	if !item.CompletedBy.IsNil() {
		completedBy = uuid.UUID(item.CompletedBy)
	}
	_, err := tx.ExecContext(ctx, query,
		uuid.UUID(item.ID), uuid.UUID(item.TenancyID), string(item.ChecklistType),
		string(item.ItemType), item.Title, item.Description, item.IsRequired,
		item.IsCompleted, item.CompletedAt, completedBy, item.SortOrder,
		item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert checklist item: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindItem(ctx context.Context, itemID id.ChecklistItemID) (*Item, error) {
	query := `SELECT ` + itemColumns + ` FROM checklist_items WHERE id = $1`
	item, err := scanItem(s.db.QueryRowContext(ctx, query, uuid.UUID(itemID)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	return item, err
}

func (s *PostgresStore) ListByTenancy(ctx context.Context, tenancyID id.TenancyID) ([]*Item, error) {
	query := `SELECT ` + itemColumns + ` FROM checklist_items
		WHERE tenancy_id = $1 ORDER BY checklist_type, sort_order`
	return s.queryItems(ctx, query, uuid.UUID(tenancyID))
}

func (s *PostgresStore) ListByType(ctx context.Context, tenancyID id.TenancyID, checklistType Type) ([]*Item, error) {
	query := `SELECT ` + itemColumns + ` FROM checklist_items
		WHERE tenancy_id = $1 AND checklist_type = $2 ORDER BY sort_order`
	return s.queryItems(ctx, query, uuid.UUID(tenancyID), string(checklistType))
}

// MarkCompleted relies on a guarded UPDATE so two racing completions cannot
// both write attribution: the loser's UPDATE matches zero rows and the current
// row is returned instead.
func (s *PostgresStore) MarkCompleted(ctx context.Context, itemID id.ChecklistItemID, actorID id.UserID, at time.Time) (*Item, bool, error) {
	query := `
		UPDATE checklist_items
		SET is_completed = TRUE, completed_at = $2, completed_by = $3, updated_at = $2
		WHERE id = $1 AND NOT is_completed
		RETURNING ` + itemColumns
	item, err := scanItem(s.db.QueryRowContext(ctx, query, uuid.UUID(itemID), at, uuid.UUID(actorID)))
	if err == nil {
		return item, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, err
	}

	item, err = s.FindItem(ctx, itemID)
	if err != nil {
		return nil, false, err
	}
	return item, false, nil
}

func (s *PostgresStore) UpdateItem(ctx context.Context, item *Item) error {
	query := `
		UPDATE checklist_items
		SET title = $2, description = $3, is_required = $4, is_completed = $5,
			completed_at = $6, completed_by = $7, sort_order = $8, updated_at = NOW()
		WHERE id = $1
	`
	var completedBy any
	if !item.CompletedBy.IsNil() {
		completedBy = uuid.UUID(item.CompletedBy)
	}
	res, err := s.db.ExecContext(ctx, query,
		uuid.UUID(item.ID), item.Title, item.Description, item.IsRequired,
		item.IsCompleted, item.CompletedAt, completedBy, item.SortOrder,
	)
	if err != nil {
		return fmt.Errorf("update checklist item: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) AddItem(ctx context.Context, item *Item) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin add item tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	if err := insertItem(ctx, tx, item); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *PostgresStore) DeleteItem(ctx context.Context, itemID id.ChecklistItemID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM checklist_items WHERE id = $1`, uuid.UUID(itemID))
	if err != nil {
		return fmt.Errorf("delete checklist item: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) queryItems(ctx context.Context, query string, args ...any) ([]*Item, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query checklist items: %w", err)
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*Item, error) {
	var (
		item              Item
		itemID, tenancyID uuid.UUID
		checklistType     string
		itemType          string
		completedBy       uuid.NullUUID
	)
	err := row.Scan(&itemID, &tenancyID, &checklistType, &itemType, &item.Title,
		&item.Description, &item.IsRequired, &item.IsCompleted, &item.CompletedAt,
		&completedBy, &item.SortOrder, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan checklist item: %w", err)
	}
	item.ID = id.ChecklistItemID(itemID)
	item.TenancyID = id.TenancyID(tenancyID)
	item.ChecklistType = Type(checklistType)
	item.ItemType = ItemType(itemType)
	if completedBy.Valid {
		item.CompletedBy = id.UserID(completedBy.UUID)
	}
	return &item, nil
}
