package inspection

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

// PostgresStore persists the inspection graph across the inspections,
// inspection_items, and inspection_photos tables. Lock checks run inside a
// transaction with the parent row selected FOR UPDATE, so guarded writes
// serialize against a concurrent finalize.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const uniqueViolation = "23505"

const inspectionColumns = `id, tenancy_id, phase, status, damage_found, damage_notes,
	is_finalized, finalized_at, finalized_by, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, insp *Inspection, items []*Item) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin inspection tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO inspections (`+inspectionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		uuid.UUID(insp.ID), uuid.UUID(insp.TenancyID), string(insp.Phase), string(insp.Status),
		insp.DamageFound, insp.DamageNotes, insp.IsFinalized, insp.FinalizedAt,
		nullableUUID(uuid.UUID(insp.FinalizedBy)), insp.CreatedAt, insp.UpdatedAt,
	)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return sentinel.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("insert inspection: %w", err)
	}

	for _, item := range items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO inspection_items (id, inspection_id, category, condition, notes, sort_order, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`,
			uuid.UUID(item.ID), uuid.UUID(item.InspectionID), string(item.Category),
			conditionValue(item.Condition), item.Notes, item.SortOrder, item.CreatedAt, item.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert inspection item: %w", err)
		}
	}
	return tx.Commit()
}

func (s *PostgresStore) Find(ctx context.Context, inspectionID id.InspectionID) (*Inspection, error) {
	query := `SELECT ` + inspectionColumns + ` FROM inspections WHERE id = $1`
	return scanInspection(s.db.QueryRowContext(ctx, query, uuid.UUID(inspectionID)))
}

func (s *PostgresStore) FindByTenancy(ctx context.Context, tenancyID id.TenancyID, phase Phase) (*Inspection, error) {
	query := `SELECT ` + inspectionColumns + ` FROM inspections WHERE tenancy_id = $1 AND phase = $2`
	return scanInspection(s.db.QueryRowContext(ctx, query, uuid.UUID(tenancyID), string(phase)))
}

func (s *PostgresStore) FindItem(ctx context.Context, itemID id.InspectionItemID) (*Item, error) {
	query := `
		SELECT id, inspection_id, category, condition, notes, sort_order, created_at, updated_at
		FROM inspection_items WHERE id = $1
	`
	item, err := scanItem(s.db.QueryRowContext(ctx, query, uuid.UUID(itemID)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	return item, err
}

func (s *PostgresStore) ListItems(ctx context.Context, inspectionID id.InspectionID) ([]*Item, error) {
	query := `
		SELECT id, inspection_id, category, condition, notes, sort_order, created_at, updated_at
		FROM inspection_items WHERE inspection_id = $1 ORDER BY sort_order
	`
	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(inspectionID))
	if err != nil {
		return nil, fmt.Errorf("query inspection items: %w", err)
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

func (s *PostgresStore) FindPhoto(ctx context.Context, photoID id.PhotoID) (*Photo, error) {
	query := `
		SELECT id, item_id, inspection_id, storage_key, filename, caption, created_at
		FROM inspection_photos WHERE id = $1
	`
	photo, err := scanPhoto(s.db.QueryRowContext(ctx, query, uuid.UUID(photoID)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	return photo, err
}

func (s *PostgresStore) ListPhotos(ctx context.Context, inspectionID id.InspectionID) ([]*Photo, error) {
	query := `
		SELECT id, item_id, inspection_id, storage_key, filename, caption, created_at
		FROM inspection_photos WHERE inspection_id = $1 ORDER BY created_at
	`
	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(inspectionID))
	if err != nil {
		return nil, fmt.Errorf("query inspection photos: %w", err)
	}
	defer rows.Close()

	var photos []*Photo
	for rows.Next() {
		photo, err := scanPhoto(rows)
		if err != nil {
			return nil, err
		}
		photos = append(photos, photo)
	}
	return photos, rows.Err()
}

func (s *PostgresStore) UpdateItem(ctx context.Context, item *Item) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin item update tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	parentID, err := s.lockParentByItem(ctx, tx, item.ID)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE inspection_items SET condition = $2, notes = $3, updated_at = NOW()
		WHERE id = $1
	`, uuid.UUID(item.ID), conditionValue(item.Condition), item.Notes)
	if err != nil {
		return fmt.Errorf("update inspection item: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE inspections SET status = $2, updated_at = NOW()
		WHERE id = $1 AND status = $3
	`, parentID, string(StatusInProgress), string(StatusNotStarted))
	if err != nil {
		return fmt.Errorf("promote inspection status: %w", err)
	}
	return tx.Commit()
}

func (s *PostgresStore) SetDamageReport(ctx context.Context, inspectionID id.InspectionID, damageFound bool, damageNotes string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin damage report tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.lockParent(ctx, tx, uuid.UUID(inspectionID)); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE inspections
		SET damage_found = $2, damage_notes = $3,
			status = CASE WHEN status = $4 THEN $5 ELSE status END,
			updated_at = NOW()
		WHERE id = $1
	`, uuid.UUID(inspectionID), damageFound, damageNotes,
		string(StatusNotStarted), string(StatusInProgress))
	if err != nil {
		return fmt.Errorf("update damage report: %w", err)
	}
	return tx.Commit()
}

func (s *PostgresStore) AddPhoto(ctx context.Context, photo *Photo) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin photo tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := s.lockParentByItem(ctx, tx, photo.ItemID); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO inspection_photos (id, item_id, inspection_id, storage_key, filename, caption, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		uuid.UUID(photo.ID), uuid.UUID(photo.ItemID), uuid.UUID(photo.InspectionID),
		photo.StorageKey, photo.Filename, photo.Caption, photo.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert inspection photo: %w", err)
	}
	return tx.Commit()
}

func (s *PostgresStore) DeletePhoto(ctx context.Context, photoID id.PhotoID) (*Photo, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin photo delete tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	photo, err := scanPhoto(tx.QueryRowContext(ctx, `
		SELECT id, item_id, inspection_id, storage_key, filename, caption, created_at
		FROM inspection_photos WHERE id = $1
	`, uuid.UUID(photoID)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := s.lockParent(ctx, tx, uuid.UUID(photo.InspectionID)); err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM inspection_photos WHERE id = $1`, uuid.UUID(photoID)); err != nil {
		return nil, fmt.Errorf("delete inspection photo: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return photo, nil
}

// Finalize performs the atomic check-then-write: the guarded UPDATE only
// matches an unfinalized row with zero ungraded items, so two concurrent
// finalize calls cannot both succeed. The losing caller gets a precise error
// from the diagnostic read that follows.
func (s *PostgresStore) Finalize(ctx context.Context, inspectionID id.InspectionID, actorID id.UserID, at time.Time) (*Inspection, error) {
	query := `
		UPDATE inspections
		SET status = $2, is_finalized = TRUE, finalized_at = $3, finalized_by = $4, updated_at = $3
		WHERE id = $1
			AND NOT is_finalized
			AND NOT EXISTS (
				SELECT 1 FROM inspection_items
				WHERE inspection_id = $1 AND condition IS NULL
			)
		RETURNING ` + inspectionColumns
	insp, err := scanInspection(s.db.QueryRowContext(ctx, query,
		uuid.UUID(inspectionID), string(StatusCompleted), at, uuid.UUID(actorID)))
	if err == nil {
		return insp, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, err
	}

	// Zero rows: figure out which guard refused.
	current, findErr := s.Find(ctx, inspectionID)
	if findErr != nil {
		return nil, findErr
	}
	if current.IsFinalized {
		return nil, sentinel.ErrInvalidState
	}
	var missing int
	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM inspection_items WHERE inspection_id = $1 AND condition IS NULL`,
		uuid.UUID(inspectionID),
	).Scan(&missing)
	if err != nil {
		return nil, fmt.Errorf("count ungraded items: %w", err)
	}
	if missing > 0 {
		return nil, &IncompleteError{Missing: missing}
	}
	// The guards pass now; the racing writer must have reopened in between.
	return nil, sentinel.ErrUnavailable
}

func (s *PostgresStore) Reopen(ctx context.Context, inspectionID id.InspectionID) (*Inspection, error) {
	query := `
		UPDATE inspections
		SET status = $2, is_finalized = FALSE, finalized_at = NULL, finalized_by = NULL, updated_at = NOW()
		WHERE id = $1 AND is_finalized
		RETURNING ` + inspectionColumns
	insp, err := scanInspection(s.db.QueryRowContext(ctx, query,
		uuid.UUID(inspectionID), string(StatusInProgress)))
	if err == nil {
		return insp, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, err
	}

	current, findErr := s.Find(ctx, inspectionID)
	if findErr != nil {
		return nil, findErr
	}
	if !current.IsFinalized {
		return nil, sentinel.ErrInvalidState
	}
	return nil, sentinel.ErrUnavailable
}

// lockParent selects the inspection row FOR UPDATE and checks the lock.
func (s *PostgresStore) lockParent(ctx context.Context, tx *sql.Tx, inspectionID uuid.UUID) error {
	var isFinalized bool
	err := tx.QueryRowContext(ctx,
		`SELECT is_finalized FROM inspections WHERE id = $1 FOR UPDATE`,
		inspectionID,
	).Scan(&isFinalized)
	if errors.Is(err, sql.ErrNoRows) {
		return sentinel.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("lock inspection: %w", err)
	}
	if isFinalized {
		return sentinel.ErrInvalidState
	}
	return nil
}

// lockParentByItem resolves an item's parent and locks it in one query.
func (s *PostgresStore) lockParentByItem(ctx context.Context, tx *sql.Tx, itemID id.InspectionItemID) (uuid.UUID, error) {
	var (
		parentID    uuid.UUID
		isFinalized bool
	)
	err := tx.QueryRowContext(ctx, `
		SELECT i.id, i.is_finalized
		FROM inspections i
		JOIN inspection_items it ON it.inspection_id = i.id
		WHERE it.id = $1
		FOR UPDATE OF i
	`, uuid.UUID(itemID)).Scan(&parentID, &isFinalized)
	if errors.Is(err, sql.ErrNoRows) {
		return uuid.Nil, sentinel.ErrNotFound
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("lock inspection by item: %w", err)
	}
	if isFinalized {
		return uuid.Nil, sentinel.ErrInvalidState
	}
	return parentID, nil
}

func nullableUUID(u uuid.UUID) any {
	if u == uuid.Nil {
		return nil
	}
	return u
}

func conditionValue(c *Condition) any {
	if c == nil {
		return nil
	}
	return string(*c)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInspection(row rowScanner) (*Inspection, error) {
	var (
		insp          Inspection
		inspID, tenID uuid.UUID
		phase, status string
		finalizedBy   uuid.NullUUID
	)
	err := row.Scan(&inspID, &tenID, &phase, &status, &insp.DamageFound, &insp.DamageNotes,
		&insp.IsFinalized, &insp.FinalizedAt, &finalizedBy, &insp.CreatedAt, &insp.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan inspection: %w", err)
	}
	insp.ID = id.InspectionID(inspID)
	insp.TenancyID = id.TenancyID(tenID)
	insp.Phase = Phase(phase)
	insp.Status = Status(status)
	if finalizedBy.Valid {
		insp.FinalizedBy = id.UserID(finalizedBy.UUID)
	}
	return &insp, nil
}

func scanItem(row rowScanner) (*Item, error) {
	var (
		item           Item
		itemID, inspID uuid.UUID
		category       string
		condition      sql.NullString
	)
	err := row.Scan(&itemID, &inspID, &category, &condition, &item.Notes,
		&item.SortOrder, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan inspection item: %w", err)
	}
	item.ID = id.InspectionItemID(itemID)
	item.InspectionID = id.InspectionID(inspID)
	item.Category = Category(category)
	if condition.Valid {
		c := Condition(condition.String)
		item.Condition = &c
	}
	return &item, nil
}

func scanPhoto(row rowScanner) (*Photo, error) {
	var (
		photo                   Photo
		photoID, itemID, inspID uuid.UUID
	)
	err := row.Scan(&photoID, &itemID, &inspID, &photo.StorageKey,
		&photo.Filename, &photo.Caption, &photo.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan inspection photo: %w", err)
	}
	photo.ID = id.PhotoID(photoID)
	photo.ItemID = id.InspectionItemID(itemID)
	photo.InspectionID = id.InspectionID(inspID)
	return &photo, nil
}
