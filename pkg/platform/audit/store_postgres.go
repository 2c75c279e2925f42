package audit

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	id "quarters/pkg/domain"
)

// PostgresStore persists audit events to the audit_events table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	query := `
		INSERT INTO audit_events (id, occurred_at, action, actor_id, tenancy_id, record_id, reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	var tenancyID any
	if !event.TenancyID.IsNil() {
		tenancyID = uuid.UUID(event.TenancyID)
	}
	var actorID any
	if !event.ActorID.IsNil() {
		actorID = uuid.UUID(event.ActorID)
	}
	timestamp := event.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now()
	}
	_, err := s.db.ExecContext(ctx, query,
		uuid.New(),
		timestamp,
		string(event.Action),
		actorID,
		tenancyID,
		event.RecordID,
		event.Reason,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByTenancy(ctx context.Context, tenancyID id.TenancyID) ([]Event, error) {
	query := `
		SELECT occurred_at, action, actor_id, tenancy_id, record_id, reason
		FROM audit_events
		WHERE tenancy_id = $1
		ORDER BY occurred_at
	`
	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(tenancyID))
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var (
			e       Event
			action  string
			actor   uuid.NullUUID
			tenancy uuid.NullUUID
		)
		if err := rows.Scan(&e.Timestamp, &action, &actor, &tenancy, &e.RecordID, &e.Reason); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.Action = Action(action)
		if actor.Valid {
			e.ActorID = id.UserID(actor.UUID)
		}
		if tenancy.Valid {
			e.TenancyID = id.TenancyID(tenancy.UUID)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
