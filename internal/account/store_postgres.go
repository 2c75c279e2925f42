package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"quarters/internal/insurance"
	id "quarters/pkg/domain"
	"quarters/pkg/platform/sentinel"
)

// PostgresStore reads user records from the users table owned by the account
// module. This core never writes users.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) FindByID(ctx context.Context, userID id.UserID) (*User, error) {
	query := `
		SELECT id, email, COALESCE(phone, ''), COALESCE(insurance_status, ''), insurance_expires_at
		FROM users WHERE id = $1
	`
	var (
		u         User
		uid       uuid.UUID
		insStatus string
	)
	err := s.db.QueryRowContext(ctx, query, uuid.UUID(userID)).
		Scan(&uid, &u.Email, &u.Phone, &insStatus, &u.Insurance.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	u.ID = id.UserID(uid)
	u.Insurance.Status = insurance.Status(insStatus)
	return &u, nil
}
