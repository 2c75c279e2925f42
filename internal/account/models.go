// Package account exposes read access to the user records owned by the
// portal's account module. This core only consumes a narrow slice: contact
// details for notifications and profile checks, and insurance fields for the
// compliance rules.
package account

import (
	"context"

	"quarters/internal/insurance"
	id "quarters/pkg/domain"
)

// User is the slice of the account record this core reads.
type User struct {
	ID    id.UserID
	Email string
	Phone string

	Insurance insurance.Record
}

// Store supplies user reads. Implemented in-memory here and by an adapter over
// the portal's user table in postgres.
type Store interface {
	FindByID(ctx context.Context, userID id.UserID) (*User, error)
}
