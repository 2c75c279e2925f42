package account

import (
	"context"
	"errors"

	"quarters/internal/insurance"
	id "quarters/pkg/domain"
	"quarters/pkg/platform/sentinel"
)

// InsuranceAdapter exposes the user store as an insurance.Reader. An absent
// user simply has no policy on file.
type InsuranceAdapter struct {
	users Store
}

func NewInsuranceAdapter(users Store) *InsuranceAdapter {
	return &InsuranceAdapter{users: users}
}

func (a *InsuranceAdapter) ByTenant(ctx context.Context, tenantID id.UserID) (insurance.Record, error) {
	user, err := a.users.FindByID(ctx, tenantID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return insurance.Record{Status: insurance.StatusMissing}, nil
	}
	if err != nil {
		return insurance.Record{}, err
	}
	return user.Insurance, nil
}
