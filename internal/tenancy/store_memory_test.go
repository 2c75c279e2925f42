package tenancy

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "quarters/pkg/domain"
	"quarters/pkg/platform/sentinel"
)

func newTenancy(tenantID id.UserID, active bool) *Tenancy {
	now := time.Now()
	return &Tenancy{
		ID:        id.TenancyID(uuid.New()),
		TenantID:  tenantID,
		UnitID:    id.UnitID(uuid.New()),
		Active:    active,
		StartDate: now.AddDate(0, -1, 0),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestInMemoryOneActivePerTenant(t *testing.T) {
	ctx := context.Background()
	store := NewInMemory()
	tenantID := id.UserID(uuid.New())

	require.NoError(t, store.Create(ctx, newTenancy(tenantID, true)))

	t.Run("second active tenancy conflicts", func(t *testing.T) {
		assert.ErrorIs(t, store.Create(ctx, newTenancy(tenantID, true)), sentinel.ErrConflict)
	})

	t.Run("inactive history rows coexist", func(t *testing.T) {
		assert.NoError(t, store.Create(ctx, newTenancy(tenantID, false)))
	})

	t.Run("another tenant is unaffected", func(t *testing.T) {
		assert.NoError(t, store.Create(ctx, newTenancy(id.UserID(uuid.New()), true)))
	})
}

func TestInMemoryEnd(t *testing.T) {
	ctx := context.Background()
	store := NewInMemory()
	tenantID := id.UserID(uuid.New())
	tn := newTenancy(tenantID, true)
	require.NoError(t, store.Create(ctx, tn))

	moveOut := time.Now()
	require.NoError(t, store.End(ctx, tn.ID, moveOut))

	_, err := store.FindActiveByTenant(ctx, tenantID)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)

	// The record itself survives as history.
	ended, err := store.FindByID(ctx, tn.ID)
	require.NoError(t, err)
	assert.False(t, ended.Active)
	require.NotNil(t, ended.MoveOutDate)
	assert.True(t, ended.MoveOutDate.Equal(moveOut))

	t.Run("a new active tenancy may follow", func(t *testing.T) {
		assert.NoError(t, store.Create(ctx, newTenancy(tenantID, true)))
	})

	t.Run("ending an unknown tenancy reports not found", func(t *testing.T) {
		assert.ErrorIs(t, store.End(ctx, id.TenancyID(uuid.New()), moveOut), sentinel.ErrNotFound)
	})
}

func TestDaysUntilEnd(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	t.Run("month to month has no end", func(t *testing.T) {
		_, ok := Tenancy{}.DaysUntilEnd(now)
		assert.False(t, ok)
	})

	t.Run("counts whole days remaining", func(t *testing.T) {
		end := now.AddDate(0, 0, 45)
		days, ok := Tenancy{EndDate: &end}.DaysUntilEnd(now)
		require.True(t, ok)
		assert.Equal(t, 45, days)
	})

	t.Run("past end floors at zero", func(t *testing.T) {
		end := now.AddDate(0, 0, -3)
		days, ok := Tenancy{EndDate: &end}.DaysUntilEnd(now)
		require.True(t, ok)
		assert.Equal(t, 0, days)
	})
}
