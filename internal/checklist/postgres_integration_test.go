//go:build integration

package checklist_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"quarters/internal/checklist"
	"quarters/internal/tenancy"
	id "quarters/pkg/domain"
	"quarters/pkg/platform/sentinel"
	"quarters/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres  *containers.PostgresContainer
	store     *checklist.PostgresStore
	tenancies *tenancy.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T(), "../../schema.sql")
	s.store = checklist.NewPostgres(s.postgres.DB)
	s.tenancies = tenancy.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateAll(context.Background()))
}

func (s *PostgresStoreSuite) newTenancy() id.TenancyID {
	ctx := context.Background()
	now := time.Now()

	tenantID := id.UserID(uuid.New())
	_, err := s.postgres.DB.ExecContext(ctx,
		`INSERT INTO users (id, email) VALUES ($1, $2)`,
		uuid.UUID(tenantID), "tenant@example.com")
	s.Require().NoError(err)

	t := &tenancy.Tenancy{
		ID:        id.TenancyID(uuid.New()),
		TenantID:  tenantID,
		UnitID:    id.UnitID(uuid.New()),
		Active:    true,
		StartDate: now.AddDate(0, -1, 0),
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.Require().NoError(s.tenancies.Create(ctx, t))
	return t.ID
}

func (s *PostgresStoreSuite) seed(tenancyID id.TenancyID, checklistType checklist.Type) []*checklist.Item {
	items := checklist.DefaultItems(tenancyID, checklistType, func() id.ChecklistItemID {
		return id.ChecklistItemID(uuid.New())
	}, time.Now())
	s.Require().NoError(s.store.CreateChecklist(context.Background(), tenancyID, checklistType, items))
	return items
}

func (s *PostgresStoreSuite) TestCreateAndList() {
	ctx := context.Background()
	tenancyID := s.newTenancy()
	seeded := s.seed(tenancyID, checklist.TypeMoveIn)

	listed, err := s.store.ListByType(ctx, tenancyID, checklist.TypeMoveIn)
	s.Require().NoError(err)
	s.Require().Len(listed, len(seeded))
	for i, item := range listed {
		s.Equal(i, item.SortOrder)
	}

	s.Run("duplicate type conflicts", func() {
		err := s.store.CreateChecklist(ctx, tenancyID, checklist.TypeMoveIn, nil)
		s.Require().ErrorIs(err, sentinel.ErrConflict)
	})

	s.Run("the other type is independent", func() {
		moveOut := s.seed(tenancyID, checklist.TypeMoveOut)
		all, err := s.store.ListByTenancy(ctx, tenancyID)
		s.Require().NoError(err)
		s.Len(all, len(seeded)+len(moveOut))
	})
}

func (s *PostgresStoreSuite) TestItemRoundTrip() {
	ctx := context.Background()
	tenancyID := s.newTenancy()
	items := s.seed(tenancyID, checklist.TypeMoveIn)

	now := time.Now().Truncate(time.Microsecond)
	actor := id.UserID(uuid.New())
	item := items[0]
	item.IsCompleted = true
	item.CompletedAt = &now
	item.CompletedBy = actor
	item.UpdatedAt = now
	s.Require().NoError(s.store.UpdateItem(ctx, item))

	found, err := s.store.FindItem(ctx, item.ID)
	s.Require().NoError(err)
	s.True(found.IsCompleted)
	s.Equal(actor, found.CompletedBy)
	s.Require().NotNil(found.CompletedAt)
	s.WithinDuration(now, *found.CompletedAt, time.Millisecond)

	s.Run("delete removes the row", func() {
		s.Require().NoError(s.store.DeleteItem(ctx, item.ID))
		_, err := s.store.FindItem(ctx, item.ID)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("deleting again reports not found", func() {
		s.Require().ErrorIs(s.store.DeleteItem(ctx, item.ID), sentinel.ErrNotFound)
	})
}

// TestConcurrentMarkCompleted verifies that racing completions admit exactly
// one writer and that the losers observe the winner's attribution.
func (s *PostgresStoreSuite) TestConcurrentMarkCompleted() {
	ctx := context.Background()
	tenancyID := s.newTenancy()
	items := s.seed(tenancyID, checklist.TypeMoveIn)
	itemID := items[0].ID

	const goroutines = 20
	var wg sync.WaitGroup
	var wins atomic.Int32
	actors := make([]id.UserID, goroutines)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			actors[i] = id.UserID(uuid.New())
			item, completed, err := s.store.MarkCompleted(ctx, itemID, actors[i], time.Now())
			s.NoError(err)
			if completed {
				wins.Add(1)
				s.Equal(actors[i], item.CompletedBy)
			}
		}(i)
	}
	wg.Wait()

	s.Equal(int32(1), wins.Load())

	found, err := s.store.FindItem(ctx, itemID)
	s.Require().NoError(err)
	s.True(found.IsCompleted)
	s.Contains(actors, found.CompletedBy)

	s.Run("a later attempt leaves the row untouched", func() {
		item, completed, err := s.store.MarkCompleted(ctx, itemID, id.UserID(uuid.New()), time.Now())
		s.Require().NoError(err)
		s.False(completed)
		s.Equal(found.CompletedBy, item.CompletedBy)
	})

	s.Run("a missing item reports not found", func() {
		_, _, err := s.store.MarkCompleted(ctx, id.ChecklistItemID(uuid.New()), id.UserID(uuid.New()), time.Now())
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

// TestConcurrentCreate verifies that racing initializations for the same
// tenancy and type admit exactly one winner.
func (s *PostgresStoreSuite) TestConcurrentCreate() {
	ctx := context.Background()
	tenancyID := s.newTenancy()

	newItems := func() []*checklist.Item {
		return checklist.DefaultItems(tenancyID, checklist.TypeMoveIn, func() id.ChecklistItemID {
			return id.ChecklistItemID(uuid.New())
		}, time.Now())
	}

	const goroutines = 20
	var wg sync.WaitGroup
	var wins, conflicts atomic.Int32
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.store.CreateChecklist(ctx, tenancyID, checklist.TypeMoveIn, newItems())
			switch {
			case err == nil:
				wins.Add(1)
			case errors.Is(err, sentinel.ErrConflict):
				conflicts.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), wins.Load())
	s.Equal(int32(goroutines-1), conflicts.Load())

	listed, err := s.store.ListByType(ctx, tenancyID, checklist.TypeMoveIn)
	s.Require().NoError(err)
	s.Len(listed, len(newItems()))
}
