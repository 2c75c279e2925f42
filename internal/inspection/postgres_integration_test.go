//go:build integration

package inspection_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"quarters/internal/inspection"
	"quarters/internal/tenancy"
	id "quarters/pkg/domain"
	"quarters/pkg/platform/sentinel"
	"quarters/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres  *containers.PostgresContainer
	store     *inspection.PostgresStore
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
	s.store = inspection.NewPostgres(s.postgres.DB)
	s.tenancies = tenancy.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateAll(context.Background()))
}

func (s *PostgresStoreSuite) newInspection() (*inspection.Inspection, []*inspection.Item) {
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

	insp := &inspection.Inspection{
		ID:        id.InspectionID(uuid.New()),
		TenancyID: t.ID,
		Phase:     inspection.PhaseMoveIn,
		Status:    inspection.StatusNotStarted,
		CreatedAt: now,
		UpdatedAt: now,
	}
	items := inspection.DefaultItems(insp.ID, func() id.InspectionItemID {
		return id.InspectionItemID(uuid.New())
	}, now)
	s.Require().NoError(s.store.Create(ctx, insp, items))
	return insp, items
}

func (s *PostgresStoreSuite) gradeAll(items []*inspection.Item) {
	ctx := context.Background()
	condition := inspection.ConditionGood
	for _, item := range items {
		item.Condition = &condition
		s.Require().NoError(s.store.UpdateItem(ctx, item))
	}
}

func (s *PostgresStoreSuite) TestCreateAndFind() {
	ctx := context.Background()
	insp, items := s.newInspection()

	found, err := s.store.FindByTenancy(ctx, insp.TenancyID, inspection.PhaseMoveIn)
	s.Require().NoError(err)
	s.Equal(insp.ID, found.ID)

	listed, err := s.store.ListItems(ctx, insp.ID)
	s.Require().NoError(err)
	s.Len(listed, len(items))

	s.Run("duplicate phase conflicts", func() {
		dup := *insp
		dup.ID = id.InspectionID(uuid.New())
		s.Require().ErrorIs(s.store.Create(ctx, &dup, nil), sentinel.ErrConflict)
	})
}

func (s *PostgresStoreSuite) TestUpdateItemPromotesAndRespectsLock() {
	ctx := context.Background()
	insp, items := s.newInspection()

	condition := inspection.ConditionFair
	items[0].Condition = &condition
	s.Require().NoError(s.store.UpdateItem(ctx, items[0]))

	current, err := s.store.Find(ctx, insp.ID)
	s.Require().NoError(err)
	s.Equal(inspection.StatusInProgress, current.Status)

	s.gradeAll(items)
	_, err = s.store.Finalize(ctx, insp.ID, id.UserID(uuid.New()), time.Now())
	s.Require().NoError(err)

	s.Require().ErrorIs(s.store.UpdateItem(ctx, items[0]), sentinel.ErrInvalidState)
}

func (s *PostgresStoreSuite) TestFinalizeGuards() {
	ctx := context.Background()
	insp, items := s.newInspection()
	actor := id.UserID(uuid.New())

	s.Run("refuses while items are ungraded", func() {
		_, err := s.store.Finalize(ctx, insp.ID, actor, time.Now())
		var incomplete *inspection.IncompleteError
		s.Require().ErrorAs(err, &incomplete)
		s.Equal(len(items), incomplete.Missing)
	})

	s.gradeAll(items)

	s.Run("succeeds once fully graded", func() {
		finalized, err := s.store.Finalize(ctx, insp.ID, actor, time.Now())
		s.Require().NoError(err)
		s.True(finalized.IsFinalized)
		s.Equal(inspection.StatusCompleted, finalized.Status)
		s.Equal(actor, finalized.FinalizedBy)
	})

	s.Run("second finalize reports invalid state", func() {
		_, err := s.store.Finalize(ctx, insp.ID, actor, time.Now())
		s.Require().ErrorIs(err, sentinel.ErrInvalidState)
	})

	s.Run("reopen clears the lock", func() {
		reopened, err := s.store.Reopen(ctx, insp.ID)
		s.Require().NoError(err)
		s.False(reopened.IsFinalized)
		s.Nil(reopened.FinalizedAt)
		s.Equal(inspection.StatusInProgress, reopened.Status)
	})

	s.Run("reopen on unlocked reports invalid state", func() {
		_, err := s.store.Reopen(ctx, insp.ID)
		s.Require().ErrorIs(err, sentinel.ErrInvalidState)
	})
}

// TestConcurrentFinalize verifies the guarded UPDATE admits exactly one
// winner under contention.
func (s *PostgresStoreSuite) TestConcurrentFinalize() {
	ctx := context.Background()
	insp, items := s.newInspection()
	s.gradeAll(items)

	const goroutines = 20
	var wg sync.WaitGroup
	var wins atomic.Int32
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.store.Finalize(ctx, insp.ID, id.UserID(uuid.New()), time.Now()); err == nil {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	s.Equal(int32(1), wins.Load())
}

func (s *PostgresStoreSuite) TestPhotoLockEnforcement() {
	ctx := context.Background()
	insp, items := s.newInspection()

	photo := &inspection.Photo{
		ID:           id.PhotoID(uuid.New()),
		ItemID:       items[0].ID,
		InspectionID: insp.ID,
		StorageKey:   "inspections/" + insp.ID.String() + "/a.jpg",
		Filename:     "a.jpg",
		CreatedAt:    time.Now(),
	}
	s.Require().NoError(s.store.AddPhoto(ctx, photo))

	s.gradeAll(items)
	_, err := s.store.Finalize(ctx, insp.ID, id.UserID(uuid.New()), time.Now())
	s.Require().NoError(err)

	second := *photo
	second.ID = id.PhotoID(uuid.New())
	s.Require().ErrorIs(s.store.AddPhoto(ctx, &second), sentinel.ErrInvalidState)

	_, err = s.store.DeletePhoto(ctx, photo.ID)
	s.Require().ErrorIs(err, sentinel.ErrInvalidState)

	_, err = s.store.Reopen(ctx, insp.ID)
	s.Require().NoError(err)
	removed, err := s.store.DeletePhoto(ctx, photo.ID)
	s.Require().NoError(err)
	s.Equal(photo.StorageKey, removed.StorageKey)
}
