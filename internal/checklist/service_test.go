package checklist

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"quarters/internal/insurance"
	"quarters/internal/tenancy"
	id "quarters/pkg/domain"
	dErrors "quarters/pkg/domain-errors"
	"quarters/pkg/platform/audit"
)

type recordingSink struct {
	mu     sync.Mutex
	events []audit.Event
}

func (r *recordingSink) Emit(event audit.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingSink) count(action audit.Action) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Action == action {
			n++
		}
	}
	return n
}

type fakeInsurance struct {
	record insurance.Record
}

func (f *fakeInsurance) ByTenant(context.Context, id.UserID) (insurance.Record, error) {
	return f.record, nil
}

type ChecklistServiceSuite struct {
	suite.Suite
	ctx       context.Context
	service   *Service
	store     *InMemory
	tenancies *tenancy.InMemory
	insurance *fakeInsurance
	sink      *recordingSink

	tenancyID id.TenancyID
	tenantID  id.UserID
	adminID   id.UserID
}

func (s *ChecklistServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = NewInMemory()
	s.tenancies = tenancy.NewInMemory()
	s.insurance = &fakeInsurance{record: insurance.Record{Status: insurance.StatusApproved}}
	s.sink = &recordingSink{}
	s.service = NewService(s.store, s.tenancies, s.insurance, s.sink)

	s.tenancyID = id.TenancyID(uuid.New())
	s.tenantID = id.UserID(uuid.New())
	s.adminID = id.UserID(uuid.New())
	s.Require().NoError(s.tenancies.Create(s.ctx, &tenancy.Tenancy{
		ID:        s.tenancyID,
		TenantID:  s.tenantID,
		UnitID:    id.UnitID(uuid.New()),
		Active:    true,
		StartDate: time.Now().AddDate(0, -1, 0),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}))
}

func TestChecklistServiceSuite(t *testing.T) {
	suite.Run(t, new(ChecklistServiceSuite))
}

func (s *ChecklistServiceSuite) itemByType(items []*Item, itemType ItemType) *Item {
	for _, item := range items {
		if item.ItemType == itemType {
			return item
		}
	}
	s.FailNow("item type not seeded", string(itemType))
	return nil
}

func (s *ChecklistServiceSuite) TestInitialize() {
	s.Run("seeds the default move-in items", func() {
		items, err := s.service.Initialize(s.ctx, s.tenancyID, TypeMoveIn)
		s.Require().NoError(err)
		s.Len(items, len(defaultItems[TypeMoveIn]))
		s.False(s.itemByType(items, ItemWelcomePacketSent).IsRequired)
		s.True(s.itemByType(items, ItemLeaseSigned).IsRequired)
	})

	s.Run("rejects a duplicate for the same type", func() {
		_, err := s.service.Initialize(s.ctx, s.tenancyID, TypeMoveIn)
		s.True(dErrors.Is(err, dErrors.CodeAlreadyExists))
	})

	s.Run("allows the other type", func() {
		_, err := s.service.Initialize(s.ctx, s.tenancyID, TypeMoveOut)
		s.NoError(err)
	})

	s.Run("rejects an unknown tenancy", func() {
		_, err := s.service.Initialize(s.ctx, id.TenancyID(uuid.New()), TypeMoveIn)
		s.True(dErrors.Is(err, dErrors.CodeNotFound))
	})
}

func (s *ChecklistServiceSuite) TestSelfCompletionGate() {
	items, err := s.service.Initialize(s.ctx, s.tenancyID, TypeMoveIn)
	s.Require().NoError(err)
	leaseSigned := s.itemByType(items, ItemLeaseSigned)

	s.Run("tenant cannot complete an admin-only item", func() {
		_, err := s.service.CompleteItem(s.ctx, leaseSigned.ID, s.tenantID, id.RoleTenant)
		s.True(dErrors.Is(err, dErrors.CodeNotAllowed))
	})

	s.Run("admin completes the identical item", func() {
		item, err := s.service.CompleteItem(s.ctx, leaseSigned.ID, s.adminID, id.RoleAdmin)
		s.Require().NoError(err)
		s.True(item.IsCompleted)
		s.Equal(s.adminID, item.CompletedBy)
	})

	s.Run("tenant completes an allow-listed item", func() {
		ack := s.itemByType(items, ItemInsuranceUploaded)
		item, err := s.service.CompleteItem(s.ctx, ack.ID, s.tenantID, id.RoleTenant)
		s.Require().NoError(err)
		s.True(item.IsCompleted)
		s.Equal(s.tenantID, item.CompletedBy)
	})
}

func (s *ChecklistServiceSuite) TestInsurancePrecondition() {
	items, err := s.service.Initialize(s.ctx, s.tenancyID, TypeMoveIn)
	s.Require().NoError(err)
	ack := s.itemByType(items, ItemInsuranceUploaded)

	for _, status := range []insurance.Status{
		insurance.StatusMissing, insurance.StatusRejected, insurance.StatusExpired,
	} {
		s.Run(string(status), func() {
			s.insurance.record = insurance.Record{Status: status}
			_, err := s.service.CompleteItem(s.ctx, ack.ID, s.tenantID, id.RoleTenant)
			s.True(dErrors.Is(err, dErrors.CodeInsuranceNotValid))
		})
	}

	s.Run("pending insurance passes the gate", func() {
		s.insurance.record = insurance.Record{Status: insurance.StatusPending}
		_, err := s.service.CompleteItem(s.ctx, ack.ID, s.tenantID, id.RoleTenant)
		s.NoError(err)
	})

	s.Run("admin bypasses the precondition entirely", func() {
		s.insurance.record = insurance.Record{Status: insurance.StatusMissing}
		deposit := s.itemByType(items, ItemDepositReceived)
		_, err := s.service.CompleteItem(s.ctx, deposit.ID, s.adminID, id.RoleAdmin)
		s.NoError(err)
	})

	s.Run("stored approval past expiry fails the gate", func() {
		expired := time.Now().Add(-time.Hour)
		s.insurance.record = insurance.Record{Status: insurance.StatusApproved, ExpiresAt: &expired}
		_, err := s.service.CompleteItem(s.ctx, ack.ID, s.tenantID, id.RoleTenant)
		s.True(dErrors.Is(err, dErrors.CodeInsuranceNotValid))
	})
}

func (s *ChecklistServiceSuite) TestCompletionIsIdempotent() {
	items, err := s.service.Initialize(s.ctx, s.tenancyID, TypeMoveIn)
	s.Require().NoError(err)
	keys := s.itemByType(items, ItemKeysIssued)

	first, err := s.service.CompleteItem(s.ctx, keys.ID, s.adminID, id.RoleAdmin)
	s.Require().NoError(err)

	otherAdmin := id.UserID(uuid.New())
	second, err := s.service.CompleteItem(s.ctx, keys.ID, otherAdmin, id.RoleAdmin)
	s.Require().NoError(err)

	// Retry neither errors nor overwrites who completed it first.
	s.Equal(first.CompletedBy, second.CompletedBy)
	s.Equal(first.CompletedAt, second.CompletedAt)

	_, progress, err := s.service.List(s.ctx, s.tenancyID, s.adminID, id.RoleAdmin)
	s.Require().NoError(err)
	s.Equal(1, progress.Completed)
}

func (s *ChecklistServiceSuite) TestConcurrentCompletionSingleAttribution() {
	items, err := s.service.Initialize(s.ctx, s.tenancyID, TypeMoveIn)
	s.Require().NoError(err)
	keys := s.itemByType(items, ItemKeysIssued)

	const callers = 8
	var wg sync.WaitGroup
	results := make([]*Item, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			item, err := s.service.CompleteItem(s.ctx, keys.ID, id.UserID(uuid.New()), id.RoleAdmin)
			s.NoError(err)
			results[i] = item
		}(i)
	}
	wg.Wait()

	// Exactly one caller wrote attribution; every other caller observed it.
	winner := results[0].CompletedBy
	for _, item := range results {
		s.True(item.IsCompleted)
		s.Equal(winner, item.CompletedBy)
	}
	s.Equal(1, s.sink.count(audit.ActionItemCompleted))
}

func (s *ChecklistServiceSuite) TestTenantScopedToOwnTenancy() {
	items, err := s.service.Initialize(s.ctx, s.tenancyID, TypeMoveIn)
	s.Require().NoError(err)
	ack := s.itemByType(items, ItemInsuranceUploaded)

	intruder := id.UserID(uuid.New())
	s.Require().NoError(s.tenancies.Create(s.ctx, &tenancy.Tenancy{
		ID: id.TenancyID(uuid.New()), TenantID: intruder, UnitID: id.UnitID(uuid.New()),
		Active: true, StartDate: time.Now(), CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}))

	s.Run("another tenant cannot complete the item", func() {
		_, err := s.service.CompleteItem(s.ctx, ack.ID, intruder, id.RoleTenant)
		s.True(dErrors.Is(err, dErrors.CodeNotFound))
		s.False(s.store.items[ack.ID].IsCompleted)
	})

	s.Run("another tenant cannot list the checklist", func() {
		_, _, err := s.service.List(s.ctx, s.tenancyID, intruder, id.RoleTenant)
		s.True(dErrors.Is(err, dErrors.CodeNotFound))
	})

	s.Run("the occupying tenant still can", func() {
		listed, _, err := s.service.List(s.ctx, s.tenancyID, s.tenantID, id.RoleTenant)
		s.Require().NoError(err)
		s.Len(listed, len(items))

		_, err = s.service.CompleteItem(s.ctx, ack.ID, s.tenantID, id.RoleTenant)
		s.NoError(err)
	})
}

func (s *ChecklistServiceSuite) TestUncomplete() {
	items, err := s.service.Initialize(s.ctx, s.tenancyID, TypeMoveIn)
	s.Require().NoError(err)
	keys := s.itemByType(items, ItemKeysIssued)

	_, err = s.service.CompleteItem(s.ctx, keys.ID, s.adminID, id.RoleAdmin)
	s.Require().NoError(err)

	item, err := s.service.UncompleteItem(s.ctx, keys.ID, s.adminID)
	s.Require().NoError(err)
	s.False(item.IsCompleted)
	s.Nil(item.CompletedAt)
	s.True(item.CompletedBy.IsNil())
}

func (s *ChecklistServiceSuite) TestCustomItems() {
	_, err := s.service.Initialize(s.ctx, s.tenancyID, TypeMoveIn)
	s.Require().NoError(err)

	s.Run("appends after the seeded items", func() {
		item, err := s.service.AddCustomItem(s.ctx, s.tenancyID, TypeMoveIn, "Parking permit issued", "", true)
		s.Require().NoError(err)
		s.Equal(ItemCustom, item.ItemType)
		s.Equal(len(defaultItems[TypeMoveIn]), item.SortOrder)
	})

	s.Run("rejects an empty title", func() {
		_, err := s.service.AddCustomItem(s.ctx, s.tenancyID, TypeMoveIn, "", "", false)
		s.True(dErrors.Is(err, dErrors.CodeInvalidInput))
	})

	s.Run("rejects an uninitialized checklist", func() {
		_, err := s.service.AddCustomItem(s.ctx, s.tenancyID, TypeMoveOut, "Anything", "", false)
		s.True(dErrors.Is(err, dErrors.CodeNotFound))
	})

	s.Run("removes an item", func() {
		item, err := s.service.AddCustomItem(s.ctx, s.tenancyID, TypeMoveIn, "Temporary", "", false)
		s.Require().NoError(err)
		s.Require().NoError(s.service.RemoveItem(s.ctx, item.ID))
		_, err = s.store.FindItem(s.ctx, item.ID)
		s.Error(err)
	})

	s.Run("removing twice reports not found", func() {
		err := s.service.RemoveItem(s.ctx, id.ChecklistItemID(uuid.New()))
		s.True(dErrors.Is(err, dErrors.CodeNotFound))
	})
}
