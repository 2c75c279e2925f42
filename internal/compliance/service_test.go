package compliance

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"quarters/internal/account"
	"quarters/internal/checklist"
	"quarters/internal/insurance"
	"quarters/internal/tenancy"
	id "quarters/pkg/domain"
	dErrors "quarters/pkg/domain-errors"
)

type ComplianceServiceSuite struct {
	suite.Suite
	ctx       context.Context
	service   *Service
	tenancies *tenancy.InMemory
	items     *checklist.InMemory
	accounts  *account.InMemory
	invoices  *InMemoryInvoices
	documents *InMemoryDocuments

	tenantID  id.UserID
	tenancyID id.TenancyID
	unitID    id.UnitID
}

func (s *ComplianceServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.tenancies = tenancy.NewInMemory()
	s.items = checklist.NewInMemory()
	s.accounts = account.NewInMemory()
	s.invoices = NewInMemoryInvoices()
	s.documents = NewInMemoryDocuments()
	s.service = NewService(s.tenancies, s.items,
		account.NewInsuranceAdapter(s.accounts), s.accounts, s.invoices, s.documents)

	s.tenantID = id.UserID(uuid.New())
	s.tenancyID = id.TenancyID(uuid.New())
	s.unitID = id.UnitID(uuid.New())
	s.Require().NoError(s.tenancies.Create(s.ctx, &tenancy.Tenancy{
		ID:        s.tenancyID,
		TenantID:  s.tenantID,
		UnitID:    s.unitID,
		Active:    true,
		StartDate: time.Now().AddDate(-1, 0, 0),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}))
}

func TestComplianceServiceSuite(t *testing.T) {
	suite.Run(t, new(ComplianceServiceSuite))
}

func (s *ComplianceServiceSuite) saveTenant(phone string, ins insurance.Record) {
	s.Require().NoError(s.accounts.Save(s.ctx, account.User{
		ID:        s.tenantID,
		Email:     "tenant@example.com",
		Phone:     phone,
		Insurance: ins,
	}))
}

func (s *ComplianceServiceSuite) approvedInsurance() insurance.Record {
	expires := time.Now().AddDate(1, 0, 0)
	return insurance.Record{Status: insurance.StatusApproved, ExpiresAt: &expires}
}

func (s *ComplianceServiceSuite) TestEmptyTenancyIsGoodStanding() {
	s.saveTenant("555-0100", s.approvedInsurance())

	snapshot, err := s.service.Snapshot(s.ctx, s.tenantID)
	s.Require().NoError(err)
	s.Equal(StatusGoodStanding, snapshot.Status)
	s.Empty(snapshot.Issues)
	s.NotNil(snapshot.Issues)
	s.Equal(RentNoInvoice, snapshot.Summary.RentStatus)
}

func (s *ComplianceServiceSuite) TestNoActiveTenancy() {
	_, err := s.service.Snapshot(s.ctx, id.UserID(uuid.New()))
	s.True(dErrors.Is(err, dErrors.CodeNotFound))
}

func (s *ComplianceServiceSuite) TestOverdueRentDominates() {
	s.saveTenant("555-0100", s.approvedInsurance())
	s.seedCompleteChecklist()
	s.documents.SetCount(s.tenantID, 1)
	s.invoices.Add(Invoice{UnitID: s.unitID, Status: InvoiceOverdue, DueDate: time.Now().AddDate(0, 0, -5)})

	snapshot, err := s.service.Snapshot(s.ctx, s.tenantID)
	s.Require().NoError(err)
	s.Equal(StatusNotInCompliance, snapshot.Status)
	s.Equal(RentOverdue, snapshot.Summary.RentStatus)
	s.Require().Len(snapshot.Issues, 1)
	s.Equal(IssueRentOverdue, snapshot.Issues[0].Type)
	s.Equal(100, snapshot.ProfileCompletion.Percentage)
}

func (s *ComplianceServiceSuite) TestInvoiceDueSoonWarns() {
	s.saveTenant("555-0100", s.approvedInsurance())
	due := time.Now().AddDate(0, 0, 5)
	s.invoices.Add(Invoice{UnitID: s.unitID, Status: InvoiceOpen, DueDate: due})

	snapshot, err := s.service.Snapshot(s.ctx, s.tenantID)
	s.Require().NoError(err)
	s.Equal(StatusActionRequired, snapshot.Status)
	s.Equal(RentDue, snapshot.Summary.RentStatus)
	s.Require().Len(snapshot.Issues, 1)
	s.Equal(IssueRentDue, snapshot.Issues[0].Type)
	s.Require().NotNil(snapshot.Issues[0].DueDate)
	s.True(snapshot.Issues[0].DueDate.Equal(due))
}

func (s *ComplianceServiceSuite) TestEarliestOutstandingInvoiceWins() {
	s.saveTenant("555-0100", s.approvedInsurance())
	s.invoices.Add(Invoice{UnitID: s.unitID, Status: InvoiceOpen, DueDate: time.Now().AddDate(0, 1, 0)})
	s.invoices.Add(Invoice{UnitID: s.unitID, Status: InvoiceOpen, DueDate: time.Now().AddDate(0, 0, -1)})

	snapshot, err := s.service.Snapshot(s.ctx, s.tenantID)
	s.Require().NoError(err)
	s.Equal(RentOverdue, snapshot.Summary.RentStatus)
}

func (s *ComplianceServiceSuite) TestExpiredInsuranceIsCritical() {
	expired := time.Now().AddDate(0, -1, 0)
	s.saveTenant("555-0100", insurance.Record{Status: insurance.StatusApproved, ExpiresAt: &expired})

	snapshot, err := s.service.Snapshot(s.ctx, s.tenantID)
	s.Require().NoError(err)
	s.Equal(StatusNotInCompliance, snapshot.Status)
	s.Equal(insurance.StatusExpired, snapshot.Summary.InsuranceStatus)
}

func (s *ComplianceServiceSuite) TestMissingInsuranceWhenNoAccount() {
	snapshot, err := s.service.Snapshot(s.ctx, s.tenantID)
	s.Require().NoError(err)
	s.Equal(insurance.StatusMissing, snapshot.Summary.InsuranceStatus)
	s.Equal(StatusActionRequired, snapshot.Status)
}

func (s *ComplianceServiceSuite) TestIncompleteChecklistWarns() {
	s.saveTenant("555-0100", s.approvedInsurance())
	s.seedChecklist(3, 1)

	snapshot, err := s.service.Snapshot(s.ctx, s.tenantID)
	s.Require().NoError(err)
	s.Equal(StatusActionRequired, snapshot.Status)
	s.Equal(1, snapshot.Summary.RequiredCompleted)
	s.Equal(3, snapshot.Summary.RequiredTotal)
	s.Require().Len(snapshot.Issues, 1)
	s.Equal(IssueChecklistIncomplete, snapshot.Issues[0].Type)
}

func (s *ComplianceServiceSuite) TestLegacyMoveInExemption() {
	legacyTenant := id.UserID(uuid.New())
	legacyTenancy := id.TenancyID(uuid.New())
	s.Require().NoError(s.tenancies.Create(s.ctx, &tenancy.Tenancy{
		ID:           legacyTenancy,
		TenantID:     legacyTenant,
		UnitID:       id.UnitID(uuid.New()),
		Active:       true,
		LegacyMoveIn: true,
		StartDate:    time.Now().AddDate(-5, 0, 0),
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}))
	expires := time.Now().AddDate(1, 0, 0)
	s.Require().NoError(s.accounts.Save(s.ctx, account.User{
		ID: legacyTenant, Email: "old.timer@example.com", Phone: "555-0101",
		Insurance: insurance.Record{Status: insurance.StatusApproved, ExpiresAt: &expires},
	}))

	// An untouched move-in checklist would normally warn.
	items := checklist.DefaultItems(legacyTenancy, checklist.TypeMoveIn, func() id.ChecklistItemID {
		return id.ChecklistItemID(uuid.New())
	}, time.Now())
	s.Require().NoError(s.items.CreateChecklist(s.ctx, legacyTenancy, checklist.TypeMoveIn, items))

	snapshot, err := s.service.Snapshot(s.ctx, legacyTenant)
	s.Require().NoError(err)
	s.Equal(StatusGoodStanding, snapshot.Status)
	s.Empty(snapshot.Issues)
	s.Equal(0, snapshot.Summary.RequiredTotal)
}

func (s *ComplianceServiceSuite) TestLeaseExpiryWarning() {
	fixedTermTenant := id.UserID(uuid.New())
	end := time.Now().AddDate(0, 0, 60)
	expires := time.Now().AddDate(1, 0, 0)
	s.Require().NoError(s.tenancies.Create(s.ctx, &tenancy.Tenancy{
		ID:        id.TenancyID(uuid.New()),
		TenantID:  fixedTermTenant,
		UnitID:    id.UnitID(uuid.New()),
		Active:    true,
		StartDate: time.Now().AddDate(0, -10, 0),
		EndDate:   &end,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}))
	s.Require().NoError(s.accounts.Save(s.ctx, account.User{
		ID: fixedTermTenant, Email: "fixed.term@example.com", Phone: "555-0102",
		Insurance: insurance.Record{Status: insurance.StatusApproved, ExpiresAt: &expires},
	}))

	snapshot, err := s.service.Snapshot(s.ctx, fixedTermTenant)
	s.Require().NoError(err)
	s.True(snapshot.LeaseExpiry.ShowWarning)
	s.Require().NotNil(snapshot.LeaseExpiry.DaysRemaining)
	s.InDelta(60, *snapshot.LeaseExpiry.DaysRemaining, 1)
}

func (s *ComplianceServiceSuite) seedCompleteChecklist() {
	s.seedChecklist(2, 2)
}

// seedChecklist creates requiredTotal required items with requiredComplete of
// them done.
func (s *ComplianceServiceSuite) seedChecklist(requiredTotal, requiredComplete int) {
	now := time.Now()
	items := make([]*checklist.Item, 0, requiredTotal)
	for i := 0; i < requiredTotal; i++ {
		item := &checklist.Item{
			ID:            id.ChecklistItemID(uuid.New()),
			TenancyID:     s.tenancyID,
			ChecklistType: checklist.TypeMoveIn,
			ItemType:      checklist.ItemCustom,
			Title:         "item",
			IsRequired:    true,
			SortOrder:     i,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if i < requiredComplete {
			item.IsCompleted = true
			item.CompletedAt = &now
		}
		items = append(items, item)
	}
	s.Require().NoError(s.items.CreateChecklist(s.ctx, s.tenancyID, checklist.TypeMoveIn, items))
}
