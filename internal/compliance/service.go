package compliance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"quarters/internal/account"
	"quarters/internal/checklist"
	"quarters/internal/insurance"
	"quarters/internal/tenancy"
	id "quarters/pkg/domain"
	dErrors "quarters/pkg/domain-errors"
	"quarters/pkg/platform/sentinel"
)

// Service computes compliance snapshots. It holds only read ports; every call
// derives from current store state, so repeated calls are safe and cheap to
// reason about.
type Service struct {
	tenancies tenancy.Store
	items     checklist.Store
	insurance insurance.Reader
	accounts  account.Store
	invoices  InvoiceReader
	documents DocumentCounter
}

func NewService(tenancies tenancy.Store, items checklist.Store, ins insurance.Reader, accounts account.Store, invoices InvoiceReader, documents DocumentCounter) *Service {
	return &Service{
		tenancies: tenancies,
		items:     items,
		insurance: ins,
		accounts:  accounts,
		invoices:  invoices,
		documents: documents,
	}
}

// Snapshot derives the tenant's current standing. The sub-reads are
// independent, so they run concurrently; the rules are then applied in a
// fixed order over the collected facts.
//
// Errors: CodeNotFound when the tenant has no active tenancy.
func (s *Service) Snapshot(ctx context.Context, tenantID id.UserID) (*Snapshot, error) {
	t, err := s.tenancies.FindActiveByTenant(ctx, tenantID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "no active tenancy for tenant")
		}
		return nil, fmt.Errorf("find active tenancy: %w", err)
	}

	var (
		outstanding   *Invoice
		hasPaid       bool
		record        insurance.Record
		allItems      []*checklist.Item
		documentCount int
		phone         string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		inv, err := s.invoices.EarliestOutstanding(gctx, t.UnitID)
		if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
			return fmt.Errorf("read outstanding invoice: %w", err)
		}
		outstanding = inv
		if hasPaid, err = s.invoices.HasPaid(gctx, t.UnitID); err != nil {
			return fmt.Errorf("read paid invoices: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if record, err = s.insurance.ByTenant(gctx, tenantID); err != nil {
			return fmt.Errorf("read insurance record: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if allItems, err = s.items.ListByTenancy(gctx, t.ID); err != nil {
			return fmt.Errorf("list checklist items: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if documentCount, err = s.documents.CountByTenant(gctx, tenantID); err != nil {
			return fmt.Errorf("count tenant documents: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		user, err := s.accounts.FindByID(gctx, tenantID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return nil
			}
			return fmt.Errorf("find tenant account: %w", err)
		}
		phone = user.Phone
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	now := time.Now()
	progress := checklist.Tally(complianceItems(t, allItems))

	var issues []Issue
	rentStatus, issue := evaluateRent(outstanding, hasPaid, now)
	if issue != nil {
		issues = append(issues, *issue)
	}
	effectiveInsurance, issue := evaluateInsurance(record, now)
	if issue != nil {
		issues = append(issues, *issue)
	}
	if issue := evaluateChecklist(progress); issue != nil {
		issues = append(issues, *issue)
	}
	if issues == nil {
		issues = []Issue{}
	}

	return &Snapshot{
		Status: overallStatus(rentStatus, effectiveInsurance, issues),
		Issues: issues,
		Summary: Summary{
			RentStatus:        rentStatus,
			InsuranceStatus:   effectiveInsurance,
			RequiredCompleted: progress.RequiredCompleted,
			RequiredTotal:     progress.RequiredTotal,
		},
		LeaseExpiry:       evaluateLeaseExpiry(t, now),
		ProfileCompletion: evaluateProfile(phone, effectiveInsurance, documentCount, progress),
	}, nil
}

// complianceItems filters the items that count toward compliance. A legacy
// move-in tenancy predates the portal, so its move-in checklist never counts
// against it.
func complianceItems(t *tenancy.Tenancy, items []*checklist.Item) []*checklist.Item {
	if !t.LegacyMoveIn {
		return items
	}
	out := make([]*checklist.Item, 0, len(items))
	for _, item := range items {
		if item.ChecklistType != checklist.TypeMoveIn {
			out = append(out, item)
		}
	}
	return out
}
