package compliance

import (
	"context"
	"sync"

	id "quarters/pkg/domain"
	"quarters/pkg/platform/sentinel"
)

// InMemoryInvoices is a test double for the billing module's invoice table.
type InMemoryInvoices struct {
	mu       sync.RWMutex
	invoices []Invoice
}

func NewInMemoryInvoices() *InMemoryInvoices {
	return &InMemoryInvoices{}
}

func (s *InMemoryInvoices) Add(inv Invoice) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invoices = append(s.invoices, inv)
}

func (s *InMemoryInvoices) EarliestOutstanding(_ context.Context, unitID id.UnitID) (*Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var earliest *Invoice
	for i := range s.invoices {
		inv := s.invoices[i]
		if inv.UnitID != unitID || (inv.Status != InvoiceOpen && inv.Status != InvoiceOverdue) {
			continue
		}
		if earliest == nil || inv.DueDate.Before(earliest.DueDate) {
			copied := inv
			earliest = &copied
		}
	}
	if earliest == nil {
		return nil, sentinel.ErrNotFound
	}
	return earliest, nil
}

func (s *InMemoryInvoices) HasPaid(_ context.Context, unitID id.UnitID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, inv := range s.invoices {
		if inv.UnitID == unitID && inv.Status == InvoicePaid {
			return true, nil
		}
	}
	return false, nil
}

// InMemoryDocuments is a test double for the document module's per-tenant
// counts.
type InMemoryDocuments struct {
	mu     sync.RWMutex
	counts map[id.UserID]int
}

func NewInMemoryDocuments() *InMemoryDocuments {
	return &InMemoryDocuments{counts: make(map[id.UserID]int)}
}

func (s *InMemoryDocuments) SetCount(tenantID id.UserID, count int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts[tenantID] = count
}

func (s *InMemoryDocuments) CountByTenant(_ context.Context, tenantID id.UserID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.counts[tenantID], nil
}
