package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"payshield/internal/invoice/models"
	"payshield/pkg/platform/sentinel"
)

// MemoryStore keeps invoices in memory. Used in tests and when no database
// is configured.
type MemoryStore struct {
	mu       sync.RWMutex
	invoices map[uuid.UUID]*models.Invoice
}

func NewMemory() *MemoryStore {
	return &MemoryStore{invoices: make(map[uuid.UUID]*models.Invoice)}
}

func copyInvoice(inv *models.Invoice) *models.Invoice {
	cp := *inv
	if inv.LineItems != nil {
		cp.LineItems = append([]models.LineItem(nil), inv.LineItems...)
	}
	if inv.FraudReasons != nil {
		cp.FraudReasons = append([]string(nil), inv.FraudReasons...)
	}
	return &cp
}

func (s *MemoryStore) Create(_ context.Context, invoice *models.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.invoices[invoice.ID]; ok {
		return sentinel.ErrConflict
	}
	s.invoices[invoice.ID] = copyInvoice(invoice)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id uuid.UUID) (*models.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inv, ok := s.invoices[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return copyInvoice(inv), nil
}

func (s *MemoryStore) GetByNumber(_ context.Context, companyID, vendor, invoiceNumber string) (*models.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, inv := range s.invoices {
		if inv.CompanyID == companyID &&
			strings.EqualFold(inv.Vendor, vendor) &&
			strings.EqualFold(inv.InvoiceNumber, invoiceNumber) {
			return copyInvoice(inv), nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *MemoryStore) Update(_ context.Context, invoice *models.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.invoices[invoice.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.invoices[invoice.ID] = copyInvoice(invoice)
	return nil
}

func (s *MemoryStore) List(_ context.Context, filter Filter) ([]*models.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := make([]*models.Invoice, 0, len(s.invoices))
	for _, inv := range s.invoices {
		if filter.CompanyID != "" && inv.CompanyID != filter.CompanyID {
			continue
		}
		if filter.Status != "" && inv.Status != filter.Status {
			continue
		}
		if filter.Vendor != "" && !strings.EqualFold(inv.Vendor, filter.Vendor) {
			continue
		}
		all = append(all, copyInvoice(inv))
	}
	// Newest first; tie-break on ID for deterministic listings.
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID.String() < all[j].ID.String()
	})

	if filter.Offset >= len(all) {
		return []*models.Invoice{}, nil
	}
	all = all[filter.Offset:]
	if filter.Limit > 0 && len(all) > filter.Limit {
		all = all[:filter.Limit]
	}
	return all, nil
}
