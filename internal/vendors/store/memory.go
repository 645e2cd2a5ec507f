package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"payshield/internal/vendors/models"
	"payshield/pkg/platform/sentinel"
)

// MemoryStore keeps vendors in memory. Used in tests and when no database
// is configured.
type MemoryStore struct {
	mu      sync.RWMutex
	vendors map[uuid.UUID]*models.Vendor
}

func NewMemory() *MemoryStore {
	return &MemoryStore{vendors: make(map[uuid.UUID]*models.Vendor)}
}

func (s *MemoryStore) Create(_ context.Context, vendor *models.Vendor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range s.vendors {
		if strings.EqualFold(v.Name, vendor.Name) {
			return sentinel.ErrConflict
		}
	}
	cp := *vendor
	s.vendors[vendor.ID] = &cp
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id uuid.UUID) (*models.Vendor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.vendors[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *v
	return &cp, nil
}

func (s *MemoryStore) GetByName(_ context.Context, name string) (*models.Vendor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, v := range s.vendors {
		if strings.EqualFold(v.Name, name) {
			cp := *v
			return &cp, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *MemoryStore) Update(_ context.Context, vendor *models.Vendor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.vendors[vendor.ID]; !ok {
		return sentinel.ErrNotFound
	}
	cp := *vendor
	s.vendors[vendor.ID] = &cp
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.vendors[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.vendors, id)
	return nil
}

func (s *MemoryStore) List(_ context.Context, trustedOnly bool, limit, offset int) ([]*models.Vendor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := make([]*models.Vendor, 0, len(s.vendors))
	for _, v := range s.vendors {
		if trustedOnly && !v.IsTrusted {
			continue
		}
		cp := *v
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })

	if offset >= len(all) {
		return []*models.Vendor{}, nil
	}
	all = all[offset:]
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}
