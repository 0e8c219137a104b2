package logic

import (
	"sort"
	"sync"

	"staygrip/internal/domain"
)

// MemoryPropertyStore is an in-memory implementation of PropertyStore
type MemoryPropertyStore struct {
	mu         sync.RWMutex
	properties map[int]domain.Property
}

// NewMemoryPropertyStore creates a store seeded with properties
func NewMemoryPropertyStore(properties ...domain.Property) *MemoryPropertyStore {
	s := &MemoryPropertyStore{
		properties: make(map[int]domain.Property, len(properties)),
	}
	for _, p := range properties {
		s.properties[p.ListID] = p
	}
	return s
}

func (s *MemoryPropertyStore) GetProperty(listID int) (domain.Property, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.properties[listID]
	return p, ok
}

// GetAllProperties returns every listing ordered by list id
func (s *MemoryPropertyStore) GetAllProperties() []domain.Property {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Property, 0, len(s.properties))
	for _, p := range s.properties {
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ListID < result[j].ListID })
	return result
}

func (s *MemoryPropertyStore) AddProperty(p domain.Property) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.properties[p.ListID] = p
}

func (s *MemoryPropertyStore) UpdateProperty(p domain.Property) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.properties[p.ListID] = p
}

func (s *MemoryPropertyStore) RemoveProperty(listID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.properties, listID)
}

// Search filters, sorts and paginates the listings
func (s *MemoryPropertyStore) Search(q Query) ([]domain.Property, domain.PageInfo) {
	var matched []domain.Property
	for _, p := range s.GetAllProperties() {
		if Matches(p, q) {
			matched = append(matched, p)
		}
	}
	SortProperties(matched, q.SortBy)
	return Paginate(matched, q.Page, q.PageSize)
}
