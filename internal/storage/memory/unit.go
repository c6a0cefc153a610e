package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/Adv1cer/infirmary/internal/core/domain"
)

// UnitStore provides in-memory storage for medicine units.
type UnitStore struct {
	mu     sync.RWMutex
	units  map[int64]*domain.Unit
	nextID int64
}

// NewUnitStore creates a unit store seeded with the given unit types.
func NewUnitStore(seed ...string) *UnitStore {
	s := &UnitStore{
		units:  make(map[int64]*domain.Unit),
		nextID: 1,
	}
	for _, unitType := range seed {
		_, _ = s.Create(context.Background(), unitType)
	}
	return s
}

// List returns all units ordered by ID.
func (s *UnitStore) List(_ context.Context) ([]*domain.Unit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Unit, 0, len(s.units))
	for _, u := range s.units {
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Get retrieves a unit by ID.
func (s *UnitStore) Get(_ context.Context, id int64) (*domain.Unit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.units[id]
	if !ok {
		return nil, domain.ErrUnitNotFound
	}
	cp := *u
	return &cp, nil
}

// Create adds a unit and assigns the next ID.
func (s *UnitStore) Create(_ context.Context, unitType string) (*domain.Unit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hasTypeLocked(unitType, 0) {
		return nil, domain.ErrUnitConflict
	}

	u := &domain.Unit{ID: s.nextID, UnitType: unitType}
	s.units[u.ID] = u
	s.nextID++

	cp := *u
	return &cp, nil
}

// Update replaces the type of an existing unit.
func (s *UnitStore) Update(_ context.Context, unit *domain.Unit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.units[unit.ID]; !ok {
		return domain.ErrUnitNotFound
	}
	if s.hasTypeLocked(unit.UnitType, unit.ID) {
		return domain.ErrUnitConflict
	}

	cp := *unit
	s.units[unit.ID] = &cp
	return nil
}

// Delete removes a unit by ID.
func (s *UnitStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.units[id]; !ok {
		return domain.ErrUnitNotFound
	}
	delete(s.units, id)
	return nil
}

// hasTypeLocked reports a case-insensitive name clash with a unit other than exceptID.
func (s *UnitStore) hasTypeLocked(unitType string, exceptID int64) bool {
	for id, u := range s.units {
		if id != exceptID && strings.EqualFold(u.UnitType, unitType) {
			return true
		}
	}
	return false
}
