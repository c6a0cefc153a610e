package service

import (
	"context"

	"github.com/Adv1cer/infirmary/internal/core/domain"
)

// UnitRepository stores medicine units.
type UnitRepository interface {
	List(ctx context.Context) ([]*domain.Unit, error)
	Get(ctx context.Context, id int64) (*domain.Unit, error)
	// Create assigns the ID. Returns domain.ErrUnitConflict on a duplicate type.
	Create(ctx context.Context, unitType string) (*domain.Unit, error)
	Update(ctx context.Context, unit *domain.Unit) error
	Delete(ctx context.Context, id int64) error
}

// UnitService manages medicine unit types.
type UnitService struct {
	repo UnitRepository
}

// NewUnitService creates a UnitService.
func NewUnitService(repo UnitRepository) *UnitService {
	return &UnitService{repo: repo}
}

// List returns all units ordered by ID.
func (s *UnitService) List(ctx context.Context) ([]*domain.Unit, error) {
	return s.repo.List(ctx)
}

// CreateUnitRequest contains parameters for unit creation.
type CreateUnitRequest struct {
	UnitType string `json:"unit_type"`
}

// Create adds a unit type.
func (s *UnitService) Create(ctx context.Context, req *CreateUnitRequest) (*domain.Unit, error) {
	unitType, err := domain.NormalizeUnitType(req.UnitType)
	if err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, unitType)
}

// UpdateUnitRequest contains parameters for unit update.
type UpdateUnitRequest struct {
	UnitID   int64  `json:"unit_id"`
	UnitType string `json:"unit_type"`
}

// Update renames a unit type.
func (s *UnitService) Update(ctx context.Context, req *UpdateUnitRequest) (*domain.Unit, error) {
	if req.UnitID <= 0 {
		return nil, domain.ErrInvalidArgument.WithDetails("unit_id must be positive")
	}
	unitType, err := domain.NormalizeUnitType(req.UnitType)
	if err != nil {
		return nil, err
	}

	unit := &domain.Unit{ID: req.UnitID, UnitType: unitType}
	if err := s.repo.Update(ctx, unit); err != nil {
		return nil, err
	}
	return unit, nil
}

// Delete removes a unit.
func (s *UnitService) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return domain.ErrInvalidArgument.WithDetails("unit_id must be positive")
	}
	return s.repo.Delete(ctx, id)
}
