package service

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/Adv1cer/infirmary/internal/core/domain"
)

// mockUnitRepo is a map-backed UnitRepository for testing.
type mockUnitRepo struct {
	units  map[int64]*domain.Unit
	nextID int64
}

func newMockUnitRepo() *mockUnitRepo {
	return &mockUnitRepo{units: make(map[int64]*domain.Unit), nextID: 1}
}

func (m *mockUnitRepo) List(context.Context) ([]*domain.Unit, error) {
	out := make([]*domain.Unit, 0, len(m.units))
	for _, u := range m.units {
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockUnitRepo) Get(_ context.Context, id int64) (*domain.Unit, error) {
	u, ok := m.units[id]
	if !ok {
		return nil, domain.ErrUnitNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *mockUnitRepo) Create(_ context.Context, unitType string) (*domain.Unit, error) {
	for _, u := range m.units {
		if u.UnitType == unitType {
			return nil, domain.ErrUnitConflict
		}
	}
	u := &domain.Unit{ID: m.nextID, UnitType: unitType}
	m.units[u.ID] = u
	m.nextID++
	cp := *u
	return &cp, nil
}

func (m *mockUnitRepo) Update(_ context.Context, unit *domain.Unit) error {
	if _, ok := m.units[unit.ID]; !ok {
		return domain.ErrUnitNotFound
	}
	cp := *unit
	m.units[unit.ID] = &cp
	return nil
}

func (m *mockUnitRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.units[id]; !ok {
		return domain.ErrUnitNotFound
	}
	delete(m.units, id)
	return nil
}

func TestUnitService_CRUD(t *testing.T) {
	svc := NewUnitService(newMockUnitRepo())
	ctx := context.Background()

	tablet, err := svc.Create(ctx, &CreateUnitRequest{UnitType: "  tablet "})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if tablet.UnitType != "tablet" || tablet.ID != 1 {
		t.Errorf("Create() = %+v", tablet)
	}

	if _, err := svc.Create(ctx, &CreateUnitRequest{UnitType: "tablet"}); !errors.Is(err, domain.ErrUnitConflict) {
		t.Errorf("duplicate Create() error = %v, want ErrUnitConflict", err)
	}

	updated, err := svc.Update(ctx, &UpdateUnitRequest{UnitID: tablet.ID, UnitType: "capsule"})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.UnitType != "capsule" {
		t.Errorf("Update() UnitType = %q", updated.UnitType)
	}

	list, _ := svc.List(ctx)
	if len(list) != 1 || list[0].UnitType != "capsule" {
		t.Errorf("List() = %+v", list)
	}

	if err := svc.Delete(ctx, tablet.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := svc.Delete(ctx, tablet.ID); !errors.Is(err, domain.ErrUnitNotFound) {
		t.Errorf("second Delete() error = %v, want ErrUnitNotFound", err)
	}
}

func TestUnitService_Validation(t *testing.T) {
	svc := NewUnitService(newMockUnitRepo())
	ctx := context.Background()

	tests := []struct {
		name string
		run  func() error
		want *domain.DomainError
	}{
		{"create empty", func() error {
			_, err := svc.Create(ctx, &CreateUnitRequest{UnitType: " "})
			return err
		}, domain.ErrMissingArgument},
		{"update bad id", func() error {
			_, err := svc.Update(ctx, &UpdateUnitRequest{UnitID: 0, UnitType: "x"})
			return err
		}, domain.ErrInvalidArgument},
		{"update missing", func() error {
			_, err := svc.Update(ctx, &UpdateUnitRequest{UnitID: 9, UnitType: "x"})
			return err
		}, domain.ErrUnitNotFound},
		{"delete bad id", func() error {
			return svc.Delete(ctx, -1)
		}, domain.ErrInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.run(); !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}
