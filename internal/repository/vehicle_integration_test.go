//go:build integration

package repository

import (
	"errors"
	"testing"

	"github.com/fleetlink/fleetlink/internal/model"
	"github.com/fleetlink/fleetlink/internal/testutil"
)

// ============================================================================
// Vehicle Repository Integration Tests
// ============================================================================

func TestIntegrationVehicleRepository_CreateAndGet(t *testing.T) {
	ctx, repo := newRepositoryTestEnv(t)

	vehicle := testutil.NewTestVehicle(t, 10)
	if err := repo.CreateVehicle(ctx, vehicle); err != nil {
		t.Fatalf("CreateVehicle failed: %v", err)
	}
	if vehicle.ID == 0 || vehicle.CreatedAt.IsZero() {
		t.Fatalf("expected generated ID and CreatedAt, got %+v", vehicle)
	}

	byID, err := repo.GetVehicleByID(ctx, vehicle.ID)
	if err != nil {
		t.Fatalf("GetVehicleByID failed: %v", err)
	}
	if byID.RegistrationNumber != vehicle.RegistrationNumber || byID.OwnerID != 10 {
		t.Errorf("unexpected vehicle: %+v", byID)
	}

	byPlate, err := repo.GetVehicleByRegistration(ctx, vehicle.RegistrationNumber)
	if err != nil {
		t.Fatalf("GetVehicleByRegistration failed: %v", err)
	}
	if byPlate.ID != vehicle.ID {
		t.Errorf("ID mismatch: got %d, want %d", byPlate.ID, vehicle.ID)
	}
}

func TestIntegrationVehicleRepository_DuplicateRegistration(t *testing.T) {
	ctx, repo := newRepositoryTestEnv(t)

	first := testutil.NewTestVehicle(t, 1)
	second := testutil.NewTestVehicle(t, 2)
	second.RegistrationNumber = first.RegistrationNumber

	if err := repo.CreateVehicle(ctx, first); err != nil {
		t.Fatalf("CreateVehicle (first) failed: %v", err)
	}
	if err := repo.CreateVehicle(ctx, second); !errors.Is(err, ErrRegistrationExists) {
		t.Errorf("Expected ErrRegistrationExists, got: %v", err)
	}
}

func TestIntegrationVehicleRepository_NotFound(t *testing.T) {
	ctx, repo := newRepositoryTestEnv(t)

	if _, err := repo.GetVehicleByID(ctx, 99); !errors.Is(err, ErrVehicleNotFound) {
		t.Errorf("Expected ErrVehicleNotFound, got: %v", err)
	}
	if _, err := repo.GetVehicleByRegistration(ctx, "NOPE"); !errors.Is(err, ErrVehicleNotFound) {
		t.Errorf("Expected ErrVehicleNotFound, got: %v", err)
	}
}

func TestIntegrationVehicleRepository_ListPreservesInsertionOrder(t *testing.T) {
	ctx, repo := newRepositoryTestEnv(t)

	owners := []model.CustomerID{3, 1, 3, 2}
	ids := make([]int64, 0, len(owners))
	for _, owner := range owners {
		v := testutil.NewTestVehicle(t, owner)
		if err := repo.CreateVehicle(ctx, v); err != nil {
			t.Fatalf("CreateVehicle failed: %v", err)
		}
		ids = append(ids, v.ID)
	}

	all, err := repo.ListVehicles(ctx)
	if err != nil {
		t.Fatalf("ListVehicles failed: %v", err)
	}
	if len(all) != len(ids) {
		t.Fatalf("expected %d vehicles, got %d", len(ids), len(all))
	}
	for i, v := range all {
		if v.ID != ids[i] {
			t.Errorf("position %d: got vehicle %d, want %d", i, v.ID, ids[i])
		}
	}

	byOwner, err := repo.ListVehiclesByOwner(ctx, 3)
	if err != nil {
		t.Fatalf("ListVehiclesByOwner failed: %v", err)
	}
	if len(byOwner) != 2 || byOwner[0].ID != ids[0] || byOwner[1].ID != ids[2] {
		t.Errorf("unexpected vehicles for owner 3: %+v", byOwner)
	}

	none, err := repo.ListVehiclesByOwner(ctx, 42)
	if err != nil {
		t.Fatalf("ListVehiclesByOwner failed: %v", err)
	}
	if none == nil || len(none) != 0 {
		t.Errorf("expected empty slice, got %#v", none)
	}
}
