package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/fleetlink/fleetlink/internal/metrics"
	"github.com/fleetlink/fleetlink/internal/model"
	"github.com/fleetlink/fleetlink/internal/testutil/memstore"
)

func floatPtr(v float64) *float64 { return &v }

func TestCreateCustomer(t *testing.T) {
	rec := metrics.NewInMemory()
	svc := NewCustomerService(memstore.NewCustomerTable(), rec, nil)

	customer, err := svc.Create(context.Background(), CreateCustomerInput{Name: "  Amine SAFI ", Age: 23})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if customer.ID == 0 || customer.Name != "Amine SAFI" {
		t.Errorf("unexpected customer: %+v", customer)
	}
	if rec.Snapshot().CustomersCreated != 1 {
		t.Error("expected customer creation to be recorded")
	}
}

func TestCreateCustomerValidationErrors(t *testing.T) {
	svc := NewCustomerService(memstore.NewCustomerTable(), nil, nil)

	tests := []struct {
		name    string
		input   CreateCustomerInput
		wantErr error
	}{
		{"empty_name", CreateCustomerInput{Name: " ", Age: 20}, ErrInvalidName},
		{"long_name", CreateCustomerInput{Name: strings.Repeat("n", 256), Age: 20}, ErrInvalidName},
		{"negative_age", CreateCustomerInput{Name: "A", Age: -1}, ErrInvalidAge},
		{"too_old", CreateCustomerInput{Name: "A", Age: 151}, ErrInvalidAge},
		{"nan_age", CreateCustomerInput{Name: "A", Age: math.NaN()}, ErrInvalidAge},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), test.input)
			if !errors.Is(err, test.wantErr) {
				t.Fatalf("expected %v, got %v", test.wantErr, err)
			}
		})
	}
}

func TestGetCustomer(t *testing.T) {
	svc := NewCustomerService(memstore.NewCustomerTable(model.Customer{ID: 7, Name: "A"}), nil, nil)

	customer, err := svc.Get(context.Background(), 7)
	if err != nil || customer.Name != "A" {
		t.Fatalf("unexpected result: %+v, %v", customer, err)
	}

	if _, err := svc.Get(context.Background(), 8); !errors.Is(err, ErrCustomerNotFound) {
		t.Errorf("expected ErrCustomerNotFound, got %v", err)
	}
}

func TestListCustomers(t *testing.T) {
	table := memstore.NewCustomerTable(
		model.Customer{Name: "Amine SAFI", Age: 23},
		model.Customer{Name: "Amal ALAOUI", Age: 22},
		model.Customer{Name: "Samir RAMI", Age: 40},
	)
	svc := NewCustomerService(table, nil, nil)

	tests := []struct {
		name    string
		filter  model.CustomerFilter
		wantIDs []model.CustomerID
	}{
		{"all", model.CustomerFilter{}, []model.CustomerID{1, 2, 3}},
		{"name", model.CustomerFilter{NameContains: " alaoui "}, []model.CustomerID{2}},
		{"age_range", model.CustomerFilter{MinAge: floatPtr(22), MaxAge: floatPtr(23)}, []model.CustomerID{1, 2}},
		{"ids", model.CustomerFilter{IDs: []model.CustomerID{3, 1, 99}}, []model.CustomerID{1, 3}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			customers, err := svc.List(context.Background(), test.filter)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(customers) != len(test.wantIDs) {
				t.Fatalf("expected %d customers, got %d", len(test.wantIDs), len(customers))
			}
			for i, id := range test.wantIDs {
				if customers[i].ID != id {
					t.Errorf("position %d: expected id %d, got %d", i, id, customers[i].ID)
				}
			}
		})
	}
}

func TestListCustomers_InvalidAgeRange(t *testing.T) {
	svc := NewCustomerService(memstore.NewCustomerTable(), nil, nil)

	_, err := svc.List(context.Background(), model.CustomerFilter{MinAge: floatPtr(30), MaxAge: floatPtr(20)})
	if !errors.Is(err, ErrInvalidAgeRange) {
		t.Fatalf("expected ErrInvalidAgeRange, got %v", err)
	}

	_, err = svc.List(context.Background(), model.CustomerFilter{MinAge: floatPtr(-3)})
	if !errors.Is(err, ErrInvalidAge) {
		t.Fatalf("expected ErrInvalidAge, got %v", err)
	}
}

func TestSeedSampleData(t *testing.T) {
	table := memstore.NewCustomerTable()
	svc := NewCustomerService(table, nil, nil)

	created, err := svc.SeedSampleData(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created != len(SampleCustomers) {
		t.Fatalf("expected %d customers, got %d", len(SampleCustomers), created)
	}

	again, err := svc.SeedSampleData(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if again != 0 {
		t.Errorf("expected second seed to be a no-op, created %d", again)
	}

	customers, _ := svc.List(context.Background(), model.CustomerFilter{})
	if len(customers) != 3 || customers[0].Name != "Amine SAFI" {
		t.Errorf("unexpected customers after seed: %+v", customers)
	}
}

func TestSeedSampleData_StoreFailure(t *testing.T) {
	table := memstore.NewCustomerTable()
	table.Err = errors.New("db down")
	svc := NewCustomerService(table, nil, nil)

	if _, err := svc.SeedSampleData(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
