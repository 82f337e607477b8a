// Package service provides business logic for the vehicle and customer services.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/fleetlink/fleetlink/internal/customerclient"
	"github.com/fleetlink/fleetlink/internal/metrics"
	"github.com/fleetlink/fleetlink/internal/model"
	"github.com/fleetlink/fleetlink/internal/repository"
)

// Enrichment errors.
var (
	ErrVehicleNotFound     = errors.New("vehicle not found")
	ErrUpstreamUnavailable = errors.New("customer service unavailable")

	errMismatchedCustomer = errors.New("customer service returned a different customer")
)

// VehicleNotFoundError reports a vehicle id absent from the local store.
type VehicleNotFoundError struct {
	ID int64
}

func (e *VehicleNotFoundError) Error() string {
	return fmt.Sprintf("vehicle %d not found", e.ID)
}

// Is makes VehicleNotFoundError match ErrVehicleNotFound.
func (e *VehicleNotFoundError) Is(target error) bool {
	return target == ErrVehicleNotFound
}

// UpstreamError reports a failed customer lookup. Op is "get" or "list".
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("customer service unavailable (%s): %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Is makes UpstreamError match ErrUpstreamUnavailable.
func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstreamUnavailable
}

// VehicleStore reads vehicles from the local store.
// GetVehicleByID returns repository.ErrVehicleNotFound when the id is absent.
type VehicleStore interface {
	GetVehicleByID(ctx context.Context, id int64) (*model.Vehicle, error)
	ListVehicles(ctx context.Context) ([]*model.Vehicle, error)
	ListVehiclesByOwner(ctx context.Context, ownerID model.CustomerID) ([]*model.Vehicle, error)
}

// CustomerLookup resolves owners from the customer service.
// GetCustomer returns customerclient.ErrCustomerNotFound when the service
// answered and has no such customer; every other error is a failure.
type CustomerLookup interface {
	GetCustomer(ctx context.Context, id model.CustomerID) (*model.Customer, error)
	ListCustomers(ctx context.Context) ([]model.Customer, error)
}

// EnrichmentService joins local vehicles with their remote owners.
// It holds no mutable state and is safe for concurrent use.
type EnrichmentService struct {
	vehicles  VehicleStore
	customers CustomerLookup
	metrics   metrics.Recorder
	logger    *slog.Logger
}

// NewEnrichmentService creates a new EnrichmentService.
func NewEnrichmentService(vehicles VehicleStore, customers CustomerLookup, recorder metrics.Recorder, logger *slog.Logger) *EnrichmentService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &EnrichmentService{
		vehicles:  vehicles,
		customers: customers,
		metrics:   recorder,
		logger:    logger.With("component", "enrichment"),
	}
}

// GetOne returns a single vehicle with its owner attached.
// An unknown owner yields a view without owner. A failed lookup fails the
// whole call with an *UpstreamError; no partial view is returned.
func (s *EnrichmentService) GetOne(ctx context.Context, id int64) (*model.EnrichedVehicle, error) {
	vehicle, err := s.vehicles.GetVehicleByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrVehicleNotFound) {
			return nil, &VehicleNotFoundError{ID: id}
		}
		return nil, fmt.Errorf("failed to get vehicle: %w", err)
	}

	owner, err := s.lookupOwner(ctx, vehicle.OwnerID)
	if err != nil {
		return nil, err
	}

	view := model.EnrichedVehicle{Vehicle: *vehicle, Owner: owner}
	s.observe([]model.EnrichedVehicle{view})
	return &view, nil
}

// GetAll returns every vehicle in store order with owners attached.
// Owners are fetched with exactly one bulk call, whatever the number of
// vehicles. If that call fails the whole result fails.
func (s *EnrichmentService) GetAll(ctx context.Context) ([]model.EnrichedVehicle, error) {
	vehicles, err := s.vehicles.ListVehicles(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list vehicles: %w", err)
	}

	customers, err := s.customers.ListCustomers(ctx)
	if err != nil {
		s.logger.Warn("customer listing failed", "error", err, "vehicles", len(vehicles))
		return nil, &UpstreamError{Op: "list", Err: err}
	}

	owners := indexCustomers(customers)

	views := make([]model.EnrichedVehicle, 0, len(vehicles))
	for _, v := range vehicles {
		view := model.EnrichedVehicle{Vehicle: *v}
		if c, ok := owners[v.OwnerID]; ok {
			owner := *c
			view.Owner = &owner
		}
		views = append(views, view)
	}

	s.observe(views)
	return views, nil
}

// GetByOwner returns the vehicles of one owner with that owner attached.
// It makes a single lookup, skipped when the owner has no vehicles, and
// fails like GetOne when that lookup fails.
func (s *EnrichmentService) GetByOwner(ctx context.Context, ownerID model.CustomerID) ([]model.EnrichedVehicle, error) {
	vehicles, err := s.vehicles.ListVehiclesByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list vehicles by owner: %w", err)
	}
	if len(vehicles) == 0 {
		return []model.EnrichedVehicle{}, nil
	}

	owner, err := s.lookupOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	views := make([]model.EnrichedVehicle, 0, len(vehicles))
	for _, v := range vehicles {
		view := model.EnrichedVehicle{Vehicle: *v}
		if owner != nil {
			o := *owner
			view.Owner = &o
		}
		views = append(views, view)
	}

	s.observe(views)
	return views, nil
}

// lookupOwner fetches a single owner. It returns (nil, nil) when the
// customer service has no such customer.
func (s *EnrichmentService) lookupOwner(ctx context.Context, id model.CustomerID) (*model.Customer, error) {
	customer, err := s.customers.GetCustomer(ctx, id)
	if err != nil {
		if errors.Is(err, customerclient.ErrCustomerNotFound) {
			s.logger.Debug("owner not found", "owner_id", id.String())
			return nil, nil
		}
		s.logger.Warn("customer lookup failed", "owner_id", id.String(), "error", err)
		return nil, &UpstreamError{Op: "get", Err: err}
	}

	if customer == nil || customer.ID != id {
		got := "none"
		if customer != nil {
			got = customer.ID.String()
		}
		err := fmt.Errorf("%w: asked for %s, got %s", errMismatchedCustomer, id, got)
		s.logger.Warn("customer lookup failed", "owner_id", id.String(), "error", err)
		return nil, &UpstreamError{Op: "get", Err: err}
	}

	return customer, nil
}

func (s *EnrichmentService) observe(views []model.EnrichedVehicle) {
	resolved := 0
	for i := range views {
		if views[i].HasOwner() {
			resolved++
		}
	}
	s.metrics.AddVehiclesEnriched(resolved)
	s.metrics.AddOwnersUnresolved(len(views) - resolved)
}

// indexCustomers maps ids to customers. When ids repeat, the first one wins.
func indexCustomers(customers []model.Customer) map[model.CustomerID]*model.Customer {
	index := make(map[model.CustomerID]*model.Customer, len(customers))
	for i := range customers {
		if _, ok := index[customers[i].ID]; !ok {
			index[customers[i].ID] = &customers[i]
		}
	}
	return index
}
