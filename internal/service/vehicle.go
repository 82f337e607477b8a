package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/fleetlink/fleetlink/internal/metrics"
	"github.com/fleetlink/fleetlink/internal/model"
	"github.com/fleetlink/fleetlink/internal/repository"
)

// Vehicle validation errors.
var (
	ErrInvalidBrand        = errors.New("brand must be 1-100 characters")
	ErrInvalidModel        = errors.New("model must be 1-100 characters")
	ErrInvalidRegistration = errors.New("registration number must be 1-50 characters")
	ErrInvalidOwner        = errors.New("owner id must be a positive integer")
	ErrRegistrationExists  = errors.New("registration number already exists")
)

const (
	maxBrandLength        = 100
	maxModelLength        = 100
	maxRegistrationLength = 50
)

// VehicleRecords persists vehicles.
type VehicleRecords interface {
	CreateVehicle(ctx context.Context, v *model.Vehicle) error
	GetVehicleByRegistration(ctx context.Context, registration string) (*model.Vehicle, error)
}

// VehicleService handles vehicle registration and lookups that need no owner.
type VehicleService struct {
	repo    VehicleRecords
	metrics metrics.Recorder
}

// NewVehicleService creates a new VehicleService.
func NewVehicleService(repo VehicleRecords, recorder metrics.Recorder) *VehicleService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &VehicleService{repo: repo, metrics: recorder}
}

// CreateVehicleInput defines input for creating a vehicle.
type CreateVehicleInput struct {
	Brand              string
	Model              string
	RegistrationNumber string
	OwnerID            model.CustomerID
}

// Create stores a new vehicle. The owner reference is not checked against
// the customer service.
func (s *VehicleService) Create(ctx context.Context, input CreateVehicleInput) (*model.Vehicle, error) {
	brand := strings.TrimSpace(input.Brand)
	if !validLength(brand, maxBrandLength) {
		return nil, ErrInvalidBrand
	}

	vehicleModel := strings.TrimSpace(input.Model)
	if !validLength(vehicleModel, maxModelLength) {
		return nil, ErrInvalidModel
	}

	registration := NormalizeRegistration(input.RegistrationNumber)
	if !validLength(registration, maxRegistrationLength) {
		return nil, ErrInvalidRegistration
	}

	if !input.OwnerID.IsValid() {
		return nil, ErrInvalidOwner
	}

	vehicle := &model.Vehicle{
		Brand:              brand,
		Model:              vehicleModel,
		RegistrationNumber: registration,
		OwnerID:            input.OwnerID,
	}

	if err := s.repo.CreateVehicle(ctx, vehicle); err != nil {
		if errors.Is(err, repository.ErrRegistrationExists) {
			return nil, ErrRegistrationExists
		}
		return nil, fmt.Errorf("failed to create vehicle: %w", err)
	}

	s.metrics.IncVehicleCreated()

	return vehicle, nil
}

// GetByRegistration returns the raw vehicle with the given registration number.
func (s *VehicleService) GetByRegistration(ctx context.Context, registration string) (*model.Vehicle, error) {
	registration = NormalizeRegistration(registration)
	if registration == "" {
		return nil, ErrVehicleNotFound
	}

	vehicle, err := s.repo.GetVehicleByRegistration(ctx, registration)
	if err != nil {
		if errors.Is(err, repository.ErrVehicleNotFound) {
			return nil, ErrVehicleNotFound
		}
		return nil, err
	}

	return vehicle, nil
}

// NormalizeRegistration trims and upper-cases a registration number.
func NormalizeRegistration(registration string) string {
	return strings.ToUpper(strings.TrimSpace(registration))
}

func validLength(value string, max int) bool {
	n := utf8.RuneCountInString(value)
	return n >= 1 && n <= max
}
