package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/fleetlink/fleetlink/internal/metrics"
	"github.com/fleetlink/fleetlink/internal/model"
	"github.com/fleetlink/fleetlink/internal/repository"
)

// Customer errors.
var (
	ErrCustomerNotFound = errors.New("customer not found")
	ErrInvalidName      = errors.New("name must be 1-255 characters")
	ErrInvalidAge       = errors.New("age must be between 0 and 150")
	ErrInvalidAgeRange  = errors.New("minAge must not exceed maxAge")
)

const (
	maxNameLength = 255
	maxAge        = 150
)

// SampleCustomers are stored on first start when seeding is enabled.
var SampleCustomers = []model.Customer{
	{Name: "Amine SAFI", Age: 23},
	{Name: "Amal ALAOUI", Age: 22},
	{Name: "Samir RAMI", Age: 22},
}

// CustomerRecords persists customers.
type CustomerRecords interface {
	CreateCustomer(ctx context.Context, c *model.Customer) error
	GetCustomerByID(ctx context.Context, id model.CustomerID) (*model.Customer, error)
	ListCustomers(ctx context.Context, filter model.CustomerFilter) ([]*model.Customer, error)
	CountCustomers(ctx context.Context) (int64, error)
}

// CustomerService handles customer business logic.
type CustomerService struct {
	repo    CustomerRecords
	metrics metrics.Recorder
	logger  *slog.Logger
}

// NewCustomerService creates a new CustomerService.
func NewCustomerService(repo CustomerRecords, recorder metrics.Recorder, logger *slog.Logger) *CustomerService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CustomerService{
		repo:    repo,
		metrics: recorder,
		logger:  logger.With("component", "customers"),
	}
}

// CreateCustomerInput defines input for creating a customer.
type CreateCustomerInput struct {
	Name string
	Age  float64
}

// Create stores a new customer.
func (s *CustomerService) Create(ctx context.Context, input CreateCustomerInput) (*model.Customer, error) {
	name := strings.TrimSpace(input.Name)
	if !validLength(name, maxNameLength) {
		return nil, ErrInvalidName
	}
	if !validAge(input.Age) {
		return nil, ErrInvalidAge
	}

	customer := &model.Customer{Name: name, Age: input.Age}
	if err := s.repo.CreateCustomer(ctx, customer); err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}

	s.metrics.IncCustomerCreated()

	return customer, nil
}

// Get retrieves a customer by ID.
func (s *CustomerService) Get(ctx context.Context, id model.CustomerID) (*model.Customer, error) {
	customer, err := s.repo.GetCustomerByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCustomerNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}

	return customer, nil
}

// List retrieves the customers matching filter, ordered by id.
func (s *CustomerService) List(ctx context.Context, filter model.CustomerFilter) ([]*model.Customer, error) {
	filter.NameContains = strings.TrimSpace(filter.NameContains)
	if filter.MinAge != nil && !validAge(*filter.MinAge) {
		return nil, ErrInvalidAge
	}
	if filter.MaxAge != nil && !validAge(*filter.MaxAge) {
		return nil, ErrInvalidAge
	}
	if filter.MinAge != nil && filter.MaxAge != nil && *filter.MinAge > *filter.MaxAge {
		return nil, ErrInvalidAgeRange
	}

	if !filter.IsEmpty() {
		s.logger.Debug("filtered customer listing",
			"name", filter.NameContains != "",
			"ids", len(filter.IDs),
		)
	}

	return s.repo.ListCustomers(ctx, filter)
}

// SeedSampleData stores SampleCustomers when no customer exists yet.
// It reports how many customers were created.
func (s *CustomerService) SeedSampleData(ctx context.Context) (int, error) {
	count, err := s.repo.CountCustomers(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count customers: %w", err)
	}
	if count > 0 {
		s.logger.Info("skipping sample data, customers already present", "count", count)
		return 0, nil
	}

	created := 0
	for _, sample := range SampleCustomers {
		c := sample
		if err := s.repo.CreateCustomer(ctx, &c); err != nil {
			return created, fmt.Errorf("failed to seed customer %q: %w", sample.Name, err)
		}
		created++
	}

	s.logger.Info("sample customers created", "count", created)
	return created, nil
}

func validAge(age float64) bool {
	return !math.IsNaN(age) && age >= 0 && age <= maxAge
}
