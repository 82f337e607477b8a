// Package memstore provides in-memory stand-ins for the vehicle store, the
// customer table and the remote customer lookup. They count calls and can
// be told to fail, so tests can assert how often each collaborator was hit.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fleetlink/fleetlink/internal/customerclient"
	"github.com/fleetlink/fleetlink/internal/model"
	"github.com/fleetlink/fleetlink/internal/repository"
)

// Vehicles is an in-memory vehicle store.
type Vehicles struct {
	mu       sync.Mutex
	vehicles []model.Vehicle
	nextID   int64
	calls    map[string]int

	// Err, when set, is returned by every read.
	Err error
}

// NewVehicles creates a store holding vehicles in the given order.
// Vehicles without an ID get one assigned.
func NewVehicles(vehicles ...model.Vehicle) *Vehicles {
	s := &Vehicles{calls: make(map[string]int)}
	for _, v := range vehicles {
		s.add(v)
	}
	return s
}

func (s *Vehicles) add(v model.Vehicle) model.Vehicle {
	if v.ID == 0 {
		v.ID = s.nextID + 1
	}
	if v.ID > s.nextID {
		s.nextID = v.ID
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now().UTC()
	}
	s.vehicles = append(s.vehicles, v)
	return v
}

// Calls returns how many times the named method was called.
func (s *Vehicles) Calls(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method]
}

// CreateVehicle stores v and fills in its ID and CreatedAt.
func (s *Vehicles) CreateVehicle(ctx context.Context, v *model.Vehicle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["CreateVehicle"]++

	for _, existing := range s.vehicles {
		if existing.RegistrationNumber == v.RegistrationNumber {
			return repository.ErrRegistrationExists
		}
	}

	stored := s.add(*v)
	*v = stored
	return nil
}

// GetVehicleByID returns a copy of the vehicle with the given id.
func (s *Vehicles) GetVehicleByID(ctx context.Context, id int64) (*model.Vehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["GetVehicleByID"]++

	if s.Err != nil {
		return nil, s.Err
	}
	for _, v := range s.vehicles {
		if v.ID == id {
			out := v
			return &out, nil
		}
	}
	return nil, repository.ErrVehicleNotFound
}

// GetVehicleByRegistration returns a copy of the vehicle with the given registration.
func (s *Vehicles) GetVehicleByRegistration(ctx context.Context, registration string) (*model.Vehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["GetVehicleByRegistration"]++

	if s.Err != nil {
		return nil, s.Err
	}
	for _, v := range s.vehicles {
		if v.RegistrationNumber == registration {
			out := v
			return &out, nil
		}
	}
	return nil, repository.ErrVehicleNotFound
}

// ListVehicles returns copies of every vehicle in insertion order.
func (s *Vehicles) ListVehicles(ctx context.Context) ([]*model.Vehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["ListVehicles"]++

	if s.Err != nil {
		return nil, s.Err
	}
	return s.filter(func(model.Vehicle) bool { return true }), nil
}

// ListVehiclesByOwner returns copies of the owner's vehicles in insertion order.
func (s *Vehicles) ListVehiclesByOwner(ctx context.Context, ownerID model.CustomerID) ([]*model.Vehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["ListVehiclesByOwner"]++

	if s.Err != nil {
		return nil, s.Err
	}
	return s.filter(func(v model.Vehicle) bool { return v.OwnerID == ownerID }), nil
}

func (s *Vehicles) filter(keep func(model.Vehicle) bool) []*model.Vehicle {
	out := make([]*model.Vehicle, 0, len(s.vehicles))
	for _, v := range s.vehicles {
		if keep(v) {
			c := v
			out = append(out, &c)
		}
	}
	return out
}

// Customers is an in-memory stand-in for the remote customer service.
// Duplicate ids are kept, so tests can exercise upstream duplicates.
type Customers struct {
	mu        sync.Mutex
	customers []model.Customer
	getCalls  int
	listCalls int

	// GetErr and ListErr, when set, are returned by the matching lookup.
	GetErr  error
	ListErr error
}

// NewCustomers creates a lookup serving the given customers.
func NewCustomers(customers ...model.Customer) *Customers {
	return &Customers{customers: append([]model.Customer(nil), customers...)}
}

// Fail makes every lookup return err.
func (s *Customers) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.GetErr = err
	s.ListErr = err
}

// GetCalls returns how many single lookups were made.
func (s *Customers) GetCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getCalls
}

// ListCalls returns how many bulk lookups were made.
func (s *Customers) ListCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listCalls
}

// GetCustomer returns the first customer with the given id.
func (s *Customers) GetCustomer(ctx context.Context, id model.CustomerID) (*model.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getCalls++

	if s.GetErr != nil {
		return nil, s.GetErr
	}
	for _, c := range s.customers {
		if c.ID == id {
			out := c
			return &out, nil
		}
	}
	return nil, customerclient.ErrCustomerNotFound
}

// ListCustomers returns a copy of every customer.
func (s *Customers) ListCustomers(ctx context.Context) ([]model.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listCalls++

	if s.ListErr != nil {
		return nil, s.ListErr
	}
	return append([]model.Customer{}, s.customers...), nil
}

// CustomerTable is an in-memory customer repository.
type CustomerTable struct {
	mu        sync.Mutex
	customers []model.Customer
	nextID    model.CustomerID

	// Err, when set, is returned by every call.
	Err error
}

// NewCustomerTable creates a table holding the given customers.
func NewCustomerTable(customers ...model.Customer) *CustomerTable {
	t := &CustomerTable{}
	for _, c := range customers {
		c := c
		_ = t.insert(&c)
	}
	return t
}

func (t *CustomerTable) insert(c *model.Customer) error {
	if c.ID == 0 {
		c.ID = t.nextID + 1
	}
	if c.ID > t.nextID {
		t.nextID = c.ID
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	t.customers = append(t.customers, *c)
	return nil
}

// CreateCustomer stores c and fills in its ID and CreatedAt.
func (t *CustomerTable) CreateCustomer(ctx context.Context, c *model.Customer) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.Err != nil {
		return t.Err
	}
	return t.insert(c)
}

// GetCustomerByID returns a copy of the customer with the given id.
func (t *CustomerTable) GetCustomerByID(ctx context.Context, id model.CustomerID) (*model.Customer, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.Err != nil {
		return nil, t.Err
	}
	for _, c := range t.customers {
		if c.ID == id {
			out := c
			return &out, nil
		}
	}
	return nil, repository.ErrCustomerNotFound
}

// ListCustomers applies filter the way the SQL repository does, ordered by id.
func (t *CustomerTable) ListCustomers(ctx context.Context, filter model.CustomerFilter) ([]*model.Customer, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.Err != nil {
		return nil, t.Err
	}

	var ids map[model.CustomerID]bool
	if len(filter.IDs) > 0 {
		ids = make(map[model.CustomerID]bool, len(filter.IDs))
		for _, id := range filter.IDs {
			ids[id] = true
		}
	}
	name := strings.ToLower(filter.NameContains)

	out := make([]*model.Customer, 0, len(t.customers))
	for _, c := range t.customers {
		switch {
		case name != "" && !strings.Contains(strings.ToLower(c.Name), name):
			continue
		case filter.MinAge != nil && c.Age < *filter.MinAge:
			continue
		case filter.MaxAge != nil && c.Age > *filter.MaxAge:
			continue
		case ids != nil && !ids[c.ID]:
			continue
		}
		cp := c
		out = append(out, &cp)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// CountCustomers returns the number of stored customers.
func (t *CustomerTable) CountCustomers(ctx context.Context) (int64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.Err != nil {
		return 0, t.Err
	}
	return int64(len(t.customers)), nil
}
