package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/fleetlink/fleetlink/internal/model"
)

// Common errors for vehicle repository operations.
var (
	ErrVehicleNotFound    = errors.New("vehicle not found")
	ErrRegistrationExists = errors.New("registration number already exists")
)

const vehicleColumns = `id, brand, model, registration_number, owner_id, created_at`

// CreateVehicle inserts a vehicle and fills in its generated ID and CreatedAt.
func (r *Repository) CreateVehicle(ctx context.Context, v *model.Vehicle) error {
	query := `
		INSERT INTO vehicles (brand, model, registration_number, owner_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(ctx, query,
		v.Brand,
		v.Model,
		v.RegistrationNumber,
		int64(v.OwnerID),
	).Scan(&v.ID, &v.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrRegistrationExists
		}
		return fmt.Errorf("failed to create vehicle: %w", err)
	}

	return nil
}

// GetVehicleByID retrieves a vehicle by its ID.
func (r *Repository) GetVehicleByID(ctx context.Context, id int64) (*model.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE id = $1`

	v, err := scanVehicle(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrVehicleNotFound
		}
		return nil, fmt.Errorf("failed to get vehicle by ID: %w", err)
	}

	return v, nil
}

// GetVehicleByRegistration retrieves a vehicle by its registration number.
func (r *Repository) GetVehicleByRegistration(ctx context.Context, registration string) (*model.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE registration_number = $1`

	v, err := scanVehicle(r.pool.QueryRow(ctx, query, registration))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrVehicleNotFound
		}
		return nil, fmt.Errorf("failed to get vehicle by registration: %w", err)
	}

	return v, nil
}

// ListVehicles returns every vehicle in insertion order.
func (r *Repository) ListVehicles(ctx context.Context) ([]*model.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles ORDER BY id`
	return r.queryVehicles(ctx, query)
}

// ListVehiclesByOwner returns the vehicles referencing the given owner, in insertion order.
func (r *Repository) ListVehiclesByOwner(ctx context.Context, ownerID model.CustomerID) ([]*model.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE owner_id = $1 ORDER BY id`
	return r.queryVehicles(ctx, query, int64(ownerID))
}

func (r *Repository) queryVehicles(ctx context.Context, query string, args ...any) ([]*model.Vehicle, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list vehicles: %w", err)
	}
	defer rows.Close()

	vehicles := make([]*model.Vehicle, 0)
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan vehicle: %w", err)
		}
		vehicles = append(vehicles, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating vehicles: %w", err)
	}

	return vehicles, nil
}

// scanVehicle scans a single row into a Vehicle model.
func scanVehicle(row pgx.Row) (*model.Vehicle, error) {
	var v model.Vehicle
	var ownerID int64
	err := row.Scan(
		&v.ID,
		&v.Brand,
		&v.Model,
		&v.RegistrationNumber,
		&ownerID,
		&v.CreatedAt,
	)
	v.OwnerID = model.CustomerID(ownerID)
	return &v, err
}
