package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"

	"github.com/fleetlink/fleetlink/internal/model"
)

// Common errors for customer repository operations.
var (
	ErrCustomerNotFound = errors.New("customer not found")
)

const customerColumns = `id, name, age, created_at`

// CreateCustomer inserts a customer and fills in its generated ID and CreatedAt.
func (r *Repository) CreateCustomer(ctx context.Context, c *model.Customer) error {
	query := `
		INSERT INTO customers (name, age)
		VALUES ($1, $2)
		RETURNING id, created_at
	`

	var id int64
	if err := r.pool.QueryRow(ctx, query, c.Name, c.Age).Scan(&id, &c.CreatedAt); err != nil {
		return fmt.Errorf("failed to create customer: %w", err)
	}
	c.ID = model.CustomerID(id)

	return nil
}

// GetCustomerByID retrieves a customer by its ID.
func (r *Repository) GetCustomerByID(ctx context.Context, id model.CustomerID) (*model.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`

	c, err := scanCustomer(r.pool.QueryRow(ctx, query, int64(id)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to get customer by ID: %w", err)
	}

	return c, nil
}

// ListCustomers returns customers matching the filter, ordered by id.
func (r *Repository) ListCustomers(ctx context.Context, filter model.CustomerFilter) ([]*model.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE TRUE`
	args := []any{}
	argIndex := 1

	if filter.NameContains != "" {
		query += fmt.Sprintf(" AND name ILIKE '%%' || $%d || '%%'", argIndex)
		args = append(args, filter.NameContains)
		argIndex++
	}

	if filter.MinAge != nil {
		query += fmt.Sprintf(" AND age >= $%d", argIndex)
		args = append(args, *filter.MinAge)
		argIndex++
	}

	if filter.MaxAge != nil {
		query += fmt.Sprintf(" AND age <= $%d", argIndex)
		args = append(args, *filter.MaxAge)
		argIndex++
	}

	if len(filter.IDs) > 0 {
		ids := make([]int64, len(filter.IDs))
		for i, id := range filter.IDs {
			ids[i] = int64(id)
		}
		query += fmt.Sprintf(" AND id = ANY($%d)", argIndex)
		args = append(args, pq.Array(ids))
	}

	query += " ORDER BY id"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	defer rows.Close()

	customers := make([]*model.Customer, 0)
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating customers: %w", err)
	}

	return customers, nil
}

// CountCustomers returns the number of stored customers.
func (r *Repository) CountCustomers(ctx context.Context) (int64, error) {
	var count int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM customers`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count customers: %w", err)
	}
	return count, nil
}

func scanCustomer(row pgx.Row) (*model.Customer, error) {
	var c model.Customer
	var id int64
	err := row.Scan(&id, &c.Name, &c.Age, &c.CreatedAt)
	c.ID = model.CustomerID(id)
	return &c, err
}
