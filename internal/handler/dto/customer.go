package dto

import (
	"time"

	"github.com/fleetlink/fleetlink/internal/model"
)

// CreateCustomerRequest represents the request body for creating a customer.
type CreateCustomerRequest struct {
	Name string   `json:"name"`
	Age  *float64 `json:"age"`
}

// CustomerResponse is a customer as served by the customer service.
// The vehicle service decodes this shape into model.Customer.
type CustomerResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Age       float64   `json:"age"`
	CreatedAt time.Time `json:"created_at"`
}

// ToCustomerResponse converts a model.Customer to its API shape.
func ToCustomerResponse(c *model.Customer) CustomerResponse {
	return CustomerResponse{
		ID:        int64(c.ID),
		Name:      c.Name,
		Age:       c.Age,
		CreatedAt: c.CreatedAt,
	}
}

// ToCustomerList converts customers, keeping their order.
func ToCustomerList(customers []*model.Customer) []CustomerResponse {
	out := make([]CustomerResponse, 0, len(customers))
	for _, c := range customers {
		out = append(out, ToCustomerResponse(c))
	}
	return out
}
