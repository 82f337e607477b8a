package model

import "time"

// Customer is a customer record as stored and served by the customer service.
type Customer struct {
	ID        CustomerID `json:"id"`
	Name      string     `json:"name"`
	Age       float64    `json:"age"`
	CreatedAt time.Time  `json:"created_at"`
}

// CustomerFilter narrows a customer listing. Zero values mean "no filter".
type CustomerFilter struct {
	NameContains string
	MinAge       *float64
	MaxAge       *float64
	IDs          []CustomerID
}

// IsEmpty reports whether the filter matches every customer.
func (f CustomerFilter) IsEmpty() bool {
	return f.NameContains == "" && f.MinAge == nil && f.MaxAge == nil && len(f.IDs) == 0
}
