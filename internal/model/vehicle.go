// Package model defines domain entities shared by the vehicle and customer services.
package model

import (
	"strconv"
	"time"
)

// CustomerID references a customer owned by the customer service.
// It is a plain identifier with no enforced integrity: the referenced
// customer is resolved through a remote lookup and may be missing or
// unreachable at read time.
type CustomerID int64

// String returns the decimal form used in URLs and logs.
func (id CustomerID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// IsValid reports whether the id can refer to a stored customer.
func (id CustomerID) IsValid() bool {
	return id > 0
}

// Vehicle is a locally stored vehicle record.
type Vehicle struct {
	ID                 int64      `json:"id"`
	Brand              string     `json:"brand"`
	Model              string     `json:"model"`
	RegistrationNumber string     `json:"registration_number"`
	OwnerID            CustomerID `json:"owner_id"`
	CreatedAt          time.Time  `json:"created_at"`
}

// EnrichedVehicle is a vehicle joined with its owner.
// Owner is nil when the owner could not be matched; otherwise
// Owner.ID always equals Vehicle.OwnerID.
type EnrichedVehicle struct {
	Vehicle Vehicle
	Owner   *Customer
}

// HasOwner reports whether the owner reference was resolved.
func (e *EnrichedVehicle) HasOwner() bool {
	return e.Owner != nil
}
