package dto

import (
	"github.com/fleetlink/fleetlink/internal/model"
)

// CreateVehicleRequest represents the request body for registering a vehicle.
type CreateVehicleRequest struct {
	ManufacturerBrand       string `json:"manufacturerBrand"`
	VehicleModel            string `json:"vehicleModel"`
	RegistrationPlateNumber string `json:"registrationPlateNumber"`
	OwnerID                 int64  `json:"ownerId"`
}

// VehicleResponse is a stored vehicle without owner data.
type VehicleResponse struct {
	VehicleID               int64  `json:"vehicleId"`
	ManufacturerBrand       string `json:"manufacturerBrand"`
	VehicleModel            string `json:"vehicleModel"`
	RegistrationPlateNumber string `json:"registrationPlateNumber"`
	OwnerID                 int64  `json:"ownerId"`
}

// AssociatedCustomer is the owner block of an enriched vehicle.
type AssociatedCustomer struct {
	CustomerIdentifier int64   `json:"customerIdentifier"`
	CustomerFullName   string  `json:"customerFullName"`
	CustomerAge        float64 `json:"customerAge"`
}

// EnrichedVehicleResponse is a vehicle with its owner. AssociatedCustomer
// is serialized as null when the owner could not be matched.
type EnrichedVehicleResponse struct {
	VehicleID               int64               `json:"vehicleId"`
	ManufacturerBrand       string              `json:"manufacturerBrand"`
	VehicleModel            string              `json:"vehicleModel"`
	RegistrationPlateNumber string              `json:"registrationPlateNumber"`
	AssociatedCustomer      *AssociatedCustomer `json:"associatedCustomer"`
}

// ToVehicleResponse converts a model.Vehicle to its API shape.
func ToVehicleResponse(v *model.Vehicle) VehicleResponse {
	return VehicleResponse{
		VehicleID:               v.ID,
		ManufacturerBrand:       v.Brand,
		VehicleModel:            v.Model,
		RegistrationPlateNumber: v.RegistrationNumber,
		OwnerID:                 int64(v.OwnerID),
	}
}

// ToEnrichedVehicleResponse converts a model.EnrichedVehicle to its API shape.
func ToEnrichedVehicleResponse(e *model.EnrichedVehicle) EnrichedVehicleResponse {
	resp := EnrichedVehicleResponse{
		VehicleID:               e.Vehicle.ID,
		ManufacturerBrand:       e.Vehicle.Brand,
		VehicleModel:            e.Vehicle.Model,
		RegistrationPlateNumber: e.Vehicle.RegistrationNumber,
	}
	if e.Owner != nil {
		resp.AssociatedCustomer = &AssociatedCustomer{
			CustomerIdentifier: int64(e.Owner.ID),
			CustomerFullName:   e.Owner.Name,
			CustomerAge:        e.Owner.Age,
		}
	}
	return resp
}

// ToEnrichedVehicleList converts views, keeping their order. The result is
// never nil so an empty listing encodes as [].
func ToEnrichedVehicleList(views []model.EnrichedVehicle) []EnrichedVehicleResponse {
	out := make([]EnrichedVehicleResponse, 0, len(views))
	for i := range views {
		out = append(out, ToEnrichedVehicleResponse(&views[i]))
	}
	return out
}
