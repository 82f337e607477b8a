package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/fleetlink/fleetlink/internal/handler/dto"
	"github.com/fleetlink/fleetlink/internal/model"
	"github.com/fleetlink/fleetlink/internal/requestid"
	"github.com/fleetlink/fleetlink/internal/service"
)

// VehicleHandler handles HTTP requests for vehicle operations.
type VehicleHandler struct {
	enrichment *service.EnrichmentService
	vehicles   *service.VehicleService
	logger     *slog.Logger
}

// NewVehicleHandler creates a new VehicleHandler.
func NewVehicleHandler(enrichment *service.EnrichmentService, vehicles *service.VehicleService, logger *slog.Logger) *VehicleHandler {
	return &VehicleHandler{
		enrichment: enrichment,
		vehicles:   vehicles,
		logger:     logger,
	}
}

// Routes mounts the vehicle endpoints on r.
func (h *VehicleHandler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/registration/{plate}", h.GetByRegistration)
	r.Get("/{id}", h.Get)
}

// List handles GET /vehicles and GET /vehicles?ownerId={id}.
func (h *VehicleHandler) List(w http.ResponseWriter, r *http.Request) {
	if raw := r.URL.Query().Get("ownerId"); raw != "" {
		ownerID, ok := parseID(raw)
		if !ok {
			writeError(w, http.StatusBadRequest, "INVALID_OWNER_ID", "ownerId must be a positive integer")
			return
		}

		views, err := h.enrichment.GetByOwner(r.Context(), model.CustomerID(ownerID))
		if err != nil {
			h.handleServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, dto.ToEnrichedVehicleList(views))
		return
	}

	views, err := h.enrichment.GetAll(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToEnrichedVehicleList(views))
}

// Get handles GET /vehicles/{id}.
func (h *VehicleHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Vehicle ID must be a positive integer")
		return
	}

	view, err := h.enrichment.GetOne(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToEnrichedVehicleResponse(view))
}

// Create handles POST /vehicles.
func (h *VehicleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateVehicleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	vehicle, err := h.vehicles.Create(r.Context(), service.CreateVehicleInput{
		Brand:              req.ManufacturerBrand,
		Model:              req.VehicleModel,
		RegistrationNumber: req.RegistrationPlateNumber,
		OwnerID:            model.CustomerID(req.OwnerID),
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.Info("vehicle_created",
		"vehicle_id", vehicle.ID,
		"owner_id", vehicle.OwnerID.String(),
	)

	writeJSON(w, http.StatusCreated, dto.ToVehicleResponse(vehicle))
}

// GetByRegistration handles GET /vehicles/registration/{plate}.
func (h *VehicleHandler) GetByRegistration(w http.ResponseWriter, r *http.Request) {
	vehicle, err := h.vehicles.GetByRegistration(r.Context(), chi.URLParam(r, "plate"))
	if err != nil {
		if errors.Is(err, service.ErrVehicleNotFound) {
			writeError(w, http.StatusNotFound, "VEHICLE_NOT_FOUND", "Vehicle not found")
			return
		}
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToVehicleResponse(vehicle))
}

// handleServiceError maps service errors to HTTP responses.
// A missing vehicle on the id route is a client error (400).
func (h *VehicleHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrVehicleNotFound):
		writeError(w, http.StatusBadRequest, "VEHICLE_NOT_FOUND", err.Error())
	case errors.Is(err, service.ErrUpstreamUnavailable):
		h.logger.Warn("upstream_unavailable",
			"request_id", requestid.FromContext(r.Context()),
			"error", err,
		)
		writeError(w, http.StatusServiceUnavailable, "UPSTREAM_UNAVAILABLE", "Customer service is unavailable")
	case errors.Is(err, service.ErrRegistrationExists):
		writeError(w, http.StatusConflict, "REGISTRATION_TAKEN", "Registration number already exists")
	case errors.Is(err, service.ErrInvalidBrand):
		writeError(w, http.StatusBadRequest, "INVALID_BRAND", "Brand must be 1-100 characters")
	case errors.Is(err, service.ErrInvalidModel):
		writeError(w, http.StatusBadRequest, "INVALID_MODEL", "Model must be 1-100 characters")
	case errors.Is(err, service.ErrInvalidRegistration):
		writeError(w, http.StatusBadRequest, "INVALID_REGISTRATION", "Registration number must be 1-50 characters")
	case errors.Is(err, service.ErrInvalidOwner):
		writeError(w, http.StatusBadRequest, "INVALID_OWNER_ID", "ownerId must be a positive integer")
	default:
		h.logger.Error("internal_error",
			"request_id", requestid.FromContext(r.Context()),
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}

// parseID parses a positive decimal id.
func parseID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
