package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/fleetlink/fleetlink/internal/handler/dto"
	"github.com/fleetlink/fleetlink/internal/model"
	"github.com/fleetlink/fleetlink/internal/requestid"
	"github.com/fleetlink/fleetlink/internal/service"
)

// maxFilterIDs caps the ids query parameter.
const maxFilterIDs = 500

// CustomerHandler handles HTTP requests for customer operations.
type CustomerHandler struct {
	svc    *service.CustomerService
	logger *slog.Logger
}

// NewCustomerHandler creates a new CustomerHandler.
func NewCustomerHandler(svc *service.CustomerService, logger *slog.Logger) *CustomerHandler {
	return &CustomerHandler{
		svc:    svc,
		logger: logger,
	}
}

// Routes mounts the customer endpoints on r.
func (h *CustomerHandler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
}

// List handles GET /customers[?name=&minAge=&maxAge=&ids=1,2].
func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := parseCustomerFilter(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_QUERY", err.Error())
		return
	}

	customers, err := h.svc.List(r.Context(), filter)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToCustomerList(customers))
}

// Get handles GET /customers/{id}.
func (h *CustomerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Customer ID must be an integer")
		return
	}
	// No customer has a non-positive id; answer like any other miss so
	// callers holding such a reference see "no customer", not a bad request.
	if !model.CustomerID(id).IsValid() {
		writeError(w, http.StatusNotFound, dto.CodeCustomerNotFound, "Customer not found")
		return
	}

	customer, err := h.svc.Get(r.Context(), model.CustomerID(id))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToCustomerResponse(customer))
}

// Create handles POST /customers.
func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateCustomerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if req.Age == nil {
		writeError(w, http.StatusBadRequest, "INVALID_AGE", "Age is required")
		return
	}

	customer, err := h.svc.Create(r.Context(), service.CreateCustomerInput{
		Name: req.Name,
		Age:  *req.Age,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.Info("customer_created", "customer_id", customer.ID.String())

	writeJSON(w, http.StatusCreated, dto.ToCustomerResponse(customer))
}

// handleServiceError maps service errors to HTTP responses.
func (h *CustomerHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrCustomerNotFound):
		writeError(w, http.StatusNotFound, dto.CodeCustomerNotFound, "Customer not found")
	case errors.Is(err, service.ErrInvalidName):
		writeError(w, http.StatusBadRequest, "INVALID_NAME", "Name must be 1-255 characters")
	case errors.Is(err, service.ErrInvalidAge):
		writeError(w, http.StatusBadRequest, "INVALID_AGE", "Age must be between 0 and 150")
	case errors.Is(err, service.ErrInvalidAgeRange):
		writeError(w, http.StatusBadRequest, "INVALID_QUERY", "minAge must not exceed maxAge")
	default:
		h.logger.Error("internal_error",
			"request_id", requestid.FromContext(r.Context()),
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}

func parseCustomerFilter(query url.Values) (model.CustomerFilter, error) {
	filter := model.CustomerFilter{
		NameContains: query.Get("name"),
	}

	for _, bound := range []struct {
		key string
		dst **float64
	}{
		{"minAge", &filter.MinAge},
		{"maxAge", &filter.MaxAge},
	} {
		raw := query.Get(bound.key)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return filter, errors.New(bound.key + " must be a number")
		}
		*bound.dst = &v
	}

	if raw := query.Get("ids"); raw != "" {
		parts := strings.Split(raw, ",")
		if len(parts) > maxFilterIDs {
			return filter, errors.New("too many ids")
		}
		for _, part := range parts {
			id, ok := parseID(strings.TrimSpace(part))
			if !ok {
				return filter, errors.New("ids must be a comma-separated list of positive integers")
			}
			filter.IDs = append(filter.IDs, model.CustomerID(id))
		}
	}

	return filter, nil
}
