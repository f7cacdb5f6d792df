/*
handlers.go - HTTP API handlers for the water billing system

PURPOSE:
  Exposes the billing engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Customers:
    GET    /api/customers               List all customers (admin)
    POST   /api/customers               Register customer
    GET    /api/customers/{id}          Get customer details
    POST   /api/customers/{id}/bills    Submit meter reading, get bill
    GET    /api/customers/{id}/bills    Bill history

  Bills:
    POST   /api/bills/{id}/pay          Record payment

  Tariffs:
    GET    /api/tariffs/current         Active tariff

  Admin:
    GET    /api/admin/bills             Full bill ledger (?status= filter)
    PATCH  /api/admin/customers/{id}/reading  Override previous reading
    DELETE /api/admin/customers         Purge accounts with their bills
    GET    /api/admin/tariffs           Tariff history
    POST   /api/admin/tariffs           Put a new tariff in force

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 403: Cross-account access
  - 404: Resource not found
  - 409: Conflict (already paid, duplicate submission, reading conflict)
  - 500: Internal errors

SECURITY NOTE:
  No authentication middleware. Acting-customer identity is an explicit
  request field checked against the bill's owner; session mechanics are
  deliberately outside this service.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/arunk89-byte/billing-pr-final/billing"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Service *billing.Service
}

// NewHandler creates a new handler over the given store.
func NewHandler(store billing.TxStore) *Handler {
	return &Handler{Service: billing.NewService(store)}
}

// =============================================================================
// CUSTOMER HANDLERS
// =============================================================================

// ListCustomers returns all customer accounts, newest first.
// GET /api/customers
func (h *Handler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.Service.ListCustomers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list customers", err)
		return
	}

	dtos := make([]CustomerDTO, len(customers))
	for i, c := range customers {
		dtos[i] = toCustomerDTO(c)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// RegisterCustomer opens an account.
// POST /api/customers
func (h *Handler) RegisterCustomer(w http.ResponseWriter, r *http.Request) {
	var req RegisterCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	customer := billing.Customer{
		ID:          billing.CustomerID(req.ID),
		Name:        req.Name,
		Email:       req.Email,
		RRNumber:    req.RRNumber,
		MeterNumber: req.MeterNumber,
		Address:     req.Address,
		Phone:       req.Phone,
		Reading:     billing.ReadingState{PreviousReading: req.PreviousReading},
	}

	if err := h.Service.RegisterCustomer(r.Context(), customer); err != nil {
		writeDomainError(w, "Failed to register customer", err)
		return
	}

	writeJSON(w, http.StatusCreated, toCustomerDTO(customer))
}

// GetCustomer returns a single account with its stored previous reading.
// GET /api/customers/{id}
func (h *Handler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	id := billing.CustomerID(chi.URLParam(r, "id"))

	customer, err := h.Service.GetCustomer(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to get customer", err)
		return
	}
	writeJSON(w, http.StatusOK, toCustomerDTO(*customer))
}

// =============================================================================
// BILLING HANDLERS
// =============================================================================

// SubmitReading computes and records a bill from a new meter reading.
// POST /api/customers/{id}/bills
func (h *Handler) SubmitReading(w http.ResponseWriter, r *http.Request) {
	customerID := billing.CustomerID(chi.URLParam(r, "id"))

	var req SubmitReadingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	bill, err := h.Service.SubmitReading(r.Context(), customerID, req.CurrentReading)
	if err != nil {
		writeDomainError(w, "Failed to compute bill", err)
		return
	}

	writeJSON(w, http.StatusCreated, toBillDTO(*bill, h.Service.Now()))
}

// ListCustomerBills returns a customer's bill history, newest first.
// GET /api/customers/{id}/bills
func (h *Handler) ListCustomerBills(w http.ResponseWriter, r *http.Request) {
	customerID := billing.CustomerID(chi.URLParam(r, "id"))

	bills, err := h.Service.Ledger().Bills(r.Context(), customerID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list bills", err)
		return
	}
	writeJSON(w, http.StatusOK, toBillDTOs(bills, h.Service.Now()))
}

// PayBill records a successful payment capture.
// POST /api/bills/{id}/pay
func (h *Handler) PayBill(w http.ResponseWriter, r *http.Request) {
	billID := billing.BillID(chi.URLParam(r, "id"))

	var req PayBillRequest
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}

	bill, err := h.Service.Pay(r.Context(), billID, billing.CustomerID(req.CustomerID))
	if err != nil {
		writeDomainError(w, "Failed to pay bill", err)
		return
	}
	writeJSON(w, http.StatusOK, toBillDTO(*bill, h.Service.Now()))
}

// =============================================================================
// ADMIN HANDLERS
// =============================================================================

// ListAllBills returns the full ledger, optionally filtered by status.
// GET /api/admin/bills?status=paid
func (h *Handler) ListAllBills(w http.ResponseWriter, r *http.Request) {
	ledger := h.Service.Ledger()

	var (
		bills []billing.Bill
		err   error
	)
	switch status := r.URL.Query().Get("status"); status {
	case "":
		bills, err = ledger.AllBills(r.Context())
	case string(billing.StatusPaid):
		bills, err = ledger.PaidBills(r.Context())
	default:
		bills, err = h.Service.Ledger().AllBills(r.Context())
		if err == nil {
			filtered := bills[:0]
			now := h.Service.Now()
			for _, b := range bills {
				if string(b.DisplayStatus(now)) == status {
					filtered = append(filtered, b)
				}
			}
			bills = filtered
		}
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list bills", err)
		return
	}
	writeJSON(w, http.StatusOK, toBillDTOs(bills, h.Service.Now()))
}

// UpdatePreviousReading overrides a customer's stored previous reading.
// PATCH /api/admin/customers/{id}/reading
func (h *Handler) UpdatePreviousReading(w http.ResponseWriter, r *http.Request) {
	customerID := billing.CustomerID(chi.URLParam(r, "id"))

	var req UpdateReadingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.Service.SetPreviousReading(r.Context(), customerID, req.PreviousReading); err != nil {
		writeDomainError(w, "Failed to update previous reading", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":          "Previous reading updated successfully",
		"customer_id":      string(customerID),
		"previous_reading": req.PreviousReading,
	})
}

// DeleteCustomers purges accounts together with every bill they own.
// DELETE /api/admin/customers
func (h *Handler) DeleteCustomers(w http.ResponseWriter, r *http.Request) {
	var req DeleteCustomersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if len(req.CustomerIDs) == 0 {
		writeError(w, http.StatusBadRequest, "No customer IDs provided", nil)
		return
	}

	ids := make([]billing.CustomerID, len(req.CustomerIDs))
	for i, id := range req.CustomerIDs {
		ids[i] = billing.CustomerID(id)
	}

	if err := h.Service.DeleteCustomers(r.Context(), ids); err != nil {
		writeDomainError(w, "Failed to delete customers", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Customers and their bills deleted successfully",
		"deleted": len(ids),
	})
}

// =============================================================================
// TARIFF HANDLERS
// =============================================================================

// GetCurrentTariff returns the active tariff.
// GET /api/tariffs/current
func (h *Handler) GetCurrentTariff(w http.ResponseWriter, r *http.Request) {
	tariff, err := h.Service.CurrentTariff(r.Context())
	if err != nil {
		writeDomainError(w, "Failed to get current tariff", err)
		return
	}
	writeJSON(w, http.StatusOK, toTariffDTO(*tariff))
}

// ListTariffs returns the tariff history, newest first.
// GET /api/admin/tariffs
func (h *Handler) ListTariffs(w http.ResponseWriter, r *http.Request) {
	tariffs, err := h.Service.ListTariffs(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list tariffs", err)
		return
	}

	dtos := make([]TariffDTO, len(tariffs))
	for i, t := range tariffs {
		dtos[i] = toTariffDTO(t)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// SetTariff puts a new tariff in force for subsequent computations.
// POST /api/admin/tariffs
func (h *Handler) SetTariff(w http.ResponseWriter, r *http.Request) {
	var req SetTariffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	tariff := billing.Tariff{
		RatePerUnit:   decimal.NewFromFloat(req.RatePerUnit),
		MinimumCharge: decimal.NewFromFloat(req.MinimumCharge),
	}
	if req.EffectiveDate != "" {
		effective, err := time.Parse("2006-01-02", req.EffectiveDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid effective_date format (use YYYY-MM-DD)", err)
			return
		}
		tariff.EffectiveDate = effective
	}

	if err := h.Service.SetTariff(r.Context(), tariff); err != nil {
		writeDomainError(w, "Failed to set tariff", err)
		return
	}

	writeJSON(w, http.StatusCreated, toTariffDTO(tariff))
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps billing errors onto HTTP status codes.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case billing.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	case errors.Is(err, billing.ErrCustomerMismatch):
		writeError(w, http.StatusForbidden, message, err)
	case billing.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case billing.IsConflict(err):
		writeError(w, http.StatusConflict, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}
