/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

  Every operation has an explicit request/response record with its
  required and optional fields enumerated here; nothing dynamic reaches
  the billing engine.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/arunk89-byte/billing-pr-final/billing"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// CustomerDTO represents a customer account in API responses.
type CustomerDTO struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Email           string `json:"email,omitempty"`
	RRNumber        string `json:"rr_number"`
	MeterNumber     string `json:"meter_number"`
	Address         string `json:"address,omitempty"`
	Phone           string `json:"phone,omitempty"`
	PreviousReading int64  `json:"previous_reading"`
	CreatedAt       string `json:"created_at,omitempty"`
}

// RegisterCustomerRequest is the request to open an account.
type RegisterCustomerRequest struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Email           string `json:"email,omitempty"`
	RRNumber        string `json:"rr_number"`
	MeterNumber     string `json:"meter_number"`
	Address         string `json:"address,omitempty"`
	Phone           string `json:"phone,omitempty"`
	PreviousReading int64  `json:"previous_reading,omitempty"`
}

// SubmitReadingRequest is the request to compute a bill from a new
// meter reading. The previous reading comes from the stored account
// state, never from the client.
type SubmitReadingRequest struct {
	CurrentReading int64 `json:"current_reading"`
}

// BillDTO represents an issued bill.
type BillDTO struct {
	ID              string  `json:"id"`
	CustomerID      string  `json:"customer_id"`
	RRNumber        string  `json:"rr_number"`
	PreviousReading int64   `json:"previous_reading"`
	CurrentReading  int64   `json:"current_reading"`
	UnitsConsumed   int64   `json:"units_consumed"`
	Amount          float64 `json:"amount"`
	RatePerUnit     float64 `json:"rate_per_unit"`
	MinimumCharge   float64 `json:"minimum_charge"`
	IssueDate       string  `json:"issue_date"`
	DueDate         string  `json:"due_date"`
	Status          string  `json:"status"`
	PaidDate        string  `json:"paid_date,omitempty"`
}

// PayBillRequest carries the acting customer for the ownership check.
// Administrative callers omit customer_id.
type PayBillRequest struct {
	CustomerID string `json:"customer_id,omitempty"`
}

// UpdateReadingRequest is the administrator override of a stored reading.
type UpdateReadingRequest struct {
	PreviousReading int64 `json:"previous_reading"`
}

// DeleteCustomersRequest names the accounts to purge (bills included).
type DeleteCustomersRequest struct {
	CustomerIDs []string `json:"customer_ids"`
}

// TariffDTO represents a tariff in API responses.
type TariffDTO struct {
	RatePerUnit   float64 `json:"rate_per_unit"`
	MinimumCharge float64 `json:"minimum_charge"`
	EffectiveDate string  `json:"effective_date"`
}

// SetTariffRequest is the request to put a new tariff in force.
type SetTariffRequest struct {
	RatePerUnit   float64 `json:"rate_per_unit"`
	MinimumCharge float64 `json:"minimum_charge"`
	EffectiveDate string  `json:"effective_date,omitempty"` // YYYY-MM-DD, defaults to today
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toCustomerDTO(c billing.Customer) CustomerDTO {
	return CustomerDTO{
		ID:              string(c.ID),
		Name:            c.Name,
		Email:           c.Email,
		RRNumber:        c.RRNumber,
		MeterNumber:     c.MeterNumber,
		Address:         c.Address,
		Phone:           c.Phone,
		PreviousReading: c.Reading.PreviousReading,
		CreatedAt:       c.CreatedAt.Format(time.RFC3339),
	}
}

func toBillDTO(b billing.Bill, now time.Time) BillDTO {
	amount, _ := b.Amount.Float64()
	rate, _ := b.RatePerUnit.Float64()
	minCharge, _ := b.MinimumCharge.Float64()

	dto := BillDTO{
		ID:              string(b.ID),
		CustomerID:      string(b.CustomerID),
		RRNumber:        b.RRNumber,
		PreviousReading: b.PreviousReading,
		CurrentReading:  b.CurrentReading,
		UnitsConsumed:   b.UnitsConsumed,
		Amount:          amount,
		RatePerUnit:     rate,
		MinimumCharge:   minCharge,
		IssueDate:       b.IssueDate.Format("2006-01-02"),
		DueDate:         b.DueDate.Format("2006-01-02"),
		Status:          string(b.DisplayStatus(now)),
	}
	if b.PaidDate != nil {
		dto.PaidDate = b.PaidDate.Format("2006-01-02")
	}
	return dto
}

func toBillDTOs(bills []billing.Bill, now time.Time) []BillDTO {
	dtos := make([]BillDTO, len(bills))
	for i, b := range bills {
		dtos[i] = toBillDTO(b, now)
	}
	return dtos
}

func toTariffDTO(t billing.Tariff) TariffDTO {
	rate, _ := t.RatePerUnit.Float64()
	minCharge, _ := t.MinimumCharge.Float64()
	return TariffDTO{
		RatePerUnit:   rate,
		MinimumCharge: minCharge,
		EffectiveDate: t.EffectiveDate.Format("2006-01-02"),
	}
}
