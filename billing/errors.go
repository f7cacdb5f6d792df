/*
errors.go - Centralized error types for the billing engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Callers match with errors.Is / errors.As; the HTTP layer maps these
  onto status codes.

ERROR CATEGORIES:
  1. Validation errors - bad readings or tariffs, rejected before any
     computation or mutation
  2. State errors - illegal bill transitions, cross-account access
  3. Persistence errors - store failures and commit conflicts

USAGE:
    if errors.Is(err, billing.ErrNonMonotonicReading) {
        // 400, nothing was written
    }

SEE ALSO:
  - engine.go: Returns validation errors
  - ledger.go, reconcile.go: Return state and conflict errors
*/
package billing

import (
	"errors"
	"fmt"
	"time"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidReading is returned when a negative reading value is
	// supplied. Rejected before any computation or mutation.
	ErrInvalidReading = errors.New("invalid reading: value cannot be negative")

	// ErrNonMonotonicReading is returned when the current reading is less
	// than the previous reading. No bill is created, no reading mutated.
	ErrNonMonotonicReading = errors.New("current reading cannot be less than previous reading")

	// ErrInvalidTariff is returned when a tariff violates its invariants.
	ErrInvalidTariff = errors.New("invalid tariff")

	// ErrAlreadyPaid is returned when payment is attempted on a bill that
	// is not unpaid. Surfaces duplicate-payment attempts.
	ErrAlreadyPaid = errors.New("bill already paid")

	// ErrCustomerMismatch is returned when a bill's customer/RR pairing
	// does not match the acting customer.
	ErrCustomerMismatch = errors.New("bill does not belong to this customer")

	// ErrDuplicateSubmission is returned when a bill with the same
	// submission idempotency key already exists.
	ErrDuplicateSubmission = errors.New("duplicate bill submission")

	// ErrReadingConflict is returned when the reading state changed
	// between computation and commit (an administrator edit won the
	// race). Nothing is written; safe to retry with the fresh reading.
	ErrReadingConflict = errors.New("reading state changed concurrently")

	// ErrPersistenceFailure wraps store errors during the atomic commit.
	// No partial state survives; safe to retry.
	ErrPersistenceFailure = errors.New("persistence failure")

	// ErrBillNotFound is returned when a referenced bill doesn't exist.
	ErrBillNotFound = errors.New("bill not found")

	// ErrCustomerNotFound is returned when a referenced customer doesn't exist.
	ErrCustomerNotFound = errors.New("customer not found")

	// ErrNoTariff is returned when no tariff has been configured yet.
	ErrNoTariff = errors.New("no tariff configured")

	// ErrInvalidCustomer is returned when an account record is missing
	// required fields.
	ErrInvalidCustomer = errors.New("invalid customer: id, name, rr number and meter number are required")

	// ErrDuplicateCustomer is returned when the RR number or meter number
	// is already registered.
	ErrDuplicateCustomer = errors.New("rr number or meter number already registered")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// NonMonotonicReadingError reports the offending reading pair.
type NonMonotonicReadingError struct {
	PreviousReading int64
	CurrentReading  int64
}

func (e *NonMonotonicReadingError) Error() string {
	return fmt.Sprintf("current reading %d cannot be less than previous reading %d",
		e.CurrentReading, e.PreviousReading)
}

func (e *NonMonotonicReadingError) Unwrap() error {
	return ErrNonMonotonicReading
}

// InvalidTariffError reports which tariff invariant was violated.
type InvalidTariffError struct {
	Field  string
	Reason string
}

func (e *InvalidTariffError) Error() string {
	return fmt.Sprintf("invalid tariff: %s %s", e.Field, e.Reason)
}

func (e *InvalidTariffError) Unwrap() error {
	return ErrInvalidTariff
}

// AlreadyPaidError reports the existing payment so duplicate attempts
// can show when the bill was settled.
type AlreadyPaidError struct {
	BillID   BillID
	PaidDate *time.Time
}

func (e *AlreadyPaidError) Error() string {
	if e.PaidDate != nil {
		return fmt.Sprintf("bill %s already paid on %s", e.BillID, e.PaidDate.Format("2006-01-02"))
	}
	return fmt.Sprintf("bill %s already paid", e.BillID)
}

func (e *AlreadyPaidError) Unwrap() error {
	return ErrAlreadyPaid
}

// ReadingConflictError reports a lost compare-and-set on reading state.
type ReadingConflictError struct {
	CustomerID      CustomerID
	ExpectedVersion int64
}

func (e *ReadingConflictError) Error() string {
	return fmt.Sprintf("reading state for %s changed since version %d", e.CustomerID, e.ExpectedVersion)
}

func (e *ReadingConflictError) Unwrap() error {
	return ErrReadingConflict
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsRetryable returns true if the error might succeed on retry.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrReadingConflict) ||
		errors.Is(err, ErrPersistenceFailure)
}

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidReading) ||
		errors.Is(err, ErrNonMonotonicReading) ||
		errors.Is(err, ErrInvalidTariff) ||
		errors.Is(err, ErrInvalidCustomer)
}

// IsConflict returns true if the error indicates a state conflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrAlreadyPaid) ||
		errors.Is(err, ErrDuplicateSubmission) ||
		errors.Is(err, ErrDuplicateCustomer) ||
		errors.Is(err, ErrReadingConflict)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrBillNotFound) ||
		errors.Is(err, ErrCustomerNotFound) ||
		errors.Is(err, ErrNoTariff)
}
