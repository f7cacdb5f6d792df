/*
Package billing provides the core water-billing engine.

PURPOSE:
  This package contains the domain types and algorithms for turning a
  pair of meter readings and a tariff into a bill, and for keeping the
  customer's stored previous-reading state consistent with the bills
  that have been issued against it.

KEY CONCEPTS IN THIS FILE (types.go):
  - Tariff: Rate per unit + minimum charge, effective from a date
  - ReadingState: A customer's last recorded meter reading, versioned
  - Bill: An immutable snapshot of a billing computation
  - Customer: The account record that owns its ReadingState

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal for all money, never float
  2. Immutability: Bills bake tariff values in at issue time; a later
     tariff change never rewrites an issued bill
  3. Versioning: Every reading write bumps a version so a concurrent
     administrator edit can be detected at commit time
  4. Purity: Computation is separated from persistence (engine.go has
     no side effects; service.go owns the atomic commit)

USAGE:
  tariff := billing.Tariff{
      RatePerUnit:   decimal.NewFromInt(7),
      MinimumCharge: decimal.NewFromInt(100),
      EffectiveDate: time.Now(),
  }
  bill, err := billing.ComputeBill(billing.ComputeInput{
      PreviousReading: 100,
      CurrentReading:  150,
      Tariff:          tariff,
  })

SEE ALSO:
  - engine.go: Pure bill computation
  - ledger.go: Bill collection and the pay transition
  - reconcile.go: Reading-state reconciliation rules
*/
package billing

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type CustomerID string
type BillID string

// NewBillID returns a random bill identifier.
func NewBillID() BillID {
	buf := make([]byte, 8)
	rand.Read(buf)
	return BillID("bill-" + hex.EncodeToString(buf))
}

// SubmissionKey derives the idempotency key for a bill submission.
// Two submissions carrying the same reading pair for the same customer
// produce the same key, so the second append is rejected until the
// stored reading advances.
func SubmissionKey(customerID CustomerID, previousReading, currentReading int64) string {
	return fmt.Sprintf("%s:%d:%d", customerID, previousReading, currentReading)
}

// MustDecimal parses a decimal literal, returning zero on bad input.
// For fixtures and seed values, not for request parsing.
func MustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// =============================================================================
// TARIFF - Rate per unit + minimum charge, effective from a date
// =============================================================================

// Tariff is the pricing in force for a billing computation.
// Exactly one tariff is current at any time: the latest by EffectiveDate.
type Tariff struct {
	RatePerUnit   decimal.Decimal
	MinimumCharge decimal.Decimal
	EffectiveDate time.Time
}

// Validate enforces the tariff invariants: RatePerUnit > 0 and
// MinimumCharge >= 0.
func (t Tariff) Validate() error {
	if !t.RatePerUnit.IsPositive() {
		return &InvalidTariffError{Field: "rate_per_unit", Reason: "must be positive"}
	}
	if t.MinimumCharge.IsNegative() {
		return &InvalidTariffError{Field: "minimum_charge", Reason: "must be zero or positive"}
	}
	return nil
}

// =============================================================================
// READING STATE - Per-customer previous reading, versioned
// =============================================================================

// ReadingState is the customer's last recorded meter reading.
// Version increases on every write. Reconciliation commits with a
// compare-and-set against the version it observed, so an administrator
// edit that lands in between is detected instead of silently overwritten.
type ReadingState struct {
	PreviousReading int64
	Version         int64
}

// =============================================================================
// BILL - Immutable snapshot of a billing computation
// =============================================================================

type BillStatus string

const (
	StatusUnpaid BillStatus = "unpaid"
	StatusPaid   BillStatus = "paid"

	// StatusOverdue is advisory: an unpaid bill past its due date.
	// It is computed at read time, never stored as a transition.
	StatusOverdue BillStatus = "overdue"
)

// Bill records one billing computation. Everything except Status and
// PaidDate is immutable once issued; the tariff values are baked in so
// later tariff changes never alter an issued bill.
type Bill struct {
	ID         BillID
	CustomerID CustomerID
	RRNumber   string

	PreviousReading int64
	CurrentReading  int64
	UnitsConsumed   int64

	Amount        decimal.Decimal
	RatePerUnit   decimal.Decimal
	MinimumCharge decimal.Decimal

	IssueDate time.Time
	DueDate   time.Time

	Status   BillStatus
	PaidDate *time.Time

	// IdempotencyKey rejects duplicate submissions of the same reading pair.
	IdempotencyKey string

	CreatedAt time.Time
}

// OverdueAsOf reports whether the bill is unpaid and past its due date.
func (b Bill) OverdueAsOf(now time.Time) bool {
	return b.Status == StatusUnpaid && now.After(b.DueDate)
}

// DisplayStatus returns the status with the overdue annotation applied.
func (b Bill) DisplayStatus(now time.Time) BillStatus {
	if b.OverdueAsOf(now) {
		return StatusOverdue
	}
	return b.Status
}

// =============================================================================
// CUSTOMER - Account record, exclusive owner of its ReadingState
// =============================================================================

type Customer struct {
	ID          CustomerID
	Name        string
	Email       string
	RRNumber    string
	MeterNumber string
	Address     string
	Phone       string

	Reading ReadingState

	CreatedAt time.Time
}

// Validate checks the fields required to open an account.
func (c Customer) Validate() error {
	if c.ID == "" || c.Name == "" || c.RRNumber == "" || c.MeterNumber == "" {
		return ErrInvalidCustomer
	}
	if c.Reading.PreviousReading < 0 {
		return ErrInvalidReading
	}
	return nil
}
