/*
engine.go - Pure bill computation

PURPOSE:
  Maps (previous reading, current reading, tariff) to a bill. This is
  the one function with real invariants in the system, so it is kept
  pure: no store access, no clock access beyond the IssueDate it is
  handed, no mutation of anything.

VALIDATION ORDER (fail fast, first violated rule wins):
  1. Negative reading            -> ErrInvalidReading
  2. current < previous          -> ErrNonMonotonicReading
  3. Tariff invariants violated  -> ErrInvalidTariff
  Then: unitsConsumed = current - previous (>= 0 by construction).

AMOUNT:
  amount = max(minimumCharge, unitsConsumed * ratePerUnit)

  The minimum charge is a floor, not a surcharge. Customers below the
  threshold pay the minimum; customers above pay consumption pricing.
  Never minimumCharge + usage.

DUE DATE:
  issueDate + 30 days, fixed policy.

SEE ALSO:
  - service.go: Resolves the tariff and commits the result atomically
  - types.go: Bill and Tariff definitions
*/
package billing

import (
	"time"

	"github.com/shopspring/decimal"
)

// DueInDays is the fixed payment window for every issued bill.
const DueInDays = 30

// ComputeInput carries everything a billing computation needs. The
// tariff is an explicit value resolved once by the caller, never a
// global looked up mid-computation.
type ComputeInput struct {
	CustomerID CustomerID
	RRNumber   string

	PreviousReading int64
	CurrentReading  int64

	Tariff    Tariff
	IssueDate time.Time
}

// ComputeBill validates the reading pair and produces an unpaid bill
// with the tariff values baked in. It has no side effects: the caller
// owns the ledger append and the reading-state advance.
func ComputeBill(in ComputeInput) (Bill, error) {
	if in.PreviousReading < 0 || in.CurrentReading < 0 {
		return Bill{}, ErrInvalidReading
	}
	if in.CurrentReading < in.PreviousReading {
		return Bill{}, &NonMonotonicReadingError{
			PreviousReading: in.PreviousReading,
			CurrentReading:  in.CurrentReading,
		}
	}
	if err := in.Tariff.Validate(); err != nil {
		return Bill{}, err
	}

	units := in.CurrentReading - in.PreviousReading
	amount := billAmount(units, in.Tariff)

	return Bill{
		CustomerID:      in.CustomerID,
		RRNumber:        in.RRNumber,
		PreviousReading: in.PreviousReading,
		CurrentReading:  in.CurrentReading,
		UnitsConsumed:   units,
		Amount:          amount,
		RatePerUnit:     in.Tariff.RatePerUnit,
		MinimumCharge:   in.Tariff.MinimumCharge,
		IssueDate:       in.IssueDate,
		DueDate:         in.IssueDate.AddDate(0, 0, DueInDays),
		Status:          StatusUnpaid,
		IdempotencyKey:  SubmissionKey(in.CustomerID, in.PreviousReading, in.CurrentReading),
	}, nil
}

// billAmount applies the minimum-charge floor to consumption pricing.
func billAmount(units int64, tariff Tariff) decimal.Decimal {
	usage := decimal.NewFromInt(units).Mul(tariff.RatePerUnit)
	if usage.LessThan(tariff.MinimumCharge) {
		return tariff.MinimumCharge
	}
	return usage
}
