package billing_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/arunk89-byte/billing-pr-final/billing"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func standardTariff() billing.Tariff {
	return billing.Tariff{
		RatePerUnit:   decimal.NewFromInt(7),
		MinimumCharge: decimal.NewFromInt(100),
		EffectiveDate: time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
	}
}

func computeInput(prev, current int64) billing.ComputeInput {
	return billing.ComputeInput{
		CustomerID:      "cust-1",
		RRNumber:        "RR-1001",
		PreviousReading: prev,
		CurrentReading:  current,
		Tariff:          standardTariff(),
		IssueDate:       time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC),
	}
}

// =============================================================================
// AMOUNT COMPUTATION
// =============================================================================

func TestComputeBill_ConsumptionAboveMinimum(t *testing.T) {
	// GIVEN: readings 100 -> 150 at rate 7, minimum charge 100
	// WHEN: computing the bill
	// THEN: 50 units, amount = max(100, 350) = 350

	bill, err := billing.ComputeBill(computeInput(100, 150))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if bill.UnitsConsumed != 50 {
		t.Errorf("expected 50 units consumed, got %d", bill.UnitsConsumed)
	}
	if !bill.Amount.Equal(decimal.NewFromInt(350)) {
		t.Errorf("expected amount 350, got %v", bill.Amount)
	}
}

func TestComputeBill_MinimumChargeFloor(t *testing.T) {
	// GIVEN: readings 100 -> 105 at rate 7, minimum charge 100
	// WHEN: computing the bill
	// THEN: 5 units, amount = max(100, 35) = 100 (floor, not a surcharge)

	bill, err := billing.ComputeBill(computeInput(100, 105))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if bill.UnitsConsumed != 5 {
		t.Errorf("expected 5 units consumed, got %d", bill.UnitsConsumed)
	}
	if !bill.Amount.Equal(decimal.NewFromInt(100)) {
		t.Errorf("expected minimum charge 100, got %v", bill.Amount)
	}
}

func TestComputeBill_AmountTable(t *testing.T) {
	cases := []struct {
		name       string
		prev       int64
		current    int64
		rate       string
		minCharge  string
		wantUnits  int64
		wantAmount string
	}{
		{"zero consumption pays minimum", 200, 200, "7", "100", 0, "100"},
		{"exactly at minimum threshold", 0, 20, "5", "100", 20, "100"},
		{"just above threshold", 0, 21, "5", "100", 21, "105"},
		{"fractional rate stays exact", 100, 103, "7.5", "0", 3, "22.5"},
		{"zero minimum charge", 0, 10, "3", "0", 10, "30"},
		{"zero units with zero minimum", 50, 50, "3", "0", 0, "0"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := computeInput(tc.prev, tc.current)
			in.Tariff.RatePerUnit = billing.MustDecimal(tc.rate)
			in.Tariff.MinimumCharge = billing.MustDecimal(tc.minCharge)

			bill, err := billing.ComputeBill(in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if bill.UnitsConsumed != tc.wantUnits {
				t.Errorf("expected %d units, got %d", tc.wantUnits, bill.UnitsConsumed)
			}
			if !bill.Amount.Equal(billing.MustDecimal(tc.wantAmount)) {
				t.Errorf("expected amount %s, got %v", tc.wantAmount, bill.Amount)
			}
		})
	}
}

// =============================================================================
// VALIDATION ORDER
// =============================================================================

func TestComputeBill_NonMonotonicRejected(t *testing.T) {
	// GIVEN: current reading 100 below previous 150
	// WHEN: computing the bill
	// THEN: NonMonotonicReading error, no bill produced

	_, err := billing.ComputeBill(computeInput(150, 100))
	if !errors.Is(err, billing.ErrNonMonotonicReading) {
		t.Fatalf("expected ErrNonMonotonicReading, got %v", err)
	}

	var detail *billing.NonMonotonicReadingError
	if !errors.As(err, &detail) {
		t.Fatal("expected NonMonotonicReadingError detail")
	}
	if detail.PreviousReading != 150 || detail.CurrentReading != 100 {
		t.Errorf("expected detail 150/100, got %d/%d", detail.PreviousReading, detail.CurrentReading)
	}
}

func TestComputeBill_NegativeReadingsRejected(t *testing.T) {
	for _, tc := range []struct {
		name    string
		prev    int64
		current int64
	}{
		{"negative previous", -1, 100},
		{"negative current", 100, -1},
		{"both negative", -5, -1},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := billing.ComputeBill(computeInput(tc.prev, tc.current))
			if !errors.Is(err, billing.ErrInvalidReading) {
				t.Fatalf("expected ErrInvalidReading, got %v", err)
			}
		})
	}
}

func TestComputeBill_InvalidReadingWinsOverNonMonotonic(t *testing.T) {
	// A negative current reading is also below the previous reading;
	// the negativity check must fire first.
	_, err := billing.ComputeBill(computeInput(100, -1))
	if !errors.Is(err, billing.ErrInvalidReading) {
		t.Fatalf("expected ErrInvalidReading to win, got %v", err)
	}
}

func TestComputeBill_InvalidTariffRejected(t *testing.T) {
	in := computeInput(100, 150)
	in.Tariff.RatePerUnit = decimal.Zero

	_, err := billing.ComputeBill(in)
	if !errors.Is(err, billing.ErrInvalidTariff) {
		t.Fatalf("expected ErrInvalidTariff, got %v", err)
	}

	in = computeInput(100, 150)
	in.Tariff.MinimumCharge = decimal.NewFromInt(-1)
	if _, err := billing.ComputeBill(in); !errors.Is(err, billing.ErrInvalidTariff) {
		t.Fatalf("expected ErrInvalidTariff for negative minimum charge, got %v", err)
	}
}

// =============================================================================
// BILL SNAPSHOT
// =============================================================================

func TestComputeBill_SnapshotFields(t *testing.T) {
	// The bill bakes in identity, tariff values, due date and unpaid status.
	in := computeInput(100, 150)
	bill, err := billing.ComputeBill(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if bill.CustomerID != "cust-1" || bill.RRNumber != "RR-1001" {
		t.Errorf("expected customer identity baked in, got %s/%s", bill.CustomerID, bill.RRNumber)
	}
	if !bill.RatePerUnit.Equal(in.Tariff.RatePerUnit) || !bill.MinimumCharge.Equal(in.Tariff.MinimumCharge) {
		t.Error("expected tariff values baked into bill")
	}
	if bill.Status != billing.StatusUnpaid {
		t.Errorf("expected initial status unpaid, got %s", bill.Status)
	}

	wantDue := in.IssueDate.AddDate(0, 0, 30)
	if !bill.DueDate.Equal(wantDue) {
		t.Errorf("expected due date %v, got %v", wantDue, bill.DueDate)
	}
	if bill.IdempotencyKey != billing.SubmissionKey("cust-1", 100, 150) {
		t.Errorf("unexpected idempotency key %q", bill.IdempotencyKey)
	}
}

func TestBill_OverdueAnnotation(t *testing.T) {
	bill, err := billing.ComputeBill(computeInput(100, 150))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	beforeDue := bill.DueDate.AddDate(0, 0, -1)
	afterDue := bill.DueDate.AddDate(0, 0, 1)

	if bill.DisplayStatus(beforeDue) != billing.StatusUnpaid {
		t.Error("expected unpaid before due date")
	}
	if bill.DisplayStatus(afterDue) != billing.StatusOverdue {
		t.Error("expected overdue annotation after due date")
	}

	// Paid bills never show overdue.
	paidAt := afterDue
	bill.Status = billing.StatusPaid
	bill.PaidDate = &paidAt
	if bill.DisplayStatus(afterDue) != billing.StatusPaid {
		t.Error("paid bill must not be annotated overdue")
	}
}
