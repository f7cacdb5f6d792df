/*
ledger.go - The bill ledger and its state machine

PURPOSE:
  The Ledger is the collection of issued bills per customer, with the
  single pay transition layered on top of BillStore.

STATE MACHINE:
  unpaid -> paid        via Pay (terminal)
  unpaid -> "overdue"   advisory only: an unpaid bill past its due date
                        is annotated overdue at read time, never stored

DUPLICATE PAYMENTS:
  Paying a bill that is not unpaid is rejected with AlreadyPaidError.
  Rejection (rather than a silent no-op) surfaces duplicate-payment
  attempts to the caller; PaidDate and Amount are never touched.

CROSS-ACCOUNT ACCESS:
  Pay and Bills verify the acting customer against the bill's
  customer/RR pairing when an acting customer is supplied. Administrative
  callers pass an empty acting customer and skip the check.

SEE ALSO:
  - store.go: BillStore contract
  - service.go: Atomic bill issue (append + reading advance)
*/
package billing

import (
	"context"
	"time"
)

// =============================================================================
// LEDGER
// =============================================================================

// Ledger exposes the bill collection and the pay transition.
type Ledger struct {
	store BillStore
	now   func() time.Time
}

func NewLedger(store BillStore) *Ledger {
	return &Ledger{store: store, now: time.Now}
}

// Append records a newly issued bill. Fails with ErrDuplicateSubmission
// when the same reading pair was already submitted.
func (l *Ledger) Append(ctx context.Context, bill Bill) error {
	return l.store.AppendBill(ctx, bill)
}

// Pay transitions a bill from unpaid to paid and stamps the paid date.
// actingCustomer, when non-empty, must match the bill's owner.
func (l *Ledger) Pay(ctx context.Context, id BillID, actingCustomer CustomerID) (*Bill, error) {
	bill, err := l.store.GetBill(ctx, id)
	if err != nil {
		return nil, err
	}
	if bill == nil {
		return nil, ErrBillNotFound
	}
	if actingCustomer != "" && bill.CustomerID != actingCustomer {
		return nil, ErrCustomerMismatch
	}
	if bill.Status != StatusUnpaid {
		return nil, &AlreadyPaidError{BillID: id, PaidDate: bill.PaidDate}
	}

	paidAt := l.now()
	if err := l.store.MarkPaid(ctx, id, paidAt); err != nil {
		return nil, err
	}

	bill.Status = StatusPaid
	bill.PaidDate = &paidAt
	return bill, nil
}

// Bills returns a customer's bills, newest first.
func (l *Ledger) Bills(ctx context.Context, customerID CustomerID) ([]Bill, error) {
	return l.store.BillsByCustomer(ctx, customerID)
}

// AllBills returns the full ledger, newest first. Administrative.
func (l *Ledger) AllBills(ctx context.Context) ([]Bill, error) {
	return l.store.AllBills(ctx)
}

// PaidBills returns only settled bills. Administrative.
func (l *Ledger) PaidBills(ctx context.Context) ([]Bill, error) {
	return l.store.BillsByStatus(ctx, StatusPaid)
}
