package billing_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arunk89-byte/billing-pr-final/billing"
	"github.com/arunk89-byte/billing-pr-final/billing/store"
)

// =============================================================================
// TEST FIXTURES
// =============================================================================

func issuedBill(id billing.BillID, customerID billing.CustomerID, issueDate time.Time) billing.Bill {
	return billing.Bill{
		ID:              id,
		CustomerID:      customerID,
		RRNumber:        "RR-1001",
		PreviousReading: 100,
		CurrentReading:  150,
		UnitsConsumed:   50,
		Amount:          billing.MustDecimal("350"),
		RatePerUnit:     billing.MustDecimal("7"),
		MinimumCharge:   billing.MustDecimal("100"),
		IssueDate:       issueDate,
		DueDate:         issueDate.AddDate(0, 0, billing.DueInDays),
		Status:          billing.StatusUnpaid,
	}
}

// =============================================================================
// PAY TRANSITION
// =============================================================================

func TestLedger_PayTransition(t *testing.T) {
	// GIVEN: an unpaid bill
	// WHEN: the owning customer pays it
	// THEN: status becomes paid with a paid date, and the change persists

	mem := store.NewMemory()
	ledger := billing.NewLedger(mem)
	ctx := context.Background()

	issueDate := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, ledger.Append(ctx, issuedBill("bill-1", "cust-1", issueDate)))

	paid, err := ledger.Pay(ctx, "bill-1", "cust-1")
	require.NoError(t, err)

	assert.Equal(t, billing.StatusPaid, paid.Status)
	require.NotNil(t, paid.PaidDate)
	assert.False(t, paid.PaidDate.Before(issueDate), "paid date must not precede issue date")

	stored, err := mem.GetBill(ctx, "bill-1")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, billing.StatusPaid, stored.Status)
	assert.NotNil(t, stored.PaidDate)
}

func TestLedger_PayTwiceRejected(t *testing.T) {
	// GIVEN: a bill already paid
	// WHEN: payment is attempted again
	// THEN: AlreadyPaidError carrying the original paid date; amount and
	//       paid date unchanged

	mem := store.NewMemory()
	ledger := billing.NewLedger(mem)
	ctx := context.Background()

	issueDate := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, ledger.Append(ctx, issuedBill("bill-1", "cust-1", issueDate)))

	first, err := ledger.Pay(ctx, "bill-1", "cust-1")
	require.NoError(t, err)

	_, err = ledger.Pay(ctx, "bill-1", "cust-1")
	require.ErrorIs(t, err, billing.ErrAlreadyPaid)
	assert.True(t, billing.IsConflict(err))

	var already *billing.AlreadyPaidError
	require.ErrorAs(t, err, &already)
	assert.Equal(t, billing.BillID("bill-1"), already.BillID)
	require.NotNil(t, already.PaidDate)
	assert.True(t, already.PaidDate.Equal(*first.PaidDate), "original paid date must survive")

	stored, err := mem.GetBill(ctx, "bill-1")
	require.NoError(t, err)
	assert.True(t, stored.Amount.Equal(first.Amount), "amount must never change on a payment attempt")
}

func TestLedger_PayUnknownBill(t *testing.T) {
	ledger := billing.NewLedger(store.NewMemory())

	_, err := ledger.Pay(context.Background(), "bill-missing", "cust-1")
	assert.ErrorIs(t, err, billing.ErrBillNotFound)
	assert.True(t, billing.IsNotFound(err))
}

func TestLedger_PayCrossAccountRejected(t *testing.T) {
	// A customer cannot settle another account's bill; administrative
	// callers pass an empty acting customer and skip the check.
	mem := store.NewMemory()
	ledger := billing.NewLedger(mem)
	ctx := context.Background()

	issueDate := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, ledger.Append(ctx, issuedBill("bill-1", "cust-1", issueDate)))

	_, err := ledger.Pay(ctx, "bill-1", "cust-2")
	require.ErrorIs(t, err, billing.ErrCustomerMismatch)

	stored, err := mem.GetBill(ctx, "bill-1")
	require.NoError(t, err)
	assert.Equal(t, billing.StatusUnpaid, stored.Status, "rejected payment must not transition the bill")

	paid, err := ledger.Pay(ctx, "bill-1", "")
	require.NoError(t, err)
	assert.Equal(t, billing.StatusPaid, paid.Status)
}

// =============================================================================
// QUERIES
// =============================================================================

func TestLedger_BillsNewestFirst(t *testing.T) {
	mem := store.NewMemory()
	ledger := billing.NewLedger(mem)
	ctx := context.Background()

	jan := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC)
	mar := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, ledger.Append(ctx, issuedBill("bill-jan", "cust-1", jan)))
	require.NoError(t, ledger.Append(ctx, issuedBill("bill-mar", "cust-1", mar)))
	require.NoError(t, ledger.Append(ctx, issuedBill("bill-feb", "cust-1", feb)))
	require.NoError(t, ledger.Append(ctx, issuedBill("bill-other", "cust-2", feb)))

	bills, err := ledger.Bills(ctx, "cust-1")
	require.NoError(t, err)
	require.Len(t, bills, 3)
	assert.Equal(t, billing.BillID("bill-mar"), bills[0].ID)
	assert.Equal(t, billing.BillID("bill-feb"), bills[1].ID)
	assert.Equal(t, billing.BillID("bill-jan"), bills[2].ID)

	all, err := ledger.AllBills(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestLedger_PaidBillsFilter(t *testing.T) {
	mem := store.NewMemory()
	ledger := billing.NewLedger(mem)
	ctx := context.Background()

	issueDate := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, ledger.Append(ctx, issuedBill("bill-1", "cust-1", issueDate)))
	require.NoError(t, ledger.Append(ctx, issuedBill("bill-2", "cust-1", issueDate)))

	_, err := ledger.Pay(ctx, "bill-1", "cust-1")
	require.NoError(t, err)

	paid, err := ledger.PaidBills(ctx)
	require.NoError(t, err)
	require.Len(t, paid, 1)
	assert.Equal(t, billing.BillID("bill-1"), paid[0].ID)
}

func TestLedger_DuplicateSubmissionKeyRejected(t *testing.T) {
	mem := store.NewMemory()
	ledger := billing.NewLedger(mem)
	ctx := context.Background()

	issueDate := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	first := issuedBill("bill-1", "cust-1", issueDate)
	first.IdempotencyKey = billing.SubmissionKey("cust-1", 100, 150)
	require.NoError(t, ledger.Append(ctx, first))

	second := issuedBill("bill-2", "cust-1", issueDate)
	second.IdempotencyKey = billing.SubmissionKey("cust-1", 100, 150)
	assert.ErrorIs(t, ledger.Append(ctx, second), billing.ErrDuplicateSubmission)
}
