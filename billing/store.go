/*
store.go - Persistence interfaces for bills, readings, customers, tariffs

PURPOSE:
  Defines the interface between the billing logic and the database.
  Different implementations can use SQLite, PostgreSQL, or in-memory
  storage; the domain code never touches SQL.

KEY INTERFACES:
  BillStore:     Append-only bill collection + the pay transition
  ReadingStore:  Versioned per-customer previous-reading state
  CustomerStore: Account records
  TariffStore:   Tariff history, latest-by-effective-date resolution
  TxStore:       Atomic multi-write commit (bill append + reading advance)

APPEND-ONLY CONTRACT:
  Bills are never updated after issue except for the pay transition
  (status + paid date). There is no delete of individual bills; the only
  removal path is the administrative account purge, which removes a
  customer together with every bill it owns.

IDEMPOTENCY:
  Every bill append carries an idempotency key derived from the reading
  pair. If the key already exists, the append is rejected. This rejects
  duplicate submissions from network retries or user double-clicks.

COMPARE-AND-SET:
  AdvanceReading only succeeds when the stored version matches the
  version the caller observed. An administrator edit in between fails
  the commit instead of being silently overwritten.

IMPLEMENTATIONS:
  - store/sqlite: Production SQLite
  - billing/store: In-memory for testing

SEE ALSO:
  - ledger.go: Higher-level bill operations using BillStore
  - reconcile.go: Reading-state rules using ReadingStore
*/
package billing

import (
	"context"
	"time"
)

// =============================================================================
// BILL STORE
// =============================================================================

// BillStore persists issued bills.
type BillStore interface {
	// AppendBill records a new bill. Returns ErrDuplicateSubmission if
	// the idempotency key already exists.
	AppendBill(ctx context.Context, bill Bill) error

	// GetBill returns a bill by ID, or nil if it doesn't exist.
	GetBill(ctx context.Context, id BillID) (*Bill, error)

	// MarkPaid transitions a bill from unpaid to paid. Returns
	// ErrAlreadyPaid if the bill is not unpaid, ErrBillNotFound if it
	// doesn't exist. The only permitted mutation of an issued bill.
	MarkPaid(ctx context.Context, id BillID, paidAt time.Time) error

	// BillsByCustomer returns a customer's bills, newest issue date first.
	BillsByCustomer(ctx context.Context, customerID CustomerID) ([]Bill, error)

	// AllBills returns the full collection, newest issue date first.
	AllBills(ctx context.Context) ([]Bill, error)

	// BillsByStatus filters the full collection by stored status.
	BillsByStatus(ctx context.Context, status BillStatus) ([]Bill, error)

	// DeleteBillsByCustomers removes every bill owned by the given
	// customers. Used only by the administrative account purge.
	DeleteBillsByCustomers(ctx context.Context, customerIDs []CustomerID) error
}

// =============================================================================
// READING STORE
// =============================================================================

// ReadingStore holds the versioned previous-reading state owned by each
// customer account.
type ReadingStore interface {
	// GetReading returns the customer's current reading state.
	GetReading(ctx context.Context, customerID CustomerID) (ReadingState, error)

	// SetReading unconditionally overwrites the stored value and bumps
	// the version. Administrator override path.
	SetReading(ctx context.Context, customerID CustomerID, value int64) error

	// AdvanceReading sets the stored value iff the stored version still
	// equals expectedVersion, bumping the version on success. Returns
	// ErrReadingConflict when a concurrent write won the race.
	AdvanceReading(ctx context.Context, customerID CustomerID, value, expectedVersion int64) error
}

// =============================================================================
// CUSTOMER STORE
// =============================================================================

// CustomerStore persists account records.
type CustomerStore interface {
	// SaveCustomer creates an account. Returns ErrDuplicateCustomer if
	// the RR number or meter number is already registered.
	SaveCustomer(ctx context.Context, c Customer) error

	// GetCustomer returns a customer by ID, or nil if it doesn't exist.
	GetCustomer(ctx context.Context, id CustomerID) (*Customer, error)

	// ListCustomers returns all customers, newest first.
	ListCustomers(ctx context.Context) ([]Customer, error)

	// DeleteCustomers removes the given accounts.
	DeleteCustomers(ctx context.Context, ids []CustomerID) error
}

// =============================================================================
// TARIFF STORE
// =============================================================================

// TariffStore holds tariff history. The current tariff is the latest by
// effective date; issued bills are never touched by tariff changes.
type TariffStore interface {
	// SaveTariff appends a tariff to the history.
	SaveTariff(ctx context.Context, t Tariff) error

	// CurrentTariff returns the latest tariff by effective date, or nil
	// if none has been configured.
	CurrentTariff(ctx context.Context) (*Tariff, error)

	// ListTariffs returns the history, newest effective date first.
	ListTariffs(ctx context.Context) ([]Tariff, error)
}

// =============================================================================
// COMBINED STORE + TRANSACTIONS
// =============================================================================

// Store combines all persistence concerns of the billing system.
type Store interface {
	BillStore
	ReadingStore
	CustomerStore
	TariffStore
}

// TxStore wraps Store with transaction support. The billing commit
// (bill append + reading advance) must go through WithTx so a failure
// between the two writes leaves neither behind.
type TxStore interface {
	Store

	// WithTx executes fn within a transaction.
	// If fn returns error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTx(ctx context.Context, fn func(Store) error) error
}
