/*
service.go - Billing orchestration

PURPOSE:
  Wires the pure engine to the store. One billing operation = one
  atomic unit: compute, append the bill, advance the reading state.
  A crash or failure between the two writes leaves neither behind.

REQUEST FLOW (SubmitReading):
  1. Load customer + reading state (value, version)
  2. Resolve the current tariff (once, explicit value)
  3. ComputeBill (pure, no side effects)
  4. WithTx: ledger append + compare-and-set reading advance

ERROR CONTRACT:
  Validation errors surface directly, no partial effects. Known
  conflicts (duplicate submission, reading conflict, already paid) pass
  through unwrapped so callers can match them. Anything else from the
  store during the commit is wrapped in ErrPersistenceFailure; the
  transaction has rolled back and a retry is safe.

NO RETRIES INSIDE:
  The service never retries. Retry policy belongs to the caller; the
  idempotency key on the bill append makes retries safe.

SEE ALSO:
  - engine.go: The computation
  - reconcile.go: The reading-state rules
  - ledger.go: The pay transition and queries
*/
package billing

import (
	"context"
	"fmt"
	"time"
)

// =============================================================================
// SERVICE
// =============================================================================

// Service orchestrates billing operations over a transactional store.
type Service struct {
	store TxStore

	// Now is the clock used for issue and paid dates. Injectable for tests.
	Now func() time.Time
}

func NewService(store TxStore) *Service {
	return &Service{store: store, Now: time.Now}
}

// Ledger returns the bill ledger over the service's store.
func (s *Service) Ledger() *Ledger {
	return NewLedger(s.store)
}

// =============================================================================
// BILLING
// =============================================================================

// SubmitReading computes a bill from the customer's stored previous
// reading and the supplied current reading, then commits the bill and
// the reading advance as one unit.
func (s *Service) SubmitReading(ctx context.Context, customerID CustomerID, currentReading int64) (*Bill, error) {
	customer, err := s.store.GetCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, ErrCustomerNotFound
	}

	tariff, err := s.store.CurrentTariff(ctx)
	if err != nil {
		return nil, err
	}
	if tariff == nil {
		return nil, ErrNoTariff
	}

	bill, err := ComputeBill(ComputeInput{
		CustomerID:      customer.ID,
		RRNumber:        customer.RRNumber,
		PreviousReading: customer.Reading.PreviousReading,
		CurrentReading:  currentReading,
		Tariff:          *tariff,
		IssueDate:       s.Now(),
	})
	if err != nil {
		return nil, err
	}
	bill.ID = NewBillID()

	// Bill append and reading advance are all-or-nothing. The version
	// observed at load time guards against an admin edit racing in.
	err = s.store.WithTx(ctx, func(tx Store) error {
		if err := NewLedger(tx).Append(ctx, bill); err != nil {
			return err
		}
		return NewReconciler(tx).ReconcileAfterBilling(ctx, customerID, currentReading, customer.Reading.Version)
	})
	if err != nil {
		if IsConflict(err) || IsClientError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistenceFailure, err)
	}

	return &bill, nil
}

// Pay records a successful payment capture for a bill.
// actingCustomer, when non-empty, must own the bill.
func (s *Service) Pay(ctx context.Context, id BillID, actingCustomer CustomerID) (*Bill, error) {
	ledger := NewLedger(s.store)
	ledger.now = s.Now
	return ledger.Pay(ctx, id, actingCustomer)
}

// =============================================================================
// READING ADMINISTRATION
// =============================================================================

// SetPreviousReading is the administrator override of a customer's
// stored reading. Unconditional; the next submission computes from it.
func (s *Service) SetPreviousReading(ctx context.Context, customerID CustomerID, value int64) error {
	customer, err := s.store.GetCustomer(ctx, customerID)
	if err != nil {
		return err
	}
	if customer == nil {
		return ErrCustomerNotFound
	}
	return NewReconciler(s.store).SetPreviousReading(ctx, customerID, value)
}

// =============================================================================
// ACCOUNTS
// =============================================================================

// RegisterCustomer opens an account with an optional opening reading.
func (s *Service) RegisterCustomer(ctx context.Context, c Customer) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = s.Now()
	}
	return s.store.SaveCustomer(ctx, c)
}

// GetCustomer returns an account record.
func (s *Service) GetCustomer(ctx context.Context, id CustomerID) (*Customer, error) {
	customer, err := s.store.GetCustomer(ctx, id)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, ErrCustomerNotFound
	}
	return customer, nil
}

// ListCustomers returns all accounts, newest first. Administrative.
func (s *Service) ListCustomers(ctx context.Context) ([]Customer, error) {
	return s.store.ListCustomers(ctx)
}

// DeleteCustomers removes accounts together with every bill they own,
// in one transaction. Administrative.
func (s *Service) DeleteCustomers(ctx context.Context, ids []CustomerID) error {
	if len(ids) == 0 {
		return nil
	}
	err := s.store.WithTx(ctx, func(tx Store) error {
		if err := tx.DeleteCustomers(ctx, ids); err != nil {
			return err
		}
		return tx.DeleteBillsByCustomers(ctx, ids)
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistenceFailure, err)
	}
	return nil
}

// =============================================================================
// TARIFFS
// =============================================================================

// SetTariff validates and appends a tariff to the history. It becomes
// current immediately when its effective date is the latest; bills
// already issued keep the values baked into them.
func (s *Service) SetTariff(ctx context.Context, t Tariff) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if t.EffectiveDate.IsZero() {
		t.EffectiveDate = s.Now()
	}
	return s.store.SaveTariff(ctx, t)
}

// CurrentTariff resolves the single active tariff.
func (s *Service) CurrentTariff(ctx context.Context) (*Tariff, error) {
	tariff, err := s.store.CurrentTariff(ctx)
	if err != nil {
		return nil, err
	}
	if tariff == nil {
		return nil, ErrNoTariff
	}
	return tariff, nil
}

// ListTariffs returns the tariff history, newest first.
func (s *Service) ListTariffs(ctx context.Context) ([]Tariff, error) {
	return s.store.ListTariffs(ctx)
}
