/*
reconcile.go - Reading-state reconciliation rules

PURPOSE:
  Keeps the stored previousReading consistent with the latest accepted
  bill, and defines precedence when administrator edits race with
  customer bill submissions.

PRECEDENCE:
  Every reading write bumps a version. Reconciliation after billing
  commits with a compare-and-set against the version observed at
  computation time:

    - Customer submission with a stale version  -> ErrReadingConflict,
      the whole billing commit rolls back, retry reads the fresh value.
    - Administrator override                    -> unconditional write.

  The stored value is therefore always the most recent intentional
  write. An admin correction made between a customer's submission and
  its commit is never silently lost; the submission fails and recomputes
  against the correction.

INVARIANT:
  The reconciliation path never decreases the stored reading: the value
  it writes is a currentReading already validated >= previousReading at
  the observed version. Administrator overrides are exempt and may set
  any non-negative value.

SEE ALSO:
  - store.go: ReadingStore compare-and-set contract
  - service.go: Wraps reconciliation in the atomic billing commit
*/
package billing

import "context"

// =============================================================================
// RECONCILER
// =============================================================================

// Reconciler applies the reading-state transition rules.
type Reconciler struct {
	store ReadingStore
}

func NewReconciler(store ReadingStore) *Reconciler {
	return &Reconciler{store: store}
}

// ReconcileAfterBilling advances the stored previousReading to the
// reading the bill was computed from. Must run inside the same store
// transaction as the bill append; the version check fails the commit
// when a concurrent write won the race.
func (r *Reconciler) ReconcileAfterBilling(ctx context.Context, customerID CustomerID, newCurrentReading, observedVersion int64) error {
	if newCurrentReading < 0 {
		return ErrInvalidReading
	}
	return r.store.AdvanceReading(ctx, customerID, newCurrentReading, observedVersion)
}

// SetPreviousReading unconditionally overwrites the stored reading.
// Administrator override: no validation against outstanding bills, no
// version check.
func (r *Reconciler) SetPreviousReading(ctx context.Context, customerID CustomerID, value int64) error {
	if value < 0 {
		return ErrInvalidReading
	}
	return r.store.SetReading(ctx, customerID, value)
}
