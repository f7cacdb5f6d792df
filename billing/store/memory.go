// Package store provides billing.Store implementations.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/arunk89-byte/billing-pr-final/billing"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu        sync.RWMutex
	customers map[billing.CustomerID]billing.Customer
	bills     []billing.Bill
	billIdx   map[billing.BillID]int
	idempKeys map[string]bool
	tariffs   []billing.Tariff
}

func NewMemory() *Memory {
	return &Memory{
		customers: make(map[billing.CustomerID]billing.Customer),
		billIdx:   make(map[billing.BillID]int),
		idempKeys: make(map[string]bool),
	}
}

// =============================================================================
// BILL STORE
// =============================================================================

func (m *Memory) AppendBill(_ context.Context, bill billing.Bill) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.appendBillLocked(bill)
}

func (m *Memory) appendBillLocked(bill billing.Bill) error {
	if bill.IdempotencyKey != "" && m.idempKeys[bill.IdempotencyKey] {
		return billing.ErrDuplicateSubmission
	}
	if bill.CreatedAt.IsZero() {
		bill.CreatedAt = time.Now().UTC()
	}
	m.billIdx[bill.ID] = len(m.bills)
	m.bills = append(m.bills, bill)
	if bill.IdempotencyKey != "" {
		m.idempKeys[bill.IdempotencyKey] = true
	}
	return nil
}

func (m *Memory) GetBill(_ context.Context, id billing.BillID) (*billing.Bill, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i, ok := m.billIdx[id]
	if !ok {
		return nil, nil
	}
	bill := m.bills[i]
	return &bill, nil
}

func (m *Memory) MarkPaid(_ context.Context, id billing.BillID, paidAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.markPaidLocked(id, paidAt)
}

func (m *Memory) markPaidLocked(id billing.BillID, paidAt time.Time) error {
	i, ok := m.billIdx[id]
	if !ok {
		return billing.ErrBillNotFound
	}
	if m.bills[i].Status != billing.StatusUnpaid {
		return &billing.AlreadyPaidError{BillID: id, PaidDate: m.bills[i].PaidDate}
	}
	m.bills[i].Status = billing.StatusPaid
	m.bills[i].PaidDate = &paidAt
	return nil
}

func (m *Memory) BillsByCustomer(_ context.Context, customerID billing.CustomerID) ([]billing.Bill, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []billing.Bill
	for _, b := range m.bills {
		if b.CustomerID == customerID {
			result = append(result, b)
		}
	}
	sortNewestFirst(result)
	return result, nil
}

func (m *Memory) AllBills(_ context.Context) ([]billing.Bill, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]billing.Bill, len(m.bills))
	copy(result, m.bills)
	sortNewestFirst(result)
	return result, nil
}

func (m *Memory) BillsByStatus(_ context.Context, status billing.BillStatus) ([]billing.Bill, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []billing.Bill
	for _, b := range m.bills {
		if b.Status == status {
			result = append(result, b)
		}
	}
	sortNewestFirst(result)
	return result, nil
}

func (m *Memory) DeleteBillsByCustomers(_ context.Context, customerIDs []billing.CustomerID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deleteBillsLocked(customerIDs)
}

func (m *Memory) deleteBillsLocked(customerIDs []billing.CustomerID) error {
	drop := make(map[billing.CustomerID]bool, len(customerIDs))
	for _, id := range customerIDs {
		drop[id] = true
	}

	kept := m.bills[:0]
	for _, b := range m.bills {
		if drop[b.CustomerID] {
			delete(m.idempKeys, b.IdempotencyKey)
			continue
		}
		kept = append(kept, b)
	}
	m.bills = kept

	m.billIdx = make(map[billing.BillID]int, len(m.bills))
	for i, b := range m.bills {
		m.billIdx[b.ID] = i
	}
	return nil
}

func sortNewestFirst(bills []billing.Bill) {
	sort.SliceStable(bills, func(i, j int) bool {
		return bills[i].IssueDate.After(bills[j].IssueDate)
	})
}

// =============================================================================
// READING STORE
// =============================================================================

func (m *Memory) GetReading(_ context.Context, customerID billing.CustomerID) (billing.ReadingState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.customers[customerID]
	if !ok {
		return billing.ReadingState{}, billing.ErrCustomerNotFound
	}
	return c.Reading, nil
}

func (m *Memory) SetReading(_ context.Context, customerID billing.CustomerID, value int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.setReadingLocked(customerID, value)
}

func (m *Memory) setReadingLocked(customerID billing.CustomerID, value int64) error {
	c, ok := m.customers[customerID]
	if !ok {
		return billing.ErrCustomerNotFound
	}
	c.Reading.PreviousReading = value
	c.Reading.Version++
	m.customers[customerID] = c
	return nil
}

func (m *Memory) AdvanceReading(_ context.Context, customerID billing.CustomerID, value, expectedVersion int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.advanceReadingLocked(customerID, value, expectedVersion)
}

func (m *Memory) advanceReadingLocked(customerID billing.CustomerID, value, expectedVersion int64) error {
	c, ok := m.customers[customerID]
	if !ok {
		return billing.ErrCustomerNotFound
	}
	if c.Reading.Version != expectedVersion {
		return &billing.ReadingConflictError{CustomerID: customerID, ExpectedVersion: expectedVersion}
	}
	c.Reading.PreviousReading = value
	c.Reading.Version++
	m.customers[customerID] = c
	return nil
}

// =============================================================================
// CUSTOMER STORE
// =============================================================================

func (m *Memory) SaveCustomer(_ context.Context, c billing.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveCustomerLocked(c)
}

func (m *Memory) saveCustomerLocked(c billing.Customer) error {
	for id, existing := range m.customers {
		if id == c.ID {
			continue
		}
		if existing.RRNumber == c.RRNumber || existing.MeterNumber == c.MeterNumber {
			return billing.ErrDuplicateCustomer
		}
	}
	if _, ok := m.customers[c.ID]; ok {
		return billing.ErrDuplicateCustomer
	}
	m.customers[c.ID] = c
	return nil
}

func (m *Memory) GetCustomer(_ context.Context, id billing.CustomerID) (*billing.Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.customers[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (m *Memory) ListCustomers(_ context.Context) ([]billing.Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]billing.Customer, 0, len(m.customers))
	for _, c := range m.customers {
		result = append(result, c)
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (m *Memory) DeleteCustomers(_ context.Context, ids []billing.CustomerID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deleteCustomersLocked(ids)
}

func (m *Memory) deleteCustomersLocked(ids []billing.CustomerID) error {
	for _, id := range ids {
		delete(m.customers, id)
	}
	return nil
}

// =============================================================================
// TARIFF STORE
// =============================================================================

func (m *Memory) SaveTariff(_ context.Context, t billing.Tariff) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tariffs = append(m.tariffs, t)
	return nil
}

func (m *Memory) CurrentTariff(_ context.Context) (*billing.Tariff, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var current *billing.Tariff
	for i := range m.tariffs {
		t := m.tariffs[i]
		if current == nil || t.EffectiveDate.After(current.EffectiveDate) {
			current = &t
		}
	}
	return current, nil
}

func (m *Memory) ListTariffs(_ context.Context) ([]billing.Tariff, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]billing.Tariff, len(m.tariffs))
	copy(result, m.tariffs)
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].EffectiveDate.After(result[j].EffectiveDate)
	})
	return result, nil
}

// =============================================================================
// TRANSACTIONAL MEMORY STORE
// =============================================================================

// TxMemory wraps Memory with transaction support.
type TxMemory struct {
	*Memory
}

func NewTxMemory() *TxMemory {
	return &TxMemory{Memory: NewMemory()}
}

// WithTx executes fn within a transaction.
// For the memory store this is simulated with a snapshot + rollback on error.
func (tm *TxMemory) WithTx(ctx context.Context, fn func(billing.Store) error) error {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	snap := tm.snapshot()
	view := &txMemoryView{parent: tm}

	if err := fn(view); err != nil {
		tm.restore(snap)
		return err
	}
	return nil
}

func (tm *TxMemory) snapshot() memorySnapshot {
	customers := make(map[billing.CustomerID]billing.Customer, len(tm.customers))
	for k, v := range tm.customers {
		customers[k] = v
	}
	bills := append([]billing.Bill{}, tm.bills...)
	billIdx := make(map[billing.BillID]int, len(tm.billIdx))
	for k, v := range tm.billIdx {
		billIdx[k] = v
	}
	idempKeys := make(map[string]bool, len(tm.idempKeys))
	for k, v := range tm.idempKeys {
		idempKeys[k] = v
	}
	tariffs := append([]billing.Tariff{}, tm.tariffs...)
	return memorySnapshot{customers: customers, bills: bills, billIdx: billIdx, idempKeys: idempKeys, tariffs: tariffs}
}

func (tm *TxMemory) restore(s memorySnapshot) {
	tm.customers = s.customers
	tm.bills = s.bills
	tm.billIdx = s.billIdx
	tm.idempKeys = s.idempKeys
	tm.tariffs = s.tariffs
}

type memorySnapshot struct {
	customers map[billing.CustomerID]billing.Customer
	bills     []billing.Bill
	billIdx   map[billing.BillID]int
	idempKeys map[string]bool
	tariffs   []billing.Tariff
}

// txMemoryView gives fn access to the parent's state without re-locking.
type txMemoryView struct {
	parent *TxMemory
}

func (tv *txMemoryView) AppendBill(_ context.Context, bill billing.Bill) error {
	return tv.parent.appendBillLocked(bill)
}

func (tv *txMemoryView) GetBill(_ context.Context, id billing.BillID) (*billing.Bill, error) {
	i, ok := tv.parent.billIdx[id]
	if !ok {
		return nil, nil
	}
	bill := tv.parent.bills[i]
	return &bill, nil
}

func (tv *txMemoryView) MarkPaid(_ context.Context, id billing.BillID, paidAt time.Time) error {
	return tv.parent.markPaidLocked(id, paidAt)
}

func (tv *txMemoryView) BillsByCustomer(_ context.Context, customerID billing.CustomerID) ([]billing.Bill, error) {
	var result []billing.Bill
	for _, b := range tv.parent.bills {
		if b.CustomerID == customerID {
			result = append(result, b)
		}
	}
	sortNewestFirst(result)
	return result, nil
}

func (tv *txMemoryView) AllBills(_ context.Context) ([]billing.Bill, error) {
	result := append([]billing.Bill{}, tv.parent.bills...)
	sortNewestFirst(result)
	return result, nil
}

func (tv *txMemoryView) BillsByStatus(_ context.Context, status billing.BillStatus) ([]billing.Bill, error) {
	var result []billing.Bill
	for _, b := range tv.parent.bills {
		if b.Status == status {
			result = append(result, b)
		}
	}
	sortNewestFirst(result)
	return result, nil
}

func (tv *txMemoryView) DeleteBillsByCustomers(_ context.Context, customerIDs []billing.CustomerID) error {
	return tv.parent.deleteBillsLocked(customerIDs)
}

func (tv *txMemoryView) GetReading(_ context.Context, customerID billing.CustomerID) (billing.ReadingState, error) {
	c, ok := tv.parent.customers[customerID]
	if !ok {
		return billing.ReadingState{}, billing.ErrCustomerNotFound
	}
	return c.Reading, nil
}

func (tv *txMemoryView) SetReading(_ context.Context, customerID billing.CustomerID, value int64) error {
	return tv.parent.setReadingLocked(customerID, value)
}

func (tv *txMemoryView) AdvanceReading(_ context.Context, customerID billing.CustomerID, value, expectedVersion int64) error {
	return tv.parent.advanceReadingLocked(customerID, value, expectedVersion)
}

func (tv *txMemoryView) SaveCustomer(_ context.Context, c billing.Customer) error {
	return tv.parent.saveCustomerLocked(c)
}

func (tv *txMemoryView) GetCustomer(_ context.Context, id billing.CustomerID) (*billing.Customer, error) {
	c, ok := tv.parent.customers[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (tv *txMemoryView) ListCustomers(_ context.Context) ([]billing.Customer, error) {
	result := make([]billing.Customer, 0, len(tv.parent.customers))
	for _, c := range tv.parent.customers {
		result = append(result, c)
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (tv *txMemoryView) DeleteCustomers(_ context.Context, ids []billing.CustomerID) error {
	return tv.parent.deleteCustomersLocked(ids)
}

func (tv *txMemoryView) SaveTariff(_ context.Context, t billing.Tariff) error {
	tv.parent.tariffs = append(tv.parent.tariffs, t)
	return nil
}

func (tv *txMemoryView) CurrentTariff(_ context.Context) (*billing.Tariff, error) {
	var current *billing.Tariff
	for i := range tv.parent.tariffs {
		t := tv.parent.tariffs[i]
		if current == nil || t.EffectiveDate.After(current.EffectiveDate) {
			current = &t
		}
	}
	return current, nil
}

func (tv *txMemoryView) ListTariffs(_ context.Context) ([]billing.Tariff, error) {
	result := append([]billing.Tariff{}, tv.parent.tariffs...)
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].EffectiveDate.After(result[j].EffectiveDate)
	})
	return result, nil
}
