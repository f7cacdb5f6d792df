/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Implements billing.TxStore using SQLite. In production the same
  patterns apply to PostgreSQL - only minor SQL dialect differences.

KEY TABLES:
  customers: Account records, each owning its previous-reading state
             (previous_reading + reading_version columns)
  bills:     Issued bills; immutable except the pay transition
  tariffs:   Tariff history; current = latest effective date

CONSTRAINTS ENFORCED IN SCHEMA:
  - bills.idempotency_key UNIQUE: rejects duplicate submissions of the
    same reading pair
  - customers.rr_number / meter_number UNIQUE: one account per connection
  - The pay transition is a guarded UPDATE (WHERE status = 'unpaid');
    zero rows affected means the bill was already settled

OPTIMISTIC LOCKING:
  AdvanceReading is a compare-and-set on reading_version. An
  administrator edit between a customer's computation and its commit
  bumps the version, the CAS affects zero rows, and the surrounding
  transaction rolls back.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety within the process. SQLite is
  opened with WAL (Write-Ahead Logging): multiple readers don't block,
  single writer at a time, better crash recovery.

USAGE:
  store, err := sqlite.New("./data/billing.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  svc := billing.NewService(store)

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - billing/store.go: Interface definitions
  - billing/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/arunk89-byte/billing-pr-final/billing"
)

// Store implements billing.TxStore using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows a single writer; a one-connection pool also keeps
	// ":memory:" databases from splitting across pooled connections.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Customer accounts. Each row owns its reading state:
	-- previous_reading is the last recorded meter reading and
	-- reading_version increases on every write to it.
	CREATE TABLE IF NOT EXISTS customers (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT,
		rr_number TEXT NOT NULL UNIQUE,
		meter_number TEXT NOT NULL UNIQUE,
		address TEXT,
		phone TEXT,
		previous_reading INTEGER NOT NULL DEFAULT 0,
		reading_version INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_customers_created
		ON customers(created_at DESC);

	-- Issued bills. Immutable snapshots except status/paid_date.
	CREATE TABLE IF NOT EXISTS bills (
		id TEXT PRIMARY KEY,
		customer_id TEXT NOT NULL,
		rr_number TEXT NOT NULL,
		previous_reading INTEGER NOT NULL,
		current_reading INTEGER NOT NULL,
		units_consumed INTEGER NOT NULL,
		amount TEXT NOT NULL,
		rate_per_unit TEXT NOT NULL,
		minimum_charge TEXT NOT NULL,
		issue_date TEXT NOT NULL,
		due_date TEXT NOT NULL,
		status TEXT NOT NULL,
		paid_date TEXT,
		idempotency_key TEXT UNIQUE,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_bills_customer
		ON bills(customer_id, issue_date DESC);
	CREATE INDEX IF NOT EXISTS idx_bills_status
		ON bills(status);

	-- Tariff history. Current tariff = latest by effective date.
	CREATE TABLE IF NOT EXISTS tariffs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		rate_per_unit TEXT NOT NULL,
		minimum_charge TEXT NOT NULL,
		effective_date TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_tariffs_effective
		ON tariffs(effective_date DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// dbtx is satisfied by both *sql.DB and *sql.Tx so every query can run
// inside or outside a transaction.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// =============================================================================
// BILL STORE (billing.BillStore interface)
// =============================================================================

func (s *Store) AppendBill(ctx context.Context, bill billing.Bill) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return appendBill(ctx, s.db, bill)
}

func appendBill(ctx context.Context, db dbtx, bill billing.Bill) error {
	query := `
		INSERT INTO bills
		(id, customer_id, rr_number, previous_reading, current_reading, units_consumed,
		 amount, rate_per_unit, minimum_charge, issue_date, due_date, status, paid_date,
		 idempotency_key, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.ExecContext(ctx, query,
		bill.ID,
		bill.CustomerID,
		bill.RRNumber,
		bill.PreviousReading,
		bill.CurrentReading,
		bill.UnitsConsumed,
		bill.Amount.String(),
		bill.RatePerUnit.String(),
		bill.MinimumCharge.String(),
		bill.IssueDate.UTC().Format(time.RFC3339),
		bill.DueDate.UTC().Format(time.RFC3339),
		bill.Status,
		nullTime(bill.PaidDate),
		nullString(bill.IdempotencyKey),
		time.Now().UTC().Format(time.RFC3339),
	)

	if err != nil {
		if isUniqueConstraintError(err) {
			return billing.ErrDuplicateSubmission
		}
		return fmt.Errorf("failed to append bill: %w", err)
	}
	return nil
}

func (s *Store) GetBill(ctx context.Context, id billing.BillID) (*billing.Bill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getBill(ctx, s.db, id)
}

func getBill(ctx context.Context, db dbtx, id billing.BillID) (*billing.Bill, error) {
	row := db.QueryRowContext(ctx, billSelect+` WHERE id = ?`, id)
	bill, err := scanBill(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}
	return bill, nil
}

func (s *Store) MarkPaid(ctx context.Context, id billing.BillID, paidAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return markPaid(ctx, s.db, id, paidAt)
}

func markPaid(ctx context.Context, db dbtx, id billing.BillID, paidAt time.Time) error {
	res, err := db.ExecContext(ctx,
		`UPDATE bills SET status = ?, paid_date = ? WHERE id = ? AND status = ?`,
		billing.StatusPaid, paidAt.UTC().Format(time.RFC3339), id, billing.StatusUnpaid,
	)
	if err != nil {
		return fmt.Errorf("failed to mark bill paid: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		existing, err := getBill(ctx, db, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return billing.ErrBillNotFound
		}
		return &billing.AlreadyPaidError{BillID: id, PaidDate: existing.PaidDate}
	}
	return nil
}

func (s *Store) BillsByCustomer(ctx context.Context, customerID billing.CustomerID) ([]billing.Bill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return queryBills(ctx, s.db, billSelect+` WHERE customer_id = ? ORDER BY issue_date DESC, created_at DESC`, customerID)
}

func (s *Store) AllBills(ctx context.Context) ([]billing.Bill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return queryBills(ctx, s.db, billSelect+` ORDER BY issue_date DESC, created_at DESC`)
}

func (s *Store) BillsByStatus(ctx context.Context, status billing.BillStatus) ([]billing.Bill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return queryBills(ctx, s.db, billSelect+` WHERE status = ? ORDER BY issue_date DESC, created_at DESC`, status)
}

func (s *Store) DeleteBillsByCustomers(ctx context.Context, customerIDs []billing.CustomerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return deleteBillsByCustomers(ctx, s.db, customerIDs)
}

func deleteBillsByCustomers(ctx context.Context, db dbtx, customerIDs []billing.CustomerID) error {
	if len(customerIDs) == 0 {
		return nil
	}
	query := `DELETE FROM bills WHERE customer_id IN (` + placeholders(len(customerIDs)) + `)`
	_, err := db.ExecContext(ctx, query, idArgs(customerIDs)...)
	if err != nil {
		return fmt.Errorf("failed to delete bills: %w", err)
	}
	return nil
}

const billSelect = `
	SELECT id, customer_id, rr_number, previous_reading, current_reading, units_consumed,
	       amount, rate_per_unit, minimum_charge, issue_date, due_date, status, paid_date,
	       idempotency_key, created_at
	FROM bills`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBill(row rowScanner) (*billing.Bill, error) {
	var (
		bill      billing.Bill
		amount    string
		rate      string
		minCharge string
		issueAt   string
		dueAt     string
		paidAt    sql.NullString
		idemKey   sql.NullString
		createdAt string
	)

	err := row.Scan(
		&bill.ID, &bill.CustomerID, &bill.RRNumber,
		&bill.PreviousReading, &bill.CurrentReading, &bill.UnitsConsumed,
		&amount, &rate, &minCharge, &issueAt, &dueAt, &bill.Status,
		&paidAt, &idemKey, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	bill.Amount = parseDecimal(amount)
	bill.RatePerUnit = parseDecimal(rate)
	bill.MinimumCharge = parseDecimal(minCharge)
	bill.IssueDate = parseTime(issueAt)
	bill.DueDate = parseTime(dueAt)
	bill.CreatedAt = parseTime(createdAt)
	if paidAt.Valid {
		t := parseTime(paidAt.String)
		bill.PaidDate = &t
	}
	if idemKey.Valid {
		bill.IdempotencyKey = idemKey.String
	}
	return &bill, nil
}

func queryBills(ctx context.Context, db dbtx, query string, args ...any) ([]billing.Bill, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bills: %w", err)
	}
	defer rows.Close()

	var bills []billing.Bill
	for rows.Next() {
		bill, err := scanBill(rows)
		if err != nil {
			return nil, err
		}
		bills = append(bills, *bill)
	}
	return bills, rows.Err()
}

// =============================================================================
// READING STORE (billing.ReadingStore interface)
// =============================================================================

func (s *Store) GetReading(ctx context.Context, customerID billing.CustomerID) (billing.ReadingState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getReading(ctx, s.db, customerID)
}

func getReading(ctx context.Context, db dbtx, customerID billing.CustomerID) (billing.ReadingState, error) {
	var state billing.ReadingState
	err := db.QueryRowContext(ctx,
		`SELECT previous_reading, reading_version FROM customers WHERE id = ?`, customerID,
	).Scan(&state.PreviousReading, &state.Version)
	if err == sql.ErrNoRows {
		return billing.ReadingState{}, billing.ErrCustomerNotFound
	}
	if err != nil {
		return billing.ReadingState{}, fmt.Errorf("failed to get reading: %w", err)
	}
	return state, nil
}

func (s *Store) SetReading(ctx context.Context, customerID billing.CustomerID, value int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return setReading(ctx, s.db, customerID, value)
}

func setReading(ctx context.Context, db dbtx, customerID billing.CustomerID, value int64) error {
	res, err := db.ExecContext(ctx,
		`UPDATE customers SET previous_reading = ?, reading_version = reading_version + 1 WHERE id = ?`,
		value, customerID,
	)
	if err != nil {
		return fmt.Errorf("failed to set reading: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return billing.ErrCustomerNotFound
	}
	return nil
}

func (s *Store) AdvanceReading(ctx context.Context, customerID billing.CustomerID, value, expectedVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return advanceReading(ctx, s.db, customerID, value, expectedVersion)
}

// advanceReading is the compare-and-set: zero rows affected with an
// existing customer means a concurrent write bumped the version.
func advanceReading(ctx context.Context, db dbtx, customerID billing.CustomerID, value, expectedVersion int64) error {
	res, err := db.ExecContext(ctx,
		`UPDATE customers SET previous_reading = ?, reading_version = reading_version + 1
		 WHERE id = ? AND reading_version = ?`,
		value, customerID, expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("failed to advance reading: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		if _, err := getReading(ctx, db, customerID); err != nil {
			return err
		}
		return &billing.ReadingConflictError{CustomerID: customerID, ExpectedVersion: expectedVersion}
	}
	return nil
}

// =============================================================================
// CUSTOMER STORE (billing.CustomerStore interface)
// =============================================================================

func (s *Store) SaveCustomer(ctx context.Context, c billing.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveCustomer(ctx, s.db, c)
}

func saveCustomer(ctx context.Context, db dbtx, c billing.Customer) error {
	createdAt := c.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := db.ExecContext(ctx, `
		INSERT INTO customers
		(id, name, email, rr_number, meter_number, address, phone,
		 previous_reading, reading_version, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Email, c.RRNumber, c.MeterNumber, c.Address, c.Phone,
		c.Reading.PreviousReading, c.Reading.Version,
		createdAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return billing.ErrDuplicateCustomer
		}
		return fmt.Errorf("failed to save customer: %w", err)
	}
	return nil
}

func (s *Store) GetCustomer(ctx context.Context, id billing.CustomerID) (*billing.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getCustomer(ctx, s.db, id)
}

func getCustomer(ctx context.Context, db dbtx, id billing.CustomerID) (*billing.Customer, error) {
	row := db.QueryRowContext(ctx, customerSelect+` WHERE id = ?`, id)
	customer, err := scanCustomer(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	return customer, nil
}

func (s *Store) ListCustomers(ctx context.Context) ([]billing.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listCustomers(ctx, s.db)
}

func listCustomers(ctx context.Context, db dbtx) ([]billing.Customer, error) {
	rows, err := db.QueryContext(ctx, customerSelect+` ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	defer rows.Close()

	var customers []billing.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, *c)
	}
	return customers, rows.Err()
}

func (s *Store) DeleteCustomers(ctx context.Context, ids []billing.CustomerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return deleteCustomers(ctx, s.db, ids)
}

func deleteCustomers(ctx context.Context, db dbtx, ids []billing.CustomerID) error {
	if len(ids) == 0 {
		return nil
	}
	query := `DELETE FROM customers WHERE id IN (` + placeholders(len(ids)) + `)`
	_, err := db.ExecContext(ctx, query, idArgs(ids)...)
	if err != nil {
		return fmt.Errorf("failed to delete customers: %w", err)
	}
	return nil
}

const customerSelect = `
	SELECT id, name, email, rr_number, meter_number, address, phone,
	       previous_reading, reading_version, created_at
	FROM customers`

func scanCustomer(row rowScanner) (*billing.Customer, error) {
	var (
		c         billing.Customer
		email     sql.NullString
		address   sql.NullString
		phone     sql.NullString
		createdAt string
	)

	err := row.Scan(
		&c.ID, &c.Name, &email, &c.RRNumber, &c.MeterNumber, &address, &phone,
		&c.Reading.PreviousReading, &c.Reading.Version, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	c.Email = email.String
	c.Address = address.String
	c.Phone = phone.String
	c.CreatedAt = parseTime(createdAt)
	return &c, nil
}

// =============================================================================
// TARIFF STORE (billing.TariffStore interface)
// =============================================================================

func (s *Store) SaveTariff(ctx context.Context, t billing.Tariff) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveTariff(ctx, s.db, t)
}

func saveTariff(ctx context.Context, db dbtx, t billing.Tariff) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO tariffs (rate_per_unit, minimum_charge, effective_date, created_at)
		VALUES (?, ?, ?, ?)`,
		t.RatePerUnit.String(),
		t.MinimumCharge.String(),
		t.EffectiveDate.UTC().Format(time.RFC3339),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save tariff: %w", err)
	}
	return nil
}

func (s *Store) CurrentTariff(ctx context.Context) (*billing.Tariff, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return currentTariff(ctx, s.db)
}

func currentTariff(ctx context.Context, db dbtx) (*billing.Tariff, error) {
	row := db.QueryRowContext(ctx, `
		SELECT rate_per_unit, minimum_charge, effective_date
		FROM tariffs
		ORDER BY effective_date DESC, id DESC
		LIMIT 1`)

	t, err := scanTariff(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get current tariff: %w", err)
	}
	return t, nil
}

func (s *Store) ListTariffs(ctx context.Context) ([]billing.Tariff, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listTariffs(ctx, s.db)
}

func listTariffs(ctx context.Context, db dbtx) ([]billing.Tariff, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT rate_per_unit, minimum_charge, effective_date
		FROM tariffs
		ORDER BY effective_date DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tariffs: %w", err)
	}
	defer rows.Close()

	var tariffs []billing.Tariff
	for rows.Next() {
		t, err := scanTariff(rows)
		if err != nil {
			return nil, err
		}
		tariffs = append(tariffs, *t)
	}
	return tariffs, rows.Err()
}

func scanTariff(row rowScanner) (*billing.Tariff, error) {
	var rate, minCharge, effective string
	if err := row.Scan(&rate, &minCharge, &effective); err != nil {
		return nil, err
	}
	return &billing.Tariff{
		RatePerUnit:   parseDecimal(rate),
		MinimumCharge: parseDecimal(minCharge),
		EffectiveDate: parseTime(effective),
	}, nil
}

// =============================================================================
// TRANSACTIONS (billing.TxStore interface)
// =============================================================================

// WithTx executes fn within a database transaction.
func (s *Store) WithTx(ctx context.Context, fn func(billing.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&txStore{tx: sqlTx}); err != nil {
		return err
	}

	return sqlTx.Commit()
}

// txStore routes every operation through the open transaction.
type txStore struct {
	tx *sql.Tx
}

func (ts *txStore) AppendBill(ctx context.Context, bill billing.Bill) error {
	return appendBill(ctx, ts.tx, bill)
}

func (ts *txStore) GetBill(ctx context.Context, id billing.BillID) (*billing.Bill, error) {
	return getBill(ctx, ts.tx, id)
}

func (ts *txStore) MarkPaid(ctx context.Context, id billing.BillID, paidAt time.Time) error {
	return markPaid(ctx, ts.tx, id, paidAt)
}

func (ts *txStore) BillsByCustomer(ctx context.Context, customerID billing.CustomerID) ([]billing.Bill, error) {
	return queryBills(ctx, ts.tx, billSelect+` WHERE customer_id = ? ORDER BY issue_date DESC, created_at DESC`, customerID)
}

func (ts *txStore) AllBills(ctx context.Context) ([]billing.Bill, error) {
	return queryBills(ctx, ts.tx, billSelect+` ORDER BY issue_date DESC, created_at DESC`)
}

func (ts *txStore) BillsByStatus(ctx context.Context, status billing.BillStatus) ([]billing.Bill, error) {
	return queryBills(ctx, ts.tx, billSelect+` WHERE status = ? ORDER BY issue_date DESC, created_at DESC`, status)
}

func (ts *txStore) DeleteBillsByCustomers(ctx context.Context, customerIDs []billing.CustomerID) error {
	return deleteBillsByCustomers(ctx, ts.tx, customerIDs)
}

func (ts *txStore) GetReading(ctx context.Context, customerID billing.CustomerID) (billing.ReadingState, error) {
	return getReading(ctx, ts.tx, customerID)
}

func (ts *txStore) SetReading(ctx context.Context, customerID billing.CustomerID, value int64) error {
	return setReading(ctx, ts.tx, customerID, value)
}

func (ts *txStore) AdvanceReading(ctx context.Context, customerID billing.CustomerID, value, expectedVersion int64) error {
	return advanceReading(ctx, ts.tx, customerID, value, expectedVersion)
}

func (ts *txStore) SaveCustomer(ctx context.Context, c billing.Customer) error {
	return saveCustomer(ctx, ts.tx, c)
}

func (ts *txStore) GetCustomer(ctx context.Context, id billing.CustomerID) (*billing.Customer, error) {
	return getCustomer(ctx, ts.tx, id)
}

func (ts *txStore) ListCustomers(ctx context.Context) ([]billing.Customer, error) {
	return listCustomers(ctx, ts.tx)
}

func (ts *txStore) DeleteCustomers(ctx context.Context, ids []billing.CustomerID) error {
	return deleteCustomers(ctx, ts.tx, ids)
}

func (ts *txStore) SaveTariff(ctx context.Context, t billing.Tariff) error {
	return saveTariff(ctx, ts.tx, t)
}

func (ts *txStore) CurrentTariff(ctx context.Context) (*billing.Tariff, error) {
	return currentTariff(ctx, ts.tx)
}

func (ts *txStore) ListTariffs(ctx context.Context) ([]billing.Tariff, error) {
	return listTariffs(ctx, ts.tx)
}

// =============================================================================
// HELPERS
// =============================================================================

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(time.RFC3339), Valid: true}
}

func parseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func idArgs(ids []billing.CustomerID) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
