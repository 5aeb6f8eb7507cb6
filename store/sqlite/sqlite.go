/*
Package sqlite provides the SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Implements every persistence surface (costing.Store, costing.RevisionStore,
  catalog.TxStore, template.TxStore, motor.TxStore) on one SQLite database.
  The same patterns apply to PostgreSQL in production, only minor SQL
  dialect differences.

KEY TABLES:
  projects / estimates / assemblies /
  assembly_parts / components:        the estimating hierarchy
  estimate_revisions:                 sequential estimate revision log
  parts / part_categories:            the catalog
  parts_price_history:                append-only price ledger
  standard_assemblies /
  standard_assembly_components:       versioned template lineages
  assembly_version_records:           template version audit log
  motors / motor_snapshots:           motor list with revision snapshots
  nec_flc:                            NEC full-load current lookup

CRITICAL INDEX:
  idx_price_history_current is a partial unique index enforcing at most
  one current-flagged ledger row per part. A violation maps to
  costing.ErrConflict, which callers treat as retryable.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging): multiple readers
  don't block, single writer at a time. Write transactions additionally
  serialize on a process-level mutex so concurrent WithTx calls queue
  instead of surfacing SQLITE_BUSY.

USAGE:
  store, err := sqlite.New("./data/estimator.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  tracker := catalog.NewTracker(store.Catalog())

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - store/memory: in-memory implementation for testing
  - catalog/pricing.go: the ledger invariants the partial index backs
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

	"github.com/voltworks/estimator/catalog"
	"github.com/voltworks/estimator/costing"
	"github.com/voltworks/estimator/motor"
	"github.com/voltworks/estimator/template"
)

// querier is the subset of database/sql shared by *sql.DB and *sql.Tx,
// so every query method runs unchanged inside or outside a transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// conn carries the data-access methods. Store embeds a db-bound conn;
// transactional views hand fn a tx-bound one.
type conn struct {
	q querier
}

// Store implements all storage interfaces using SQLite.
type Store struct {
	conn
	db *sql.DB
	mu sync.Mutex
}

// New creates a SQLite store at the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{conn: conn{q: db}, db: db}
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

// =============================================================================
// TRANSACTIONAL VIEWS
// =============================================================================
// Each domain interface wants its own WithTx signature, so the Store
// hands out thin views over the shared connection.

func (s *Store) Catalog() catalog.TxStore { return &catalogStore{s} }

func (s *Store) Templates() template.TxStore { return &templateStore{s} }

func (s *Store) Motors() motor.TxStore { return &motorStore{s} }

// Costing returns the aggregator's read surface.
func (s *Store) Costing() costing.Store { return s }

type catalogStore struct{ *Store }

func (cs *catalogStore) WithTx(ctx context.Context, fn func(catalog.Store) error) error {
	return cs.withTx(ctx, func(c conn) error { return fn(c) })
}

type templateStore struct{ *Store }

func (ts *templateStore) WithTx(ctx context.Context, fn func(template.Store) error) error {
	return ts.withTx(ctx, func(c conn) error { return fn(c) })
}

type motorStore struct{ *Store }

func (ms *motorStore) WithTx(ctx context.Context, fn func(motor.Store) error) error {
	return ms.withTx(ctx, func(c conn) error { return fn(c) })
}

// withTx runs fn against a tx-bound conn, committing on success. Write
// transactions serialize on the store mutex.
func (s *Store) withTx(ctx context.Context, fn func(conn) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(conn{q: tx}); err != nil {
		return err
	}
	return tx.Commit()
}

// =============================================================================
// SCHEMA
// =============================================================================

func (s *Store) migrate() error {
	schema := `
	-- Projects (top of the estimating hierarchy)
	CREATE TABLE IF NOT EXISTS projects (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		client TEXT,
		description TEXT,
		status TEXT,
		revision TEXT,
		remarks TEXT,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Estimates carry the labor-rate snapshot and estimate-level hours
	CREATE TABLE IF NOT EXISTS estimates (
		id TEXT PRIMARY KEY,
		project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		number TEXT,
		name TEXT NOT NULL,
		description TEXT,
		sort_order INTEGER NOT NULL DEFAULT 0,
		revision_number INTEGER NOT NULL DEFAULT 0,
		optional BOOLEAN NOT NULL DEFAULT FALSE,
		rate_engineering TEXT NOT NULL,
		rate_panel_shop TEXT NOT NULL,
		rate_machine_assembly TEXT NOT NULL,
		rate_snapshot_date TEXT,
		hours_engineering TEXT NOT NULL DEFAULT '0',
		hours_panel_shop TEXT NOT NULL DEFAULT '0',
		hours_machine_assembly TEXT NOT NULL DEFAULT '0',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_estimates_project
		ON estimates(project_id);

	-- Estimate revision log (sequential integers, unique per estimate)
	CREATE TABLE IF NOT EXISTS estimate_revisions (
		id TEXT PRIMARY KEY,
		estimate_id TEXT NOT NULL REFERENCES estimates(id) ON DELETE CASCADE,
		revision_number INTEGER NOT NULL,
		changes_summary TEXT,
		detailed_changes TEXT,
		created_by TEXT,
		created_at TEXT NOT NULL,
		UNIQUE(estimate_id, revision_number)
	);

	-- Assemblies inside an estimate, optionally applied from a template
	CREATE TABLE IF NOT EXISTS assemblies (
		id TEXT PRIMARY KEY,
		estimate_id TEXT NOT NULL REFERENCES estimates(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		description TEXT,
		sort_order INTEGER NOT NULL DEFAULT 0,
		template_id TEXT,
		template_version TEXT,
		quantity TEXT NOT NULL DEFAULT '1',
		hours_engineering TEXT NOT NULL DEFAULT '0',
		hours_panel_shop TEXT NOT NULL DEFAULT '0',
		hours_machine_assembly TEXT NOT NULL DEFAULT '0',
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_assemblies_estimate
		ON assemblies(estimate_id);

	-- Assembly lines: quantity only, unit price always read live
	CREATE TABLE IF NOT EXISTS assembly_parts (
		id TEXT PRIMARY KEY,
		assembly_id TEXT NOT NULL REFERENCES assemblies(id) ON DELETE CASCADE,
		part_id TEXT NOT NULL REFERENCES parts(id),
		quantity TEXT NOT NULL,
		unit_of_measure TEXT,
		notes TEXT,
		sort_order INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_assembly_parts_assembly
		ON assembly_parts(assembly_id);

	-- Individual components attached directly to an estimate
	CREATE TABLE IF NOT EXISTS components (
		id TEXT PRIMARY KEY,
		estimate_id TEXT NOT NULL REFERENCES estimates(id) ON DELETE CASCADE,
		part_id TEXT,
		name TEXT NOT NULL,
		description TEXT,
		part_number TEXT,
		manufacturer TEXT,
		unit_price TEXT NOT NULL DEFAULT '0',
		quantity TEXT NOT NULL DEFAULT '1',
		unit_of_measure TEXT,
		category TEXT,
		notes TEXT,
		sort_order INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_components_estimate
		ON components(estimate_id);

	-- Part categories (lookup table, referenced by id)
	CREATE TABLE IF NOT EXISTS part_categories (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		description TEXT,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Catalog parts. No price column: price is derived from the ledger.
	CREATE TABLE IF NOT EXISTS parts (
		id TEXT PRIMARY KEY,
		category_id TEXT REFERENCES part_categories(id),
		model TEXT,
		rating TEXT,
		master_item_number TEXT,
		manufacturer TEXT,
		part_number TEXT NOT NULL,
		upc TEXT,
		description TEXT,
		vendor TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_parts_part_number
		ON parts(part_number);
	CREATE INDEX IF NOT EXISTS idx_parts_master_item
		ON parts(master_item_number) WHERE master_item_number IS NOT NULL;
	CREATE INDEX IF NOT EXISTS idx_parts_upc
		ON parts(upc) WHERE upc IS NOT NULL;

	-- Price ledger (append-only, never UPDATE except the is_current flag)
	CREATE TABLE IF NOT EXISTS parts_price_history (
		id TEXT PRIMARY KEY,
		part_id TEXT NOT NULL REFERENCES parts(id) ON DELETE CASCADE,
		old_price TEXT,
		new_price TEXT NOT NULL,
		changed_at TEXT NOT NULL,
		reason TEXT,
		source TEXT,
		effective_date TEXT,
		is_current BOOLEAN NOT NULL DEFAULT FALSE
	);

	CREATE INDEX IF NOT EXISTS idx_price_history_part
		ON parts_price_history(part_id, changed_at DESC);

	-- CRITICAL: at most one current-flagged ledger row per part. Two
	-- concurrent updates racing the clear+append sequence hit this index
	-- instead of leaving two current rows.
	CREATE UNIQUE INDEX IF NOT EXISTS idx_price_history_current
		ON parts_price_history(part_id) WHERE is_current = 1;

	-- Assembly categories (lookup table)
	CREATE TABLE IF NOT EXISTS assembly_categories (
		id TEXT PRIMARY KEY,
		code TEXT,
		name TEXT NOT NULL,
		description TEXT,
		sort_order INTEGER NOT NULL DEFAULT 0,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Standard assembly versions. base_assembly_id is NULL on a lineage
	-- root; every derived version points back at the root.
	CREATE TABLE IF NOT EXISTS standard_assemblies (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		assembly_number TEXT,
		description TEXT,
		category_id TEXT REFERENCES assembly_categories(id),
		base_assembly_id TEXT,
		version TEXT NOT NULL DEFAULT '1.0',
		active BOOLEAN NOT NULL DEFAULT TRUE,
		template BOOLEAN NOT NULL DEFAULT FALSE,
		created_by TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_standard_assemblies_base
		ON standard_assemblies(base_assembly_id) WHERE base_assembly_id IS NOT NULL;

	CREATE TABLE IF NOT EXISTS standard_assembly_components (
		id TEXT PRIMARY KEY,
		standard_assembly_id TEXT NOT NULL REFERENCES standard_assemblies(id) ON DELETE CASCADE,
		part_id TEXT NOT NULL REFERENCES parts(id),
		quantity TEXT NOT NULL,
		unit_of_measure TEXT,
		notes TEXT,
		sort_order INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sa_components_assembly
		ON standard_assembly_components(standard_assembly_id);

	-- Template version audit log
	CREATE TABLE IF NOT EXISTS assembly_version_records (
		id TEXT PRIMARY KEY,
		standard_assembly_id TEXT NOT NULL REFERENCES standard_assemblies(id) ON DELETE CASCADE,
		version TEXT NOT NULL,
		notes TEXT,
		created_by TEXT,
		created_at TEXT NOT NULL
	);

	-- Motors and electrical loads
	CREATE TABLE IF NOT EXISTS motors (
		id TEXT PRIMARY KEY,
		project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		load_type TEXT NOT NULL DEFAULT 'motor',
		name TEXT NOT NULL,
		location TEXT,
		enclosure TEXT,
		frame TEXT,
		notes TEXT,
		hp TEXT,
		speed_range TEXT,
		overload_percent TEXT NOT NULL DEFAULT '1.15',
		voltage TEXT NOT NULL DEFAULT '460',
		qty INTEGER NOT NULL DEFAULT 1,
		continuous_load BOOLEAN NOT NULL DEFAULT FALSE,
		vfd_type_id TEXT,
		power_rating TEXT,
		power_unit TEXT,
		phase_config TEXT,
		nec_amps_override BOOLEAN NOT NULL DEFAULT FALSE,
		manual_amps TEXT,
		vfd_override BOOLEAN NOT NULL DEFAULT FALSE,
		selected_vfd_part_id TEXT,
		duty_type TEXT,
		sort_order INTEGER NOT NULL DEFAULT 0,
		revision_major INTEGER NOT NULL DEFAULT 1,
		revision_minor INTEGER NOT NULL DEFAULT 0,
		revision_class TEXT NOT NULL DEFAULT 'major',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_motors_project
		ON motors(project_id);

	-- Full pre-edit field snapshots, tagged with the pre-change revision
	CREATE TABLE IF NOT EXISTS motor_snapshots (
		id TEXT PRIMARY KEY,
		motor_id TEXT NOT NULL REFERENCES motors(id) ON DELETE CASCADE,
		revision_major INTEGER NOT NULL,
		revision_minor INTEGER NOT NULL,
		revision_class TEXT NOT NULL,
		fields_changed TEXT,
		load_type TEXT NOT NULL,
		name TEXT NOT NULL,
		location TEXT,
		enclosure TEXT,
		frame TEXT,
		notes TEXT,
		hp TEXT,
		speed_range TEXT,
		overload_percent TEXT NOT NULL,
		voltage TEXT NOT NULL,
		qty INTEGER NOT NULL,
		continuous_load BOOLEAN NOT NULL,
		vfd_type_id TEXT,
		power_rating TEXT,
		power_unit TEXT,
		phase_config TEXT,
		nec_amps_override BOOLEAN NOT NULL,
		manual_amps TEXT,
		vfd_override BOOLEAN NOT NULL,
		selected_vfd_part_id TEXT,
		duty_type TEXT,
		changed_by TEXT,
		change_description TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_motor_snapshots_motor
		ON motor_snapshots(motor_id, revision_major DESC, revision_minor DESC);

	-- NEC full-load current lookup (hp x voltage -> amps)
	CREATE TABLE IF NOT EXISTS nec_flc (
		hp TEXT NOT NULL,
		voltage INTEGER NOT NULL,
		amps TEXT NOT NULL,
		PRIMARY KEY (hp, voltage)
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// HELPERS
// =============================================================================

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		t, _ = time.Parse(time.RFC3339, s)
	}
	return t
}

func parseDecimal(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullDecimal(d *decimal.Decimal) sql.NullString {
	if d == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

func scanNullDecimal(ns sql.NullString) *decimal.Decimal {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	d := parseDecimal(ns.String)
	return &d
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
