// Package store keeps a SQLite history of completed forecast batches.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rpgo/lifecastor/internal/domain"

	_ "modernc.org/sqlite" // register sqlite driver
)

// ErrNotFound is returned when a batch id is not in the history.
var ErrNotFound = errors.New("batch not found")

// createdAtLayout sorts lexically in time order.
const createdAtLayout = "2006-01-02T15:04:05.000000000Z"

// Store is a SQLite-backed batch history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the history database at the given path.
func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating history dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("opening history db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the history database.
func (s *Store) Close() error {
	return s.db.Close()
}

// BatchInfo is the headline row of a stored batch.
type BatchInfo struct {
	ID                    string
	CreatedAt             time.Time
	RunCount              int
	Mode                  domain.SimulationMode
	BankruptCount         int
	BankruptcyProbability float64
	AverageBankruptcyAge  *float64
	TerminalNetWorth      decimal.Decimal
}

// SaveBatch stores the batch summary and its averaged table under a new id.
// Individual runs are not stored.
func (s *Store) SaveBatch(b *domain.BatchResult) (string, error) {
	params, err := json.Marshal(b.Parameters)
	if err != nil {
		return "", fmt.Errorf("encoding parameters: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback() }()

	created := b.GeneratedAt
	if created.IsZero() {
		created = time.Now()
	}

	id := uuid.NewString()
	var avgAge sql.NullFloat64
	if b.AverageBankruptcyAge != nil {
		avgAge = sql.NullFloat64{Float64: *b.AverageBankruptcyAge, Valid: true}
	}
	pct := b.TerminalPercentiles

	_, err = tx.Exec(`INSERT INTO batches
		(batch_id, created_at, run_count, mode, bankrupt_count, bankruptcy_probability,
		 average_bankruptcy_age, terminal_net_worth, p10, p25, p50, p75, p90, elapsed_ns, parameters)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, created.UTC().Format(createdAtLayout), b.RunCount, string(b.Parameters.Simulation.Mode),
		b.BankruptCount, b.BankruptcyProbability, avgAge, b.TerminalNetWorth,
		pct.P10, pct.P25, pct.P50, pct.P75, pct.P90, int64(b.Elapsed), string(params),
	)
	if err != nil {
		return "", fmt.Errorf("inserting batch: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO batch_years
		(batch_id, year_index, age, income, taxable_income, federal_tax, state_tax,
		 expense, leftover, cashed_savings, net_worth, retired)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", err
	}
	defer func() { _ = stmt.Close() }()

	for i, yr := range b.Averaged {
		retired := 0
		if yr.Retired {
			retired = 1
		}
		if _, err := stmt.Exec(id, i, yr.Age, yr.Income, yr.TaxableIncome, yr.FederalTax, yr.StateTax,
			yr.Expense, yr.Leftover, yr.CashedSavings, yr.NetWorth, retired); err != nil {
			return "", fmt.Errorf("inserting year %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return id, nil
}

const batchColumns = `batch_id, created_at, run_count, mode, bankrupt_count,
	bankruptcy_probability, average_bankruptcy_age, terminal_net_worth`

type scanner interface {
	Scan(dest ...any) error
}

func scanInfo(row scanner) (BatchInfo, error) {
	var info BatchInfo
	var created, mode string
	var avgAge sql.NullFloat64
	if err := row.Scan(&info.ID, &created, &info.RunCount, &mode, &info.BankruptCount,
		&info.BankruptcyProbability, &avgAge, &info.TerminalNetWorth); err != nil {
		return info, err
	}
	info.Mode = domain.SimulationMode(mode)
	if avgAge.Valid {
		v := avgAge.Float64
		info.AverageBankruptcyAge = &v
	}
	t, err := time.Parse(createdAtLayout, created)
	if err != nil {
		return info, fmt.Errorf("parsing created_at %q: %w", created, err)
	}
	info.CreatedAt = t
	return info, nil
}

// ListBatches returns up to limit batches, newest first. A limit of zero or
// less returns every batch.
func (s *Store) ListBatches(limit int) ([]BatchInfo, error) {
	query := "SELECT " + batchColumns + " FROM batches ORDER BY created_at DESC, rowid DESC"
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []BatchInfo
	for rows.Next() {
		info, err := scanInfo(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

// LatestIDs returns the ids of the n most recent batches, newest first.
func (s *Store) LatestIDs(n int) ([]string, error) {
	infos, err := s.ListBatches(n)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(infos))
	for i, info := range infos {
		ids[i] = info.ID
	}
	return ids, nil
}

// LoadBatch rebuilds a stored batch. The returned result has no individual runs.
func (s *Store) LoadBatch(id string) (*domain.BatchResult, error) {
	var b domain.BatchResult
	var created, mode, params string
	var avgAge sql.NullFloat64
	var elapsed int64
	pct := &b.TerminalPercentiles

	err := s.db.QueryRow(`SELECT created_at, run_count, mode, bankrupt_count, bankruptcy_probability,
		average_bankruptcy_age, terminal_net_worth, p10, p25, p50, p75, p90, elapsed_ns, parameters
		FROM batches WHERE batch_id = ?`, id).Scan(
		&created, &b.RunCount, &mode, &b.BankruptCount, &b.BankruptcyProbability,
		&avgAge, &b.TerminalNetWorth, &pct.P10, &pct.P25, &pct.P50, &pct.P75, &pct.P90, &elapsed, &params,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(params), &b.Parameters); err != nil {
		return nil, fmt.Errorf("decoding parameters: %w", err)
	}
	if avgAge.Valid {
		v := avgAge.Float64
		b.AverageBankruptcyAge = &v
	}
	if b.GeneratedAt, err = time.Parse(createdAtLayout, created); err != nil {
		return nil, fmt.Errorf("parsing created_at %q: %w", created, err)
	}
	b.Elapsed = time.Duration(elapsed)

	rows, err := s.db.Query(`SELECT age, income, taxable_income, federal_tax, state_tax,
		expense, leftover, cashed_savings, net_worth, retired
		FROM batch_years WHERE batch_id = ? ORDER BY year_index`, id)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var yr domain.YearRecord
		var retired int
		if err := rows.Scan(&yr.Age, &yr.Income, &yr.TaxableIncome, &yr.FederalTax, &yr.StateTax,
			&yr.Expense, &yr.Leftover, &yr.CashedSavings, &yr.NetWorth, &retired); err != nil {
			return nil, err
		}
		yr.Retired = retired != 0
		b.Averaged = append(b.Averaged, yr)
	}
	return &b, rows.Err()
}

func (s *Store) info(id string) (BatchInfo, error) {
	info, err := scanInfo(s.db.QueryRow("SELECT "+batchColumns+" FROM batches WHERE batch_id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return info, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return info, err
}
