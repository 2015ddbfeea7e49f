package source

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/dbsmedya/pagetable/internal/generator"
	"github.com/dbsmedya/pagetable/internal/lock"
	"github.com/dbsmedya/pagetable/internal/logger"
	"github.com/dbsmedya/pagetable/internal/sqlutil"
	"github.com/dbsmedya/pagetable/internal/types"
)

// seedBatchSize is the number of rows per INSERT statement when seeding.
const seedBatchSize = 100

// recordColumns are the persisted Record fields, in scan order.
var recordColumns = []string{"first_name", "last_name", "age", "visits", "status", "progress"}

// SQLOptions configures an SQLSource.
type SQLOptions struct {
	Table       string
	MinResults  int
	MaxResults  int
	LockTimeout int // seconds to wait for the seed lock
}

// SQLSource serves pages from a MySQL table. A new query token reseeds the
// table with a freshly generated dataset under an advisory lock, so that
// concurrent reseeds of the same table are serialized.
type SQLSource struct {
	db     *sql.DB
	gen    *generator.Generator
	opts   SQLOptions
	logger *logger.Logger

	mu    sync.Mutex
	token string
}

// NewSQLSource creates a source over table in db. The table name must be a
// plain identifier.
func NewSQLSource(db *sql.DB, gen *generator.Generator, opts SQLOptions, log *logger.Logger) (*SQLSource, error) {
	if db == nil {
		return nil, fmt.Errorf("database is nil")
	}
	if _, err := sqlutil.QuoteIdentifierSafe(opts.Table); err != nil {
		return nil, fmt.Errorf("invalid table name: %w", err)
	}
	if opts.MinResults < 1 {
		opts.MinResults = 1
	}
	if opts.MaxResults < opts.MinResults {
		opts.MaxResults = opts.MinResults
	}
	if log == nil {
		log = logger.NewNop()
	}

	return &SQLSource{
		db:     db,
		gen:    gen,
		opts:   opts,
		logger: log.WithComponent("mysql-source").WithFields(map[string]interface{}{"table": opts.Table}),
	}, nil
}

// FetchPage reseeds the table if the token changed, then reads the total
// row count and the requested page. Both reads share one read-only
// transaction so the count matches the rows returned.
func (s *SQLSource) FetchPage(ctx context.Context, req types.PageRequest) (types.PageResponse, error) {
	if err := validate(req); err != nil {
		return types.PageResponse{}, err
	}

	if err := s.resolve(ctx, req.QueryToken); err != nil {
		return types.PageResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return types.PageResponse{}, &TransportError{Op: "begin read", Err: err}
	}

	var total int
	if err := tx.QueryRowContext(ctx, sqlutil.CountRows(s.opts.Table)).Scan(&total); err != nil {
		_ = tx.Rollback()
		return types.PageResponse{}, &TransportError{Op: "count", Err: err}
	}

	records, err := s.readPage(ctx, tx, req.Offset, req.PageSize, total)
	if err != nil {
		_ = tx.Rollback()
		return types.PageResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return types.PageResponse{}, &TransportError{Op: "commit read", Err: err}
	}

	return types.PageResponse{Records: records, TotalCount: total}, nil
}

// resolve reseeds the table when token differs from the last one seen.
// The token is only recorded once the seed committed, so a failed seed is
// retried on the next fetch.
func (s *SQLSource) resolve(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if token == s.token {
		return nil
	}

	span := s.opts.MaxResults - s.opts.MinResults + 1
	total := s.opts.MinResults + s.gen.Intn(span)

	if err := s.Seed(ctx, total); err != nil {
		return err
	}

	s.token = token
	s.logger.WithQuery(token).Debugw("Query changed, table reseeded", "total", total)
	return nil
}

func (s *SQLSource) readPage(ctx context.Context, tx *sql.Tx, offset, size, total int) ([]types.Record, error) {
	query := sqlutil.SelectPage(s.opts.Table, recordColumns, "id")

	rows, err := tx.QueryContext(ctx, query, size, offset)
	if err != nil {
		return nil, &TransportError{Op: "select page", Err: err}
	}
	defer rows.Close()

	capacity := total - offset
	if capacity < 0 {
		capacity = 0
	}
	if size < capacity {
		capacity = size
	}
	records := make([]types.Record, 0, capacity)
	for rows.Next() {
		var r types.Record
		var status string
		if err := rows.Scan(&r.FirstName, &r.LastName, &r.Age, &r.Visits, &status, &r.Progress); err != nil {
			return nil, &TransportError{Op: "scan row", Err: err}
		}
		st, err := types.ParseStatus(status)
		if err != nil {
			return nil, fmt.Errorf("row %d of page at offset %d: %w", len(records), offset, err)
		}
		r.Status = st
		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, &TransportError{Op: "iterate rows", Err: err}
	}

	return records, nil
}

// EnsureTable creates the backing table if it does not exist.
func (s *SQLSource) EnsureTable(ctx context.Context) error {
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
  id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
  first_name VARCHAR(64) NOT NULL,
  last_name VARCHAR(64) NOT NULL,
  age INT NOT NULL,
  visits INT NOT NULL,
  status VARCHAR(16) NOT NULL,
  progress INT NOT NULL
) ENGINE=InnoDB`, sqlutil.QuoteIdentifier(s.opts.Table))

	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return &TransportError{Op: "create table", Err: err}
	}
	return nil
}

// Seed replaces the table contents with count generated records in a single
// transaction, holding the seed lock for the table while doing so. The row
// count is checked before commit.
func (s *SQLSource) Seed(ctx context.Context, count int) error {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return &TransportError{Op: "acquire connection", Err: err}
	}
	defer conn.Close()

	seedLock := lock.NewSeedLock(conn, s.opts.Table)
	err = seedLock.WithLock(ctx, s.opts.LockTimeout, func() error {
		return s.seedTx(ctx, conn, s.gen.Generate(count))
	})
	if err != nil {
		return &TransportError{Op: "seed", Err: err}
	}

	s.logger.Infow("Table seeded", "rows", count)
	return nil
}

func (s *SQLSource) seedTx(ctx context.Context, conn *sql.Conn, dataset types.Dataset) error {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if _, err := tx.ExecContext(ctx, sqlutil.DeleteAll(s.opts.Table)); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to clear table: %w", err)
	}

	for start := 0; start < len(dataset); start += seedBatchSize {
		end := start + seedBatchSize
		if end > len(dataset) {
			end = len(dataset)
		}
		batch := dataset[start:end]

		args := make([]interface{}, 0, len(batch)*len(recordColumns))
		for _, r := range batch {
			args = append(args, r.FirstName, r.LastName, r.Age, r.Visits, string(r.Status), r.Progress)
		}

		if _, err := tx.ExecContext(ctx, sqlutil.InsertRows(s.opts.Table, recordColumns, len(batch)), args...); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to insert rows %d-%d: %w", start, end-1, err)
		}
	}

	var count int
	if err := tx.QueryRowContext(ctx, sqlutil.CountRows(s.opts.Table)).Scan(&count); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to verify seed: %w", err)
	}
	if count != len(dataset) {
		_ = tx.Rollback()
		return fmt.Errorf("seed verification failed: table has %d rows, inserted %d", count, len(dataset))
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit seed: %w", err)
	}
	return nil
}
