package hilo

import (
	"context"
	"errors"
	"fmt"

	"github.com/syssam/tablegen/dialect"
	"github.com/syssam/tablegen/dialect/sql"
)

// DefaultTable is the name of the counter table.
const DefaultTable = "hilo_counters"

// Columns of the counter table.
const (
	ColumnEntity  = "entity"
	ColumnCounter = "counter"
	ColumnSkip    = "skip"
)

// SQLStore keeps the counter rows in a relational table with one row per
// entity.
type SQLStore struct {
	drv   *sql.Driver
	table string
}

// SQLOption configures a SQLStore.
type SQLOption func(*SQLStore)

// WithTable overrides the counter table name.
func WithTable(name string) SQLOption {
	return func(s *SQLStore) {
		if name != "" {
			s.table = name
		}
	}
}

// NewSQLStore returns a SQLStore using drv.
func NewSQLStore(drv *sql.Driver, opts ...SQLOption) *SQLStore {
	s := &SQLStore{drv: drv, table: DefaultTable}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Table returns the counter table name.
func (s *SQLStore) Table() string {
	return s.table
}

// ReadCounter reads the counter and block size of entity through conn. On
// Postgres and MySQL the row is locked until the surrounding transaction ends.
func (s *SQLStore) ReadCounter(ctx context.Context, conn dialect.ExecQuerier, entity string) (counter, skip int64, err error) {
	query, args := sql.Dialect(s.drv.Dialect()).
		Select(ColumnCounter, ColumnSkip).
		From(s.table).
		Where(sql.EQ(ColumnEntity, entity)).
		ForUpdate().
		Query()
	rows := &sql.Rows{}
	if err := conn.Query(ctx, query, args, rows); err != nil {
		return 0, 0, err
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return 0, 0, err
		}
		return 0, 0, fmt.Errorf("%w: %q", ErrNoCounter, entity)
	}
	if err := rows.Scan(&counter, &skip); err != nil {
		return 0, 0, fmt.Errorf("hilo: scan counter row: %w", err)
	}
	return counter, skip, rows.Err()
}

// WriteCounter persists counter for entity through conn.
func (s *SQLStore) WriteCounter(ctx context.Context, conn dialect.ExecQuerier, entity string, counter int64) error {
	query, args := sql.Dialect(s.drv.Dialect()).
		Update(s.table).
		Set(ColumnCounter, counter).
		Where(sql.EQ(ColumnEntity, entity)).
		Query()
	var res sql.Result
	if err := conn.Exec(ctx, query, args, &res); err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %q", ErrNoCounter, entity)
	}
	return nil
}

// Reserve implements Store. The read and the write run in one transaction.
func (s *SQLStore) Reserve(ctx context.Context, entity string) (counter, skip int64, err error) {
	tx, err := s.drv.Tx(ctx)
	if err != nil {
		return 0, 0, err
	}
	defer func() {
		if err != nil {
			err = rollback(tx, err)
		}
	}()
	if s.drv.Dialect() == dialect.SQLite {
		// SQLite has no row locks. Take the database write lock first so
		// that no other connection reads the counter in between.
		if err := s.touch(ctx, tx, entity); err != nil {
			return 0, 0, err
		}
	}
	counter, skip, err = s.ReadCounter(ctx, tx, entity)
	if err != nil {
		return 0, 0, err
	}
	if err := ValidateSkip(entity, skip); err != nil {
		return 0, 0, err
	}
	if err := s.WriteCounter(ctx, tx, entity, counter+1); err != nil {
		return 0, 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("hilo: commit: %w", err)
	}
	return counter, skip, nil
}

func (s *SQLStore) touch(ctx context.Context, conn dialect.ExecQuerier, entity string) error {
	query, args := sql.Dialect(s.drv.Dialect()).
		Update(s.table).
		Set(ColumnCounter, sql.Raw(sql.Quote(s.drv.Dialect(), ColumnCounter))).
		Where(sql.EQ(ColumnEntity, entity)).
		Query()
	return conn.Exec(ctx, query, args, nil)
}

// CreateTable creates the counter table if it does not exist.
func (s *SQLStore) CreateTable(ctx context.Context) error {
	d := s.drv.Dialect()
	query := fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (%s varchar(255) NOT NULL PRIMARY KEY, %s bigint NOT NULL DEFAULT 0, %s bigint NOT NULL DEFAULT 100, CHECK (%s > 0))",
		sql.QuoteTable(d, s.table),
		sql.Quote(d, ColumnEntity),
		sql.Quote(d, ColumnCounter),
		sql.Quote(d, ColumnSkip),
		sql.Quote(d, ColumnSkip),
	)
	if err := s.drv.Exec(ctx, query, []any{}, nil); err != nil {
		return fmt.Errorf("hilo: create counter table: %w", err)
	}
	return nil
}

// Seed implements Seeder.
func (s *SQLStore) Seed(ctx context.Context, entity string, counter, skip int64) (created bool, err error) {
	if err := ValidateSkip(entity, skip); err != nil {
		return false, err
	}
	tx, err := s.drv.Tx(ctx)
	if err != nil {
		return false, err
	}
	defer func() {
		if err != nil {
			err = rollback(tx, err)
		}
	}()
	_, _, err = s.ReadCounter(ctx, tx, entity)
	switch {
	case err == nil:
		return false, tx.Commit()
	case !errors.Is(err, ErrNoCounter):
		return false, err
	}
	query, args := sql.Dialect(s.drv.Dialect()).
		Insert(s.table).
		Set(ColumnEntity, entity).
		Set(ColumnCounter, counter).
		Set(ColumnSkip, skip).
		Query()
	if err := tx.Exec(ctx, query, args, nil); err != nil {
		if sql.IsUniqueConstraintError(err) {
			// Seeded concurrently by another process.
			return false, tx.Rollback()
		}
		return false, fmt.Errorf("hilo: seed %q: %w", entity, err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("hilo: commit: %w", err)
	}
	return true, nil
}

// rollback calls Rollback and wraps the given error with the rollback error
// if occurred.
func rollback(tx dialect.Tx, err error) error {
	if rerr := tx.Rollback(); rerr != nil {
		err = fmt.Errorf("%w: %v", err, rerr)
	}
	return err
}

var (
	_ Store  = (*SQLStore)(nil)
	_ Seeder = (*SQLStore)(nil)
)
