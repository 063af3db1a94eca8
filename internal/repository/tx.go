package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// ErrTxDone is returned by Commit on a transaction that already finished.
var ErrTxDone = errors.New("transaction already committed or rolled back")

var reSavepoint = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Tx is the unit of work of one run. Every read and write of the run goes
// through it, so nothing is visible to other sessions until Commit.
type Tx struct {
	tx      dialect.Tx
	dialect string
	logger  *slog.Logger
	done    bool
}

// Begin starts the run transaction.
func (s *Store) Begin(ctx context.Context) (*Tx, error) {
	tx, err := s.driver.Tx(ctx)
	if err != nil {
		s.logger.Error("failed to begin transaction", "error", err)
		return nil, err
	}
	s.logger.Debug("transaction started")
	return &Tx{tx: tx, dialect: s.dialect, logger: s.logger}, nil
}

// Commit commits the transaction.
func (t *Tx) Commit() error {
	if t.done {
		return ErrTxDone
	}
	t.done = true
	if err := t.tx.Commit(); err != nil {
		t.logger.Error("commit failed", "error", err)
		return err
	}
	return nil
}

// Rollback aborts the transaction. It is a no-op once the transaction finished,
// so callers may defer it unconditionally.
func (t *Tx) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	if err := t.tx.Rollback(); err != nil {
		t.logger.Error("rollback failed", "error", err)
		return err
	}
	t.logger.Info("transaction rolled back")
	return nil
}

// Savepoint marks a point the transaction can later return to.
func (t *Tx) Savepoint(ctx context.Context, name string) error {
	return t.savepointStmt(ctx, "SAVEPOINT ", name)
}

// RollbackTo undoes everything after the named savepoint; the transaction stays usable.
func (t *Tx) RollbackTo(ctx context.Context, name string) error {
	return t.savepointStmt(ctx, "ROLLBACK TO SAVEPOINT ", name)
}

// Release forgets the named savepoint, keeping its work.
func (t *Tx) Release(ctx context.Context, name string) error {
	return t.savepointStmt(ctx, "RELEASE SAVEPOINT ", name)
}

func (t *Tx) savepointStmt(ctx context.Context, stmt, name string) error {
	if !reSavepoint.MatchString(name) {
		return fmt.Errorf("invalid savepoint name %q", name)
	}
	if t.done {
		return ErrTxDone
	}
	return t.exec(ctx, stmt+name, []any{})
}

func (t *Tx) exec(ctx context.Context, query string, args []any) error {
	return t.tx.Exec(ctx, query, args, nil)
}

// queryOne scans the first row of query into dest and reports whether a row was found.
func (t *Tx) queryOne(ctx context.Context, query string, args []any, dest ...any) (bool, error) {
	var rows entsql.Rows
	if err := t.tx.Query(ctx, query, args, &rows); err != nil {
		return false, err
	}
	defer func() { _ = rows.Close() }()
	if !rows.Next() {
		return false, rows.Err()
	}
	if err := rows.Scan(dest...); err != nil {
		return false, err
	}
	return true, rows.Err()
}

func (t *Tx) builder() *entsql.DialectBuilder {
	return entsql.Dialect(t.dialect)
}
