// Package database wraps the database implementation used for Tradewarp.
package database

import (
	"context"
	"errors"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"github.com/dense-analysis/tradewarp/internal/apperror"
	"github.com/dense-analysis/tradewarp/internal/config"
)

type Conn struct {
	pgxConn *pgx.Conn
}

type Row interface {
	Scan(dest ...any) error
}

type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Close()
	Err() error
}

var ErrNoRows = pgx.ErrNoRows

// Queryable defines an interface shared by connections and transactions.
//
// Ledger operations take a Queryable so several of them can run on one
// shared transaction; passing a bare connection instead runs each
// statement in its own implicit transaction.
type Queryable interface {
	Exec(sql string, arguments ...any) (int64, error)
	Query(sql string, arguments ...any) (Rows, error)
	QueryRow(sql string, arguments ...any) Row
}

// Transactor is a Queryable that can also scope statements to a
// transaction. Operations that must commit atomically take a Transactor
// rather than a concrete connection.
type Transactor interface {
	Queryable
	WithTransaction(fn func(tx Queryable) error) error
}

// Connect connects to the Postgres database with the given settings.
//
// Connection failures are infrastructure errors, distinct from the
// application errors statements can produce later.
func Connect(settings *config.Database) (*Conn, error) {
	pgxConn, err := pgx.Connect(context.Background(), settings.URL())

	if err != nil {
		return nil, apperror.Infrastructure("database connection failed", err)
	}

	return &Conn{pgxConn: pgxConn}, nil
}

// Close closes a database connection.
func (conn *Conn) Close() error {
	return conn.pgxConn.Close(context.Background())
}

// Exec executes a mutation statement and returns the affected row count.
func (conn *Conn) Exec(sql string, arguments ...any) (int64, error) {
	tag, err := conn.pgxConn.Exec(context.Background(), sql, arguments...)

	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}

// Query executes a database query.
func (conn *Conn) Query(sql string, arguments ...any) (Rows, error) {
	rows, err := conn.pgxConn.Query(context.Background(), sql, arguments...)

	if err != nil {
		return nil, err
	}

	return rows, nil
}

// QueryRow executes a database query returning Row data.
func (conn *Conn) QueryRow(sql string, arguments ...any) Row {
	return conn.pgxConn.QueryRow(context.Background(), sql, arguments...)
}

// Tx is an open database transaction. It satisfies Queryable, so every
// statement handed a Tx shares its atomicity scope.
type Tx struct {
	pgxTx pgx.Tx
}

// Begin opens a transaction. Callers must Commit or Rollback it on
// every path; prefer WithTransaction, which does so structurally.
func (conn *Conn) Begin() (*Tx, error) {
	pgxTx, err := conn.pgxConn.Begin(context.Background())

	if err != nil {
		return nil, apperror.Infrastructure("begin transaction failed", err)
	}

	return &Tx{pgxTx: pgxTx}, nil
}

func (tx *Tx) Exec(sql string, arguments ...any) (int64, error) {
	tag, err := tx.pgxTx.Exec(context.Background(), sql, arguments...)

	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}

func (tx *Tx) Query(sql string, arguments ...any) (Rows, error) {
	rows, err := tx.pgxTx.Query(context.Background(), sql, arguments...)

	if err != nil {
		return nil, err
	}

	return rows, nil
}

func (tx *Tx) QueryRow(sql string, arguments ...any) Row {
	return tx.pgxTx.QueryRow(context.Background(), sql, arguments...)
}

func (tx *Tx) Commit() error {
	return tx.pgxTx.Commit(context.Background())
}

// Rollback aborts the transaction. Rolling back after a commit is a
// no-op, so it can sit in a defer.
func (tx *Tx) Rollback() error {
	err := tx.pgxTx.Rollback(context.Background())

	if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return err
	}

	return nil
}

// WithTransaction runs fn inside a transaction, committing when fn
// returns nil and rolling back before propagating any error.
func (conn *Conn) WithTransaction(fn func(tx Queryable) error) error {
	return conn.pgxConn.BeginFunc(context.Background(), func(pgxTx pgx.Tx) error {
		return fn(&Tx{pgxTx: pgxTx})
	})
}

// IsUniqueViolation reports whether err is a Postgres unique constraint
// violation. Pre-insert uniqueness checks race with concurrent writers,
// so insert paths map this onto their conflict errors.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError

	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
