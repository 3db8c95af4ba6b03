// Package store implements core.Store on PostgreSQL.
package store

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/JonMunkholm/gradabroad/internal/core"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schemaSQL string

// DBTX is implemented by *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Postgres writes and reads collections through a connection pool.
type Postgres struct {
	pool *pgxpool.Pool
}

var _ core.Store = (*Postgres)(nil)

// New creates a Postgres store on pool.
func New(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// Migrate creates the collection tables if they do not exist.
func (p *Postgres) Migrate(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Ping checks that the database is reachable.
func (p *Postgres) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// InsertRecords writes records in one transaction.
//
// In atomic mode any failure rolls back every record and is returned. In
// per-row mode each record runs under its own savepoint; a rejected record
// is rolled back to its savepoint and reported, and the rest commit.
func (p *Postgres) InsertRecords(ctx context.Context, collection core.Collection, records []core.Record, mode core.ImportMode) ([]core.InsertFailure, error) {
	if len(records) == 0 {
		return nil, nil
	}

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return nil, backendError(err)
	}
	defer tx.Rollback(ctx) // No-op if already committed

	table := string(collection)
	columns := recordColumns(records)

	var failures []core.InsertFailure
	if mode == core.ModeAtomic {
		for _, chunk := range chunkRecords(records, len(columns)) {
			sql, args := buildInsert(table, columns, chunk)
			if _, err := tx.Exec(ctx, sql, args...); err != nil {
				return nil, backendError(err)
			}
		}
	} else {
		failures, err = insertIsolated(ctx, tx, table, columns, records)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, backendError(err)
	}
	return failures, nil
}

// insertIsolated inserts each record under a savepoint. PostgreSQL aborts
// the whole transaction on any error, so the savepoint is what lets later
// rows proceed.
func insertIsolated(ctx context.Context, tx DBTX, table string, columns []string, records []core.Record) ([]core.InsertFailure, error) {
	var failures []core.InsertFailure

	for i, rec := range records {
		savepoint := fmt.Sprintf("sp_%d", i)
		if _, err := tx.Exec(ctx, "SAVEPOINT "+savepoint); err != nil {
			return nil, fmt.Errorf("create savepoint for record %d: %w", i, backendError(err))
		}

		sql, args := buildInsert(table, columns, []core.Record{rec})
		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			if _, rbErr := tx.Exec(ctx, "ROLLBACK TO SAVEPOINT "+savepoint); rbErr != nil {
				return nil, fmt.Errorf("rollback savepoint for record %d: %w", i, backendError(rbErr))
			}
			failures = append(failures, core.InsertFailure{Index: i, Reason: backendError(err).Error()})
			continue
		}

		if _, err := tx.Exec(ctx, "RELEASE SAVEPOINT "+savepoint); err != nil {
			return nil, fmt.Errorf("release savepoint for record %d: %w", i, backendError(err))
		}
	}

	return failures, nil
}

// SelectRecords returns up to limit of owner's rows, newest first.
func (p *Postgres) SelectRecords(ctx context.Context, collection core.Collection, ownerID string, limit int) ([]core.Record, error) {
	def, err := core.Lookup(string(collection))
	if err != nil {
		return nil, err
	}

	rows, err := p.pool.Query(ctx, buildSelect(def), core.ToPgUUID(ownerID), limit)
	if err != nil {
		return nil, backendError(err)
	}

	maps, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, backendError(err)
	}

	records := make([]core.Record, len(maps))
	for i, m := range maps {
		records[i] = core.Record(m)
	}
	return records, nil
}

// UpdateRecord sets fields on owner's row id. It reports false when no such
// row exists for owner.
func (p *Postgres) UpdateRecord(ctx context.Context, collection core.Collection, ownerID, id string, fields core.Record) (bool, error) {
	sql, args := buildUpdate(string(collection), fields)
	args = append(args, core.ToPgUUID(id), core.ToPgUUID(ownerID))

	tag, err := p.pool.Exec(ctx, sql, args...)
	if err != nil {
		return false, backendError(err)
	}
	return tag.RowsAffected() > 0, nil
}

// DeleteRecord removes owner's row id. It reports false when no such row
// exists for owner.
func (p *Postgres) DeleteRecord(ctx context.Context, collection core.Collection, ownerID, id string) (bool, error) {
	tag, err := p.pool.Exec(ctx, buildDelete(string(collection)), core.ToPgUUID(id), core.ToPgUUID(ownerID))
	if err != nil {
		return false, backendError(err)
	}
	return tag.RowsAffected() > 0, nil
}

// serverError reports the server's message text while keeping the
// *pgconn.PgError reachable through errors.As.
type serverError struct {
	pg *pgconn.PgError
}

func (e *serverError) Error() string { return e.pg.Message }
func (e *serverError) Unwrap() error { return e.pg }

// backendError reduces a PostgreSQL error to the server's own message.
// Other errors are returned unchanged.
func backendError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return &serverError{pg: pgErr}
	}
	return err
}
