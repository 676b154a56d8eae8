package pgdb

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier is the subset of pgx satisfied by both *pgxpool.Pool and
// pgx.Tx. Repositories are written against it so the same code runs
// standalone or inside a transaction.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TxRunner executes fn inside one transaction. fn returning an error
// rolls everything back; otherwise the transaction commits.
type TxRunner interface {
	RunTx(ctx context.Context, fn func(q Querier) error) error
}

// Pool wraps a pgx pool as both a Querier and a TxRunner.
type Pool struct {
	*pgxpool.Pool
}

func NewPool(pool *pgxpool.Pool) *Pool {
	return &Pool{Pool: pool}
}

func (p *Pool) RunTx(ctx context.Context, fn func(q Querier) error) error {
	tx, err := p.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
