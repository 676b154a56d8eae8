package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/jackc/pgx/v5"

	"github.com/mfahadasghar/flow-fund/internal/ledger/domain"
	"github.com/mfahadasghar/flow-fund/internal/pgdb"
)

// Store reads and mutates ledger accounts and allowances. Every method
// takes an explicit querier so callers can compose several mutations
// into one transaction.
type Store struct{}

func NewStore() *Store {
	return &Store{}
}

func (s *Store) BalanceOf(ctx context.Context, q pgdb.Querier, address string) (*uint256.Int, error) {
	const query = `
select balance::text
from ledger_accounts
where address = $1;
`
	var raw string
	err := q.QueryRow(ctx, query, address).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return uint256.NewInt(0), nil
	}
	if err != nil {
		return nil, fmt.Errorf("balance of %s: %w", address, err)
	}
	return pgdb.ParseAmount(raw)
}

func (s *Store) Allowance(ctx context.Context, q pgdb.Querier, owner, spender string) (*uint256.Int, error) {
	const query = `
select amount::text
from ledger_allowances
where owner_address = $1 and spender_address = $2;
`
	var raw string
	err := q.QueryRow(ctx, query, owner, spender).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return uint256.NewInt(0), nil
	}
	if err != nil {
		return nil, fmt.Errorf("allowance %s->%s: %w", owner, spender, err)
	}
	return pgdb.ParseAmount(raw)
}

// Credit adds amount to an account, creating the row on first touch.
func (s *Store) Credit(ctx context.Context, q pgdb.Querier, address string, amount *uint256.Int) error {
	const query = `
insert into ledger_accounts (address, balance)
values ($1, $2::numeric)
on conflict (address)
do update set balance = ledger_accounts.balance + excluded.balance, updated_at = now();
`
	if _, err := q.Exec(ctx, query, address, pgdb.AmountArg(amount)); err != nil {
		return fmt.Errorf("credit %s: %w", address, err)
	}
	return nil
}

// Debit subtracts amount from an account. A guarded update keeps the
// balance from going negative; zero rows affected means the funds are
// not there.
func (s *Store) Debit(ctx context.Context, q pgdb.Querier, address string, amount *uint256.Int) error {
	const query = `
update ledger_accounts
set balance = balance - $2::numeric, updated_at = now()
where address = $1 and balance >= $2::numeric;
`
	ct, err := q.Exec(ctx, query, address, pgdb.AmountArg(amount))
	if err != nil {
		return fmt.Errorf("debit %s: %w", address, err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrInsufficientBalance
	}
	return nil
}

// SetAllowance overwrites a spender authorization, ERC-20 approve
// semantics.
func (s *Store) SetAllowance(ctx context.Context, q pgdb.Querier, owner, spender string, amount *uint256.Int) error {
	const query = `
insert into ledger_allowances (owner_address, spender_address, amount)
values ($1, $2, $3::numeric)
on conflict (owner_address, spender_address)
do update set amount = excluded.amount, updated_at = now();
`
	if _, err := q.Exec(ctx, query, owner, spender, pgdb.AmountArg(amount)); err != nil {
		return fmt.Errorf("set allowance %s->%s: %w", owner, spender, err)
	}
	return nil
}

// SpendAllowance decrements a spender authorization. Zero rows affected
// means the authorization is missing or too low.
func (s *Store) SpendAllowance(ctx context.Context, q pgdb.Querier, owner, spender string, amount *uint256.Int) error {
	const query = `
update ledger_allowances
set amount = amount - $3::numeric, updated_at = now()
where owner_address = $1 and spender_address = $2 and amount >= $3::numeric;
`
	ct, err := q.Exec(ctx, query, owner, spender, pgdb.AmountArg(amount))
	if err != nil {
		return fmt.Errorf("spend allowance %s->%s: %w", owner, spender, err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrInsufficientAllowance
	}
	return nil
}
