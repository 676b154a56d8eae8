package service

import (
	"context"

	"github.com/holiman/uint256"
	"go.uber.org/zap"

	evdomain "github.com/mfahadasghar/flow-fund/internal/events/domain"
	"github.com/mfahadasghar/flow-fund/internal/ledger/domain"
	"github.com/mfahadasghar/flow-fund/internal/pgdb"
)

// Store is the account storage the service composes into transactions.
type Store interface {
	BalanceOf(ctx context.Context, q pgdb.Querier, address string) (*uint256.Int, error)
	Allowance(ctx context.Context, q pgdb.Querier, owner, spender string) (*uint256.Int, error)
	Credit(ctx context.Context, q pgdb.Querier, address string, amount *uint256.Int) error
	Debit(ctx context.Context, q pgdb.Querier, address string, amount *uint256.Int) error
	SetAllowance(ctx context.Context, q pgdb.Querier, owner, spender string, amount *uint256.Int) error
	SpendAllowance(ctx context.Context, q pgdb.Querier, owner, spender string, amount *uint256.Int) error
}

// EventWriter appends audit events inside the caller's transaction.
type EventWriter interface {
	Append(ctx context.Context, q pgdb.Querier, kind string, payload any) error
}

// Service implements the fungible ledger: mint, transfer, approve,
// transferFrom with standard balance/allowance semantics.
type Service struct {
	db     pgdb.Querier
	runner pgdb.TxRunner
	store  Store
	events EventWriter
	log    *zap.Logger
}

func New(db pgdb.Querier, runner pgdb.TxRunner, store Store, events EventWriter, log *zap.Logger) *Service {
	return &Service{
		db:     db,
		runner: runner,
		store:  store,
		events: events,
		log:    log,
	}
}

// TransferNote is the payload of transfer events: (from, to, value).
type TransferNote struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Value string `json:"value"`
}

// ApprovalNote is the payload of approval events.
type ApprovalNote struct {
	Owner   string `json:"owner"`
	Spender string `json:"spender"`
	Value   string `json:"value"`
}

// Mint credits freshly created units to an account. Owner-only at the
// HTTP boundary.
func (s *Service) Mint(ctx context.Context, to string, amount *uint256.Int) error {
	to, err := domain.NormalizeAddress(to)
	if err != nil {
		return err
	}
	if to == domain.ZeroAddress {
		return domain.ErrInvalidAddress
	}
	if amount == nil || amount.IsZero() {
		return domain.ErrInvalidAmount
	}

	err = s.runner.RunTx(ctx, func(q pgdb.Querier) error {
		if err := s.store.Credit(ctx, q, to, amount); err != nil {
			return err
		}
		return s.events.Append(ctx, q, evdomain.KindTransfer, TransferNote{
			From:  domain.ZeroAddress,
			To:    to,
			Value: amount.Dec(),
		})
	})
	if err != nil {
		return err
	}

	s.log.Info("minted", zap.String("to", to), zap.String("amount", amount.Dec()))
	return nil
}

func (s *Service) BalanceOf(ctx context.Context, address string) (*uint256.Int, error) {
	address, err := domain.NormalizeAddress(address)
	if err != nil {
		return nil, err
	}
	return s.store.BalanceOf(ctx, s.db, address)
}

func (s *Service) Allowance(ctx context.Context, owner, spender string) (*uint256.Int, error) {
	owner, err := domain.NormalizeAddress(owner)
	if err != nil {
		return nil, err
	}
	spender, err = domain.NormalizeAddress(spender)
	if err != nil {
		return nil, err
	}
	return s.store.Allowance(ctx, s.db, owner, spender)
}

// Approve overwrites the spender's authorization. Zero is a valid
// amount, it revokes the allowance.
func (s *Service) Approve(ctx context.Context, owner, spender string, amount *uint256.Int) error {
	owner, err := domain.NormalizeAddress(owner)
	if err != nil {
		return err
	}
	spender, err = domain.NormalizeAddress(spender)
	if err != nil {
		return err
	}
	if amount == nil {
		amount = uint256.NewInt(0)
	}

	return s.runner.RunTx(ctx, func(q pgdb.Querier) error {
		if err := s.store.SetAllowance(ctx, q, owner, spender, amount); err != nil {
			return err
		}
		return s.events.Append(ctx, q, evdomain.KindApproval, ApprovalNote{
			Owner:   owner,
			Spender: spender,
			Value:   amount.Dec(),
		})
	})
}

// Transfer moves units between accounts.
func (s *Service) Transfer(ctx context.Context, from, to string, amount *uint256.Int) error {
	from, err := domain.NormalizeAddress(from)
	if err != nil {
		return err
	}
	to, err = domain.NormalizeAddress(to)
	if err != nil {
		return err
	}
	if amount == nil || amount.IsZero() {
		return domain.ErrInvalidAmount
	}

	return s.runner.RunTx(ctx, func(q pgdb.Querier) error {
		return s.moveTx(ctx, q, from, to, amount)
	})
}

// TransferFrom moves units on behalf of owner, consuming the spender's
// allowance first. Fails before touching balances when the allowance is
// too low.
func (s *Service) TransferFrom(ctx context.Context, spender, owner, to string, amount *uint256.Int) error {
	spender, err := domain.NormalizeAddress(spender)
	if err != nil {
		return err
	}
	owner, err = domain.NormalizeAddress(owner)
	if err != nil {
		return err
	}
	to, err = domain.NormalizeAddress(to)
	if err != nil {
		return err
	}
	if amount == nil || amount.IsZero() {
		return domain.ErrInvalidAmount
	}

	return s.runner.RunTx(ctx, func(q pgdb.Querier) error {
		if err := s.store.SpendAllowance(ctx, q, owner, spender, amount); err != nil {
			return err
		}
		return s.moveTx(ctx, q, owner, to, amount)
	})
}

// moveTx is the debit+credit+notify step shared by every transfer path.
// Callers are responsible for address normalization. The zero address
// is the mint marker, never a destination.
func (s *Service) moveTx(ctx context.Context, q pgdb.Querier, from, to string, amount *uint256.Int) error {
	if to == domain.ZeroAddress {
		return domain.ErrInvalidAddress
	}
	if err := s.store.Debit(ctx, q, from, amount); err != nil {
		return err
	}
	if err := s.store.Credit(ctx, q, to, amount); err != nil {
		return err
	}
	return s.events.Append(ctx, q, evdomain.KindTransfer, TransferNote{
		From:  from,
		To:    to,
		Value: amount.Dec(),
	})
}
