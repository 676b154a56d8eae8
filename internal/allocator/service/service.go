package service

import (
	"context"
	"errors"
	"math/big"
	"time"

	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"github.com/mfahadasghar/flow-fund/internal/allocator/domain"
	evdomain "github.com/mfahadasghar/flow-fund/internal/events/domain"
	ledgerdomain "github.com/mfahadasghar/flow-fund/internal/ledger/domain"
	ledgerservice "github.com/mfahadasghar/flow-fund/internal/ledger/service"
	"github.com/mfahadasghar/flow-fund/internal/monitor"
	"github.com/mfahadasghar/flow-fund/internal/pgdb"
	regdomain "github.com/mfahadasghar/flow-fund/internal/registry/domain"
)

// Ledger is the slice of the token ledger the allocator spends through.
type Ledger interface {
	BalanceOf(ctx context.Context, q pgdb.Querier, address string) (*uint256.Int, error)
	Allowance(ctx context.Context, q pgdb.Querier, owner, spender string) (*uint256.Int, error)
	Credit(ctx context.Context, q pgdb.Querier, address string, amount *uint256.Int) error
	Debit(ctx context.Context, q pgdb.Querier, address string, amount *uint256.Int) error
	SpendAllowance(ctx context.Context, q pgdb.Querier, owner, spender string, amount *uint256.Int) error
}

// Registry is the narrow receiver-notifier capability the allocator
// holds on the project registry: look a project up, report funds in.
// Nothing else of the registry is reachable from here.
type Registry interface {
	GetProject(ctx context.Context, q pgdb.Querier, id int64) (*regdomain.Project, error)
	AddFundsReceived(ctx context.Context, q pgdb.Querier, id int64, amount *uint256.Int) error
}

// Repo is the donation bookkeeping storage.
type Repo interface {
	InsertDonation(ctx context.Context, q pgdb.Querier, donor string, total *uint256.Int, projectIDs []int64, allocations []*uint256.Int) (*domain.Donation, error)
	GetDonation(ctx context.Context, q pgdb.Querier, id int64) (*domain.Donation, error)
	ListDonationIDsByDonor(ctx context.Context, q pgdb.Querier, donor string) ([]int64, error)
	ListDonationIDsByProject(ctx context.Context, q pgdb.Querier, projectID int64) ([]int64, error)
	GetDonorStats(ctx context.Context, q pgdb.Querier, donor string) (*domain.DonorStats, error)
	BumpDonorStats(ctx context.Context, q pgdb.Querier, donor string, amount *uint256.Int) error
	BumpTotals(ctx context.Context, q pgdb.Querier, amount, dust *uint256.Int) error
	Totals(ctx context.Context, q pgdb.Querier) (*domain.Totals, error)
	ReduceDust(ctx context.Context, q pgdb.Querier, amount *uint256.Int) error
}

// EventWriter appends audit events inside the donate transaction.
type EventWriter interface {
	Append(ctx context.Context, q pgdb.Querier, kind string, payload any) error
}

// Publisher pushes committed events to live subscribers. Optional; a
// nil publisher just skips publication.
type Publisher interface {
	Publish(ctx context.Context, kind string, payload any) error
}

// Service implements the donation allocator: one donor deposit split
// across registered active projects by basis-point percentages.
type Service struct {
	db        pgdb.Querier
	runner    pgdb.TxRunner
	ledger    Ledger
	registry  Registry
	repo      Repo
	events    EventWriter
	publisher Publisher
	custody   string
	log       *zap.Logger
}

func New(db pgdb.Querier, runner pgdb.TxRunner, ledger Ledger, registry Registry, repo Repo, events EventWriter, publisher Publisher, custody string, log *zap.Logger) *Service {
	// Custody takes part in balance and allowance rows, which are keyed
	// by normalized address.
	if normalized, err := ledgerdomain.NormalizeAddress(custody); err == nil {
		custody = normalized
	}
	return &Service{
		db:        db,
		runner:    runner,
		ledger:    ledger,
		registry:  registry,
		repo:      repo,
		events:    events,
		publisher: publisher,
		custody:   custody,
		log:       log,
	}
}

// DonationMadeNote is the payload of donation_made events.
type DonationMadeNote struct {
	DonationID  int64    `json:"donation_id"`
	Donor       string   `json:"donor"`
	TotalAmount string   `json:"total_amount"`
	ProjectIDs  []int64  `json:"project_ids"`
	Allocations []string `json:"allocations"`
	Timestamp   int64    `json:"timestamp"`
}

// FundsAllocatedNote is the payload of funds_allocated events.
type FundsAllocatedNote struct {
	ProjectID  int64  `json:"project_id"`
	Amount     string `json:"amount"`
	DonationID int64  `json:"donation_id"`
}

// DustSweptNote is the payload of dust_swept events.
type DustSweptNote struct {
	To     string `json:"to"`
	Amount string `json:"amount"`
}

// Donate validates the split, pulls amount from the donor into custody,
// pushes each share to its project wallet, and records the donation.
// Everything happens in one transaction: any failure leaves balances
// and bookkeeping exactly as they were.
func (s *Service) Donate(ctx context.Context, donor string, projectIDs []int64, percentages []int64, amount *uint256.Int) (*domain.Donation, error) {
	start := time.Now()

	d, err := s.donate(ctx, donor, projectIDs, percentages, amount)
	if err != nil {
		if monitor.Business != nil {
			monitor.Business.DonationFailures.WithLabelValues(failureReason(err)).Inc()
		}
		return nil, err
	}

	if monitor.Business != nil {
		monitor.Business.DonationsTotal.Inc()
		monitor.Business.DonatedAmountTotal.Add(amountFloat(d.TotalAmount))
		monitor.Business.DonateDuration.Observe(time.Since(start).Seconds())
	}

	note := DonationMadeNote{
		DonationID:  d.ID,
		Donor:       d.Donor,
		TotalAmount: d.TotalAmount.Dec(),
		ProjectIDs:  d.ProjectIDs,
		Allocations: decimalStrings(d.Allocations),
		Timestamp:   d.Timestamp.Unix(),
	}
	if s.publisher != nil {
		// Best effort: the committed event row is the source of truth.
		if err := s.publisher.Publish(ctx, evdomain.KindDonationMade, note); err != nil {
			s.log.Warn("publish donation event", zap.Error(err))
		}
	}

	s.log.Info("donation completed",
		zap.Int64("donation_id", d.ID),
		zap.String("donor", d.Donor),
		zap.String("amount", d.TotalAmount.Dec()),
		zap.Int("projects", len(d.ProjectIDs)),
	)
	return d, nil
}

func (s *Service) donate(ctx context.Context, donor string, projectIDs []int64, percentages []int64, amount *uint256.Int) (*domain.Donation, error) {
	// Preconditions run in a fixed order; the first violation aborts
	// with no state change.
	if len(projectIDs) != len(percentages) {
		return nil, domain.ErrArrayLengthMismatch
	}
	if amount == nil || amount.IsZero() {
		return nil, domain.ErrInvalidAmount
	}
	if err := domain.ValidatePercentages(percentages); err != nil {
		return nil, err
	}

	donor, err := ledgerdomain.NormalizeAddress(donor)
	if err != nil {
		return nil, err
	}

	shares, dust, err := domain.ComputeAllocations(amount, percentages)
	if err != nil {
		return nil, err
	}

	var d *domain.Donation
	err = s.runner.RunTx(ctx, func(q pgdb.Querier) error {
		// Resolve every target up front, failing fast on the first
		// missing or deactivated project.
		wallets := make([]string, len(projectIDs))
		for i, id := range projectIDs {
			p, err := s.registry.GetProject(ctx, q, id)
			if errors.Is(err, regdomain.ErrProjectNotFound) {
				return domain.ErrProjectUnavailable
			}
			if err != nil {
				return err
			}
			if !p.Active {
				return domain.ErrProjectUnavailable
			}
			wallets[i] = p.Wallet
		}

		allowance, err := s.ledger.Allowance(ctx, q, donor, s.custody)
		if err != nil {
			return err
		}
		if allowance.Lt(amount) {
			return domain.ErrTransferNotAuthorized
		}

		balance, err := s.ledger.BalanceOf(ctx, q, donor)
		if err != nil {
			return err
		}
		if balance.Lt(amount) {
			return domain.ErrInsufficientBalance
		}

		// Pull the full amount from the donor into custody.
		if err := s.ledger.SpendAllowance(ctx, q, donor, s.custody, amount); err != nil {
			return err
		}
		if err := s.ledger.Debit(ctx, q, donor, amount); err != nil {
			return err
		}
		if err := s.ledger.Credit(ctx, q, s.custody, amount); err != nil {
			return err
		}
		if err := s.events.Append(ctx, q, evdomain.KindTransfer, ledgerservice.TransferNote{
			From:  donor,
			To:    s.custody,
			Value: amount.Dec(),
		}); err != nil {
			return err
		}

		d, err = s.repo.InsertDonation(ctx, q, donor, amount, projectIDs, shares)
		if err != nil {
			return err
		}

		// Push each non-zero share out and notify the registry.
		for i, share := range shares {
			if share.IsZero() {
				continue
			}
			if err := s.ledger.Debit(ctx, q, s.custody, share); err != nil {
				return err
			}
			if err := s.ledger.Credit(ctx, q, wallets[i], share); err != nil {
				return err
			}
			if err := s.events.Append(ctx, q, evdomain.KindTransfer, ledgerservice.TransferNote{
				From:  s.custody,
				To:    wallets[i],
				Value: share.Dec(),
			}); err != nil {
				return err
			}
			if err := s.registry.AddFundsReceived(ctx, q, projectIDs[i], share); err != nil {
				return err
			}
			if err := s.events.Append(ctx, q, evdomain.KindFundsAllocated, FundsAllocatedNote{
				ProjectID:  projectIDs[i],
				Amount:     share.Dec(),
				DonationID: d.ID,
			}); err != nil {
				return err
			}
		}

		if err := s.repo.BumpDonorStats(ctx, q, donor, amount); err != nil {
			return err
		}
		if err := s.repo.BumpTotals(ctx, q, amount, dust); err != nil {
			return err
		}

		return s.events.Append(ctx, q, evdomain.KindDonationMade, DonationMadeNote{
			DonationID:  d.ID,
			Donor:       donor,
			TotalAmount: amount.Dec(),
			ProjectIDs:  projectIDs,
			Allocations: decimalStrings(shares),
			Timestamp:   d.Timestamp.Unix(),
		})
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

// SweepDust moves all accumulated rounding dust from custody to the
// given account. Owner-only at the HTTP boundary.
func (s *Service) SweepDust(ctx context.Context, to string) (*uint256.Int, error) {
	to, err := ledgerdomain.NormalizeAddress(to)
	if err != nil {
		return nil, err
	}

	var swept *uint256.Int
	err = s.runner.RunTx(ctx, func(q pgdb.Querier) error {
		totals, err := s.repo.Totals(ctx, q)
		if err != nil {
			return err
		}
		if totals.Dust.IsZero() {
			return domain.ErrNoDust
		}
		swept = totals.Dust.Clone()

		if err := s.repo.ReduceDust(ctx, q, swept); err != nil {
			return err
		}
		if err := s.ledger.Debit(ctx, q, s.custody, swept); err != nil {
			return err
		}
		if err := s.ledger.Credit(ctx, q, to, swept); err != nil {
			return err
		}
		if err := s.events.Append(ctx, q, evdomain.KindTransfer, ledgerservice.TransferNote{
			From:  s.custody,
			To:    to,
			Value: swept.Dec(),
		}); err != nil {
			return err
		}
		return s.events.Append(ctx, q, evdomain.KindDustSwept, DustSweptNote{
			To:     to,
			Amount: swept.Dec(),
		})
	})
	if err != nil {
		return nil, err
	}

	if monitor.Business != nil {
		monitor.Business.DustHeld.Set(0)
	}
	s.log.Info("dust swept", zap.String("to", to), zap.String("amount", swept.Dec()))
	return swept, nil
}

func (s *Service) GetDonation(ctx context.Context, id int64) (*domain.Donation, error) {
	return s.repo.GetDonation(ctx, s.db, id)
}

func (s *Service) GetDonationsByDonor(ctx context.Context, donor string) ([]int64, error) {
	donor, err := ledgerdomain.NormalizeAddress(donor)
	if err != nil {
		return nil, err
	}
	return s.repo.ListDonationIDsByDonor(ctx, s.db, donor)
}

func (s *Service) GetDonationsByProject(ctx context.Context, projectID int64) ([]int64, error) {
	return s.repo.ListDonationIDsByProject(ctx, s.db, projectID)
}

func (s *Service) GetDonorStats(ctx context.Context, donor string) (*domain.DonorStats, error) {
	donor, err := ledgerdomain.NormalizeAddress(donor)
	if err != nil {
		return nil, err
	}
	return s.repo.GetDonorStats(ctx, s.db, donor)
}

// Totals reports the grand total donated, the donation count and the
// dust currently held.
func (s *Service) Totals(ctx context.Context) (*domain.Totals, error) {
	return s.repo.Totals(ctx, s.db)
}

func decimalStrings(amounts []*uint256.Int) []string {
	out := make([]string, len(amounts))
	for i, a := range amounts {
		out[i] = a.Dec()
	}
	return out
}

// amountFloat is a lossy conversion for metrics only.
func amountFloat(v *uint256.Int) float64 {
	f, _ := new(big.Float).SetInt(v.ToBig()).Float64()
	return f
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrArrayLengthMismatch):
		return "array_length_mismatch"
	case errors.Is(err, domain.ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, domain.ErrPercentageSumInvalid):
		return "percentage_sum_invalid"
	case errors.Is(err, domain.ErrProjectUnavailable):
		return "project_unavailable"
	case errors.Is(err, domain.ErrTransferNotAuthorized):
		return "transfer_not_authorized"
	case errors.Is(err, domain.ErrInsufficientBalance),
		errors.Is(err, ledgerdomain.ErrInsufficientBalance):
		return "insufficient_balance"
	case errors.Is(err, ledgerdomain.ErrInvalidAddress):
		return "invalid_address"
	default:
		return "internal"
	}
}
