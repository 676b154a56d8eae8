package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/holiman/uint256"
	"go.uber.org/zap"

	evdomain "github.com/mfahadasghar/flow-fund/internal/events/domain"
	ledgerdomain "github.com/mfahadasghar/flow-fund/internal/ledger/domain"
	"github.com/mfahadasghar/flow-fund/internal/monitor"
	"github.com/mfahadasghar/flow-fund/internal/pgdb"
	"github.com/mfahadasghar/flow-fund/internal/registry/domain"
)

// Repo is the registry storage the service drives.
type Repo interface {
	InsertProject(ctx context.Context, q pgdb.Querier, name, description, wallet string) (*domain.Project, error)
	GetProject(ctx context.Context, q pgdb.Querier, id int64) (*domain.Project, error)
	ListProjects(ctx context.Context, q pgdb.Querier, activeOnly bool) ([]domain.Project, error)
	CountProjects(ctx context.Context, q pgdb.Querier) (int64, error)
	IsProjectActive(ctx context.Context, q pgdb.Querier, id int64) (bool, error)
	DeactivateProject(ctx context.Context, q pgdb.Querier, id int64) error
	AddFundsReceived(ctx context.Context, q pgdb.Querier, id int64, amount *uint256.Int) error
	InsertApplication(ctx context.Context, q pgdb.Querier, req domain.SubmitApplicationRequest) (*domain.Application, error)
	GetApplication(ctx context.Context, q pgdb.Querier, id int64) (*domain.Application, error)
	ListApplications(ctx context.Context, q pgdb.Querier) ([]domain.Application, error)
	ListApplicationsByStatus(ctx context.Context, q pgdb.Querier, status string) ([]domain.Application, error)
	ListApplicationsByApplicant(ctx context.Context, q pgdb.Querier, applicant string) ([]domain.Application, error)
	CountApplications(ctx context.Context, q pgdb.Querier) (int64, error)
	MarkReviewed(ctx context.Context, q pgdb.Querier, id int64, status, notes string) (*domain.Application, error)
}

// EventWriter appends audit events inside the caller's transaction.
type EventWriter interface {
	Append(ctx context.Context, q pgdb.Querier, kind string, payload any) error
}

// Service implements the project registry and the application intake
// workflow.
type Service struct {
	db     pgdb.Querier
	runner pgdb.TxRunner
	repo   Repo
	events EventWriter
	log    *zap.Logger
}

func New(db pgdb.Querier, runner pgdb.TxRunner, repo Repo, events EventWriter, log *zap.Logger) *Service {
	return &Service{
		db:     db,
		runner: runner,
		repo:   repo,
		events: events,
		log:    log,
	}
}

// ProjectCreatedNote is the payload of project_created events.
type ProjectCreatedNote struct {
	ProjectID int64  `json:"project_id"`
	Name      string `json:"name"`
	Wallet    string `json:"wallet"`
}

// FundsReceivedNote is the payload of funds_received events.
type FundsReceivedNote struct {
	ProjectID int64  `json:"project_id"`
	Amount    string `json:"amount"`
}

type applicationNote struct {
	ApplicationID    int64  `json:"application_id"`
	Applicant        string `json:"applicant"`
	OrganizationName string `json:"organization_name"`
	ProjectID        *int64 `json:"project_id,omitempty"`
	Reason           string `json:"reason,omitempty"`
}

// CreateProject registers a new fundable recipient. Owner-only at the
// HTTP boundary.
func (s *Service) CreateProject(ctx context.Context, name, description, wallet string) (*domain.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: project name required", domain.ErrInvalidInput)
	}
	wallet, err := ledgerdomain.NormalizeAddress(wallet)
	if err != nil {
		return nil, fmt.Errorf("%w: payout wallet", domain.ErrInvalidInput)
	}

	var p *domain.Project
	err = s.runner.RunTx(ctx, func(q pgdb.Querier) error {
		p, err = s.repo.InsertProject(ctx, q, name, description, wallet)
		if err != nil {
			return err
		}
		return s.events.Append(ctx, q, evdomain.KindProjectCreated, ProjectCreatedNote{
			ProjectID: p.ID,
			Name:      p.Name,
			Wallet:    p.Wallet,
		})
	})
	if err != nil {
		return nil, err
	}

	if monitor.Business != nil {
		monitor.Business.ProjectsCreated.Inc()
	}
	s.log.Info("project created",
		zap.Int64("project_id", p.ID),
		zap.String("name", p.Name),
	)
	return p, nil
}

// DeactivateProject flips a project inactive. Past donations and the
// cumulative total are untouched; only new donations are refused.
func (s *Service) DeactivateProject(ctx context.Context, id int64) error {
	err := s.runner.RunTx(ctx, func(q pgdb.Querier) error {
		if err := s.repo.DeactivateProject(ctx, q, id); err != nil {
			return err
		}
		return s.events.Append(ctx, q, evdomain.KindProjectDeactivated, ProjectCreatedNote{ProjectID: id})
	})
	if err != nil {
		return err
	}

	s.log.Info("project deactivated", zap.Int64("project_id", id))
	return nil
}

// RecordFundsReceived adds amount to a project's running total. The
// donate path performs this increment inside its own transaction; this
// entry point exists for the standalone hook, which the router keeps
// API-key restricted by default.
func (s *Service) RecordFundsReceived(ctx context.Context, id int64, amount *uint256.Int) error {
	if amount == nil || amount.IsZero() {
		return fmt.Errorf("%w: amount must be greater than 0", domain.ErrInvalidInput)
	}

	return s.runner.RunTx(ctx, func(q pgdb.Querier) error {
		if err := s.repo.AddFundsReceived(ctx, q, id, amount); err != nil {
			return err
		}
		return s.events.Append(ctx, q, evdomain.KindFundsReceived, FundsReceivedNote{
			ProjectID: id,
			Amount:    amount.Dec(),
		})
	})
}

func (s *Service) GetProject(ctx context.Context, id int64) (*domain.Project, error) {
	return s.repo.GetProject(ctx, s.db, id)
}

func (s *Service) GetAllProjects(ctx context.Context) ([]domain.Project, error) {
	return s.repo.ListProjects(ctx, s.db, false)
}

func (s *Service) GetAllActiveProjects(ctx context.Context) ([]domain.Project, error) {
	return s.repo.ListProjects(ctx, s.db, true)
}

func (s *Service) GetTotalProjects(ctx context.Context) (int64, error) {
	return s.repo.CountProjects(ctx, s.db)
}

func (s *Service) IsProjectActive(ctx context.Context, id int64) (bool, error) {
	return s.repo.IsProjectActive(ctx, s.db, id)
}

// SubmitApplication files a new intake application. Any caller may
// submit; the application always lands in pending.
func (s *Service) SubmitApplication(ctx context.Context, req domain.SubmitApplicationRequest) (*domain.Application, error) {
	req.OrganizationName = strings.TrimSpace(req.OrganizationName)
	if req.OrganizationName == "" {
		return nil, fmt.Errorf("%w: organization name required", domain.ErrInvalidInput)
	}

	applicant, err := ledgerdomain.NormalizeAddress(req.Applicant)
	if err != nil {
		return nil, fmt.Errorf("%w: applicant address", domain.ErrInvalidInput)
	}
	req.Applicant = applicant

	wallet, err := ledgerdomain.NormalizeAddress(req.Wallet)
	if err != nil {
		return nil, fmt.Errorf("%w: payout wallet", domain.ErrInvalidInput)
	}
	req.Wallet = wallet

	var a *domain.Application
	err = s.runner.RunTx(ctx, func(q pgdb.Querier) error {
		a, err = s.repo.InsertApplication(ctx, q, req)
		if err != nil {
			return err
		}
		return s.events.Append(ctx, q, evdomain.KindApplicationSubmitted, applicationNote{
			ApplicationID:    a.ID,
			Applicant:        a.Applicant,
			OrganizationName: a.OrganizationName,
		})
	})
	if err != nil {
		return nil, err
	}

	if monitor.Business != nil {
		monitor.Business.ApplicationsTotal.WithLabelValues("submitted").Inc()
	}
	s.log.Info("application submitted",
		zap.Int64("application_id", a.ID),
		zap.String("applicant", a.Applicant),
	)
	return a, nil
}

// ApproveApplication promotes a pending application to a live project
// built from the application's organization name and wallet plus the
// reviewer-supplied description. One transaction covers the status
// flip, the project row and both events.
func (s *Service) ApproveApplication(ctx context.Context, id int64, description string) (*domain.Application, *domain.Project, error) {
	var (
		a *domain.Application
		p *domain.Project
	)
	err := s.runner.RunTx(ctx, func(q pgdb.Querier) error {
		var err error
		a, err = s.repo.MarkReviewed(ctx, q, id, domain.StatusApproved, "")
		if err != nil {
			return err
		}

		p, err = s.repo.InsertProject(ctx, q, a.OrganizationName, description, a.Wallet)
		if err != nil {
			return err
		}

		if err := s.events.Append(ctx, q, evdomain.KindApplicationApproved, applicationNote{
			ApplicationID:    a.ID,
			Applicant:        a.Applicant,
			OrganizationName: a.OrganizationName,
			ProjectID:        &p.ID,
		}); err != nil {
			return err
		}
		return s.events.Append(ctx, q, evdomain.KindProjectCreated, ProjectCreatedNote{
			ProjectID: p.ID,
			Name:      p.Name,
			Wallet:    p.Wallet,
		})
	})
	if err != nil {
		return nil, nil, err
	}

	if monitor.Business != nil {
		monitor.Business.ApplicationsTotal.WithLabelValues("approved").Inc()
		monitor.Business.ProjectsCreated.Inc()
	}
	s.log.Info("application approved",
		zap.Int64("application_id", a.ID),
		zap.Int64("project_id", p.ID),
	)
	return a, p, nil
}

// RejectApplication closes a pending application with a reason the
// applicant can read back in review_notes.
func (s *Service) RejectApplication(ctx context.Context, id int64, reason string) (*domain.Application, error) {
	var a *domain.Application
	err := s.runner.RunTx(ctx, func(q pgdb.Querier) error {
		var err error
		a, err = s.repo.MarkReviewed(ctx, q, id, domain.StatusRejected, reason)
		if err != nil {
			return err
		}
		return s.events.Append(ctx, q, evdomain.KindApplicationRejected, applicationNote{
			ApplicationID:    a.ID,
			Applicant:        a.Applicant,
			OrganizationName: a.OrganizationName,
			Reason:           reason,
		})
	})
	if err != nil {
		return nil, err
	}

	if monitor.Business != nil {
		monitor.Business.ApplicationsTotal.WithLabelValues("rejected").Inc()
	}
	s.log.Info("application rejected", zap.Int64("application_id", a.ID))
	return a, nil
}

func (s *Service) GetApplication(ctx context.Context, id int64) (*domain.Application, error) {
	return s.repo.GetApplication(ctx, s.db, id)
}

func (s *Service) GetPendingApplications(ctx context.Context) ([]domain.Application, error) {
	return s.repo.ListApplicationsByStatus(ctx, s.db, domain.StatusPending)
}

func (s *Service) GetAllApplications(ctx context.Context) ([]domain.Application, error) {
	return s.repo.ListApplications(ctx, s.db)
}

func (s *Service) GetApplicationsByApplicant(ctx context.Context, applicant string) ([]domain.Application, error) {
	applicant, err := ledgerdomain.NormalizeAddress(applicant)
	if err != nil {
		return nil, fmt.Errorf("%w: applicant address", domain.ErrInvalidInput)
	}
	return s.repo.ListApplicationsByApplicant(ctx, s.db, applicant)
}

func (s *Service) GetTotalApplications(ctx context.Context) (int64, error) {
	return s.repo.CountApplications(ctx, s.db)
}
