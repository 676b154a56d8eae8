package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/jackc/pgx/v5"

	"github.com/mfahadasghar/flow-fund/internal/pgdb"
	"github.com/mfahadasghar/flow-fund/internal/registry/domain"
)

const projectColumns = `id, name, description, wallet, total_received::text, active, created_at`

const applicationColumns = `id, applicant, organization_name, ein, contact_email, mission_statement,
wallet, documents_hash, logo_hash, status, submitted_at, reviewed_at, review_notes`

// Repo owns Project and Application records. Methods take an explicit
// querier so the allocator can fold registry bookkeeping into its
// donate transaction.
type Repo struct{}

func NewRepo() *Repo {
	return &Repo{}
}

func (r *Repo) InsertProject(ctx context.Context, q pgdb.Querier, name, description, wallet string) (*domain.Project, error) {
	const query = `
insert into projects (name, description, wallet)
values ($1, $2, $3)
returning ` + projectColumns + `;`

	p, err := scanProject(q.QueryRow(ctx, query, name, description, wallet))
	if err != nil {
		return nil, fmt.Errorf("insert project: %w", err)
	}
	return p, nil
}

func (r *Repo) GetProject(ctx context.Context, q pgdb.Querier, id int64) (*domain.Project, error) {
	const query = `select ` + projectColumns + ` from projects where id = $1;`

	p, err := scanProject(q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrProjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get project %d: %w", id, err)
	}
	return p, nil
}

// ListProjects returns projects ordered by id. With activeOnly set,
// deactivated projects are filtered out.
func (r *Repo) ListProjects(ctx context.Context, q pgdb.Querier, activeOnly bool) ([]domain.Project, error) {
	query := `select ` + projectColumns + ` from projects order by id;`
	if activeOnly {
		query = `select ` + projectColumns + ` from projects where active order by id;`
	}

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Project, 0, 16)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("list projects: %w", err)
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *Repo) CountProjects(ctx context.Context, q pgdb.Querier) (int64, error) {
	var n int64
	if err := q.QueryRow(ctx, `select count(*) from projects;`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count projects: %w", err)
	}
	return n, nil
}

// IsProjectActive reports false both for deactivated and unknown ids.
func (r *Repo) IsProjectActive(ctx context.Context, q pgdb.Querier, id int64) (bool, error) {
	var active bool
	err := q.QueryRow(ctx, `select active from projects where id = $1;`, id).Scan(&active)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("is project active %d: %w", id, err)
	}
	return active, nil
}

// DeactivateProject flips active off. Idempotent: deactivating an
// already inactive project succeeds.
func (r *Repo) DeactivateProject(ctx context.Context, q pgdb.Querier, id int64) error {
	ct, err := q.Exec(ctx, `update projects set active = false where id = $1;`, id)
	if err != nil {
		return fmt.Errorf("deactivate project %d: %w", id, err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrProjectNotFound
	}
	return nil
}

// AddFundsReceived increments a project's cumulative total. The
// running total is monotonically non-decreasing; there is no path that
// subtracts.
func (r *Repo) AddFundsReceived(ctx context.Context, q pgdb.Querier, id int64, amount *uint256.Int) error {
	const query = `
update projects
set total_received = total_received + $2::numeric
where id = $1;
`
	ct, err := q.Exec(ctx, query, id, pgdb.AmountArg(amount))
	if err != nil {
		return fmt.Errorf("add funds received %d: %w", id, err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrProjectNotFound
	}
	return nil
}

func (r *Repo) InsertApplication(ctx context.Context, q pgdb.Querier, req domain.SubmitApplicationRequest) (*domain.Application, error) {
	const query = `
insert into applications (applicant, organization_name, ein, contact_email, mission_statement,
                          wallet, documents_hash, logo_hash)
values ($1, $2, $3, $4, $5, $6, $7, $8)
returning ` + applicationColumns + `;`

	a, err := scanApplication(q.QueryRow(ctx, query,
		req.Applicant,
		req.OrganizationName,
		req.EIN,
		req.ContactEmail,
		req.MissionStatement,
		req.Wallet,
		req.DocumentsHash,
		req.LogoHash,
	))
	if err != nil {
		return nil, fmt.Errorf("insert application: %w", err)
	}
	return a, nil
}

func (r *Repo) GetApplication(ctx context.Context, q pgdb.Querier, id int64) (*domain.Application, error) {
	const query = `select ` + applicationColumns + ` from applications where id = $1;`

	a, err := scanApplication(q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrApplicationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get application %d: %w", id, err)
	}
	return a, nil
}

func (r *Repo) ListApplications(ctx context.Context, q pgdb.Querier) ([]domain.Application, error) {
	const query = `select ` + applicationColumns + ` from applications order by id;`
	return r.queryApplications(ctx, q, query)
}

func (r *Repo) ListApplicationsByStatus(ctx context.Context, q pgdb.Querier, status string) ([]domain.Application, error) {
	const query = `select ` + applicationColumns + ` from applications where status = $1 order by id;`
	return r.queryApplications(ctx, q, query, status)
}

func (r *Repo) ListApplicationsByApplicant(ctx context.Context, q pgdb.Querier, applicant string) ([]domain.Application, error) {
	const query = `select ` + applicationColumns + ` from applications where applicant = $1 order by id;`
	return r.queryApplications(ctx, q, query, applicant)
}

func (r *Repo) CountApplications(ctx context.Context, q pgdb.Querier) (int64, error) {
	var n int64
	if err := q.QueryRow(ctx, `select count(*) from applications;`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count applications: %w", err)
	}
	return n, nil
}

// MarkReviewed moves a pending application to a terminal state. The
// status guard in the where clause makes the pending->terminal
// transition happen at most once.
func (r *Repo) MarkReviewed(ctx context.Context, q pgdb.Querier, id int64, status, notes string) (*domain.Application, error) {
	const query = `
update applications
set status = $2, review_notes = $3, reviewed_at = now()
where id = $1 and status = 'pending'
returning ` + applicationColumns + `;`

	a, err := scanApplication(q.QueryRow(ctx, query, id, status, notes))
	if errors.Is(err, pgx.ErrNoRows) {
		// Either missing or already reviewed; look again to tell them apart.
		if _, getErr := r.GetApplication(ctx, q, id); getErr != nil {
			return nil, getErr
		}
		return nil, domain.ErrAlreadyReviewed
	}
	if err != nil {
		return nil, fmt.Errorf("mark application %d reviewed: %w", id, err)
	}
	return a, nil
}

func (r *Repo) queryApplications(ctx context.Context, q pgdb.Querier, query string, args ...any) ([]domain.Application, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Application, 0, 16)
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("list applications: %w", err)
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func scanProject(row pgx.Row) (*domain.Project, error) {
	var (
		p   domain.Project
		raw string
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Wallet, &raw, &p.Active, &p.CreatedAt); err != nil {
		return nil, err
	}
	total, err := pgdb.ParseAmount(raw)
	if err != nil {
		return nil, err
	}
	p.TotalReceived = total
	return &p, nil
}

func scanApplication(row pgx.Row) (*domain.Application, error) {
	var a domain.Application
	err := row.Scan(
		&a.ID,
		&a.Applicant,
		&a.OrganizationName,
		&a.EIN,
		&a.ContactEmail,
		&a.MissionStatement,
		&a.Wallet,
		&a.DocumentsHash,
		&a.LogoHash,
		&a.Status,
		&a.SubmittedAt,
		&a.ReviewedAt,
		&a.ReviewNotes,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
