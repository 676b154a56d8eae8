package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/jackc/pgx/v5"

	"github.com/mfahadasghar/flow-fund/internal/allocator/domain"
	"github.com/mfahadasghar/flow-fund/internal/pgdb"
)

// Repo owns donation records, the donor/project indices and the
// running totals. All indices are append-only; nothing here deletes.
type Repo struct{}

func NewRepo() *Repo {
	return &Repo{}
}

// InsertDonation writes the donation row and one index row per named
// project, zero allocations included.
func (r *Repo) InsertDonation(ctx context.Context, q pgdb.Querier, donor string, total *uint256.Int, projectIDs []int64, allocations []*uint256.Int) (*domain.Donation, error) {
	allocStrs := make([]string, len(allocations))
	for i, a := range allocations {
		allocStrs[i] = pgdb.AmountArg(a)
	}

	const query = `
insert into donations (donor, total_amount, project_ids, allocations)
values ($1, $2::numeric, $3::bigint[], $4::numeric[])
returning id, created_at;
`
	d := &domain.Donation{
		Donor:       donor,
		TotalAmount: total.Clone(),
		ProjectIDs:  projectIDs,
		Allocations: allocations,
	}
	if err := q.QueryRow(ctx, query, donor, pgdb.AmountArg(total), projectIDs, allocStrs).
		Scan(&d.ID, &d.Timestamp); err != nil {
		return nil, fmt.Errorf("insert donation: %w", err)
	}

	// A donation may name the same project more than once; the index
	// row keeps the summed allocation per (donation, project) pair.
	const indexQuery = `
insert into donation_projects (donation_id, project_id, allocation)
values ($1, $2, $3::numeric)
on conflict (donation_id, project_id)
do update set allocation = donation_projects.allocation + excluded.allocation;
`
	for i, projectID := range projectIDs {
		if _, err := q.Exec(ctx, indexQuery, d.ID, projectID, allocStrs[i]); err != nil {
			return nil, fmt.Errorf("index donation %d project %d: %w", d.ID, projectID, err)
		}
	}

	return d, nil
}

func (r *Repo) GetDonation(ctx context.Context, q pgdb.Querier, id int64) (*domain.Donation, error) {
	const query = `
select id, donor, total_amount::text, project_ids, allocations::text[], created_at
from donations
where id = $1;
`
	var (
		d         domain.Donation
		totalRaw  string
		allocRaws []string
	)
	err := q.QueryRow(ctx, query, id).
		Scan(&d.ID, &d.Donor, &totalRaw, &d.ProjectIDs, &allocRaws, &d.Timestamp)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrDonationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get donation %d: %w", id, err)
	}

	if d.TotalAmount, err = pgdb.ParseAmount(totalRaw); err != nil {
		return nil, err
	}
	d.Allocations = make([]*uint256.Int, len(allocRaws))
	for i, raw := range allocRaws {
		if d.Allocations[i], err = pgdb.ParseAmount(raw); err != nil {
			return nil, err
		}
	}
	return &d, nil
}

func (r *Repo) ListDonationIDsByDonor(ctx context.Context, q pgdb.Querier, donor string) ([]int64, error) {
	const query = `select id from donations where donor = $1 order by id;`
	return r.queryIDs(ctx, q, query, donor)
}

func (r *Repo) ListDonationIDsByProject(ctx context.Context, q pgdb.Querier, projectID int64) ([]int64, error) {
	const query = `select donation_id from donation_projects where project_id = $1 order by donation_id;`
	return r.queryIDs(ctx, q, query, projectID)
}

func (r *Repo) GetDonorStats(ctx context.Context, q pgdb.Querier, donor string) (*domain.DonorStats, error) {
	const query = `
select donation_count, total_donated::text
from donor_stats
where donor = $1;
`
	stats := &domain.DonorStats{Donor: donor, TotalDonated: uint256.NewInt(0)}

	var totalRaw string
	err := q.QueryRow(ctx, query, donor).Scan(&stats.Count, &totalRaw)
	if errors.Is(err, pgx.ErrNoRows) {
		return stats, nil
	}
	if err != nil {
		return nil, fmt.Errorf("donor stats %s: %w", donor, err)
	}

	if stats.TotalDonated, err = pgdb.ParseAmount(totalRaw); err != nil {
		return nil, err
	}
	return stats, nil
}

// BumpDonorStats increments the per-donor running count and total.
func (r *Repo) BumpDonorStats(ctx context.Context, q pgdb.Querier, donor string, amount *uint256.Int) error {
	const query = `
insert into donor_stats (donor, donation_count, total_donated)
values ($1, 1, $2::numeric)
on conflict (donor)
do update set donation_count = donor_stats.donation_count + 1,
              total_donated  = donor_stats.total_donated + excluded.total_donated;
`
	if _, err := q.Exec(ctx, query, donor, pgdb.AmountArg(amount)); err != nil {
		return fmt.Errorf("bump donor stats %s: %w", donor, err)
	}
	return nil
}

// BumpTotals adds one donation to the allocator-wide aggregates. dust
// is the un-allocated remainder retained in custody.
func (r *Repo) BumpTotals(ctx context.Context, q pgdb.Querier, amount, dust *uint256.Int) error {
	const query = `
update allocator_totals
set total_donated  = total_donated + $1::numeric,
    donation_count = donation_count + 1,
    dust           = dust + $2::numeric
where id = 1;
`
	if _, err := q.Exec(ctx, query, pgdb.AmountArg(amount), pgdb.AmountArg(dust)); err != nil {
		return fmt.Errorf("bump totals: %w", err)
	}
	return nil
}

func (r *Repo) Totals(ctx context.Context, q pgdb.Querier) (*domain.Totals, error) {
	const query = `
select total_donated::text, donation_count, dust::text
from allocator_totals
where id = 1;
`
	var (
		t        domain.Totals
		totalRaw string
		dustRaw  string
	)
	if err := q.QueryRow(ctx, query).Scan(&totalRaw, &t.DonationCount, &dustRaw); err != nil {
		return nil, fmt.Errorf("read totals: %w", err)
	}

	var err error
	if t.TotalDonated, err = pgdb.ParseAmount(totalRaw); err != nil {
		return nil, err
	}
	if t.Dust, err = pgdb.ParseAmount(dustRaw); err != nil {
		return nil, err
	}
	return &t, nil
}

// ReduceDust consumes swept dust from the counter. The guard keeps the
// counter from going negative.
func (r *Repo) ReduceDust(ctx context.Context, q pgdb.Querier, amount *uint256.Int) error {
	const query = `
update allocator_totals
set dust = dust - $1::numeric
where id = 1 and dust >= $1::numeric;
`
	ct, err := q.Exec(ctx, query, pgdb.AmountArg(amount))
	if err != nil {
		return fmt.Errorf("reduce dust: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNoDust
	}
	return nil
}

func (r *Repo) queryIDs(ctx context.Context, q pgdb.Querier, query string, arg any) ([]int64, error) {
	rows, err := q.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("query donation ids: %w", err)
	}
	defer rows.Close()

	out := make([]int64, 0, 16)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan donation id: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
