package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mfahadasghar/flow-fund/internal/events/domain"
)

// Feed is the read side of the event trail, what indexers and the UI
// poll to replay history.
type Feed struct {
	db *sql.DB
}

func NewFeed(db *sql.DB) *Feed {
	return &Feed{db: db}
}

func (f *Feed) Recent(ctx context.Context, limit int) ([]domain.Event, error) {
	const query = `
SELECT id, kind, payload, created_at
FROM events
ORDER BY created_at DESC, id DESC
LIMIT $1`

	rows, err := f.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

func (f *Feed) ByKind(ctx context.Context, kind string, limit int) ([]domain.Event, error) {
	const query = `
SELECT id, kind, payload, created_at
FROM events
WHERE kind = $1
ORDER BY created_at DESC, id DESC
LIMIT $2`

	rows, err := f.db.QueryContext(ctx, query, kind, limit)
	if err != nil {
		return nil, fmt.Errorf("query %s events: %w", kind, err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// ByDonation returns the trail for one donation: the donation_made
// entry plus every funds_allocated it produced, oldest first.
func (f *Feed) ByDonation(ctx context.Context, donationID int64) ([]domain.Event, error) {
	const query = `
SELECT id, kind, payload, created_at
FROM events
WHERE payload->>'donation_id' = $1
ORDER BY created_at ASC, id ASC`

	rows, err := f.db.QueryContext(ctx, query, fmt.Sprintf("%d", donationID))
	if err != nil {
		return nil, fmt.Errorf("query donation %d events: %w", donationID, err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]domain.Event, error) {
	out := make([]domain.Event, 0, 16)
	for rows.Next() {
		var (
			e       domain.Event
			payload []byte
		)
		if err := rows.Scan(&e.ID, &e.Kind, &payload, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.Payload = payload
		out = append(out, e)
	}
	return out, rows.Err()
}
