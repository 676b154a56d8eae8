package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/mfahadasghar/flow-fund/internal/pgdb"
)

// Writer appends events inside the same transaction as the mutation
// that produced them, so the audit trail never drifts from state.
type Writer struct{}

func NewWriter() *Writer {
	return &Writer{}
}

func (w *Writer) Append(ctx context.Context, q pgdb.Querier, kind string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", kind, err)
	}

	const query = `
insert into events (id, kind, payload)
values ($1, $2, $3::jsonb);
`
	if _, err := q.Exec(ctx, query, uuid.New().String(), kind, string(body)); err != nil {
		return fmt.Errorf("append %s event: %w", kind, err)
	}
	return nil
}
