package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfahadasghar/flow-fund/internal/events/domain"
)

func TestFeed_Recent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	feed := NewFeed(db)

	t.Run("returns newest first", func(t *testing.T) {
		now := time.Now()
		mock.ExpectQuery(`SELECT id, kind, payload, created_at`).
			WithArgs(2).
			WillReturnRows(sqlmock.NewRows([]string{"id", "kind", "payload", "created_at"}).
				AddRow("uuid-2", domain.KindDonationMade, []byte(`{"donation_id":2}`), now).
				AddRow("uuid-1", domain.KindTransfer, []byte(`{"value":"100"}`), now.Add(-time.Minute)))

		events, err := feed.Recent(context.Background(), 2)
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, "uuid-2", events[0].ID)
		assert.Equal(t, domain.KindDonationMade, events[0].Kind)
		assert.JSONEq(t, `{"donation_id":2}`, string(events[0].Payload))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty trail", func(t *testing.T) {
		mock.ExpectQuery(`SELECT id, kind, payload, created_at`).
			WithArgs(10).
			WillReturnRows(sqlmock.NewRows([]string{"id", "kind", "payload", "created_at"}))

		events, err := feed.Recent(context.Background(), 10)
		require.NoError(t, err)
		assert.Empty(t, events)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestFeed_ByKind(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	feed := NewFeed(db)

	mock.ExpectQuery(`SELECT id, kind, payload, created_at`).
		WithArgs(domain.KindFundsAllocated, 5).
		WillReturnRows(sqlmock.NewRows([]string{"id", "kind", "payload", "created_at"}).
			AddRow("uuid-3", domain.KindFundsAllocated, []byte(`{"project_id":1,"amount":"33"}`), time.Now()))

	events, err := feed.ByKind(context.Background(), domain.KindFundsAllocated, 5)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, domain.KindFundsAllocated, events[0].Kind)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFeed_ByDonation(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	feed := NewFeed(db)

	now := time.Now()
	mock.ExpectQuery(`SELECT id, kind, payload, created_at`).
		WithArgs("7").
		WillReturnRows(sqlmock.NewRows([]string{"id", "kind", "payload", "created_at"}).
			AddRow("uuid-4", domain.KindDonationMade, []byte(`{"donation_id":7}`), now).
			AddRow("uuid-5", domain.KindFundsAllocated, []byte(`{"donation_id":7,"project_id":2,"amount":"66"}`), now))

	events, err := feed.ByDonation(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, domain.KindDonationMade, events[0].Kind)
	assert.Equal(t, domain.KindFundsAllocated, events[1].Kind)
	require.NoError(t, mock.ExpectationsWereMet())
}
