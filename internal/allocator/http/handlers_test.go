package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mfahadasghar/flow-fund/internal/allocator/domain"
	"github.com/mfahadasghar/flow-fund/internal/allocator/service"
	"github.com/mfahadasghar/flow-fund/internal/api/http/middleware"
	"github.com/mfahadasghar/flow-fund/internal/pgdb"
	regdomain "github.com/mfahadasghar/flow-fund/internal/registry/domain"
)

const (
	custody = "0x00000000000000000000000000000000000000ff"
	donor   = "0x70997970c51812dc3a010c7d01b50e0d17dc79c8"
	walletA = "0x3c44cdddb6a900fa2b585dd299e03d12fa4293bc"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeRunner struct{}

func (fakeRunner) RunTx(ctx context.Context, fn func(q pgdb.Querier) error) error {
	return fn(nil)
}

type memLedger struct {
	balances   map[string]*uint256.Int
	allowances map[string]*uint256.Int
}

func (l *memLedger) balance(addr string) *uint256.Int {
	if b, ok := l.balances[addr]; ok {
		return b
	}
	return uint256.NewInt(0)
}

func (l *memLedger) BalanceOf(_ context.Context, _ pgdb.Querier, address string) (*uint256.Int, error) {
	return l.balance(address).Clone(), nil
}

func (l *memLedger) Allowance(_ context.Context, _ pgdb.Querier, owner, spender string) (*uint256.Int, error) {
	if a, ok := l.allowances[owner+"|"+spender]; ok {
		return a.Clone(), nil
	}
	return uint256.NewInt(0), nil
}

func (l *memLedger) Credit(_ context.Context, _ pgdb.Querier, address string, amount *uint256.Int) error {
	l.balances[address] = new(uint256.Int).Add(l.balance(address), amount)
	return nil
}

func (l *memLedger) Debit(_ context.Context, _ pgdb.Querier, address string, amount *uint256.Int) error {
	l.balances[address] = new(uint256.Int).Sub(l.balance(address), amount)
	return nil
}

func (l *memLedger) SpendAllowance(_ context.Context, _ pgdb.Querier, owner, spender string, amount *uint256.Int) error {
	key := owner + "|" + spender
	l.allowances[key] = new(uint256.Int).Sub(l.allowances[key], amount)
	return nil
}

type fakeRegistry struct {
	projects map[int64]*regdomain.Project
}

func (r *fakeRegistry) GetProject(_ context.Context, _ pgdb.Querier, id int64) (*regdomain.Project, error) {
	p, ok := r.projects[id]
	if !ok {
		return nil, regdomain.ErrProjectNotFound
	}
	return p, nil
}

func (r *fakeRegistry) AddFundsReceived(_ context.Context, _ pgdb.Querier, id int64, _ *uint256.Int) error {
	if _, ok := r.projects[id]; !ok {
		return regdomain.ErrProjectNotFound
	}
	return nil
}

type memRepo struct {
	nextID    int64
	donations map[int64]*domain.Donation
	totals    domain.Totals
}

func (m *memRepo) InsertDonation(_ context.Context, _ pgdb.Querier, donor string, total *uint256.Int, projectIDs []int64, allocations []*uint256.Int) (*domain.Donation, error) {
	d := &domain.Donation{
		ID:          m.nextID,
		Donor:       donor,
		TotalAmount: total.Clone(),
		ProjectIDs:  projectIDs,
		Allocations: allocations,
	}
	m.nextID++
	m.donations[d.ID] = d
	return d, nil
}

func (m *memRepo) GetDonation(_ context.Context, _ pgdb.Querier, id int64) (*domain.Donation, error) {
	d, ok := m.donations[id]
	if !ok {
		return nil, domain.ErrDonationNotFound
	}
	return d, nil
}

func (m *memRepo) ListDonationIDsByDonor(_ context.Context, _ pgdb.Querier, donor string) ([]int64, error) {
	var ids []int64
	for id, d := range m.donations {
		if d.Donor == donor {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (m *memRepo) ListDonationIDsByProject(_ context.Context, _ pgdb.Querier, _ int64) ([]int64, error) {
	return nil, nil
}

func (m *memRepo) GetDonorStats(_ context.Context, _ pgdb.Querier, donor string) (*domain.DonorStats, error) {
	return &domain.DonorStats{Donor: donor, TotalDonated: uint256.NewInt(0)}, nil
}

func (m *memRepo) BumpDonorStats(_ context.Context, _ pgdb.Querier, _ string, _ *uint256.Int) error {
	return nil
}

func (m *memRepo) BumpTotals(_ context.Context, _ pgdb.Querier, amount, dust *uint256.Int) error {
	m.totals.TotalDonated = new(uint256.Int).Add(m.totals.TotalDonated, amount)
	m.totals.DonationCount++
	m.totals.Dust = new(uint256.Int).Add(m.totals.Dust, dust)
	return nil
}

func (m *memRepo) Totals(_ context.Context, _ pgdb.Querier) (*domain.Totals, error) {
	return &m.totals, nil
}

func (m *memRepo) ReduceDust(_ context.Context, _ pgdb.Querier, _ *uint256.Int) error {
	return nil
}

type nopWriter struct{}

func (nopWriter) Append(_ context.Context, _ pgdb.Querier, _ string, _ any) error { return nil }

func newTestRouter() *gin.Engine {
	ledger := &memLedger{
		balances:   map[string]*uint256.Int{donor: uint256.NewInt(1000)},
		allowances: map[string]*uint256.Int{donor + "|" + custody: uint256.NewInt(1000)},
	}
	registry := &fakeRegistry{projects: map[int64]*regdomain.Project{
		1: {ID: 1, Wallet: walletA, Active: true},
	}}
	repo := &memRepo{
		nextID:    1,
		donations: map[int64]*domain.Donation{},
		totals: domain.Totals{
			TotalDonated: uint256.NewInt(0),
			Dust:         uint256.NewInt(0),
		},
	}

	svc := service.New(nil, fakeRunner{}, ledger, registry, repo, nopWriter{}, nil, custody, zap.NewNop())

	r := gin.New()
	api := r.Group("/api/v1")
	api.Use(middleware.IdentityMiddleware())
	Register(api, svc, func(c *gin.Context) { c.Next() })
	return r
}

func postJSON(r *gin.Engine, path string, body any, account string) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	if account != "" {
		req.Header.Set("X-Account-Address", account)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestDonateEndpoint(t *testing.T) {
	t.Run("requires an identified wallet", func(t *testing.T) {
		r := newTestRouter()
		w := postJSON(r, "/api/v1/donate", gin.H{
			"project_ids": []int64{1},
			"percentages": []int64{10000},
			"amount":      "100",
		}, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("creates a donation", func(t *testing.T) {
		r := newTestRouter()
		w := postJSON(r, "/api/v1/donate", gin.H{
			"project_ids": []int64{1},
			"percentages": []int64{10000},
			"amount":      "100",
		}, donor)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var resp struct {
			OK       bool `json:"ok"`
			Donation struct {
				ID          int64    `json:"id"`
				Donor       string   `json:"donor"`
				TotalAmount string   `json:"total_amount"`
				Allocations []string `json:"allocations"`
			} `json:"donation"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.OK)
		assert.Equal(t, donor, resp.Donation.Donor)
		assert.Equal(t, "100", resp.Donation.TotalAmount)
		assert.Equal(t, []string{"100"}, resp.Donation.Allocations)
	})

	t.Run("rejects a bad percentage sum", func(t *testing.T) {
		r := newTestRouter()
		w := postJSON(r, "/api/v1/donate", gin.H{
			"project_ids": []int64{1},
			"percentages": []int64{9999},
			"amount":      "100",
		}, donor)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "percentages must sum to 100%")
	})

	t.Run("rejects a malformed amount", func(t *testing.T) {
		r := newTestRouter()
		w := postJSON(r, "/api/v1/donate", gin.H{
			"project_ids": []int64{1},
			"percentages": []int64{10000},
			"amount":      "not-a-number",
		}, donor)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestDonationReads(t *testing.T) {
	r := newTestRouter()

	w := postJSON(r, "/api/v1/donate", gin.H{
		"project_ids": []int64{1},
		"percentages": []int64{10000},
		"amount":      "100",
	}, donor)
	require.Equal(t, http.StatusCreated, w.Code)

	t.Run("get by id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/donations/1", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("unknown id is 404", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/donations/999", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("stats", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"total_donated":"100"`)
	})
}

func TestSweepDustEndpoint(t *testing.T) {
	const treasury = "0x000000000000000000000000000000000000dead"

	newAdminRouter := func(defaultTo string) (*gin.Engine, *memLedger) {
		ledger := &memLedger{
			balances:   map[string]*uint256.Int{custody: uint256.NewInt(7)},
			allowances: map[string]*uint256.Int{},
		}
		repo := &memRepo{
			nextID:    1,
			donations: map[int64]*domain.Donation{},
			totals: domain.Totals{
				TotalDonated: uint256.NewInt(0),
				Dust:         uint256.NewInt(7),
			},
		}
		registry := &fakeRegistry{projects: map[int64]*regdomain.Project{}}
		svc := service.New(nil, fakeRunner{}, ledger, registry, repo, nopWriter{}, nil, custody, zap.NewNop())

		r := gin.New()
		admin := r.Group("/api/v1/admin")
		RegisterAdmin(admin, svc, defaultTo)
		return r, ledger
	}

	t.Run("falls back to the treasury account", func(t *testing.T) {
		r, ledger := newAdminRouter(treasury)

		rec := postJSON(r, "/api/v1/admin/dust/sweep", gin.H{}, "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"swept":"7"`)
		assert.Equal(t, uint64(7), ledger.balance(treasury).Uint64())
		assert.True(t, ledger.balance(custody).IsZero())
	})

	t.Run("request body target wins over the default", func(t *testing.T) {
		r, ledger := newAdminRouter(treasury)

		rec := postJSON(r, "/api/v1/admin/dust/sweep", gin.H{"to": walletA}, "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, uint64(7), ledger.balance(walletA).Uint64())
		assert.True(t, ledger.balance(treasury).IsZero())
	})

	t.Run("no target anywhere is a bad request", func(t *testing.T) {
		r, _ := newAdminRouter("")

		rec := postJSON(r, "/api/v1/admin/dust/sweep", gin.H{}, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
