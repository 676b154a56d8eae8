package bootstrap

import (
	"database/sql"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	appcfg "github.com/mfahadasghar/flow-fund/config"
	allochttp "github.com/mfahadasghar/flow-fund/internal/allocator/http"
	allocrepo "github.com/mfahadasghar/flow-fund/internal/allocator/repository"
	allocservice "github.com/mfahadasghar/flow-fund/internal/allocator/service"
	httpapi "github.com/mfahadasghar/flow-fund/internal/api/http"
	"github.com/mfahadasghar/flow-fund/internal/api/http/middleware"
	"github.com/mfahadasghar/flow-fund/internal/events"
	eventshttp "github.com/mfahadasghar/flow-fund/internal/events/http"
	eventsrepo "github.com/mfahadasghar/flow-fund/internal/events/repository"
	ledgerhttp "github.com/mfahadasghar/flow-fund/internal/ledger/http"
	ledgerrepo "github.com/mfahadasghar/flow-fund/internal/ledger/repository"
	ledgerservice "github.com/mfahadasghar/flow-fund/internal/ledger/service"
	"github.com/mfahadasghar/flow-fund/internal/pgdb"
	reghttp "github.com/mfahadasghar/flow-fund/internal/registry/http"
	regrepo "github.com/mfahadasghar/flow-fund/internal/registry/repository"
	regservice "github.com/mfahadasghar/flow-fund/internal/registry/service"
)

type RouterDeps struct {
	ServiceName string
	Version     string
	Cfg         *appcfg.Config
	DB          *pgxpool.Pool
	SQLDB       *sql.DB
	Redis       *redis.Client
	Log         *zap.Logger
}

// Services exposes the constructed feature services for callers that
// need them outside the router (cron jobs, seeders).
type Services struct {
	Ledger    *ledgerservice.Service
	Registry  *regservice.Service
	Allocator *allocservice.Service
	Publisher *events.Publisher
}

// BuildServices wires repositories and services onto the shared pool.
func BuildServices(dep RouterDeps) *Services {
	pool := pgdb.NewPool(dep.DB)
	writer := eventsrepo.NewWriter()

	var publisher *events.Publisher
	if dep.Redis != nil {
		publisher = events.NewPublisher(dep.Redis)
	}

	ledgerStore := ledgerrepo.NewStore()
	registryRepo := regrepo.NewRepo()
	allocRepo := allocrepo.NewRepo()

	ledgerSvc := ledgerservice.New(pool, pool, ledgerStore, writer, dep.Log)
	registrySvc := regservice.New(pool, pool, registryRepo, writer, dep.Log)
	allocSvc := allocservice.New(
		pool, pool,
		ledgerStore,
		registryRepo,
		allocRepo,
		writer,
		publisher,
		dep.Cfg.Fund.CustodyAccount,
		dep.Log,
	)

	return &Services{
		Ledger:    ledgerSvc,
		Registry:  registrySvc,
		Allocator: allocSvc,
		Publisher: publisher,
	}
}

func BuildRouter(dep RouterDeps, svcs *Services) *gin.Engine {
	r := gin.Default()
	r.Use(cors.Default())

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.DB, dep.Redis)
	healthHandler.RegisterRoutes(r)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	api.Use(middleware.RequestIDMiddleware())
	api.Use(middleware.IdentityMiddleware())

	ledgerhttp.Register(api.Group("/ledger"), svcs.Ledger)
	reghttp.Register(api, svcs.Registry)

	rateLimit := middleware.RateLimitMiddleware(dep.Cfg.Server.RateLimitRPS, dep.Cfg.Server.RateLimitBurst)
	allochttp.Register(api, svcs.Allocator, rateLimit)

	if dep.SQLDB != nil && svcs.Publisher != nil {
		feed := eventsrepo.NewFeed(dep.SQLDB)
		eventshttp.Register(api, feed, svcs.Publisher)
	}

	admin := api.Group("/admin")
	admin.Use(middleware.APIKeyMiddleware(dep.Cfg.Server.APIKey))

	ledgerhttp.RegisterAdmin(admin.Group("/ledger"), svcs.Ledger)
	reghttp.RegisterAdmin(admin, svcs.Registry, dep.Cfg.Fund.RestrictFundsRecorder)
	allochttp.RegisterAdmin(admin, svcs.Allocator, dep.Cfg.Fund.TreasuryAccount)

	if !dep.Cfg.Fund.RestrictFundsRecorder {
		// The original contract let anyone call the received-funds hook.
		reghttp.RegisterOpenFundsRecorder(api, svcs.Registry)
	}

	return r
}
