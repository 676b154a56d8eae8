package main

import (
	"context"
	"log"

	"go.uber.org/zap"

	appcfg "github.com/mfahadasghar/flow-fund/config"
	"github.com/mfahadasghar/flow-fund/internal/bootstrap"
)

type seedProject struct {
	Name        string
	Description string
	Wallet      string
}

var seedProjects = []seedProject{
	{
		Name:        "Clean Water Initiative",
		Description: "Providing clean drinking water to communities in need. Building wells and water purification systems in rural areas.",
		Wallet:      "0x70997970C51812dc3A010C7d01b50e0d17dc79C8",
	},
	{
		Name:        "Education for All",
		Description: "Supporting education programs for underprivileged children. Providing school supplies, books, and scholarships.",
		Wallet:      "0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC",
	},
	{
		Name:        "Global Food Bank",
		Description: "Fighting hunger by distributing food to families in need. Operating food banks and meal programs worldwide.",
		Wallet:      "0x90F79bf6EB2c4f870365E785982E1f101E93b906",
	},
	{
		Name:        "Healthcare Access Fund",
		Description: "Improving healthcare access in underserved communities. Funding medical supplies, clinics, and health education.",
		Wallet:      "0x15d34AAf54267DB7D7c367839AAf71A00a2C6A65",
	},
	{
		Name:        "Climate Action Project",
		Description: "Supporting environmental conservation and climate action initiatives. Tree planting, renewable energy, and sustainability programs.",
		Wallet:      "0x9965507D1a55bcC2695C58ba16FB37d819B0A4dc",
	},
}

func main() {
	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	if cfg.DB.MigrateOnStart {
		if err := bootstrap.RunMigrations(cfg.DB.DSN); err != nil {
			logger.Fatal("migrations failed", zap.Error(err))
		}
	}

	pool, err := bootstrap.OpenDB(ctx, cfg.DB)
	if err != nil {
		logger.Fatal("postgres connect failed", zap.Error(err))
	}
	defer pool.Close()

	svcs := bootstrap.BuildServices(bootstrap.RouterDeps{
		Cfg: cfg,
		DB:  pool,
		Log: logger,
	})

	count, err := svcs.Registry.GetTotalProjects(ctx)
	if err != nil {
		logger.Fatal("count projects failed", zap.Error(err))
	}
	if count > 0 {
		logger.Info("projects already present, nothing to seed", zap.Int64("count", count))
		return
	}

	for _, sp := range seedProjects {
		p, err := svcs.Registry.CreateProject(ctx, sp.Name, sp.Description, sp.Wallet)
		if err != nil {
			logger.Fatal("seed project failed", zap.String("name", sp.Name), zap.Error(err))
		}
		logger.Info("seeded project", zap.Int64("id", p.ID), zap.String("name", p.Name))
	}

	logger.Info("seeding complete", zap.Int("projects", len(seedProjects)))
}
