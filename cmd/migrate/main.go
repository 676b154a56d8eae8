package main

import (
	"errors"
	"flag"
	"log"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	appcfg "github.com/mfahadasghar/flow-fund/config"
	"github.com/mfahadasghar/flow-fund/migrations"
)

func main() {
	var command string
	var version int
	flag.StringVar(&command, "cmd", "up", "Command to run: up, down, force")
	flag.IntVar(&version, "v", -1, "Version for force command")
	flag.Parse()

	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		log.Fatalf("open embedded migrations: %v", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, cfg.DB.DSN)
	if err != nil {
		log.Fatalf("migration init failed: %v", err)
	}
	defer m.Close()

	switch command {
	case "up":
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatalf("migration up failed: %v", err)
		}
		log.Println("migration up done")
	case "down":
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatalf("migration down failed: %v", err)
		}
		log.Println("migration down done")
	case "force":
		if version == -1 {
			log.Fatal("version (-v) is required for force")
		}
		if err := m.Force(version); err != nil {
			log.Fatalf("migration force failed: %v", err)
		}
		log.Printf("migration forced to version %d", version)
	default:
		log.Fatalf("unknown command: %s", command)
	}
}
