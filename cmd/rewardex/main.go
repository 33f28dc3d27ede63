package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	corecfg "github.com/rewardex-lab/rewardex/internal/core/config"
	"github.com/rewardex-lab/rewardex/internal/core/rewards"
	"github.com/rewardex-lab/rewardex/internal/core/storage"
	"github.com/rewardex-lab/rewardex/internal/core/storage/memory"
	"github.com/rewardex-lab/rewardex/internal/core/storage/postgres"
	"github.com/rewardex-lab/rewardex/internal/migrations"
	"github.com/rewardex-lab/rewardex/internal/reporting"
	"github.com/rewardex-lab/rewardex/internal/seed"
	"github.com/rewardex-lab/rewardex/internal/server"
	"github.com/rewardex-lab/rewardex/internal/transactions"
)

func main() {
	configPath := flag.String("config", "rewardex.yaml", "Path to configuration file")
	flag.Parse()

	// 0. Initialize Logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 1. Load Configuration
	cfg, err := corecfg.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	slog.Info("Loaded config", "storage", cfg.Database.Type, "seed_enabled", cfg.Seed.Enabled)

	// 2. Initialize Storage
	var (
		store    storage.TransactionStore
		healthDB *sql.DB
	)
	switch cfg.Database.Type {
	case corecfg.StoragePostgres:
		dbAdapter, err := postgres.NewAdapter(
			cfg.Database.DSN,
			cfg.Database.MaxOpenConns,
			cfg.Database.MaxIdleConns,
		)
		if err != nil {
			slog.Error("Failed to initialize database", "error", err)
			os.Exit(1)
		}
		defer dbAdapter.Close()

		if err := migrations.RunMigrations(dbAdapter.DB(), cfg.Database.AutoMigrate); err != nil {
			slog.Error("Failed to run database migrations", "error", err)
			os.Exit(1)
		}

		store = dbAdapter
		healthDB = dbAdapter.DB()

	case corecfg.StorageMemory:
		if cfg.Database.DataPath != "" {
			memStore, err := memory.LoadFile(cfg.Database.DataPath)
			if err != nil {
				slog.Error("Failed to load transaction data file", "path", cfg.Database.DataPath, "error", err)
				os.Exit(1)
			}
			store = memStore
		} else {
			store = memory.New()
		}

	default:
		slog.Error("Unsupported storage type", "type", cfg.Database.Type)
		os.Exit(1)
	}

	// 3. Initialize Generator + optional Seeding
	randomSeed := cfg.Seed.RandomSeed
	if randomSeed == 0 {
		randomSeed = time.Now().UnixNano()
	}
	gen, err := seed.NewGenerator(randomSeed)
	if err != nil {
		slog.Error("Failed to initialize generator", "error", err)
		os.Exit(1)
	}

	if cfg.Seed.Enabled {
		seeder := seed.NewSeeder(store, gen)
		if err := seeder.Seed(context.Background(), cfg.Seed.Customers, cfg.Seed.TxnsPerCustomer); err != nil {
			slog.Error("Failed to seed transactions", "error", err)
			os.Exit(1)
		}
	}

	// 4. Initialize the rewards snapshot cache (invalidated on every write)
	cache := rewards.NewCache(store)

	// 5. Initialize Services
	txnSvc := transactions.NewService(store, cache, gen, cfg.Server.MaxBodySizeMB)
	reportSvc := reporting.NewService(cache)

	// 6. Initialize Server
	srv := server.New(fmtAddr(cfg.Server.Host, cfg.Server.Port), healthDB, cfg.Server.Mode)
	txnSvc.RegisterRoutes(srv.Engine)
	reportSvc.RegisterRoutes(srv.Engine)

	// 7. Start
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Signal handler triggers the shutdown sequence below.
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		slog.Info("Signal received, shutting down...")
		cancel()
	}()

	// HTTP server blocks until ctx is cancelled.
	if err := srv.Run(ctx); err != nil {
		slog.Error("Server stopped with error", "error", err)
	}

	slog.Info("Shutdown complete")
}

func fmtAddr(host string, port int) string {
	return fmt.Sprintf("%s:%d", host, port)
}
