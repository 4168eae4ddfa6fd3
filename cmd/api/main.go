package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/fleetledger/internal/config"
	"github.com/MrJamesThe3rd/fleetledger/internal/database"
	"github.com/MrJamesThe3rd/fleetledger/internal/export"
	"github.com/MrJamesThe3rd/fleetledger/internal/fleet"
	fleetStore "github.com/MrJamesThe3rd/fleetledger/internal/fleet/store"
	fleetHttp "github.com/MrJamesThe3rd/fleetledger/internal/http"
	exportHandler "github.com/MrJamesThe3rd/fleetledger/internal/http/export"
	fleetHandler "github.com/MrJamesThe3rd/fleetledger/internal/http/fleet"
	fuelHandler "github.com/MrJamesThe3rd/fleetledger/internal/http/fuel"
	importHandler "github.com/MrJamesThe3rd/fleetledger/internal/http/importcsv"
	ledgerHandler "github.com/MrJamesThe3rd/fleetledger/internal/http/ledger"
	matchingHandler "github.com/MrJamesThe3rd/fleetledger/internal/http/matching"
	"github.com/MrJamesThe3rd/fleetledger/internal/importer"
	"github.com/MrJamesThe3rd/fleetledger/internal/importer/statement"
	"github.com/MrJamesThe3rd/fleetledger/internal/ledger"
	ledgerStore "github.com/MrJamesThe3rd/fleetledger/internal/ledger/store"
	"github.com/MrJamesThe3rd/fleetledger/internal/matching"
	matchingStore "github.com/MrJamesThe3rd/fleetledger/internal/matching/store"
	"github.com/MrJamesThe3rd/fleetledger/internal/metrics"
	"github.com/MrJamesThe3rd/fleetledger/internal/scheduler"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(context.Background(), cfg.ConnectionString(), database.Pool{
		MaxOpenConns:    cfg.DB.MaxOpenConns,
		MaxIdleConns:    cfg.DB.MaxIdleConns,
		ConnMaxLifetime: cfg.DB.ConnMaxLifetime,
	})
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	metrics.Init(db)

	shards := cfg.Ledger.Shards
	if shards == 0 {
		shards = runtime.NumCPU()
	}

	profiles, err := statement.LoadProfilesFile(cfg.Import.ProfilesFile)
	if err != nil {
		slog.Error("failed to load statement profiles", "error", err)
		os.Exit(1)
	}

	var (
		ledgerService   = ledger.NewService(ledgerStore.New(db), ledger.NewAggregator(cfg.Ledger.ParallelThreshold, shards))
		fleetService    = fleet.NewService(fleetStore.New(db), ledgerService)
		matchingService = matching.NewService(matchingStore.New(db))
		importService   = importer.NewService(fleetService, matchingService, ledgerService,
			importer.WithParser(statement.NewParser(profiles...)))
		exportService = export.NewService(ledgerService)
	)

	sched := scheduler.New(cfg.Snapshot.Timeout)
	if cfg.Snapshot.Schedule != "" {
		if err := scheduleSnapshots(sched, exportService, cfg); err != nil {
			slog.Error("failed to schedule statement snapshots", "error", err)
			os.Exit(1)
		}
	}

	router := fleetHttp.New(fleetHttp.Options{
		JWTSecret:      []byte(cfg.Auth.Secret),
		JWTIssuer:      cfg.Auth.Issuer,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	}, fleetHttp.Handlers{
		Fuel:     fuelHandler.NewHandler(cfg.Fuel.DefaultBufferPercent),
		Fleet:    fleetHandler.NewHandler(fleetService, cfg.Fuel.DefaultBufferPercent),
		Ledger:   ledgerHandler.NewHandler(ledgerService),
		Import:   importHandler.NewHandler(importService),
		Matching: matchingHandler.NewHandler(matchingService),
		Export:   exportHandler.NewHandler(exportService),
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sched.Start()

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.Timeout)
		defer cancel()

		sched.Stop(shutdownCtx)

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown failed", "error", err)
		}
	}()

	slog.Info("starting server", "name", cfg.App.Name, "addr", srv.Addr)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func scheduleSnapshots(sched *scheduler.Scheduler, svc *export.Service, cfg *config.Config) error {
	companies := make([]uuid.UUID, 0, len(cfg.Snapshot.Companies))
	for _, c := range cfg.Snapshot.Companies {
		id, err := uuid.Parse(c)
		if err != nil {
			return fmt.Errorf("SNAPSHOT_COMPANIES: %w", err)
		}

		companies = append(companies, id)
	}

	job, err := export.NewSnapshotJob(svc, companies, cfg.Snapshot.Dir, cfg.Snapshot.Formats)
	if err != nil {
		return err
	}

	return sched.AddJob(cfg.Snapshot.Schedule, job)
}
