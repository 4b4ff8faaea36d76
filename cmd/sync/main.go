package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"catalogview/internal/catalog"
	"catalogview/internal/clock"
	"catalogview/internal/config"
	"catalogview/internal/db"
	"catalogview/internal/export"
	"catalogview/internal/logging"
	"catalogview/internal/model"
	"catalogview/internal/observability"
	"catalogview/internal/repository"
	"catalogview/internal/sheets"
)

// go run ./cmd/sync
// go run ./cmd/sync -csv=catalog.csv -skip-db
func main() {
	csvPath := flag.String("csv", "", "also write the loaded catalog to this CSV file")
	skipDB := flag.Bool("skip-db", false, "do not touch the Postgres mirror")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := logging.New(cfg.LogFormat, cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	observability.Start(cfg.MetricsPort, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *csvPath, *skipDB, logger); err != nil {
		logger.Error("sync failed", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("sync finished")
}

func run(ctx context.Context, cfg *config.Config, csvPath string, skipDB bool, logger *zap.Logger) error {
	source, err := sheets.NewSource(ctx, cfg)
	if err != nil {
		return err
	}
	clk := clock.NewRealClock()
	loader := catalog.NewLoader(source, clk, logger.Named("loader"))

	if skipDB {
		report, err := loader.LoadReport(ctx)
		if err != nil {
			return err
		}
		return writeCSV(csvPath, report.Products, logger)
	}

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()
	if err := db.EnsureSchema(ctx, pool); err != nil {
		return err
	}

	sqlDB, err := db.New(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	journal := &repository.SyncRepository{DB: sqlDB}
	mirror := &repository.CatalogRepository{DB: pool}

	if last, err := journal.Last(); err != nil {
		logger.Warn("failed to read previous sync run", zap.Error(err))
	} else if last != nil {
		logger.Info("previous sync run",
			zap.String("run_id", last.ID.String()),
			zap.Time("started_at", last.StartedAt),
			zap.Int("products", last.Products),
			zap.String("error", last.Error),
		)
	}

	runID := uuid.New()
	if err := journal.Start(runID, sourceLabel(cfg), clk.Now()); err != nil {
		return err
	}
	logger = logger.With(zap.String("run_id", runID.String()))

	report, err := loader.LoadReport(ctx)
	if err == nil {
		err = mirror.ReplaceAll(ctx, runID, report.Products)
	}

	errMsg := ""
	if err != nil {
		errMsg = err.Error()
	}
	if ferr := journal.Finish(runID, len(report.Products), len(report.Skipped), errMsg, clk.Now()); ferr != nil {
		logger.Error("failed to close sync run", zap.Error(ferr))
	}
	if err != nil {
		return err
	}

	logger.Info("mirror replaced",
		zap.Int("products", len(report.Products)),
		zap.Int("skipped", len(report.Skipped)),
	)
	return writeCSV(csvPath, report.Products, logger)
}

func writeCSV(path string, products []model.Product, logger *zap.Logger) error {
	if path == "" {
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := export.WriteCSV(f, products); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	logger.Info("csv written", zap.String("path", path), zap.Int("products", len(products)))
	return nil
}

func sourceLabel(cfg *config.Config) string {
	if cfg.SourceURL != "" {
		return cfg.SourceURL
	}
	return "sheets:" + cfg.SheetID + "/" + cfg.SheetRange()
}
