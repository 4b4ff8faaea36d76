package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"catalogview/internal/config"
	"catalogview/internal/db"
	"catalogview/internal/export"
	"catalogview/internal/linkcheck"
	"catalogview/internal/logging"
	"catalogview/internal/model"
	"catalogview/internal/observability"
	"catalogview/internal/repository"
)

// go run ./cmd/linkcheck
// go run ./cmd/linkcheck -csv=catalog.csv
func main() {
	csvPath := flag.String("csv", "", "check the products of a CSV export instead of the Postgres mirror")
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

	var (
		products []model.Product
		rec      linkcheck.StatusRecorder
	)
	if *csvPath != "" {
		products, err = readCSV(*csvPath)
		if err != nil {
			logger.Fatal("failed to read csv export", zap.String("path", *csvPath), zap.Error(err))
		}
	} else {
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("failed to connect to postgres", zap.Error(err))
		}
		defer pool.Close()

		repo := &repository.CatalogRepository{DB: pool}
		products, err = repo.List(ctx)
		if err != nil {
			logger.Fatal("failed to list mirrored products", zap.Error(err))
		}
		rec = repo
	}
	logger.Info("checking product images", zap.Int("products", len(products)), zap.Int("workers", cfg.WorkerCount))

	client := &http.Client{Timeout: cfg.FetchTimeout}
	results := linkcheck.Run(ctx, products, client, rec, cfg.WorkerCount, logger.Named("linkcheck"))

	broken := 0
	for _, r := range results {
		if r.ProductCode != "" && !r.OK {
			broken++
		}
	}
	logger.Info("image check finished", zap.Int("checked", len(results)), zap.Int("broken", broken))
}

func readCSV(path string) ([]model.Product, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return export.ReadCSV(f)
}
