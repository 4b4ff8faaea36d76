package observability

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

var (
	LoadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_loads_total",
			Help: "Catalog loads by result (ok, network, empty, missing_column, no_valid_records).",
		},
		[]string{"result"},
	)
	RowsSkippedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_rows_skipped_total",
			Help: "Sheet rows dropped while mapping, by reason.",
		},
		[]string{"reason"},
	)
	LoadDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "catalog_load_duration_seconds",
			Help:    "Time spent fetching and mapping the catalog.",
			Buckets: prometheus.DefBuckets,
		},
	)
	WorkingSetSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_working_set_products",
			Help: "Products in the current working set.",
		},
	)
	FilterResults = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "catalog_filter_results",
			Help:    "Number of products returned per filter call.",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
	)
	LinkChecksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_link_checks_total",
			Help: "Image link checks by outcome (ok, broken, error).",
		},
		[]string{"status"},
	)

	registerMu   sync.Mutex
	registeredTo = map[prometheus.Registerer]bool{}
)

func collectors() []prometheus.Collector {
	return []prometheus.Collector{LoadsTotal, RowsSkippedTotal, LoadDuration, WorkingSetSize, FilterResults, LinkChecksTotal}
}

// Register adds the catalog collectors to reg (DefaultRegisterer when nil).
// Calling it again for the same registerer is a no-op.
func Register(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	registerMu.Lock()
	defer registerMu.Unlock()
	if registeredTo[reg] {
		return nil
	}
	for _, c := range collectors() {
		if err := reg.Register(c); err != nil {
			var already prometheus.AlreadyRegisteredError
			if errors.As(err, &already) {
				continue
			}
			return err
		}
	}
	registeredTo[reg] = true
	return nil
}

// ObserveLoad records the outcome of one catalog load.
func ObserveLoad(result string, elapsed time.Duration) {
	LoadsTotal.WithLabelValues(result).Inc()
	LoadDuration.Observe(elapsed.Seconds())
}

// Start serves /metrics on its own port for the batch commands.
func Start(port string, logger *zap.Logger) {
	if err := Register(nil); err != nil {
		logger.Error("metrics registration failed", zap.Error(err))
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go func() {
		if err := http.ListenAndServe(":"+port, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics listener stopped", zap.String("port", port), zap.Error(err))
		}
	}()
}
