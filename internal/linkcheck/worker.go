package linkcheck

import (
	"context"
	"net/http"
	"sync"

	"go.uber.org/zap"

	"catalogview/internal/model"
	"catalogview/internal/observability"
)

// StatusRecorder stores the result of one check.
type StatusRecorder interface {
	UpdateImageStatus(ctx context.Context, code string, ok bool) error
}

type Result struct {
	ProductCode string
	ImageURL    string
	OK          bool
	Err         error
}

// Run checks every product's image with a pool of workers and returns the
// results in product order. rec may be nil.
func Run(ctx context.Context, products []model.Product, client *http.Client, rec StatusRecorder, workers int, logger *zap.Logger) []Result {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	results := make([]Result, len(products))
	jobs := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				p := products[i]
				ok, err := CheckImage(ctx, client, p.ImageURL)
				results[i] = Result{ProductCode: p.ProductCode, ImageURL: p.ImageURL, OK: ok, Err: err}

				switch {
				case err != nil:
					observability.LinkChecksTotal.WithLabelValues("error").Inc()
					logger.Warn("image check failed", zap.String("product_code", p.ProductCode), zap.Error(err))
				case !ok:
					observability.LinkChecksTotal.WithLabelValues("broken").Inc()
					logger.Info("image is broken", zap.String("product_code", p.ProductCode), zap.String("url", p.ImageURL))
				default:
					observability.LinkChecksTotal.WithLabelValues("ok").Inc()
				}

				if rec == nil {
					continue
				}
				if err := rec.UpdateImageStatus(ctx, p.ProductCode, ok); err != nil {
					logger.Error("failed to record image status", zap.String("product_code", p.ProductCode), zap.Error(err))
				}
			}
		}()
	}

feed:
	for i := range products {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	return results
}
