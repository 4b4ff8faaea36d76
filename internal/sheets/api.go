package sheets

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"catalogview/internal/catalog"
	"catalogview/internal/config"
)

var (
	_ catalog.Source = (*APISource)(nil)
	_ catalog.Source = (*HTTPSource)(nil)
)

// APISource reads a range through the Google Sheets v4 API with an API key.
type APISource struct {
	svc     *sheetsapi.Service
	sheetID string
	rng     string
	timeout time.Duration
}

// NewAPISource builds the Sheets client. endpoint overrides the API base URL
// and may be empty.
func NewAPISource(ctx context.Context, apiKey, sheetID, rng, endpoint string, timeout time.Duration) (*APISource, error) {
	opts := []option.ClientOption{option.WithAPIKey(apiKey)}
	if endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint))
	}
	svc, err := sheetsapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets: create service: %w", err)
	}
	return &APISource{svc: svc, sheetID: sheetID, rng: rng, timeout: timeout}, nil
}

func (s *APISource) Values(ctx context.Context) ([][]string, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	resp, err := s.svc.Spreadsheets.Values.Get(s.sheetID, s.rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("sheets: get %s!%s: %w", s.sheetID, s.rng, err)
	}
	return toStrings(resp.Values), nil
}

// NewSource picks the plain HTTP source when a source URL is configured and
// the Sheets API otherwise.
func NewSource(ctx context.Context, cfg *config.Config) (catalog.Source, error) {
	if cfg.SourceURL != "" {
		return NewHTTPSource(cfg.SourceURL, cfg.FetchTimeout), nil
	}
	src, err := NewAPISource(ctx, cfg.SheetsAPIKey, cfg.SheetID, cfg.SheetRange(), cfg.SheetsEndpoint, cfg.FetchTimeout)
	if err != nil {
		return nil, err
	}
	return src, nil
}
