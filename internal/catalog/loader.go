package catalog

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"catalogview/internal/clock"
	"catalogview/internal/model"
	"catalogview/internal/observability"
)

// Source yields the raw sheet grid, row 0 being the headers.
type Source interface {
	Values(ctx context.Context) ([][]string, error)
}

type SkipReason string

const (
	SkipShortRow    SkipReason = "short_row"
	SkipMissingCode SkipReason = "missing_product_code"
)

// SkippedRow is a data row dropped during mapping. Row is the 1-based sheet row.
type SkippedRow struct {
	Row    int
	Reason SkipReason
}

// Report is the outcome of a successful load.
type Report struct {
	Products []model.Product
	Skipped  []SkippedRow
}

type Loader struct {
	source Source
	clock  clock.Clock
	logger *zap.Logger
}

func NewLoader(source Source, clk clock.Clock, logger *zap.Logger) *Loader {
	if clk == nil {
		clk = clock.NewRealClock()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{source: source, clock: clk, logger: logger}
}

// Load fetches the sheet once and returns its products, newest first.
func (l *Loader) Load(ctx context.Context) ([]model.Product, error) {
	report, err := l.LoadReport(ctx)
	if err != nil {
		return nil, err
	}
	return report.Products, nil
}

// LoadReport is Load plus the list of rows that were skipped.
func (l *Loader) LoadReport(ctx context.Context) (Report, error) {
	start := time.Now()
	report, err := l.load(ctx)
	observability.ObserveLoad(resultLabel(err), time.Since(start))
	if err != nil {
		l.logger.Error("catalog load failed", zap.Error(err))
		return Report{}, err
	}

	for _, s := range report.Skipped {
		observability.RowsSkippedTotal.WithLabelValues(string(s.Reason)).Inc()
		switch s.Reason {
		case SkipShortRow:
			l.logger.Warn("row has insufficient data, skipping", zap.Int("row", s.Row))
		case SkipMissingCode:
			l.logger.Warn("row is missing required ProductCode, skipping", zap.Int("row", s.Row))
		}
	}
	l.logger.Info("catalog loaded",
		zap.Int("products", len(report.Products)),
		zap.Int("skipped", len(report.Skipped)),
	)
	return report, nil
}

func (l *Loader) load(ctx context.Context) (Report, error) {
	values, err := l.source.Values(ctx)
	if err != nil {
		return Report{}, &NetworkError{Err: err}
	}
	return Parse(values, l.clock.Now())
}

// Parse validates the header row, maps data rows to products and sorts them
// newest first. now fills in a missing CreatedTime.
func Parse(values [][]string, now time.Time) (Report, error) {
	if len(values) < 2 {
		return Report{}, ErrEmptyData
	}

	headers := values[0]
	index := make(map[string]int, len(model.RequiredColumns))
	for _, col := range model.RequiredColumns {
		i := headerIndex(headers, col)
		if i < 0 {
			return Report{}, &MissingColumnError{Column: col}
		}
		index[col] = i
	}

	loadedAt := now.UTC().Format(isoMillis)
	codeIdx := index[model.ColProductCode]

	var report Report
	for r := 1; r < len(values); r++ {
		row := values[r]
		if len(row) < len(headers) {
			report.Skipped = append(report.Skipped, SkippedRow{Row: r + 1, Reason: SkipShortRow})
			continue
		}
		code := strings.TrimSpace(row[codeIdx])
		if code == "" {
			report.Skipped = append(report.Skipped, SkippedRow{Row: r + 1, Reason: SkipMissingCode})
			continue
		}

		var p model.Product
		for col, i := range index {
			v := row[i]
			if v == "" {
				v = model.Defaults[col]
			}
			p.Set(col, v)
		}
		if p.CreatedTime == "" {
			p.CreatedTime = loadedAt
		}
		p.ProductCode = code
		report.Products = append(report.Products, p)
	}

	if len(report.Products) == 0 {
		return Report{}, ErrNoValidRecords
	}

	sortNewestFirst(report.Products)
	return report, nil
}

func headerIndex(headers []string, col string) int {
	for i, h := range headers {
		if strings.EqualFold(strings.TrimSpace(h), col) {
			return i
		}
	}
	return -1
}

// sortNewestFirst orders by CreatedTime descending. Unparseable times sort last;
// equal times keep sheet order.
func sortNewestFirst(products []model.Product) {
	times := make(map[string]time.Time, len(products))
	for _, p := range products {
		if _, ok := times[p.CreatedTime]; !ok {
			t, _ := ParseTime(p.CreatedTime)
			times[p.CreatedTime] = t
		}
	}
	sort.SliceStable(products, func(i, j int) bool {
		return times[products[i].CreatedTime].After(times[products[j].CreatedTime])
	})
}
