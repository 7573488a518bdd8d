package sheetsync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/andymarkow/pandero/internal/metrics"
	"github.com/andymarkow/pandero/internal/sheets/sheetclient"
	"github.com/andymarkow/pandero/internal/storage"
)

// RowSource yields the rows of a spreadsheet tab.
type RowSource interface {
	GetRows(ctx context.Context, tab string) ([]sheetclient.Row, error)
}

type SheetSync struct {
	log      *slog.Logger
	storage  storage.Storage
	source   RowSource
	poolSize int
}

type Config struct {
	logger   *slog.Logger
	poolSize int
}

type Option func(c *Config)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.logger = logger
	}
}

// WithPoolSize sets the number of workers importing the rows of one tab.
func WithPoolSize(size int) Option {
	return func(c *Config) {
		if size > 0 {
			c.poolSize = size
		}
	}
}

func New(store storage.Storage, source RowSource, opts ...Option) *SheetSync {
	cfg := &Config{
		logger:   slog.Default(),
		poolSize: 1,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	return &SheetSync{
		log:      cfg.logger.With(slog.String("module", "sheet_sync")),
		storage:  store,
		source:   source,
		poolSize: cfg.poolSize,
	}
}

// Report counts the rows of one pass.
type Report struct {
	Imported int
	Existing int
	Skipped  int
}

// importer stores one row. It reports false when the row was already present.
type importer func(ctx context.Context, s storage.Storage, row sheetclient.Row, occurrence int) (bool, error)

// Sync imports the rows of every tab that are not stored yet. A tab that
// cannot be fetched is logged and the remaining tabs are still processed.
func (s *SheetSync) Sync(ctx context.Context) (map[string]Report, error) {
	s.log.Info("Start sheet sync")

	tabs := []struct {
		name string
		imp  importer
	}{
		{sheetclient.TabUsers, importUser},
		{sheetclient.TabGroups, importGroup},
		{sheetclient.TabMemberships, importMembership},
		{sheetclient.TabPayments, importPayment},
	}

	reports := make(map[string]Report, len(tabs))

	var errs []error

	for _, tab := range tabs {
		rows, err := s.source.GetRows(ctx, tab.name)
		if err != nil {
			s.log.Error("source.GetRows()", slog.String("tab", tab.name), slog.Any("error", err))
			errs = append(errs, fmt.Errorf("source.GetRows %s: %w", tab.name, err))

			continue
		}

		reports[tab.name] = s.syncTab(ctx, tab.name, tab.imp, rows)
	}

	return reports, errors.Join(errs...)
}

type job struct {
	row        sheetclient.Row
	occurrence int
}

func (s *SheetSync) syncTab(ctx context.Context, tab string, imp importer, rows []sheetclient.Row) Report {
	jobsCh := jobGenerator(ctx, tab, rows)

	var (
		mu     sync.Mutex
		report Report
	)

	wg := &sync.WaitGroup{}

	// Spawn workers
	for w := 1; w <= s.poolSize; w++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for j := range jobsCh {
				created, err := imp(ctx, s.storage, j.row, j.occurrence)

				mu.Lock()

				switch {
				case err != nil:
					report.Skipped++

					s.log.Warn("Skipping row", slog.String("tab", tab), slog.Any("error", err))
					metrics.SheetRowsSkipped.WithLabelValues(tab).Inc()
				case created:
					report.Imported++

					metrics.SheetRowsImported.WithLabelValues(tab).Inc()
				default:
					report.Existing++
				}

				mu.Unlock()
			}
		}()
	}

	// Wait for workers
	wg.Wait()

	s.log.Info("Sheet tab synced",
		slog.String("tab", tab),
		slog.Int("imported", report.Imported),
		slog.Int("existing", report.Existing),
		slog.Int("skipped", report.Skipped),
	)

	return report
}

// jobGenerator numbers identical payment rows so each gets its own id.
func jobGenerator(ctx context.Context, tab string, rows []sheetclient.Row) chan job {
	jobsCh := make(chan job)

	go func() {
		defer close(jobsCh)

		seen := make(map[string]int)

		for _, row := range rows {
			occurrence := 0

			if tab == sheetclient.TabPayments {
				key := row.PaymentKey()
				occurrence = seen[key]
				seen[key]++
			}

			select {
			case <-ctx.Done():
				return
			case jobsCh <- job{row: row, occurrence: occurrence}:
			}
		}
	}()

	return jobsCh
}
