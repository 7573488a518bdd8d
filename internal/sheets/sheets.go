package sheets

import (
	"context"
	"log/slog"
	"time"

	"github.com/andymarkow/pandero/internal/httpclient"
	"github.com/andymarkow/pandero/internal/sheets/sheetclient"
	"github.com/andymarkow/pandero/internal/sheets/sheetsync"
	"github.com/andymarkow/pandero/internal/storage"
)

// Sheets periodically imports the rows of the spreadsheet export.
type Sheets struct {
	log          *slog.Logger
	pollInterval time.Duration
	syncer       *sheetsync.SheetSync
}

type Config struct {
	logger       *slog.Logger
	pollInterval time.Duration
	sheetsURI    string
	apiKey       string
}

func NewSheets(store storage.Storage, opts ...Option) *Sheets {
	cfg := &Config{
		logger:       slog.Default(),
		pollInterval: 60 * time.Second,
		sheetsURI:    "http://localhost:8081",
	}

	for _, opt := range opts {
		opt(cfg)
	}

	clientOpts := []httpclient.Option{httpclient.WithBaseURL(cfg.sheetsURI)}
	if cfg.apiKey != "" {
		clientOpts = append(clientOpts, httpclient.WithHeader("X-API-Key", cfg.apiKey))
	}

	sheetClient := sheetclient.New(
		sheetclient.WithLogger(cfg.logger),
		sheetclient.WithClient(httpclient.New(clientOpts...)),
	)

	syncer := sheetsync.New(
		store,
		sheetClient,
		sheetsync.WithLogger(cfg.logger),
	)

	return &Sheets{
		log:          cfg.logger.With(slog.String("module", "sheets")),
		pollInterval: cfg.pollInterval,
		syncer:       syncer,
	}
}

type Option func(c *Config)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.logger = logger
	}
}

func WithPollInterval(interval time.Duration) Option {
	return func(c *Config) {
		if interval > 0 {
			c.pollInterval = interval
		}
	}
}

func WithSheetsURI(uri string) Option {
	return func(c *Config) {
		c.sheetsURI = uri
	}
}

func WithAPIKey(key string) Option {
	return func(c *Config) {
		c.apiKey = key
	}
}

// Run syncs once right away and then on every tick until ctx is done.
func (s *Sheets) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	s.log.Info("Start sheets daemon")

	s.sync(ctx)

	for {
		select {
		case <-ctx.Done():
			s.log.Info("Context done, stopping sheets daemon")

			return nil

		case <-ticker.C:
			s.sync(ctx)
		}
	}
}

func (s *Sheets) sync(ctx context.Context) {
	if _, err := s.syncer.Sync(ctx); err != nil {
		s.log.Error("syncer.Sync", slog.Any("error", err))
	}
}
