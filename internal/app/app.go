package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/andymarkow/pandero/internal/auth"
	"github.com/andymarkow/pandero/internal/config"
	"github.com/andymarkow/pandero/internal/idempotency"
	"github.com/andymarkow/pandero/internal/logger"
	"github.com/andymarkow/pandero/internal/server"
	"github.com/andymarkow/pandero/internal/server/handlers"
	"github.com/andymarkow/pandero/internal/server/router"
	"github.com/andymarkow/pandero/internal/sheets"
	"github.com/andymarkow/pandero/internal/storage"
	"github.com/andymarkow/pandero/internal/storage/inmemory"
	"github.com/andymarkow/pandero/internal/storage/pgstorage"
)

type Application struct {
	log     *slog.Logger
	server  *server.Server
	storage storage.Storage
	idem    *idempotency.Registry
	sheets  *sheets.Sheets
}

func New() (*Application, error) {
	cfg, err := config.NewConfig()
	if err != nil {
		return nil, fmt.Errorf("config.NewConfig: %w", err)
	}

	logLevel, err := logger.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("logger.ParseLogLevel: %w", err)
	}

	logFormat, err := logger.ParseLogFormat(cfg.LogFormat)
	if err != nil {
		return nil, fmt.Errorf("logger.ParseLogFormat: %w", err)
	}

	logg := logger.NewLogger(
		logger.WithLevel(logLevel),
		logger.WithFormat(logFormat),
		logger.WithAddSource(false),
	)

	store, err := newStorage(cfg.DatabaseURI, logg)
	if err != nil {
		return nil, err
	}

	admin, err := auth.NewAdminCredentials(cfg.AdminPassword)
	if err != nil {
		store.Close()

		return nil, fmt.Errorf("auth.NewAdminCredentials: %w", err)
	}

	idem, err := idempotency.Open(cfg.IdempotencyDB)
	if err != nil {
		store.Close()

		return nil, fmt.Errorf("idempotency.Open: %w", err)
	}

	r := router.NewRouter(store,
		router.WithLogger(logg),
		router.WithSecret([]byte(cfg.JWTSecretKey)),
		router.WithHandlerOptions(
			handlers.WithAdminCredentials(admin),
			handlers.WithIdempotency(idem),
		),
	)

	srv := server.NewServer(r,
		server.WithAddr(cfg.ServerAddr),
		server.WithLogger(logg),
	)

	app := &Application{
		log:     logg,
		server:  srv,
		storage: store,
		idem:    idem,
	}

	if cfg.SheetsURI != "" {
		app.sheets = sheets.NewSheets(
			store,
			sheets.WithLogger(logg),
			sheets.WithSheetsURI(cfg.SheetsURI),
			sheets.WithAPIKey(cfg.SheetsAPIKey),
			sheets.WithPollInterval(cfg.SheetsPollInterval),
		)
	}

	return app, nil
}

// newStorage opens postgres when a connection string is given and falls back
// to in-memory storage otherwise.
func newStorage(databaseURI string, log *slog.Logger) (storage.Storage, error) {
	if databaseURI == "" {
		log.Info("DATABASE_URI is empty, using in-memory storage")

		return storage.NewStorage(inmemory.NewStorage()), nil
	}

	pgstore, err := pgstorage.NewStorage(databaseURI)
	if err != nil {
		return nil, fmt.Errorf("pgstorage.NewStorage: %w", err)
	}

	if err := pgstore.Bootstrap(context.Background()); err != nil {
		pgstore.Close()

		return nil, fmt.Errorf("pgstore.Bootstrap: %w", err)
	}

	return storage.NewStorage(pgstore), nil
}

func (a *Application) Close() {
	if err := a.idem.Close(); err != nil {
		a.log.Error("idem.Close()", slog.Any("error", err))
	}

	if err := a.storage.Close(); err != nil {
		a.log.Error("storage.Close()", slog.Any("error", err))
	}
}

func (a *Application) Run() error {
	defer a.Close()

	// Graceful shutdown handler
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	errChan := make(chan error, 2)

	go func() {
		if err := a.server.Start(ctx); err != nil {
			errChan <- fmt.Errorf("server.Start: %w", err)

			return
		}

		errChan <- nil
	}()

	if a.sheets != nil {
		go func() {
			if err := a.sheets.Run(ctx); err != nil {
				errChan <- fmt.Errorf("sheets.Run: %w", err)
			}
		}()
	}

	err := <-errChan
	if err != nil {
		cancel()

		return err
	}

	a.log.Info("Gracefully shut down application")

	return nil
}
