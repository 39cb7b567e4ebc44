package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/example/knowledge-dashboard/internal/application"
	"github.com/example/knowledge-dashboard/internal/calendar"
	"github.com/example/knowledge-dashboard/internal/config"
	httptransport "github.com/example/knowledge-dashboard/internal/http"
	"github.com/example/knowledge-dashboard/internal/logging"
	"github.com/example/knowledge-dashboard/internal/persistence"
	"github.com/example/knowledge-dashboard/internal/persistence/memory"
	"github.com/example/knowledge-dashboard/internal/persistence/sqlite"
	"github.com/example/knowledge-dashboard/internal/recurrence"
	"github.com/example/knowledge-dashboard/internal/seed"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "hash-password" {
		if err := hashPassword(os.Stdin, os.Stdout); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	bootstrap := logging.New(os.Stdout, slog.LevelInfo)

	cfg, err := config.Load()
	if err != nil {
		bootstrap.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	level, err := cfg.Level()
	if err != nil {
		bootstrap.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger := logging.New(os.Stdout, level)

	undo, err := maxprocs.Set(maxprocs.Logger(func(format string, args ...any) {
		logger.Debug(fmt.Sprintf(format, args...))
	}))
	if err != nil {
		logger.Warn("failed to set GOMAXPROCS", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg, logger)
	stop()
	undo()
	if err != nil {
		logger.Error("dashboard stopped with error", "error", err)
		os.Exit(1)
	}
}

// run serves the dashboard until ctx is cancelled. The refresher and storage
// are released on every return path.
func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	app, err := buildApp(ctx, cfg, logger, time.Now, uuid.NewString)
	if err != nil {
		return fmt.Errorf("start dashboard: %w", err)
	}
	defer app.Close()

	if err := app.refresher.Start(); err != nil {
		return fmt.Errorf("start calendar refresher %q: %w", cfg.RefreshSpec, err)
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           app.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("dashboard API listening", "addr", server.Addr, "storage", cfg.Storage, "timezone", cfg.Timezone, "admin_enabled", cfg.AdminEnabled())
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve http: %w", err)
	}
	<-shutdownDone
	return nil
}

// storage is the persistence backend selected by DASHBOARD_STORAGE.
type storage interface {
	persistence.EventRepository
	persistence.ResourceRepository
	Migrate(ctx context.Context) error
	Close() error
}

func openStorage(ctx context.Context, cfg config.Config, logger *slog.Logger) (storage, error) {
	var store storage
	switch cfg.Storage {
	case config.StorageMemory:
		store = memory.New()
	case config.StorageSQLite:
		opened, err := sqlite.Open(ctx, sqlite.DefaultConfig(cfg.SQLiteDSN), logger)
		if err != nil {
			return nil, err
		}
		store = opened
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage)
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}
	return store, nil
}

// app holds the wired dashboard.
type app struct {
	handler   http.Handler
	view      *calendar.CalendarView
	refresher *calendar.Refresher
	storage   storage
	logger    *slog.Logger
}

func (a *app) Close() {
	a.refresher.Stop()
	if err := a.storage.Close(); err != nil {
		a.logger.Error("failed to close storage", "error", err)
		return
	}
	a.logger.Info("dashboard resources released")
}

func buildApp(ctx context.Context, cfg config.Config, logger *slog.Logger, now func() time.Time, idGenerator func() string) (*app, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	store, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	eventService := application.NewEventServiceWithLogger(application.NewEventRepository(store), idGenerator, now, logger)
	resourceService := application.NewResourceServiceWithLogger(application.NewResourceRepository(store), idGenerator, now, logger)
	admin := application.Principal{UserID: cfg.AdminUser, IsAdmin: true}

	if cfg.SeedFile != "" {
		bundle, err := seed.LoadFile(cfg.SeedFile)
		if err != nil {
			_ = store.Close()
			return nil, err
		}
		result, err := seed.NewSeeder(eventService, resourceService, loc, logger).Apply(ctx, admin, bundle)
		if err != nil {
			_ = store.Close()
			return nil, err
		}
		logger.Info("seed bundle processed", "path", cfg.SeedFile, "skipped", result.Skipped, "events", result.Events, "resources", result.Resources)
	}

	engine := recurrence.NewEngine(0, logger)
	view := calendar.NewCalendarView(
		application.NewCalendarStore(eventService, httptransport.PrincipalOrReadOnly),
		now(),
		calendar.WithLocation(loc),
		calendar.WithExpander(engine),
		calendar.WithPageSize(cfg.UpcomingPageSize),
		calendar.WithLogger(logger),
	)
	if err := view.Load(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("load calendar: %w", err)
	}
	refresher := calendar.NewRefresher(cfg.RefreshSpec, now, view.Refresh, logger)

	auth := application.NewAdminAuthenticator(cfg.AdminUser, cfg.AdminPasswordHash, application.VerifyPassword, logger)
	if !auth.Enabled() {
		logger.Warn("admin password hash not configured, dashboard is read-only")
	}

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Events:    httptransport.NewEventHandler(eventService, loc, now, logger),
		Calendar:  httptransport.NewCalendarHandler(eventService, httptransport.CalendarOptions{Location: loc, Now: now, PageSize: cfg.UpcomingPageSize, Expander: engine}, logger),
		Dashboard: httptransport.NewDashboardHandler(view, loc, logger),
		Resources: httptransport.NewResourceHandler(resourceService, logger),
		Health:    healthCheck(store),
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(logger),
			httptransport.ResolvePrincipal(auth, logger),
		},
	})

	return &app{handler: router, view: view, refresher: refresher, storage: store, logger: logger}, nil
}

func healthCheck(store storage) func(r *http.Request) error {
	pinger, ok := store.(interface {
		Ping(ctx context.Context) error
	})
	if !ok {
		return nil
	}
	return func(r *http.Request) error {
		return pinger.Ping(r.Context())
	}
}

// hashPassword reads a password from the first line of in and writes the
// argon2id hash expected by DASHBOARD_ADMIN_PASSWORD_HASH.
func hashPassword(in io.Reader, out io.Writer) error {
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("read password: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return errors.New("password must not be empty")
	}
	hash, err := application.CreatePasswordHash(password, application.DefaultArgon2idParams)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	_, err = fmt.Fprintln(out, hash)
	return err
}
