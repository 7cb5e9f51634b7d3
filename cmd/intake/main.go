package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	app "github.com/kode4food/intake"
	"github.com/kode4food/intake/internal/config"
	"github.com/kode4food/intake/internal/intake"
	"github.com/kode4food/intake/internal/remote"
	"github.com/kode4food/intake/internal/server"
	"github.com/kode4food/intake/internal/store"
	"github.com/kode4food/intake/pkg/events"
	"github.com/kode4food/intake/pkg/log"
)

type engine struct {
	cfg        *config.Config
	drafts     *store.RedisStore
	archive    *store.Archive
	stepClient remote.Service
	registry   *intake.Registry
	hub        *events.Hub
	apiServer  *server.Server
	httpServer *http.Server
	quit       chan os.Signal
}

var (
	ErrOpenArchive       = errors.New("failed to open archive bucket")
	ErrCreateStepService = errors.New("failed to create step service")
)

var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

func main() {
	cfg := config.NewDefaultConfig()
	if err := cfg.LoadFromEnv(); err != nil {
		slog.Error("Invalid configuration", log.Error(err))
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", log.Error(err))
		os.Exit(1)
	}

	s := &engine{
		cfg:  cfg,
		quit: make(chan os.Signal, 1),
	}
	s.setupLogging()

	if err := s.run(); err != nil {
		slog.Error("Failed to start application", log.Error(err))
		os.Exit(1)
	}
}

func (s *engine) run() error {
	if err := s.initializeStores(); err != nil {
		return err
	}

	if err := s.initializeFlows(); err != nil {
		return err
	}
	s.startServer()

	signal.Notify(s.quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(s.quit)
	<-s.quit

	s.shutdown()
	return nil
}

func (s *engine) setupLogging() {
	level, ok := logLevels[s.cfg.LogLevel]
	if !ok {
		level = slog.LevelInfo
	}

	env := os.Getenv("ENV")
	logger := log.NewWithLevel(app.Name, env, app.Version, level)
	slog.SetDefault(logger)
	slog.SetLogLoggerLevel(level)

	slog.Info("Intake Engine starting",
		slog.String("log_level", s.cfg.LogLevel))

	slog.Info("Configuration loaded",
		slog.String("draft_redis_addr", s.cfg.DraftStore.Addr),
		slog.Int("draft_redis_db", s.cfg.DraftStore.DB),
		slog.String("remote_base_url", s.cfg.RemoteBaseURL),
		slog.String("api_host", s.cfg.APIHost),
		slog.Int("api_port", s.cfg.APIPort))
}

func (s *engine) initializeStores() error {
	s.drafts = store.NewRedisStore(&s.cfg.DraftStore)

	if s.cfg.ArchiveBucketURL != "" {
		archive, err := store.OpenArchive(
			context.Background(),
			s.cfg.ArchiveBucketURL,
			s.cfg.ArchivePrefix,
		)
		if err != nil {
			_ = s.drafts.Close()
			return fmt.Errorf("%w: %w", ErrOpenArchive, err)
		}
		s.archive = archive
	}

	return nil
}

func (s *engine) initializeFlows() error {
	svc, err := remote.NewHTTPService(
		s.cfg.RemoteBaseURL, s.cfg.RemoteTimeout,
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCreateStepService, err)
	}
	s.stepClient = svc

	s.registry = intake.NewRegistry()
	intake.RegisterFlows(s.registry, s.stepClient)

	s.hub = events.NewHub()
	return nil
}

func (s *engine) startServer() {
	s.apiServer = server.NewServer(s.registry, s.drafts, s.archive, s.hub)
	mux := s.apiServer.SetupRoutes()

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", s.cfg.APIHost, s.cfg.APIPort),
		Handler: mux,
	}

	go func() {
		slog.Info("HTTP server starting",
			slog.String("addr", s.httpServer.Addr))
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", log.Error(err))
		}
	}()
}

func (s *engine) shutdown() {
	slog.Info("Shutting down")

	ctx, cancel := context.WithTimeout(
		context.Background(), s.cfg.ShutdownTimeout,
	)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		slog.Error("Shutdown failed", log.Error(err))
	}

	s.apiServer.CloseWebSockets()
	s.apiServer.AbortSessions()
	s.hub.Close()

	if s.archive != nil {
		if err := s.archive.Close(); err != nil {
			slog.Error("Archive shutdown failed", log.Error(err))
		}
	}
	if err := s.drafts.Close(); err != nil {
		slog.Error("Draft store shutdown failed", log.Error(err))
	}

	slog.Info("Server exited")
}
