package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/campusdesk/school-portal/internal/api"
	"github.com/campusdesk/school-portal/internal/api/middleware"
	"github.com/campusdesk/school-portal/internal/core/session"
	"github.com/campusdesk/school-portal/internal/infrastructure/backend"
	"github.com/campusdesk/school-portal/internal/infrastructure/config"
	"github.com/campusdesk/school-portal/internal/infrastructure/db/memory"
	mongodb "github.com/campusdesk/school-portal/internal/infrastructure/db/mongo"
	redisdb "github.com/campusdesk/school-portal/internal/infrastructure/db/redis"
	"github.com/campusdesk/school-portal/internal/infrastructure/http/handlers"
	"github.com/campusdesk/school-portal/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "school-portal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	envErr := godotenv.Load()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "school-portal",
	})
	if envErr != nil {
		log.Debug().Msg("no .env file found, using process environment")
	}

	repo, cleanup, err := openSessionRepository(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	manager := session.NewManager(repo, session.NewDecoder(cfg.JWTSecret), cfg.Session.TTL, logger.Component("session"))
	cookies := middleware.NewCookieStore(middleware.CookieOptions{
		Secret: cfg.CookieSecret,
		Secure: cfg.CookieSecure,
		MaxAge: int(cfg.Session.TTL.Seconds()),
	})

	client := backend.NewClient(backend.Config{
		BaseURL: cfg.Backend.URL,
		Prefix:  cfg.Backend.Prefix,
		Timeout: cfg.Backend.Timeout,
	}, log)

	e, err := api.NewRouter(api.Deps{
		API:      backend.NewAPI(client),
		Sessions: manager,
		Cookies:  cookies,
		Ready:    map[string]handlers.Pinger{"session_store_" + cfg.Session.Backend: manager},
		Log:      log,
	})
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("backend", cfg.Backend.URL).Str("session_backend", cfg.Session.Backend).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

// openSessionRepository connects the configured session store. The returned
// cleanup releases its resources.
func openSessionRepository(ctx context.Context, cfg *config.Config, log zerolog.Logger) (session.Repository, func(), error) {
	switch cfg.Session.Backend {
	case config.SessionBackendRedis:
		repo, err := redisdb.Open(ctx, redisdb.Options{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			return nil, nil, err
		}
		return repo, func() { _ = repo.Close() }, nil

	case config.SessionBackendMongo:
		repo, err := mongodb.Open(ctx, mongodb.Options{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, nil, err
		}
		return repo, func() { _ = repo.Close(context.Background()) }, nil

	default:
		repo := memory.NewSessionRepository()
		sweeper, err := memory.StartSweeper(repo, cfg.Session.SweepSchedule, logger.Component("session_sweeper"))
		if err != nil {
			return nil, nil, err
		}
		log.Warn().Msg("sessions are kept in memory and lost on restart")
		return repo, func() { <-sweeper.Stop().Done() }, nil
	}
}
