package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"ddportal/internal/database"
	"ddportal/internal/gateway"
	"ddportal/internal/httpserver"
	"ddportal/internal/logger"
	"ddportal/internal/session"
	"ddportal/internal/web"
)

const sweepInterval = 5 * time.Minute

func newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the portal HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if flagPort != "" {
				cfg.Server.Port = flagPort
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx)
		},
	}
	cmd.Flags().StringVar(&flagPort, "port", "", "Override HTTP_PORT")
	return cmd
}

func openDB() (*gorm.DB, error) {
	db, err := database.Connect(cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	if err := database.Migrate(db); err != nil {
		return nil, fmt.Errorf("automigrate: %w", err)
	}
	return db, nil
}

func newPersister(db *gorm.DB, lg *zap.SugaredLogger) (session.Persister, error) {
	switch cfg.Session.Backend {
	case "db":
		return session.NewDBPersister(db), nil
	case "redis":
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		return session.NewRedisPersister(rdb), nil
	case "memory":
		lg.Warnw("sessions are kept in memory and will not survive a restart")
		return session.NewMemoryPersister(), nil
	default:
		return nil, fmt.Errorf("unsupported SESSION_BACKEND %q", cfg.Session.Backend)
	}
}

func serve(ctx context.Context) error {
	lg := logger.New(cfg.LogLevel)
	defer lg.Sync()

	db, err := openDB()
	if err != nil {
		return err
	}
	persist, err := newPersister(db, lg)
	if err != nil {
		return err
	}
	if cfg.Session.Secret == "" {
		lg.Warnw("SESSION_SECRET is empty; sessions will not survive a restart")
	}
	sealer, err := session.NewSealer(cfg.Session.Secret)
	if err != nil {
		return err
	}

	baseURL := gateway.ResolveBaseURL(cfg.Backend.BaseURLOverride, cfg.Server.Hostname, cfg.Backend.ProductionHosts, cfg.Backend.DevBaseURL)
	var store *session.Store
	api := gateway.New(baseURL, gateway.Options{
		HTTPClient: &http.Client{Timeout: cfg.Backend.Timeout},
		Logger:     lg.Named("gateway"),
		OnUnauthorized: func(ctx context.Context) {
			httpserver.UnauthorizedHook(store, lg)(ctx)
		},
	})
	store = session.NewStore(api, persist, sealer, cfg.Session.TTL, lg.Named("session"))

	views, err := web.New()
	if err != nil {
		return err
	}

	router := httpserver.NewRouter(httpserver.Options{
		API:            api,
		Sessions:       store,
		Views:          views,
		DB:             db,
		Log:            lg,
		CookieSecure:   cfg.Session.CookieSecure,
		SessionTTL:     cfg.Session.TTL,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
		LoginRPS:       cfg.Server.LoginRPS,
		LoginBurst:     cfg.Server.LoginBurst,
	})
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go sweep(ctx, store)

	errc := make(chan error, 1)
	go func() {
		lg.Infow("listening", "port", cfg.Server.Port, "backend", baseURL, "sessions", cfg.Session.Backend)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}
	lg.Infow("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// sweep drops idle sessions and expired credentials until ctx ends.
func sweep(ctx context.Context, store *session.Store) {
	t := time.NewTicker(sweepInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			store.Sweep(ctx, cfg.Session.TTL)
		}
	}
}
