package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"

	"bokaap-reservations/config"
	"bokaap-reservations/handlers"
	"bokaap-reservations/middleware"
	"bokaap-reservations/notify"
	"bokaap-reservations/routes"
	"bokaap-reservations/service"
	"bokaap-reservations/store"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource: true,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.SourceKey {
				source := a.Value.Any().(*slog.Source)
				source.File = filepath.Base(source.File)
			}
			return a
		},
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Invalid configuration: ", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to open store: ", err)
	}

	if len(os.Args) > 1 && os.Args[1] == "create-admin" {
		err := createAdminCommand(ctx, st, cfg, os.Args[2:])
		_ = st.Close(context.Background())
		if err != nil {
			log.Fatal(err)
		}
		return
	}

	if err := serve(ctx, cfg, st); err != nil {
		slog.Error("server stopped with error", "err", err)
		os.Exit(1)
	}
}

func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.StoreDriver {
	case config.DriverSQLite:
		return store.OpenSQLite(cfg.SQLitePath)
	default:
		return store.ConnectMongo(ctx, cfg.MongoURL, cfg.MongoDB)
	}
}

// createAdminCommand bootstraps an admin from the command line, independent of
// the ADMIN_SETUP mode the HTTP endpoint runs under.
func createAdminCommand(ctx context.Context, st store.Store, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("create-admin", flag.ContinueOnError)
	username := fs.String("username", "", "admin username")
	password := fs.String("password", "", "admin password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	auth := service.NewAuthService(st, service.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL), service.SetupOpen)
	admin, err := auth.CreateAdmin(ctx, *username, *password)
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	slog.Info("admin created", "id", admin.ID, "username", admin.Username)
	return nil
}

func serve(ctx context.Context, cfg *config.Config, st store.Store) error {
	var menu store.MenuStore = st
	if cfg.RedisURL != "" {
		if cached, err := newMenuCache(ctx, cfg, st); err != nil {
			slog.Warn("menu cache disabled", "err", err)
		} else {
			menu = cached
		}
	}

	dispatcher, err := newDispatcher(cfg)
	if err != nil {
		return err
	}
	if err := dispatcher.Start(ctx); err != nil {
		return fmt.Errorf("start notification dispatcher: %w", err)
	}

	tokens := service.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	h := handlers.New(
		service.NewAuthService(st, tokens, cfg.AdminSetup),
		service.NewMenuService(menu),
		service.NewReservationService(st, dispatcher, cfg.StatusPolicy),
		st,
		dispatcher,
	)

	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger())
	routes.SetupRoutes(r, h)

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           c.Handler(r),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("reservation API listening",
			"port", cfg.Port, "store", cfg.StoreDriver, "setup", cfg.AdminSetup, "policy", cfg.StatusPolicy)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	case serveErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http shutdown", "err", err)
	}
	if err := dispatcher.Close(shutdownCtx); err != nil {
		slog.Error("notification queue shutdown", "err", err)
	}
	if err := st.Close(shutdownCtx); err != nil {
		slog.Error("store close", "err", err)
	}
	slog.Info("server stopped", "notifications", dispatcher.Stats())
	return serveErr
}

func newMenuCache(ctx context.Context, cfg *config.Config, next store.MenuStore) (*store.CachedMenu, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	cached := store.NewCachedMenu(next, client, cfg.MenuCacheTTL)
	if err := cached.Invalidate(ctx); err != nil {
		slog.Warn("could not clear stale menu cache", "err", err)
	}
	slog.Info("menu cache enabled", "ttl", cfg.MenuCacheTTL.String())
	return cached, nil
}

func newDispatcher(cfg *config.Config) (*notify.Dispatcher, error) {
	var sender notify.Sender = notify.LogSender{}
	if cfg.ResendAPIKey != "" {
		sender = notify.NewResendSender(cfg.ResendAPIKey)
	} else {
		slog.Warn("RESEND_API_KEY not set, reservation emails will only be logged")
	}

	var queue notify.Queue
	if cfg.AMQPURL != "" {
		conn, err := notify.DialAMQP(cfg.AMQPURL, 5)
		if err != nil {
			return nil, err
		}
		amqpQueue, err := notify.NewAMQPQueue(conn)
		if err != nil {
			_ = conn.Close()
			return nil, err
		}
		queue = amqpQueue
	} else {
		queue = notify.NewMemoryQueue(cfg.NotifyQueueSize, cfg.NotifyWorkers)
	}

	return notify.NewDispatcher(queue, sender, cfg.MailFrom), nil
}
