package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"

	"gatehouse.dev/internal/analytics"
	"gatehouse.dev/internal/auth"
	"gatehouse.dev/internal/config"
	"gatehouse.dev/internal/httpapi"
	"gatehouse.dev/internal/migrate"
	"gatehouse.dev/internal/obs"
)

var (
	version = "0.3.0"
	commit  = "dev"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.TenancyStrategy != config.TenancyRow {
		log.Fatalf("tenancy strategy %q is not implemented; use %q", cfg.TenancyStrategy, config.TenancyRow)
	}

	obs.Init()
	obs.InitBuildInfo(version, commit)

	codec, err := auth.NewCodec(cfg.SecretKey,
		auth.WithAccessTTL(cfg.AccessTTL),
		auth.WithRefreshTTL(cfg.RefreshTTL),
	)
	if err != nil {
		log.Fatalf("token codec: %v", err)
	}

	// Without a DSN the server runs against the in-memory store. Useful for
	// local development; analytics needs SQL and stays disabled.
	var (
		db    *sql.DB
		store auth.Store
	)
	if cfg.DatabaseURL != "" {
		db, err = openDB(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		defer db.Close()

		if err := migrate.NewManager(db, cfg.MigrationsDir).Up(context.Background()); err != nil {
			log.Fatalf("migrate: %v", err)
		}
		store = auth.NewPGStore(db)
	} else {
		log.Println("no GATEHOUSE_PG_DSN set, using in-memory store")
		store = auth.NewMemoryStore()
	}

	if cfg.RevocationBackend == config.RevocationRedis {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer client.Close()
		store = auth.OverrideRevokedTokens(store, auth.NewRedisRevokedTokenStore(client))
	}

	flow, err := auth.NewService(store, codec)
	if err != nil {
		log.Fatalf("auth service: %v", err)
	}

	if err := bootstrapSuperadmin(context.Background(), store, cfg); err != nil {
		log.Fatalf("bootstrap superadmin: %v", err)
	}

	rootCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.SweepInterval > 0 {
		if deleter, ok := store.RevokedTokens().(auth.ExpiredTokenDeleter); ok {
			go auth.NewSweeper(deleter, cfg.SweepInterval).Run(rootCtx)
		}
	}

	opts := []httpapi.Option{httpapi.WithCORSOrigins(cfg.CORSOrigins)}
	if db != nil {
		metrics, err := analytics.New(db)
		if err != nil {
			log.Fatalf("analytics: %v", err)
		}
		opts = append(opts, httpapi.WithAnalytics(metrics))
	}
	api := httpapi.New(httpapi.ReadyProbe{DB: db}, version, flow, store, opts...)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting gatehouse-api %s on %s", version, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")
	cancel()

	ctx, timeout := context.WithTimeout(context.Background(), 10*time.Second)
	defer timeout()
	_ = srv.Shutdown(ctx)
	log.Println("Stopped")
}

func openDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	// The database may still be starting; retry the first ping briefly.
	var pingErr error
	for i := 0; i < 10; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		pingErr = db.PingContext(ctx)
		cancel()
		if pingErr == nil {
			return db, nil
		}
		time.Sleep(time.Second)
	}
	db.Close()
	return nil, pingErr
}

// bootstrapSuperadmin creates the first superadmin from configuration when it
// does not exist yet. Idempotent across restarts.
func bootstrapSuperadmin(ctx context.Context, store auth.Store, cfg config.Config) error {
	if cfg.BootstrapEmail == "" || cfg.BootstrapPassword == "" {
		return nil
	}
	_, err := store.Identities().FindByEmail(ctx, cfg.BootstrapEmail)
	if err == nil {
		return nil
	}
	if !errors.Is(err, auth.ErrNotFound) {
		return err
	}
	hash, err := auth.HashPassword(cfg.BootstrapPassword)
	if err != nil {
		return err
	}
	identity := &auth.Identity{
		Email:        cfg.BootstrapEmail,
		PasswordHash: hash,
		FullName:     "Initial Superadmin",
		Active:       true,
		Role:         auth.RoleSuperadmin,
	}
	if err := store.Identities().Create(ctx, identity); err != nil {
		if errors.Is(err, auth.ErrAlreadyExists) {
			return nil
		}
		return err
	}
	log.Printf("bootstrapped superadmin %s (id=%d)", identity.Email, identity.ID)
	return nil
}
