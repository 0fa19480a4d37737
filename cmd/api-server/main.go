package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/medtrack/clinic-queue/internal/api"
	"github.com/medtrack/clinic-queue/internal/auth"
	"github.com/medtrack/clinic-queue/internal/booking"
	"github.com/medtrack/clinic-queue/internal/cache"
	"github.com/medtrack/clinic-queue/internal/config"
	"github.com/medtrack/clinic-queue/internal/db"
	"github.com/medtrack/clinic-queue/internal/doctor"
)

var version = "dev"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("api-server starting up")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	log.Printf("running in env=%s http_port=%s", cfg.Env, cfg.HTTPPort)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect Postgres
	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
	cancelPg()
	if err != nil {
		log.Fatalf("postgres connection error: %v", err)
	}
	defer pgPool.Close()
	log.Println("connected to Postgres")

	schemaCtx, cancelSchema := context.WithTimeout(rootCtx, 10*time.Second)
	err = db.InitSchema(schemaCtx, pgPool)
	cancelSchema()
	if err != nil {
		log.Fatalf("schema init error: %v", err)
	}

	// Connect Redis
	rdb, err := cache.NewRedisClient(cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
	if err != nil {
		log.Fatalf("redis connection error: %v", err)
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Printf("error closing redis: %v", err)
		}
	}()
	log.Println("connected to Redis")

	repo := booking.NewPgRepository(pgPool)
	readCache := cache.New(rdb, cfg.CacheTTL)
	bookingSvc := booking.NewService(repo, readCache)

	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	doctorSvc := doctor.NewService(pgPool, tokens)

	router := api.NewRouter(api.RouterConfig{
		Booking: bookingSvc,
		Doctors: doctorSvc,
		Tokens:  tokens,
		PgPool:  pgPool,
		Redis:   rdb,
		Env:     cfg.Env,
		Version: version,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("listening on %s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server error: %v", err)
		}
	case <-rootCtx.Done():
		log.Println("shutting down api-server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown error: %v", err)
		}
	}

	log.Println("api-server stopped")
}
