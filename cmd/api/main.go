package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"examportal/internal/admission"
	"examportal/internal/admitcard"
	"examportal/internal/auth"
	"examportal/internal/config"
	"examportal/internal/handler"
	"examportal/internal/httpmiddleware"
	"examportal/internal/metrics"
	"examportal/internal/store"
)

func main() {
	cfg := config.Load()

	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg); err != nil {
		log.Fatalf("http server failed: %v", err)
	}
}

func runHTTP(cfg config.App) error {
	ctx := context.Background()

	db, err := store.NewDB(ctx, cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	created, err := db.Seed(ctx, store.SeedAdmin{
		Username: cfg.AdminUsername,
		Password: cfg.AdminPassword,
		ExamDate: cfg.DefaultExamDate,
		Venue:    cfg.DefaultVenue,
		LogoPath: cfg.DefaultLogo,
	}, func(p string) (string, error) { return auth.HashPassword(p, cfg.BcryptCost) })
	if err != nil {
		return err
	}
	if created {
		log.Printf("seeded admin account %q, change the default password", cfg.AdminUsername)
	}

	redisClient := store.NewRedis(cfg.RedisAddr)
	defer redisClient.Close()

	var limiter httpmiddleware.Limiter = httpmiddleware.NewSimpleTokenBucket(cfg.RateLimitPerMin, cfg.RateLimitPerMin)
	if cfg.RateLimitBackend == "redis" {
		if redisClient.Enabled() {
			limiter = httpmiddleware.NewRedisWindow(redisClient.Client, cfg.RateLimitPerMin)
		} else {
			log.Println("RATE_LIMIT_BACKEND=redis but REDIS_ADDR is empty, using in-memory limiter")
		}
	}

	svc := admission.NewService(admission.NewRepository(db), cfg.BcryptCost)
	cards := admitcard.New(admitcard.Options{
		Layout:       cfg.CardLayout,
		StaticDir:    cfg.StaticDir,
		ShowDuration: cfg.CardShowDuration,
		Duration:     cfg.CardDuration,
		QR:           cfg.CardQR,
	})
	h := handler.New(cfg, db, redisClient, svc, cards, metrics.New())
	r := handler.NewRouter(h, limiter)

	// Graceful shutdown
	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting server on :%s (db=%s, layout=%s)", cfg.HTTPPort, cfg.DBDriver, cards.Layout())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Give outstanding requests 10 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced shutdown: %v", err)
	}

	log.Println("Server exited")
	return nil
}
