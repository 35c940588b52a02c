// findr-backend — Application lifecycle & rewards accounting engine.
//
// Single binary exposing the REST API used by the web frontend:
//   - auth: signup / login / password reset for jobseekers and employers
//   - profile: details, partial updates, completion & eligibility, rewards
//   - jobs: employer CRUD, public listing, view counting, recommendations
//   - applications: create / status pipeline / withdraw / rate / referrals
//   - orders: premium-service purchases spending reward points
//
// Publishes notification events to Redis for the mail worker and runs a
// cron loop reconciling the awaiting-feedback counters.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"

	"findr/backend/internal/application"
	"findr/backend/internal/auth"
	"findr/backend/internal/config"
	"findr/backend/internal/db"
	"findr/backend/internal/job"
	"findr/backend/internal/notify"
	"findr/backend/internal/order"
	"findr/backend/internal/profile"
	"findr/backend/internal/referral"
	"findr/backend/internal/rewards"
	"findr/backend/internal/scheduler"
)

const version = "1.0.0"

// notifyChannel is the Redis channel the mail worker subscribes to.
const notifyChannel = "findr:notifications"

func main() {
	// ── Config ──────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[findr-backend] Config error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── PostgreSQL ───────────────────────────────────────────────────────────
	log.Println("[findr-backend] Connecting to PostgreSQL…")
	pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("[findr-backend] PostgreSQL: %v", err)
	}
	defer pool.Close()
	log.Println("[findr-backend] PostgreSQL connected ✓")

	if err := db.Migrate(cfg.DatabaseURL); err != nil {
		log.Fatalf("[findr-backend] Migrations: %v", err)
	}
	log.Println("[findr-backend] Schema up to date ✓")

	// ── Redis ────────────────────────────────────────────────────────────────
	log.Println("[findr-backend] Connecting to Redis…")
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatalf("[findr-backend] Redis: %v", err)
	}
	defer rdb.Close()
	log.Println("[findr-backend] Redis connected ✓")

	notifier := notify.NewRedisDispatcher(rdb, notifyChannel)

	// ── Services & routes ────────────────────────────────────────────────────
	mw := auth.NewMiddleware(cfg.JWTSecret)

	authSvc := auth.NewService(pool, cfg.JWTSecret, notifier)
	profileSvc := profile.NewService(pool)
	rewardsSvc := rewards.NewService(pool)
	jobSvc := job.NewService(pool)
	appSvc := application.NewService(pool, notifier)
	referralSvc := referral.NewService(pool)
	orderSvc := order.NewService(pool, notifier)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", healthHandler)
	auth.NewHandler(authSvc, mw).RegisterRoutes(mux)
	profile.NewHandler(profileSvc, rewardsSvc, mw).RegisterRoutes(mux)
	job.NewHandler(jobSvc, mw).RegisterRoutes(mux)
	application.NewHandler(appSvc, mw).RegisterRoutes(mux)
	referral.NewHandler(referralSvc, mw).RegisterRoutes(mux)
	order.NewHandler(orderSvc, mw).RegisterRoutes(mux)

	handler := cors.New(cors.Options{
		AllowedOrigins: []string{cfg.CORSOrigin},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}).Handler(mux)

	// ── Reconciliation cron ──────────────────────────────────────────────────
	sched := scheduler.New(pool, cfg.ReconcileIntervalHrs)
	if err := sched.Start(ctx); err != nil {
		log.Fatalf("[findr-backend] Scheduler: %v", err)
	}
	defer sched.Stop()

	// ── HTTP server ──────────────────────────────────────────────────────────
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("[findr-backend] v%s listening on :%s", version, cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[findr-backend] HTTP server error: %v", err)
		}
	}()

	// ── Graceful shutdown ────────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[findr-backend] Shutting down…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[findr-backend] Shutdown error: %v", err)
	}
	log.Println("[findr-backend] Stopped.")
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"service": "findr-backend",
		"version": version,
	})
}
