package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/qualityveda/attendance-hub/internal/attendance"
	authsvc "github.com/qualityveda/attendance-hub/internal/auth"
	"github.com/qualityveda/attendance-hub/internal/catalog"
	"github.com/qualityveda/attendance-hub/internal/http/handlers"
	httpmw "github.com/qualityveda/attendance-hub/internal/http/middleware"
	"github.com/qualityveda/attendance-hub/internal/identity"
	"github.com/qualityveda/attendance-hub/internal/mailer"
	"github.com/qualityveda/attendance-hub/internal/repo/postgres"
	"github.com/qualityveda/attendance-hub/pkg/auth"
	"github.com/qualityveda/attendance-hub/pkg/config"
	"github.com/qualityveda/attendance-hub/pkg/database"
	"github.com/qualityveda/attendance-hub/pkg/events"
	"github.com/qualityveda/attendance-hub/pkg/kv"
	"github.com/qualityveda/attendance-hub/pkg/logger"
	mw "github.com/qualityveda/attendance-hub/pkg/middleware"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	ctx := context.Background()

	// Persistence: Redis when reachable, else an in-memory store that only
	// lives for the process (dev convenience).
	var store kv.Store
	var redisClient *redis.Client
	client, err := kv.Connect(ctx, cfg.Redis.URL, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Warn("Redis unavailable, using in-memory store", "error", err)
		store = kv.NewMemoryStore()
	} else {
		redisClient = client
		store = kv.NewRedisStore(client)
		defer client.Close()
	}

	// Event bus: observability plumbing, never load-bearing.
	var bus events.EventBus = events.NoopBus{}
	if cfg.NATS.URL != "" {
		if natsBus, err := events.NewNATSEventBus(cfg.NATS.URL); err != nil {
			logger.Warn("NATS unavailable, events disabled", "error", err)
		} else {
			bus = natsBus
			defer natsBus.Close()
		}
	}

	// Initialize stores
	cat, err := catalog.NewStore(ctx, store, bus)
	if err != nil {
		logger.Error("Failed to initialize catalog", "error", err)
		os.Exit(1)
	}
	ids := identity.NewRegistry(store, cfg.Auth.AdminEmail)
	records := attendance.NewStore(store, ids, bus)

	// Mailer selection
	var mail mailer.Service
	switch {
	case cfg.Email.DevMode:
		mail = mailer.NewDevMailer()
	case cfg.Email.MailerSendKey != "":
		mail = mailer.NewMailerSend(cfg.Email.MailerSendKey, cfg.Email.FromName, cfg.Email.SMTPFrom)
	default:
		mail = mailer.NewSMTPMailer(cfg.Email.SMTPHost, cfg.Email.SMTPPort, cfg.Email.SMTPFrom, cfg.Email.SMTPUser, cfg.Email.SMTPPass, cfg.Email.SMTPUseTLS)
	}

	sessions := authsvc.NewManager(ids, cat, mail, bus, &cfg.Auth)
	h := handlers.New(sessions, cat, records, cfg)

	// Setup router
	r := chi.NewRouter()

	r.Use(mw.RequestID)
	r.Use(mw.Logging)
	r.Use(mw.Health)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	codeLimiter := httpmw.NewRateLimiter(redisClient, httpmw.RateLimitConfig{
		Requests: 5,
		Window:   time.Minute,
		KeyFunc:  httpmw.ClientIPKeyFunc,
	})

	r.Route("/auth", func(r chi.Router) {
		r.With(codeLimiter.Middleware()).Post("/request-code", h.RequestCode)
		r.With(codeLimiter.Middleware()).Post("/resend-code", h.ResendCode)
		r.Post("/verify-code", h.VerifyCode)
		r.Post("/name", h.SubmitName)
		r.Post("/lab", h.SubmitLab)
		r.Post("/logout", h.Logout)
	})

	r.Group(func(r chi.Router) {
		r.Use(h.RequireJWT(auth.RoleUser))
		r.Get("/labs", h.ListLabs)
		r.Get("/trainings", h.ListTrainings)
		r.Post("/attendance", h.SubmitAttendance)
		r.Get("/attendance/today", h.TodayAttendance)
		r.Get("/attendance/history", h.AttendanceHistory)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(h.RequireJWT(auth.RoleAdmin))
		r.Post("/labs", h.CreateLab)
		r.Patch("/labs/{id}", h.UpdateLab)
		r.Delete("/labs/{id}", h.DeleteLab)
		r.Post("/trainings", h.CreateTraining)
		r.Patch("/trainings/{id}", h.UpdateTraining)
		r.Delete("/trainings/{id}", h.DeleteTraining)
		r.Get("/attendance", h.AllAttendance)
	})

	// Optional relational record API
	if cfg.Database.URL != "" {
		pool, err := database.Connect(ctx, cfg.Database.URL)
		if err != nil {
			logger.Error("Failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		api := handlers.NewRecordsAPI(postgres.NewAttendanceRepository(pool))
		r.Get("/api/attendance", api.ListAttendance)
		r.Post("/api/mark-attendance", api.MarkAttendance)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(runCtx)

	g.Go(func() error {
		logger.Info("Starting attendance hub", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-gCtx.Done():
				return nil
			case <-ticker.C:
				if n := sessions.CleanupExpired(); n > 0 {
					logger.Debug("Swept expired auth sessions", "count", n)
				}
			}
		}
	})

	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("Shutting down attendance hub...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Attendance hub error", "error", err)
		os.Exit(1)
	}
}
