package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"telemed-ai/internal/agent"
	"telemed-ai/internal/appointment"
	"telemed-ai/internal/config"
	"telemed-ai/internal/consultation"
	"telemed-ai/internal/feedback"
	"telemed-ai/internal/history"
	"telemed-ai/internal/platform/ratelimit"
	"telemed-ai/internal/platform/telegram"
	"telemed-ai/internal/platform/web"
	"telemed-ai/internal/profile"
	"telemed-ai/internal/report"
)

func main() {
	config.LoadEnv()
	cfg := config.Load()
	ctx := context.Background()

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.SentryDSN}); err != nil {
			log.Printf("sentry.Init: %s", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// 1. Infrastructure
	db, err := openDB(cfg.DatabaseURL)
	if err != nil {
		log.Printf("Could not connect to DB: %v. Continuing without DB; only the relay will work.", err)
	} else {
		log.Println("Connected to Database.")
		runMigrations(cfg.MigrationsPath, cfg.DatabaseURL)
	}

	var limiter consultation.RateLimiter
	if cfg.RedisAddr != "" && cfg.RelayRateLimit > 0 {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		limiter = ratelimit.NewRedisLimiter(rdb, cfg.RelayRateLimit, time.Minute)
		log.Printf("Relay rate limit: %d requests/minute per caller", cfg.RelayRateLimit)
	}

	// 2. Clients
	aiClient, err := newAIClient(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to init AI provider: %v", err)
	}

	// 3. Services
	consultationRepo := consultation.NewRepository(db)
	historyRepo := history.NewRepository(db)
	profileRepo := profile.NewRepository(db)
	appointmentRepo := appointment.NewRepository(db)
	feedbackRepo := feedback.NewRepository(db)

	var notifier appointment.Notifier
	if cfg.TelegramBotToken != "" && cfg.DoctorChatID != 0 {
		notifier = report.NewService(telegram.NewClient(cfg.TelegramBotToken), cfg.DoctorChatID, profileRepo, historyRepo)
	} else {
		log.Println("Warning: TELEGRAM_BOT_TOKEN or DOCTOR_CHAT_ID not set. Doctors will not be notified of bookings.")
	}

	relayCfg := consultation.DefaultRelayConfig()
	relayCfg.Model = cfg.AIModel
	relayCfg.Timeout = cfg.RelayTimeout
	relayCfg.HistoryMaxBytes = cfg.HistoryMaxBytes

	consultationSvc := consultation.NewService(aiClient, limiter, relayCfg)
	appointmentSvc := appointment.NewService(appointmentRepo, profileRepo, notifier)

	// 4. Router
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	if cfg.SentryDSN != "" {
		r.Use(sentryhttp.New(sentryhttp.Options{Repanic: true}).Handle)
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		web.WriteJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})

	consultationHandler := consultation.NewHandler(consultationSvc, consultationRepo)
	consultation.RegisterRelay(r, consultationHandler)

	r.Route("/api", func(r chi.Router) {
		r.Use(web.CORS("Accept, Content-Type, Content-Length, Accept-Encoding, Authorization, " + web.UserHeader))
		r.Use(web.RequireUser)
		consultation.RegisterRoutes(r, consultationHandler)
		history.RegisterRoutes(r, history.NewHandler(historyRepo))
		profile.RegisterRoutes(r, profile.NewHandler(profileRepo))
		appointment.RegisterRoutes(r, appointment.NewHandler(appointmentSvc))
		feedback.RegisterRoutes(r, feedback.NewHandler(feedbackRepo))
	})

	log.Printf("Server starting on port %s...", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatal(err)
	}
}

func openDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	for i := 0; i < 10; i++ {
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err = db.PingContext(pingCtx)
		cancel()
		if err == nil {
			return db, nil
		}
		log.Printf("Waiting for DB... (%d/10)", i+1)
		time.Sleep(time.Second)
	}
	return db, err
}

func runMigrations(source, dsn string) {
	m, err := migrate.New(source, dsn)
	if err != nil {
		log.Printf("Migration init failed: %v", err)
		return
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Printf("Migration up failed: %v", err)
		return
	}
	log.Println("Migrations applied successfully!")
}

func newAIClient(ctx context.Context, cfg config.Config) (consultation.ChatCompleter, error) {
	switch cfg.AIProvider {
	case "gemini":
		return agent.NewGeminiClient(ctx, cfg.GeminiAPIKey, "")
	case "gateway", "":
		if cfg.AIGatewayAPIKey == "" {
			log.Println("Warning: AI_GATEWAY_API_KEY is not set. Consultations will fail until it is configured.")
		}
		return agent.NewGatewayClient(cfg.AIGatewayURL, cfg.AIGatewayAPIKey), nil
	default:
		return nil, errors.New("unknown AI_PROVIDER " + cfg.AIProvider)
	}
}
