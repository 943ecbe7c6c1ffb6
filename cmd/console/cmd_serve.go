package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/signalry/triage-console/internal/handler"
	"github.com/signalry/triage-console/internal/middleware"
	"github.com/signalry/triage-console/internal/session"
	"github.com/signalry/triage-console/internal/upstream"
	"github.com/signalry/triage-console/pkg/tracing"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the console server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	log := setupLogging(cfg)
	defer log.Sync()

	log.Info("starting console server")

	ctx := context.Background()
	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, "signalry-console", cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing", zap.Error(err))
		} else {
			defer tracing.Shutdown(ctx, tp)
		}
	}

	client := upstream.New(upstream.Config{
		BaseURL: cfg.UpstreamURL,
		Timeout: cfg.UpstreamTimeout,
		Logger:  log,
	})

	sessions := session.NewManager(cfg.CookieName, cfg.CookieMaxAge)
	registry := handler.NewRegistry(client, cfg.SignalLimit, log)

	healthHandler := handler.NewHealthHandler(client)
	authHandler := handler.NewAuthHandler(client, sessions, registry, log)
	signalsHandler := handler.NewSignalsHandler(client, sessions, registry, log)
	chatHandler := handler.NewChatHandler(client, sessions, registry, log)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"X-Correlation-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.SessionGate(sessions, cfg.LoginPath, cfg.ProtectedPaths))

	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.LoginRateLimit(cfg.LoginRateLimit, time.Minute))
		r.Post("/login", authHandler.Login)
	})
	r.Post("/logout", authHandler.Logout)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(sessions, cfg.RateLimitRequests, cfg.RateLimitWindow))

		r.Route("/app", func(r chi.Router) {
			r.Get("/state", signalsHandler.State)
			r.Post("/run", signalsHandler.Run)
			r.Post("/signals/{id}/select", signalsHandler.Select)
			r.Post("/signals/{id}/approve", signalsHandler.Approve)
			r.Post("/signals/{id}/discard", signalsHandler.Discard)
			r.Get("/stats", signalsHandler.Stats)
			r.Post("/feedback", signalsHandler.Feedback)
			r.Post("/outcome", signalsHandler.Outcome)
		})

		r.Route("/chat", func(r chi.Router) {
			r.Get("/state", chatHandler.State)
			r.Post("/send", chatHandler.Send)
			r.Post("/messages/{id}/expand", chatHandler.Expand)
			r.Post("/action", chatHandler.Action)
		})
	})

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      r,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info("server listening", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server stopped")
	return nil
}
