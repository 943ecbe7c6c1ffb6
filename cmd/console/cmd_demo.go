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
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/signalry/triage-console/internal/demo"
	"github.com/signalry/triage-console/internal/llm"
	"github.com/signalry/triage-console/internal/middleware"
)

func init() {
	demoCmd.Flags().Bool("live", false, "use an LLM provider for classification instead of the heuristic")
	demoCmd.Flags().String("seed", "", "seed a persona on startup (product, crypto, sales)")
	rootCmd.AddCommand(demoCmd)
}

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Start the built-in demo backend",
	Long:  "Serves the full Signalry API locally: pipeline, review queue, chat, and invite-code auth backed by sqlite.",
	RunE:  runDemo,
}

func runDemo(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	log := setupLogging(cfg)
	defer log.Sync()

	log.Info("starting demo backend", zap.String("db", cfg.DemoDBPath))

	store, err := demo.OpenStore(cfg.DemoDBPath)
	if err != nil {
		return err
	}

	var classifier demo.Classifier
	if live, _ := cmd.Flags().GetBool("live"); live {
		client, err := newLLMClient(cfg.DefaultLLM, cfg.AnthropicAPIKey, cfg.OpenAIAPIKey)
		if err != nil {
			log.Warn("no LLM provider available, using heuristic classifier", zap.Error(err))
		} else {
			classifier = demo.NewLLMClassifier(client, log)
		}
	}

	pipeline := demo.NewPipeline(demo.NewConnector(), classifier, store, log)
	responder := demo.NewResponder(store)
	auth := demo.NewAuth(cfg.DemoJWTSecret, cfg.DemoInviteCodes, cfg.DemoTokenTTL)
	apiHandler := demo.NewHandler(pipeline, store, responder, auth, log)

	if persona, _ := cmd.Flags().GetString("seed"); persona != "" {
		if _, err := pipeline.Seed(context.Background(), persona); err != nil {
			return err
		}
		log.Info("seeded demo data", zap.String("persona", persona))
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	apiHandler.Routes(r)

	server := &http.Server{
		Addr:         ":" + cfg.DemoPort,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info("demo backend listening", zap.String("port", cfg.DemoPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down demo backend")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}
	return nil
}

func newLLMClient(preferred, anthropicKey, openaiKey string) (llm.Client, error) {
	if preferred == string(llm.ProviderOpenAI) && openaiKey != "" {
		return llm.NewClient(llm.ProviderOpenAI, openaiKey)
	}
	if anthropicKey != "" {
		return llm.NewClient(llm.ProviderAnthropic, anthropicKey)
	}
	if openaiKey != "" {
		return llm.NewClient(llm.ProviderOpenAI, openaiKey)
	}
	return nil, errNoProvider
}

var errNoProvider = errors.New("no LLM API key configured")
