package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Funya-okina/sightseeingLog/internal/ai"
	"github.com/Funya-okina/sightseeingLog/internal/config"
	"github.com/Funya-okina/sightseeingLog/internal/handlers"
	"github.com/Funya-okina/sightseeingLog/internal/middleware"
	"github.com/Funya-okina/sightseeingLog/internal/render"
	"github.com/Funya-okina/sightseeingLog/internal/services"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func Run() {
	// Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Setup logger
	setupLogger(cfg.Log.Level)

	// Start the shared browser session
	session, err := render.NewSession(context.Background())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to start browser session")
	}
	defer session.Close()
	log.Info().Msg("Browser session started")

	// Initialize services
	aiClient := ai.NewClient(cfg.AI)
	shioriService := services.NewShioriService(aiClient, session, *cfg)
	geocodeService := services.NewGeocodeService()

	// Initialize handlers
	shioriHandler := handlers.NewShioriHandler(shioriService, cfg.Server.MaxUploadBytes)
	receiptHandler := handlers.NewReceiptHandler(aiClient)
	geocodeHandler := handlers.NewGeocodeHandler(geocodeService)
	healthHandler := handlers.NewHealthHandler(session)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(corsMiddleware)
	r.Use(middleware.MaxBodySize(cfg.Server.MaxUploadBytes))

	// Routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/shiori", shioriHandler.Generate)
		r.Post("/receipt", receiptHandler.Extract)
		r.Get("/geocode", geocodeHandler.Lookup)
	})
	r.Get("/healthz", healthHandler.Check)

	// Create HTTP server. WriteTimeout is the long-running-request allowance
	// for shiori generation; the header and idle timeouts stay short.
	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           r,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout.Std(),
		WriteTimeout:      cfg.Server.WriteTimeout.Std(),
		IdleTimeout:       cfg.Server.IdleTimeout.Std(),
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// setupLogger configures zerolog logger
func setupLogger(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// corsMiddleware handles CORS
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
