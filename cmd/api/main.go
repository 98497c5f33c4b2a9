// Package main is the entry point for the knowledge assistant API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/nsf-ai/knowledge-assistant/internal/blob"
	"github.com/nsf-ai/knowledge-assistant/internal/config"
	"github.com/nsf-ai/knowledge-assistant/internal/engine"
	"github.com/nsf-ai/knowledge-assistant/internal/events"
	"github.com/nsf-ai/knowledge-assistant/internal/handler"
	"github.com/nsf-ai/knowledge-assistant/internal/llm"
	"github.com/nsf-ai/knowledge-assistant/internal/middleware"
	"github.com/nsf-ai/knowledge-assistant/internal/policy"
	"github.com/nsf-ai/knowledge-assistant/internal/rewrite"
	"github.com/nsf-ai/knowledge-assistant/internal/service"
	"github.com/nsf-ai/knowledge-assistant/internal/store"
	"github.com/nsf-ai/knowledge-assistant/pkg/logger"
	"github.com/nsf-ai/knowledge-assistant/pkg/tracing"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("starting API server")

	// Initialize tracing if enabled
	ctx := context.Background()
	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, "knowledge-assistant", cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing", zap.Error(err))
		} else {
			defer tracing.Shutdown(ctx, tp)
		}
	}

	// Open the database
	db, err := store.Open(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		log.Error("failed to open database", zap.Error(err))
		os.Exit(1)
	}

	// Connect to NATS for audit events if enabled. A nil publisher
	// disables publishing without branching at every call site.
	var eventsClient *events.Client
	var audit *events.Publisher
	if cfg.EventsEnabled {
		eventsClient, err = events.Connect(events.Config{
			URL:      cfg.NATSURL,
			CAFile:   cfg.NATSCAFile,
			CertFile: cfg.NATSCertFile,
			KeyFile:  cfg.NATSKeyFile,
			Token:    cfg.NATSToken,
		}, log)
		if err != nil {
			log.Error("failed to connect to NATS", zap.Error(err))
			os.Exit(1)
		}
		defer eventsClient.Close()

		audit = events.NewPublisher(eventsClient)
		if err := audit.EnsureStream(ctx); err != nil {
			log.Error("failed to ensure audit stream", zap.Error(err))
			os.Exit(1)
		}
	}

	// Blob storage
	blobStore, err := blob.NewS3Store(blob.S3Config{
		Endpoint:  cfg.S3Endpoint,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		Region:    cfg.S3Region,
		Bucket:    cfg.S3Bucket,
		UseSSL:    cfg.S3UseSSL,
	})
	if err != nil {
		log.Error("failed to create blob store", zap.Error(err))
		os.Exit(1)
	}

	// LLM client for query rewriting
	apiKey := cfg.OpenAIAPIKey
	if llm.Provider(cfg.LLMProvider) == llm.ProviderAnthropic {
		apiKey = cfg.AnthropicAPIKey
	}
	llmClient, err := llm.NewClient(llm.Provider(cfg.LLMProvider), apiKey)
	if err != nil {
		log.Error("failed to create LLM client", zap.Error(err))
		os.Exit(1)
	}
	rewriter := rewrite.New(llmClient, cfg.RewriteModel)

	// Knowledge engine behind a bounded dispatcher
	httpEngine := engine.NewHTTPEngine(cfg.EngineURL)
	dispatcher, err := engine.NewDispatcher(httpEngine, cfg.EngineWorkers, cfg.EngineQueryDepth, cfg.EngineTimeout)
	if err != nil {
		log.Error("failed to create engine dispatcher", zap.Error(err))
		os.Exit(1)
	}
	defer dispatcher.Release()

	// Stores
	conversationStore := store.NewConversationStore(db)
	documentStore := store.NewDocumentStore(db)
	userStore := store.NewUserStore(db)
	adminStore := store.NewAdminStore(db)

	// Services
	chatSvc := service.NewChatService(conversationStore, rewriter, dispatcher, audit, log)
	ingestSvc := service.NewIngestService(documentStore, blobStore, dispatcher, audit, log)

	// Handlers
	healthHandler := handler.NewHealthHandler(db, eventsClient)
	authHandler := handler.NewAuthHandler(userStore, cfg.JWTSecret, cfg.JWTExpiration, log)
	chatHandler := handler.NewChatHandler(chatSvc, log)
	documentHandler := handler.NewDocumentHandler(ingestSvc, cfg.MaxUploadBytes, log)
	adminHandler := handler.NewAdminHandler(adminStore, userStore, log)

	perms := policy.Default()

	// Create router
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"X-Correlation-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health endpoints (no auth required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// Metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	// Login (no auth required)
	r.Post("/api/auth/login", authHandler.Login)

	// API routes with authentication
	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWTSecret))
		r.Use(middleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))

		r.Route("/chat", func(r chi.Router) {
			r.Use(middleware.RequirePermission(perms, policy.ActionChat))
			r.Post("/chat", chatHandler.Chat)
			r.Get("/conversations", chatHandler.Conversations)
			r.Get("/conversations/{id}/messages", chatHandler.Messages)
		})

		r.Route("/documents", func(r chi.Router) {
			r.With(middleware.RequirePermission(perms, policy.ActionListDocuments)).
				Get("/", documentHandler.List)
			r.With(middleware.RequirePermission(perms, policy.ActionUploadDocument)).
				Post("/upload", documentHandler.Upload)
			r.With(middleware.RequirePermission(perms, policy.ActionProcessDocument)).
				Post("/process/{id}", documentHandler.Process)
			r.With(middleware.RequirePermission(perms, policy.ActionDeleteDocument)).
				Delete("/{id}", documentHandler.Delete)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequirePermission(perms, policy.ActionAdmin))
			r.Get("/stats", adminHandler.Stats)
			r.Get("/users", adminHandler.Users)
			r.Delete("/users/{id}", adminHandler.DeleteUser)
			r.Get("/conversations", adminHandler.Conversations)
		})
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      r,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info("server listening", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("forced shutdown", zap.Error(err))
	}

	log.Info("server stopped")
}
