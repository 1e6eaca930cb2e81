package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mv4digital/chuvinha/internal/api/handlers"
	"github.com/mv4digital/chuvinha/internal/api/middleware"
	"github.com/mv4digital/chuvinha/internal/assistant"
	"github.com/mv4digital/chuvinha/internal/auth"
	"github.com/mv4digital/chuvinha/internal/llm"
	"github.com/mv4digital/chuvinha/internal/logger"
	"github.com/mv4digital/chuvinha/internal/store/postgrest"
)

func main() {
	var (
		port = flag.String("port", "8080", "HTTP server port")
	)
	flag.Parse()

	log := logger.New()

	jwtSecret := os.Getenv("SUPABASE_JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal().Msg("SUPABASE_JWT_SECRET is required")
	}

	provider, err := postgrest.NewProvider(postgrest.Config{
		URL:            os.Getenv("SUPABASE_URL"),
		AnonKey:        os.Getenv("SUPABASE_ANON_KEY"),
		ServiceRoleKey: os.Getenv("SUPABASE_SERVICE_ROLE_KEY"),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to configure Supabase client")
	}

	chat := llm.New(llm.Config{
		APIKey:  os.Getenv("CHUVINHA_AI_API_KEY"),
		BaseURL: os.Getenv("CHUVINHA_AI_BASE_URL"),
		Model:   os.Getenv("CHUVINHA_AI_MODEL"),
	})
	if os.Getenv("CHUVINHA_AI_API_KEY") == "" {
		log.Warn().Msg("No AI credential configured - generative replies will be disabled")
	}

	svc := assistant.New(provider, chat, log)
	verifier := auth.NewVerifier(jwtSecret)
	assistantHandler := handlers.NewAssistantHandler(svc, verifier, log)

	mux := http.NewServeMux()
	mux.Handle("/api/assistant", middleware.RequireBearer(http.HandlerFunc(assistantHandler.Handle)))
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(mux),
			),
		),
	)

	server := &http.Server{
		Addr:         ":" + *port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", *port).Msg("Starting assistant server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
