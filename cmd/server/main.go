package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/KOFI-GYIMAH/github-client/docs"
	"github.com/KOFI-GYIMAH/github-client/internal/config"
	"github.com/KOFI-GYIMAH/github-client/internal/github"
	"github.com/KOFI-GYIMAH/github-client/internal/handler"
	md "github.com/KOFI-GYIMAH/github-client/internal/middleware"
	"github.com/KOFI-GYIMAH/github-client/internal/queue"
	"github.com/KOFI-GYIMAH/github-client/pkg/logger"
	"github.com/gorilla/mux"
	httpSwagger "github.com/swaggo/http-swagger"
)

// @title GitHub Client Service
// @version 1.0.0
// @description Thin HTTP facade over a subset of the GitHub REST API.
// @host localhost:8081
// @BasePath /v1
func main() {
	// * Load configuration
	cfg, err := config.LoadConfiguration()
	if err != nil {
		logger.Error("‼️ Failed to load config: %v", err)
		os.Exit(1)
	}

	if cfg.Debug {
		logger.SetLevel(logger.LevelDebug)
	}

	// * Initialize GitHub client
	httpClient := &http.Client{
		Timeout:   cfg.HTTPTimeout,
		Transport: github.TraceTransport(http.DefaultTransport, logger.Default()),
	}

	opts := []github.Option{
		github.WithBaseURL(cfg.GitHubAPIURL),
		github.WithHTTPClient(httpClient),
		github.WithToken(cfg.GitHubToken),
		github.WithLogger(logger.Default()),
	}
	for key, value := range cfg.Headers() {
		opts = append(opts, github.WithHeader(key, value))
	}
	githubClient := github.NewClient(opts...)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// * Optional queue intake for repository creation
	if cfg.RabbitMQURL != "" {
		rabbitMQ, err := queue.NewRabbitMQ(cfg.RabbitMQURL, cfg.CreateRepoQueue)
		if err != nil {
			logger.Error("Failed to initialize RabbitMQ: %v", err)
			os.Exit(1)
		}
		defer rabbitMQ.Close()

		if err := rabbitMQ.ConsumeCreateRequests(ctx, githubClient); err != nil {
			logger.Error("Failed to consume from %s: %v", cfg.CreateRepoQueue, err)
			os.Exit(1)
		}
		logger.Info("Consuming repository create requests from %s", cfg.CreateRepoQueue)
	}

	// * Create API server
	apiHandler := handler.NewGitHubHandler(githubClient)
	router := mux.NewRouter()
	router.Use(md.Logging(logger.Default()))
	api := router.PathPrefix("/v1").Subrouter()

	apiHandler.RegisterRoutes(api)
	router.PathPrefix("/v1/swagger/").Handler(httpSwagger.WrapHandler)

	server := &http.Server{
		Addr:    cfg.ServerPort,
		Handler: router,
	}

	go func() {
		logger.Info("Starting API server on %s (GitHub API at %s)", cfg.ServerPort, githubClient.BaseURL())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("API server error: %v", err)
			os.Exit(1)
		}
	}()

	// * Wait for termination signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed: %v", err)
	}
}
