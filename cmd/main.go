package main

import (
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"go.uber.org/zap"

	"websearch/api"
	"websearch/config"
	"websearch/search"
)

func main() {
	// =========
	// Config
	// =========
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// =========
	// Logging
	// =========
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer logger.Sync()

	// =========
	// News category queries
	// =========
	categories, err := config.LoadCategoryQueries(cfg.CategoryQueriesPath)
	if err != nil {
		logger.Warn("category query file unreadable, using defaults", zap.Error(err))
	}

	// =========
	// Search Engine
	// =========
	engine := search.New(cfg, categories, logger)
	defer engine.Close()

	// =========
	// API server
	// =========
	server := api.NewServer(engine, logger, strconv.Itoa(cfg.AppPort))

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		logger.Error("server stopped", zap.Error(err))
	case s := <-sig:
		logger.Info("shutting down", zap.String("signal", s.String()))
	}
}
