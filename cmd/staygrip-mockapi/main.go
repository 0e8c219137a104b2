// Command staygrip-mockapi serves the search API over fixture listings for
// local development.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"staygrip/internal/domain"
	"staygrip/internal/logging"
	"staygrip/internal/logic"
	"staygrip/internal/mockapi"
)

func main() {
	var (
		addr     string
		fixtures string
		delay    time.Duration
		level    string
		jsonLogs bool
	)
	flag.StringVar(&addr, "addr", ":8080", "Listen address")
	flag.StringVar(&fixtures, "fixtures", "", "JSON file with an array of listings (default: built-in fixtures)")
	flag.DurationVar(&delay, "delay", 0, "Delay added to every response")
	flag.StringVar(&level, "log-level", "info", "Log level")
	flag.BoolVar(&jsonLogs, "json", false, "Log as JSON")
	flag.Parse()

	logger := logging.NewSlogAdapter(logging.SlogConfig{
		Writer:   os.Stderr,
		Level:    logging.ParseLevel(level),
		IsJSON:   jsonLogs,
		UseColor: !jsonLogs,
	})

	props, err := loadFixtures(fixtures)
	if err != nil {
		logger.Error("failed to load fixtures", err, logging.Fields{"file": fixtures})
		os.Exit(1)
	}

	api := mockapi.New(logic.NewMemoryPropertyStore(props...), logger)
	api.SetDelay(delay)

	srv := &http.Server{
		Addr:              addr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", err, nil)
		}
	}()

	logger.Info("mock api listening", logging.Fields{"addr": addr, "listings": len(props)})
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server failed", err, nil)
		os.Exit(1)
	}
	logger.Info("mock api stopped", nil)
}

func loadFixtures(path string) ([]domain.Property, error) {
	if path == "" {
		return mockapi.DefaultFixtures(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var props []domain.Property
	if err := json.Unmarshal(data, &props); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return props, nil
}
