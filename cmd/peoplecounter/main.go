package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/TheRealJacob07/Raspberry-Pi-Projects/internal/aggregation"
	corecfg "github.com/TheRealJacob07/Raspberry-Pi-Projects/internal/core/config"
	"github.com/TheRealJacob07/Raspberry-Pi-Projects/internal/counter"
	"github.com/TheRealJacob07/Raspberry-Pi-Projects/internal/ingestion"
	"github.com/TheRealJacob07/Raspberry-Pi-Projects/internal/query"
	"github.com/TheRealJacob07/Raspberry-Pi-Projects/internal/server"
	"github.com/TheRealJacob07/Raspberry-Pi-Projects/internal/storage/csvlog"
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file (optional)")
	flag.Parse()

	// 0. Initialize Logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 1. Load Configuration
	cfg, err := corecfg.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	slog.Info("Loaded config", "config", cfg)

	flushInterval, err := cfg.Log.ParsedFlushInterval()
	if err != nil {
		slog.Error("Invalid flush interval", "error", err)
		os.Exit(1)
	}

	// 2. Initialize Durable Log (writer owns appends, reader is lock-free)
	writer, err := csvlog.NewWriter(cfg.Log.Path)
	if err != nil {
		slog.Error("Failed to initialize durable log", "path", cfg.Log.Path, "error", err)
		os.Exit(1)
	}
	reader := csvlog.NewReader(cfg.Log.Path)

	// 3. Initialize Counting Core (dedup + minute accumulator)
	counterSvc := counter.NewService(writer, flushInterval)

	// 4. Initialize Read Side
	engine := aggregation.NewEngine(reader)
	querySvc := query.NewService(engine, query.Limits{
		DefaultPerPage: cfg.Query.DefaultPerPage,
		MaxPerPage:     cfg.Query.MaxPerPage,
		MaxWindowHours: cfg.Query.MaxWindowHours,
		MaxWindowDays:  cfg.Query.MaxWindowDays,
	})

	// 5. Initialize Ingestion Boundary
	ingestionSvc := ingestion.NewService(counterSvc, cfg.Server.MaxBodySizeMB)

	// 6. Initialize Server
	srv := server.New(fmtAddr(cfg.Server.Host, cfg.Server.Port), cfg.Log.Path, cfg.Server.Mode)
	ingestionSvc.RegisterRoutes(srv.Engine)
	querySvc.RegisterRoutes(srv.Engine)

	// 7. Start Services
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Monitor.Enabled {
		interval, err := cfg.Monitor.ParsedInterval()
		if err != nil {
			slog.Error("Invalid monitor interval", "error", err)
			os.Exit(1)
		}
		go counter.NewMonitor(counterSvc, interval).Start(ctx)
	} else {
		slog.Info("Status monitor disabled by config")
	}

	// Signal handler → triggers the shutdown sequence below.
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		slog.Info("Signal received, shutting down...")
		cancel()
	}()

	// HTTP server blocks until ctx is cancelled.
	if err := srv.Run(ctx); err != nil {
		slog.Error("Server stopped with error", "error", err)
	}

	// Flush the trailing partial bucket so a clean shutdown loses nothing.
	counterSvc.Flush()

	slog.Info("Shutdown complete")
}

func fmtAddr(host string, port int) string {
	return fmt.Sprintf("%s:%d", host, port)
}
