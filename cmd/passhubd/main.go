package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"passhub/config"
	"passhub/core"
	"passhub/observability/logging"
	"passhub/rpc"
	"passhub/storage"
)

func main() {
	configFile := flag.String("config", "./config.toml", "Path to the configuration file")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.Setup("passhubd", cfg.NetworkName, cfg.LogFormat, cfg.LogLevel)

	db, err := storage.NewLevelDB(cfg.DataDir)
	if err != nil {
		logger.Error("Failed to open database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	node, err := core.NewNode(db, cfg.Admin(), cfg.Treasury())
	if err != nil {
		logger.Error("Failed to initialise node", slog.Any("error", err))
		os.Exit(1)
	}

	authToken := cfg.AuthToken()
	if authToken == "" {
		logger.Warn("No RPC auth token configured; privileged methods are disabled")
	}

	server := rpc.NewServer(node, authToken, rpc.ServerConfig{
		ReadTimeout:  time.Duration(cfg.RPCReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.RPCWriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.RPCIdleTimeout) * time.Second,
	}, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(cfg.RPCAddress)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("Shutting down", slog.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("Shutdown failed", slog.Any("error", err))
			os.Exit(1)
		}
	case err := <-errCh:
		if err != nil {
			logger.Error("RPC server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}
}
