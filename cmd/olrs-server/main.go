// Command olrs-server serves on-demand OLRS scoring over HTTP
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"tokenrisk/internal/app"
	"tokenrisk/internal/config"
	"tokenrisk/internal/infrastructure"
	"tokenrisk/pkg/contracts"
)

func main() {
	configFile := flag.String("config", "", "YAML config file (defaults to $OLRS_CONFIG_FILE, config.yaml or configs/config.yaml)")
	port := flag.Int("port", 0, "listen port, overrides server.port")
	flag.Parse()

	var (
		cfg *config.Config
		err error
	)
	if *configFile != "" {
		cfg, err = config.LoadFrom(*configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		slog.Error("Failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Error("Failed to initialize logger", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer infrastructure.CloseLogFile()

	telemetry, err := infrastructure.InitializeOTel(cfg.Telemetry, contracts.Version, logger)
	if err != nil {
		logger.Error("Failed to initialize telemetry", slog.String("error", err.Error()))
		os.Exit(1)
	}

	application, err := app.NewApplication(cfg, logger, telemetry)
	if err != nil {
		logger.Error("Failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		stop()
		os.Exit(1)
	}
}
