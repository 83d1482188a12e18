// Command olrs enriches per-token health tables with market data and an
// On-chain Liquidity Risk Score for every matched day.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"tokenrisk/internal/config"
	"tokenrisk/internal/dataprocessing"
	"tokenrisk/internal/files"
	"tokenrisk/internal/infrastructure"
	"tokenrisk/internal/marketdata"
	"tokenrisk/internal/services"
	"tokenrisk/pkg/contracts"
	"tokenrisk/pkg/contracts/domain"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type options struct {
	configFile  string
	workers     int
	symbols     string
	dataDir     string
	discover    bool
	showVersion bool
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("olrs", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configFile, "config", "", "YAML config file (defaults to $OLRS_CONFIG_FILE, config.yaml or configs/config.yaml)")
	fs.IntVar(&opts.workers, "workers", 0, "items enriched in parallel, overrides batch.workers")
	fs.StringVar(&opts.symbols, "symbols", "", "comma-separated symbols to enrich, replaces the configured items")
	fs.StringVar(&opts.dataDir, "data-dir", config.DefaultDataDir, "directory holding <SYMBOL>.csv when -symbols or -discover is set")
	fs.BoolVar(&opts.discover, "discover", false, "enrich every health table found in -data-dir, replaces the configured items")
	fs.BoolVar(&opts.showVersion, "version", false, "print version information and exit")
	err := fs.Parse(args)
	return opts, err
}

func loadConfig(opts options) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.configFile != "" {
		cfg, err = config.LoadFrom(opts.configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if opts.workers > 0 {
		cfg.Batch.Workers = opts.workers
	}
	switch {
	case opts.symbols != "" && opts.discover:
		return nil, errors.New("-symbols and -discover are mutually exclusive")
	case opts.discover:
		items, err := files.NewDiscovery(cfg.Batch.BaseDir).DiscoverItems(opts.dataDir)
		if err != nil {
			return nil, err
		}
		cfg.Items = items
	case opts.symbols != "":
		cfg.Items = cfg.Items[:0]
		for _, symbol := range strings.Split(opts.symbols, ",") {
			if symbol = strings.TrimSpace(symbol); symbol != "" {
				cfg.Items = append(cfg.Items, domain.NewBatchItem(opts.dataDir, symbol))
			}
		}
	}

	if err := cfg.ValidateForBatch(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// run executes one batch and returns the process exit code
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if opts.showVersion {
		fmt.Fprintln(stdout, contracts.GetFullVersionString())
		return exitOK
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintf(stderr, "olrs: configuration error: %v\n", err)
		return exitError
	}

	logger, closer, err := infrastructure.NewLogger(cfg.Logging, stdout)
	if err != nil {
		fmt.Fprintf(stderr, "olrs: failed to initialize logger: %v\n", err)
		return exitError
	}
	if closer != nil {
		defer closer.Close()
	}

	telemetry, err := infrastructure.InitializeOTel(cfg.Telemetry, contracts.Version, logger)
	if err != nil {
		logger.Error("Failed to initialize telemetry", slog.String("error", err.Error()))
		return exitError
	}
	defer func() {
		if err := telemetry.Shutdown(context.WithoutCancel(ctx)); err != nil {
			logger.Error("Failed to shut down telemetry", slog.String("error", err.Error()))
		}
	}()

	items := cfg.ResolvedItems()
	logger.InfoContext(ctx, "Starting OLRS enrichment",
		slog.String("version", contracts.Version),
		slog.Int("items", len(items)),
		slog.Int("workers", cfg.Batch.Workers),
		slog.String("interval", cfg.API.Interval),
		slog.Int("num_intervals", cfg.API.NumIntervals))

	client := marketdata.NewClientFromConfig(cfg.API,
		marketdata.WithLogger(logger),
		marketdata.WithRecorder(telemetry.Metrics),
		marketdata.WithTracer(telemetry.Tracer),
	)
	enrichment := services.NewEnrichmentService(client, cfg.Tokens, logger,
		services.WithItemRecorder(telemetry.Metrics),
		services.WithServiceTracer(telemetry.Tracer),
		services.WithSeriesWindow(cfg.API.Interval, cfg.API.NumIntervals),
	)
	report := services.NewBatchService(enrichment, cfg.Batch.Workers, logger).Run(ctx, items)

	if cfg.Batch.SummaryFile != "" {
		summarizer := dataprocessing.NewSummarizer(logger, dataprocessing.SummarizerConfig{})
		if err := summarizer.Write(ctx, cfg.Batch.SummaryFile, report.Summaries()); err != nil {
			logger.Error("Failed to write summary file",
				slog.String("path", cfg.Batch.SummaryFile),
				slog.String("error", err.Error()))
		}
	}

	if cfg.Telemetry.MetricsFile != "" {
		if err := telemetry.WriteTextfile(cfg.Telemetry.MetricsFile); err != nil {
			logger.Error("Failed to write metrics file",
				slog.String("path", cfg.Telemetry.MetricsFile),
				slog.String("error", err.Error()))
		}
	}

	return report.ExitCode()
}
