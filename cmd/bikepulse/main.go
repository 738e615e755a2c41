package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/rewired-gh/bikepulse/internal/analytics"
	"github.com/rewired-gh/bikepulse/internal/config"
	"github.com/rewired-gh/bikepulse/internal/logger"
	"github.com/rewired-gh/bikepulse/internal/report"
	"github.com/rewired-gh/bikepulse/internal/storage"
	"github.com/rewired-gh/bikepulse/internal/telegram"
)

var (
	configPath = flag.String("config", "configs/config.yaml", "Path to configuration file")
	startFlag  = flag.String("start", "", "First day of the window (YYYY-MM-DD), defaults to filter.start or the first day in the dataset")
	endFlag    = flag.String("end", "", "Last day of the window (YYYY-MM-DD), defaults to filter.end or the last day in the dataset")
	formatFlag = flag.String("format", "", "Output format: text or json (overrides report.format)")
	notifyFlag = flag.Bool("notify", false, "Send the dashboard to Telegram (overrides telegram.enabled)")
)

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Command-line flags take precedence over the file
	if *startFlag != "" {
		cfg.Filter.Start = *startFlag
	}
	if *endFlag != "" {
		cfg.Filter.End = *endFlag
	}
	if *formatFlag != "" {
		cfg.Report.Format = *formatFlag
	}
	if *notifyFlag {
		cfg.Telegram.Enabled = true
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	logger.Info("Configuration loaded from %s", *configPath)

	// Cancel loading on SIGINT/SIGTERM
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Source.Timeout)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, cancelling...")
		cancel()
	}()

	src, err := storage.NewSource(cfg.Source)
	if err != nil {
		logger.Fatal("Failed to initialize source: %v", err)
	}

	store, err := storage.Load(ctx, src, storage.Options{AllowDuplicateIDs: cfg.Source.AllowDuplicateIDs})
	if err != nil {
		logger.Fatal("Failed to load observations: %v", err)
	}

	start, end, err := cfg.Filter.Dates()
	if err != nil {
		logger.Fatal("Invalid filter window: %v", err)
	}

	if store.Len() == 0 {
		logger.Warn("Source returned no observations")
	}
	first, last, _ := store.Bounds()
	window := report.Window(first, last, start, end)

	dash, err := report.Build(store.Records(), window, cfg.Report.TopN)
	if err != nil {
		var rangeErr *analytics.InvalidRangeError
		if errors.As(err, &rangeErr) {
			logger.Fatal("Rejected date window: %v", rangeErr)
		}
		logger.Fatal("Failed to build dashboard: %v", err)
	}

	switch cfg.Report.Format {
	case "json":
		err = report.WriteJSON(os.Stdout, dash)
	default:
		err = report.WriteText(os.Stdout, dash)
	}
	if err != nil {
		logger.Fatal("Failed to write dashboard: %v", err)
	}

	if cfg.Telegram.Enabled {
		client, err := telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Telegram.MaxRetries, cfg.Telegram.RetryDelayBase)
		if err != nil {
			logger.Warn("Failed to initialize Telegram client: %v", err)
			return
		}
		sendCtx, sendCancel := context.WithTimeout(context.Background(), cfg.Source.Timeout)
		defer sendCancel()
		if err := client.SendDashboard(sendCtx, dash); err != nil {
			logger.Warn("Failed to send dashboard to Telegram: %v", err)
			return
		}
		logger.Info("Dashboard %s sent to Telegram", dash.ID)
	}
}
