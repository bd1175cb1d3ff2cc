package main

import (
	"log/slog"
	"os"

	"github.com/shopspring/decimal"

	"github.com/huynhduongtien171003/amis-demo/internal/common"
	"github.com/huynhduongtien171003/amis-demo/internal/export"
	"github.com/huynhduongtien171003/amis-demo/internal/llm/openai"
	"github.com/huynhduongtien171003/amis-demo/internal/pipeline"
	"github.com/huynhduongtien171003/amis-demo/internal/repository"
	"github.com/huynhduongtien171003/amis-demo/internal/server"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("config.invalid", "error", err)
		os.Exit(1)
	}
	if err := os.MkdirAll(cfg.Storage.UploadDir, 0o755); err != nil {
		logger.Error("storage.upload_dir_failed", "error", err)
		os.Exit(1)
	}

	var store repository.JobStore
	if cfg.Storage.JobsDBPath != "" {
		s, err := repository.NewSQLiteStore(cfg.Storage.JobsDBPath)
		if err != nil {
			logger.Error("storage.sqlite_open_failed", "path", cfg.Storage.JobsDBPath, "error", err)
			os.Exit(1)
		}
		store = s
		logger.Info("storage.sqlite", "path", cfg.Storage.JobsDBPath)
	} else {
		store = repository.NewMemoryStore()
		logger.Info("storage.memory")
	}
	defer store.Close()

	extractor := openai.NewClient(openai.Config{
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
		Timeout:     cfg.LLM.Timeout,
	}, logger)

	engine := pipeline.NewEngine(logger, engineOptions(cfg, logger)...)

	exporter, err := export.NewService(cfg.Storage.OutputDir, logger)
	if err != nil {
		logger.Error("export.init_failed", "error", err)
		os.Exit(1)
	}

	svc := server.NewService(cfg, store, extractor, engine, exporter, logger)
	if err := svc.Run(); err != nil {
		logger.Error("server.failed", "error", err)
		os.Exit(1)
	}
}

func engineOptions(cfg *common.Config, logger *slog.Logger) []pipeline.Option {
	var opts []pipeline.Option
	if tol, err := decimal.NewFromString(cfg.Engine.InvoiceTolerance); err == nil {
		opts = append(opts, pipeline.WithInvoiceTolerance(tol))
	} else {
		logger.Warn("config.invoice_tolerance_invalid", "value", cfg.Engine.InvoiceTolerance)
	}
	if tol, err := decimal.NewFromString(cfg.Engine.OrderTolerance); err == nil {
		opts = append(opts, pipeline.WithOrderTolerance(tol))
	} else {
		logger.Warn("config.order_tolerance_invalid", "value", cfg.Engine.OrderTolerance)
	}
	return opts
}
