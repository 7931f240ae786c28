package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/MahlumInnovationsLLC/masterscheduler/adapter/cli"
	"github.com/MahlumInnovationsLLC/masterscheduler/adapter/cli/allocation"
	"github.com/MahlumInnovationsLLC/masterscheduler/adapter/cli/project"
	"github.com/MahlumInnovationsLLC/masterscheduler/adapter/cli/schedule"
	"github.com/MahlumInnovationsLLC/masterscheduler/internal/app"
	"github.com/MahlumInnovationsLLC/masterscheduler/pkg/config"
	"github.com/MahlumInnovationsLLC/masterscheduler/pkg/observability"
)

func main() {
	logger := observability.NewLogger(observability.DefaultLogConfig())

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger = observability.NewLogger(logConfig(cfg))
	slog.SetDefault(logger)
	cli.SetLogger(logger)

	container, err := app.NewContainer(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("failed to initialize container", "error", err)
		os.Exit(1)
	}
	defer container.Close()

	cli.SetApp(container.CLIApp())

	cli.AddCommand(project.Cmd)
	cli.AddCommand(allocation.Cmd)
	cli.AddCommand(schedule.Cmd)

	cli.Execute()
}

func logConfig(cfg *config.Config) observability.LogConfig {
	logCfg := observability.DefaultLogConfig()
	if cfg.IsProduction() {
		logCfg = observability.ProductionLogConfig()
	}
	logCfg.Level = observability.ParseLogLevel(cfg.LogLevel)
	if cfg.LogFormat != "" {
		logCfg.Format = observability.ParseLogFormat(cfg.LogFormat)
	}
	logCfg.ServiceVersion = cli.Version
	logCfg.Component = "cli"
	return logCfg
}
