package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/joripage/pricebook/config"
	"github.com/joripage/pricebook/pkg/logging"
	"github.com/joripage/pricebook/pkg/orderbook"
	"github.com/joripage/pricebook/pkg/scenario"
)

// stdinScenario makes the runner read steps from standard input.
const stdinScenario = "-"

func main() {
	configPath := flag.String("config", "", "path to config file (defaults to $CONFIG_FILE)")
	scenarioPath := flag.String("scenario", "", "scenario file, overrides scenario_file from config; - reads steps from stdin")
	flag.Parse()

	// errors before the configured logger exists still reach stderr
	boot := logging.NewLogger(logging.INFO)
	zap.ReplaceGlobals(boot.Zap())

	cfg := config.Default()
	if *configPath != "" || os.Getenv("CONFIG_FILE") != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			zap.S().Fatalf("load config: %v", err)
		}
		cfg = loaded
	}
	if *scenarioPath != "" {
		cfg.ScenarioFile = *scenarioPath
	}

	level, err := cfg.Level()
	if err != nil {
		zap.S().Fatalf("log level: %v", err)
	}
	logger := logging.NewLogger(level).With(zap.String("service", cfg.ServiceName))
	defer logger.Sync()
	zap.ReplaceGlobals(logger.Zap())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = logging.WithLogger(logging.WithRunID(ctx, ""), logger)
	logger, _ = logging.GetLogger(ctx)

	scale, err := cfg.Scale()
	if err != nil {
		logger.Fatal(ctx, "invalid tick size", zap.Error(err))
	}

	runner := scenario.NewRunner(orderbook.New(), scale, os.Stdout, logger)

	if cfg.ScenarioFile == stdinScenario {
		if err := runner.Feed(ctx, os.Stdin); err != nil {
			logger.Fatal(ctx, "scenario aborted", zap.Error(err))
		}
		return
	}

	sc := scenario.WorkedExample()
	if cfg.ScenarioFile != "" {
		sc, err = scenario.LoadFile(cfg.ScenarioFile)
		if err != nil {
			logger.Fatal(ctx, "load scenario", zap.String("file", cfg.ScenarioFile), zap.Error(err))
		}
	}

	if err := runner.Run(ctx, sc); err != nil {
		// the book rejected a step; nothing after it can be trusted
		logger.Fatal(ctx, "scenario aborted", zap.Error(err))
	}
}
