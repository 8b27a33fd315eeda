package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	app "github.com/okian/hoopstate/internal/app"
	"github.com/okian/hoopstate/internal/config"
	"github.com/okian/hoopstate/internal/replay"
	"github.com/okian/hoopstate/pkg/logger"
)

func main() {
	var (
		format     = flag.String("format", "", "Force the input format: json, ndjson or csv")
		reportFile = flag.String("report", "", "Write the batch report here instead of stdout")
		resultsDir = flag.String("results", "", "Directory for one result file per game")
		timeout    = flag.Duration("timeout", 0, "Stop the batch after this long")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help || flag.NArg() == 0 {
		replay.ShowHelp()
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}
	// Logs go to stderr so the report can be piped.
	if err := logger.Init(
		logger.WithFormat(cfg.LogFormat),
		logger.WithLevel(cfg.LogLevel),
		logger.WithWriter(os.Stderr),
	); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.Get()

	sinks, err := app.OpenSinks(ctx, cfg, log)
	if err != nil {
		log.Error(ctx, "failed to open sinks", logger.Error(err))
		os.Exit(1)
	}

	rep, err := replay.Run(ctx, &replay.Config{
		Inputs:     flag.Args(),
		Format:     replay.Format(*format),
		ReportFile: *reportFile,
		ResultsDir: *resultsDir,
		Timeout:    *timeout,
	}, append(app.FromConfig(cfg), app.WithLogger(log.Named("service")), app.WithSinks(sinks...))...)
	if err != nil {
		log.Error(ctx, "replay failed", logger.Error(err))
		os.Exit(1)
	}
	if rep.Cancelled {
		os.Exit(2)
	}
}
