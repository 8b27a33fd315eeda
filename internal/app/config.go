package service

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/hoopstate/internal/adapters/archive"
	"github.com/okian/hoopstate/internal/adapters/mq/worker"
	"github.com/okian/hoopstate/internal/adapters/publisher"
	"github.com/okian/hoopstate/internal/config"
	"github.com/okian/hoopstate/internal/domain/parser"
	"github.com/okian/hoopstate/internal/game"
	"github.com/okian/hoopstate/pkg/logger"
)

// FromConfig translates the process configuration into service options.
func FromConfig(cfg *config.Config) []Option {
	return []Option{
		WithWorkerCount(cfg.WorkerCount),
		WithQueueSize(cfg.QueueSize),
		WithDedupeSize(cfg.DedupeSize),
		WithGameOptions(
			game.WithParser(parser.New(parser.WithExclusions(cfg.TeamNameExclusionList))),
			game.WithMinimumPossessions(cfg.MinimumPossessionsForLineupRanking),
			game.WithFailureThreshold(cfg.ParseFailureThresholdPct),
			game.WithPeriodLengths(
				time.Duration(cfg.PeriodLengthMinutes)*time.Minute,
				time.Duration(cfg.OvertimeLengthMinutes)*time.Minute),
			game.WithUnparsedSamples(cfg.UnparsedSampleSize),
		),
	}
}

// OpenSinks opens the optional archive and publisher named by cfg. On
// error every sink opened so far is closed.
func OpenSinks(ctx context.Context, cfg *config.Config, log logger.Logger) ([]worker.Sink, error) {
	var sinks []worker.Sink

	if cfg.ArchiveDriver != "" {
		a, err := archive.Open(ctx, cfg.ArchiveDriver, cfg.ArchiveDSN,
			archive.WithLogger(log.Named("archive")))
		if err != nil {
			return nil, fmt.Errorf("open archive: %w", err)
		}
		sinks = append(sinks, a)
	}

	if cfg.RedisURL != "" {
		p, err := publisher.Dial(ctx, cfg.RedisURL,
			publisher.WithLogger(log.Named("publisher")))
		if err != nil {
			closeSinks(sinks)
			return nil, fmt.Errorf("open publisher: %w", err)
		}
		sinks = append(sinks, p)
	}
	return sinks, nil
}

func closeSinks(sinks []worker.Sink) {
	for _, s := range sinks {
		if c, ok := s.(interface{ Close() error }); ok {
			_ = c.Close()
		}
	}
}
