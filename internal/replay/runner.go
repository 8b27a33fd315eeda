package replay

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	service "github.com/okian/hoopstate/internal/app"
	"github.com/okian/hoopstate/internal/domain/model"
	"github.com/okian/hoopstate/pkg/logger"
)

const (
	directoryPermission = 0o750
	filePermission      = 0o640
)

// Load reads every input file in order.
func Load(ctx context.Context, cfg *Config) ([]model.GameInput, error) {
	var games []model.GameInput
	for _, path := range cfg.Inputs {
		loaded, err := LoadFile(path, cfg.Format)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
		logger.Get().Info(ctx, "input loaded",
			logger.String("file", path),
			logger.Int("games", len(loaded)))
		games = append(games, loaded...)
	}
	if len(games) == 0 {
		return nil, ErrNoGames
	}
	return games, nil
}

// Run loads the inputs, processes them as one batch and writes the
// report. Cancelling ctx stops the batch; the partial report is still
// written.
func Run(ctx context.Context, cfg *Config, opts ...service.Option) (*service.Report, error) {
	games, err := Load(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	svc := service.New(opts...)
	if err := svc.Start(ctx); err != nil {
		return nil, fmt.Errorf("start service: %w", err)
	}
	defer svc.Stop()

	rep, err := svc.RunBatch(ctx, games)
	if err != nil {
		return nil, err
	}

	if cfg.ResultsDir != "" {
		if err := writeResults(context.WithoutCancel(ctx), svc, cfg.ResultsDir, rep); err != nil {
			return rep, err
		}
	}
	if err := writeReport(cfg.ReportFile, rep); err != nil {
		return rep, err
	}
	return rep, nil
}

func writeResults(ctx context.Context, svc *service.Service, dir string, rep *service.Report) error {
	if err := os.MkdirAll(dir, directoryPermission); err != nil {
		return fmt.Errorf("create results dir: %w", err)
	}
	for _, sum := range rep.Games {
		res, err := svc.Get(ctx, sum.GameID)
		if err != nil {
			continue
		}
		data, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal result %s: %w", sum.GameID, err)
		}
		path := filepath.Join(dir, filepath.Base(sum.GameID)+".json")
		if err := os.WriteFile(path, data, filePermission); err != nil {
			return fmt.Errorf("write result %s: %w", sum.GameID, err)
		}
	}
	logger.Get().Info(ctx, "results written",
		logger.String("dir", dir),
		logger.Int("games", len(rep.Games)))
	return nil
}

func writeReport(path string, rep *service.Report) error {
	var w io.Writer = os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create report: %w", err)
		}
		defer f.Close()
		w = f
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rep); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
