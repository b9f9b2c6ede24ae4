package batch

import (
	"context"
	"sync/atomic"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/visibility-cli/internal/model"
)

// ScanFunc runs one scan. It matches scan.Pipeline.Run.
type ScanFunc func(ctx context.Context, profile model.BusinessProfile) (*model.Scan, error)

// Summary reports the outcome of a batch.
type Summary struct {
	Total     int `json:"total"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// Process scans profiles concurrently, at most concurrency at a time.
// An individual scan failure is logged and counted but never aborts
// the batch; limit > 0 caps how many profiles are taken.
func Process(ctx context.Context, profiles []model.BusinessProfile, limit, concurrency int, run ScanFunc) (Summary, error) {
	if len(profiles) == 0 {
		zap.L().Info("batch: no profiles to scan")
		return Summary{}, nil
	}

	if limit > 0 && len(profiles) > limit {
		profiles = profiles[:limit]
	}
	if concurrency <= 0 {
		concurrency = 1
	}

	zap.L().Info("batch: processing",
		zap.Int("profiles", len(profiles)),
		zap.Int("concurrency", concurrency),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	var succeeded, failed atomic.Int64

	for _, profile := range profiles {
		g.Go(func() error {
			log := zap.L().With(zap.String("business", profile.Name))

			scan, err := run(gctx, profile)
			if err != nil {
				failed.Add(1)
				log.Error("batch: scan failed", zap.Error(err))
				return nil // don't abort batch on individual failure
			}

			succeeded.Add(1)
			log.Info("batch: scan complete",
				zap.String("scan_id", scan.ID),
				zap.Int("overall_recognition", scan.Result.Analysis.OverallRecognition),
			)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Summary{}, eris.Wrap(err, "batch: processing")
	}

	summary := Summary{
		Total:     len(profiles),
		Succeeded: int(succeeded.Load()),
		Failed:    int(failed.Load()),
	}
	zap.L().Info("batch: complete",
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("failed", summary.Failed),
	)
	return summary, nil
}
