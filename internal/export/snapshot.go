package export

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/fleetledger/internal/ledger"
	"github.com/MrJamesThe3rd/fleetledger/internal/metrics"
)

// SnapshotJob writes last month's statement of every configured company to disk.
// Files land in Dir/<company id>/statement_<yyyy-mm>.<ext>, overwriting a previous run.
type SnapshotJob struct {
	svc       *Service
	companies []uuid.UUID
	dir       string
	formats   []string
	now       func() time.Time
}

func NewSnapshotJob(svc *Service, companies []uuid.UUID, dir string, formats []string) (*SnapshotJob, error) {
	for _, f := range formats {
		if !Supported(f) {
			return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
		}
	}

	return &SnapshotJob{
		svc:       svc,
		companies: companies,
		dir:       dir,
		formats:   formats,
		now:       time.Now,
	}, nil
}

func (j *SnapshotJob) Name() string { return "statement_snapshot" }

// Run snapshots every company, continuing past failures; the first error is returned.
func (j *SnapshotJob) Run(ctx context.Context) error {
	window := previousMonth(j.now())

	var firstErr error

	for _, company := range j.companies {
		if err := j.snapshot(ctx, company, window); err != nil {
			slog.Error("statement snapshot failed", "company_id", company, "error", err)

			if firstErr == nil {
				firstErr = err
			}
		}
	}

	return firstErr
}

func (j *SnapshotJob) snapshot(ctx context.Context, company uuid.UUID, window *ledger.DateRange) error {
	st, err := j.svc.Build(ctx, company, window)
	if err != nil {
		return err
	}

	dir := filepath.Join(j.dir, company.String())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating snapshot directory: %w", err)
	}

	for _, format := range j.formats {
		start := time.Now()

		data, _, err := Render(st, format)
		if err == nil {
			name := fmt.Sprintf("statement_%s.%s", window.Start.Format("2006-01"), format)
			err = os.WriteFile(filepath.Join(dir, name), data, 0o644)
		}

		metrics.ObserveExport(format, time.Since(start), err)

		if err != nil {
			return err
		}
	}

	return nil
}

func previousMonth(now time.Time) *ledger.DateRange {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	start := first.AddDate(0, -1, 0)

	return &ledger.DateRange{Start: start, End: first.AddDate(0, 0, -1)}
}
