package ingestion

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/guttosm/sectorpulse/internal/domain/models"
	"github.com/guttosm/sectorpulse/internal/htmlpatch"
	"github.com/guttosm/sectorpulse/internal/logger"
	"github.com/guttosm/sectorpulse/internal/sector"
	"github.com/guttosm/sectorpulse/internal/service"
	"github.com/guttosm/sectorpulse/internal/storage"
)

// Options selects the files a build reads and writes.
type Options struct {
	InputPath string // tab-separated listing export
	HTMLPath  string // page holding the record array
	ListName  string // array variable name; defaults to htmlpatch.DefaultListName
}

// Result summarizes one build.
type Result struct {
	Records []models.StockRecord
	Stats   ParseStats
	Totals  map[string]int64 // market cap per sector code
	RunID   string           // empty when no snapshot was saved
}

// snapshotCtor is an indirection for creating the snapshot service; tests can override this.
var snapshotCtor = func(db *sql.DB) service.SnapshotService {
	return service.NewSnapshotService(storage.NewSnapshotRepository(db))
}

// Run executes the build pipeline:
//   - parse the listing export into records (malformed lines are dropped),
//   - compute each record's share of its sector's market cap,
//   - rewrite the record array in the HTML page,
//   - if db is non-nil, persist the records as a new snapshot.
//
// Nothing is written when reading or parsing fails or when the page does not
// contain exactly one array declaration.
func Run(ctx context.Context, opts Options, db *sql.DB) (*Result, error) {
	start := time.Now()
	if opts.ListName == "" {
		opts.ListName = htmlpatch.DefaultListName
	}

	log := logger.With("build")
	log.Info().Str("input", opts.InputPath).Str("html", opts.HTMLPath).Str("list", opts.ListName).Msg("build start")

	f, err := os.Open(opts.InputPath)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer func() { _ = f.Close() }()

	records, stats, err := ParseListing(ctx, f, sector.Default())
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", opts.InputPath, err)
	}

	totals := service.ApplySectorShares(records)

	if err := htmlpatch.PatchFile(opts.HTMLPath, opts.ListName, records); err != nil {
		return nil, fmt.Errorf("patch %s: %w", opts.HTMLPath, err)
	}

	res := &Result{Records: records, Stats: stats, Totals: totals}

	if db != nil {
		snap, err := snapshotCtor(db).Save(ctx, records)
		if err != nil {
			return nil, fmt.Errorf("save snapshot: %w", err)
		}
		res.RunID = snap.RunID
	}

	log.Info().
		Int("records", stats.Records).
		Int("dropped", stats.Dropped()).
		Int("bad_field_count", stats.BadFieldCount).
		Int("bad_market_cap", stats.BadMarketCap).
		Int("too_long", stats.TooLong).
		Int("ratio_defaulted", stats.RatioDefaulted).
		Int("sectors", len(totals)).
		Str("run_id", res.RunID).
		Dur("elapsed", time.Since(start)).
		Msg("build done")

	return res, nil
}

// Inspect reads the record array back out of an already patched page and
// returns per-sector totals along with the record count.
func Inspect(htmlPath, listName string) ([]models.SectorSummary, int, error) {
	if listName == "" {
		listName = htmlpatch.DefaultListName
	}
	f, err := os.Open(htmlPath)
	if err != nil {
		return nil, 0, fmt.Errorf("open html: %w", err)
	}
	defer func() { _ = f.Close() }()

	records, err := htmlpatch.Extract(f, listName)
	if err != nil {
		return nil, 0, fmt.Errorf("extract %s: %w", htmlPath, err)
	}
	return service.Summarize(records, false), len(records), nil
}
