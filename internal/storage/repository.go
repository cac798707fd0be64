package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/guttosm/sectorpulse/internal/domain/models"
	pq "github.com/lib/pq"
)

// ErrNoSnapshot is returned when no snapshot run has been recorded yet.
var ErrNoSnapshot = errors.New("no snapshot available")

// SnapshotRepository defines contract for snapshot persistence.
type SnapshotRepository interface {
	InsertSnapshot(ctx context.Context, snap models.Snapshot) error
	LatestRun(ctx context.Context) (runID string, capturedAt sql.NullTime, err error)
	GetRecords(ctx context.Context, runID string, sectorCode string) ([]models.StockRecord, error)
}

type snapshotRepository struct {
	db *sql.DB
}

func NewSnapshotRepository(db *sql.DB) SnapshotRepository {
	return &snapshotRepository{db: db}
}

// InsertSnapshot stores a run header and all of its records in a single transaction.
// Records are bulk-loaded with COPY; their slice index becomes the position column.
func (r *snapshotRepository) InsertSnapshot(ctx context.Context, snap models.Snapshot) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO snapshot_runs (run_id, captured_at, record_count) VALUES ($1, $2, $3)`,
		snap.RunID, snap.CapturedAt, len(snap.Records),
	); err != nil {
		_ = tx.Rollback()
		return err
	}

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn(
		"sector_records",
		"run_id",
		"position",
		"sector_code",
		"name",
		"ticker",
		"market_cap",
		"float_ratio",
		"floating_market_cap",
		"sector_share",
	))
	if err != nil {
		_ = tx.Rollback()
		return err
	}

	for i, rec := range snap.Records {
		if _, err := stmt.ExecContext(ctx,
			snap.RunID,
			i,
			rec.SectorCode,
			rec.Name,
			rec.Ticker,
			rec.MarketCap,
			rec.FloatRatio,
			rec.FloatingMarketCap,
			rec.SectorShare,
		); err != nil {
			_ = stmt.Close()
			_ = tx.Rollback()
			return fmt.Errorf("copy record %d (%s): %w", i, rec.Ticker, err)
		}
	}

	if _, err := stmt.ExecContext(ctx); err != nil {
		_ = stmt.Close()
		_ = tx.Rollback()
		return err
	}
	if err := stmt.Close(); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

// LatestRun returns the id and capture time of the most recent snapshot.
func (r *snapshotRepository) LatestRun(ctx context.Context) (string, sql.NullTime, error) {
	var (
		runID      string
		capturedAt sql.NullTime
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT run_id, captured_at FROM snapshot_runs ORDER BY captured_at DESC LIMIT 1`,
	).Scan(&runID, &capturedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return "", capturedAt, ErrNoSnapshot
	}
	if err != nil {
		return "", capturedAt, err
	}
	return runID, capturedAt, nil
}

// GetRecords returns the records of a run in their original input order.
// An empty sectorCode returns every sector.
func (r *snapshotRepository) GetRecords(ctx context.Context, runID string, sectorCode string) ([]models.StockRecord, error) {
	query := `
		SELECT sector_code, name, ticker, market_cap, float_ratio, floating_market_cap, sector_share
		FROM sector_records
		WHERE run_id = $1`
	args := []interface{}{runID}
	if sectorCode != "" {
		query += ` AND sector_code = $2`
		args = append(args, sectorCode)
	}
	query += ` ORDER BY position`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.StockRecord
	for rows.Next() {
		var rec models.StockRecord
		if err := rows.Scan(
			&rec.SectorCode,
			&rec.Name,
			&rec.Ticker,
			&rec.MarketCap,
			&rec.FloatRatio,
			&rec.FloatingMarketCap,
			&rec.SectorShare,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
