package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/guttosm/sectorpulse/internal/domain/models"
	"github.com/guttosm/sectorpulse/internal/storage"
)

// SnapshotService stores build results and serves the most recent one.
type SnapshotService interface {
	Save(ctx context.Context, records []models.StockRecord) (models.Snapshot, error)
	Latest(ctx context.Context) (*models.Snapshot, error)
	Sectors(ctx context.Context) (runID string, sectors []models.SectorSummary, err error)
	Sector(ctx context.Context, code string) (runID string, sector *models.SectorSummary, err error)
}

type snapshotService struct {
	repo  storage.SnapshotRepository
	now   func() time.Time
	newID func() string
}

func NewSnapshotService(repo storage.SnapshotRepository) SnapshotService {
	return &snapshotService{repo: repo, now: time.Now, newID: uuid.NewString}
}

// Save persists records as a new snapshot run stamped with the current UTC time.
func (s *snapshotService) Save(ctx context.Context, records []models.StockRecord) (models.Snapshot, error) {
	snap := models.Snapshot{
		RunID:      s.newID(),
		CapturedAt: s.now().UTC(),
		Records:    records,
	}
	if err := s.repo.InsertSnapshot(ctx, snap); err != nil {
		return models.Snapshot{}, err
	}
	return snap, nil
}

// Latest returns every record of the most recent run.
// storage.ErrNoSnapshot is returned unchanged when nothing was saved yet.
func (s *snapshotService) Latest(ctx context.Context) (*models.Snapshot, error) {
	runID, at, err := s.repo.LatestRun(ctx)
	if err != nil {
		return nil, err
	}
	recs, err := s.repo.GetRecords(ctx, runID, "")
	if err != nil {
		return nil, err
	}
	return &models.Snapshot{RunID: runID, CapturedAt: at.Time, Records: recs}, nil
}

// Sectors returns per-sector totals of the latest run, without records.
func (s *snapshotService) Sectors(ctx context.Context) (string, []models.SectorSummary, error) {
	snap, err := s.Latest(ctx)
	if err != nil {
		return "", nil, err
	}
	return snap.RunID, Summarize(snap.Records, false), nil
}

// Sector returns one sector of the latest run with its records, or nil when
// the run has no record with that code.
func (s *snapshotService) Sector(ctx context.Context, code string) (string, *models.SectorSummary, error) {
	runID, _, err := s.repo.LatestRun(ctx)
	if err != nil {
		return "", nil, err
	}
	recs, err := s.repo.GetRecords(ctx, runID, code)
	if err != nil {
		return "", nil, err
	}
	if len(recs) == 0 {
		return runID, nil, nil
	}
	sum := Summarize(recs, true)[0]
	return runID, &sum, nil
}
