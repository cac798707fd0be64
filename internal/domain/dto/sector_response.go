package dto

import (
	"time"

	"github.com/guttosm/sectorpulse/internal/domain/models"
)

// RecordsResponse is returned by GET /api/v1/records.
type RecordsResponse struct {
	RunID      string               `json:"run_id" example:"6f1c2a1e-7a55-4c9e-9a55-0b3c2f0e7d11"`
	CapturedAt time.Time            `json:"captured_at"`
	Count      int                  `json:"count" example:"2500"`
	Records    []models.StockRecord `json:"records"`
}

// SectorsResponse is returned by GET /api/v1/sectors.
type SectorsResponse struct {
	RunID   string                 `json:"run_id"`
	Sectors []models.SectorSummary `json:"sectors"`
}

// SectorResponse is returned by GET /api/v1/sectors/:code.
type SectorResponse struct {
	RunID  string               `json:"run_id"`
	Sector models.SectorSummary `json:"sector"`
}
