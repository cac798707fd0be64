package models

import "time"

// SectorSummary aggregates the records that share a sector code.
type SectorSummary struct {
	SectorCode     string        `json:"sector_code" example:"013"`
	TotalMarketCap int64         `json:"total_market_cap" example:"652000000"`
	Count          int           `json:"count" example:"42"`
	Records        []StockRecord `json:"records,omitempty"`
}

// Snapshot is the set of records produced by one build run.
type Snapshot struct {
	RunID      string
	CapturedAt time.Time
	Records    []StockRecord
}
