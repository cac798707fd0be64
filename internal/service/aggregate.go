package service

import (
	"math"
	"sort"
	"strconv"

	"github.com/guttosm/sectorpulse/internal/domain/models"
)

// SectorTotals sums MarketCap per sector code.
func SectorTotals(records []models.StockRecord) map[string]int64 {
	totals := make(map[string]int64)
	for _, r := range records {
		totals[r.SectorCode] += r.MarketCap
	}
	return totals
}

// ApplySectorShares fills SectorShare on every record in place and returns
// the per-sector totals it used. Records in a sector whose total is zero get
// a share of 0. Record order is untouched.
func ApplySectorShares(records []models.StockRecord) map[string]int64 {
	totals := SectorTotals(records)
	for i := range records {
		total := totals[records[i].SectorCode]
		if total <= 0 {
			records[i].SectorShare = 0
			continue
		}
		records[i].SectorShare = Round(float64(records[i].MarketCap)/float64(total), 6)
	}
	return totals
}

// Summarize groups records by sector code, sorted by code. When
// withRecords is false the Records slices are left nil.
func Summarize(records []models.StockRecord, withRecords bool) []models.SectorSummary {
	idx := make(map[string]int)
	var out []models.SectorSummary
	for _, r := range records {
		i, ok := idx[r.SectorCode]
		if !ok {
			i = len(out)
			idx[r.SectorCode] = i
			out = append(out, models.SectorSummary{SectorCode: r.SectorCode})
		}
		out[i].TotalMarketCap += r.MarketCap
		out[i].Count++
		if withRecords {
			out[i].Records = append(out[i].Records, r)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].SectorCode < out[b].SectorCode })
	return out
}

// Round rounds x to the given number of decimal places using the
// shortest-decimal formatting of x, so ties resolve half-to-even on the
// exact binary value. NaN and ±Inf are returned unchanged.
func Round(x float64, places int) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	v, err := strconv.ParseFloat(strconv.FormatFloat(x, 'f', places, 64), 64)
	if err != nil {
		return x
	}
	return v
}
