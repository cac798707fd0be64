package models

// StockRecord is one enriched listing row as it is embedded in the page.
//
// JSON keys are the Korean column names the page script reads; their order
// matches the declaration order below.
//
// Fields:
//   - SectorCode: 3-digit KRX sector code ("000" when unknown).
//   - Name: company name.
//   - Ticker: 6-character stock code (e.g., "005930").
//   - MarketCap: market capitalization.
//   - FloatRatio: tradable share ratio in [0,1], rounded to 4 decimals.
//   - FloatingMarketCap: MarketCap × FloatRatio, truncated.
//   - SectorShare: MarketCap over the sector total, rounded to 6 decimals.
type StockRecord struct {
	SectorCode        string  `json:"업종코드"`
	Name              string  `json:"종목명"`
	Ticker            string  `json:"종목코드"`
	MarketCap         int64   `json:"시가총액"`
	FloatRatio        float64 `json:"유통비율"`
	FloatingMarketCap int64   `json:"유통시총"`
	SectorShare       float64 `json:"업종내비율"`
}

// SectorEntry is one row of the sector code table.
type SectorEntry struct {
	Market string // "K" (KOSPI) or "Q" (KOSDAQ)
	Sector string // empty for the whole-market entry
	Code   string
}
