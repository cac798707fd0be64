package ingestion

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	xunicode "golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/guttosm/sectorpulse/internal/domain/models"
	"github.com/guttosm/sectorpulse/internal/logger"
	"github.com/guttosm/sectorpulse/internal/sector"
	"github.com/guttosm/sectorpulse/internal/service"
)

const (
	headerMarker   = "시장" // first column title of the export header row
	expectedFields = 6
	maxLineBytes   = 1 << 20
)

// sectorAliases maps export sector names onto table names.
var sectorAliases = map[string]string{
	"은행": "금융",
}

// ParseStats counts what happened to each input line.
type ParseStats struct {
	Lines          int // lines read, including header and blanks
	Skipped        int // header or blank
	BadFieldCount  int // dropped: not exactly 6 fields after cleaning
	BadMarketCap   int // dropped: market cap is not an integer
	TooLong        int // dropped: longer than maxLineBytes
	RatioDefaulted int // kept, float ratio unparseable and set to 0
	Records        int // records emitted
}

// Dropped returns the number of data lines that did not produce a record.
func (s ParseStats) Dropped() int { return s.BadFieldCount + s.BadMarketCap + s.TooLong }

type lineOutcome int

const (
	lineOK lineOutcome = iota
	lineSkipped
	lineBadFieldCount
	lineBadMarketCap
)

// ParseListing reads a tab-separated listing export and returns one enriched
// record per valid line, in input order. SectorShare is left at zero; see
// service.ApplySectorShares.
//
// Column order:
//
//	0 시장     market ("K" or "Q")
//	1 업종구분 sector name (may be empty)
//	2 종목명   name
//	3 종목코드 ticker
//	4 시가총액 market cap (integer, thousands separators allowed)
//	5 유통비율 float ratio in percent
//
// Malformed lines are dropped and counted, never returned as errors. Only
// read failures and context cancellation abort the parse.
func ParseListing(ctx context.Context, r io.Reader, table *sector.Table) ([]models.StockRecord, ParseStats, error) {
	var (
		stats   ParseStats
		records []models.StockRecord
	)

	decoded := transform.NewReader(r, xunicode.BOMOverride(xunicode.UTF8.NewDecoder()))
	br := bufio.NewReaderSize(decoded, 64*1024)

	for {
		select {
		case <-ctx.Done():
			return nil, stats, ctx.Err()
		default:
		}

		line, tooLong, err := nextLine(br)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, stats, fmt.Errorf("read line after %d: %w", stats.Lines, err)
		}

		stats.Lines++
		if tooLong {
			stats.TooLong++
			logger.L().Debug().Int("line", stats.Lines).Str("reason", "too_long").Msg("line dropped")
			continue
		}

		rec, outcome, defaulted := parseLine(norm.NFC.String(line), table)
		switch outcome {
		case lineSkipped:
			stats.Skipped++
		case lineBadFieldCount:
			stats.BadFieldCount++
			logger.L().Debug().Int("line", stats.Lines).Str("reason", "field_count").Msg("line dropped")
		case lineBadMarketCap:
			stats.BadMarketCap++
			logger.L().Debug().Int("line", stats.Lines).Str("reason", "market_cap").Msg("line dropped")
		case lineOK:
			if defaulted {
				stats.RatioDefaulted++
			}
			records = append(records, rec)
		}
	}

	stats.Records = len(records)
	return records, stats, nil
}

// nextLine returns the next line without its "\n" or "\r\n" terminator.
// A line longer than maxLineBytes is consumed whole and reported as tooLong
// with an empty body. io.EOF is returned only when no bytes remain.
func nextLine(br *bufio.Reader) (line string, tooLong bool, err error) {
	var buf []byte
	read := 0
	for {
		frag, err := br.ReadSlice('\n')
		read += len(frag)
		if !tooLong {
			if read > maxLineBytes+2 {
				tooLong, buf = true, nil
			} else {
				buf = append(buf, frag...)
			}
		}

		switch {
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		case errors.Is(err, io.EOF):
			if read == 0 {
				return "", false, io.EOF
			}
		case err != nil:
			return "", false, err
		}

		if tooLong {
			return "", true, nil
		}
		buf = bytes.TrimSuffix(buf, []byte("\n"))
		buf = bytes.TrimSuffix(buf, []byte("\r"))
		if len(buf) > maxLineBytes {
			return "", true, nil
		}
		return string(buf), false, nil
	}
}

// parseLine turns one raw line into a record. defaulted reports whether the
// float ratio fell back to 0.
func parseLine(line string, table *sector.Table) (rec models.StockRecord, outcome lineOutcome, defaulted bool) {
	if strings.HasPrefix(line, headerMarker) || strings.TrimSpace(line) == "" {
		return rec, lineSkipped, false
	}

	parts := strings.Split(strings.TrimSpace(sanitize(line)), "\t")
	if len(parts) != expectedFields {
		return rec, lineBadFieldCount, false
	}
	for i := range parts {
		parts[i] = cleanField(parts[i])
	}
	market, sectorName, name, ticker, capText, ratioText := parts[0], parts[1], parts[2], parts[3], parts[4], parts[5]

	marketCap, err := strconv.ParseInt(asciiDigits(capText), 10, 64)
	if err != nil {
		return rec, lineBadMarketCap, false
	}

	ratio, ok := parsePercent(asciiDigits(ratioText))
	if !ok {
		defaulted = true
	}

	if alias, ok := sectorAliases[sectorName]; ok {
		sectorName = alias
	}

	return models.StockRecord{
		SectorCode:        table.Code(market, sectorName),
		Name:              name,
		Ticker:            ticker,
		MarketCap:         marketCap,
		FloatRatio:        ratio,
		FloatingMarketCap: truncateProduct(marketCap, ratio),
	}, lineOK, defaulted
}

// sanitize drops every rune outside the content allowlist.
func sanitize(line string) string {
	return strings.Map(func(r rune) rune {
		if keepRune(r) {
			return r
		}
		return -1
	}, line)
}

// keepRune is the content allowlist: word characters (letters, numbers,
// underscore), whitespace including tab, '.', '/', and Hangul jamo through
// syllables (U+3131..U+D7A3).
func keepRune(r rune) bool {
	switch {
	case r == '_' || r == '.' || r == '/':
		return true
	case unicode.IsLetter(r), unicode.IsNumber(r), unicode.IsSpace(r):
		return true
	case r >= 'ㄱ' && r <= '힣':
		return true
	}
	return false
}

// asciiDigits rewrites every Unicode decimal digit (category Nd) in s as its
// ASCII form, so "１０００" and "١٠٠٠" both read as "1000".
func asciiDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if r < utf8.RuneSelf || !unicode.IsDigit(r) {
			return r
		}
		if d, ok := digitValue(r); ok {
			return '0' + d
		}
		return r
	}, s)
}

// digitValue returns the value of a decimal digit rune. Nd digits are
// encoded in runs of ten starting at zero, so the offset into the run is
// the value.
func digitValue(r rune) (rune, bool) {
	for _, rg := range unicode.Nd.R16 {
		if lo, hi := rune(rg.Lo), rune(rg.Hi); r >= lo && r <= hi {
			return (r - lo) / rune(rg.Stride) % 10, true
		}
	}
	for _, rg := range unicode.Nd.R32 {
		if lo, hi := rune(rg.Lo), rune(rg.Hi); r >= lo && r <= hi {
			return (r - lo) / rune(rg.Stride) % 10, true
		}
	}
	return 0, false
}

func cleanField(f string) string {
	f = strings.TrimSpace(f)
	f = strings.Trim(f, "'")
	f = strings.Trim(f, `"`)
	return strings.ReplaceAll(f, ",", "")
}

// parsePercent converts "50.00" to 0.5, rounded to 4 decimals. Unparseable
// and non-finite input yields (0, false).
func parsePercent(s string) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return service.Round(v/100, 4), true
}

// truncateProduct returns int(cap × ratio) truncated toward zero, saturating
// at the int64 range.
func truncateProduct(marketCap int64, ratio float64) int64 {
	p := math.Trunc(float64(marketCap) * ratio)
	switch {
	case p >= math.MaxInt64:
		return math.MaxInt64
	case p <= math.MinInt64:
		return math.MinInt64
	}
	return int64(p)
}
