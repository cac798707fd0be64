package sector

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/guttosm/sectorpulse/internal/domain/models"
)

// UnknownCode is returned for (market, sector) pairs that are not in the table.
const UnknownCode = "000"

//go:embed sector_codes.tsv
var embeddedTable string

// Key identifies a table entry. The sector name is kept verbatim, including
// the empty name that stands for the whole market.
type Key struct {
	Market string
	Sector string
}

// Table maps (market, sector name) to a KRX sector code.
// It is immutable after construction and safe for concurrent reads.
type Table struct {
	codes   map[Key]string
	entries []models.SectorEntry
}

// Parse builds a Table from a tab-separated block whose first non-empty
// line is a header. Every following line must carry exactly 3 fields:
// market, sector name (may be empty) and code.
func Parse(text string) (*Table, error) {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	if len(lines) < 2 {
		return nil, fmt.Errorf("sector table: no entries")
	}

	t := &Table{codes: make(map[Key]string, len(lines)-1)}
	for i, line := range lines[1:] {
		parts := strings.Split(strings.TrimSpace(line), "\t")
		if len(parts) != 3 {
			return nil, fmt.Errorf("sector table line %d: expected 3 fields, got %d", i+2, len(parts))
		}
		e := models.SectorEntry{Market: parts[0], Sector: parts[1], Code: parts[2]}
		if len(e.Code) != 3 {
			return nil, fmt.Errorf("sector table line %d: invalid code %q", i+2, e.Code)
		}
		t.codes[Key{Market: e.Market, Sector: e.Sector}] = e.Code
		t.entries = append(t.entries, e)
	}
	return t, nil
}

// MustParse is like Parse but panics on malformed input.
func MustParse(text string) *Table {
	t, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return t
}

var defaultTable = MustParse(embeddedTable)

// Default returns the KOSPI/KOSDAQ table compiled into the binary.
func Default() *Table { return defaultTable }

// Code returns the code registered for (market, sectorName), or
// UnknownCode. An empty sectorName resolves to the market-wide entry.
func (t *Table) Code(market, sectorName string) string {
	if code, ok := t.codes[Key{Market: market, Sector: sectorName}]; ok {
		return code
	}
	return UnknownCode
}

// Lookup reports whether (market, sectorName) is registered.
func (t *Table) Lookup(market, sectorName string) (string, bool) {
	code, ok := t.codes[Key{Market: market, Sector: sectorName}]
	return code, ok
}

// Len returns the number of distinct keys.
func (t *Table) Len() int { return len(t.codes) }

// Entries returns a copy of the rows in table order.
func (t *Table) Entries() []models.SectorEntry {
	out := make([]models.SectorEntry, len(t.entries))
	copy(out, t.entries)
	return out
}
