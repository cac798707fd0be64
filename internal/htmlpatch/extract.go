package htmlpatch

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/PuerkitoBio/goquery"
	"github.com/guttosm/sectorpulse/internal/domain/models"
)

// Extract parses an HTML document and decodes the array assigned to
// `const <name>` back into records. The array must be valid JSON and the
// declaration must occur exactly once.
func Extract(r io.Reader, name string) ([]models.StockRecord, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	decl := declarationPattern(name)
	var (
		literals []string
		scanErr  error
	)
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		src := s.Text()
		spans, err := findDeclarations(src, decl)
		if err != nil {
			scanErr = err
			return false
		}
		for _, sp := range spans {
			literals = append(literals, src[sp.open:sp.end])
		}
		return true
	})
	if scanErr != nil {
		return nil, scanErr
	}

	if err := expectOne(len(literals), name); err != nil {
		return nil, err
	}

	var out []models.StockRecord
	if err := json.Unmarshal([]byte(literals[0]), &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	return out, nil
}
