// Package htmlpatch rewrites the record array embedded in the dashboard page
// and reads it back.
package htmlpatch

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/guttosm/sectorpulse/internal/domain/models"
	"golang.org/x/net/html"
)

// DefaultListName is the array variable the dashboard page declares.
const DefaultListName = "stockInfoList"

// Serialize renders records as a two-space indented JSON array. Non-ASCII
// text and HTML-significant characters are written as-is.
func Serialize(records []models.StockRecord) ([]byte, error) {
	if records == nil {
		records = []models.StockRecord{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// locate returns the document offsets of every `const <name> = [...]`
// declaration found inside <script> elements.
func locate(doc []byte, name string) ([]span, error) {
	decl := declarationPattern(name)
	z := html.NewTokenizer(bytes.NewReader(doc))

	var (
		found    []span
		offset   int
		inScript bool
	)
	for {
		tt := z.Next()
		start := offset
		offset += len(z.Raw())

		switch tt {
		case html.ErrorToken:
			if z.Err() == io.EOF {
				return found, nil
			}
			return nil, fmt.Errorf("tokenize html: %w", z.Err())
		case html.StartTagToken:
			tag, _ := z.TagName()
			inScript = string(tag) == "script"
		case html.EndTagToken, html.SelfClosingTagToken:
			inScript = false
		case html.TextToken:
			if !inScript {
				continue
			}
			spans, err := findDeclarations(string(doc[start:offset]), decl)
			if err != nil {
				return nil, err
			}
			for _, s := range spans {
				found = append(found, span{start: start + s.start, open: start + s.open, end: start + s.end})
			}
		}
	}
}

// expectOne fails unless exactly one declaration of name was found.
func expectOne(n int, name string) error {
	switch {
	case n == 0:
		return fmt.Errorf("%s: %w", name, ErrDeclarationNotFound)
	case n > 1:
		return fmt.Errorf("%s: %w (%d matches)", name, ErrAmbiguousDeclaration, n)
	}
	return nil
}

// Patch replaces the array literal assigned to `const <name>` with the
// serialized records. The declaration must occur exactly once in the
// document's scripts; everything outside the array literal is preserved
// byte for byte.
func Patch(doc []byte, name string, records []models.StockRecord) ([]byte, error) {
	spans, err := locate(doc, name)
	if err != nil {
		return nil, err
	}
	if err := expectOne(len(spans), name); err != nil {
		return nil, err
	}
	s := spans[0]

	payload, err := Serialize(records)
	if err != nil {
		return nil, fmt.Errorf("serialize records: %w", err)
	}

	out := make([]byte, 0, len(doc)-(s.end-s.open)+len(payload))
	out = append(out, doc[:s.open]...)
	out = append(out, payload...)
	out = append(out, doc[s.end:]...)
	return out, nil
}

// PatchFile applies Patch to the file at path and writes it back in place,
// keeping its permission bits. The file is left untouched on any error.
func PatchFile(path, name string, records []models.StockRecord) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat: %w", err)
	}
	doc, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read: %w", err)
	}
	out, err := Patch(doc, name, records)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, out, info.Mode().Perm()); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}
