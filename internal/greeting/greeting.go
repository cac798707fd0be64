package greeting

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	// Message is the fixed greeting body.
	Message = "안녕하세요"

	fileLayout = "200601021504" // YYYYMMDDHHMM
)

// FileName returns the greeting file name for t, e.g. "hello_202509111805.txt".
func FileName(t time.Time) string {
	return fmt.Sprintf("hello_%s.txt", t.Format(fileLayout))
}

// Write creates (or truncates) the greeting file for now inside dir and
// returns its path.
func Write(dir string, now time.Time) (string, error) {
	path := filepath.Join(dir, FileName(now))
	if err := os.WriteFile(path, []byte(Message), 0o644); err != nil {
		return "", fmt.Errorf("write greeting: %w", err)
	}
	return path, nil
}
