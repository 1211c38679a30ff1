package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// FileName returns the report file name for a generation time.
func FileName(generatedAt time.Time) string {
	return "tennis_report_" + generatedAt.UTC().Format("20060102_1504") + ".md"
}

// Write saves the report under dir, creating it if needed, and returns the
// file path.
func Write(dir string, r *Report) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating reports directory: %w", err)
	}

	path := filepath.Join(dir, FileName(r.GeneratedAt))
	if err := os.WriteFile(path, []byte(r.Markdown), 0o644); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}
	return path, nil
}
