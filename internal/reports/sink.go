// Package reports writes history reports to local files before they are sent.
package reports

import (
	"fmt"
	"os"
	"path/filepath"
)

type Sink struct {
	dir string
}

func NewSink(dir string) *Sink {
	return &Sink{dir: dir}
}

// Append adds text to dir/name, creating the directory if needed, and returns the path.
func (s *Sink) Append(name, text string) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("reports dir: %w", err)
	}

	path := filepath.Join(s.dir, filepath.Base(name))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("open report: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(text); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}
