package results

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"dev/bravebird/login-e2e/pkg/models"
)

// Header is the first row of the CSV log
var Header = []string{"Timestamp", "Test Case", "Username", "Password", "Result", "Error Message", "Screenshot"}

// CSVLog appends results to a CSV file. The file is opened and closed for
// every write, so a killed process loses at most the row in progress.
type CSVLog struct {
	Path string
}

var _ Sink = (*CSVLog)(nil)

// NewCSVLog creates a CSV log at path
func NewCSVLog(path string) *CSVLog {
	return &CSVLog{Path: path}
}

// Prepare writes the header if the file does not exist yet. An existing
// file is left untouched.
func (l *CSVLog) Prepare(_ context.Context) error {
	if err := os.MkdirAll(filepath.Dir(l.Path), 0755); err != nil {
		return fmt.Errorf("failed to create results dir: %w", err)
	}

	f, err := os.OpenFile(l.Path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if errors.Is(err, fs.ErrExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", l.Path, err)
	}

	if err := writeRow(f, Header); err != nil {
		f.Close()
		return fmt.Errorf("failed to write header: %w", err)
	}
	return f.Close()
}

// Append writes one result row
func (l *CSVLog) Append(ctx context.Context, r models.Result) error {
	if err := l.Prepare(ctx); err != nil {
		return err
	}

	f, err := os.OpenFile(l.Path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0644)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", l.Path, err)
	}

	if err := writeRow(f, r.Row()); err != nil {
		f.Close()
		return fmt.Errorf("failed to append result: %w", err)
	}
	return f.Close()
}

func (l *CSVLog) Close() error {
	return nil
}

// ReadAll returns every row of a CSV log, header included
func ReadAll(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return rows, nil
}

func writeRow(f *os.File, row []string) error {
	w := csv.NewWriter(f)
	if err := w.Write(row); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}
