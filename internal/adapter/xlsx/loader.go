// Package xlsx reads incident workbooks into dataset tables.
package xlsx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/couchcryptid/sf-danger-zones/internal/dataset"
)

var (
	// ErrNoSheets is returned for a workbook without worksheets.
	ErrNoSheets = errors.New("workbook has no sheets")

	// ErrEmptySheet is returned when the first sheet has no header row.
	ErrEmptySheet = errors.New("first sheet is empty")
)

// Read parses the first sheet of a workbook. The first row is the header.
// Cells are read as stored, ignoring number formats.
func Read(r io.Reader) (*dataset.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoSheets
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("sheet %q: %w", sheets[0], ErrEmptySheet)
	}

	table, err := dataset.New(rows[0], rows[1:])
	if err != nil {
		return nil, fmt.Errorf("sheet %q: %w", sheets[0], err)
	}
	return table, nil
}

// FileLoader loads a table from a workbook on disk.
type FileLoader struct {
	path   string
	logger *slog.Logger
}

// NewFileLoader creates a loader for the workbook at path.
func NewFileLoader(path string, logger *slog.Logger) *FileLoader {
	return &FileLoader{path: path, logger: logger}
}

// Path returns the workbook path.
func (l *FileLoader) Path() string {
	return l.path
}

// Load reads the whole file as bytes and parses it.
func (l *FileLoader) Load(_ context.Context) (*dataset.Table, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("read workbook: %w", err)
	}

	table, err := Read(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", l.path, err)
	}

	l.logger.Info("workbook loaded",
		"path", l.path,
		"bytes", len(data),
		"rows", table.Len(),
		"columns", len(table.Columns()),
	)
	return table, nil
}

// ModTime returns the workbook's modification time.
func (l *FileLoader) ModTime() (time.Time, error) {
	info, err := os.Stat(l.path)
	if err != nil {
		return time.Time{}, fmt.Errorf("stat workbook: %w", err)
	}
	return info.ModTime(), nil
}
