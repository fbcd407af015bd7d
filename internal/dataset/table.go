// Package dataset holds the in-memory incident table and read-only views over it.
package dataset

import (
	"errors"
	"fmt"
	"slices"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/couchcryptid/sf-danger-zones/internal/domain"
)

var (
	// ErrMissingColumn is returned when a column the caller needs is absent.
	ErrMissingColumn = errors.New("missing column")

	// ErrNoHeader is returned when a table is built without a header row.
	ErrNoHeader = errors.New("no header row")
)

// Table is an immutable incident table. The raw cell strings are kept as
// read; typed columns are parsed once at construction.
type Table struct {
	df      dataframe.DataFrame
	columns []string
	index   map[string]int
	rows    [][]string
	numbers map[string][]float64
}

// New builds a table from a header row and data records. Header labels are
// normalized with domain.NormalizeColumnName and short records are padded
// with empty cells.
func New(header []string, records [][]string) (*Table, error) {
	if len(header) == 0 {
		return nil, ErrNoHeader
	}

	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = domain.NormalizeColumnName(h)
	}

	rows := make([][]string, len(records))
	for i, rec := range records {
		row := make([]string, len(columns))
		copy(row, rec)
		rows[i] = row
	}

	t := &Table{
		rows:    rows,
		numbers: make(map[string][]float64),
	}

	if len(rows) == 0 {
		t.setColumns(columns)
		for _, name := range columns {
			if isNumeric(name) || name == domain.ColYear {
				t.numbers[name] = []float64{}
			}
		}
		return t, nil
	}

	all := make([][]string, 0, len(rows)+1)
	all = append(all, columns)
	all = append(all, rows...)

	df := dataframe.LoadRecords(all,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.WithTypes(columnTypes(columns)),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("build table: %w", df.Err)
	}

	t.df = df
	// gota renames empty and duplicate labels; its names are authoritative.
	t.setColumns(df.Names())

	for _, name := range t.columns {
		col := df.Col(name)
		if col.Err != nil {
			return nil, fmt.Errorf("read column %q: %w", name, col.Err)
		}
		switch col.Type() {
		case series.Float, series.Int:
			t.numbers[name] = col.Float()
		}
	}

	return t, nil
}

func (t *Table) setColumns(columns []string) {
	t.columns = columns
	t.index = make(map[string]int, len(columns))
	for i, name := range columns {
		t.index[name] = i
	}
}

func columnTypes(columns []string) map[string]series.Type {
	types := make(map[string]series.Type)
	for _, name := range columns {
		switch {
		case name == domain.ColYear:
			types[name] = series.Int
		case isNumeric(name):
			types[name] = series.Float
		}
	}
	return types
}

func isNumeric(name string) bool {
	return slices.Contains(domain.NumericColumns, name)
}

// Columns returns the normalized column names in sheet order.
func (t *Table) Columns() []string {
	return slices.Clone(t.columns)
}

// HasColumn reports whether the table has the named column.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Rows returns the raw cell grid. Callers must not modify it.
func (t *Table) Rows() [][]string {
	return t.rows
}

// Strings returns the raw cell values of a column.
func (t *Table) Strings(name string) ([]string, error) {
	i, ok := t.index[name]
	if !ok {
		return nil, missing(name)
	}
	out := make([]string, len(t.rows))
	for r, row := range t.rows {
		out[r] = row[i]
	}
	return out, nil
}

// Floats returns a numeric column; unparseable or empty cells are NaN.
func (t *Table) Floats(name string) ([]float64, error) {
	if !t.HasColumn(name) {
		return nil, missing(name)
	}
	vals, ok := t.numbers[name]
	if !ok {
		return nil, fmt.Errorf("column %q is not numeric", name)
	}
	return vals, nil
}

// Distinct returns the distinct raw values of a column in first-appearance order.
func (t *Table) Distinct(name string) ([]string, error) {
	vals, err := t.Strings(name)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(vals))
	out := make([]string, 0)
	for _, v := range vals {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out, nil
}

// In returns a row mask that is true where the column's value is one of
// values. Values are compared in the column's type, so "2016" matches an
// integer year of 2016, and also as raw text.
func (t *Table) In(name string, values []string) ([]bool, error) {
	if !t.HasColumn(name) {
		return nil, missing(name)
	}
	mask := make([]bool, t.Len())
	if t.Len() == 0 || len(values) == 0 {
		return mask, nil
	}

	cmp := t.df.Col(name).Compare(series.In, values)
	if cmp.Err != nil {
		return nil, fmt.Errorf("compare column %q: %w", name, cmp.Err)
	}
	bools, err := cmp.Bool()
	if err != nil {
		return nil, fmt.Errorf("compare column %q: %w", name, err)
	}
	copy(mask, bools)

	// Cells the column type could not parse still match their raw text, so
	// a blank or malformed year stays selectable.
	want := make(map[string]struct{}, len(values))
	for _, v := range values {
		want[v] = struct{}{}
	}
	col := t.index[name]
	for i, row := range t.rows {
		if mask[i] {
			continue
		}
		if _, ok := want[row[col]]; ok {
			mask[i] = true
		}
	}
	return mask, nil
}

func missing(name string) error {
	return fmt.Errorf("%w: %s", ErrMissingColumn, name)
}
