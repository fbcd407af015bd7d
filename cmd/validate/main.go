// Command validate checks an incident workbook before it is served: the
// header carries every column the dashboard reads, numeric columns parse,
// coordinates fall in range, and the default filter keeps every row.
//
// Usage:
//
//	go run ./cmd/validate -file datapolice.xlsx
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strings"

	"github.com/couchcryptid/sf-danger-zones/internal/adapter/xlsx"
	"github.com/couchcryptid/sf-danger-zones/internal/dataset"
	"github.com/couchcryptid/sf-danger-zones/internal/domain"
	"github.com/couchcryptid/sf-danger-zones/internal/pipeline"
)

// maxErrorsPerPhase caps the detail printed for one phase.
const maxErrorsPerPhase = 50

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	file := flag.String("file", "datapolice.xlsx", "path to the incident workbook")
	flag.Parse()

	if *file == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*file, os.Stdout); code != 0 {
		os.Exit(code)
	}
}

func run(path string, out io.Writer) int {
	fmt.Fprintln(out, "=== Incident Workbook Validation ===")
	fmt.Fprintln(out)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	table, err := xlsx.NewFileLoader(path, logger).Load(context.Background())
	if err != nil {
		fmt.Fprintf(out, "FATAL: %v\n", err)
		return 1
	}

	schema := validateSchema(table)
	phases := []*phase{schema}
	// Value checks need the columns to exist.
	if schema.passed() {
		phases = append(phases,
			validateNumbers(table),
			validateCoordinates(table),
			validateFilters(table),
		)
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(out, "  %-32s %s\n", p.name, status)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Rows: %d, columns: %d\n", table.Len(), len(table.Columns()))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(out, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			if i == maxErrorsPerPhase {
				fmt.Fprintf(out, "  ... %d more\n", len(p.errors)-i)
				break
			}
			fmt.Fprintf(out, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(out, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(out, "\nValidation FAILED.")
	return 1
}

// ── Phases ──

func validateSchema(t *dataset.Table) *phase {
	p := &phase{name: "Schema"}
	for _, name := range t.Columns() {
		if strings.Contains(name, " ") {
			p.errorf("column %q contains a space after normalization", name)
		}
	}
	for _, name := range domain.RequiredColumns {
		if !t.HasColumn(name) {
			p.errorf("missing column %s", name)
		}
	}
	return p
}

// validateNumbers reports cells that are present but do not parse.
func validateNumbers(t *dataset.Table) *phase {
	p := &phase{name: "Numeric columns"}
	columns := append([]string{domain.ColYear}, domain.NumericColumns...)
	for _, name := range columns {
		raw, err := t.Strings(name)
		if err != nil {
			p.errorf("%v", err)
			continue
		}
		vals, err := t.Floats(name)
		if err != nil {
			p.errorf("%v", err)
			continue
		}
		for i := range raw {
			if raw[i] != "" && math.IsNaN(vals[i]) {
				p.errorf("row %d: %s value %q is not a number", i+2, name, raw[i])
			}
		}
	}
	return p
}

func validateCoordinates(t *dataset.Table) *phase {
	p := &phase{name: "Coordinates"}
	checks := []struct {
		column   string
		min, max float64
	}{
		{domain.ColLatitude, -90, 90},
		{domain.ColLongitude, -180, 180},
	}
	for _, c := range checks {
		vals, err := t.Floats(c.column)
		if err != nil {
			p.errorf("%v", err)
			continue
		}
		for i, v := range vals {
			if math.IsNaN(v) {
				continue
			}
			if v < c.min || v > c.max {
				p.errorf("row %d: %s %.6f outside [%.0f, %.0f]", i+2, c.column, v, c.min, c.max)
			}
		}
	}
	return p
}

// validateFilters runs the default selection through the query and
// aggregate passes; it must keep every row.
func validateFilters(t *dataset.Table) *phase {
	p := &phase{name: "Default filter"}
	opts, err := pipeline.Options(t)
	if err != nil {
		p.errorf("options: %v", err)
		return p
	}
	view, err := pipeline.Apply(t.All(), domain.DefaultSelection(opts))
	if err != nil {
		p.errorf("apply: %v", err)
		return p
	}
	if view.Len() != t.Len() {
		p.errorf("default selection kept %d of %d rows", view.Len(), t.Len())
	}
	if _, err := pipeline.Summarize(view); err != nil {
		p.errorf("summarize: %v", err)
	}
	return p
}
