package report

import (
	"fmt"
	"io"
	"strings"

	"schemawatch/internal/model"
)

// Printer renders check results as human-readable lines, one per table,
// in the order the tables were probed.
type Printer struct {
	w io.Writer
}

// NewPrinter creates a Printer writing to w.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// PrintHeader writes the opening line for a check pass.
func (p *Printer) PrintHeader(schema string, tables []string) {
	fmt.Fprintf(p.w, "checking %d tables in schema %q\n", len(tables), schema)
}

// PrintResult writes one table's outcome.
func (p *Printer) PrintResult(r model.TableResult) {
	switch r.Status {
	case model.TableStatusOK:
		fmt.Fprintf(p.w, "%s: ok (columns: %s)\n", r.Table, strings.Join(r.Columns, ", "))
	case model.TableStatusEmpty:
		fmt.Fprintf(p.w, "%s: exists but empty (columns: %s)\n", r.Table, strings.Join(r.Columns, ", "))
	default:
		fmt.Fprintf(p.w, "%s: query failed: %s\n", r.Table, r.Error)
	}
}

// PrintSummary writes the closing tally for a check pass.
func (p *Printer) PrintSummary(results []model.TableResult) {
	var ok, empty, failed int
	for _, r := range results {
		switch r.Status {
		case model.TableStatusOK:
			ok++
		case model.TableStatusEmpty:
			empty++
		default:
			failed++
		}
	}
	fmt.Fprintf(p.w, "checked %d tables: %d ok, %d empty, %d failed\n", len(results), ok, empty, failed)
}
