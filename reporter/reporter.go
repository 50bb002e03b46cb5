// Package reporter contains per-iteration progress reporting for the
// optimisation drivers. Reporters are stateless from the drivers' point of
// view: the driver calls Header once, Row once per iteration, and Footer once.
package reporter

import (
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/armadaproject/optimisation/internal/opterrors"
)

// Reporter receives per-iteration diagnostics from an optimisation driver.
type Reporter interface {
	Header()
	Row(fields ...any)
	Footer()
}

// Null is a Reporter that discards everything.
type Null struct{}

func (Null) Header()       {}
func (Null) Row(_ ...any)  {}
func (Null) Footer()       {}

// TablePrinter renders iteration diagnostics as a fixed-width text table.
// Each column has a name and a printf format; column widths are derived from
// whichever is wider.
type TablePrinter struct {
	out     io.Writer
	prefix  string
	names   []string
	formats []string
	widths  []int
}

func NewTablePrinter(out io.Writer, prefix string, names, formats []string) (*TablePrinter, error) {
	if len(names) != len(formats) {
		return nil, errors.WithStack(&opterrors.ErrInvalidArgument{
			Name:    "formats",
			Value:   len(formats),
			Message: fmt.Sprintf("must contain one format per column name; have %d names", len(names)),
		})
	}
	widths := make([]int, len(names))
	for i, name := range names {
		widths[i] = len(name)
		if w := formatWidth(formats[i]); w > widths[i] {
			widths[i] = w
		}
	}
	return &TablePrinter{
		out:     out,
		prefix:  prefix,
		names:   names,
		formats: formats,
		widths:  widths,
	}, nil
}

func MustNewTablePrinter(out io.Writer, prefix string, names, formats []string) *TablePrinter {
	tp, err := NewTablePrinter(out, prefix, names, formats)
	if err != nil {
		panic(err)
	}
	return tp
}

// formatWidth returns the rendered width of format applied to a zero value of
// the type implied by its verb.
func formatWidth(format string) int {
	if format == "" {
		return 0
	}
	var rendered string
	switch format[len(format)-1] {
	case 'd', 'b', 'o', 'x', 'X':
		rendered = fmt.Sprintf(format, 0)
	case 'e', 'E', 'f', 'F', 'g', 'G':
		rendered = fmt.Sprintf(format, 0.0)
	case 's', 'q', 'v':
		rendered = fmt.Sprintf(format, "")
	default:
		rendered = format
	}
	return len(rendered)
}

func (tp *TablePrinter) rule() string {
	var sb strings.Builder
	sb.WriteString(tp.prefix)
	for _, w := range tp.widths {
		sb.WriteString("+")
		sb.WriteString(strings.Repeat("-", w+2))
	}
	sb.WriteString("+\n")
	return sb.String()
}

func (tp *TablePrinter) line(cells []string) string {
	var sb strings.Builder
	sb.WriteString(tp.prefix)
	for i, cell := range cells {
		sb.WriteString(fmt.Sprintf("| %*s ", tp.widths[i], cell))
	}
	sb.WriteString("|\n")
	return sb.String()
}

func (tp *TablePrinter) Header() {
	_, _ = io.WriteString(tp.out, tp.rule())
	_, _ = io.WriteString(tp.out, tp.line(tp.names))
	_, _ = io.WriteString(tp.out, tp.rule())
}

// Row renders one table row. Extra fields are dropped and missing fields
// render as empty cells.
func (tp *TablePrinter) Row(fields ...any) {
	cells := make([]string, len(tp.names))
	for i := range cells {
		if i < len(fields) {
			cells[i] = fmt.Sprintf(tp.formats[i], fields[i])
		}
	}
	_, _ = io.WriteString(tp.out, tp.line(cells))
}

func (tp *TablePrinter) Footer() {
	_, _ = io.WriteString(tp.out, tp.rule())
}
