// Package render draws finished alignments for terminals: a three-row view of
// reference and query, one block per template switch and a statistics table.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/Sumatoshi-tech/tsalign/pkg/alignment"
	"github.com/Sumatoshi-tech/tsalign/pkg/alphabet"
)

const (
	defaultWidth   = 80
	maxLabelLength = 16
)

// Options configures a Renderer.
type Options struct {
	// Color enables ANSI colors regardless of the terminal.
	Color bool
	// Width wraps rows after this many columns. Zero uses 80, negative disables wrapping.
	Width int
	// Alphabet complements secondary characters. Defaults to DNA.
	Alphabet *alphabet.Alphabet
}

// Renderer writes alignments as text.
type Renderer struct {
	opts    Options
	palette map[class]*color.Color
}

// New creates a Renderer.
func New(opts Options) *Renderer {
	if opts.Width == 0 {
		opts.Width = defaultWidth
	}

	if opts.Alphabet == nil {
		opts.Alphabet = alphabet.DNA
	}

	palette := map[class]*color.Color{
		classMatch:        color.New(color.FgGreen),
		classSubstitution: color.New(color.FgRed),
		classGap:          color.New(color.FgYellow),
		classFlank:        color.New(color.FgBlue),
		classSwitch:       color.New(color.FgCyan, color.Bold),
	}

	for _, c := range palette {
		if opts.Color {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	return &Renderer{opts: opts, palette: palette}
}

// Render writes the header, the three-row view and the template switch
// blocks of a against its sequences.
func (r *Renderer) Render(w io.Writer, a *alignment.Alignment, reference, query []byte) error {
	l, err := lay(a, reference, query, r.opts.Alphabet)
	if err != nil {
		return err
	}

	var sb strings.Builder

	fmt.Fprintf(&sb, "%s vs %s: cost %s (%.4f per base), %d template switches\n\n",
		a.ReferenceName, a.QueryName, a.TotalCost, a.CostPerBase(), len(l.switches))

	r.rows(&sb, label(a.ReferenceName), label(a.QueryName), l.columns)

	for i, block := range l.switches {
		primaryName, secondaryName := a.ReferenceName, a.QueryName
		if block.Secondary == alignment.SecondaryReference {
			primaryName, secondaryName = secondaryName, primaryName
		}

		fmt.Fprintf(&sb, "\ntemplate switch %d: secondary %s, entered at reference %d query %d, first offset %d, anti-primary gap %d\n",
			i+1, block.Secondary, block.Reference, block.Query, block.FirstOffset, block.Gap)
		r.rows(&sb, label(primaryName), label("rc "+secondaryName), block.columns)
	}

	_, err = io.WriteString(w, sb.String())
	if err != nil {
		return fmt.Errorf("write alignment: %w", err)
	}

	return nil
}

func label(name string) string {
	if len(name) > maxLabelLength {
		return name[:maxLabelLength]
	}

	return name
}

// rows writes columns as wrapped top, mark and bottom lines.
func (r *Renderer) rows(sb *strings.Builder, top, bottom string, columns []column) {
	width := max(len(top), len(bottom))

	chunk := r.opts.Width
	if chunk < 0 || chunk > len(columns) {
		chunk = len(columns)
	}

	for start := 0; start < len(columns); start += chunk {
		part := columns[start:min(start+chunk, len(columns))]

		fmt.Fprintf(sb, "%-*s %s\n", width, top, r.paint(part, func(c column) byte { return c.top }))
		fmt.Fprintf(sb, "%-*s %s\n", width, "", marks(part))
		fmt.Fprintf(sb, "%-*s %s\n", width, bottom, r.paint(part, func(c column) byte { return c.bottom }))
	}
}

// paint colors runs of equally classed columns.
func (r *Renderer) paint(columns []column, pick func(column) byte) string {
	var sb strings.Builder

	for i := 0; i < len(columns); {
		j := i
		for j < len(columns) && columns[j].class == columns[i].class {
			j++
		}

		run := make([]byte, 0, j-i)
		for _, c := range columns[i:j] {
			run = append(run, pick(c))
		}

		sb.WriteString(r.palette[columns[i].class].Sprint(string(run)))

		i = j
	}

	return sb.String()
}

func marks(columns []column) string {
	out := make([]byte, len(columns))
	for i, c := range columns {
		out[i] = c.mark
	}

	return string(out)
}

// StatisticsTable renders the search statistics of a.
func StatisticsTable(a *alignment.Alignment) string {
	stats := a.Statistics

	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.AppendHeader(table.Row{"Statistic", "Value"})
	tbl.AppendRows([]table.Row{
		{"Reference length", humanize.Comma(int64(stats.ReferenceLength))},
		{"Query length", humanize.Comma(int64(stats.QueryLength))},
		{"Cost", a.TotalCost.String()},
		{"Cost per base", fmt.Sprintf("%.4f", a.CostPerBase())},
		{"Template switches", a.TemplateSwitches()},
		{"Opened nodes", humanize.Comma(int64(stats.OpenedNodes))},
		{"Closed nodes", humanize.Comma(int64(stats.ClosedNodes))},
		{"Suboptimal opened nodes", humanize.Comma(int64(stats.SuboptimalOpenedNodes))},
		{"Frontier peak", humanize.Comma(int64(stats.FrontierPeak))},
		{"Memory", humanize.IBytes(stats.MemoryBytes)},
		{"Chain anchors", humanize.Comma(int64(stats.ChainAnchors))},
		{"Duration", stats.Duration.String()},
	})

	return tbl.Render()
}
