package cli

import (
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"

	"github.com/sdmx-tools/sdmx-cli/internal/writers/table"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// renderListing renders a structural-artefact listing as a bordered
// terminal table.
func renderListing(l *table.Listing) string {
	var b strings.Builder
	if l.Title != "" {
		b.WriteString(titleStyle.Render(l.Title))
		b.WriteString("\n")
	}
	t := newTerminalTable(l.Header)
	for _, row := range l.Rows {
		t.Row(row...)
	}
	b.WriteString(t.Render())
	return b.String()
}

// renderTable renders a dataset projection: the row level first, one
// column per series, empty cells for gaps.
func renderTable(t *table.Table) string {
	if t.IsEmpty() {
		return "no observations"
	}
	header := make([]string, 0, len(t.Columns)+1)
	header = append(header, t.RowLevel)
	for _, c := range t.Columns {
		header = append(header, c.Label())
	}
	out := newTerminalTable(header)
	for i, row := range t.Rows {
		cells := make([]string, 0, len(t.Columns)+1)
		cells = append(cells, row)
		for j := range t.Columns {
			cells = append(cells, formatValue(t.Value(i, j)))
		}
		out.Row(cells...)
	}
	return out.Render()
}

func newTerminalTable(header []string) *lgtable.Table {
	return lgtable.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == lgtable.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(header...)
}

func formatValue(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
