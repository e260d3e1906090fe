package stats

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// textTable lays out rows in columns padded to their widest cell. Columns
// listed in numeric are right-aligned.
type textTable struct {
	headers []string
	rows    [][]string
	numeric []int
}

func (t textTable) lines() []string {
	widths := t.columnWidths()
	right := make([]bool, len(widths))
	for _, col := range t.numeric {
		if col >= 0 && col < len(right) {
			right[col] = true
		}
	}
	out := make([]string, 0, len(t.rows)+1)
	if len(t.headers) > 0 {
		out = append(out, joinCells(t.headers, widths, right))
	}
	for _, row := range t.rows {
		out = append(out, joinCells(row, widths, right))
	}
	return out
}

func (t textTable) columnWidths() []int {
	n := len(t.headers)
	for _, row := range t.rows {
		n = max(n, len(row))
	}
	widths := make([]int, n)
	measure := func(cells []string) {
		for i, cell := range cells {
			widths[i] = max(widths[i], displayWidth(cell))
		}
	}
	measure(t.headers)
	for _, row := range t.rows {
		measure(row)
	}
	return widths
}

// joinCells pads each cell to its column width. Missing cells render blank.
func joinCells(cells []string, widths []int, right []bool) string {
	parts := make([]string, len(widths))
	for i, w := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		gap := strings.Repeat(" ", max(0, w-displayWidth(cell)))
		if right[i] {
			parts[i] = gap + cell
		} else {
			parts[i] = cell + gap
		}
	}
	return strings.Join(parts, " ")
}

func displayWidth(value string) int {
	return runewidth.StringWidth(value)
}

// clipLines truncates each line to width display cells.
func clipLines(lines []string, width int) []string {
	if width <= 0 {
		return lines
	}
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = runewidth.Truncate(line, width, "...")
	}
	return out
}
