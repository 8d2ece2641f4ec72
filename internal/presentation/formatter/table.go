package formatter

import (
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/timegrain/timegrain/internal/core/reconcile"
)

// TableFormatter prints the timeline as a box-drawn table sized to the
// terminal. Title and URL are truncated first when space runs out.
type TableFormatter struct {
	headers []string
	// maxWidth overrides terminal detection when > 0 (used by tests).
	maxWidth int
}

func NewTableFormatter() *TableFormatter {
	return &TableFormatter{
		headers: []string{"Start", "End", "Duration", "App", "Title", "URL", "Browser"},
	}
}

func (f *TableFormatter) Format(result *reconcile.Result) error {
	rows := rowsFromResult(result)
	widths := f.calculateColumnWidths(rows)

	f.printBorder(widths, "top")
	f.printRow(f.headers, widths)
	f.printBorder(widths, "middle")

	for _, row := range rows {
		f.printRow(f.cells(row, widths), widths)
	}

	f.printBorder(widths, "bottom")

	if len(result.Warnings) > 0 {
		fmt.Printf("%d warning(s):\n", len(result.Warnings))
		for _, w := range result.Warnings {
			fmt.Printf("  - %s\n", w)
		}
	}
	return nil
}

func (f *TableFormatter) cells(row Row, widths []int) []string {
	values := []string{row.Start, row.End, row.Duration, row.App, row.Title, row.URL, row.Browser}
	for i, v := range values {
		values[i] = runewidth.Truncate(v, widths[i], "…")
	}
	return values
}

// calculateColumnWidths sizes each column to its content, then shrinks the
// Title and URL columns until the table fits the terminal.
func (f *TableFormatter) calculateColumnWidths(rows []Row) []int {
	widths := make([]int, len(f.headers))
	for i, header := range f.headers {
		widths[i] = runewidth.StringWidth(header)
	}

	for _, row := range rows {
		values := []string{row.Start, row.End, row.Duration, row.App, row.Title, row.URL, row.Browser}
		for i, value := range values {
			if w := runewidth.StringWidth(value); w > widths[i] {
				widths[i] = w
			}
		}
	}

	// Per column: separators and padding cost 3 chars, plus the closing edge.
	limit := f.terminalWidth()
	total := func() int {
		t := 1
		for _, w := range widths {
			t += w + 3
		}
		return t
	}

	// Shrink URL first, then Title, down to a readable floor.
	for _, col := range []int{5, 4} {
		for total() > limit && widths[col] > 12 {
			widths[col]--
		}
	}

	return widths
}

func (f *TableFormatter) terminalWidth() int {
	if f.maxWidth > 0 {
		return f.maxWidth
	}
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 40 {
		return w
	}
	return 160
}

// printBorder prints table borders (top, middle, bottom)
func (f *TableFormatter) printBorder(widths []int, borderType string) {
	var left, middle, right, separator string

	switch borderType {
	case "top":
		left, middle, right, separator = "┌", "┬", "┐", "─"
	case "middle":
		left, middle, right, separator = "├", "┼", "┤", "─"
	case "bottom":
		left, middle, right, separator = "└", "┴", "┘", "─"
	}

	fmt.Print(left)
	for i, width := range widths {
		fmt.Print(strings.Repeat(separator, width+2))
		if i < len(widths)-1 {
			fmt.Print(middle)
		}
	}
	fmt.Println(right)
}

// printRow prints one row, padding by display width so wide runes align.
func (f *TableFormatter) printRow(values []string, widths []int) {
	fmt.Print("│")
	for i, value := range values {
		pad := widths[i] - runewidth.StringWidth(value)
		if pad < 0 {
			pad = 0
		}
		fmt.Printf(" %s%s │", value, strings.Repeat(" ", pad))
	}
	fmt.Println()
}
