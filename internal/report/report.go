package report

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/wolfeidau/ranger/internal/compress"
)

var (
	doneColor = color.New(color.FgGreen, color.Bold)
	warnColor = color.New(color.FgYellow)
)

// Entry is one emitted file.
type Entry struct {
	Path     string
	Contents []byte
}

type Options struct {
	// GzipSize adds a gzip size column.
	GzipSize bool
	Duration time.Duration
}

// Write renders a table of emitted files followed by a completion line.
func Write(w io.Writer, entries []Entry, opts Options) error {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Path < sorted[j].Path
	})

	header := []string{"File", "Size"}
	alignment := []int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT}
	if opts.GzipSize {
		header = append(header, "Gzip")
		alignment = append(alignment, tablewriter.ALIGN_RIGHT)
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment(alignment)

	var total, totalGzip int64
	for _, entry := range sorted {
		size := int64(len(entry.Contents))
		total += size
		row := []string{entry.Path, FormatSize(size)}
		if opts.GzipSize {
			gz, err := compress.GzipSize(entry.Contents)
			if err != nil {
				return fmt.Errorf("failed to measure %s: %w", entry.Path, err)
			}
			totalGzip += gz
			row = append(row, FormatSize(gz))
		}
		table.Append(row)
	}

	footer := []string{fmt.Sprintf("%d files", len(sorted)), FormatSize(total)}
	if opts.GzipSize {
		footer = append(footer, FormatSize(totalGzip))
	}
	table.SetFooter(footer)
	table.Render()

	if len(sorted) == 0 {
		_, err := warnColor.Fprintln(w, "no files emitted")
		return err
	}

	_, err := doneColor.Fprintf(w, "built in %s\n", opts.Duration.Round(time.Millisecond))
	return err
}

// FormatSize renders a byte count as B, kB or MB.
func FormatSize(n int64) string {
	switch {
	case n < 1024:
		return fmt.Sprintf("%d B", n)
	case n < 1024*1024:
		return fmt.Sprintf("%.2f kB", float64(n)/1024)
	default:
		return fmt.Sprintf("%.2f MB", float64(n)/(1024*1024))
	}
}
