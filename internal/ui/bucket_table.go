package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/vietdv277/s3du/internal/du"
)

// Bucket table column bounds. Bucket names are at most 63 characters.
var (
	bucketMinWidths = []int{20, 12, 14, 10}
	bucketMaxWidths = []int{63, 16, 40, 14}
)

// bucketRow is one rendered line of the bucket table
type bucketRow struct {
	name   string
	region string
	tiers  string
	size   string
	failed bool
}

// PrintBucketTable prints the sized buckets of a report in a styled box
// table, followed by a total line. Buckets are printed in report order.
func PrintBucketTable(w io.Writer, report *du.Report, unit Unit) error {
	headers := []string{"Bucket", "Region", "Storage Types", "Size"}

	rows := make([]bucketRow, 0, len(report.Results))
	for _, res := range report.Results {
		row := bucketRow{
			name:   res.Bucket.Name,
			region: formatOptional(res.Bucket.Region),
			tiers:  res.Bucket.StorageTypesString(),
			size:   FormatSize(res.Size, unit),
		}
		if !res.OK() {
			row.size = "error"
			row.failed = true
		}
		rows = append(rows, row)
	}

	widths := bucketColumnWidths(headers, rows)

	var sb strings.Builder

	// Top border
	writeBorder(&sb, widths, TopLeft, TopT, TopRight)

	// Header row
	sb.WriteString(BorderStyle.Render(Vertical))
	for i, h := range headers {
		var cell string
		if i == len(headers)-1 {
			cell = " " + padLeft(h, widths[i]) + " "
		} else {
			cell = " " + padRight(h, widths[i]) + " "
		}
		sb.WriteString(HeaderStyle.Render(cell))
		sb.WriteString(BorderStyle.Render(Vertical))
	}
	sb.WriteString("\n")

	// Header separator
	writeBorder(&sb, widths, LeftT, Cross, RightT)

	// Data rows
	for _, row := range rows {
		sb.WriteString(BorderStyle.Render(Vertical))

		// Bucket
		cell := " " + padRight(row.name, widths[0]) + " "
		sb.WriteString(NameStyle.Render(cell))
		sb.WriteString(BorderStyle.Render(Vertical))

		// Region
		cell = " " + padRight(row.region, widths[1]) + " "
		sb.WriteString(RegionStyle.Render(cell))
		sb.WriteString(BorderStyle.Render(Vertical))

		// Storage Types
		cell = " " + padRight(row.tiers, widths[2]) + " "
		sb.WriteString(TierStyle.Render(cell))
		sb.WriteString(BorderStyle.Render(Vertical))

		// Size
		cell = " " + padLeft(row.size, widths[3]) + " "
		if row.failed {
			sb.WriteString(FailedStyle.Render(cell))
		} else {
			sb.WriteString(SizeStyle.Render(cell))
		}
		sb.WriteString(BorderStyle.Render(Vertical))

		sb.WriteString("\n")
	}

	// Bottom border
	writeBorder(&sb, widths, BottomLeft, BottomT, BottomRight)

	if _, err := io.WriteString(w, sb.String()); err != nil {
		return err
	}

	_, err := fmt.Fprintln(w, summaryLine(report, unit))
	return err
}

func bucketColumnWidths(headers []string, rows []bucketRow) []int {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = max(bucketMinWidths[i], runewidth.StringWidth(h))
	}

	for _, row := range rows {
		for i, s := range []string{row.name, row.region, row.tiers, row.size} {
			widths[i] = max(widths[i], runewidth.StringWidth(s))
		}
	}

	for i := range widths {
		widths[i] = min(widths[i], bucketMaxWidths[i])
	}
	return widths
}

func writeBorder(sb *strings.Builder, widths []int, left, mid, right string) {
	sb.WriteString(BorderStyle.Render(left))
	for i, w := range widths {
		sb.WriteString(BorderStyle.Render(strings.Repeat(Horizontal, w+2)))
		if i < len(widths)-1 {
			sb.WriteString(BorderStyle.Render(mid))
		}
	}
	sb.WriteString(BorderStyle.Render(right))
	sb.WriteString("\n")
}

func summaryLine(report *du.Report, unit Unit) string {
	sized := len(report.Results) - report.Failed

	summary := fmt.Sprintf("  %d buckets, total %s", sized, TotalStyle.Render(FormatSize(report.Total, unit)))
	if report.Failed > 0 {
		summary += " (" + FailedStyle.Render(fmt.Sprintf("%d failed", report.Failed)) + ")"
	}
	if report.Backend != "" {
		summary += MutedStyle.Render(fmt.Sprintf(" via %s", report.Backend))
	}
	return summary
}

func formatOptional(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
