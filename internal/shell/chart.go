package shell

import (
	"fmt"
	"io"
	"math"
	"strings"
	"unicode/utf8"

	"expns/internal/core"
)

// DefaultBarWidth is the length in cells of the largest bar.
const DefaultBarWidth = 40

const barCell = "█"

// RenderChart draws series as horizontal bars, largest bar width cells long.
func RenderChart(w io.Writer, series core.ChartSeries, width int) error {
	if len(series.Bars) == 0 {
		return core.ErrNoData
	}
	if width < 1 {
		width = DefaultBarWidth
	}

	labelWidth := utf8.RuneCountInString(series.XLabel)
	for _, b := range series.Bars {
		if n := utf8.RuneCountInString(b.Category); n > labelWidth {
			labelWidth = n
		}
	}
	peak := series.Max().Total

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n", series.Title)
	fmt.Fprintf(&sb, "%s  %s\n", pad(series.XLabel, labelWidth), series.YLabel)
	for _, b := range series.Bars {
		fmt.Fprintf(&sb, "%s  %s %s\n",
			pad(b.Category, labelWidth),
			strings.Repeat(barCell, barLength(b.Total, peak, width)),
			core.FormatAmount(b.Total))
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// barLength scales total to width cells, rounding, with at least one cell
// for any non-zero total.
func barLength(total, peak int64, width int) int {
	if total <= 0 || peak <= 0 {
		return 0
	}
	n := int(math.Round(float64(total) / float64(peak) * float64(width)))
	if n < 1 {
		n = 1
	}
	return n
}

func pad(s string, width int) string {
	if n := utf8.RuneCountInString(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}
