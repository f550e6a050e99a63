package http

import (
	"math"
	"net/http"
	"strings"

	"expns/internal/core"
)

// TransactionCountHeader reports the ledger size after a POST /transactions.
const TransactionCountHeader = "X-Transaction-Count"

// wantsJSON reports whether the client asked for a JSON response.
func wantsJSON(r *http.Request) bool {
	return isJSONContentType(r.Header.Get("Content-Type")) ||
		strings.Contains(r.Header.Get("Accept"), "application/json")
}

// barWidth scales total against peak as a rounded percentage. Non-zero bars
// get at least 2% so they stay visible.
func barWidth(total, peak int64) int {
	if peak <= 0 || total <= 0 {
		return 0
	}
	width := int(math.Round(float64(total) / float64(peak) * 100))
	if width < 2 {
		width = 2
	}
	if width > 100 {
		width = 100
	}
	return width
}

// transactionJSON is the wire form of one ledger entry.
type transactionJSON struct {
	Seq      int    `json:"seq"`
	Title    string `json:"title"`
	Category string `json:"category"`
	Amount   int64  `json:"amount"`
}

func toTransactionJSON(seq int, t core.Transaction) transactionJSON {
	return transactionJSON{Seq: seq, Title: t.Title, Category: t.Category, Amount: t.Amount}
}

type barJSON struct {
	Category string `json:"category"`
	Total    int64  `json:"total"`
}

type chartJSON struct {
	Title  string    `json:"title"`
	XLabel string    `json:"x_label"`
	YLabel string    `json:"y_label"`
	Bars   []barJSON `json:"bars"`
}

func toChartJSON(s core.ChartSeries) chartJSON {
	out := chartJSON{Title: s.Title, XLabel: s.XLabel, YLabel: s.YLabel, Bars: make([]barJSON, 0, len(s.Bars))}
	for _, b := range s.Bars {
		out.Bars = append(out.Bars, barJSON{Category: b.Category, Total: b.Total})
	}
	return out
}
