package core

import "math"

// CategoryTotal is the summed amount of every transaction in one category.
type CategoryTotal struct {
	Category string
	Total    int64
}

// Chart captions shared by every renderer.
const (
	ChartTitle  = "Transaction Breakdown"
	ChartXLabel = "Categories"
	ChartYLabel = "Amount"
)

// ChartSeries is what a chart renderer needs to draw one bar per category.
type ChartSeries struct {
	Title  string
	XLabel string
	YLabel string
	Bars   []CategoryTotal
}

// Aggregate groups transactions by category in first-seen order and sums
// their amounts. It returns ErrNoData for an empty input and ErrTotalOverflow
// when the amounts add up past the largest amount.
func Aggregate(txs []Transaction) ([]CategoryTotal, error) {
	if len(txs) == 0 {
		return nil, ErrNoData
	}
	index := make(map[string]int)
	out := make([]CategoryTotal, 0)
	var grand int64
	for _, t := range txs {
		var ok bool
		// Every category total is bounded by the grand total.
		if grand, ok = AddAmounts(grand, t.Amount); !ok {
			return nil, ErrTotalOverflow
		}
		i, ok := index[t.Category]
		if !ok {
			i = len(out)
			index[t.Category] = i
			out = append(out, CategoryTotal{Category: t.Category})
		}
		out[i].Total += t.Amount
	}
	return out, nil
}

// NewChartSeries wraps aggregated totals with the standard captions.
func NewChartSeries(bars []CategoryTotal) ChartSeries {
	return ChartSeries{
		Title:  ChartTitle,
		XLabel: ChartXLabel,
		YLabel: ChartYLabel,
		Bars:   bars,
	}
}

// Max returns the largest bar, used by renderers to scale bar lengths.
func (s ChartSeries) Max() CategoryTotal {
	var max CategoryTotal
	for _, b := range s.Bars {
		if b.Total > max.Total {
			max = b
		}
	}
	return max
}

// Total sums every bar, saturating at the largest amount.
func (s ChartSeries) Total() int64 {
	var sum int64
	for _, b := range s.Bars {
		next, ok := AddAmounts(sum, b.Total)
		if !ok {
			return math.MaxInt64
		}
		sum = next
	}
	return sum
}
