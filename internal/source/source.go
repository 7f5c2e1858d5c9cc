package source

import (
	"context"
	"sort"
	"time"

	"github.com/lucamachado49/finance-pipeline/internal/models"
)

// Source fetches daily OHLCV history for one ticker. Implementations
// return bars in ascending date order and report provider failures as
// DataSourceError. A successful call with no trading days in the window
// returns an empty series, not an error.
type Source interface {
	Fetch(ctx context.Context, ticker string, start, end time.Time) (models.RawSeries, error)
}

// defaultSymbolMap maps common aliases to Yahoo Finance chart symbols.
func defaultSymbolMap() map[string]string {
	return map[string]string{
		"SPX500": "^GSPC",
		"SPX":    "^GSPC",
		"SP500":  "^GSPC",
		"DJIA":   "^DJI",
		"NASDAQ": "^IXIC",
	}
}

func mapSymbol(symbols map[string]string, ticker string) string {
	if mapped, ok := symbols[ticker]; ok {
		return mapped
	}
	return ticker
}

// dateOf truncates a bar timestamp to its UTC calendar day.
func dateOf(ts int64) time.Time {
	t := time.Unix(ts, 0).UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// sortBars orders bars ascending by date and collapses duplicate days,
// keeping the later bar. Providers occasionally append a same-day partial
// bar after the settled one.
func sortBars(bars []models.RawBar) []models.RawBar {
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })

	out := bars[:0]
	for _, bar := range bars {
		if n := len(out); n > 0 && out[n-1].Date.Equal(bar.Date) {
			out[n-1] = bar
			continue
		}
		out = append(out, bar)
	}
	return out
}
