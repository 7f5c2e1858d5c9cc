package normalize

import (
	"errors"
	"fmt"
	"time"

	"github.com/lucamachado49/finance-pipeline/internal/models"
)

// Series renders a validated series into storage records, one per bar, in
// input order. Column names and the date rendering follow the stock_data
// schema. Any bar whose date cannot render fails the whole series with a
// FormatError; rows are never silently skipped here.
func Series(series models.ValidatedSeries) ([]models.StockRecord, error) {
	records := make([]models.StockRecord, 0, len(series.Bars))
	for _, bar := range series.Bars {
		stockDate, err := FormatDate(bar.Date)
		if err != nil {
			return nil, &models.FormatError{Ticker: series.Ticker, Reason: err.Error()}
		}
		records = append(records, models.StockRecord{
			StockDate: stockDate,
			Ticker:    series.Ticker,
			Open:      bar.Open,
			High:      bar.High,
			Low:       bar.Low,
			Close:     bar.Close,
			Volume:    bar.Volume,
		})
	}
	return records, nil
}

// FormatDate renders a trading day as YYYY-MM-DD. Years outside four
// digits cannot fit the column and are rejected rather than truncated.
func FormatDate(t time.Time) (string, error) {
	if t.IsZero() {
		return "", errors.New("zero date")
	}
	if y := t.Year(); y < 1000 || y > 9999 {
		return "", fmt.Errorf("year %d does not fit YYYY-MM-DD", y)
	}
	return t.Format(models.DateLayout), nil
}
