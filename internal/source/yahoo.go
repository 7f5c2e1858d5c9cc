package source

import (
	"context"
	"time"

	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/lucamachado49/finance-pipeline/internal/models"
)

// HistoryClient fetches daily history from Yahoo Finance.
type HistoryClient struct {
	// No API key needed for Yahoo Finance
	timeout time.Duration
	symbols map[string]string
}

// NewHistoryClient creates a new Yahoo Finance history client.
func NewHistoryClient(timeout time.Duration) *HistoryClient {
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &HistoryClient{
		timeout: timeout,
		symbols: defaultSymbolMap(),
	}
}

// Fetch returns the daily bars for ticker between start and end inclusive.
func (c *HistoryClient) Fetch(ctx context.Context, ticker string, start, end time.Time) (models.RawSeries, error) {
	// Add context timeout
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	// The chart library does not take a context; run it aside and race
	// the deadline.
	resultCh := make(chan []models.RawBar, 1)
	errCh := make(chan error, 1)

	go func() {
		bars, err := c.history(ticker, start, end)
		if err != nil {
			errCh <- err
			return
		}
		resultCh <- bars
	}()

	select {
	case <-ctx.Done():
		return models.RawSeries{}, &models.DataSourceError{
			Ticker: ticker,
			Err:    errors.Wrap(ctx.Err(), "request to Yahoo Finance timed out"),
		}
	case err := <-errCh:
		return models.RawSeries{}, &models.DataSourceError{Ticker: ticker, Err: err}
	case bars := <-resultCh:
		return models.RawSeries{Ticker: ticker, Bars: bars}, nil
	}
}

func (c *HistoryClient) history(ticker string, start, end time.Time) ([]models.RawBar, error) {
	params := &chart.Params{
		Params:   finance.Params{Symbol: mapSymbol(c.symbols, ticker)},
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Interval: datetime.OneDay,
	}

	iter := chart.Get(params)
	var bars []models.RawBar
	for iter.Next() {
		bars = append(bars, chartBar(iter.Bar()))
	}
	if err := iter.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to get chart from Yahoo Finance")
	}

	return sortBars(bars), nil
}

// chartBar maps a provider bar to a raw bar. The chart library decodes
// absent values to zero decimals; an all-zero price row is a placeholder
// (holiday), surfaced as nil fields so validation drops and reports it.
func chartBar(b *finance.ChartBar) models.RawBar {
	bar := models.RawBar{Date: dateOf(int64(b.Timestamp))}
	if b.Open.IsZero() && b.High.IsZero() && b.Low.IsZero() && b.Close.IsZero() {
		return bar
	}

	volume := int64(b.Volume)
	bar.Open = decimalPtr(b.Open)
	bar.High = decimalPtr(b.High)
	bar.Low = decimalPtr(b.Low)
	bar.Close = decimalPtr(b.Close)
	bar.Volume = &volume
	return bar
}

func decimalPtr(d decimal.Decimal) *decimal.Decimal {
	return &d
}
