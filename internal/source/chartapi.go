package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/lucamachado49/finance-pipeline/internal/models"
)

// DefaultChartBaseURL is the public Yahoo Finance chart endpoint.
const DefaultChartBaseURL = "https://query1.finance.yahoo.com"

// ChartClient fetches daily history straight from the Yahoo Finance chart
// API. It needs no API key and accepts a custom base URL and HTTP client.
type ChartClient struct {
	baseURL string
	client  *http.Client
	symbols map[string]string
}

// NewChartClient creates a chart API client. An empty baseURL uses the
// public endpoint; a nil client gets a 30s timeout.
func NewChartClient(baseURL string, client *http.Client) *ChartClient {
	if baseURL == "" {
		baseURL = DefaultChartBaseURL
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &ChartClient{
		baseURL: baseURL,
		client:  client,
		symbols: defaultSymbolMap(),
	}
}

// chartResponse is the response structure of the chart API. Price and
// volume entries are null for days the exchange reported nothing.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*int64   `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// Fetch returns the daily bars for ticker between start and end inclusive.
func (c *ChartClient) Fetch(ctx context.Context, ticker string, start, end time.Time) (models.RawSeries, error) {
	bars, err := c.fetchChart(ctx, ticker, start, end)
	if err != nil {
		return models.RawSeries{}, &models.DataSourceError{Ticker: ticker, Err: err}
	}
	return models.RawSeries{Ticker: ticker, Bars: bars}, nil
}

func (c *ChartClient) fetchChart(ctx context.Context, ticker string, start, end time.Time) ([]models.RawBar, error) {
	query := url.Values{}
	query.Set("interval", "1d")
	query.Set("period1", strconv.FormatInt(start.Unix(), 10))
	query.Set("period2", strconv.FormatInt(end.Unix(), 10))
	u := fmt.Sprintf("%s/v8/finance/chart/%s?%s",
		c.baseURL, url.PathEscape(mapSymbol(c.symbols, ticker)), query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build chart request")
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "chart request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read chart response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("chart API status %d: %s", resp.StatusCode, string(body))
	}

	var chart chartResponse
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, errors.Wrap(err, "decode chart response")
	}
	if chart.Chart.Error != nil {
		return nil, errors.Errorf("chart API error %s: %s",
			chart.Chart.Error.Code, chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, errors.New("empty chart result")
	}

	result := chart.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	bars := make([]models.RawBar, 0, len(result.Timestamp))

	// Null entries pass through as nil fields; validation owns dropping
	// and reporting them. Quote arrays can run short of the timestamps.
	for i, ts := range result.Timestamp {
		bars = append(bars, models.RawBar{
			Date:   dateOf(ts),
			Open:   floatAt(quote.Open, i),
			High:   floatAt(quote.High, i),
			Low:    floatAt(quote.Low, i),
			Close:  floatAt(quote.Close, i),
			Volume: intAt(quote.Volume, i),
		})
	}

	return sortBars(bars), nil
}

func floatAt(values []*float64, i int) *decimal.Decimal {
	if i >= len(values) || values[i] == nil {
		return nil
	}
	d := decimal.NewFromFloat(*values[i])
	return &d
}

func intAt(values []*int64, i int) *int64 {
	if i >= len(values) || values[i] == nil {
		return nil
	}
	v := *values[i]
	return &v
}
