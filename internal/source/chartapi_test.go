package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/lucamachado49/finance-pipeline/internal/models"
)

const chartFixture = `{
	"chart": {
		"result": [{
			"timestamp": [1709562600, 1709649000, 1709735400],
			"indicators": {
				"quote": [{
					"open":   [171.0, 172.1, null],
					"high":   [174.3, 173.9, null],
					"low":    [170.05, 171.2, null],
					"close":  [173.1, 172.5, null],
					"volume": [58000000, 41000000, null]
				}]
			}
		}],
		"error": null
	}
}`

func TestChartClientFetch(t *testing.T) {
	var gotPath, gotPeriod1, gotPeriod2 string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotPeriod1 = r.URL.Query().Get("period1")
		gotPeriod2 = r.URL.Query().Get("period2")
		fmt.Fprint(w, chartFixture)
	}))
	defer server.Close()

	client := NewChartClient(server.URL, server.Client())
	start := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC)

	series, err := client.Fetch(context.Background(), "AAPL", start, end)
	if err != nil {
		t.Fatalf("Expected no error, but got %v", err)
	}

	if gotPath != "/v8/finance/chart/AAPL" {
		t.Errorf("Expected chart path for AAPL, but got %s", gotPath)
	}
	if gotPeriod1 != "1709510400" || gotPeriod2 != "1709683200" {
		t.Errorf("Expected unix period params, but got %s and %s", gotPeriod1, gotPeriod2)
	}

	if series.Ticker != "AAPL" {
		t.Errorf("Expected ticker AAPL, but got %s", series.Ticker)
	}
	if len(series.Bars) != 3 {
		t.Fatalf("Expected 3 bars, but got %d", len(series.Bars))
	}

	first := series.Bars[0]
	if !first.Date.Equal(time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Expected first bar on 2024-03-04, but got %v", first.Date)
	}
	if first.Close == nil || first.Close.String() != "173.1" {
		t.Errorf("Expected close 173.1, but got %v", first.Close)
	}
	if first.Volume == nil || *first.Volume != 58000000 {
		t.Errorf("Expected volume 58000000, but got %v", first.Volume)
	}

	// The null day passes through with nil fields for validation to drop.
	third := series.Bars[2]
	if third.Open != nil || third.Close != nil || third.Volume != nil {
		t.Errorf("Expected nil fields on the null day, but got %+v", third)
	}
	if !third.Date.Equal(time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Expected third bar on 2024-03-06, but got %v", third.Date)
	}
}

func TestChartClientMapsSymbols(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		fmt.Fprint(w, chartFixture)
	}))
	defer server.Close()

	client := NewChartClient(server.URL, server.Client())
	if _, err := client.Fetch(context.Background(), "SPX500", time.Now().AddDate(0, -1, 0), time.Now()); err != nil {
		t.Fatalf("Expected no error, but got %v", err)
	}
	if gotPath != "/v8/finance/chart/^GSPC" {
		t.Errorf("Expected SPX500 mapped to ^GSPC, but got %s", gotPath)
	}
}

func TestChartClientAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`)
	}))
	defer server.Close()

	client := NewChartClient(server.URL, server.Client())
	_, err := client.Fetch(context.Background(), "BADTICK", time.Now().AddDate(0, -1, 0), time.Now())
	if err == nil {
		t.Fatal("Expected an error, but got none")
	}

	var dsErr *models.DataSourceError
	if !errors.As(err, &dsErr) {
		t.Fatalf("Expected DataSourceError, but got %T", err)
	}
	if dsErr.Ticker != "BADTICK" {
		t.Errorf("Expected ticker BADTICK, but got %s", dsErr.Ticker)
	}
	if !strings.Contains(err.Error(), "delisted") {
		t.Errorf("Expected provider description in error, but got %v", err)
	}
}

func TestChartClientHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream broke", http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewChartClient(server.URL, server.Client())
	_, err := client.Fetch(context.Background(), "AAPL", time.Now().AddDate(0, -1, 0), time.Now())

	var dsErr *models.DataSourceError
	if !errors.As(err, &dsErr) {
		t.Fatalf("Expected DataSourceError, but got %v", err)
	}
	if !strings.Contains(err.Error(), "status 502") {
		t.Errorf("Expected status in error, but got %v", err)
	}
}

func TestChartClientCancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, chartFixture)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewChartClient(server.URL, server.Client())
	_, err := client.Fetch(ctx, "AAPL", time.Now().AddDate(0, -1, 0), time.Now())

	var dsErr *models.DataSourceError
	if !errors.As(err, &dsErr) {
		t.Fatalf("Expected DataSourceError for cancelled context, but got %v", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled in chain, but got %v", err)
	}
}
