package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the canonical rendering of a trading day for storage.
const DateLayout = "2006-01-02"

// RawBar represents one trading day as returned by a market data provider.
// Pointer fields are nil when the provider omitted the value.
type RawBar struct {
	Date   time.Time        `json:"date" validate:"required"`
	Open   *decimal.Decimal `json:"open" validate:"required"`
	High   *decimal.Decimal `json:"high" validate:"required"`
	Low    *decimal.Decimal `json:"low" validate:"required"`
	Close  *decimal.Decimal `json:"close" validate:"required"`
	Volume *int64           `json:"volume" validate:"required"`
}

// RawSeries represents the fetch result for a single ticker, bars in
// ascending date order.
type RawSeries struct {
	Ticker string   `json:"ticker" validate:"required"`
	Bars   []RawBar `json:"bars"`
}

// Bar is a complete trading day. Unlike RawBar every field is present.
type Bar struct {
	Date   time.Time       `json:"date"`
	Open   decimal.Decimal `json:"open"`
	High   decimal.Decimal `json:"high"`
	Low    decimal.Decimal `json:"low"`
	Close  decimal.Decimal `json:"close"`
	Volume int64           `json:"volume"`
}

// ValidatedSeries holds the bars that survived validation for one ticker.
// No bar moves more than the configured threshold against the previous
// kept bar's close.
type ValidatedSeries struct {
	Ticker string `json:"ticker"`
	Bars   []Bar  `json:"bars"`
}

// StockRecord represents one normalized row of the stock_data table.
type StockRecord struct {
	StockDate string          `json:"stock_date" db:"stock_date" validate:"required,len=10"`
	Ticker    string          `json:"ticker" db:"ticker" validate:"required"`
	Open      decimal.Decimal `json:"open" db:"open"`
	High      decimal.Decimal `json:"high" db:"high"`
	Low       decimal.Decimal `json:"low" db:"low"`
	Close     decimal.Decimal `json:"close" db:"close"`
	Volume    int64           `json:"volume" db:"volume"`
}

// TickerState is the terminal state of one ticker within a run.
type TickerState string

const (
	TickerDone   TickerState = "done"
	TickerFailed TickerState = "failed"
)

// Stage identifies a pipeline stage for logging and failure reporting.
type Stage string

const (
	StageFetch     Stage = "fetch"
	StageValidate  Stage = "validate"
	StageNormalize Stage = "normalize"
	StageStore     Stage = "store"
)

// TickerResult represents the outcome of one ticker within a run.
type TickerResult struct {
	Ticker        string      `json:"ticker"`
	State         TickerState `json:"state"`
	RecordsStored int         `json:"records_stored"`
	DroppedRows   int         `json:"dropped_rows"`
	FailedStage   Stage       `json:"failed_stage,omitempty"`
	Err           error       `json:"-"`
}

// RunSummary aggregates one pipeline run across all requested tickers.
type RunSummary struct {
	RunID         string         `json:"run_id"`
	StartedAt     time.Time      `json:"started_at"`
	FinishedAt    time.Time      `json:"finished_at"`
	Done          int            `json:"done"`
	Failed        int            `json:"failed"`
	RecordsStored int            `json:"records_stored"`
	Results       []TickerResult `json:"results"`
}

// Duration returns the wall time of the run.
func (s RunSummary) Duration() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}
