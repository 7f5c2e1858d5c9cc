package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lucamachado49/finance-pipeline/internal/metrics"
	"github.com/lucamachado49/finance-pipeline/internal/models"
	"github.com/lucamachado49/finance-pipeline/internal/normalize"
	"github.com/lucamachado49/finance-pipeline/internal/source"
	"github.com/lucamachado49/finance-pipeline/internal/validation"
)

// Store persists normalized records.
type Store interface {
	Write(ctx context.Context, records []models.StockRecord) error
	Replace(ctx context.Context, records []models.StockRecord) error
}

// Options contains configuration options for the pipeline.
type Options struct {
	// MaxDailyChange is the close-to-close move beyond which a row is
	// treated as a data error.
	MaxDailyChange float64
	FetchTimeout   time.Duration
	StoreTimeout   time.Duration
	// Workers fans tickers out to a pool. 1 keeps the strict sequential
	// order of the ticker list.
	Workers int
	// Replace overwrites rows on key collisions instead of failing the
	// ticker's batch.
	Replace bool
}

// DefaultOptions returns the default pipeline options.
func DefaultOptions() Options {
	return Options{
		MaxDailyChange: validation.DefaultMaxDailyChange,
		FetchTimeout:   30 * time.Second,
		StoreTimeout:   30 * time.Second,
		Workers:        1,
	}
}

// Pipeline drives fetch, validate, normalize and store for each ticker.
type Pipeline struct {
	source    source.Source
	store     Store
	validator *validation.DataValidator
	options   Options
	logger    *zap.Logger
}

// New creates a pipeline around the given collaborators.
func New(src source.Source, store Store, options Options, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	defaults := DefaultOptions()
	if options.FetchTimeout <= 0 {
		options.FetchTimeout = defaults.FetchTimeout
	}
	if options.StoreTimeout <= 0 {
		options.StoreTimeout = defaults.StoreTimeout
	}
	if options.Workers <= 0 {
		options.Workers = defaults.Workers
	}

	return &Pipeline{
		source:    src,
		store:     store,
		validator: validation.NewDataValidator(options.MaxDailyChange, logger),
		options:   options,
		logger:    logger,
	}
}

// Run processes every ticker between start and end and reports the
// aggregate outcome. A failed ticker never stops the others; the returned
// error is non-nil only when the run context is cancelled, and the
// summary still covers whatever completed before that.
func (p *Pipeline) Run(ctx context.Context, tickers []string, start, end time.Time) (models.RunSummary, error) {
	summary := models.RunSummary{
		RunID:     generateRunID(),
		StartedAt: time.Now().UTC(),
		Results:   make([]models.TickerResult, len(tickers)),
	}
	runStart := time.Now()

	p.logger.Info("starting run",
		zap.String("run_id", summary.RunID),
		zap.Strings("tickers", tickers),
		zap.Time("start", start),
		zap.Time("end", end),
		zap.Int("workers", p.options.Workers))

	workers := p.options.Workers
	if workers > len(tickers) {
		workers = len(tickers)
	}

	indexCh := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexCh {
				summary.Results[i] = p.runTicker(ctx, tickers[i], start, end)
			}
		}()
	}

feed:
	for i := range tickers {
		if ctx.Err() != nil {
			break
		}
		select {
		case indexCh <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(indexCh)
	wg.Wait()

	// Tickers never dispatched because the run was cancelled still get a
	// terminal result.
	for i, res := range summary.Results {
		if res.Ticker == "" {
			summary.Results[i] = models.TickerResult{
				Ticker: tickers[i],
				State:  models.TickerFailed,
				Err:    ctx.Err(),
			}
		}
	}

	for _, res := range summary.Results {
		switch res.State {
		case models.TickerDone:
			summary.Done++
			summary.RecordsStored += res.RecordsStored
		case models.TickerFailed:
			summary.Failed++
		}
	}
	summary.FinishedAt = time.Now().UTC()
	metrics.RunDuration.Observe(time.Since(runStart).Seconds())

	p.logger.Info("run complete",
		zap.String("run_id", summary.RunID),
		zap.Int("done", summary.Done),
		zap.Int("failed", summary.Failed),
		zap.Int("records_stored", summary.RecordsStored),
		zap.Duration("elapsed", summary.Duration()))
	return summary, ctx.Err()
}

// runTicker walks one ticker through every stage and always returns a
// terminal result.
func (p *Pipeline) runTicker(ctx context.Context, ticker string, start, end time.Time) models.TickerResult {
	result := models.TickerResult{Ticker: ticker}
	logger := p.logger.With(zap.String("ticker", ticker))
	tickerStart := time.Now()
	defer func() {
		metrics.TickerDuration.Observe(time.Since(tickerStart).Seconds())
		metrics.TickerOutcomes.WithLabelValues(string(result.State)).Inc()
	}()

	fetchCtx, cancel := context.WithTimeout(ctx, p.options.FetchTimeout)
	raw, err := p.source.Fetch(fetchCtx, ticker, start, end)
	cancel()
	if err != nil {
		metrics.FetchFailures.Inc()
		logger.Error("fetch failed", zap.Error(err))
		return failed(result, models.StageFetch, err)
	}
	logger.Info("fetched series", zap.Int("rows", len(raw.Bars)))

	valid, report := p.validator.ValidateSeries(raw)
	result.DroppedRows = report.Dropped()
	metrics.RowsDropped.WithLabelValues("missing").Add(float64(report.DroppedMissing))
	metrics.RowsDropped.WithLabelValues("outlier").Add(float64(report.DroppedOutlier))

	if len(valid.Bars) == 0 {
		logger.Warn("no valid rows to store", zap.Int("fetched", report.Input))
		result.State = models.TickerDone
		return result
	}

	records, err := normalize.Series(valid)
	if err != nil {
		logger.Error("normalize failed", zap.Error(err))
		return failed(result, models.StageNormalize, err)
	}

	storeCtx, cancel := context.WithTimeout(ctx, p.options.StoreTimeout)
	if p.options.Replace {
		err = p.store.Replace(storeCtx, records)
	} else {
		err = p.store.Write(storeCtx, records)
	}
	cancel()
	if err != nil {
		metrics.StoreFailures.Inc()
		logger.Error("store failed", zap.Error(err))
		return failed(result, models.StageStore, err)
	}

	result.State = models.TickerDone
	result.RecordsStored = len(records)
	metrics.RecordsStored.Add(float64(len(records)))
	logger.Info("ticker complete",
		zap.Int("records_stored", result.RecordsStored),
		zap.Int("dropped_rows", result.DroppedRows))
	return result
}

func failed(result models.TickerResult, stage models.Stage, err error) models.TickerResult {
	result.State = models.TickerFailed
	result.FailedStage = stage
	result.Err = err
	return result
}

// generateRunID returns a unique, time-sortable run identifier.
func generateRunID() string {
	return fmt.Sprintf("run-%s-%s",
		time.Now().UTC().Format("20060102-150405"),
		uuid.New().String()[:8])
}
