package validation

import (
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/lucamachado49/finance-pipeline/internal/models"
)

// DefaultMaxDailyChange is the largest close-to-close move kept without
// being treated as a data error.
const DefaultMaxDailyChange = 0.5

// DataValidator applies the completeness and extreme-change rules to a
// fetched series. It never mutates its input and never fails a series;
// bad rows are dropped and reported.
type DataValidator struct {
	validate       *validator.Validate
	maxDailyChange decimal.Decimal
	logger         *zap.Logger
}

// NewDataValidator creates a validator with the given change threshold.
// A threshold <= 0 falls back to DefaultMaxDailyChange.
func NewDataValidator(maxDailyChange float64, logger *zap.Logger) *DataValidator {
	if maxDailyChange <= 0 {
		maxDailyChange = DefaultMaxDailyChange
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DataValidator{
		validate:       validator.New(),
		maxDailyChange: decimal.NewFromFloat(maxDailyChange),
		logger:         logger,
	}
}

// ValidateSeries filters a raw series down to complete, plausible rows.
// Rows with any missing field are dropped first; remaining rows are
// dropped when their close moves more than the threshold against the
// close of the previous kept row. The first kept row is never extreme.
func (v *DataValidator) ValidateSeries(series models.RawSeries) (models.ValidatedSeries, Report) {
	out := models.ValidatedSeries{Ticker: series.Ticker}
	report := Report{
		Ticker:   series.Ticker,
		Input:    len(series.Bars),
		Findings: make([]Finding, 0, len(series.Bars)),
	}

	if len(series.Bars) == 0 {
		v.logger.Warn("no rows to validate", zap.String("ticker", series.Ticker))
		return out, report
	}

	var prevClose decimal.Decimal
	havePrev := false

	for i, bar := range series.Bars {
		if err := v.validate.Struct(bar); err != nil {
			report.DroppedMissing++
			report.Findings = append(report.Findings, Finding{Index: i, Date: bar.Date, Verdict: DroppedMissing})
			v.logger.Warn("dropping incomplete row",
				zap.String("ticker", series.Ticker),
				zap.Time("date", bar.Date),
				zap.Error(err))
			continue
		}

		closePrice := *bar.Close
		var change decimal.Decimal
		if havePrev {
			var extreme bool
			change, extreme = dailyChange(prevClose, closePrice)
			if extreme || change.Abs().GreaterThan(v.maxDailyChange) {
				report.DroppedOutlier++
				report.Findings = append(report.Findings, Finding{Index: i, Date: bar.Date, Verdict: DroppedOutlier, Change: change})
				v.logger.Warn("dropping extreme price change",
					zap.String("ticker", series.Ticker),
					zap.Time("date", bar.Date),
					zap.String("close", closePrice.String()),
					zap.String("prev_close", prevClose.String()),
					zap.String("change", change.String()))
				continue
			}
		}

		out.Bars = append(out.Bars, models.Bar{
			Date:   bar.Date,
			Open:   *bar.Open,
			High:   *bar.High,
			Low:    *bar.Low,
			Close:  closePrice,
			Volume: *bar.Volume,
		})
		prevClose = closePrice
		havePrev = true
		report.Kept++
		report.Findings = append(report.Findings, Finding{Index: i, Date: bar.Date, Verdict: Kept, Change: change})
	}

	if report.Dropped() > 0 {
		v.logger.Warn("validation dropped rows",
			zap.String("ticker", series.Ticker),
			zap.Int("input", report.Input),
			zap.Int("kept", report.Kept),
			zap.Int("dropped_missing", report.DroppedMissing),
			zap.Int("dropped_outlier", report.DroppedOutlier))
	}
	return out, report
}

// dailyChange returns the fractional close-to-close change. A zero
// previous close cannot anchor a percentage; any move off zero is
// treated as extreme, staying at zero is no change.
func dailyChange(prev, cur decimal.Decimal) (decimal.Decimal, bool) {
	if prev.IsZero() {
		if cur.IsZero() {
			return decimal.Zero, false
		}
		return decimal.Zero, true
	}
	return cur.Sub(prev).Div(prev), false
}
