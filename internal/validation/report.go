package validation

import (
	"time"

	"github.com/shopspring/decimal"
)

// Verdict classifies one input row after validation.
type Verdict string

const (
	Kept           Verdict = "kept"
	DroppedMissing Verdict = "dropped_missing"
	DroppedOutlier Verdict = "dropped_outlier"
)

// Finding records the verdict for a single input row. Change is the
// close-to-close move against the previous kept row and is zero for the
// first kept row.
type Finding struct {
	Index   int             `json:"index"`
	Date    time.Time       `json:"date"`
	Verdict Verdict         `json:"verdict"`
	Change  decimal.Decimal `json:"change"`
}

// Report summarizes a validation pass over one series.
type Report struct {
	Ticker         string    `json:"ticker"`
	Input          int       `json:"input"`
	Kept           int       `json:"kept"`
	DroppedMissing int       `json:"dropped_missing"`
	DroppedOutlier int       `json:"dropped_outlier"`
	Findings       []Finding `json:"findings"`
}

// Dropped returns the total number of rows removed by validation.
func (r Report) Dropped() int {
	return r.DroppedMissing + r.DroppedOutlier
}
