package announce

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/lucamachado49/finance-pipeline/internal/models"
)

const (
	// RunChannel carries completed run summaries over PubSub.
	RunChannel = "pipeline:runs"
	// RunStream keeps the same summaries in a stream for consumers that
	// replay history.
	RunStream = "pipeline:runs:stream"

	DefaultRedisAddr = "localhost:6379"
)

// Announcer publishes completed run summaries for downstream consumers.
type Announcer struct {
	client *redis.Client
	logger *zap.Logger
}

// New creates an announcer talking to the given Redis instance.
func New(addr, password string, db int, logger *zap.Logger) *Announcer {
	if addr == "" {
		addr = DefaultRedisAddr
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	return &Announcer{client: client, logger: logger}
}

// Close closes the Redis connection.
func (a *Announcer) Close() error {
	return a.client.Close()
}

// AnnounceRun publishes the summary to the run channel and appends it to
// the run stream.
func (a *Announcer) AnnounceRun(ctx context.Context, summary models.RunSummary) error {
	data, err := json.Marshal(newRunPayload(summary))
	if err != nil {
		return fmt.Errorf("failed to marshal run summary: %w", err)
	}

	if err := a.client.Publish(ctx, RunChannel, string(data)).Err(); err != nil {
		return fmt.Errorf("failed to publish run summary: %w", err)
	}

	err = a.client.XAdd(ctx, &redis.XAddArgs{
		Stream: RunStream,
		ID:     "*", // Auto-generate ID
		Values: map[string]interface{}{
			"data": string(data),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to add run summary to stream: %w", err)
	}

	a.logger.Info("announced run",
		zap.String("run_id", summary.RunID),
		zap.String("channel", RunChannel))
	return nil
}

// runPayload is the wire form of a run summary.
type runPayload struct {
	RunID         string         `json:"run_id"`
	StartedAt     time.Time      `json:"started_at"`
	FinishedAt    time.Time      `json:"finished_at"`
	Done          int            `json:"done"`
	Failed        int            `json:"failed"`
	RecordsStored int            `json:"records_stored"`
	Results       []tickerResult `json:"results"`
}

type tickerResult struct {
	Ticker        string `json:"ticker"`
	State         string `json:"state"`
	RecordsStored int    `json:"records_stored"`
	DroppedRows   int    `json:"dropped_rows"`
	FailedStage   string `json:"failed_stage,omitempty"`
	Error         string `json:"error,omitempty"`
}

func newRunPayload(summary models.RunSummary) runPayload {
	payload := runPayload{
		RunID:         summary.RunID,
		StartedAt:     summary.StartedAt,
		FinishedAt:    summary.FinishedAt,
		Done:          summary.Done,
		Failed:        summary.Failed,
		RecordsStored: summary.RecordsStored,
		Results:       make([]tickerResult, 0, len(summary.Results)),
	}
	for _, res := range summary.Results {
		out := tickerResult{
			Ticker:        res.Ticker,
			State:         string(res.State),
			RecordsStored: res.RecordsStored,
			DroppedRows:   res.DroppedRows,
			FailedStage:   string(res.FailedStage),
		}
		if res.Err != nil {
			out.Error = res.Err.Error()
		}
		payload.Results = append(payload.Results, out)
	}
	return payload
}
