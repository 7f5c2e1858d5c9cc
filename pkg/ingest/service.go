// Package ingest wires configuration, storage, data sources, and the
// pipeline into a runnable service for the CLI and the daemon.
package ingest

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/lucamachado49/finance-pipeline/internal/announce"
	"github.com/lucamachado49/finance-pipeline/internal/config"
	"github.com/lucamachado49/finance-pipeline/internal/models"
	"github.com/lucamachado49/finance-pipeline/internal/pipeline"
	"github.com/lucamachado49/finance-pipeline/internal/source"
	"github.com/lucamachado49/finance-pipeline/internal/storage"
)

// Service is the interface for the ingest service.
type Service interface {
	// RunOnce fetches, validates, and stores one window of daily bars.
	// Empty tickers and zero times fall back to the configured values.
	RunOnce(ctx context.Context, tickers []string, start, end time.Time) (models.RunSummary, error)

	// Setup creates the database schema if it does not exist.
	Setup(ctx context.Context) error

	// Reset drops and recreates the database schema.
	Reset(ctx context.Context) error

	// Latest returns the most recent stored records.
	Latest(ctx context.Context, tickers []string, limit int) ([]models.StockRecord, error)

	// Count returns the number of stored records.
	Count(ctx context.Context) (int64, error)

	// Close releases the database and announcement connections.
	Close() error
}

// IngestService implements the Service interface.
type IngestService struct {
	cfg       *config.Config
	logger    *zap.Logger
	repo      *storage.Repository
	pipeline  *pipeline.Pipeline
	announcer *announce.Announcer
}

// NewService builds a service from the given configuration.
func NewService(cfg *config.Config, logger *zap.Logger) (Service, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	repo, err := storage.Open(storage.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.Name,
		SSLMode:  cfg.Database.SSLMode,
	}, logger)
	if err != nil {
		return nil, err
	}

	src := newSource(cfg.Source)

	p := pipeline.New(src, repo, pipeline.Options{
		MaxDailyChange: cfg.Pipeline.MaxDailyChange,
		FetchTimeout:   cfg.Pipeline.FetchTimeout(),
		StoreTimeout:   cfg.Pipeline.StoreTimeout(),
		Workers:        cfg.Pipeline.Workers,
		Replace:        cfg.Pipeline.Replace,
	}, logger)

	var announcer *announce.Announcer
	if cfg.Redis.Enabled {
		announcer = announce.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	}

	return &IngestService{
		cfg:       cfg,
		logger:    logger,
		repo:      repo,
		pipeline:  p,
		announcer: announcer,
	}, nil
}

func newSource(cfg config.SourceConfig) source.Source {
	switch cfg.Provider {
	case config.SourceChartAPI:
		return source.NewChartClient(cfg.BaseURL, &http.Client{Timeout: cfg.Timeout()})
	default:
		return source.NewHistoryClient(cfg.Timeout())
	}
}

// RunOnce implements Service.RunOnce.
func (s *IngestService) RunOnce(ctx context.Context, tickers []string, start, end time.Time) (models.RunSummary, error) {
	if len(tickers) == 0 {
		tickers = s.cfg.Tickers
	}
	start, end = s.window(start, end)

	s.logger.Info("starting ingest run",
		zap.Strings("tickers", tickers),
		zap.String("start", start.Format(models.DateLayout)),
		zap.String("end", end.Format(models.DateLayout)))

	summary, err := s.pipeline.Run(ctx, tickers, start, end)

	if s.announcer != nil {
		if aerr := s.announcer.AnnounceRun(ctx, summary); aerr != nil {
			s.logger.Warn("failed to announce run",
				zap.String("run_id", summary.RunID),
				zap.Error(aerr))
		}
	}
	return summary, err
}

// window fills missing bounds: the end defaults to today (UTC) and the
// start to the configured number of days before the end.
func (s *IngestService) window(start, end time.Time) (time.Time, time.Time) {
	if end.IsZero() {
		now := time.Now().UTC()
		end = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	}
	if start.IsZero() {
		days := s.cfg.WindowDays
		if days <= 0 {
			days = config.DefaultWindowDays
		}
		start = end.AddDate(0, 0, -days)
	}
	return start, end
}

// Setup implements Service.Setup.
func (s *IngestService) Setup(ctx context.Context) error {
	return s.repo.EnsureSchema(ctx)
}

// Reset implements Service.Reset.
func (s *IngestService) Reset(ctx context.Context) error {
	return s.repo.ResetSchema(ctx)
}

// Latest implements Service.Latest.
func (s *IngestService) Latest(ctx context.Context, tickers []string, limit int) ([]models.StockRecord, error) {
	if len(tickers) == 1 {
		return s.repo.RecordsForTicker(ctx, tickers[0], limit)
	}
	return s.repo.LatestRecords(ctx, tickers, limit)
}

// Count implements Service.Count.
func (s *IngestService) Count(ctx context.Context) (int64, error) {
	return s.repo.CountRecords(ctx)
}

// Close implements Service.Close.
func (s *IngestService) Close() error {
	if s.announcer != nil {
		if err := s.announcer.Close(); err != nil {
			s.logger.Warn("failed to close announcer", zap.Error(err))
		}
	}
	return s.repo.Close()
}
