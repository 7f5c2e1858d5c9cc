package schedule

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Job is a unit of scheduled work.
type Job interface {
	Name() string
	Execute(ctx context.Context) error
}

type scheduledJob struct {
	job      Job
	entryID  cron.EntryID
	inFlight atomic.Bool
}

// Scheduler runs registered jobs on cron expressions. A job whose
// previous run is still active is skipped, not stacked.
type Scheduler struct {
	cron       *cron.Cron
	jobs       map[string]*scheduledJob
	runTimeout time.Duration
	logger     *zap.Logger
	mu         sync.Mutex
	isRunning  bool
	ctx        context.Context
	cancelFunc context.CancelFunc
}

// New creates a scheduler. An empty or unknown timezone falls back to
// the local one.
func New(timezone string, runTimeout time.Duration, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if runTimeout <= 0 {
		runTimeout = 10 * time.Minute
	}

	var cronOpts []cron.Option
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err == nil {
			cronOpts = append(cronOpts, cron.WithLocation(loc))
		} else {
			logger.Warn("invalid timezone, using local",
				zap.String("timezone", timezone),
				zap.Error(err))
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:       cron.New(cronOpts...),
		jobs:       make(map[string]*scheduledJob),
		runTimeout: runTimeout,
		logger:     logger,
		ctx:        ctx,
		cancelFunc: cancel,
	}
}

// Schedule registers a job under a cron expression.
func (s *Scheduler) Schedule(spec string, job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := job.Name()
	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("job %q already scheduled", name)
	}

	entry := &scheduledJob{job: job}
	entryID, err := s.cron.AddFunc(spec, func() { s.runJob(entry) })
	if err != nil {
		return fmt.Errorf("failed to schedule job %q: %w", name, err)
	}
	entry.entryID = entryID
	s.jobs[name] = entry

	s.logger.Info("scheduled job", zap.String("job", name), zap.String("cron", spec))
	return nil
}

func (s *Scheduler) runJob(entry *scheduledJob) {
	name := entry.job.Name()
	if !entry.inFlight.CompareAndSwap(false, true) {
		s.logger.Warn("previous run still active, skipping", zap.String("job", name))
		return
	}
	defer entry.inFlight.Store(false)

	ctx, cancel := context.WithTimeout(s.ctx, s.runTimeout)
	defer cancel()

	s.logger.Info("starting job", zap.String("job", name))
	start := time.Now()
	err := entry.job.Execute(ctx)
	elapsed := time.Since(start)

	if err != nil {
		s.logger.Error("job failed",
			zap.String("job", name),
			zap.Duration("elapsed", elapsed),
			zap.Error(err))
		return
	}
	s.logger.Info("job completed",
		zap.String("job", name),
		zap.Duration("elapsed", elapsed))
}

// Start begins running scheduled jobs.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return
	}
	s.cron.Start()
	s.isRunning = true
	s.logger.Info("scheduler started")
}

// Stop cancels in-flight jobs and waits for them to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}
	s.cancelFunc()
	<-s.cron.Stop().Done()
	s.isRunning = false
	s.logger.Info("scheduler stopped")
}

// RunNow executes a registered job immediately, outside its schedule.
func (s *Scheduler) RunNow(name string) error {
	s.mu.Lock()
	entry, ok := s.jobs[name]
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("job %q not found", name)
	}
	go s.runJob(entry)
	return nil
}

// NextRun returns the next scheduled time for a job. Zero until Start.
func (s *Scheduler) NextRun(name string) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.jobs[name]
	if !ok {
		return time.Time{}, fmt.Errorf("job %q not scheduled", name)
	}
	return s.cron.Entry(entry.entryID).Next, nil
}
