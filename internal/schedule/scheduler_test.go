package schedule

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type recordingJob struct {
	name    string
	started chan struct{}
	release chan struct{}
	done    chan error
	err     error
}

func newRecordingJob(name string) *recordingJob {
	return &recordingJob{
		name:    name,
		started: make(chan struct{}, 4),
		release: make(chan struct{}),
		done:    make(chan error, 4),
	}
}

func (j *recordingJob) Name() string { return j.name }

func (j *recordingJob) Execute(ctx context.Context) error {
	j.started <- struct{}{}
	select {
	case <-j.release:
	case <-ctx.Done():
	}
	j.done <- j.err
	return j.err
}

func TestScheduleRejectsBadCronSpec(t *testing.T) {
	s := New("", time.Minute, nil)
	err := s.Schedule("not a cron spec", newRecordingJob("ingest"))
	if err == nil {
		t.Fatal("Expected error for invalid cron expression")
	}
	if !strings.Contains(err.Error(), "ingest") {
		t.Errorf("Expected error to name the job, got %v", err)
	}
}

func TestScheduleRejectsDuplicateJob(t *testing.T) {
	s := New("", time.Minute, nil)
	if err := s.Schedule("0 18 * * 1-5", newRecordingJob("ingest")); err != nil {
		t.Fatalf("First Schedule failed: %v", err)
	}
	if err := s.Schedule("0 9 * * *", newRecordingJob("ingest")); err == nil {
		t.Fatal("Expected error for duplicate job name")
	}
}

func TestRunNowExecutesJob(t *testing.T) {
	s := New("", time.Minute, nil)
	job := newRecordingJob("ingest")
	if err := s.Schedule("0 18 * * 1-5", job); err != nil {
		t.Fatalf("Schedule failed: %v", err)
	}

	if err := s.RunNow("ingest"); err != nil {
		t.Fatalf("RunNow failed: %v", err)
	}

	select {
	case <-job.started:
	case <-time.After(2 * time.Second):
		t.Fatal("Job did not start")
	}
	close(job.release)

	select {
	case err := <-job.done:
		if err != nil {
			t.Errorf("Expected clean run, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Job did not finish")
	}
}

func TestRunNowUnknownJob(t *testing.T) {
	s := New("", time.Minute, nil)
	if err := s.RunNow("missing"); err == nil {
		t.Fatal("Expected error for unknown job")
	}
}

func TestOverlappingRunIsSkipped(t *testing.T) {
	s := New("", time.Minute, nil)
	job := newRecordingJob("ingest")
	if err := s.Schedule("0 18 * * 1-5", job); err != nil {
		t.Fatalf("Schedule failed: %v", err)
	}

	if err := s.RunNow("ingest"); err != nil {
		t.Fatalf("RunNow failed: %v", err)
	}
	select {
	case <-job.started:
	case <-time.After(2 * time.Second):
		t.Fatal("First run did not start")
	}

	// Second trigger arrives while the first run holds the job.
	if err := s.RunNow("ingest"); err != nil {
		t.Fatalf("RunNow failed: %v", err)
	}
	select {
	case <-job.started:
		t.Fatal("Expected overlapping run to be skipped")
	case <-time.After(100 * time.Millisecond):
	}

	close(job.release)
	<-job.done
}

func TestRunTimeoutCancelsJob(t *testing.T) {
	s := New("", 50*time.Millisecond, nil)
	job := newRecordingJob("ingest")
	job.err = errors.New("cancelled mid-run")
	if err := s.Schedule("0 18 * * 1-5", job); err != nil {
		t.Fatalf("Schedule failed: %v", err)
	}

	// Never released; the run context must expire on its own.
	if err := s.RunNow("ingest"); err != nil {
		t.Fatalf("RunNow failed: %v", err)
	}

	select {
	case <-job.done:
	case <-time.After(2 * time.Second):
		t.Fatal("Job was not cancelled by the run timeout")
	}
}

func TestNextRunAfterStart(t *testing.T) {
	s := New("UTC", time.Minute, nil)
	job := newRecordingJob("ingest")
	if err := s.Schedule("0 18 * * 1-5", job); err != nil {
		t.Fatalf("Schedule failed: %v", err)
	}

	if _, err := s.NextRun("missing"); err == nil {
		t.Error("Expected error for unknown job")
	}

	s.Start()
	defer s.Stop()

	next, err := s.NextRun("ingest")
	if err != nil {
		t.Fatalf("NextRun failed: %v", err)
	}
	if next.IsZero() {
		t.Error("Expected a next run time after Start")
	}
	if !next.After(time.Now().Add(-time.Minute)) {
		t.Errorf("Next run %v is in the past", next)
	}
}

func TestStopIsIdempotent(t *testing.T) {
	s := New("", time.Minute, nil)
	s.Start()
	s.Stop()
	s.Stop()
}
