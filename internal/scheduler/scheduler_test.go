package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantterm/backend/pkg/logger"
)

type fakeJob struct {
	name     string
	schedule string
	runs     int32
	err      error
}

func (j *fakeJob) Name() string     { return j.name }
func (j *fakeJob) Schedule() string { return j.schedule }
func (j *fakeJob) Run(ctx context.Context) error {
	atomic.AddInt32(&j.runs, 1)
	return j.err
}

func TestAddJob(t *testing.T) {
	s := New(logger.Nop())

	job := &fakeJob{name: "scan", schedule: "0 30 2 * * *"}
	require.NoError(t, s.AddJob(job))

	// Duplicate names are rejected
	err := s.AddJob(&fakeJob{name: "scan", schedule: "0 0 1 * * *"})
	assert.Error(t, err)
}

func TestAddJobBadSchedule(t *testing.T) {
	s := New(logger.Nop())

	err := s.AddJob(&fakeJob{name: "scan", schedule: "not a cron"})
	assert.Error(t, err)
}

func TestRunJob(t *testing.T) {
	s := New(logger.Nop())
	s.retryDelay = time.Millisecond

	job := &fakeJob{name: "scan", schedule: "0 30 2 * * *"}
	require.NoError(t, s.AddJob(job))

	require.NoError(t, s.RunJob("scan"))

	// RunJob is async; poll briefly.
	deadline := time.Now().Add(2 * time.Second)
	for atomic.LoadInt32(&job.runs) == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&job.runs))

	assert.Error(t, s.RunJob("missing"))
}
