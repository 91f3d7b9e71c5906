package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kyh-dev/stockscope/pkg/logger"
)

type countingJob struct {
	runs atomic.Int32
}

func (j *countingJob) Name() string     { return "counting" }
func (j *countingJob) Schedule() string { return "@daily" }

func (j *countingJob) Run(ctx context.Context) error {
	j.runs.Add(1)
	return nil
}

func TestAddJobRejectsDuplicates(t *testing.T) {
	s := New(logger.NewNop())

	require.NoError(t, s.AddJob(&countingJob{}))
	assert.Error(t, s.AddJob(&countingJob{}))
	assert.Equal(t, []string{"counting"}, s.GetAllJobs())
}

func TestAddJobRejectsBadSchedule(t *testing.T) {
	s := New(logger.NewNop())

	job := &badScheduleJob{}
	assert.Error(t, s.AddJob(job))
}

type badScheduleJob struct{}

func (j *badScheduleJob) Name() string                  { return "bad" }
func (j *badScheduleJob) Schedule() string              { return "not a cron spec" }
func (j *badScheduleJob) Run(ctx context.Context) error { return nil }

func TestRunJobRecordsHistory(t *testing.T) {
	s := New(logger.NewNop())
	job := &countingJob{}
	require.NoError(t, s.AddJob(job))

	require.NoError(t, s.RunJob("counting"))

	assert.Eventually(t, func() bool {
		history, err := s.GetJobHistory("counting")
		if err != nil || len(history.Results) == 0 {
			return false
		}
		return history.Results[0].Success
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, int32(1), job.runs.Load())
}

func TestRunJobUnknown(t *testing.T) {
	s := New(logger.NewNop())
	assert.Error(t, s.RunJob("missing"))

	_, err := s.GetJobHistory("missing")
	assert.Error(t, err)
}
