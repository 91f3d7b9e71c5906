// Package jobs holds the concrete scheduled jobs.
package jobs

import (
	"context"
	"fmt"

	"github.com/kyh-dev/stockscope/internal/master"
	"github.com/kyh-dev/stockscope/pkg/logger"
)

// MasterRefreshJob rebuilds the master snapshot before the KRX open
// ⭐ SSOT: 마스터 파일 갱신 스케줄은 이 Job에서만
type MasterRefreshJob struct {
	service  *master.Service
	schedule string
	logger   *logger.Logger
}

// NewMasterRefreshJob creates a new master refresh job. schedule comes from
// MASTER_REFRESH_SPEC.
func NewMasterRefreshJob(service *master.Service, schedule string, log *logger.Logger) *MasterRefreshJob {
	return &MasterRefreshJob{
		service:  service,
		schedule: schedule,
		logger:   log,
	}
}

// Name returns the job name
func (j *MasterRefreshJob) Name() string {
	return "master_refresh"
}

// Schedule returns the cron schedule expression
func (j *MasterRefreshJob) Schedule() string {
	return j.schedule
}

// Run rebuilds the snapshot
func (j *MasterRefreshJob) Run(ctx context.Context) error {
	j.logger.Info("Starting scheduled master refresh")

	if err := j.service.Refresh(ctx); err != nil {
		return fmt.Errorf("master refresh: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"instruments": j.service.Current().Len(),
	}).Info("Scheduled master refresh completed")

	return nil
}
