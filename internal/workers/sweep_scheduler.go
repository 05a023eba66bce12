package workers

import (
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/tenantgate/tenantgate/internal/tasks"
)

// standard 5-field format: minute hour day-of-month month day-of-week
var scheduleParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// NewSweepScheduler returns a stopped cron that enqueues a session sweep on schedule.
// The caller starts and stops it.
func NewSweepScheduler(schedule string, client tasks.Enqueuer, logger zerolog.Logger) (*cron.Cron, error) {
	c := cron.New(cron.WithParser(scheduleParser))

	_, err := c.AddFunc(schedule, func() {
		enqueueSweep(client, logger)
	})
	if err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}
	return c, nil
}

func enqueueSweep(client tasks.Enqueuer, logger zerolog.Logger) {
	// Unique keeps overlapping ticks from stacking sweeps while one is queued
	info, err := client.Enqueue(tasks.NewSweepSessionsTask(),
		asynq.Queue("low"),
		asynq.MaxRetry(1),
		asynq.Unique(10*time.Minute),
	)
	if err != nil {
		if errors.Is(err, asynq.ErrDuplicateTask) {
			logger.Debug().Msg("Session sweep already queued")
			return
		}
		logger.Error().Err(err).Msg("Failed to enqueue session sweep")
		return
	}

	logger.Debug().Str("task_id", info.ID).Msg("Session sweep enqueued")
}

// NextSweep reports when the schedule fires next after from, or nil for an invalid schedule
func NextSweep(schedule string, from time.Time) *time.Time {
	if schedule == "" {
		return nil
	}
	parsed, err := scheduleParser.Parse(schedule)
	if err != nil {
		return nil
	}
	next := parsed.Next(from)
	return &next
}
