package services

import (
	"context"
	"time"

	"ai-trend-tracker/pkg/config"
	"ai-trend-tracker/pkg/logger"
)

// SchedulerService triggers the daily and weekly tasks at their configured
// hours while the process runs in serve mode.
type SchedulerService struct {
	pipeline *PipelineService
	tasks    config.TasksConfig
}

func NewSchedulerService(pipeline *PipelineService, tasks config.TasksConfig) *SchedulerService {
	return &SchedulerService{
		pipeline: pipeline,
		tasks:    tasks,
	}
}

// Start runs the scheduling loop in a goroutine. Each hour is evaluated once.
func (s *SchedulerService) Start(ctx context.Context) {
	go func() {
		for {
			now := time.Now()

			if now.Hour() == s.tasks.DailyHour {
				logger.Infof("Scheduler triggering daily task")
				if err := s.pipeline.RunDaily(ctx, now, false); err != nil {
					logger.WithError(err).Errorf("Scheduled daily task failed")
				}
			}

			// WeeklyDay counts from Monday, time.Weekday from Sunday
			weekday := (int(now.Weekday()) + 6) % 7
			if weekday == s.tasks.WeeklyDay && now.Hour() == s.tasks.WeeklyHour {
				logger.Infof("Scheduler triggering weekly task")
				if err := s.pipeline.RunWeekly(ctx, now, false); err != nil {
					logger.WithError(err).Errorf("Scheduled weekly task failed")
				}
			}

			// Sleep until the next full hour
			next := now.Add(time.Hour)
			next = time.Date(next.Year(), next.Month(), next.Day(), next.Hour(), 0, 0, 0, next.Location())

			select {
			case <-ctx.Done():
				return
			case <-time.After(next.Sub(now)):
			}
		}
	}()
}
