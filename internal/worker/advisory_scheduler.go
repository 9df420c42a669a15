package worker

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Sweeper runs one lifespan advisory pass.
type Sweeper interface {
	Sweep(ctx context.Context) (int, error)
}

// AdvisoryScheduler runs the lifespan sweep once a day.
type AdvisoryScheduler struct {
	cron    *cron.Cron
	sweeper Sweeper
	logger  *zap.Logger
	timeout time.Duration
}

// NewAdvisoryScheduler creates a scheduler in loc. It does nothing until Start.
func NewAdvisoryScheduler(sweeper Sweeper, loc *time.Location, logger *zap.Logger) *AdvisoryScheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdvisoryScheduler{
		cron:    cron.New(cron.WithLocation(loc), cron.WithSeconds()),
		sweeper: sweeper,
		logger:  logger,
		timeout: 5 * time.Minute,
	}
}

// ScheduleDaily registers the sweep at the given HH:MM time string.
func (s *AdvisoryScheduler) ScheduleDaily(timeStr string) (cron.EntryID, error) {
	spec, err := buildDailySpec(timeStr)
	if err != nil {
		return 0, err
	}
	return s.cron.AddFunc(spec, s.RunOnce)
}

// RunOnce performs a sweep now.
func (s *AdvisoryScheduler) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if _, err := s.sweeper.Sweep(ctx); err != nil {
		s.logger.Error("lifespan advisory sweep failed", zap.Error(err))
	}
}

func (s *AdvisoryScheduler) Start() {
	s.cron.Start()
}

// Stop waits for a running sweep to finish.
func (s *AdvisoryScheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func buildDailySpec(timeStr string) (string, error) {
	parts := strings.Split(strings.TrimSpace(timeStr), ":")
	if len(parts) != 2 {
		return "", fmt.Errorf("invalid time %q, expected HH:MM", timeStr)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return "", fmt.Errorf("invalid hour in %q", timeStr)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return "", fmt.Errorf("invalid minute in %q", timeStr)
	}
	// second minute hour dom month dow
	return fmt.Sprintf("0 %d %d * * *", minute, hour), nil
}
