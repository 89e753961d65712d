// Package scheduler runs the scrape/extract/publish cycle on a fixed interval.
// Cycles never overlap: the next one is scheduled only after the previous
// one has finished or failed.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/larrywright/pi-homeassistant-reporter/internal/collector"
	"github.com/larrywright/pi-homeassistant-reporter/internal/config"
	"github.com/larrywright/pi-homeassistant-reporter/internal/models"
	"github.com/larrywright/pi-homeassistant-reporter/internal/publisher"
	"github.com/larrywright/pi-homeassistant-reporter/internal/telemetry"
)

// Extractor turns raw exposition text into a snapshot.
type Extractor interface {
	Extract(raw string) models.Snapshot
}

// Publisher sends a snapshot to the broker.
type Publisher interface {
	Publish(ctx context.Context, snap models.Snapshot, device string) (publisher.Report, error)
}

// CycleResult describes how one cycle ended.
type CycleResult struct {
	// Result is one of the telemetry.Result* values.
	Result  string
	Metrics int
	Report  publisher.Report
	Err     error
}

// Scheduler owns everything a cycle needs. It holds no per-cycle state.
type Scheduler struct {
	source    collector.Source
	extractor Extractor
	publisher Publisher
	device    string

	interval time.Duration
	backoff  time.Duration

	metrics *telemetry.Metrics
	logger  *zap.Logger
}

// New creates a Scheduler. A nil metrics gets a private registry.
func New(
	source collector.Source,
	extractor Extractor,
	pub Publisher,
	device string,
	cfg config.CollectionConfig,
	metrics *telemetry.Metrics,
	logger *zap.Logger,
) *Scheduler {
	if metrics == nil {
		metrics = telemetry.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		source:    source,
		extractor: extractor,
		publisher: pub,
		device:    device,
		interval:  cfg.Interval.Duration,
		backoff:   cfg.RetryBackoff.Duration,
		metrics:   metrics,
		logger:    logger,
	}
}

// Start runs a cycle immediately and then one per interval. It blocks until
// the context is cancelled. After a cycle that failed unexpectedly the
// shorter retry backoff is used instead of the interval.
func (s *Scheduler) Start(ctx context.Context) {
	for ctx.Err() == nil {
		result := s.RunCycle(ctx)

		wait := s.interval
		if result.Result == telemetry.ResultPanic {
			wait = s.backoff
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// RunCycle performs one fetch, extraction and publish. It never panics.
func (s *Scheduler) RunCycle(ctx context.Context) (result CycleResult) {
	defer func() {
		if p := recover(); p != nil {
			result = CycleResult{
				Result: telemetry.ResultPanic,
				Err:    fmt.Errorf("cycle panicked: %v", p),
			}
			s.logger.Error("Error in cycle, backing off",
				zap.Error(result.Err),
				zap.Duration("backoff", s.backoff))
		}
		s.metrics.ObserveCycle(result.Result)
	}()

	raw, err := s.source.Fetch(ctx)
	if err != nil {
		s.logger.Error("Error fetching metrics", zap.Error(err))
		raw = ""
	}

	snap := s.extractor.Extract(raw)
	s.metrics.SetSnapshotSize(len(snap))
	if len(snap) == 0 {
		s.logger.Warn("No metrics collected")
		return CycleResult{Result: telemetry.ResultNoMetrics, Err: err}
	}

	report, err := s.publisher.Publish(ctx, snap, s.device)
	s.metrics.AddMessages(report.Messages())
	if err != nil {
		s.logger.Error("Error publishing to MQTT",
			zap.Int("published", report.Messages()),
			zap.Error(err))
		return CycleResult{
			Result:  telemetry.ResultPublishFailed,
			Metrics: len(snap),
			Report:  report,
			Err:     err,
		}
	}

	return CycleResult{
		Result:  telemetry.ResultPublished,
		Metrics: len(snap),
		Report:  report,
	}
}
