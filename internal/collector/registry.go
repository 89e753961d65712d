// Package collector provides a registry for managing extraction rules.
// Rules are registered at startup; the scheduler asks the registry to run
// all of them over one scrape.
package collector

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/larrywright/pi-homeassistant-reporter/internal/config"
	"github.com/larrywright/pi-homeassistant-reporter/internal/models"
)

// Registry manages all registered collectors and runs extraction.
type Registry struct {
	collectors []Collector
	logger     *zap.Logger
}

// NewRegistry creates a new collector registry with the given logger.
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		collectors: make([]Collector, 0),
		logger:     logger,
	}
}

// NewDefaultRegistry registers every built-in rule, configured for the
// devices named in cfg.
func NewDefaultRegistry(cfg config.CollectionConfig, logger *zap.Logger) *Registry {
	r := NewRegistry(logger)
	r.Register(NewLoadCollector())
	r.Register(NewMemoryCollector())
	r.Register(NewDiskCollector(cfg.RootMountpoint))
	r.Register(NewTemperatureCollector(logger))
	r.Register(NewNetworkCollector(cfg.NetworkInterface))
	r.Register(NewDiskIOCollector(cfg.BlockDevice))
	r.Register(NewUptimeCollector())
	return r
}

// Register adds a collector.
func (r *Registry) Register(c Collector) {
	r.collectors = append(r.collectors, c)
	r.logger.Debug("Registered collector", zap.String("name", c.Name()))
}

// Extract parses raw exposition text and runs every collector over it.
// It never fails: missing or malformed data only shrinks the snapshot.
func (r *Registry) Extract(raw string) models.Snapshot {
	samples := ParseSamples(raw)
	r.logger.Debug("Parsed exposition text", zap.Int("samples", samples.Len()))
	return r.CollectAll(samples)
}

// CollectAll runs all registered collectors sequentially and merges their
// results. A collector that panics is logged and contributes nothing.
func (r *Registry) CollectAll(samples *Samples) models.Snapshot {
	snapshot := make(models.Snapshot)
	for _, c := range r.collectors {
		result, err := r.collectOne(c, samples)
		if err != nil {
			r.logger.Error("Collection failed",
				zap.String("collector", c.Name()),
				zap.Error(err))
			continue
		}
		if len(result) == 0 {
			r.logger.Debug("Collector produced no metrics", zap.String("collector", c.Name()))
		}
		snapshot.Merge(result)
	}
	r.logger.Debug("Parsed metrics", zap.Int("count", len(snapshot)))
	return snapshot
}

func (r *Registry) collectOne(c Collector, samples *Samples) (result models.Snapshot, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("collector panicked: %v", p)
		}
	}()
	return c.Collect(samples), nil
}

// Collectors returns a copy of all registered collectors.
func (r *Registry) Collectors() []Collector {
	result := make([]Collector, len(r.collectors))
	copy(result, r.collectors)
	return result
}
