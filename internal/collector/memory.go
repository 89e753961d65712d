// RAM usage collector. Derives used percentage and GiB figures from
// MemTotal and MemAvailable.
package collector

import "github.com/larrywright/pi-homeassistant-reporter/internal/models"

// bytesPerGB is the divisor for the "_gb" metrics (GiB).
const bytesPerGB = 1 << 30

// MemoryCollector collects RAM usage metrics.
type MemoryCollector struct{}

// NewMemoryCollector creates a new memory collector.
func NewMemoryCollector() *MemoryCollector {
	return &MemoryCollector{}
}

// Name returns the collector identifier.
func (c *MemoryCollector) Name() string { return "memory" }

// Collect needs both total and available bytes; with either missing it
// produces nothing, so a partial percentage is never reported.
func (c *MemoryCollector) Collect(samples *Samples) models.Snapshot {
	out := make(models.Snapshot)
	total, ok := samples.First("node_memory_MemTotal_bytes", nil)
	if !ok {
		return out
	}
	available, ok := samples.First("node_memory_MemAvailable_bytes", nil)
	if !ok || total <= 0 {
		return out
	}

	used := total - available
	out[models.MemoryUsedPercent] = models.Float(models.Round(used/total*100, 1))
	out[models.MemoryUsedGB] = models.Float(models.Round(used/bytesPerGB, 2))
	out[models.MemoryTotalGB] = models.Float(models.Round(total/bytesPerGB, 2))
	return out
}
