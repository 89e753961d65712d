// Load average collector. Reads node_load1 and node_load5 as-is.
package collector

import "github.com/larrywright/pi-homeassistant-reporter/internal/models"

// LoadCollector extracts the 1 and 5 minute load averages.
type LoadCollector struct{}

// NewLoadCollector creates a new load average collector.
func NewLoadCollector() *LoadCollector {
	return &LoadCollector{}
}

// Name returns the collector identifier.
func (c *LoadCollector) Name() string { return "load" }

// Collect reads the load averages. Each one is independent of the other.
func (c *LoadCollector) Collect(samples *Samples) models.Snapshot {
	out := make(models.Snapshot)
	if v, ok := samples.First("node_load1", nil); ok {
		out[models.CPULoad1Min] = models.Float(v)
	}
	if v, ok := samples.First("node_load5", nil); ok {
		out[models.CPULoad5Min] = models.Float(v)
	}
	return out
}
