// System uptime collector. Derives seconds and days since boot from the
// exporter's current time and boot time.
package collector

import (
	"math"

	"github.com/larrywright/pi-homeassistant-reporter/internal/models"
)

const secondsPerDay = 86400

// UptimeCollector collects system uptime.
type UptimeCollector struct{}

// NewUptimeCollector creates a new uptime collector.
func NewUptimeCollector() *UptimeCollector {
	return &UptimeCollector{}
}

// Name returns the collector identifier.
func (c *UptimeCollector) Name() string { return "uptime" }

// Collect needs both node_time_seconds and node_boot_time_seconds.
func (c *UptimeCollector) Collect(samples *Samples) models.Snapshot {
	out := make(models.Snapshot)
	now, ok := samples.First("node_time_seconds", nil)
	if !ok {
		return out
	}
	boot, ok := samples.First("node_boot_time_seconds", nil)
	if !ok {
		return out
	}

	uptime := now - boot
	out[models.UptimeSeconds] = models.Int(int64(math.Floor(uptime)))
	out[models.UptimeDays] = models.Float(models.Round(uptime/secondsPerDay, 1))
	return out
}
