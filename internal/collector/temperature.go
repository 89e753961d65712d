// CPU temperature collector. Prefers hwmon sensors and falls back to
// thermal zones.
//
// The first sample in the exporter's output wins. Which physical sensor that
// is depends on the exporter's ordering; it is not guaranteed to be the CPU.
package collector

import (
	"go.uber.org/zap"

	"github.com/larrywright/pi-homeassistant-reporter/internal/models"
)

const (
	hwmonFamily       = "node_hwmon_temp_celsius"
	thermalZoneFamily = "node_thermal_zone_temp"
)

// TemperatureCollector produces at most one temperature reading per scrape.
type TemperatureCollector struct {
	logger *zap.Logger
}

// NewTemperatureCollector creates a new temperature collector.
// The logger parameter is used for debug logging. Pass nil for no logging.
func NewTemperatureCollector(logger *zap.Logger) *TemperatureCollector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TemperatureCollector{logger: logger}
}

// Name returns the collector identifier.
func (c *TemperatureCollector) Name() string { return "temperature" }

// Collect reads the first hwmon sample (degrees Celsius). Without one it
// reads the first thermal zone sample, which the exporter reports in
// millidegrees on some kernels.
func (c *TemperatureCollector) Collect(samples *Samples) models.Snapshot {
	out := make(models.Snapshot)

	if hwmon := samples.Family(hwmonFamily); len(hwmon) > 0 {
		if len(hwmon) > 1 {
			c.logger.Debug("Multiple hwmon sensors, using first",
				zap.Int("sensors", len(hwmon)),
				zap.Any("labels", hwmon[0].Labels))
		}
		out[models.CPUTempCelsius] = models.Float(models.Round(hwmon[0].Value, 1))
		return out
	}

	if zones := samples.Family(thermalZoneFamily); len(zones) > 0 {
		out[models.CPUTempCelsius] = models.Float(models.Round(zones[0].Value/1000, 1))
		return out
	}

	c.logger.Debug("No temperature sensor found")
	return out
}
