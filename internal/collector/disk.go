// Disk usage collector. Reads filesystem size and availability for a single
// mountpoint (the root filesystem by default).
package collector

import "github.com/larrywright/pi-homeassistant-reporter/internal/models"

// DiskCollector collects usage for one mountpoint.
type DiskCollector struct {
	mountpoint string
}

// NewDiskCollector creates a new disk collector. An empty mountpoint means "/".
func NewDiskCollector(mountpoint string) *DiskCollector {
	if mountpoint == "" {
		mountpoint = "/"
	}
	return &DiskCollector{mountpoint: mountpoint}
}

// Name returns the collector identifier.
func (c *DiskCollector) Name() string { return "disk" }

// Collect requires both size and avail samples labelled with the mountpoint.
func (c *DiskCollector) Collect(samples *Samples) models.Snapshot {
	out := make(models.Snapshot)
	match := map[string]string{"mountpoint": c.mountpoint}

	total, ok := samples.First("node_filesystem_size_bytes", match)
	if !ok {
		return out
	}
	available, ok := samples.First("node_filesystem_avail_bytes", match)
	if !ok || total <= 0 {
		return out
	}

	used := total - available
	out[models.DiskUsedPercent] = models.Float(models.Round(used/total*100, 1))
	out[models.DiskFreeGB] = models.Float(models.Round(available/bytesPerGB, 2))
	out[models.DiskTotalGB] = models.Float(models.Round(total/bytesPerGB, 2))
	return out
}
