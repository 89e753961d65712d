// Disk I/O collector. Reads cumulative read/write byte counters for one
// block device.
package collector

import "github.com/larrywright/pi-homeassistant-reporter/internal/models"

// DiskIOCollector collects byte counters for a single block device.
type DiskIOCollector struct {
	device string
}

// NewDiskIOCollector creates a new disk I/O collector for the block device.
func NewDiskIOCollector(device string) *DiskIOCollector {
	return &DiskIOCollector{device: device}
}

// Name returns the collector identifier.
func (c *DiskIOCollector) Name() string { return "diskio" }

// Collect reads the counters independently; either may be present alone.
func (c *DiskIOCollector) Collect(samples *Samples) models.Snapshot {
	out := make(models.Snapshot)
	match := map[string]string{"device": c.device}
	if v, ok := samples.First("node_disk_read_bytes_total", match); ok {
		out[models.DiskReadBytesTotal] = models.Int(int64(v))
	}
	if v, ok := samples.First("node_disk_written_bytes_total", match); ok {
		out[models.DiskWriteBytesTotal] = models.Int(int64(v))
	}
	return out
}
