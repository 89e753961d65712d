// Network I/O collector. Reads cumulative RX/TX byte counters for one interface.
package collector

import "github.com/larrywright/pi-homeassistant-reporter/internal/models"

// NetworkCollector collects byte counters for a single network interface.
type NetworkCollector struct {
	device string
}

// NewNetworkCollector creates a new network collector for the interface.
func NewNetworkCollector(device string) *NetworkCollector {
	return &NetworkCollector{device: device}
}

// Name returns the collector identifier.
func (c *NetworkCollector) Name() string { return "network" }

// Collect reads the counters independently; either may be present alone.
func (c *NetworkCollector) Collect(samples *Samples) models.Snapshot {
	out := make(models.Snapshot)
	match := map[string]string{"device": c.device}
	if v, ok := samples.First("node_network_receive_bytes_total", match); ok {
		out[models.NetworkRxBytesTotal] = models.Int(int64(v))
	}
	if v, ok := samples.First("node_network_transmit_bytes_total", match); ok {
		out[models.NetworkTxBytesTotal] = models.Int(int64(v))
	}
	return out
}
