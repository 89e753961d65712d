// Package collector turns node exporter exposition text into a metric snapshot.
// Each Collector is one independent extraction rule over the parsed samples.
package collector

import "github.com/larrywright/pi-homeassistant-reporter/internal/models"

// Collector is the interface that all extraction rules implement.
type Collector interface {
	// Name returns the unique identifier for this collector.
	Name() string

	// Collect derives its metrics from the parsed samples. Metrics whose
	// source samples are missing are left out of the returned snapshot.
	Collect(samples *Samples) models.Snapshot
}
