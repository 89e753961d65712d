package publisher

import (
	"testing"

	"github.com/larrywright/pi-homeassistant-reporter/internal/models"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		key         models.MetricKey
		unit        *string
		deviceClass string
		icon        string
	}{
		{"disk_used_percent", unit("%"), "", ""},
		{"memory_used_percent", unit("%"), "", ""},
		{"cpu_temp_celsius", unit("°C"), "temperature", ""},
		{"memory_total_gb", unit("GB"), "", ""},
		{"disk_free_gb", unit("GB"), "", ""},
		{"uptime_seconds", unit("s"), "", ""},
		{"uptime_days", unit("days"), "", ""},
		{"network_rx_bytes_total", unit("B"), "", ""},
		{"disk_write_bytes_total", unit("B"), "", ""},
		{"cpu_load_1min", unit(""), "", "mdi:chip"},
		{"cpu_load_5min", unit(""), "", "mdi:chip"},
		{"fan_speed", nil, "", ""},
		// Priority: "percent" beats "load".
		{"load_percent", unit("%"), "", ""},
		// "seconds" without "uptime" is not a duration.
		{"scrape_seconds", nil, "", ""},
	}

	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			c := Classify(tt.key)
			switch {
			case tt.unit == nil && c.Unit != nil:
				t.Errorf("unit = %q, want none", *c.Unit)
			case tt.unit != nil && c.Unit == nil:
				t.Errorf("unit = none, want %q", *tt.unit)
			case tt.unit != nil && *c.Unit != *tt.unit:
				t.Errorf("unit = %q, want %q", *c.Unit, *tt.unit)
			}
			if c.DeviceClass != tt.deviceClass {
				t.Errorf("device class = %q, want %q", c.DeviceClass, tt.deviceClass)
			}
			if c.Icon != tt.icon {
				t.Errorf("icon = %q, want %q", c.Icon, tt.icon)
			}
		})
	}
}

func TestLabel(t *testing.T) {
	tests := map[models.MetricKey]string{
		"cpu_load_1min":          "Cpu Load 1Min",
		"memory_used_gb":         "Memory Used Gb",
		"network_rx_bytes_total": "Network Rx Bytes Total",
		"uptime_days":            "Uptime Days",
	}
	for key, want := range tests {
		if got := Label(key); got != want {
			t.Errorf("Label(%q) = %q, want %q", key, got, want)
		}
	}
}

func TestTopics(t *testing.T) {
	if got := StateTopic("pi", models.UptimeDays); got != "pi/sensor/uptime_days" {
		t.Errorf("StateTopic = %q", got)
	}
	if got := DiscoveryTopic("homeassistant", "pi", models.UptimeDays); got != "homeassistant/sensor/pi_uptime_days/config" {
		t.Errorf("DiscoveryTopic = %q", got)
	}
	if got := AvailabilityTopic("pi"); got != "pi/sensor/availability" {
		t.Errorf("AvailabilityTopic = %q", got)
	}
}

func TestNewDescriptor_BareSensor(t *testing.T) {
	d := NewDescriptor("pi", "fan_speed")
	if d.UnitOfMeasurement != nil || d.DeviceClass != "" || d.Icon != "" {
		t.Errorf("descriptor = %+v, want no unit/class/icon", d)
	}
	if d.UniqueID != "pi_fan_speed" {
		t.Errorf("UniqueID = %q", d.UniqueID)
	}
}
