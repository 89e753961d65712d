package publisher

import (
	"strings"
	"unicode"

	"github.com/larrywright/pi-homeassistant-reporter/internal/models"
)

const (
	deviceManufacturer = "Raspberry Pi Foundation"
	chipIcon           = "mdi:chip"
)

// Device is the owning-device block of a discovery payload.
type Device struct {
	Identifiers  []string `json:"identifiers"`
	Name         string   `json:"name"`
	Manufacturer string   `json:"manufacturer"`
}

// Descriptor is the Home Assistant MQTT discovery payload for one sensor.
// Unit is a pointer so that an explicitly empty unit is still emitted.
type Descriptor struct {
	Name              string  `json:"name"`
	StateTopic        string  `json:"state_topic"`
	UniqueID          string  `json:"unique_id"`
	Device            Device  `json:"device"`
	UnitOfMeasurement *string `json:"unit_of_measurement,omitempty"`
	DeviceClass       string  `json:"device_class,omitempty"`
	Icon              string  `json:"icon,omitempty"`
}

// Classification is the unit, device class and icon inferred from a key name.
type Classification struct {
	Unit        *string
	DeviceClass string
	Icon        string
}

func unit(u string) *string { return &u }

// Classify infers presentation hints from the key name. The first matching
// rule wins, in this order: percent, celsius, gb, uptime seconds, days,
// bytes_total, load.
func Classify(key models.MetricKey) Classification {
	name := string(key)
	switch {
	case strings.Contains(name, "percent"):
		return Classification{Unit: unit("%")}
	case strings.Contains(name, "celsius"):
		return Classification{Unit: unit("°C"), DeviceClass: "temperature"}
	case strings.Contains(name, "gb"):
		return Classification{Unit: unit("GB")}
	case strings.Contains(name, "seconds") && strings.Contains(name, "uptime"):
		return Classification{Unit: unit("s")}
	case strings.Contains(name, "days"):
		return Classification{Unit: unit("days")}
	case strings.Contains(name, "bytes_total"):
		return Classification{Unit: unit("B")}
	case strings.Contains(name, "load"):
		return Classification{Unit: unit(""), Icon: chipIcon}
	}
	return Classification{}
}

// StateTopic returns the topic a metric's value is published to.
func StateTopic(device string, key models.MetricKey) string {
	return device + "/sensor/" + string(key)
}

// DiscoveryTopic returns the discovery config topic for a metric.
func DiscoveryTopic(prefix, device string, key models.MetricKey) string {
	return prefix + "/sensor/" + UniqueID(device, key) + "/config"
}

// AvailabilityTopic returns the device's availability topic.
func AvailabilityTopic(device string) string {
	return device + "/sensor/availability"
}

// UniqueID returns the entity's unique id.
func UniqueID(device string, key models.MetricKey) string {
	return device + "_" + string(key)
}

// NewDescriptor builds the discovery payload for key on device.
func NewDescriptor(device string, key models.MetricKey) Descriptor {
	c := Classify(key)
	return Descriptor{
		Name:       device + " " + Label(key),
		StateTopic: StateTopic(device, key),
		UniqueID:   UniqueID(device, key),
		Device: Device{
			Identifiers:  []string{device},
			Name:         "Raspberry Pi (" + device + ")",
			Manufacturer: deviceManufacturer,
		},
		UnitOfMeasurement: c.Unit,
		DeviceClass:       c.DeviceClass,
		Icon:              c.Icon,
	}
}

// Label turns a key into a display label: underscores become spaces and
// every letter that follows a non-letter is upper-cased, the rest lower-cased.
// "cpu_load_1min" becomes "Cpu Load 1Min".
func Label(key models.MetricKey) string {
	var b strings.Builder
	prevLetter := false
	for _, r := range strings.ReplaceAll(string(key), "_", " ") {
		if unicode.IsLetter(r) {
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToUpper(r))
			}
			prevLetter = true
			continue
		}
		b.WriteRune(r)
		prevLetter = false
	}
	return b.String()
}
