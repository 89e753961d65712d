// Package models defines the metric data structures shared by the extractor,
// the publisher and the scheduler.
package models

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// MetricKey identifies one published sensor value. The set is closed: keys
// are only ever produced by the extraction rules.
type MetricKey string

const (
	CPULoad1Min         MetricKey = "cpu_load_1min"
	CPULoad5Min         MetricKey = "cpu_load_5min"
	MemoryUsedPercent   MetricKey = "memory_used_percent"
	MemoryUsedGB        MetricKey = "memory_used_gb"
	MemoryTotalGB       MetricKey = "memory_total_gb"
	DiskUsedPercent     MetricKey = "disk_used_percent"
	DiskFreeGB          MetricKey = "disk_free_gb"
	DiskTotalGB         MetricKey = "disk_total_gb"
	CPUTempCelsius      MetricKey = "cpu_temp_celsius"
	NetworkRxBytesTotal MetricKey = "network_rx_bytes_total"
	NetworkTxBytesTotal MetricKey = "network_tx_bytes_total"
	DiskReadBytesTotal  MetricKey = "disk_read_bytes_total"
	DiskWriteBytesTotal MetricKey = "disk_write_bytes_total"
	UptimeSeconds       MetricKey = "uptime_seconds"
	UptimeDays          MetricKey = "uptime_days"
)

// AllKeys lists every key the extractor can produce.
var AllKeys = []MetricKey{
	CPULoad1Min, CPULoad5Min,
	MemoryUsedPercent, MemoryUsedGB, MemoryTotalGB,
	DiskUsedPercent, DiskFreeGB, DiskTotalGB,
	CPUTempCelsius,
	NetworkRxBytesTotal, NetworkTxBytesTotal,
	DiskReadBytesTotal, DiskWriteBytesTotal,
	UptimeSeconds, UptimeDays,
}

// Value is a single numeric reading. Integer counters keep their integer
// form so they are rendered without a fractional part.
type Value struct {
	Float   float64
	Int     int64
	Integer bool
}

// Float wraps a floating-point reading.
func Float(v float64) Value { return Value{Float: v} }

// Int wraps an integer reading.
func Int(v int64) Value { return Value{Int: v, Integer: true} }

// String renders the value as it is published on the state topic.
// Floats use the shortest round-trip digits and keep a decimal point
// ("50.0"); exponents below -4 or from 16 up use scientific form ("1e+21").
// Integers never have a decimal point.
func (v Value) String() string {
	if v.Integer {
		return strconv.FormatInt(v.Int, 10)
	}
	if math.IsInf(v.Float, 0) || math.IsNaN(v.Float) {
		return strconv.FormatFloat(v.Float, 'f', -1, 64)
	}
	if v.Float != 0 {
		sci := strconv.FormatFloat(v.Float, 'e', -1, 64)
		if i := strings.IndexByte(sci, 'e'); i >= 0 {
			if exp, err := strconv.Atoi(sci[i+1:]); err == nil && (exp < -4 || exp >= 16) {
				return sci
			}
		}
	}
	s := strconv.FormatFloat(v.Float, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// Snapshot is the set of values produced by one extraction pass.
type Snapshot map[MetricKey]Value

// Keys returns the snapshot keys in lexical order.
func (s Snapshot) Keys() []MetricKey {
	keys := make([]MetricKey, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Merge copies every entry of other into s.
func (s Snapshot) Merge(other Snapshot) {
	for k, v := range other {
		s[k] = v
	}
}

// Round rounds v to the given number of decimals. Rounding works on the
// exact decimal expansion of v with ties to even, so 0.125 becomes 0.12 and
// 45.25 becomes 45.2.
func Round(v float64, decimals int) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', decimals, 64), 64)
	if err != nil {
		return v
	}
	return r
}
