package collector

import (
	"bufio"
	"math"
	"strings"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"github.com/prometheus/common/model"
)

// Sample is one exposition-format sample line: a label set and its value.
type Sample struct {
	Labels map[string]string
	Value  float64
}

// Samples indexes parsed samples by metric family name. Samples of a family
// are kept in the order they appeared in the text.
type Samples struct {
	families map[string][]Sample
}

// ParseSamples tokenizes exposition-format text. It never fails: when the
// document as a whole does not parse, every sample line is parsed on its own
// and lines that still fail are dropped. Non-finite values are dropped too.
func ParseSamples(raw string) *Samples {
	s := &Samples{families: make(map[string][]Sample)}
	if strings.TrimSpace(raw) == "" {
		return s
	}

	parser := expfmt.NewTextParser(model.UTF8Validation)
	families, err := parser.TextToMetricFamilies(strings.NewReader(raw))
	if err == nil {
		for name, mf := range families {
			s.addFamily(name, mf)
		}
		return s
	}

	reader := bufio.NewReader(strings.NewReader(raw))
	for {
		line, readErr := reader.ReadString('\n')
		s.addLine(line)
		if readErr != nil {
			break
		}
	}
	return s
}

// addLine parses a single sample line, ignoring comments and lines that fail.
func (s *Samples) addLine(line string) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return
	}
	parser := expfmt.NewTextParser(model.UTF8Validation)
	fams, err := parser.TextToMetricFamilies(strings.NewReader(line + "\n"))
	if err != nil {
		return
	}
	for name, mf := range fams {
		s.addFamily(name, mf)
	}
}

func (s *Samples) addFamily(name string, mf *dto.MetricFamily) {
	for _, m := range mf.GetMetric() {
		v, ok := sampleValue(m)
		if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		labels := make(map[string]string, len(m.GetLabel()))
		for _, lp := range m.GetLabel() {
			labels[lp.GetName()] = lp.GetValue()
		}
		s.families[name] = append(s.families[name], Sample{Labels: labels, Value: v})
	}
}

// sampleValue reads the scalar value of gauge, counter and untyped samples.
// Summaries and histograms are not scalar and are skipped.
func sampleValue(m *dto.Metric) (float64, bool) {
	switch {
	case m.GetGauge() != nil:
		return m.GetGauge().GetValue(), true
	case m.GetCounter() != nil:
		return m.GetCounter().GetValue(), true
	case m.GetUntyped() != nil:
		return m.GetUntyped().GetValue(), true
	}
	return 0, false
}

// Family returns all samples of the named family in textual order.
func (s *Samples) Family(name string) []Sample {
	return s.families[name]
}

// First returns the value of the first sample of name whose labels contain
// every pair in match. A nil match accepts any label set.
func (s *Samples) First(name string, match map[string]string) (float64, bool) {
	for _, sample := range s.families[name] {
		if labelsMatch(sample.Labels, match) {
			return sample.Value, true
		}
	}
	return 0, false
}

// Len returns the number of parsed samples across all families.
func (s *Samples) Len() int {
	n := 0
	for _, f := range s.families {
		n += len(f)
	}
	return n
}

func labelsMatch(labels, match map[string]string) bool {
	for k, v := range match {
		if labels[k] != v {
			return false
		}
	}
	return true
}
