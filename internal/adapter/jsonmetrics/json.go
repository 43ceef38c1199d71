// Package jsonmetrics implements the reference result-blob adapter of
// spec.md §4.15 for a simple JSON wire format, plus the magic
// composing adapter that tries a fixed list of candidates in order.
package jsonmetrics

import (
	"encoding/json"
	"fmt"

	"github.com/Strob0t/CodeForge/internal/port/metricsadapter"
)

// Name is the adapter identifier matched against an ingest request's
// "adapter" field.
const Name = "json"

// rawMetric mirrors the wire shape
// {"benchmark": {"measure": {"value": ..., "lower_value": ..., "upper_value": ...}}}.
type rawMetric struct {
	Value      float64  `json:"value"`
	LowerValue *float64 `json:"lower_value,omitempty"`
	UpperValue *float64 `json:"upper_value,omitempty"`
}

// Adapter parses the plain JSON wire format named in spec.md §4.15.
type Adapter struct{}

// New creates a new Adapter.
func New() *Adapter { return &Adapter{} }

func (a *Adapter) Name() string { return Name }

// Parse decodes input as map[benchmark]map[measure]rawMetric. Settings
// are accepted but unused by this adapter. A malformed blob is
// reported via metricsadapter.ErrUnrecognized so a magic adapter can
// fall through to the next candidate.
func (a *Adapter) Parse(input string, _ map[string]string) (metricsadapter.Results, error) {
	var raw map[string]map[string]rawMetric
	if err := json.Unmarshal([]byte(input), &raw); err != nil {
		return nil, fmt.Errorf("%w: %s", metricsadapter.ErrUnrecognized, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty result set", metricsadapter.ErrUnrecognized)
	}

	results := make(metricsadapter.Results, len(raw))
	for benchName, measures := range raw {
		out := make(map[string]metricsadapter.Metric, len(measures))
		for measureName, m := range measures {
			out[measureName] = metricsadapter.Metric{
				Value:      m.Value,
				LowerValue: m.LowerValue,
				UpperValue: m.UpperValue,
			}
		}
		results[benchName] = out
	}
	return results, nil
}
