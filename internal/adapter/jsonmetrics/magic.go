package jsonmetrics

import (
	"errors"
	"fmt"

	"github.com/Strob0t/CodeForge/internal/port/metricsadapter"
)

// MagicName is the composing adapter's own identifier, selectable as
// an ingest request's "adapter" the same way a concrete one is.
const MagicName = "magic"

// Magic tries each candidate adapter in order and returns the first
// one that parses the input successfully (spec.md §4.7).
type Magic struct {
	candidates []metricsadapter.Adapter
}

// NewMagic creates a Magic adapter that tries candidates in the given
// order. With no arguments it defaults to the reference json Adapter.
func NewMagic(candidates ...metricsadapter.Adapter) *Magic {
	if len(candidates) == 0 {
		candidates = []metricsadapter.Adapter{New()}
	}
	return &Magic{candidates: candidates}
}

func (m *Magic) Name() string { return MagicName }

func (m *Magic) Parse(input string, settings map[string]string) (metricsadapter.Results, error) {
	for _, c := range m.candidates {
		results, err := c.Parse(input, settings)
		if err == nil {
			return results, nil
		}
		if !errors.Is(err, metricsadapter.ErrUnrecognized) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: no candidate adapter recognized the input", metricsadapter.ErrUnrecognized)
}
