package jsonmetrics

import "github.com/Strob0t/CodeForge/internal/port/metricsadapter"

func init() {
	metricsadapter.Register(New())
	metricsadapter.Register(NewMagic())
}
