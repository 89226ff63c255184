package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrameMetricsAverage(t *testing.T) {
	m := NewFrameMetrics()
	for i := 0; i < int(AVG_COUNT); i++ {
		m.Update(0.016)
	}
	assert.InDelta(t, 16.0, m.FrameTime(), 1e-9)

	// a second window must not accumulate on top of the first
	for i := 0; i < int(AVG_COUNT); i++ {
		m.Update(0.010)
	}
	assert.InDelta(t, 10.0, m.FrameTime(), 1e-9)
	assert.Equal(t, uint64(2*int(AVG_COUNT)), m.TotalFrames)
}

func TestFrameMetricsFPS(t *testing.T) {
	m := NewFrameMetrics()
	for i := 0; i < 150; i++ {
		m.Update(0.01)
	}
	fps, _ := m.Frame()
	assert.InDelta(t, 100.0, fps, 1.0)
}

func TestFrameMetricsPartialWindow(t *testing.T) {
	m := NewFrameMetrics()
	m.Update(0.010)
	m.Update(0.020)
	assert.InDelta(t, 15.0, m.FrameTime(), 1e-9)
}
