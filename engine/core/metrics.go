package core

import "github.com/spaghettifunk/prism/engine/containers"

const AVG_COUNT uint8 = 30

// FrameMetrics keeps a rolling frame-time average over the last AVG_COUNT
// frames and a frames-per-second counter. One instance is owned by each
// presentation context.
type FrameMetrics struct {
	window             *containers.RingQueue[float64]
	MSavg              float64
	Frames             int32
	AccumulatedFrameMS float64
	FPS                float64
	TotalFrames        uint64
}

func NewFrameMetrics() *FrameMetrics {
	return &FrameMetrics{
		window: containers.NewRingQueue[float64](int(AVG_COUNT)),
	}
}

// Update records one frame that took frameElapsedTime seconds.
func (m *FrameMetrics) Update(frameElapsedTime float64) {
	frameMS := frameElapsedTime * 1000.0
	if m.window.IsFull() {
		_, _ = m.window.Dequeue()
	}
	_ = m.window.Enqueue(frameMS)

	sum := 0.0
	m.window.Each(func(ms float64) { sum += ms })
	m.MSavg = sum / float64(m.window.Len())

	m.AccumulatedFrameMS += frameMS
	if m.AccumulatedFrameMS > 1000 {
		m.FPS = float64(m.Frames)
		m.AccumulatedFrameMS -= 1000
		m.Frames = 0
	}

	m.Frames++
	m.TotalFrames++
}

func (m *FrameMetrics) FPSValue() float64 {
	return m.FPS
}

func (m *FrameMetrics) FrameTime() float64 {
	return m.MSavg
}

// Frame returns fps and the average frame time in milliseconds.
func (m *FrameMetrics) Frame() (float64, float64) {
	return m.FPS, m.MSavg
}
