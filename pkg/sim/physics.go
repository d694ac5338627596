package sim

import (
	"sync"
	"time"
)

// SpeedBuffer maintains a rolling window of position samples to calculate a smoothed speed,
// the way a receiver derives ground speed from successive fixes.
type SpeedBuffer struct {
	mu         sync.RWMutex
	samples    []alongSample
	windowSize time.Duration
}

type alongSample struct {
	at    time.Duration
	along float64
}

// NewSpeedBuffer creates a buffer with the specified time window (e.g. 3s).
func NewSpeedBuffer(window time.Duration) *SpeedBuffer {
	return &SpeedBuffer{
		windowSize: window,
	}
}

// Update adds a sample taken at simulation time at and returns the speed in m/s.
func (b *SpeedBuffer) Update(at time.Duration, along float64) float64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.samples = append(b.samples, alongSample{at: at, along: along})

	// Remove old samples outside window
	cutoff := at - b.windowSize
	for len(b.samples) > 2 && b.samples[1].at < cutoff {
		b.samples = b.samples[1:]
	}

	if len(b.samples) < 2 {
		return 0
	}

	first := b.samples[0]
	last := b.samples[len(b.samples)-1]

	dt := (last.at - first.at).Seconds()
	if dt <= 0 {
		return 0
	}
	return (last.along - first.along) / dt
}

// Reset clears the buffer.
func (b *SpeedBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.samples = nil
}
