package detect

import "sort"

const (
	// noiseBufferDepth caps the rolling energy buffer the floor is derived from.
	noiseBufferDepth = 50

	// noisePercentile places the floor at the 20th percentile of the buffer,
	// below nearly all speech but above transient dropouts.
	noisePercentile = 0.2

	// minAdaptiveThreshold keeps the derived threshold off the floor in dead
	// quiet rooms.
	minAdaptiveThreshold = 0.1

	// thresholdMultiplier scales the noise floor into a speech gate.
	thresholdMultiplier = 3.0
)

// NoiseTracker maintains a rolling low-percentile estimate of short-time
// energy to approximate the ambient noise floor. It is fed every tick, voice
// or not; the suppressor keeps its own silence-only spectrum estimate and the
// two must not be conflated.
type NoiseTracker struct {
	buffer []float64
}

// NewNoiseTracker returns an empty tracker.
func NewNoiseTracker() *NoiseTracker {
	return &NoiseTracker{buffer: make([]float64, 0, noiseBufferDepth)}
}

// Update appends the current short-time energy, dropping the oldest sample
// once the buffer is full.
func (t *NoiseTracker) Update(energy float64) {
	t.buffer = append(t.buffer, energy)
	if len(t.buffer) > noiseBufferDepth {
		t.buffer = t.buffer[1:]
	}
}

// BackgroundNoiseLevel returns the 20th-percentile energy of the buffer, or 0
// while the buffer is empty.
func (t *NoiseTracker) BackgroundNoiseLevel() float64 {
	if len(t.buffer) == 0 {
		return 0
	}
	sorted := append([]float64(nil), t.buffer...)
	sort.Float64s(sorted)
	return sorted[int(noisePercentile*float64(len(sorted)))]
}

// AdaptiveThreshold derives a speech gate from the noise floor. The classifier
// currently runs on fixed constants; this is the documented tuning extension
// point and is exported for diagnostics.
func (t *NoiseTracker) AdaptiveThreshold() float64 {
	th := t.BackgroundNoiseLevel() * thresholdMultiplier
	if th < minAdaptiveThreshold {
		return minAdaptiveThreshold
	}
	return th
}

// Reset empties the buffer. Call between recording sessions.
func (t *NoiseTracker) Reset() {
	t.buffer = t.buffer[:0]
}
