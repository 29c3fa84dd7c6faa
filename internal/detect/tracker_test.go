package detect

import "testing"

func TestNoiseTracker_EmptyBuffer(t *testing.T) {
	tr := NewNoiseTracker()

	if got := tr.BackgroundNoiseLevel(); got != 0 {
		t.Errorf("expected zero noise level for empty tracker, got %f", got)
	}
	if got := tr.AdaptiveThreshold(); got != minAdaptiveThreshold {
		t.Errorf("expected minimum threshold %f, got %f", minAdaptiveThreshold, got)
	}
}

func TestNoiseTracker_UniformEnergy(t *testing.T) {
	tr := NewNoiseTracker()
	for i := 0; i < noiseBufferDepth; i++ {
		tr.Update(0.5)
	}

	if got := tr.BackgroundNoiseLevel(); got != 0.5 {
		t.Errorf("expected noise level 0.5, got %f", got)
	}
	if got := tr.AdaptiveThreshold(); got != 1.5 {
		t.Errorf("expected threshold 1.5, got %f", got)
	}
}

func TestNoiseTracker_FloorBelowPeaks(t *testing.T) {
	tr := NewNoiseTracker()

	// Mostly quiet with occasional loud bursts; the 20th percentile should
	// sit near the quiet level, not the bursts.
	for i := 0; i < 40; i++ {
		tr.Update(0.02)
	}
	for i := 0; i < 10; i++ {
		tr.Update(0.9)
	}

	floor := tr.BackgroundNoiseLevel()
	if floor != 0.02 {
		t.Errorf("expected floor at quiet level 0.02, got %f", floor)
	}
	if got := tr.AdaptiveThreshold(); got != minAdaptiveThreshold {
		t.Errorf("expected threshold clamped to %f, got %f", minAdaptiveThreshold, got)
	}
}

func TestNoiseTracker_BufferBounded(t *testing.T) {
	tr := NewNoiseTracker()
	for i := 0; i < 3*noiseBufferDepth; i++ {
		tr.Update(float64(i))
	}
	if len(tr.buffer) != noiseBufferDepth {
		t.Errorf("expected buffer length %d, got %d", noiseBufferDepth, len(tr.buffer))
	}

	// Old quiet samples should have aged out, so the floor reflects the
	// recent window only.
	floor := tr.BackgroundNoiseLevel()
	if floor < float64(2*noiseBufferDepth) {
		t.Errorf("expected floor from the recent window, got %f", floor)
	}
}

func TestNoiseTracker_Reset(t *testing.T) {
	tr := NewNoiseTracker()
	tr.Update(0.5)
	tr.Reset()

	if got := tr.BackgroundNoiseLevel(); got != 0 {
		t.Errorf("expected zero noise level after reset, got %f", got)
	}
}
