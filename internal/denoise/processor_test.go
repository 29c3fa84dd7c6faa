package denoise

import "testing"

func TestProcessor_DisabledPassesThrough(t *testing.T) {
	p := NewProcessor()
	p.SetEnabled(false)

	spectrum := []float64{0.5, 0.4}
	out := p.Process(spectrum, []float64{0.1, 0.2}, true, 0.1)
	for i := range spectrum {
		if out[i] != spectrum[i] {
			t.Errorf("bin %d changed while disabled: %f != %f", i, out[i], spectrum[i])
		}
	}
	if p.subtractor.Initialized() {
		t.Error("disabled processor must not learn a noise estimate")
	}
}

func TestProcessor_SilenceRefinesNoiseVoiceGetsSuppressed(t *testing.T) {
	p := NewProcessor()
	noise := []float64{0.2, 0.2, 0.2}
	voice := []float64{0.8, 0.9, 1.0}
	samples := []float64{0.1, -0.1, 0.1}

	// Voice before any silence frame passes through untouched.
	out := p.Process(voice, samples, true, 0.01)
	for i := range voice {
		if out[i] != voice[i] {
			t.Errorf("bin %d suppressed before noise estimate exists: %f", i, out[i])
		}
	}

	// A silence frame seeds the estimate; the next voice frame is attenuated.
	p.Process(noise, samples, false, 0.01)
	if !p.subtractor.Initialized() {
		t.Fatal("silence frame should seed the noise estimate")
	}
	out = p.Process(voice, samples, true, 0.01)
	for i := range voice {
		if out[i] >= voice[i] {
			t.Errorf("bin %d not attenuated after noise estimate: %f >= %f", i, out[i], voice[i])
		}
	}
}

func TestProcessor_VoiceFramesDoNotPolluteNoiseEstimate(t *testing.T) {
	p := NewProcessor()
	p.Process([]float64{0.1, 0.1}, []float64{0}, false, 0.01)

	before := append([]float64(nil), p.subtractor.noise...)
	p.Process([]float64{0.9, 0.9}, []float64{0}, true, 0.01)

	for i := range before {
		if p.subtractor.noise[i] != before[i] {
			t.Errorf("noise estimate changed on a voice frame: %f != %f", p.subtractor.noise[i], before[i])
		}
	}
}

func TestProcessor_LastDenoised(t *testing.T) {
	p := NewProcessor()
	p.Process([]float64{0.1}, []float64{0.5, -0.02, 0.3}, false, 0.01)

	got := p.LastDenoised()
	if len(got) != 3 {
		t.Fatalf("expected 3 denoised samples, got %d", len(got))
	}
	// Threshold is at its 0.05 minimum here; small samples zero out.
	if got[1] != 0 {
		t.Errorf("expected sub-threshold sample to zero out, got %f", got[1])
	}
	if got[0] <= 0 || got[0] >= 0.5 {
		t.Errorf("expected attenuated positive sample, got %f", got[0])
	}

	p.Reset()
	if p.LastDenoised() != nil {
		t.Error("expected nil denoised signal after reset")
	}
}
