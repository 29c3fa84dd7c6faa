package audio

import "testing"

func TestFormat_BinMath(t *testing.T) {
	if got := DefaultFormat.BinCount(); got != 128 {
		t.Errorf("expected 128 bins, got %d", got)
	}
	if got := DefaultFormat.BinFor(172.3); got != 1 {
		t.Errorf("expected bin 1 for 172.3Hz, got %d", got)
	}
	if got := DefaultFormat.BinFor(4000); got != 23 {
		t.Errorf("expected bin 23 for 4kHz, got %d", got)
	}

	wide := Format{SampleRate: 44100, FFTSize: 512, WindowSize: 512}
	if got := wide.BinCount(); got != 256 {
		t.Errorf("expected 256 bins, got %d", got)
	}
}

func TestFormat_Validate(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		ok     bool
	}{
		{"baseline", DefaultFormat, true},
		{"zero sample rate", Format{SampleRate: 0, FFTSize: 256, WindowSize: 256}, false},
		{"odd fft size", Format{SampleRate: 44100, FFTSize: 255, WindowSize: 256}, false},
		{"zero fft size", Format{SampleRate: 44100, FFTSize: 0, WindowSize: 256}, false},
		{"zero window", Format{SampleRate: 44100, FFTSize: 256, WindowSize: 0}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.format.Validate()
			if tt.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.ok && err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestSyntheticSource_ScriptPlayback(t *testing.T) {
	src := NewSyntheticSource([]ScriptSegment{
		{Ticks: 2, FreqHz: 150, Amplitude: 0.5},
		{Ticks: 1},
	})

	for i := 0; i < 2; i++ {
		frame, ok := src.Next()
		if !ok {
			t.Fatalf("expected voice frame %d", i)
		}
		var energy float64
		for _, m := range frame.FrequencyMagnitudes {
			energy += m * m
		}
		if energy == 0 {
			t.Errorf("voice frame %d has no spectral energy", i)
		}
		var peak float64
		for _, s := range frame.TimeSamples {
			if s > peak {
				peak = s
			}
		}
		if peak == 0 {
			t.Errorf("voice frame %d has a flat time signal", i)
		}
	}

	frame, ok := src.Next()
	if !ok {
		t.Fatal("expected silence frame")
	}
	for i, m := range frame.FrequencyMagnitudes {
		if m != 0 {
			t.Fatalf("silence frame has energy at bin %d", i)
		}
	}

	if _, ok := src.Next(); ok {
		t.Error("expected source exhaustion after the script")
	}
}

func TestSyntheticSource_SpeechShape(t *testing.T) {
	src := NewSyntheticSource([]ScriptSegment{{Ticks: 1, FreqHz: 150, Amplitude: 0.5}})
	frame, _ := src.Next()
	mags := frame.FrequencyMagnitudes

	// Fundamental and formant regions carry energy, the high band does not.
	if mags[2] != 0.5 {
		t.Errorf("expected fundamental magnitude 0.5 at bin 2, got %f", mags[2])
	}
	if mags[20] <= 0.5 {
		t.Errorf("expected stronger formant magnitude at bin 20, got %f", mags[20])
	}
	for i := 48; i < len(mags); i++ {
		if mags[i] != 0 {
			t.Fatalf("unexpected high-band energy at bin %d", i)
		}
	}
}

func TestSyntheticSource_HighFrequencyNoise(t *testing.T) {
	src := NewSyntheticSource([]ScriptSegment{{Ticks: 1, NoiseHF: 0.3}})
	frame, _ := src.Next()
	mags := frame.FrequencyMagnitudes

	half := len(mags) / 2
	if mags[half-1] != 0 {
		t.Errorf("expected no energy below the noise band, got %f", mags[half-1])
	}
	if mags[half] != 0.3 || mags[len(mags)-1] != 0.3 {
		t.Errorf("expected flat 0.3 noise in the upper half, got %f / %f", mags[half], mags[len(mags)-1])
	}
}
