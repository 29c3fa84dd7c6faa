package detect

import (
	"math"
	"testing"

	"speech-segmentation-service/internal/audio"
)

func newTestClassifier() *Classifier {
	return NewClassifier(BandsFor(audio.DefaultFormat))
}

func TestClassify_SilenceFastPath(t *testing.T) {
	c := newTestClassifier()

	res := c.Classify(VoiceFeatures{ShortTimeEnergy: 0.005}, make([]float64, 128))

	if res.IsHumanVoice || res.IsComputerAudio {
		t.Error("silence should classify as neither voice nor computer audio")
	}
	if res.Confidence != SilenceConfidence {
		t.Errorf("expected silence confidence %f, got %f", SilenceConfidence, res.Confidence)
	}
	if res.AudioLevel != 0 {
		t.Errorf("expected zero audio level for silence, got %f", res.AudioLevel)
	}
}

func TestClassify_HumanVoice(t *testing.T) {
	ex := NewExtractor(audio.DefaultFormat)
	c := NewClassifier(ex.Bands())

	// Speech-shaped frame: fundamental energy plus a stronger formant region,
	// nothing in the high band.
	amps := fillRange(nil, 1, 4, 0.3)
	amps = fillRange(amps, 12, 47, 0.4)
	frame := voiceFrame(amps, nil)

	features, err := ex.Extract(frame)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	res := c.Classify(features, frame.FrequencyMagnitudes)

	if !res.IsHumanVoice {
		t.Error("expected speech-shaped frame to classify as human voice")
	}
	if res.IsComputerAudio {
		t.Error("human voice frame also flagged as computer audio")
	}
	if res.Confidence < 0.5 {
		t.Errorf("expected confidence >= 0.5 for strong voice evidence, got %f", res.Confidence)
	}
	if res.AudioLevel <= MinVoiceEnergy*audioLevelScale {
		t.Errorf("expected audible level, got %f", res.AudioLevel)
	}
}

func TestClassify_ComputerAudio(t *testing.T) {
	ex := NewExtractor(audio.DefaultFormat)
	c := NewClassifier(ex.Bands())

	// Flat broadband spectrum with a buzzy time signal: heavy high-frequency
	// content, high rolloff, and (on the first frame) zero energy variation.
	amps := fillRange(nil, 0, 127, 0.2)
	samples := make([]float64, audio.DefaultFormat.WindowSize)
	for i := range samples {
		samples[i] = 0.1 * math.Pow(-1, float64(i))
	}
	frame := voiceFrame(amps, samples)

	features, err := ex.Extract(frame)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	res := c.Classify(features, frame.FrequencyMagnitudes)

	if !res.IsComputerAudio {
		t.Error("expected flat broadband frame to classify as computer audio")
	}
	if res.IsHumanVoice {
		t.Error("computer audio frame also flagged as human voice")
	}
	if res.Confidence <= 0 {
		t.Errorf("expected positive confidence, got %f", res.Confidence)
	}
}

func TestClassify_AmbiguousDefaultsToNeither(t *testing.T) {
	c := newTestClassifier()

	// Audible but matching no evidence rule on either side.
	features := VoiceFeatures{
		ShortTimeEnergy:   0.02,
		FundamentalEnergy: 0.005,
		FormantEnergy:     0.005,
		ZeroCrossingRate:  0.7,
		SpectralCentroid:  0.7,
		SpectralRolloff:   0.5,
		EnergyVariation:   0.05,
	}
	res := c.Classify(features, make([]float64, 128))

	if res.IsHumanVoice || res.IsComputerAudio {
		t.Error("expected ambiguous frame to classify as neither")
	}
	if res.Confidence != 0 {
		t.Errorf("expected zero confidence with no evidence, got %f", res.Confidence)
	}
	if res.AudioLevel != 20 {
		t.Errorf("expected audio level 20, got %f", res.AudioLevel)
	}
}

func TestClassify_ConfidenceClamped(t *testing.T) {
	c := newTestClassifier()

	// Every rule on both sides fires; confidence must still cap at 1.
	features := VoiceFeatures{
		ShortTimeEnergy:   0.05,
		FundamentalEnergy: 0.02,
		FormantEnergy:     0.2,
		ZeroCrossingRate:  0.3,
		SpectralCentroid:  0.4,
		SpectralRolloff:   0.9,
		EnergyVariation:   0.001,
	}
	mags := make([]float64, 128)
	for i := 48; i < 128; i++ {
		mags[i] = 0.5
	}
	res := c.Classify(features, mags)

	if res.Confidence != 1 {
		t.Errorf("expected confidence clamped to 1, got %f", res.Confidence)
	}
	if !res.IsHumanVoice {
		t.Error("human evidence outweighs computer evidence here")
	}
}

func TestAudioLevel_Clamped(t *testing.T) {
	tests := []struct {
		energy float64
		want   float64
	}{
		{0, 0},
		{0.02, 20},
		{0.1, 100},
		{0.5, 100},
	}
	for _, tt := range tests {
		if got := audioLevel(tt.energy); got != tt.want {
			t.Errorf("audioLevel(%f) = %f, want %f", tt.energy, got, tt.want)
		}
	}
}
