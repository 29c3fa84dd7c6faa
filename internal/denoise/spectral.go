// Package denoise implements the noise suppression path: spectral subtraction
// driven by the classifier's voice/silence decisions, a wavelet soft-threshold
// for the time-domain signal, and an LMS adaptive filter building block.
package denoise

const (
	// noiseEMAKeep / noiseEMAAdd set the silence-only exponential moving
	// average for the noise spectrum estimate.
	noiseEMAKeep = 0.95
	noiseEMAAdd  = 0.05

	// overSubtraction (alpha) controls how aggressively noise is removed.
	overSubtraction = 2.0

	// gainFloor (beta) bounds the suppression gain away from zero.
	gainFloor = 0.01

	// gainSmoothKeep / gainSmoothFloor pull the raw gain toward the floor to
	// reduce musical-noise artifacts.
	gainSmoothKeep  = 0.8
	gainSmoothFloor = 0.2
)

// SpectralSubtractor removes an estimated noise spectrum from voice frames.
// The estimate is seeded from the first silence frame and refined only during
// silence; until then suppression is a pass-through.
type SpectralSubtractor struct {
	noise       []float64
	initialized bool
}

// NewSpectralSubtractor returns an uninitialized subtractor.
func NewSpectralSubtractor() *SpectralSubtractor {
	return &SpectralSubtractor{}
}

// Initialized reports whether a noise estimate exists yet.
func (s *SpectralSubtractor) Initialized() bool { return s.initialized }

// UpdateNoise folds a silence frame into the noise estimate. The first call
// copies the spectrum directly; later calls apply the EMA. Voice frames must
// not be fed here.
func (s *SpectralSubtractor) UpdateNoise(spectrum []float64) {
	if !s.initialized || len(s.noise) != len(spectrum) {
		s.noise = append(s.noise[:0], spectrum...)
		s.initialized = true
		return
	}
	for i, v := range spectrum {
		s.noise[i] = noiseEMAKeep*s.noise[i] + noiseEMAAdd*v
	}
}

// Suppress applies per-bin gain suppression to a voice frame and returns a new
// spectrum. Input is returned unchanged until a noise estimate exists. Bins
// where signal and noise are not both positive pass through.
func (s *SpectralSubtractor) Suppress(spectrum []float64) []float64 {
	if !s.initialized || len(s.noise) != len(spectrum) {
		return spectrum
	}
	out := make([]float64, len(spectrum))
	for i, sig := range spectrum {
		noise := s.noise[i]
		if sig <= 0 || noise <= 0 {
			out[i] = sig
			continue
		}
		snr := sig / noise
		gain := 1 - overSubtraction/snr
		if gain < gainFloor {
			gain = gainFloor
		}
		smoothed := gainSmoothKeep*gain + gainSmoothFloor*gainFloor
		out[i] = smoothed * sig
	}
	return out
}

// Reset discards the noise estimate.
func (s *SpectralSubtractor) Reset() {
	s.noise = s.noise[:0]
	s.initialized = false
}
