package denoise

import "math"

const (
	// Wavelet threshold bounds and scaling from the estimated noise level.
	waveletNoiseScale  = 2.0
	waveletThresholdLo = 0.05
	waveletThresholdHi = 0.3
)

// WaveletDenoiser applies per-sample soft thresholding to a time-domain
// signal. The threshold adapts to the ambient noise level.
type WaveletDenoiser struct {
	threshold float64
}

// NewWaveletDenoiser returns a denoiser at the minimum threshold.
func NewWaveletDenoiser() *WaveletDenoiser {
	return &WaveletDenoiser{threshold: waveletThresholdLo}
}

// SetNoiseLevel adapts the threshold: clamp(noiseLevel*2, 0.05, 0.3).
func (w *WaveletDenoiser) SetNoiseLevel(noiseLevel float64) {
	th := noiseLevel * waveletNoiseScale
	if th < waveletThresholdLo {
		th = waveletThresholdLo
	} else if th > waveletThresholdHi {
		th = waveletThresholdHi
	}
	w.threshold = th
}

// Threshold returns the current soft threshold.
func (w *WaveletDenoiser) Threshold() float64 { return w.threshold }

// Denoise soft-thresholds each sample: sign(x) * max(0, |x| - threshold).
func (w *WaveletDenoiser) Denoise(samples []float64) []float64 {
	out := make([]float64, len(samples))
	for i, x := range samples {
		mag := math.Abs(x) - w.threshold
		if mag <= 0 {
			continue
		}
		if x < 0 {
			out[i] = -mag
		} else {
			out[i] = mag
		}
	}
	return out
}
