package denoise

// Processor orchestrates the suppression path for one recording session:
// silence frames refine the noise spectrum estimate, voice frames get
// spectral subtraction. This noise estimate is silence-only and separate from
// the detector's every-tick noise floor tracker.
type Processor struct {
	subtractor *SpectralSubtractor
	wavelet    *WaveletDenoiser
	enabled    bool

	lastDenoised []float64
}

// NewProcessor returns an enabled processor.
func NewProcessor() *Processor {
	return &Processor{
		subtractor: NewSpectralSubtractor(),
		wavelet:    NewWaveletDenoiser(),
		enabled:    true,
	}
}

// SetEnabled toggles the whole suppression path. When disabled, Process is a
// pass-through.
func (p *Processor) SetEnabled(enabled bool) { p.enabled = enabled }

// Enabled reports whether suppression is active.
func (p *Processor) Enabled() bool { return p.enabled }

// Process runs one tick of the suppression path and returns the (possibly
// spectrally subtracted) spectrum.
//
// The wavelet-denoised time signal is computed and retained but not merged
// into the returned spectrum; LastDenoised exposes it for consumers that want
// the cleaned time-domain signal.
func (p *Processor) Process(spectrum, timeSamples []float64, isVoice bool, noiseLevel float64) []float64 {
	if !p.enabled {
		return spectrum
	}

	if !isVoice {
		p.subtractor.UpdateNoise(spectrum)
	}

	out := spectrum
	if isVoice {
		out = p.subtractor.Suppress(spectrum)
	}

	p.wavelet.SetNoiseLevel(noiseLevel)
	p.lastDenoised = p.wavelet.Denoise(timeSamples)

	return out
}

// LastDenoised returns the wavelet-denoised time signal from the most recent
// Process call.
func (p *Processor) LastDenoised() []float64 { return p.lastDenoised }

// Reset clears the noise estimate and cached signal.
func (p *Processor) Reset() {
	p.subtractor.Reset()
	p.lastDenoised = nil
}
