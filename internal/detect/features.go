// Package detect implements the per-frame voice detection pipeline: spectral
// feature extraction, ambient noise floor tracking, and the heuristic
// voice/computer-audio classifier.
package detect

import (
	"fmt"
	"math"

	"speech-segmentation-service/internal/audio"
)

// energyHistoryDepth bounds the short-time-energy history used for the
// energy variation feature.
const energyHistoryDepth = 10

// VoiceFeatures are the scalar features derived from one frame plus bounded
// recent history. All values are non-negative except none; centroid and
// rolloff are normalized to [0,1].
type VoiceFeatures struct {
	FundamentalEnergy float64 // mean squared magnitude, ~86-344Hz band
	FormantEnergy     float64 // mean squared magnitude, ~1031-4031Hz band
	SpectralCentroid  float64
	SpectralRolloff   float64
	ZeroCrossingRate  float64
	ShortTimeEnergy   float64
	EnergyVariation   float64 // mean abs delta over recent short-time energy
	SpectralFlux      float64 // RMS per-bin delta vs the previous frame
}

// Bands holds the bin ranges for the three frequency bands, inclusive on both
// ends. They are recomputed from the source format so the calibrated bands
// hold at any FFT size / sample rate.
type Bands struct {
	FundamentalLo, FundamentalHi int
	FormantLo, FormantHi         int
	HighLo, HighHi               int
}

// Band edges in bins at the 44.1kHz / 256-point baseline (128 bins):
// fundamental ~86-344Hz, formant ~1-4kHz, high band 4kHz to Nyquist.
const (
	baselineBins          = 128
	baselineFundamentalLo = 1
	baselineFundamentalHi = 4
	baselineFormantLo     = 12
	baselineFormantHi     = 47
	baselineHighLo        = 48
)

// BandsFor computes band bin ranges for a source format by scaling the
// baseline bins proportionally, which keeps the band frequencies fixed.
func BandsFor(f audio.Format) Bands {
	scale := float64(f.BinCount()) / baselineBins
	at := func(bin int) int {
		scaled := int(float64(bin) * scale)
		if scaled < 0 {
			return 0
		}
		if last := f.BinCount() - 1; scaled > last {
			return last
		}
		return scaled
	}
	return Bands{
		FundamentalLo: at(baselineFundamentalLo),
		FundamentalHi: at(baselineFundamentalHi),
		FormantLo:     at(baselineFormantLo),
		FormantHi:     at(baselineFormantHi),
		HighLo:        at(baselineHighLo),
		HighHi:        f.BinCount() - 1,
	}
}

// Extractor derives VoiceFeatures from frames. It owns the previous-frame
// spectrum cache and the bounded energy history; one instance per recording
// session, never shared.
type Extractor struct {
	format        audio.Format
	bands         Bands
	prevSpectrum  []float64
	energyHistory []float64
}

// NewExtractor creates an extractor for sources with the given format.
func NewExtractor(format audio.Format) *Extractor {
	return &Extractor{
		format: format,
		bands:  BandsFor(format),
	}
}

// Bands returns the band geometry the extractor (and classifier) operate on.
func (e *Extractor) Bands() Bands { return e.bands }

// Reset clears the previous-frame cache and energy history. Call between
// recording sessions.
func (e *Extractor) Reset() {
	e.prevSpectrum = nil
	e.energyHistory = e.energyHistory[:0]
}

// Extract computes the features for one frame and advances the extractor's
// bounded history. Frames with unexpected array lengths are rejected; the
// caller treats that tick as silence.
func (e *Extractor) Extract(frame audio.Frame) (VoiceFeatures, error) {
	mags := frame.FrequencyMagnitudes
	if len(mags) != e.format.BinCount() {
		return VoiceFeatures{}, fmt.Errorf("frequency array length %d, want %d", len(mags), e.format.BinCount())
	}
	if len(frame.TimeSamples) != e.format.WindowSize {
		return VoiceFeatures{}, fmt.Errorf("time array length %d, want %d", len(frame.TimeSamples), e.format.WindowSize)
	}

	f := VoiceFeatures{
		FundamentalEnergy: bandEnergy(mags, e.bands.FundamentalLo, e.bands.FundamentalHi),
		FormantEnergy:     bandEnergy(mags, e.bands.FormantLo, e.bands.FormantHi),
		SpectralCentroid:  spectralCentroid(mags),
		SpectralRolloff:   spectralRolloff(mags),
		ZeroCrossingRate:  zeroCrossingRate(frame.TimeSamples),
		ShortTimeEnergy:   bandEnergy(mags, 0, len(mags)-1),
		SpectralFlux:      spectralFlux(mags, e.prevSpectrum),
	}

	e.energyHistory = append(e.energyHistory, f.ShortTimeEnergy)
	if len(e.energyHistory) > energyHistoryDepth {
		e.energyHistory = e.energyHistory[1:]
	}
	f.EnergyVariation = energyVariation(e.energyHistory)

	e.prevSpectrum = append(e.prevSpectrum[:0], mags...)
	return f, nil
}

// bandEnergy is the mean squared magnitude over bins [lo,hi] inclusive.
func bandEnergy(mags []float64, lo, hi int) float64 {
	if hi < lo {
		return 0
	}
	var sum float64
	for i := lo; i <= hi; i++ {
		sum += mags[i] * mags[i]
	}
	return sum / float64(hi-lo+1)
}

func spectralCentroid(mags []float64) float64 {
	var weighted, total float64
	for i, m := range mags {
		weighted += float64(i) * m
		total += m
	}
	if total == 0 {
		return 0
	}
	return weighted / total / float64(len(mags))
}

// spectralRolloff returns the normalized index below which 85% of the
// magnitude lies, or 1.0 if the threshold is never reached.
func spectralRolloff(mags []float64) float64 {
	var total float64
	for _, m := range mags {
		total += m
	}
	threshold := 0.85 * total
	var cum float64
	for i, m := range mags {
		cum += m
		if cum >= threshold {
			return float64(i) / float64(len(mags))
		}
	}
	return 1.0
}

func zeroCrossingRate(samples []float64) float64 {
	if len(samples) < 2 {
		return 0
	}
	crossings := 0
	for i := 1; i < len(samples); i++ {
		if (samples[i] >= 0) != (samples[i-1] >= 0) {
			crossings++
		}
	}
	return float64(crossings) / float64(len(samples)-1)
}

// energyVariation is the mean absolute difference between consecutive history
// entries; 0 with fewer than two samples.
func energyVariation(history []float64) float64 {
	if len(history) < 2 {
		return 0
	}
	var sum float64
	for i := 1; i < len(history); i++ {
		sum += math.Abs(history[i] - history[i-1])
	}
	return sum / float64(len(history)-1)
}

// spectralFlux is the RMS of per-bin magnitude differences against the
// previous frame; 0 on the first frame.
func spectralFlux(mags, prev []float64) float64 {
	if len(prev) != len(mags) {
		return 0
	}
	var sum float64
	for i := range mags {
		d := mags[i] - prev[i]
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(mags)))
}
