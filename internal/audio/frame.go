// Package audio defines the frame contract between the capture layer and the
// detection pipeline, plus helpers for packaging buffered audio for handoff.
package audio

import (
	"fmt"
	"math"
)

// Format describes the analysis geometry of a frame source. The detector uses
// it to place frequency bands correctly when the source differs from the
// 44.1kHz / 256-point baseline.
type Format struct {
	SampleRate int // Hz
	FFTSize    int // analysis FFT length; bin count is FFTSize/2
	WindowSize int // time-domain samples per frame
}

// DefaultFormat is the 44.1kHz / 256-point baseline the band constants were
// calibrated against.
var DefaultFormat = Format{
	SampleRate: 44100,
	FFTSize:    256,
	WindowSize: 256,
}

// BinCount returns the number of frequency bins a source with this format yields.
func (f Format) BinCount() int {
	return f.FFTSize / 2
}

// BinFor maps a frequency in Hz to its FFT bin index for this format.
func (f Format) BinFor(freqHz float64) int {
	return int(freqHz * float64(f.FFTSize) / float64(f.SampleRate))
}

// Validate checks the format for values the pipeline cannot work with.
func (f Format) Validate() error {
	if f.SampleRate <= 0 {
		return fmt.Errorf("invalid sample rate %d", f.SampleRate)
	}
	if f.FFTSize <= 0 || f.FFTSize%2 != 0 {
		return fmt.Errorf("invalid fft size %d", f.FFTSize)
	}
	if f.WindowSize <= 0 {
		return fmt.Errorf("invalid window size %d", f.WindowSize)
	}
	return nil
}

// Frame is one tick of analysis data from a frame source.
// FrequencyMagnitudes are normalized to [0,1] per bin; TimeSamples to [-1,1].
type Frame struct {
	FrequencyMagnitudes []float64
	TimeSamples         []float64
}

// FrameSource yields frames at a fixed period. Implementations sit outside the
// core (microphone capture, file playback); the synthetic source below exists
// for tests and the demo binary.
type FrameSource interface {
	Format() Format

	// Next returns the next frame, or ok=false when the source is exhausted
	// or stopped.
	Next() (Frame, bool)
}

// SyntheticSource generates frames from a fixed script of segments, each a
// speech-shaped tone (or silence) held for a number of ticks. It implements
// FrameSource.
type SyntheticSource struct {
	format Format
	script []ScriptSegment
	seg    int
	tick   int
	phase  float64
}

// ScriptSegment is one stretch of generated audio. Voice segments produce a
// speech-shaped spectrum (fundamental band energy plus a stronger formant
// region) and a sine at FreqHz in the time domain.
type ScriptSegment struct {
	Ticks     int     // how many frames this segment lasts
	FreqHz    float64 // time-domain tone frequency; 0 means silence
	Amplitude float64 // peak amplitude in [0,1]
	NoiseHF   float64 // extra flat magnitude added to the upper half of the spectrum
}

// NewSyntheticSource creates a source over the given script using the baseline
// format.
func NewSyntheticSource(script []ScriptSegment) *SyntheticSource {
	return &SyntheticSource{format: DefaultFormat, script: script}
}

func (s *SyntheticSource) Format() Format { return s.format }

// Next synthesizes the next frame of the script.
func (s *SyntheticSource) Next() (Frame, bool) {
	for s.seg < len(s.script) && s.tick >= s.script[s.seg].Ticks {
		s.seg++
		s.tick = 0
	}
	if s.seg >= len(s.script) {
		return Frame{}, false
	}
	seg := s.script[s.seg]
	s.tick++

	frame := Frame{
		FrequencyMagnitudes: make([]float64, s.format.BinCount()),
		TimeSamples:         make([]float64, s.format.WindowSize),
	}
	if seg.Amplitude == 0 && seg.NoiseHF == 0 {
		return frame, true
	}

	if seg.FreqHz > 0 && seg.Amplitude > 0 {
		// Speech shape: fundamental band energy plus a stronger formant
		// region, mirroring where real voiced audio carries its power.
		formantAmp := seg.Amplitude * 1.3
		if formantAmp > 1 {
			formantAmp = 1
		}
		fillBand(frame.FrequencyMagnitudes, 1, 4, seg.Amplitude)
		fillBand(frame.FrequencyMagnitudes, 12, 47, formantAmp)

		step := 2 * math.Pi * seg.FreqHz / float64(s.format.SampleRate)
		for i := range frame.TimeSamples {
			frame.TimeSamples[i] = seg.Amplitude * math.Sin(s.phase)
			s.phase += step
		}
	}
	if seg.NoiseHF > 0 {
		half := len(frame.FrequencyMagnitudes) / 2
		for i := half; i < len(frame.FrequencyMagnitudes); i++ {
			frame.FrequencyMagnitudes[i] += seg.NoiseHF
		}
	}
	return frame, true
}

// fillBand sets a flat magnitude across a bin range given at the 128-bin
// baseline, scaled proportionally to the actual spectrum size.
func fillBand(mags []float64, loBase, hiBase int, amp float64) {
	scale := float64(len(mags)) / 128
	lo := int(float64(loBase) * scale)
	hi := int(float64(hiBase) * scale)
	for i := lo; i <= hi && i < len(mags); i++ {
		if mags[i] < amp {
			mags[i] = amp
		}
	}
}
