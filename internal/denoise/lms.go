package denoise

import "math/rand"

const (
	// DefaultFilterLength is the number of LMS taps.
	DefaultFilterLength = 32

	// Learning rate clamp range.
	minLearningRate = 0.001
	maxLearningRate = 0.1

	// weightInitSpan bounds the random initial weights to [-span, span].
	weightInitSpan = 0.0005
)

// LMSFilter is a least-mean-squares adaptive filter. It is a complete,
// independently usable building block; the suppression orchestration path
// does not currently invoke it.
type LMSFilter struct {
	weights      []float64
	learningRate float64
}

// NewLMSFilter creates a filter with the given tap count (DefaultFilterLength
// if length <= 0) and a learning rate clamped to [0.001, 0.1].
func NewLMSFilter(length int, learningRate float64) *LMSFilter {
	if length <= 0 {
		length = DefaultFilterLength
	}
	if learningRate < minLearningRate {
		learningRate = minLearningRate
	} else if learningRate > maxLearningRate {
		learningRate = maxLearningRate
	}
	weights := make([]float64, length)
	for i := range weights {
		weights[i] = (rand.Float64()*2 - 1) * weightInitSpan
	}
	return &LMSFilter{weights: weights, learningRate: learningRate}
}

// Filter produces one output sample from the last len(weights) samples of
// input and adapts the weights toward the desired value. Inputs shorter than
// the filter pass the desired value through unchanged.
func (f *LMSFilter) Filter(input []float64, desired float64) float64 {
	n := len(f.weights)
	if len(input) < n {
		return desired
	}
	window := input[len(input)-n:]

	var output float64
	for i, w := range f.weights {
		output += w * window[i]
	}

	err := desired - output
	for i := range f.weights {
		f.weights[i] += f.learningRate * err * window[i]
	}
	return output
}

// Weights returns the current tap weights (not a copy; callers must not
// mutate).
func (f *LMSFilter) Weights() []float64 { return f.weights }
