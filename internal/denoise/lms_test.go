package denoise

import (
	"math"
	"testing"
)

func TestNewLMSFilter_Defaults(t *testing.T) {
	f := NewLMSFilter(0, 0.05)
	if len(f.Weights()) != DefaultFilterLength {
		t.Errorf("expected %d taps, got %d", DefaultFilterLength, len(f.Weights()))
	}
	for i, w := range f.Weights() {
		if math.Abs(w) > weightInitSpan {
			t.Errorf("initial weight %d out of range: %f", i, w)
		}
	}
}

func TestNewLMSFilter_LearningRateClamped(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{0, minLearningRate},
		{-1, minLearningRate},
		{0.05, 0.05},
		{5, maxLearningRate},
	}
	for _, tt := range tests {
		f := NewLMSFilter(8, tt.in)
		if f.learningRate != tt.want {
			t.Errorf("NewLMSFilter(8, %f) learning rate = %f, want %f", tt.in, f.learningRate, tt.want)
		}
	}
}

func TestLMSFilter_ShortInputPassesDesiredThrough(t *testing.T) {
	f := NewLMSFilter(8, 0.01)
	if got := f.Filter([]float64{0.1, 0.2}, 0.7); got != 0.7 {
		t.Errorf("expected desired value 0.7 for short input, got %f", got)
	}
}

func TestLMSFilter_AdaptsTowardDesired(t *testing.T) {
	f := NewLMSFilter(8, 0.05)

	// A constant input with a constant desired output is learnable; the
	// prediction error should shrink as the weights adapt.
	input := make([]float64, 8)
	for i := range input {
		input[i] = 0.5
	}

	first := math.Abs(1.0 - f.Filter(input, 1.0))
	var last float64
	for i := 0; i < 200; i++ {
		last = math.Abs(1.0 - f.Filter(input, 1.0))
	}

	if last >= first {
		t.Errorf("error did not shrink: first %f, last %f", first, last)
	}
	if last > 0.05 {
		t.Errorf("expected near-zero error after adaptation, got %f", last)
	}
}

func TestLMSFilter_UsesTrailingWindow(t *testing.T) {
	f := NewLMSFilter(4, 0.01)
	for i := range f.weights {
		f.weights[i] = 1
	}

	// Only the last four samples should contribute.
	got := f.Filter([]float64{100, 100, 1, 2, 3, 4}, 0)
	if got != 10 {
		t.Errorf("expected output 10 from trailing window, got %f", got)
	}
}
