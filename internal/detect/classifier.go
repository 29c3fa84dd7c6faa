package detect

// Classifier thresholds and weights. These are exact behavioral contracts:
// the scorer was hand-tuned against these published values and golden tests
// pin them. Changing any of them changes classification materially.
const (
	// MinVoiceEnergy is the fast silence gate; frames below it short-circuit.
	MinVoiceEnergy = 0.01

	// SilenceConfidence is reported on the fast silence path.
	SilenceConfidence = 0.9

	// Human-voice evidence.
	fundamentalEnergyMin  = 0.01
	fundamentalWeight     = 0.3
	formantRatioMin       = 1.5
	formantRatioWeight    = 0.4
	zcrVoiceLo            = 0.1
	zcrVoiceHi            = 0.5
	zcrWeight             = 0.2
	centroidVoiceLo       = 0.2
	centroidVoiceHi       = 0.6
	centroidWeight        = 0.1
	humanScoreMin         = 0.2

	// Computer-audio evidence.
	highFreqRatioMin      = 0.5
	highFreqWeight        = 0.3
	rolloffComputerMin    = 0.7
	rolloffWeight         = 0.2
	energyVariationMax    = 0.01
	energyVariationWeight = 0.1
	computerScoreMin      = 0.3

	// ratioEpsilon keeps band ratios finite when the denominator is ~0.
	ratioEpsilon = 0.001

	// audioLevelScale maps short-time energy onto the 0-100 display range.
	audioLevelScale = 1000.0
)

// DetectionResult is the per-tick classification outcome.
type DetectionResult struct {
	IsHumanVoice    bool
	IsComputerAudio bool
	Confidence      float64 // [0,1]
	Features        VoiceFeatures
	AudioLevel      float64 // [0,100]
}

// Classifier scores extracted features against weighted rules. Deterministic
// and stateless; band geometry comes from the extractor so the high band
// tracks the source format.
type Classifier struct {
	bands Bands
}

// NewClassifier creates a classifier over the given band geometry.
func NewClassifier(bands Bands) *Classifier {
	return &Classifier{bands: bands}
}

// Classify runs the ordered heuristic scorer. Ambiguity is never an error:
// the result always lands on a definite decision, defaulting toward silence
// (both flags false) when the evidence is weak.
func (c *Classifier) Classify(features VoiceFeatures, mags []float64) DetectionResult {
	res := DetectionResult{Features: features}

	// Fast silence path.
	if features.ShortTimeEnergy < MinVoiceEnergy {
		res.Confidence = SilenceConfidence
		return res
	}

	var humanScore float64
	if features.FundamentalEnergy > fundamentalEnergyMin {
		humanScore += fundamentalWeight
	}
	if features.FormantEnergy/(features.FundamentalEnergy+ratioEpsilon) > formantRatioMin {
		humanScore += formantRatioWeight
	}
	if features.ZeroCrossingRate >= zcrVoiceLo && features.ZeroCrossingRate <= zcrVoiceHi {
		humanScore += zcrWeight
	}
	if features.SpectralCentroid > centroidVoiceLo && features.SpectralCentroid < centroidVoiceHi {
		humanScore += centroidWeight
	}

	var computerScore float64
	highFreq := bandEnergy(mags, c.bands.HighLo, c.bands.HighHi)
	if highFreq/(features.ShortTimeEnergy+ratioEpsilon) > highFreqRatioMin {
		computerScore += highFreqWeight
	}
	if features.SpectralRolloff > rolloffComputerMin {
		computerScore += rolloffWeight
	}
	if features.EnergyVariation < energyVariationMax {
		computerScore += energyVariationWeight
	}

	res.AudioLevel = audioLevel(features.ShortTimeEnergy)

	totalScore := humanScore + computerScore
	if totalScore == 0 {
		return res
	}

	res.Confidence = totalScore
	if res.Confidence > 1 {
		res.Confidence = 1
	}

	switch {
	case humanScore > computerScore && humanScore > humanScoreMin:
		res.IsHumanVoice = true
	case computerScore > computerScoreMin:
		res.IsComputerAudio = true
	}
	return res
}

func audioLevel(shortTimeEnergy float64) float64 {
	level := shortTimeEnergy * audioLevelScale
	if level > 100 {
		return 100
	}
	return level
}
