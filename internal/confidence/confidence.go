// Package confidence holds the scoring formulas that make extraction results
// comparable across formats: log-probability scaling for transcription and
// length-weighted token confidence for OCR.
package confidence

import "math"

// Token is an OCR token with the engine-reported confidence on its native
// 0-100 scale.
type Token struct {
	Text       string
	Confidence float64
}

// FromLogProb scales a segment's average log-probability into [0,1].
// Log-probabilities normally fall in [-1,0]; values outside that range are
// clamped so a result can never report confidence outside [0,1].
func FromLogProb(avgLogProb float64) float64 {
	c := (1 + avgLogProb) / 2
	if c < 0 {
		c = 0
	} else if c > 1 {
		c = 1
	}
	return Round(c, 3)
}

// MeanOfSegments aggregates per-segment confidences into a document score by
// arithmetic mean. Returns nil for zero segments: no evidence, no score.
func MeanOfSegments(confs []float64) *float64 {
	if len(confs) == 0 {
		return nil
	}
	var sum float64
	for _, c := range confs {
		sum += c
	}
	mean := Round(sum/float64(len(confs)), 3)
	return &mean
}

// WeightedTokenScore aggregates OCR token confidences weighted by character
// length, so a few long confident words outweigh many short noise tokens.
// Input tokens are assumed to have already passed the minimum-confidence
// filter. Returns 0 when no tokens remain. The result stays on the engine's
// 0-100 scale; callers normalize at the result boundary.
func WeightedTokenScore(tokens []Token) float64 {
	var weightedSum, totalWeight float64
	for _, tok := range tokens {
		w := float64(len([]rune(tok.Text)))
		weightedSum += tok.Confidence * w
		totalWeight += w
	}
	if totalWeight == 0 {
		return 0
	}
	return Round(weightedSum/totalWeight, 2)
}

// Round rounds v to the given number of decimal places. Only final values are
// rounded; intermediate sums keep full precision.
func Round(v float64, places int) float64 {
	pow := math.Pow(10, float64(places))
	return math.Round(v*pow) / pow
}
