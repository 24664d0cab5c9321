package confidence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromLogProb(t *testing.T) {
	tests := []struct {
		avgLogProb float64
		want       float64
	}{
		{0, 0.5},
		{-0.5, 0.25},
		{-1, 0},
		{-2, 0},   // clamped low
		{0.5, 0.75},
		{1.5, 1},  // clamped high
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, FromLogProb(tt.avgLogProb), 1e-9, "avg_logprob=%v", tt.avgLogProb)
	}
}

func TestMeanOfSegments(t *testing.T) {
	confs := []float64{FromLogProb(0), FromLogProb(-0.5), FromLogProb(-1)}
	got := MeanOfSegments(confs)
	require.NotNil(t, got)
	assert.InDelta(t, 0.25, *got, 1e-9)

	assert.Nil(t, MeanOfSegments(nil), "zero segments must yield nil, not a division by zero")
}

func TestWeightedTokenScore(t *testing.T) {
	tokens := []Token{
		{Text: "ab", Confidence: 90},
		{Text: "cdef", Confidence: 50},
	}
	// (90*2 + 50*4) / (2+4) = 63.33
	assert.InDelta(t, 63.33, WeightedTokenScore(tokens), 1e-9)

	assert.Equal(t, 0.0, WeightedTokenScore(nil))
	assert.Equal(t, 0.0, WeightedTokenScore([]Token{}))
}

func TestWeightedTokenScoreRoundsOnlyFinalValue(t *testing.T) {
	tokens := []Token{
		{Text: "a", Confidence: 33.333},
		{Text: "b", Confidence: 33.333},
		{Text: "c", Confidence: 33.334},
	}
	assert.InDelta(t, 33.33, WeightedTokenScore(tokens), 1e-9)
}

func TestRound(t *testing.T) {
	assert.Equal(t, 0.667, Round(2.0/3.0, 3))
	assert.Equal(t, 63.33, Round(63.3333, 2))
}
