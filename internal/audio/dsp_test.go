package audio

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tone writes a sine burst of the given amplitude into dst[start:start+n].
func tone(dst []float64, start, n int, amp float64) {
	for i := 0; i < n; i++ {
		dst[start+i] = amp * math.Sin(2*math.Pi*440*float64(i)/float64(SampleRate))
	}
}

func TestPeakNormalize(t *testing.T) {
	in := []float64{0.1, -0.5, 0.25}
	out := PeakNormalize(in)
	assert.InDelta(t, -1.0, out[1], 1e-9)
	assert.InDelta(t, 0.2, out[0], 1e-9)

	silent := make([]float64, 100)
	assert.Equal(t, silent, PeakNormalize(silent))
}

func TestSplitVoicedTrimsSilence(t *testing.T) {
	// One second of signal: a loud burst in the middle, silence elsewhere.
	samples := make([]float64, SampleRate)
	tone(samples, 6000, 4000, 0.8)

	intervals := SplitVoiced(samples, 30)
	require.NotEmpty(t, intervals)

	// Intervals must be ordered and non-overlapping.
	for i := 1; i < len(intervals); i++ {
		assert.Greater(t, intervals[i].Start, intervals[i-1].End)
	}

	voiced := Concat(samples, intervals)
	assert.Less(t, len(voiced), len(samples), "silence should be discarded")
	assert.Greater(t, len(voiced), 3000, "the burst itself should survive")
}

func TestSplitVoicedAllSilent(t *testing.T) {
	assert.Nil(t, SplitVoiced(make([]float64, SampleRate/2), 30))
	assert.Nil(t, SplitVoiced(nil, 30))
	assert.Empty(t, Concat(nil, nil))
}

func TestDenoisePreservesLength(t *testing.T) {
	samples := make([]float64, SampleRate/2)
	tone(samples, 0, len(samples), 0.5)
	out := Denoise(samples)
	assert.Len(t, out, len(samples))

	// A short signal passes through untouched.
	short := []float64{0.1, 0.2}
	assert.Equal(t, short, Denoise(short))
}

func TestDenoiseAttenuatesNoiseAroundTone(t *testing.T) {
	// Tone plus low broadband noise: the tone bin dominates the noise
	// profile, so overall energy must not grow.
	samples := make([]float64, SampleRate/2)
	tone(samples, 0, len(samples), 0.5)
	for i := range samples {
		samples[i] += 0.01 * math.Sin(float64(i*i%97))
	}
	out := Denoise(samples)

	var inE, outE float64
	for i := range samples {
		inE += samples[i] * samples[i]
		outE += out[i] * out[i]
	}
	assert.LessOrEqual(t, outE, inE*1.05)
}
