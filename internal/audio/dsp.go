package audio

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
)

const (
	fftSize = 1024
	fftHop  = fftSize / 4

	vadFrame = 2048
	vadHop   = 512
)

// Interval is a half-open voiced range [Start, End) in samples.
type Interval struct {
	Start int
	End   int
}

// Denoise applies spectral gating against a noise profile estimated from the
// whole signal: per-bin magnitude mean plus sigma across all STFT frames.
// Bins below the profile are subtracted down to a small floor.
func Denoise(samples []float64) []float64 {
	if len(samples) < fftSize {
		return samples
	}

	window := hann(fftSize)
	fft := fourier.NewFFT(fftSize)
	nBins := fftSize/2 + 1
	nFrames := 1 + (len(samples)-fftSize)/fftHop

	// First pass: noise profile over the whole signal.
	mean := make([]float64, nBins)
	m2 := make([]float64, nBins)
	frame := make([]float64, fftSize)
	coeff := make([]complex128, nBins)
	for i := 0; i < nFrames; i++ {
		off := i * fftHop
		for j := 0; j < fftSize; j++ {
			frame[j] = samples[off+j] * window[j]
		}
		fft.Coefficients(coeff, frame)
		for b := 0; b < nBins; b++ {
			mag := cmplxAbs(coeff[b])
			mean[b] += mag
			m2[b] += mag * mag
		}
	}
	thresh := make([]float64, nBins)
	n := float64(nFrames)
	for b := 0; b < nBins; b++ {
		mu := mean[b] / n
		variance := m2[b]/n - mu*mu
		if variance < 0 {
			variance = 0
		}
		thresh[b] = mu + 1.5*math.Sqrt(variance)
	}

	// Second pass: subtract the profile, overlap-add the result.
	out := make([]float64, len(samples))
	acc := make([]float64, len(samples))
	rebuilt := make([]float64, fftSize)
	for i := 0; i < nFrames; i++ {
		off := i * fftHop
		for j := 0; j < fftSize; j++ {
			frame[j] = samples[off+j] * window[j]
		}
		fft.Coefficients(coeff, frame)
		for b := 0; b < nBins; b++ {
			mag := cmplxAbs(coeff[b])
			if mag == 0 {
				continue
			}
			kept := mag - thresh[b]
			floor := 0.02 * mag
			if kept < floor {
				kept = floor
			}
			coeff[b] *= complex(kept/mag, 0)
		}
		fft.Sequence(rebuilt, coeff)
		for j := 0; j < fftSize; j++ {
			v := rebuilt[j] / float64(fftSize)
			out[off+j] += v * window[j]
			acc[off+j] += window[j] * window[j]
		}
	}
	for i := range out {
		if acc[i] > 1e-8 {
			out[i] /= acc[i]
		} else {
			out[i] = samples[i]
		}
	}
	return out
}

// PeakNormalize scales the waveform so its absolute peak is 1. A silent
// signal is returned unchanged.
func PeakNormalize(samples []float64) []float64 {
	var peak float64
	for _, s := range samples {
		if a := math.Abs(s); a > peak {
			peak = a
		}
	}
	if peak == 0 {
		return samples
	}
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = s / peak
	}
	return out
}

// SplitVoiced returns the voiced intervals of the signal: frames whose RMS
// energy sits within topDB of the loudest frame. Intervals are ordered,
// non-overlapping, and merged across adjacent voiced frames.
func SplitVoiced(samples []float64, topDB float64) []Interval {
	if len(samples) == 0 {
		return nil
	}

	var rms []float64
	for off := 0; off < len(samples); off += vadHop {
		end := off + vadFrame
		if end > len(samples) {
			end = len(samples)
		}
		var sum float64
		for _, s := range samples[off:end] {
			sum += s * s
		}
		rms = append(rms, math.Sqrt(sum/float64(end-off)))
	}

	var ref float64
	for _, r := range rms {
		if r > ref {
			ref = r
		}
	}
	if ref == 0 {
		return nil
	}

	var intervals []Interval
	for i, r := range rms {
		db := 20 * math.Log10(r/ref+1e-12)
		if db <= -topDB {
			continue
		}
		start := i * vadHop
		end := start + vadFrame
		if end > len(samples) {
			end = len(samples)
		}
		if n := len(intervals); n > 0 && start <= intervals[n-1].End {
			if end > intervals[n-1].End {
				intervals[n-1].End = end
			}
			continue
		}
		intervals = append(intervals, Interval{Start: start, End: end})
	}
	return intervals
}

// Concat joins the voiced intervals, discarding the silence between them.
func Concat(samples []float64, intervals []Interval) []float64 {
	var total int
	for _, iv := range intervals {
		total += iv.End - iv.Start
	}
	out := make([]float64, 0, total)
	for _, iv := range intervals {
		out = append(out, samples[iv.Start:iv.End]...)
	}
	return out
}

func hann(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
	}
	return w
}

func cmplxAbs(c complex128) float64 {
	return math.Hypot(real(c), imag(c))
}
