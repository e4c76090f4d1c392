package resample

import (
	"math"

	"github.com/2highsebas/openarms-backend/src/shared/lib/cerr"
)

// tapCount is the half-width of the sinc kernel in input samples.
const tapCount = 32

// Resample converts one channel of samples from fromRate to toRate using a
// Hann-windowed sinc kernel. The kernel cutoff tracks the lower of the two
// Nyquist frequencies, so downsampling doesn't alias.
func Resample(samples []float64, fromRate int, toRate int) ([]float64, error) {
	if fromRate <= 0 || toRate <= 0 {
		return nil, cerr.Fields(cerr.F{
			"from_rate": fromRate,
			"to_rate":   toRate,
		}).Error("Sample rates must be positive")
	}

	if fromRate == toRate {
		out := make([]float64, len(samples))
		copy(out, samples)
		return out, nil
	}

	if len(samples) == 0 {
		return []float64{}, nil
	}

	ratio := float64(toRate) / float64(fromRate)
	outLen := int(math.Ceil(float64(len(samples)) * ratio))
	cutoff := 0.5 * math.Min(1.0, ratio)

	out := make([]float64, outLen)
	for i := range out {
		center := float64(i) / ratio

		lo := int(math.Floor(center)) - tapCount + 1
		hi := int(math.Floor(center)) + tapCount
		if lo < 0 {
			lo = 0
		}
		if hi >= len(samples) {
			hi = len(samples) - 1
		}

		var acc, norm float64
		for j := lo; j <= hi; j++ {
			weight := kernel(center-float64(j), cutoff)
			acc += samples[j] * weight
			norm += weight
		}

		// normalizing keeps unity gain at the signal edges where the
		// kernel is clipped
		if norm != 0 {
			out[i] = acc / norm
		}
	}

	return out, nil
}

func kernel(offset float64, cutoff float64) float64 {
	v := offset / tapCount
	if v < -1 || v > 1 {
		return 0
	}

	window := 0.5 * (1.0 + math.Cos(math.Pi*v))
	return 2 * cutoff * sinc(2*cutoff*offset) * window
}

func sinc(x float64) float64 {
	if x == 0 {
		return 1
	}

	return math.Sin(math.Pi*x) / (math.Pi * x)
}
