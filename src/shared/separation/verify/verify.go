package verify

import (
	"math"

	"github.com/2highsebas/openarms-backend/src/shared/audio"
	"gonum.org/v1/gonum/stat"
)

const (
	// relativeTolerance matches the 10% tolerance used to decide whether
	// two stems are approximately equal.
	relativeTolerance = 0.1
	absoluteTolerance = 1e-8

	// powerFloor guards the reference power against an all-silent stem.
	powerFloor = 1e-9
)

// Report is the advisory quality signal computed after a successful model
// separation. It's logged and discarded - it never gates the fallback
// decision.
type Report struct {
	SNR              float64
	VocalsMixCorr    float64
	DrumsMixCorr     float64
	AppearsDifferent bool
}

// MixEstimate reconstructs the mixture by summing all stems elementwise.
func MixEstimate(set audio.StemSet) audio.Waveform {
	channelCount := 0
	frames := 0
	for _, stem := range set.Stems {
		if stem.ChannelCount() > channelCount {
			channelCount = stem.ChannelCount()
		}
		if stem.FrameCount() > frames {
			frames = stem.FrameCount()
		}
	}

	channels := make([][]float64, channelCount)
	for ch := range channels {
		channels[ch] = make([]float64, frames)
	}

	for _, stem := range set.Stems {
		for ch, channel := range stem.Channels {
			for i, sample := range channel {
				channels[ch][i] += sample
			}
		}
	}

	return audio.Waveform{
		SampleRate: set.SampleRate,
		Channels:   channels,
	}
}

// Verify compares the vocals and drums stems against each other and
// against the reconstructed mixture. A zero difference between the stems
// reports +Inf SNR instead of faulting.
func Verify(vocals audio.Waveform, drums audio.Waveform, mix audio.Waveform) Report {
	vocalsFlat := flatten(vocals)
	drumsFlat := flatten(drums)
	mixFlat := flatten(mix)

	return Report{
		SNR:              snrDB(drumsFlat, vocalsFlat),
		VocalsMixCorr:    correlation(mixFlat, vocalsFlat),
		DrumsMixCorr:     correlation(mixFlat, drumsFlat),
		AppearsDifferent: !allClose(vocalsFlat, drumsFlat),
	}
}

// snrDB is 10*log10(power(ref) / power(ref - other)) in decibels.
func snrDB(ref []float64, other []float64) float64 {
	n := len(ref)
	if len(other) < n {
		n = len(other)
	}
	if n == 0 {
		return math.Inf(1)
	}

	var diffPower, refPower float64
	for i := 0; i < n; i++ {
		diff := other[i] - ref[i]
		diffPower += diff * diff
		refPower += ref[i] * ref[i]
	}
	diffPower /= float64(n)
	refPower = refPower/float64(n) + powerFloor

	if diffPower == 0 {
		return math.Inf(1)
	}

	return 10 * math.Log10(refPower/diffPower)
}

func correlation(a []float64, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	if n < 2 {
		return 0
	}

	return stat.Correlation(a[:n], b[:n], nil)
}

func allClose(a []float64, b []float64) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		tolerance := absoluteTolerance + relativeTolerance*math.Abs(b[i])
		if math.Abs(a[i]-b[i]) > tolerance {
			return false
		}
	}

	return true
}

func flatten(wave audio.Waveform) []float64 {
	flat := make([]float64, 0, wave.ChannelCount()*wave.FrameCount())
	for _, channel := range wave.Channels {
		flat = append(flat, channel...)
	}

	return flat
}
