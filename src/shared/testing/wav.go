package testing

import (
	"math"

	"github.com/2highsebas/openarms-backend/src/shared/audio"
	"github.com/2highsebas/openarms-backend/src/shared/audio/codec"
	"github.com/onsi/gomega"
)

// SineWave builds a deterministic waveform fixture. Every channel holds
// the same tone so equality checks across channels stay simple.
func SineWave(sampleRate int, channelCount int, frameCount int, frequency float64) audio.Waveform {
	channels := make([][]float64, channelCount)
	for c := range channels {
		samples := make([]float64, frameCount)
		for i := range samples {
			samples[i] = 0.5 * math.Sin(2*math.Pi*frequency*float64(i)/float64(sampleRate))
		}
		channels[c] = samples
	}

	return audio.Waveform{
		SampleRate: sampleRate,
		Channels:   channels,
	}
}

func WriteWAVFixture(path string, wave audio.Waveform) {
	err := codec.Encode(wave, path)
	gomega.ExpectWithOffset(1, err).NotTo(gomega.HaveOccurred())
}
