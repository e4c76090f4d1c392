package verify_test

import (
	"math"

	"github.com/2highsebas/openarms-backend/src/shared/audio"
	"github.com/2highsebas/openarms-backend/src/shared/separation/verify"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func monoWave(samples ...float64) audio.Waveform {
	return audio.Waveform{
		SampleRate: 44100,
		Channels:   [][]float64{samples},
	}
}

var _ = Describe("Verify", func() {
	Describe("Identical stems", func() {
		It("reports infinite SNR instead of faulting", func() {
			stem := monoWave(0.1, -0.2, 0.3, -0.4)

			report := verify.Verify(stem, stem, stem)

			Expect(math.IsInf(report.SNR, 1)).To(BeTrue())
			Expect(report.AppearsDifferent).To(BeFalse())
		})
	})

	Describe("Distinct stems", func() {
		It("reports a finite SNR and flags them as different", func() {
			vocals := monoWave(0.5, 0.4, 0.3, 0.2)
			drums := monoWave(-0.5, 0.1, -0.3, 0.6)
			mix := monoWave(0.0, 0.5, 0.0, 0.8)

			report := verify.Verify(vocals, drums, mix)

			Expect(math.IsInf(report.SNR, 1)).To(BeFalse())
			Expect(math.IsNaN(report.SNR)).To(BeFalse())
			Expect(report.AppearsDifferent).To(BeTrue())
		})

		It("tolerates differences inside ten percent", func() {
			vocals := monoWave(1.0, 1.0, 1.0)
			drums := monoWave(1.05, 0.95, 1.0)

			report := verify.Verify(vocals, drums, verify.MixEstimate(audio.StemSet{
				SampleRate: 44100,
				Stems: map[audio.StemName]audio.Waveform{
					audio.StemVocals: vocals,
					audio.StemDrums:  drums,
				},
			}))

			Expect(report.AppearsDifferent).To(BeFalse())
		})
	})

	Describe("Correlation against the mix estimate", func() {
		It("is perfect for a stem that is the whole mix", func() {
			stem := monoWave(0.1, 0.5, -0.3, 0.2)
			silent := monoWave(0, 0, 0, 0)

			mix := verify.MixEstimate(audio.StemSet{
				SampleRate: 44100,
				Stems: map[audio.StemName]audio.Waveform{
					audio.StemVocals: stem,
					audio.StemDrums:  silent,
				},
			})

			report := verify.Verify(stem, silent, mix)
			Expect(report.VocalsMixCorr).To(BeNumerically("~", 1.0, 1e-9))
		})
	})

	Describe("MixEstimate", func() {
		It("sums stems elementwise", func() {
			mix := verify.MixEstimate(audio.StemSet{
				SampleRate: 44100,
				Stems: map[audio.StemName]audio.Waveform{
					audio.StemVocals: monoWave(0.1, 0.2),
					audio.StemDrums:  monoWave(0.3, -0.1),
				},
			})

			Expect(mix.Channels).To(HaveLen(1))
			Expect(mix.Channels[0][0]).To(BeNumerically("~", 0.4, 1e-12))
			Expect(mix.Channels[0][1]).To(BeNumerically("~", 0.1, 1e-12))
		})

		It("pads shorter stems with silence", func() {
			mix := verify.MixEstimate(audio.StemSet{
				SampleRate: 44100,
				Stems: map[audio.StemName]audio.Waveform{
					audio.StemVocals: monoWave(0.1, 0.2, 0.3),
					audio.StemDrums:  monoWave(0.3),
				},
			})

			Expect(mix.FrameCount()).To(Equal(3))
			Expect(mix.Channels[0][2]).To(BeNumerically("~", 0.3, 1e-12))
		})
	})
})
