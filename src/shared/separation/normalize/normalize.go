package normalize

import (
	"context"

	"github.com/2highsebas/openarms-backend/src/shared/audio"
	"github.com/2highsebas/openarms-backend/src/shared/audio/codec"
	"github.com/2highsebas/openarms-backend/src/shared/audio/resample"
	"github.com/2highsebas/openarms-backend/src/shared/lib/cerr"
	"github.com/apex/log"
)

func NewNormalizer(decoder codec.Decoder) Normalizer {
	return Normalizer{
		decoder: decoder,
	}
}

// Normalizer reconciles arbitrary input audio into the exact shape the
// separation model requires: two equal-length channels at the model's
// sample rate.
type Normalizer struct {
	decoder codec.Decoder
}

func (n Normalizer) Normalize(ctx context.Context, path string, targetSampleRate int) (audio.Waveform, error) {
	errctx := cerr.Fields(cerr.F{
		"path":               path,
		"target_sample_rate": targetSampleRate,
	})

	wave, err := n.decoder.Decode(ctx, path)
	if err != nil {
		return audio.Waveform{}, errctx.Wrap(err).Error("Failed to decode input audio")
	}

	if wave.ChannelCount() == 0 || wave.Empty() {
		return audio.Waveform{}, errctx.Error("Decoded audio has no content")
	}

	if wave.SampleRate != targetSampleRate {
		log.WithFields(log.Fields{
			"native_sample_rate": wave.SampleRate,
			"target_sample_rate": targetSampleRate,
		}).Info("Resampling input for the model")

		wave, err = resampleAllChannels(wave, targetSampleRate)
		if err != nil {
			return audio.Waveform{}, errctx.Wrap(err).Error("Failed to resample input audio")
		}
	}

	wave = reconcileToStereo(wave)

	return wave, nil
}

func resampleAllChannels(wave audio.Waveform, targetSampleRate int) (audio.Waveform, error) {
	resampled := make([][]float64, 0, wave.ChannelCount())
	maxLen := 0

	for i, channel := range wave.Channels {
		converted, err := resample.Resample(channel, wave.SampleRate, targetSampleRate)
		if err != nil {
			return audio.Waveform{}, cerr.Field("channel", i).
				Wrap(err).Error("Failed to resample channel")
		}

		if len(converted) > maxLen {
			maxLen = len(converted)
		}
		resampled = append(resampled, converted)
	}

	// rounding drift can leave channels off by a sample; pad with trailing
	// silence rather than truncate, which could clip content
	for i, channel := range resampled {
		if len(channel) < maxLen {
			padded := make([]float64, maxLen)
			copy(padded, channel)
			resampled[i] = padded
		}
	}

	return audio.Waveform{
		SampleRate: targetSampleRate,
		Channels:   resampled,
	}, nil
}

func reconcileToStereo(wave audio.Waveform) audio.Waveform {
	switch {
	case wave.ChannelCount() == 1:
		duplicate := make([]float64, len(wave.Channels[0]))
		copy(duplicate, wave.Channels[0])

		return audio.Waveform{
			SampleRate: wave.SampleRate,
			Channels:   [][]float64{wave.Channels[0], duplicate},
		}

	case wave.ChannelCount() > 2:
		// the model expects exactly stereo - take the first two channels
		return audio.Waveform{
			SampleRate: wave.SampleRate,
			Channels:   wave.Channels[:2],
		}

	default:
		return wave
	}
}
