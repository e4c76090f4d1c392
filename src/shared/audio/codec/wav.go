package codec

import (
	"math"
	"os"

	"github.com/2highsebas/openarms-backend/src/shared/audio"
	"github.com/2highsebas/openarms-backend/src/shared/lib/cerr"
	gaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Decode reads a WAV file into a multi-channel float waveform at its
// native sample rate.
func Decode(path string) (audio.Waveform, error) {
	errctx := cerr.Field("path", path)

	f, err := os.Open(path)
	if err != nil {
		return audio.Waveform{}, errctx.Wrap(err).Error("Failed to open audio file")
	}
	defer f.Close()

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return audio.Waveform{}, errctx.Error("File is not a valid WAV file")
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return audio.Waveform{}, errctx.Wrap(err).Error("Failed to decode PCM data")
	}

	if buf == nil || buf.Format == nil || len(buf.Data) == 0 {
		return audio.Waveform{}, errctx.Error("Audio file contains no samples")
	}

	channelCount := buf.Format.NumChannels
	if channelCount <= 0 {
		return audio.Waveform{}, errctx.Error("Audio file reports no channels")
	}

	bitDepth := int(decoder.BitDepth)
	if bitDepth == 0 {
		bitDepth = 16
	}
	scale := float64(int64(1) << uint(bitDepth-1))

	frames := len(buf.Data) / channelCount
	channels := make([][]float64, channelCount)
	for ch := range channels {
		channels[ch] = make([]float64, frames)
	}

	for frame := 0; frame < frames; frame++ {
		for ch := 0; ch < channelCount; ch++ {
			channels[ch][frame] = float64(buf.Data[frame*channelCount+ch]) / scale
		}
	}

	return audio.Waveform{
		SampleRate: buf.Format.SampleRate,
		Channels:   channels,
	}, nil
}

// Encode writes the waveform to path as 16-bit PCM WAV. Channels are
// expected to be equal length; shorter channels are read as silence past
// their end.
func Encode(wave audio.Waveform, path string) error {
	errctx := cerr.Field("path", path)

	if wave.ChannelCount() == 0 || wave.Empty() {
		return errctx.Error("Refusing to encode an empty waveform")
	}

	f, err := os.Create(path)
	if err != nil {
		return errctx.Wrap(err).Error("Failed to create output file")
	}
	defer f.Close()

	channelCount := wave.ChannelCount()
	frames := wave.FrameCount()

	data := make([]int, 0, frames*channelCount)
	for frame := 0; frame < frames; frame++ {
		for _, channel := range wave.Channels {
			sample := 0.0
			if frame < len(channel) {
				sample = channel[frame]
			}
			data = append(data, clampToInt16(sample))
		}
	}

	encoder := wav.NewEncoder(f, wave.SampleRate, 16, channelCount, 1)
	buf := &gaudio.IntBuffer{
		Format: &gaudio.Format{
			NumChannels: channelCount,
			SampleRate:  wave.SampleRate,
		},
		Data:           data,
		SourceBitDepth: 16,
	}

	if err := encoder.Write(buf); err != nil {
		return errctx.Wrap(err).Error("Failed to write PCM data")
	}

	if err := encoder.Close(); err != nil {
		return errctx.Wrap(err).Error("Failed to finalize WAV file")
	}

	return nil
}

func clampToInt16(sample float64) int {
	scaled := sample * float64(math.MaxInt16)
	if scaled > float64(math.MaxInt16) {
		return math.MaxInt16
	}
	if scaled < float64(math.MinInt16) {
		return math.MinInt16
	}

	return int(math.Round(scaled))
}
