package audio

import "time"

// Waveform is a decoded audio signal: one float64 sample slice per channel
// plus the sample rate they were captured at.
type Waveform struct {
	SampleRate int
	Channels   [][]float64
}

func (w Waveform) ChannelCount() int {
	return len(w.Channels)
}

// FrameCount reports the length of the longest channel. All consumers past
// the normalizer can rely on every channel having this length.
func (w Waveform) FrameCount() int {
	frames := 0
	for _, channel := range w.Channels {
		if len(channel) > frames {
			frames = len(channel)
		}
	}

	return frames
}

func (w Waveform) Empty() bool {
	return w.FrameCount() == 0
}

func (w Waveform) EqualChannelLengths() bool {
	if len(w.Channels) == 0 {
		return true
	}

	first := len(w.Channels[0])
	for _, channel := range w.Channels[1:] {
		if len(channel) != first {
			return false
		}
	}

	return true
}

func (w Waveform) Duration() time.Duration {
	if w.SampleRate <= 0 {
		return 0
	}

	seconds := float64(w.FrameCount()) / float64(w.SampleRate)
	return time.Duration(seconds * float64(time.Second))
}
