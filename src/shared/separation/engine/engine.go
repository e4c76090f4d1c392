package engine

import (
	"context"

	"github.com/2highsebas/openarms-backend/src/shared/audio"
)

// SourceCount is how many sources the separation model always emits.
const SourceCount = 4

// SourceOrder is the fixed order the model emits its sources in. The
// invoker maps these positions onto canonical stem names.
var SourceOrder = []audio.StemName{
	audio.StemDrums,
	audio.StemBass,
	audio.StemOther,
	audio.StemVocals,
}

// Engine is the opaque separation capability. Implementations advertise
// the one sample rate they accept and take a stereo waveform already
// normalized to it.
type Engine interface {
	SampleRate() int
	Separate(ctx context.Context, wave audio.Waveform) ([]audio.Waveform, error)
}
