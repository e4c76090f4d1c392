package dummy

import (
	"context"

	"github.com/2highsebas/openarms-backend/src/shared/audio"
	"github.com/2highsebas/openarms-backend/src/shared/separation/engine"
)

var _ engine.Engine = &Engine{}

func NewDummyEngine(sampleRate int, sources []audio.Waveform) *Engine {
	return &Engine{
		SampleRateValue: sampleRate,
		Sources:         sources,
	}
}

type Engine struct {
	SampleRateValue int
	Sources         []audio.Waveform
	Err             error
	ReceivedWaves   []audio.Waveform
}

func (e *Engine) SampleRate() int {
	return e.SampleRateValue
}

func (e *Engine) Separate(ctx context.Context, wave audio.Waveform) ([]audio.Waveform, error) {
	e.ReceivedWaves = append(e.ReceivedWaves, wave)

	if e.Err != nil {
		return nil, e.Err
	}

	return e.Sources, nil
}
