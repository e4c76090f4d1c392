package invoke

import (
	"context"
	"path/filepath"

	"github.com/2highsebas/openarms-backend/src/shared/audio"
	"github.com/2highsebas/openarms-backend/src/shared/audio/codec"
	"github.com/2highsebas/openarms-backend/src/shared/lib/cerr"
	"github.com/2highsebas/openarms-backend/src/shared/lib/errors/mark"
	"github.com/2highsebas/openarms-backend/src/shared/separation"
	"github.com/2highsebas/openarms-backend/src/shared/separation/engine"
	"github.com/apex/log"
)

func NewInvoker(engine engine.Engine) Invoker {
	return Invoker{
		engine: engine,
	}
}

// Invoker owns the model boundary: it submits the normalized waveform,
// maps the model's fixed source order onto canonical stem names, and
// writes each stem to the output dir as soon as it's available. Every
// failure inside this tier surfaces as a ModelMark error - nothing
// propagates raw.
type Invoker struct {
	engine engine.Engine
}

func (iv Invoker) SampleRate() int {
	return iv.engine.SampleRate()
}

func (iv Invoker) Invoke(ctx context.Context, wave audio.Waveform, outputDir string) (audio.StemSet, error) {
	errctx := cerr.Field("output_dir", outputDir)

	if wave.ChannelCount() != 2 {
		return audio.StemSet{}, mark.Wrap(
			errctx.Field("channels", wave.ChannelCount()).Error("Model boundary only accepts stereo"),
			separation.ModelMark,
			"Waveform has the wrong shape for the model")
	}

	if !wave.EqualChannelLengths() {
		return audio.StemSet{}, mark.Wrap(
			errctx.Error("Waveform channels have unequal lengths"),
			separation.ModelMark,
			"Waveform has the wrong shape for the model")
	}

	sources, err := iv.engine.Separate(ctx, wave)
	if err != nil {
		return audio.StemSet{}, mark.Wrap(err, separation.ModelMark, "Separation engine failed")
	}

	if len(sources) != engine.SourceCount {
		return audio.StemSet{}, mark.Wrap(
			errctx.Field("source_count", len(sources)).Error("Engine returned the wrong number of sources"),
			separation.ModelMark,
			"Separation engine broke its output contract")
	}

	stems := make(map[audio.StemName]audio.Waveform, engine.SourceCount)
	for i, name := range engine.SourceOrder {
		stems[name] = sources[i]

		stemPath := filepath.Join(outputDir, audio.StemFileName(name))
		if err := codec.Encode(sources[i], stemPath); err != nil {
			return audio.StemSet{}, mark.Wrap(err, separation.ModelMark, "Failed to write a separated stem")
		}

		log.WithField("stem", name).Info("Saved separated stem")
	}

	return audio.StemSet{
		SampleRate: wave.SampleRate,
		Stems:      stems,
	}, nil
}
