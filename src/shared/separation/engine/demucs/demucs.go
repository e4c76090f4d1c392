package demucs

import (
	"context"
	"path/filepath"

	"github.com/2highsebas/openarms-backend/src/shared/audio"
	"github.com/2highsebas/openarms-backend/src/shared/audio/codec"
	"github.com/2highsebas/openarms-backend/src/shared/lib/cerr"
	"github.com/2highsebas/openarms-backend/src/shared/lib/executor"
	"github.com/2highsebas/openarms-backend/src/shared/lib/working_dir"
	"github.com/2highsebas/openarms-backend/src/shared/separation/engine"
	"github.com/apex/log"
)

const (
	modelName = "htdemucs"

	// htdemucs operates at a fixed 44.1kHz
	modelSampleRate = 44100
)

var _ engine.Engine = Engine{}

// Engine bridges to the demucs binary: the normalized waveform is written
// to a scratch WAV, the binary separates it, and the four produced stem
// files are decoded back into waveforms.
type Engine struct {
	binPath    string
	workingDir working_dir.WorkingDir
	executor   executor.Executor
}

func NewEngine(binPath string, workingDir working_dir.WorkingDir, executor executor.Executor) Engine {
	return Engine{
		binPath:    binPath,
		workingDir: workingDir,
		executor:   executor,
	}
}

func (e Engine) SampleRate() int {
	return modelSampleRate
}

func (e Engine) Separate(ctx context.Context, wave audio.Waveform) ([]audio.Waveform, error) {
	scope, err := e.workingDir.NewScope()
	if err != nil {
		return nil, cerr.Wrap(err).Error("Failed to acquire a scoped working dir for demucs")
	}
	defer func() {
		if err := scope.Close(); err != nil {
			log.WithField("scope_path", scope.Path()).
				WithError(err).Error("Failed to clean up demucs working dir")
		}
	}()

	mixPath := scope.Join("mix.wav")
	if err := codec.Encode(wave, mixPath); err != nil {
		return nil, cerr.Wrap(err).Error("Failed to write the mix for demucs to read")
	}

	// separation is a lengthy process, if we want to halt now is the time
	if ctx.Err() != nil {
		return nil, cerr.Wrap(ctx.Err()).Error("Context cancelled before separation could happen")
	}

	if err := e.runDemucs(mixPath, scope.Path()); err != nil {
		return nil, cerr.Wrap(err).Error("Failed to execute demucs")
	}

	return collectSources(filepath.Join(scope.Path(), modelName))
}

func (e Engine) runDemucs(sourcePath string, destPath string) error {
	logger := log.WithFields(log.Fields{
		"sourcePath": sourcePath,
		"destPath":   destPath,
		"workingDir": e.workingDir.Root(),
	})

	logger.Info("Running demucs command")

	args := []string{"-n", modelName, "-o", destPath, "-d", "cpu", "--filename", "{stem}.{ext}", sourcePath}

	errctx := cerr.Field("demucs_bin_path", e.binPath).Field("demucs_args", args)

	cmd := e.executor.Command(e.binPath, args...)
	cmd.SetDir(e.workingDir.Root())

	output, err := cmd.CombinedOutput()
	if err != nil {
		return errctx.Field("demucs_output", string(output)).
			Wrap(err).Error("Error occurred while running demucs")
	}

	logger.Debug(string(output))
	logger.Info("Finished demucs command")

	return nil
}

func collectSources(dir string) ([]audio.Waveform, error) {
	sources := make([]audio.Waveform, 0, engine.SourceCount)

	for _, name := range engine.SourceOrder {
		stemPath := filepath.Join(dir, audio.StemFileName(name))

		wave, err := codec.Decode(stemPath)
		if err != nil {
			return nil, cerr.Field("stem", name).
				Wrap(err).Error("Failed to read back a stem demucs should have produced")
		}

		sources = append(sources, wave)
	}

	return sources, nil
}
