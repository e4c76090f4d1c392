package cascade

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/2highsebas/openarms-backend/src/shared/audio"
	"github.com/2highsebas/openarms-backend/src/shared/lib/cerr"
	"github.com/2highsebas/openarms-backend/src/shared/lib/errors/mark"
	"github.com/2highsebas/openarms-backend/src/shared/separation"
	"github.com/2highsebas/openarms-backend/src/shared/separation/output"
	"github.com/2highsebas/openarms-backend/src/shared/separation/verify"
	"github.com/apex/log"
)

type Normalizer interface {
	Normalize(ctx context.Context, path string, targetSampleRate int) (audio.Waveform, error)
}

type Invoker interface {
	SampleRate() int
	Invoke(ctx context.Context, wave audio.Waveform, outputDir string) (audio.StemSet, error)
}

type PseudoSeparator interface {
	Separate(ctx context.Context, inputPath string, outputDir string) error
}

// Result is what callers get when the cascade terminates normally: a
// complete stem set on disk and a single reliable quality signal.
// HighQuality is true iff the model tier produced the stems - the mere
// presence of four files says nothing, since the duplication tier always
// produces four.
type Result struct {
	Outcome     Outcome
	HighQuality bool
	StemPaths   separation.StemFilePaths
}

func NewController(normalizer Normalizer, invoker Invoker, pseudo PseudoSeparator) Controller {
	return Controller{
		normalizer: normalizer,
		invoker:    invoker,
		pseudo:     pseudo,
	}
}

// Controller runs the three separation strategies in strict priority
// order, each attempted at most once: model separation, filter-based
// pseudo-separation of the original input, then raw duplication. Each
// tier's failure is contained and logged at that tier; only a tier-3 or
// completeness failure propagates.
type Controller struct {
	normalizer Normalizer
	invoker    Invoker
	pseudo     PseudoSeparator
}

func (c Controller) Separate(ctx context.Context, inputPath string, outputDir string) (Result, error) {
	logger := log.WithFields(log.Fields{
		"inputPath": inputPath,
		"outputDir": outputDir,
	})

	logger.Info("Starting stem separation")

	if err := checkReadable(inputPath); err != nil {
		return Result{}, err
	}

	if err := output.Prepare(outputDir); err != nil {
		return Result{}, cerr.Wrap(err).Error("Failed to prepare the output dir")
	}

	outcome := c.runTiers(ctx, inputPath, outputDir, logger)
	if outcome == "" {
		// runTiers only comes back empty when duplication itself failed
		return Result{}, mark.Wrap(
			cerr.Field("input_path", inputPath).Error("Every separation strategy failed"),
			separation.DuplicationMark,
			"Could not produce any stem output")
	}

	stemPaths, err := output.Finalize(outputDir)
	if err != nil {
		return Result{}, err
	}

	logger.WithField("outcome", outcome).Info("Separation pipeline finished")

	return Result{
		Outcome:     outcome,
		HighQuality: outcome == ModelSeparated,
		StemPaths:   stemPaths,
	}, nil
}

func (c Controller) runTiers(ctx context.Context, inputPath string, outputDir string, logger log.Interface) Outcome {
	stems, err := c.modelTier(ctx, inputPath, outputDir)
	if err == nil {
		c.logStemQuality(stems, logger)
		return ModelSeparated
	}

	cerr.Log(err)
	logger.Warn("Model separation failed, falling back to frequency filtering")

	err = c.pseudo.Separate(ctx, inputPath, outputDir)
	if err == nil {
		return FilterFallback
	}

	cerr.Log(err)
	logger.Warn("Pseudo-separation failed, duplicating the original as a last resort")

	if err := duplicate(inputPath, outputDir); err != nil {
		cerr.Log(err)
		return ""
	}

	return DuplicateFallback
}

func (c Controller) modelTier(ctx context.Context, inputPath string, outputDir string) (audio.StemSet, error) {
	wave, err := c.normalizer.Normalize(ctx, inputPath, c.invoker.SampleRate())
	if err != nil {
		return audio.StemSet{}, mark.Wrap(err, separation.ModelMark, "Failed to normalize input for the model")
	}

	return c.invoker.Invoke(ctx, wave, outputDir)
}

// logStemQuality is purely diagnostic. A degenerate model output is still
// accepted as a model separation; the verifier's findings never trigger a
// fallback.
func (c Controller) logStemQuality(stems audio.StemSet, logger log.Interface) {
	vocals, hasVocals := stems.Stems[audio.StemVocals]
	drums, hasDrums := stems.Stems[audio.StemDrums]
	if !hasVocals || !hasDrums {
		return
	}

	report := verify.Verify(vocals, drums, verify.MixEstimate(stems))

	qualityLogger := logger.WithFields(log.Fields{
		"snr_db":            report.SNR,
		"vocals_mix_corr":   report.VocalsMixCorr,
		"drums_mix_corr":    report.DrumsMixCorr,
		"appears_different": report.AppearsDifferent,
	})

	if report.AppearsDifferent {
		qualityLogger.Info("Stems are successfully separated")
	} else {
		qualityLogger.Warn("Stems may be similar, keeping results anyway")
	}
}

func checkReadable(inputPath string) error {
	f, err := os.Open(inputPath)
	if err != nil {
		return mark.Wrap(
			cerr.Field("input_path", inputPath).Wrap(err).Error("Cannot open the input file"),
			separation.DecodeMark,
			"Input audio is unreadable")
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return mark.Wrap(err, separation.DecodeMark, "Cannot stat the input file")
	}

	if info.Size() == 0 {
		return mark.Wrap(
			cerr.Field("input_path", inputPath).Error("Input file is empty"),
			separation.DecodeMark,
			"Input audio is unreadable")
	}

	return nil
}

// duplicate copies the raw input bytes into every stem slot. Semantically
// meaningless, but structurally a complete stem set.
func duplicate(inputPath string, outputDir string) error {
	for _, name := range audio.StemNames {
		stemPath := filepath.Join(outputDir, audio.StemFileName(name))

		if err := copyFile(inputPath, stemPath); err != nil {
			return mark.Wrap(
				cerr.Field("stem", name).Wrap(err).Error("Failed to copy the original into a stem slot"),
				separation.DuplicationMark,
				"Duplication fallback failed")
		}
	}

	return nil
}

func copyFile(src string, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return cerr.Field("src", src).Wrap(err).Error("Failed to open source file")
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return cerr.Field("dst", dst).Wrap(err).Error("Failed to create destination file")
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return cerr.Fields(cerr.F{"src": src, "dst": dst}).
			Wrap(err).Error("Failed to copy file contents")
	}

	return out.Close()
}
