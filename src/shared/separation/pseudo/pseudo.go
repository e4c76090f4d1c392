package pseudo

import (
	"context"
	"path/filepath"

	"github.com/2highsebas/openarms-backend/src/shared/audio"
	"github.com/2highsebas/openarms-backend/src/shared/lib/cerr"
	"github.com/2highsebas/openarms-backend/src/shared/lib/errors/mark"
	"github.com/2highsebas/openarms-backend/src/shared/lib/executor"
	"github.com/2highsebas/openarms-backend/src/shared/separation"
	"github.com/apex/log"
)

// stemFilters approximates each stem with a frequency band: vocals keep
// the 200-3000Hz voice band, drums keep everything above 60Hz, bass keeps
// everything below 250Hz, and other passes the full spectrum through.
var stemFilters = map[audio.StemName]string{
	audio.StemVocals: "highpass=f=200,lowpass=f=3000",
	audio.StemDrums:  "highpass=f=60",
	audio.StemBass:   "lowpass=f=250",
	audio.StemOther:  "",
}

func NewSeparator(ffmpegBinPath string, executor executor.Executor) Separator {
	return Separator{
		ffmpegBinPath: ffmpegBinPath,
		executor:      executor,
	}
}

// Separator is the tier-2 strategy: band-limited copies of the original
// recording standing in for true stems. It reads the original input file
// directly, bypassing the model-rate normalization entirely.
type Separator struct {
	ffmpegBinPath string
	executor      executor.Executor
}

func (s Separator) Separate(ctx context.Context, inputPath string, outputDir string) error {
	logger := log.WithFields(log.Fields{
		"inputPath": inputPath,
		"outputDir": outputDir,
	})

	logger.Info("Running filter-based pseudo-separation")

	for _, name := range audio.StemNames {
		if ctx.Err() != nil {
			return mark.Wrap(ctx.Err(), separation.FilterMark, "Context cancelled during pseudo-separation")
		}

		outputPath := filepath.Join(outputDir, audio.StemFileName(name))
		if err := s.filterTo(inputPath, stemFilters[name], outputPath); err != nil {
			return mark.Wrap(
				cerr.Field("stem", name).Wrap(err).Error("Failed to export pseudo stem"),
				separation.FilterMark,
				"Filter-based separation failed")
		}

		logger.WithField("stem", name).Info("Exported pseudo stem")
	}

	logger.Info("Pseudo-separation complete (approximate, not true source separation)")

	return nil
}

func (s Separator) filterTo(inputPath string, filter string, outputPath string) error {
	args := []string{"-y", "-i", inputPath, "-vn"}
	if filter != "" {
		args = append(args, "-af", filter)
	}
	args = append(args, "-c:a", "pcm_s16le", outputPath)

	errctx := cerr.Field("ffmpeg_bin_path", s.ffmpegBinPath).Field("ffmpeg_args", args)

	cmd := s.executor.Command(s.ffmpegBinPath, args...)
	cmd.SetDir(filepath.Dir(outputPath))

	output, err := cmd.CombinedOutput()
	if err != nil {
		return errctx.Field("ffmpeg_output", string(output)).
			Wrap(err).Error("Error occurred while running ffmpeg")
	}

	return nil
}
