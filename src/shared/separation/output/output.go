package output

import (
	"os"
	"path/filepath"

	"github.com/2highsebas/openarms-backend/src/shared/audio"
	"github.com/2highsebas/openarms-backend/src/shared/lib/cerr"
	"github.com/2highsebas/openarms-backend/src/shared/lib/errors/mark"
	"github.com/2highsebas/openarms-backend/src/shared/separation"
	"github.com/apex/log"
)

// Prepare destroys any pre-existing content at outputPath and recreates
// it, so no stem from a previous run can be mistaken for a result of the
// current one. Calling it twice in a row is safe.
func Prepare(outputPath string) error {
	errctx := cerr.Field("output_path", outputPath)

	if _, err := os.Stat(outputPath); err == nil {
		log.WithField("output_path", outputPath).Info("Cleaning old stems from output dir")

		if err := os.RemoveAll(outputPath); err != nil {
			return errctx.Wrap(err).Error("Failed to clear the output dir")
		}
	}

	if err := os.MkdirAll(outputPath, os.ModePerm); err != nil {
		return errctx.Wrap(err).Error("Failed to create the output dir")
	}

	return nil
}

// Finalize checks that all four expected stem files exist with content
// and returns their absolute paths. A missing stem after every tier has
// run means the pipeline broke its terminal guarantee, which must fail
// loudly rather than hand back a partial set.
func Finalize(outputPath string) (separation.StemFilePaths, error) {
	paths := separation.StemFilePaths{}
	missing := []audio.StemName{}

	for _, name := range audio.StemNames {
		stemPath := filepath.Join(outputPath, audio.StemFileName(name))

		info, err := os.Stat(stemPath)
		if err != nil || info.Size() == 0 {
			missing = append(missing, name)
			continue
		}

		absPath, err := filepath.Abs(stemPath)
		if err != nil {
			return nil, cerr.Field("stem_path", stemPath).
				Wrap(err).Error("Failed to convert stem path to absolute format")
		}

		paths[name] = absPath
	}

	if len(missing) > 0 {
		return nil, mark.Wrap(
			cerr.Fields(cerr.F{
				"output_path":   outputPath,
				"missing_stems": missing,
			}).Error("Stem files are missing from the output dir"),
			separation.IncompleteOutputMark,
			"Stem set is incomplete after all separation strategies ran")
	}

	return paths, nil
}
