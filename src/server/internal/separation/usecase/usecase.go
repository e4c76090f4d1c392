package separationusecase

import (
	"context"
	"path/filepath"

	"github.com/2highsebas/openarms-backend/src/server/internal/errors/api"
	separationerrors "github.com/2highsebas/openarms-backend/src/server/internal/separation/errors"
	"github.com/2highsebas/openarms-backend/src/shared/lib/cerr"
	"github.com/2highsebas/openarms-backend/src/shared/separation"
	"github.com/2highsebas/openarms-backend/src/shared/separation/cascade"
	"github.com/cockroachdb/errors/markers"
	"github.com/google/uuid"
)

type Separator interface {
	Separate(ctx context.Context, inputPath string, outputDir string) (cascade.Result, error)
}

// StemsResult is the API-facing shape of a finished separation.
type StemsResult struct {
	Outcome     string            `json:"outcome"`
	HighQuality bool              `json:"high_quality"`
	Stems       map[string]string `json:"stems"`
}

func NewUsecase(separator Separator, outputRoot string) Usecase {
	return Usecase{
		separator:  separator,
		outputRoot: outputRoot,
	}
}

type Usecase struct {
	separator  Separator
	outputRoot string
}

// SeparateStems runs the full separation pipeline on an already saved
// upload. Each request gets its own output directory so results are
// never overwritten by a concurrent request.
func (u Usecase) SeparateStems(ctx context.Context, inputPath string) (StemsResult, *api.Error) {
	outputDir := filepath.Join(u.outputRoot, uuid.New().String())

	result, err := u.separator.Separate(ctx, inputPath, outputDir)
	if err != nil {
		err = cerr.Field("input_path", inputPath).
			Wrap(err).Error("The separation pipeline failed")

		switch {
		case markers.Is(err, separation.DecodeMark):
			return StemsResult{}, api.CommitError(err,
				separationerrors.UnreadableAudioCode,
				"The uploaded audio could not be read. Please upload a valid audio file")

		default:
			return StemsResult{}, api.CommitError(err,
				separationerrors.SeparationFailedCode,
				"Stem separation failed. Please try again or contact the developer")
		}
	}

	return StemsResult{
		Outcome:     string(result.Outcome),
		HighQuality: result.HighQuality,
		Stems:       stemPathsToStringMap(result.StemPaths),
	}, nil
}

func stemPathsToStringMap(stemPaths separation.StemFilePaths) map[string]string {
	stems := map[string]string{}
	for name, path := range stemPaths {
		stems[string(name)] = path
	}

	return stems
}
