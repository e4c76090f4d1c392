package analysisusecase

import (
	"context"

	analysiserrors "github.com/2highsebas/openarms-backend/src/server/internal/analysis/errors"
	"github.com/2highsebas/openarms-backend/src/server/internal/errors/api"
	"github.com/2highsebas/openarms-backend/src/shared/analysis"
	"github.com/2highsebas/openarms-backend/src/shared/lib/cerr"
)

func NewUsecase(analyzer analysis.Analyzer) Usecase {
	return Usecase{
		analyzer: analyzer,
	}
}

type Usecase struct {
	analyzer analysis.Analyzer
}

func (u Usecase) AnalyzeTempo(ctx context.Context, inputPath string) (analysis.Analysis, *api.Error) {
	result, err := u.analyzer.Analyze(ctx, inputPath)
	if err != nil {
		err = cerr.Field("input_path", inputPath).
			Wrap(err).Error("Failed to analyze the recording")

		return analysis.Analysis{}, api.CommitError(err,
			analysiserrors.AnalysisFailedCode,
			"Tempo analysis failed. Please upload a valid audio file")
	}

	return result, nil
}
