package dummy

import (
	"context"

	"github.com/2highsebas/openarms-backend/src/shared/analysis"
)

var _ analysis.Analyzer = &Analyzer{}

func NewDummyAnalyzer(result analysis.Analysis) *Analyzer {
	return &Analyzer{
		Result: result,
	}
}

type Analyzer struct {
	Result        analysis.Analysis
	Err           error
	ReceivedPaths []string
}

func (a *Analyzer) Analyze(ctx context.Context, path string) (analysis.Analysis, error) {
	a.ReceivedPaths = append(a.ReceivedPaths, path)

	if a.Err != nil {
		return analysis.Analysis{}, a.Err
	}

	return a.Result, nil
}
