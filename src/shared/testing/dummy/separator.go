package dummy

import (
	"context"
	"os"
	"path/filepath"

	"github.com/2highsebas/openarms-backend/src/shared/audio"
	"github.com/2highsebas/openarms-backend/src/shared/separation"
	"github.com/2highsebas/openarms-backend/src/shared/separation/cascade"
)

// Separator fakes the whole cascade pipeline. On success it writes a
// stem file per canonical name into the output dir, the same observable
// contract the real controller honors.
type Separator struct {
	Outcome      cascade.Outcome
	StemContent  []byte
	Err          error
	ReceivedRuns []SeparationRun
}

type SeparationRun struct {
	InputPath    string
	InputContent []byte
	OutputDir    string
}

func NewDummySeparator() *Separator {
	return &Separator{
		Outcome:     cascade.ModelSeparated,
		StemContent: []byte("dummy stem audio"),
	}
}

func (s *Separator) Separate(ctx context.Context, inputPath string, outputDir string) (cascade.Result, error) {
	// capture the input eagerly, callers may clean the file up before
	// the test gets to assert on it
	inputContent, _ := os.ReadFile(inputPath)

	s.ReceivedRuns = append(s.ReceivedRuns, SeparationRun{
		InputPath:    inputPath,
		InputContent: inputContent,
		OutputDir:    outputDir,
	})

	if s.Err != nil {
		return cascade.Result{}, s.Err
	}

	if err := os.MkdirAll(outputDir, os.ModePerm); err != nil {
		return cascade.Result{}, err
	}

	stemPaths := separation.StemFilePaths{}
	for _, name := range audio.StemNames {
		stemPath := filepath.Join(outputDir, audio.StemFileName(name))
		if err := os.WriteFile(stemPath, s.StemContent, os.ModePerm); err != nil {
			return cascade.Result{}, err
		}
		stemPaths[name] = stemPath
	}

	return cascade.Result{
		Outcome:     s.Outcome,
		HighQuality: s.Outcome == cascade.ModelSeparated,
		StemPaths:   stemPaths,
	}, nil
}
