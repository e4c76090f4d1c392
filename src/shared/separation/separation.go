// Package separation holds the definitions shared by every tier of the
// stem separation pipeline: the error marks the cascade controller
// classifies tier failures with, and the on-disk projection of a stem set.
package separation

import (
	"github.com/2highsebas/openarms-backend/src/shared/audio"
	"github.com/cockroachdb/errors"
)

// Error marks for the pipeline's failure taxonomy. Tier code attaches these
// via mark.Wrap; the cascade controller and the API layer classify with
// markers.Is.
var (
	// DecodeMark: the input can't be read at all. Fatal - no tier can
	// work with an unreadable file.
	DecodeMark = errors.New("input_unreadable")

	// ModelMark: tier 1 failed somewhere in normalize/inference/write.
	// Recoverable via the filter fallback.
	ModelMark = errors.New("model_separation_failed")

	// FilterMark: tier 2 failed in filtering or export. Recoverable via
	// duplication.
	FilterMark = errors.New("filter_separation_failed")

	// DuplicationMark: tier 3 failed. Fatal.
	DuplicationMark = errors.New("duplication_failed")

	// IncompleteOutputMark: fewer than four stems on disk after all tiers
	// ran. Fatal.
	IncompleteOutputMark = errors.New("incomplete_stem_output")
)

// StemFilePaths maps each stem name to the WAV file written for it.
type StemFilePaths = map[audio.StemName]string
