package cascade

// Outcome tags which tier produced the final stem set.
type Outcome string

const (
	ModelSeparated    Outcome = "model_separated"
	FilterFallback    Outcome = "filter_fallback"
	DuplicateFallback Outcome = "duplicate_fallback"
)
