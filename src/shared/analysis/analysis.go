package analysis

import "context"

// Analysis carries the tempo/key features estimated from a recording.
// BeatTimes is capped to the first few beats - enough for visualization
// without shipping the whole beat grid.
type Analysis struct {
	BPM             float64   `json:"bpm"`
	Key             string    `json:"key"`
	Scale           string    `json:"scale"`
	Duration        float64   `json:"duration"`
	BeatCount       int       `json:"beat_count"`
	BeatTimes       []float64 `json:"beat_times"`
	TempoConfidence float64   `json:"tempo_confidence"`
}

// Analyzer estimates tempo/key features. Independent of the separation
// pipeline - the two share only the raw input file.
type Analyzer interface {
	Analyze(ctx context.Context, path string) (Analysis, error)
}
