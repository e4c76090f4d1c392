package audio

type StemName string

const (
	StemVocals StemName = "vocals"
	StemDrums  StemName = "drums"
	StemBass   StemName = "bass"
	StemOther  StemName = "other"
)

// StemNames is the full fixed set of stems every separation strategy
// must produce.
var StemNames = []StemName{StemVocals, StemDrums, StemBass, StemOther}

func StemFileName(name StemName) string {
	return string(name) + ".wav"
}

type StemSet struct {
	SampleRate int
	Stems      map[StemName]Waveform
}

// Complete reports whether all four stems are present with nonzero content.
// This is the pipeline's terminal postcondition.
func (s StemSet) Complete() bool {
	for _, name := range StemNames {
		stem, ok := s.Stems[name]
		if !ok || stem.Empty() {
			return false
		}
	}

	return true
}
