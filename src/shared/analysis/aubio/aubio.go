package aubio

import (
	"bufio"
	"context"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/2highsebas/openarms-backend/src/shared/analysis"
	"github.com/2highsebas/openarms-backend/src/shared/lib/cerr"
	"github.com/2highsebas/openarms-backend/src/shared/lib/executor"
	"gonum.org/v1/gonum/stat"
)

// maxBeatTimes caps the beat positions included in a report. Consumers
// only need the opening grid for visualization.
const maxBeatTimes = 20

var (
	bpmLineRegex  = regexp.MustCompile(`([0-9]+(\.[0-9]+)?)\s*bpm`)
	beatLineRegex = regexp.MustCompile(`^([0-9]+(\.[0-9]+)?)\s*$`)
	keyLineRegex  = regexp.MustCompile(`([a-g][#b]?)\s+(major|minor)`)
)

// Analyzer shells out to the aubio CLI for tempo and key estimation and
// to ffprobe for the recording duration.
type Analyzer struct {
	aubioBinPath   string
	ffprobeBinPath string
	executor       executor.Executor
}

func NewAnalyzer(aubioBinPath string, ffprobeBinPath string, commandExecutor executor.Executor) Analyzer {
	return Analyzer{
		aubioBinPath:   aubioBinPath,
		ffprobeBinPath: ffprobeBinPath,
		executor:       commandExecutor,
	}
}

func (a Analyzer) Analyze(ctx context.Context, path string) (analysis.Analysis, error) {
	errctx := cerr.Field("file_path", path)

	if err := ctx.Err(); err != nil {
		return analysis.Analysis{}, errctx.Wrap(err).Error("Analysis cancelled before it started")
	}

	duration, err := a.probeDuration(path)
	if err != nil {
		return analysis.Analysis{}, errctx.Wrap(err).Error("Failed to read the recording duration")
	}

	bpmSeries, beatTimes, err := a.runTempo(path)
	if err != nil {
		return analysis.Analysis{}, errctx.Wrap(err).Error("Failed to estimate the tempo")
	}

	bpm := roundHundredths(median(bpmSeries))
	confidence := stat.StdDev(bpmSeries, nil)
	if len(bpmSeries) < 2 {
		confidence = 0
	}

	if len(beatTimes) == 0 {
		beatTimes = beatGrid(bpm, duration)
	}

	key, scale := a.runKey(path)

	return analysis.Analysis{
		BPM:             bpm,
		Key:             key,
		Scale:           scale,
		Duration:        roundHundredths(duration),
		BeatCount:       len(beatTimes),
		BeatTimes:       truncateBeats(beatTimes),
		TempoConfidence: confidence,
	}, nil
}

func (a Analyzer) probeDuration(path string) (float64, error) {
	command := a.executor.Command(a.ffprobeBinPath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path)

	output, err := command.CombinedOutput()
	if err != nil {
		return 0, cerr.
			Field("ffprobe_output", string(output)).
			Wrap(err).
			Error("ffprobe exited with an error")
	}

	duration, err := strconv.ParseFloat(strings.TrimSpace(string(output)), 64)
	if err != nil {
		return 0, cerr.
			Field("ffprobe_output", string(output)).
			Wrap(err).
			Error("ffprobe printed an unparseable duration")
	}

	return duration, nil
}

// runTempo parses the aubio tempo output. Depending on the aubio build
// the output carries a bpm estimate per analysis window, bare beat
// timestamps, or both, so both shapes are collected in one pass.
func (a Analyzer) runTempo(path string) ([]float64, []float64, error) {
	command := a.executor.Command(a.aubioBinPath, "tempo", "-i", path)

	output, err := command.CombinedOutput()
	if err != nil && len(output) == 0 {
		return nil, nil, cerr.Wrap(err).Error("aubio tempo exited with an error")
	}

	var bpmSeries []float64
	var beatTimes []float64

	scanner := bufio.NewScanner(strings.NewReader(strings.ToLower(string(output))))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if match := bpmLineRegex.FindStringSubmatch(line); len(match) >= 2 {
			bpmSeries = append(bpmSeries, parseFloat(match[1]))
			continue
		}
		if match := beatLineRegex.FindStringSubmatch(line); len(match) >= 2 {
			beatTimes = append(beatTimes, parseFloat(match[1]))
		}
	}

	if len(bpmSeries) == 0 {
		return nil, nil, cerr.
			Field("aubio_output", string(output)).
			Error("aubio tempo printed no bpm estimates")
	}

	return bpmSeries, beatTimes, nil
}

// runKey is best effort. Key estimation failing should not sink the
// tempo report, so a failed or unparseable run yields empty fields.
func (a Analyzer) runKey(path string) (string, string) {
	command := a.executor.Command(a.aubioBinPath, "key", "-i", path)

	output, err := command.CombinedOutput()
	if err != nil && len(output) == 0 {
		return "", ""
	}

	match := keyLineRegex.FindStringSubmatch(strings.ToLower(string(output)))
	if len(match) < 3 {
		return "", ""
	}

	key := strings.ToUpper(match[1][:1]) + match[1][1:]
	scale := strings.ToUpper(match[2][:1]) + match[2][1:]
	return key, scale
}

// beatGrid synthesizes evenly spaced beat positions when aubio reports
// a tempo without individual beat timestamps.
func beatGrid(bpm float64, duration float64) []float64 {
	if bpm <= 0 || duration <= 0 {
		return nil
	}

	interval := 60 / bpm
	var times []float64
	for t := 0.0; t < duration; t += interval {
		times = append(times, roundHundredths(t))
	}
	return times
}

func truncateBeats(beatTimes []float64) []float64 {
	if len(beatTimes) <= maxBeatTimes {
		return beatTimes
	}
	return beatTimes[:maxBeatTimes]
}

func median(values []float64) float64 {
	sorted := append([]float64{}, values...)
	sort.Float64s(sorted)
	return sorted[len(sorted)/2]
}

func roundHundredths(value float64) float64 {
	return math.Round(value*100) / 100
}

func parseFloat(value string) float64 {
	parsed, _ := strconv.ParseFloat(value, 64)
	return parsed
}
