package codec

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/2highsebas/openarms-backend/src/shared/audio"
	"github.com/2highsebas/openarms-backend/src/shared/lib/cerr"
	"github.com/2highsebas/openarms-backend/src/shared/lib/executor"
	"github.com/2highsebas/openarms-backend/src/shared/lib/working_dir"
	"github.com/apex/log"
)

// Decoder reads an audio file into an in-memory waveform.
type Decoder interface {
	Decode(ctx context.Context, path string) (audio.Waveform, error)
}

var _ Decoder = WAVDecoder{}

// WAVDecoder handles native WAV input only.
type WAVDecoder struct{}

func (WAVDecoder) Decode(_ context.Context, path string) (audio.Waveform, error) {
	return Decode(path)
}

var _ Decoder = FFmpegDecoder{}

// FFmpegDecoder accepts any format ffmpeg can read by transcoding to a
// scratch WAV first. WAV input skips the transcode.
type FFmpegDecoder struct {
	ffmpegBinPath string
	workingDir    working_dir.WorkingDir
	executor      executor.Executor
}

func NewFFmpegDecoder(ffmpegBinPath string, workingDir working_dir.WorkingDir, executor executor.Executor) FFmpegDecoder {
	return FFmpegDecoder{
		ffmpegBinPath: ffmpegBinPath,
		workingDir:    workingDir,
		executor:      executor,
	}
}

func (d FFmpegDecoder) Decode(ctx context.Context, path string) (audio.Waveform, error) {
	if strings.EqualFold(filepath.Ext(path), ".wav") {
		return Decode(path)
	}

	errctx := cerr.Field("path", path)

	scope, err := d.workingDir.NewScope()
	if err != nil {
		return audio.Waveform{}, errctx.Wrap(err).Error("Failed to acquire a scratch dir for transcoding")
	}
	defer func() {
		if err := scope.Close(); err != nil {
			log.WithField("scope_path", scope.Path()).
				WithError(err).Error("Failed to clean up transcode scratch dir")
		}
	}()

	if ctx.Err() != nil {
		return audio.Waveform{}, errctx.Wrap(ctx.Err()).Error("Context cancelled before transcoding could happen")
	}

	transcodedPath := scope.Join("decoded.wav")
	args := []string{"-y", "-i", path, "-vn", "-c:a", "pcm_s16le", transcodedPath}

	cmd := d.executor.Command(d.ffmpegBinPath, args...)
	cmd.SetDir(scope.Path())

	output, err := cmd.CombinedOutput()
	if err != nil {
		return audio.Waveform{}, errctx.Field("ffmpeg_output", string(output)).
			Wrap(err).Error("ffmpeg failed to transcode input to WAV")
	}

	return Decode(transcodedPath)
}
