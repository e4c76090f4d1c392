package executor

import "os/exec"

// Executor abstracts spawning external binaries so that code depending on
// demucs/ffmpeg/aubio can be exercised in tests without the real binaries.
type Executor interface {
	Command(name string, arg ...string) Command
}

type Command interface {
	SetDir(dir string)
	CombinedOutput() ([]byte, error)
}

var _ Executor = BinaryFileExecutor{}

type BinaryFileExecutor struct{}

func (BinaryFileExecutor) Command(name string, arg ...string) Command {
	return &BinaryFileCommand{cmd: exec.Command(name, arg...)}
}

type BinaryFileCommand struct {
	cmd *exec.Cmd
}

func (b *BinaryFileCommand) SetDir(dir string) {
	b.cmd.Dir = dir
}

func (b *BinaryFileCommand) CombinedOutput() ([]byte, error) {
	return b.cmd.CombinedOutput()
}
