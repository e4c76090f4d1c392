package dummy

import (
	"github.com/2highsebas/openarms-backend/src/shared/lib/executor"
)

var _ executor.Executor = &Executor{}

type Invocation struct {
	Name string
	Args []string
	Dir  string
}

// Executor fakes external binaries. Tests set Callback to fabricate
// output files or force failures; every invocation is recorded either way.
type Executor struct {
	Callback    func(invocation Invocation) ([]byte, error)
	Invocations []Invocation
}

func NewDummyExecutor() *Executor {
	return &Executor{}
}

func (e *Executor) Command(name string, arg ...string) executor.Command {
	return &command{
		executor: e,
		invocation: Invocation{
			Name: name,
			Args: arg,
		},
	}
}

type command struct {
	executor   *Executor
	invocation Invocation
}

func (c *command) SetDir(dir string) {
	c.invocation.Dir = dir
}

func (c *command) CombinedOutput() ([]byte, error) {
	c.executor.Invocations = append(c.executor.Invocations, c.invocation)

	if c.executor.Callback == nil {
		return nil, nil
	}

	return c.executor.Callback(c.invocation)
}
