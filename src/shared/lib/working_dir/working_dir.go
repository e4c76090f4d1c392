package working_dir

import (
	"os"
	"path/filepath"

	"github.com/2highsebas/openarms-backend/src/shared/lib/cerr"
	"github.com/google/uuid"
)

func NewWorkingDir(dir string) (WorkingDir, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return WorkingDir{}, cerr.Field("dir", dir).
			Wrap(err).Error("Failed to convert working dir to absolute format")
	}

	if err := os.MkdirAll(absDir, os.ModePerm); err != nil {
		return WorkingDir{}, cerr.Field("dir", absDir).
			Wrap(err).Error("Failed to create working dir")
	}

	return WorkingDir{root: absDir}, nil
}

type WorkingDir struct {
	root string
}

func (w WorkingDir) Root() string {
	return w.root
}

// NewScope creates a uniquely named directory under the working dir root.
// Concurrent invocations each get their own scope so they never collide.
// Callers must Close the scope on every exit path.
func (w WorkingDir) NewScope() (Scope, error) {
	scopePath := filepath.Join(w.root, uuid.New().String())

	if err := os.MkdirAll(scopePath, os.ModePerm); err != nil {
		return Scope{}, cerr.Field("scope_path", scopePath).
			Wrap(err).Error("Failed to create scoped working dir")
	}

	return Scope{path: scopePath}, nil
}

type Scope struct {
	path string
}

func (s Scope) Path() string {
	return s.path
}

func (s Scope) Join(elem ...string) string {
	return filepath.Join(append([]string{s.path}, elem...)...)
}

func (s Scope) Close() error {
	return os.RemoveAll(s.path)
}
