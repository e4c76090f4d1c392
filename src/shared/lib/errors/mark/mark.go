package mark

import (
	"github.com/cockroachdb/errors"
)

// Wrap annotates err and marks it so that callers can classify it
// with markers.Is without depending on string matching.
func Wrap(err error, mark error, msg string) error {
	return errors.Mark(errors.Wrap(err, msg), mark)
}

func Message(mark error, msg string) error {
	return errors.Mark(errors.New(msg), mark)
}
