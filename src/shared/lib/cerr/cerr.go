package cerr

import (
	"github.com/apex/log"
	"github.com/cockroachdb/errors"
)

// F is a shorthand for attaching several fields at once.
type F map[string]any

func Field(key string, value any) Ctx {
	return Ctx{}.Field(key, value)
}

func Fields(fields F) Ctx {
	return Ctx{}.Fields(fields)
}

func Error(msg string) error {
	return Ctx{}.Error(msg)
}

func Wrap(err error) Wrapper {
	return Ctx{}.Wrap(err)
}

// Ctx accumulates structured context that gets attached to the error
// as details when it's finally created or wrapped.
type Ctx struct {
	fields []field
}

type field struct {
	key   string
	value any
}

func (c Ctx) Field(key string, value any) Ctx {
	next := Ctx{fields: make([]field, len(c.fields), len(c.fields)+1)}
	copy(next.fields, c.fields)
	next.fields = append(next.fields, field{key: key, value: value})
	return next
}

func (c Ctx) Fields(fields F) Ctx {
	next := c
	for key, value := range fields {
		next = next.Field(key, value)
	}
	return next
}

func (c Ctx) Error(msg string) error {
	return c.decorate(errors.New(msg))
}

func (c Ctx) Wrap(err error) Wrapper {
	return Wrapper{ctx: c, err: err}
}

func (c Ctx) decorate(err error) error {
	for _, f := range c.fields {
		err = errors.WithDetailf(err, "%s: %v", f.key, f.value)
	}

	return err
}

type Wrapper struct {
	ctx Ctx
	err error
}

func (w Wrapper) Error(msg string) error {
	return w.ctx.decorate(errors.Wrap(w.err, msg))
}

// Log reports the error with all its accumulated wrap messages and details.
func Log(err error) {
	log.Errorf("%+v", err)
}
