// Package processtest provides an in-memory process.Executor for tests.
package processtest

import (
	"context"

	"github.com/timescale/tsbs-quick/internal/process"
)

// Recorder records every command it is asked to run and delegates the outcome
// to Fn. A nil Fn succeeds without side effects.
type Recorder struct {
	Commands []process.Command
	Fn       func(c process.Command) error
}

func (r *Recorder) Run(_ context.Context, c process.Command) error {
	r.Commands = append(r.Commands, c)
	if r.Fn == nil {
		return nil
	}
	return r.Fn(c)
}

// Calls is the number of commands run so far.
func (r *Recorder) Calls() int {
	return len(r.Commands)
}
