// Package process runs the external tools tsbs_quick drives and turns their
// exit status into errors.
package process

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"log"
	"os"
	"os/exec"
	"strings"

	"github.com/pkg/errors"
)

const maxLineSize = 1 << 20

// Command is one external invocation.
type Command struct {
	// Name is the human-readable operation, used in logs and errors.
	Name string
	Path string
	Args []string
	Dir  string
	// Stdout receives the child's standard output. If nil, the output is
	// logged line by line as it arrives.
	Stdout io.Writer
	// OnStart, if set, is called with the child's pid right after it starts.
	OnStart func(pid int)
}

func (c Command) String() string {
	return strings.Join(append([]string{c.Path}, c.Args...), " ")
}

// Executor runs commands to completion.
type Executor interface {
	Run(ctx context.Context, cmd Command) error
}

// ExitError is returned when a command exits with a non-zero status.
type ExitError struct {
	Name   string
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("%s exited with code %d", e.Name, e.Code)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

// Runner is the Executor backed by os/exec.
type Runner struct {
	logger *log.Logger
}

// NewRunner returns a Runner logging to logger, or to stdout if logger is nil.
func NewRunner(logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.New(os.Stdout, "", log.LstdFlags)
	}
	return &Runner{logger: logger}
}

// Run starts c, waits for it and reports a non-zero exit as an *ExitError.
func (r *Runner) Run(ctx context.Context, c Command) error {
	cmd := exec.CommandContext(ctx, c.Path, c.Args...)
	cmd.Dir = c.Dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	var stdout io.ReadCloser
	if c.Stdout != nil {
		cmd.Stdout = c.Stdout
	} else {
		var err error
		stdout, err = cmd.StdoutPipe()
		if err != nil {
			return errors.Wrapf(err, "%s: could not attach stdout", c.Name)
		}
	}

	r.logger.Printf("%s: %s", c.Name, c)
	if err := cmd.Start(); err != nil {
		return errors.Wrapf(err, "%s: could not start %s", c.Name, c.Path)
	}
	if c.OnStart != nil {
		c.OnStart(cmd.Process.Pid)
	}

	if stdout != nil {
		r.streamLines(c.Name, stdout)
	}

	err := cmd.Wait()
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		// The child may have exited 0 before the kill reached it.
		if err == ctxErr && cmd.ProcessState != nil && cmd.ProcessState.Success() {
			return nil
		}
		return errors.Wrapf(ctxErr, "%s interrupted", c.Name)
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		return &ExitError{
			Name:   c.Name,
			Code:   exitErr.ExitCode(),
			Stderr: strings.TrimSpace(stderr.String()),
		}
	}
	return errors.Wrapf(err, "%s: wait failed", c.Name)
}

// streamLines logs every line of r until EOF. The pipe is always drained so
// the child never blocks on a full pipe, even after an oversized line.
func (r *Runner) streamLines(name string, rd io.Reader) {
	scanner := bufio.NewScanner(rd)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		r.logger.Printf("[%s] %s", name, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		r.logger.Printf("[%s] output no longer logged: %v", name, err)
		io.Copy(ioutil.Discard, rd)
	}
}
