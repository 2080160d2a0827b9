// Package loadrun turns a reconciled BenchConfig into a tsbs_load_greptime run.
package loadrun

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/timescale/tsbs-quick/internal/artifacts"
	"github.com/timescale/tsbs-quick/internal/process"
	"github.com/timescale/tsbs-quick/internal/utils"
	"github.com/timescale/tsbs-quick/pkg/loadconfig"
)

// ErrLoadRunFailure means the load tool exited unsuccessfully.
var ErrLoadRunFailure = errors.New("load run failed")

const defaultProfileInterval = time.Second

// Runner invokes the load binary.
type Runner struct {
	exec   process.Executor
	logger *log.Logger

	// ProfileFile, if set, receives CPU and memory samples of the loader
	// process as CSV while it runs.
	ProfileFile     string
	ProfileInterval time.Duration
}

func NewRunner(exec process.Executor, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.New(os.Stdout, "", log.LstdFlags)
	}
	return &Runner{exec: exec, logger: logger, ProfileInterval: defaultProfileInterval}
}

// Args renders c as tsbs_load_greptime flags.
func Args(c loadconfig.BenchConfig) []string {
	return []string{
		"--urls=" + c.URLs,
		"--file=" + c.File,
		"--batch-size=" + c.BatchSize,
		"--gzip=" + strconv.FormatBool(c.Gzip),
		fmt.Sprintf("--workers=%d", c.Workers),
	}
}

// Run loads c.File into the target. Both the loader and the dataset must
// already exist.
func (r *Runner) Run(ctx context.Context, loaderPath string, c loadconfig.BenchConfig) error {
	if err := artifacts.RequireFiles(loaderPath, c.File); err != nil {
		return err
	}

	cmd := process.Command{
		Name: "load greptime",
		Path: loaderPath,
		Args: Args(c),
	}

	var prof *profiler
	if r.ProfileFile != "" {
		var err error
		prof, err = newProfiler(r.ProfileFile, r.ProfileInterval, r.logger)
		if err != nil {
			return err
		}
		cmd.OnStart = prof.start
		r.logger.Printf("profiling loader into %s", r.ProfileFile)
	}

	start := time.Now()
	err := r.exec.Run(ctx, cmd)
	if prof != nil {
		if stopErr := prof.stop(); stopErr != nil {
			r.logger.Printf("could not finish profile %s: %v", r.ProfileFile, stopErr)
		}
	}
	if err != nil {
		return utils.WithKind(ErrLoadRunFailure, err)
	}
	r.logger.Printf("load finished in %s", time.Since(start).Round(time.Millisecond))
	return nil
}
