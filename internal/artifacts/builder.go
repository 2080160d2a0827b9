// Package artifacts makes sure the tsbs binaries exist in the workspace before
// anything tries to run them.
package artifacts

import (
	"context"
	"log"
	"os"

	"github.com/pkg/errors"
	"github.com/timescale/tsbs-quick/internal/process"
	"github.com/timescale/tsbs-quick/internal/utils"
	"github.com/timescale/tsbs-quick/internal/workspace"
)

var (
	// ErrMissingArtifact means a binary or data file a stage depends on is absent.
	ErrMissingArtifact = errors.New("missing artifact")
	// ErrBuildFailure means the external build step failed.
	ErrBuildFailure = errors.New("build failed")
)

// Builder produces the tsbs binaries from sourceDir into outputDir.
type Builder interface {
	Build(ctx context.Context, sourceDir, outputDir string) error
}

// ScriptBuilder runs a build script as `Script <source-dir> <output-dir>`.
type ScriptBuilder struct {
	Script string
	Exec   process.Executor
}

func (b *ScriptBuilder) Build(ctx context.Context, sourceDir, outputDir string) error {
	return b.Exec.Run(ctx, process.Command{
		Name: "build tsbs",
		Path: b.Script,
		Args: []string{sourceDir, outputDir},
	})
}

// Ensurer builds the binaries only when the generator is missing.
type Ensurer struct {
	builder   Builder
	sourceDir string
	logger    *log.Logger
}

func NewEnsurer(builder Builder, sourceDir string, logger *log.Logger) *Ensurer {
	if logger == nil {
		logger = log.New(os.Stdout, "", log.LstdFlags)
	}
	return &Ensurer{builder: builder, sourceDir: sourceDir, logger: logger}
}

// EnsureBuilt is a no-op when the generator binary already exists. Otherwise
// it runs the build and checks that both binaries came out of it.
func (e *Ensurer) EnsureBuilt(ctx context.Context, paths workspace.Paths) error {
	exists, err := utils.FileExists(paths.GeneratorPath)
	if err != nil {
		return err
	}
	if exists {
		e.logger.Printf("tsbs binaries found in %s, skipping build", paths.BinaryDir)
		return nil
	}

	e.logger.Printf("building tsbs from %s into %s", e.sourceDir, paths.BinaryDir)
	if err := e.builder.Build(ctx, e.sourceDir, paths.BinaryDir); err != nil {
		return utils.WithKind(ErrBuildFailure, err)
	}
	return RequireFiles(paths.GeneratorPath, paths.LoaderPath)
}

// RequireFiles returns ErrMissingArtifact naming the first path that does not exist.
func RequireFiles(paths ...string) error {
	for _, p := range paths {
		exists, err := utils.FileExists(p)
		if err != nil {
			return err
		}
		if !exists {
			return errors.Wrapf(ErrMissingArtifact, "%s", p)
		}
	}
	return nil
}
