// Package datagen produces the benchmark dataset with tsbs_generate_data.
package datagen

import (
	"context"
	"io"
	"log"
	"os"

	"github.com/pkg/errors"
	"github.com/timescale/tsbs-quick/internal/artifacts"
	"github.com/timescale/tsbs-quick/internal/process"
	"github.com/timescale/tsbs-quick/internal/utils"
)

// ErrGenerationFailure means tsbs_generate_data did not produce a dataset.
var ErrGenerationFailure = errors.New("data generation failed")

// Generator creates a dataset file once and treats its existence as proof
// that it is done. File contents are never inspected.
type Generator struct {
	exec   process.Executor
	params Params
	logger *log.Logger
}

func NewGenerator(exec process.Executor, params Params, logger *log.Logger) *Generator {
	if logger == nil {
		logger = log.New(os.Stdout, "", log.LstdFlags)
	}
	return &Generator{exec: exec, params: params, logger: logger}
}

// EnsureGenerated writes the dataset to outputFile unless it already exists.
// It reports whether a new file was generated. The generator's stdout goes to
// a temp file that only becomes outputFile after a clean exit.
func (g *Generator) EnsureGenerated(ctx context.Context, generatorPath, outputFile string) (bool, error) {
	exists, err := utils.FileExists(outputFile)
	if err != nil {
		return false, err
	}
	if exists {
		g.logger.Printf("dataset %s already exists, skipping generation", outputFile)
		return false, nil
	}

	if err := g.params.Validate(); err != nil {
		return false, utils.WithKind(ErrGenerationFailure, err)
	}
	if err := artifacts.RequireFiles(generatorPath); err != nil {
		return false, err
	}

	g.logger.Printf("generating dataset %s", outputFile)
	created, err := utils.CreateFileExclusive(outputFile, 0644, func(w io.Writer) error {
		return g.exec.Run(ctx, process.Command{
			Name:   "generate data",
			Path:   generatorPath,
			Args:   g.params.Args(),
			Stdout: w,
		})
	})
	if err != nil {
		return false, utils.WithKind(ErrGenerationFailure, err)
	}
	if !created {
		g.logger.Printf("dataset %s was created concurrently, keeping it", outputFile)
	}
	return created, nil
}
