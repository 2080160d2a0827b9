// Package pipeline wires the components into the generate and greptime
// commands. Each stage runs once, in order, and the first failure stops the run.
package pipeline

import (
	"context"
	"log"
	"os"

	"github.com/timescale/tsbs-quick/internal/artifacts"
	"github.com/timescale/tsbs-quick/internal/datagen"
	"github.com/timescale/tsbs-quick/internal/loadrun"
	"github.com/timescale/tsbs-quick/internal/process"
	"github.com/timescale/tsbs-quick/internal/workspace"
	"github.com/timescale/tsbs-quick/pkg/loadconfig"
)

// Stage is how far a pipeline run got.
type Stage int

const (
	Init Stage = iota
	PathsResolved
	ArtifactsEnsured
	DataEnsured
	ConfigReconciled
	LoadRan
	Done
)

var stageNames = [...]string{"init", "paths resolved", "artifacts ensured", "data ensured", "config reconciled", "load ran", "done"}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return "unknown"
	}
	return stageNames[s]
}

type Pipeline struct {
	settings   Settings
	paths      workspace.Paths
	ensurer    *artifacts.Ensurer
	generator  *datagen.Generator
	reconciler *loadconfig.Reconciler
	loader     *loadrun.Runner
	logger     *log.Logger

	stage Stage
}

// New builds a Pipeline. Every process goes through exec, the build step
// through builder; a nil builder runs Settings.BuildScript.
func New(s Settings, exec process.Executor, builder artifacts.Builder, logger *log.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = log.New(os.Stdout, "", log.LstdFlags)
	}
	if builder == nil {
		builder = &artifacts.ScriptBuilder{Script: s.BuildScript, Exec: exec}
	}

	var template []byte
	if s.ConfigTemplate != "" {
		var err error
		if template, err = loadconfig.ReadTemplate(s.ConfigTemplate); err != nil {
			return nil, err
		}
	}
	reconciler, err := loadconfig.NewReconciler(template, logger)
	if err != nil {
		return nil, err
	}

	loader := loadrun.NewRunner(exec, logger)
	loader.ProfileFile = s.ProfileFile

	return &Pipeline{
		settings:   s,
		ensurer:    artifacts.NewEnsurer(builder, s.SourceDir, logger),
		generator:  datagen.NewGenerator(exec, s.Generate, logger),
		reconciler: reconciler,
		loader:     loader,
		logger:     logger,
	}, nil
}

// Stage reports the last stage the pipeline reached.
func (p *Pipeline) Stage() Stage {
	return p.stage
}

// Paths is the resolved workspace; valid from PathsResolved on.
func (p *Pipeline) Paths() workspace.Paths {
	return p.paths
}

func (p *Pipeline) advance(s Stage) {
	p.stage = s
	p.logger.Printf("stage: %s", s)
}

func (p *Pipeline) prepare(ctx context.Context) error {
	p.paths = workspace.Resolve(p.settings.Workspace)
	if err := p.paths.EnsureRoot(); err != nil {
		return err
	}
	p.advance(PathsResolved)

	if err := p.ensurer.EnsureBuilt(ctx, p.paths); err != nil {
		return err
	}
	p.advance(ArtifactsEnsured)
	return nil
}

// Generate makes sure the dataset outputName exists in the workspace and
// returns its path.
func (p *Pipeline) Generate(ctx context.Context, outputName string) (string, error) {
	if err := p.prepare(ctx); err != nil {
		return "", err
	}

	out := p.paths.DataFile(outputName)
	if _, err := p.generator.EnsureGenerated(ctx, p.paths.GeneratorPath, out); err != nil {
		return "", err
	}
	p.advance(DataEnsured)
	p.advance(Done)
	return out, nil
}

// Greptime reconciles the load config for dataset inputName and runs the
// loader with it. It returns the config the loader ran with.
func (p *Pipeline) Greptime(ctx context.Context, inputName string) (loadconfig.BenchConfig, error) {
	if err := p.prepare(ctx); err != nil {
		return loadconfig.BenchConfig{}, err
	}

	input := p.paths.DataFile(inputName)
	var (
		c   loadconfig.BenchConfig
		err error
	)
	if p.settings.RefreshConfig {
		c, err = p.reconciler.Refresh(p.paths.LoadConfigPath, input)
	} else {
		c, err = p.reconciler.Reconcile(p.paths.LoadConfigPath, input)
	}
	if err != nil {
		return loadconfig.BenchConfig{}, err
	}
	p.advance(ConfigReconciled)

	if err := p.loader.Run(ctx, p.paths.LoaderPath, c); err != nil {
		return c, err
	}
	p.advance(LoadRan)
	p.advance(Done)
	return c, nil
}
