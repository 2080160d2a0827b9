package loadconfig

import (
	"log"
	"os"

	"github.com/pkg/errors"
	"github.com/timescale/tsbs-quick/internal/utils"
)

// createExclusive is replaced in tests to lose the race for configPath.
var createExclusive = utils.CreateFileExclusive

// Reconciler decides between a persisted document and a fresh one built from
// the template. A persisted document is authoritative: once it exists, the
// caller's input file is ignored until Refresh is called explicitly.
type Reconciler struct {
	template *Document
	logger   *log.Logger
}

// NewReconciler parses template up front so a broken template fails before
// anything runs. A nil template means DefaultTemplate.
func NewReconciler(template []byte, logger *log.Logger) (*Reconciler, error) {
	if template == nil {
		template = DefaultTemplate()
	}
	doc, err := Parse(template)
	if err != nil {
		return nil, utils.WithKind(ErrConfigLoadFailure, errors.Wrap(err, "template"))
	}
	if logger == nil {
		logger = log.New(os.Stdout, "", log.LstdFlags)
	}
	return &Reconciler{template: doc, logger: logger}, nil
}

// Reconcile returns the persisted config at configPath if there is one, as is.
// Otherwise it writes the template defaults with inputFile as the data source
// and returns that. If a concurrent writer creates the document first, the
// winner's document is returned.
func (r *Reconciler) Reconcile(configPath, inputFile string) (BenchConfig, error) {
	exists, err := utils.FileExists(configPath)
	if err != nil {
		return BenchConfig{}, utils.WithKind(ErrConfigLoadFailure, err)
	}
	if exists {
		return r.reuse(configPath, inputFile)
	}

	c, err := r.fromTemplate(inputFile)
	if err != nil {
		return BenchConfig{}, err
	}
	created, err := createExclusive(configPath, 0644, writeDocument(c))
	if err != nil {
		return BenchConfig{}, errors.Wrapf(err, "could not write %s", configPath)
	}
	if !created {
		r.logger.Printf("%s appeared while writing it, using that one", configPath)
		return r.reuse(configPath, inputFile)
	}
	r.logger.Printf("wrote load config to %s", configPath)
	return c, nil
}

// Refresh rebuilds the document at configPath from the template and
// inputFile, replacing any persisted one.
func (r *Reconciler) Refresh(configPath, inputFile string) (BenchConfig, error) {
	c, err := r.fromTemplate(inputFile)
	if err != nil {
		return BenchConfig{}, err
	}
	if err := Write(configPath, c); err != nil {
		return BenchConfig{}, err
	}
	r.logger.Printf("refreshed load config at %s", configPath)
	return c, nil
}

func (r *Reconciler) reuse(configPath, inputFile string) (BenchConfig, error) {
	c, err := Load(configPath)
	if err != nil {
		return BenchConfig{}, err
	}
	r.logger.Printf("using load config %s", configPath)
	if c.File != inputFile {
		r.logger.Printf("persisted data-source.file.location %s takes precedence over %s", c.File, inputFile)
	}
	return c, nil
}

func (r *Reconciler) fromTemplate(inputFile string) (BenchConfig, error) {
	c := r.template.BenchConfig()
	c.File = inputFile
	if err := c.Validate(); err != nil {
		return BenchConfig{}, utils.WithKind(ErrConfigLoadFailure, err)
	}
	return c, nil
}
