// Package loadconfig owns the tsbs_load_greptime YAML document: its schema,
// the template it is first synthesized from, and the rules deciding when a
// persisted document is reused instead of rewritten.
package loadconfig

import (
	"fmt"
	"strconv"
)

// SchemaVersion is the only document version this package reads and writes.
// Documents without a schema-version key are treated as this version.
const SchemaVersion = 1

const (
	DefaultURLs      = "http://localhost:4000"
	DefaultGzip      = false
	DefaultBatchSize = "100"
	DefaultWorkers   = 4
)

// BenchConfig is the effective set of parameters for one load run.
type BenchConfig struct {
	File      string
	URLs      string
	Gzip      bool
	BatchSize string
	Workers   int
}

// DefaultBenchConfig has every field but File set to the shipped defaults.
func DefaultBenchConfig() BenchConfig {
	return BenchConfig{
		URLs:      DefaultURLs,
		Gzip:      DefaultGzip,
		BatchSize: DefaultBatchSize,
		Workers:   DefaultWorkers,
	}
}

// Validate rejects configs the loader could not run with.
func (c BenchConfig) Validate() error {
	if c.File == "" {
		return fmt.Errorf("data-source.file.location can't be empty")
	}
	if c.URLs == "" {
		return fmt.Errorf("loader.db-specific.urls can't be empty")
	}
	n, err := strconv.ParseUint(c.BatchSize, 10, 64)
	if err != nil || n == 0 {
		return fmt.Errorf("loader.runner.batch-size must be a positive integer, got '%s'", c.BatchSize)
	}
	if c.Workers < 1 {
		return fmt.Errorf("loader.runner.workers must be at least 1, got %d", c.Workers)
	}
	return nil
}

// IntString is a string that may also be written as a bare integer, as the
// loader's batch-size is.
type IntString string

// Document is the persisted tsbs_load_greptime configuration.
type Document struct {
	SchemaVersion int               `yaml:"schema-version" mapstructure:"schema-version"`
	DataSource    *DataSourceConfig `yaml:"data-source" mapstructure:"data-source"`
	Loader        *LoaderConfig     `yaml:"loader" mapstructure:"loader"`
}

type DataSourceConfig struct {
	File *FileDataSourceConfig `yaml:"file" mapstructure:"file"`
}

type FileDataSourceConfig struct {
	Location string `yaml:"location" mapstructure:"location"`
}

type LoaderConfig struct {
	DBSpecific *DBSpecificConfig `yaml:"db-specific" mapstructure:"db-specific"`
	Runner     *RunnerConfig     `yaml:"runner" mapstructure:"runner"`
}

type DBSpecificConfig struct {
	URLs string `yaml:"urls" mapstructure:"urls"`
	Gzip bool   `yaml:"gzip" mapstructure:"gzip"`
}

type RunnerConfig struct {
	BatchSize IntString `yaml:"batch-size" mapstructure:"batch-size"`
	Workers   int    `yaml:"workers" mapstructure:"workers"`
}

// NewDocument lays c out in the persisted document shape.
func NewDocument(c BenchConfig) *Document {
	return &Document{
		SchemaVersion: SchemaVersion,
		DataSource: &DataSourceConfig{
			File: &FileDataSourceConfig{Location: c.File},
		},
		Loader: &LoaderConfig{
			DBSpecific: &DBSpecificConfig{URLs: c.URLs, Gzip: c.Gzip},
			Runner:     &RunnerConfig{BatchSize: IntString(c.BatchSize), Workers: c.Workers},
		},
	}
}

// BenchConfig extracts the effective config. The document must have passed
// Parse, which guarantees every section is present.
func (d *Document) BenchConfig() BenchConfig {
	return BenchConfig{
		File:      d.DataSource.File.Location,
		URLs:      d.Loader.DBSpecific.URLs,
		Gzip:      d.Loader.DBSpecific.Gzip,
		BatchSize: string(d.Loader.Runner.BatchSize),
		Workers:   d.Loader.Runner.Workers,
	}
}
