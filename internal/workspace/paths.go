// Package workspace maps a workspace root to the fixed locations of every
// artifact tsbs_quick manages.
package workspace

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

const (
	binaryDirName     = "bin"
	generatorName     = "tsbs_generate_data"
	loaderName        = "tsbs_load_greptime"
	loadConfigName    = loaderName + ".yaml"
	DefaultDataName   = "bench-data.lp"
	DefaultRootSuffix = "workspace"
)

// Paths holds the locations derived from a workspace root. It has no
// lifecycle of its own.
type Paths struct {
	Root           string
	BinaryDir      string
	GeneratorPath  string
	LoaderPath     string
	LoadConfigPath string
}

// Resolve derives Paths from root. It never touches the filesystem.
func Resolve(root string) Paths {
	root = filepath.Clean(root)
	binaryDir := filepath.Join(root, binaryDirName)
	return Paths{
		Root:           root,
		BinaryDir:      binaryDir,
		GeneratorPath:  filepath.Join(binaryDir, generatorName),
		LoaderPath:     filepath.Join(binaryDir, loaderName),
		LoadConfigPath: filepath.Join(root, loadConfigName),
	}
}

// DefaultRoot is the workspace used when none is given: ./workspace under cwd.
func DefaultRoot(cwd string) string {
	return filepath.Join(cwd, DefaultRootSuffix)
}

// DataFile is the location of a dataset called name inside the workspace.
func (p Paths) DataFile(name string) string {
	return filepath.Join(p.Root, name)
}

// EnsureRoot creates the workspace root and binary directory if needed.
func (p Paths) EnsureRoot() error {
	for _, dir := range []string{p.Root, p.BinaryDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrapf(err, "could not create workspace directory %s", dir)
		}
	}
	return nil
}
