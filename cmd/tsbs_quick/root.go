package main

import (
	"context"
	"log"
	"os"
	"path/filepath"

	"github.com/blagojts/viper"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/timescale/tsbs-quick/internal/pipeline"
	"github.com/timescale/tsbs-quick/internal/process"
	"github.com/timescale/tsbs-quick/internal/utils"
	"github.com/timescale/tsbs-quick/internal/workspace"
)

const configFlag = "config"

func newRootCmd() *cobra.Command {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}

	cmd := &cobra.Command{
		Use:           "tsbs_quick",
		Short:         "Quick TSBS setup for GreptimeDB",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	fs := cmd.PersistentFlags()
	fs.String(pipeline.KeyWorkspace, workspace.DefaultRoot(cwd), "workspace directory")
	fs.String(pipeline.KeySourceDir, filepath.Join(cwd, "tsbs"), "tsbs source checkout handed to the build script")
	fs.String(pipeline.KeyBuildScript, filepath.Join(cwd, "build_tsbs.sh"), "script run as <script> <source-dir> <output-dir> when the binaries are missing")
	fs.String(configFlag, "", "settings file (default is ./tsbs_quick.yaml if present)")

	cmd.AddCommand(newGenerateCmd(), newGreptimeCmd())
	return cmd
}

// newPipeline reads the settings for cmd and builds a pipeline logging to its output.
func newPipeline(cmd *cobra.Command) (*pipeline.Pipeline, error) {
	configFile, err := cmd.Flags().GetString(configFlag)
	if err != nil {
		return nil, err
	}
	v := viper.New()
	if err := utils.SetupConfigFile(v, cmd.Flags(), configFile); err != nil {
		return nil, errors.Wrap(err, "could not read settings")
	}
	settings := pipeline.SettingsFromViper(v)

	logger := log.New(cmd.OutOrStdout(), "", log.LstdFlags)
	return pipeline.New(settings, process.NewRunner(logger), nil, logger)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
