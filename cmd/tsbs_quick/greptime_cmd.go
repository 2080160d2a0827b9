package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/timescale/tsbs-quick/internal/pipeline"
	"github.com/timescale/tsbs-quick/internal/workspace"
)

const inputNameFlag = "input-name"

func newGreptimeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "greptime",
		Short: "Load the workspace dataset into GreptimeDB with tsbs_load_greptime",
		Args:  cobra.NoArgs,
		RunE:  runGreptime,
	}
	fs := cmd.Flags()
	fs.StringP(inputNameFlag, "i", workspace.DefaultDataName, "dataset file name inside the workspace")
	fs.Bool(pipeline.KeyRefreshConfig, false, "rebuild tsbs_load_greptime.yaml from the template even if it exists")
	fs.String(pipeline.KeyConfigTemplate, "", "load config template (default is the built-in one)")
	fs.String(pipeline.KeyProfileFile, "", "write CPU and memory samples of the loader to this CSV file")
	return cmd
}

func runGreptime(cmd *cobra.Command, _ []string) error {
	name, err := cmd.Flags().GetString(inputNameFlag)
	if err != nil {
		return err
	}
	p, err := newPipeline(cmd)
	if err != nil {
		return err
	}
	c, err := p.Greptime(commandContext(cmd), name)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Loaded %s into %s (batch size %s, %d workers)\n", c.File, c.URLs, c.BatchSize, c.Workers)
	return nil
}
