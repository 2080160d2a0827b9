package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/timescale/tsbs-quick/internal/workspace"
)

const outputNameFlag = "output-name"

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the benchmark dataset into the workspace, unless it already exists",
		Args:  cobra.NoArgs,
		RunE:  runGenerate,
	}
	cmd.Flags().StringP(outputNameFlag, "o", workspace.DefaultDataName, "dataset file name inside the workspace")
	return cmd
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	name, err := cmd.Flags().GetString(outputNameFlag)
	if err != nil {
		return err
	}
	p, err := newPipeline(cmd)
	if err != nil {
		return err
	}
	out, err := p.Generate(commandContext(cmd), name)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Dataset ready: %s\n", out)
	return nil
}
