package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"launchpad/launch"
)

var lintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Validate the launch file",
	Long: `Check every preset in the launch file. Errors (missing required
fields, bad request or console values) make the command exit nonzero;
warnings (duplicate names, unknown types, missing programs) are
printed but never fail the check.`,
	Args: cobra.NoArgs,
	RunE: runLint,
}

func init() {
	rootCmd.AddCommand(lintCmd)
}

func runLint(cmd *cobra.Command, args []string) error {
	cfg, lm, err := openLaunchFile()
	if err != nil {
		return err
	}

	registry := newRegistry(cfg)
	report := launch.ValidateFile(lm.Get(), launch.LintOptions{
		KnownType: registry.Known,
		Workspace: cfg.Workspace,
	})

	for _, msg := range report.Errors {
		fmt.Printf("error: %s\n", msg)
	}
	for _, msg := range report.Warnings {
		fmt.Printf("warning: %s\n", msg)
	}

	if !report.OK() {
		return fmt.Errorf("%d error(s) in %s", len(report.Errors), lm.Path())
	}
	fmt.Printf("%s: ok (%d warning(s))\n", lm.Path(), len(report.Warnings))
	return nil
}
