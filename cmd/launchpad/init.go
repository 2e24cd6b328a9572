package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"launchpad/launch"
)

var initForceFlag bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter launch file",
	Long: `Create the launch file with one preset per built-in template, ready
to be edited. Refuses to overwrite an existing file unless --force is
given.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List the available preset templates",
	Args:  cobra.NoArgs,
	RunE:  runTemplates,
}

func init() {
	initCmd.Flags().BoolVar(&initForceFlag, "force", false, "Overwrite an existing launch file")
	rootCmd.AddCommand(initCmd, templatesCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	path := cfg.ResolvedLaunchFile()
	if _, err := os.Stat(path); err == nil {
		if !initForceFlag {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		// --force also recovers from an unparseable existing file.
		if err := os.Remove(path); err != nil {
			return err
		}
	}

	lm, err := launch.NewManager(path)
	if err != nil {
		return err
	}

	starter, err := launch.StarterFile()
	if err != nil {
		return err
	}
	if err := lm.Save(starter); err != nil {
		return err
	}
	fmt.Printf("Wrote %s with %d starter preset(s)\n", lm.Path(), len(starter.Configurations))
	return nil
}

func runTemplates(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	templates, err := launch.Templates(cfg.TemplatesDir)
	if err != nil {
		return err
	}

	fmt.Printf("%-20s %s\n", "NAME", "DESCRIPTION")
	for _, t := range templates {
		fmt.Printf("%-20s %s\n", t.Name, t.Description)
	}
	return nil
}
