package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"launchpad/launch"
)

var showCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show a preset and its fully resolved command line",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	cfg, lm, err := openLaunchFile()
	if err != nil {
		return err
	}

	p, err := lm.Find(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("Name:    %s\n", p.Name)
	fmt.Printf("Type:    %s\n", p.Type)
	fmt.Printf("Request: %s\n", p.Request)
	fmt.Printf("Program: %s\n", p.Program)
	fmt.Printf("Console: %s\n", p.EffectiveConsole())
	if p.Cwd != "" {
		fmt.Printf("Cwd:     %s\n", p.Cwd)
	}
	if p.StopOnEntry {
		fmt.Println("Stop on entry: yes")
	}
	if len(p.Args) > 0 {
		fmt.Println("Args:")
		for _, a := range p.Args {
			fmt.Printf("  %s\n", a)
		}
	}
	if len(p.Env) > 0 {
		fmt.Println("Env:")
		for k, v := range p.Env {
			fmt.Printf("  %s=%s\n", k, v)
		}
	}

	// The resolved command is best effort: attach presets and unknown
	// variables are shown as the reason instead of an argv.
	vars := launch.NewVars(cfg.Workspace)
	resolved, err := vars.ExpandPreset(p)
	if err != nil {
		fmt.Printf("\nCommand: (unresolvable: %v)\n", err)
		return nil
	}
	argv, err := newRegistry(cfg).Command(resolved)
	if err != nil {
		fmt.Printf("\nCommand: (not runnable: %v)\n", err)
		return nil
	}
	fmt.Printf("\nCommand: %s\n", strings.Join(argv, " "))
	return nil
}
