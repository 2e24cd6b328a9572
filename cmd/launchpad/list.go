package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List the presets in the launch file",
	Args:    cobra.NoArgs,
	RunE:    runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	_, lm, err := openLaunchFile()
	if err != nil {
		return err
	}

	file := lm.Get()
	if len(file.Configurations) == 0 {
		fmt.Printf("No presets in %s\n", lm.Path())
		return nil
	}

	fmt.Printf("%-30s %-10s %-8s %-40s %s\n", "NAME", "TYPE", "REQUEST", "PROGRAM", "ARGS")
	fmt.Println(strings.Repeat("─", 95))
	for _, p := range file.Configurations {
		name := p.Name
		if len(name) > 28 {
			name = name[:28] + ".."
		}
		program := p.Program
		if len(program) > 38 {
			program = ".." + program[len(program)-36:]
		}
		fmt.Printf("%-30s %-10s %-8s %-40s %d\n", name, p.Type, p.Request, program, len(p.Args))
	}
	return nil
}
