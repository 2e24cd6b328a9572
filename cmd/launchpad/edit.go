package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"launchpad/launch"
)

var (
	templateFlag string
	nameFlag     string
	typeFlag     string
	programFlag  string
	consoleFlag  string
	cwdFlag      string
	argFlags     []string
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Append a preset to the launch file",
	Long: `Append a preset built from flags, or start from a template and
override its fields.

Examples:
  launchpad add --name "train dit" --type debugpy --program scripts/train.py --arg --policy.type=dit
  launchpad add --template train-diffusion --name "my training run"`,
	Args: cobra.NoArgs,
	RunE: runAdd,
}

var removeCmd = &cobra.Command{
	Use:     "remove <name>",
	Aliases: []string{"rm"},
	Short:   "Remove a preset from the launch file",
	Args:    cobra.ExactArgs(1),
	RunE:    runRemove,
}

func init() {
	addCmd.Flags().StringVar(&templateFlag, "template", "", "Template to start from (see 'launchpad templates')")
	addCmd.Flags().StringVar(&nameFlag, "name", "", "Preset name")
	addCmd.Flags().StringVar(&typeFlag, "type", "", "Debugger type (python, debugpy, node, shell)")
	addCmd.Flags().StringVar(&programFlag, "program", "", "Script to execute")
	addCmd.Flags().StringVar(&consoleFlag, "console", "", "Console mode (integratedTerminal, internalConsole, externalTerminal)")
	addCmd.Flags().StringVar(&cwdFlag, "cwd", "", "Working directory for the program")
	addCmd.Flags().StringArrayVar(&argFlags, "arg", nil, "Argument token, repeatable, passed verbatim")
	rootCmd.AddCommand(addCmd, removeCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	cfg, lm, err := openLaunchFile()
	if err != nil {
		return err
	}

	var p launch.Preset
	if templateFlag != "" {
		t, err := launch.LoadTemplate(templateFlag, cfg.TemplatesDir)
		if err != nil {
			return err
		}
		p = t.Preset
	} else {
		p.Request = launch.RequestLaunch
	}

	if nameFlag != "" {
		p.Name = nameFlag
	}
	if typeFlag != "" {
		p.Type = typeFlag
	}
	if programFlag != "" {
		p.Program = programFlag
	}
	if consoleFlag != "" {
		p.Console = consoleFlag
	}
	if cwdFlag != "" {
		p.Cwd = cwdFlag
	}
	if len(argFlags) > 0 {
		p.Args = argFlags
	}

	report := launch.ValidateFile(launch.File{
		Version:        launch.DefaultVersion,
		Configurations: []launch.Preset{p},
	}, launch.LintOptions{KnownType: newRegistry(cfg).Known})
	if !report.OK() {
		for _, msg := range report.Errors {
			fmt.Printf("error: %s\n", msg)
		}
		return fmt.Errorf("preset is invalid")
	}

	if err := lm.Add(p); err != nil {
		return err
	}
	fmt.Printf("Added %q to %s\n", p.Name, lm.Path())
	return nil
}

func runRemove(cmd *cobra.Command, args []string) error {
	_, lm, err := openLaunchFile()
	if err != nil {
		return err
	}
	if err := lm.Remove(args[0]); err != nil {
		return err
	}
	fmt.Printf("Removed %q from %s\n", args[0], lm.Path())
	return nil
}
