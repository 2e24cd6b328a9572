package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"launchpad/history"
	"launchpad/history/sqlite"
	"launchpad/launch"
	"launchpad/run"
)

var (
	dryRunFlag bool
	noPTYFlag  bool
)

var runCmd = &cobra.Command{
	Use:   "run <name>",
	Short: "Run a preset in the foreground",
	Long: `Resolve a preset by name, expand its variables, build the command
for its debugger type and run it as a child process. Output streams to
the terminal and the child's exit code becomes launchpad's own.

Examples:
  launchpad run "train dit policy"
  launchpad run "visualize dataset" --dry-run`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().BoolVar(&dryRunFlag, "dry-run", false, "Print the resolved command without running it")
	runCmd.Flags().BoolVar(&noPTYFlag, "no-pty", false, "Run with plain pipes even for terminal presets")
	rootCmd.AddCommand(runCmd)
}

// exitCodeError carries a child's exit code out of a RunE so main can
// propagate it as the process exit status.
type exitCodeError struct {
	code int
}

func (e exitCodeError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, lm, err := openLaunchFile()
	if err != nil {
		return err
	}

	p, err := lm.Find(args[0])
	if err != nil {
		return err
	}

	vars := launch.NewVars(cfg.Workspace)
	resolved, err := vars.ExpandPreset(p)
	if err != nil {
		return fmt.Errorf("resolving preset %q: %w", p.Name, err)
	}

	argv, err := newRegistry(cfg).Command(resolved)
	if err != nil {
		return fmt.Errorf("preset %q: %w", p.Name, err)
	}

	if dryRunFlag {
		fmt.Println(strings.Join(argv, " "))
		return nil
	}

	dir := resolved.Cwd
	if dir == "" {
		dir = cfg.Workspace
	}

	runs := run.NewManager()
	rn, err := runs.Create(run.Spec{
		Preset: p.Name,
		Argv:   argv,
		Dir:    dir,
		Env:    resolved.Env,
		UsePTY: !noPTYFlag && resolved.EffectiveConsole() != launch.ConsoleInternal,
	})
	if err != nil {
		return fmt.Errorf("starting %q: %w", p.Name, err)
	}

	store, storeErr := sqlite.Open(cfg.History.DBPath)
	if storeErr != nil {
		// A broken history database must not stop a launch.
		log.Printf("history unavailable: %v", storeErr)
	} else {
		defer store.Close()
		rec := &history.Record{
			ID:       rn.ID,
			Preset:   p.Name,
			Program:  p.Program,
			Args:     p.Args,
			Argv:     argv,
			ExitCode: -1,
		}
		if err := store.CreateRecord(context.Background(), rec); err != nil {
			log.Printf("history: recording run %s: %v", rn.ID, err)
			store = nil
		}
	}

	// Forward our stdin to the child. The goroutine leaks until our own
	// stdin closes, which for a foreground tool is process exit anyway.
	go func() {
		buf := make([]byte, 4096)
		for {
			n, err := os.Stdin.Read(buf)
			if n > 0 {
				if _, werr := rn.WriteInput(buf[:n]); werr != nil {
					return
				}
			}
			if err != nil {
				return
			}
		}
	}()

	streamOutput(rn)

	code, _ := rn.ExitCode()
	if store != nil {
		status := history.RunStatus(rn.Status())
		if err := store.FinishRecord(context.Background(), rn.ID, status, code); err != nil {
			log.Printf("history: finishing run %s: %v", rn.ID, err)
		}
	}

	if code != 0 {
		return exitCodeError{code: code}
	}
	return nil
}

// streamOutput copies the run's buffered and live output to stdout
// until the process exits.
func streamOutput(rn *run.Run) {
	out := make(chan []byte, 256)
	kick := rn.SetClient(out)
	defer rn.ClearClient(out)

	if snap := rn.ScrollbackSnapshot(); len(snap) > 0 {
		os.Stdout.Write(snap)
	}

	for {
		select {
		case data := <-out:
			os.Stdout.Write(data)
		case <-kick:
			return
		case <-rn.Done():
			// Drain whatever the read loop queued before it closed done.
			for {
				select {
				case data := <-out:
					os.Stdout.Write(data)
				default:
					return
				}
			}
		}
	}
}
