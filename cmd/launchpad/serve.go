package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"launchpad/api"
	"launchpad/history/sqlite"
	"launchpad/launch"
	"launchpad/run"
)

var portFlag int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the launchpad HTTP API",
	Long: `Start the HTTP server exposing the launch file, the debugger
adapters, live runs with WebSocket output streaming, and the run
history.

Examples:
  launchpad serve
  launchpad serve --port 9090`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&portFlag, "port", 0, "Port to listen on (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, lm, err := openLaunchFile()
	if err != nil {
		return err
	}

	store, err := sqlite.Open(cfg.History.DBPath)
	if err != nil {
		return fmt.Errorf("opening history: %w", err)
	}
	defer store.Close()

	srv := api.NewServer(api.Options{
		Presets:  lm,
		Runs:     run.NewManager(),
		Adapters: newRegistry(cfg),
		History:  store,
		Vars:     launch.NewVars(cfg.Workspace),
	})

	port := cfg.Server.Port
	if portFlag > 0 {
		port = portFlag
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		srv.Shutdown(context.Background())
	}()

	if err := srv.Start(port); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
