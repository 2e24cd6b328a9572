package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"launchpad/history"
	"launchpad/history/sqlite"
)

var (
	statusFilter string
	limitFlag    int
	formatFlag   string
)

var historyCmd = &cobra.Command{
	Use:     "history",
	Aliases: []string{"hist"},
	Short:   "Inspect past launches",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded launches, newest first",
	Args:  cobra.NoArgs,
	RunE:  runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one launch record",
	Long:  `Show a recorded launch. The run id may be abbreviated to any unambiguous prefix.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <run-id>",
	Short: "Delete a launch record",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryDelete,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd, historyShowCmd, historyDeleteCmd)

	historyListCmd.Flags().StringVar(&statusFilter, "status", "", "Filter by status (running, exited, failed, killed)")
	historyListCmd.Flags().IntVar(&limitFlag, "limit", 20, "Max records to show")
	historyShowCmd.Flags().StringVar(&formatFlag, "format", "md", "Output format: md or json")
}

func openHistory() (history.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return sqlite.Open(cfg.History.DBPath)
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	store, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.ListRecords(context.Background(), history.ListOptions{
		Status: history.RunStatus(statusFilter),
		Limit:  limitFlag,
	})
	if err != nil {
		return err
	}

	if len(records) == 0 {
		fmt.Println("No launches recorded.")
		return nil
	}

	fmt.Printf("%-10s %-8s %-30s %-6s %s\n", "ID", "STATUS", "PRESET", "EXIT", "STARTED")
	fmt.Println(strings.Repeat("─", 80))
	for _, rec := range records {
		preset := rec.Preset
		if len(preset) > 28 {
			preset = preset[:28] + ".."
		}
		exit := "-"
		if rec.Status != history.StatusRunning {
			exit = fmt.Sprintf("%d", rec.ExitCode)
		}
		fmt.Printf("%-10s %-8s %-30s %-6s %s\n",
			rec.ID[:8], rec.Status, preset, exit, timeAgo(rec.StartedAt))
	}
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	store, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	rec, err := store.GetRecord(context.Background(), args[0])
	if err != nil {
		return err
	}

	switch formatFlag {
	case "json":
		data, err := history.ExportJSON(rec)
		if err != nil {
			return err
		}
		fmt.Println(string(data))
	default:
		fmt.Print(history.ExportMarkdown(rec))
	}
	return nil
}

func runHistoryDelete(cmd *cobra.Command, args []string) error {
	store, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	rec, err := store.GetRecord(context.Background(), args[0])
	if err != nil {
		return err
	}
	if err := store.DeleteRecord(context.Background(), rec.ID); err != nil {
		return err
	}
	fmt.Printf("Deleted record %s\n", rec.ID[:8])
	return nil
}

func timeAgo(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
