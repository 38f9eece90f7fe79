package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"pyreload/internal/history"
	"pyreload/internal/reload"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded reload sessions",
	Long: `List recent reload sessions from the history database, newest first.

Examples:
  pyreload history
  pyreload history --limit 5`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of sessions to show")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if !cfg.History.Enabled {
		fmt.Println("History is disabled in configuration.")
		return nil
	}
	logger := newLogger(cfg)

	store, err := history.OpenStore(cfg.StateDir(rootFlag), logger)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	sessions, err := store.List(historyLimit)
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Println("No reload sessions recorded.")
		return nil
	}

	for _, session := range sessions {
		printSession(session)
	}
	return nil
}

func printSession(s reload.Session) {
	status := s.Status
	if s.Status == reload.StatusFailed {
		status = fmt.Sprintf("%s at %s", s.Status, s.Failed)
	}
	fmt.Printf("%s  %s  %s (%d/%d steps, %s)\n",
		s.StartedAt.Local().Format(time.DateTime),
		s.Root,
		status,
		s.Executed,
		len(s.Modules),
		s.Duration.Round(time.Millisecond),
	)
	if s.Cycles > 0 {
		fmt.Printf("    cycles: %d\n", s.Cycles)
	}
	if len(s.Modules) > 0 {
		fmt.Printf("    order: %s\n", strings.Join(s.Modules, " -> "))
	}
	if s.Error != "" {
		fmt.Printf("    error: %s\n", s.Error)
	}
}
