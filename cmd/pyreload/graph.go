package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var graphFormat string

var graphCmd = &cobra.Command{
	Use:   "graph <module.py>",
	Short: "Export a module's dependency graph",
	Long: `Build the from-import dependency graph for a module and print it in a
visualization-friendly format.

Examples:
  pyreload graph pkg/app.py --format dot | dot -Tsvg > graph.svg
  pyreload graph pkg/app.py --format mermaid
  pyreload graph pkg/app.py --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runGraph,
}

func init() {
	graphCmd.Flags().StringVar(&graphFormat, "format", "dot", "Output format: dot, mermaid, or json")
	rootCmd.AddCommand(graphCmd)
}

func runGraph(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	graph, err := analyzeModule(cfg, logger, args[0])
	if err != nil {
		return err
	}

	switch graphFormat {
	case "dot":
		fmt.Print(graph.DOT())
	case "mermaid":
		fmt.Print(graph.Mermaid())
	case "json":
		data, err := json.MarshalIndent(graph, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
	default:
		return fmt.Errorf("unknown format: %s", graphFormat)
	}
	return nil
}
