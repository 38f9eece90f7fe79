package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"pyreload/internal/plan"
)

var planFormat string

var planCmd = &cobra.Command{
	Use:   "plan <module.py>",
	Short: "Compute the reload plan for a module",
	Long: `Compute the order in which a module and its in-boundary dependencies
would be re-executed, without touching any runtime.

Members of an import cycle appear twice: the second pass lets modules that
observed a partially-initialized partner re-bind against its final state.

Examples:
  pyreload plan pkg/app.py
  pyreload plan pkg/app.py --format json
  pyreload plan pkg/app.py --format yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runPlan,
}

func init() {
	planCmd.Flags().StringVar(&planFormat, "format", "text", "Output format: text, json, or yaml")
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	graph, err := analyzeModule(cfg, logger, args[0])
	if err != nil {
		return err
	}
	p := plan.Compute(graph)

	switch planFormat {
	case "json":
		data, err := json.MarshalIndent(p, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
	case "yaml":
		data, err := yaml.Marshal(p)
		if err != nil {
			return err
		}
		fmt.Print(string(data))
	case "text":
		printPlanText(graph.Len(), p)
	default:
		return fmt.Errorf("unknown format: %s", planFormat)
	}
	return nil
}

func printPlanText(moduleCount int, p *plan.Plan) {
	fmt.Printf("Reload plan for %s (%d modules, %d steps)\n", p.Root, moduleCount, p.Steps())
	for i, module := range p.Modules {
		fmt.Printf("  %2d. %s\n", i+1, module)
	}
	for _, cycle := range p.Cycles {
		fmt.Printf("\nCycle (two passes): %s\n", strings.Join(cycle, " <-> "))
	}
}
