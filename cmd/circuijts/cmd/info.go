package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Kreijstal/circuijts/pkg/circuit"
	"github.com/Kreijstal/circuijts/pkg/graph"
)

var infoCmd = &cobra.Command{
	Use:   "info <circuit_file>",
	Short: "Show circuit summary",
	Long:  `Display a summary of a .circuijt file: nodes, component counts, and net classes.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	path := args[0]
	prog, err := circuit.ParseFile(path)
	if err != nil {
		return err
	}
	reportIssues(path, prog.Issues)

	sum := circuit.Summarize(prog.Statements)
	fmt.Printf("Circuit: %s\n", path)
	fmt.Println()
	fmt.Println("Statistics:")
	fmt.Printf("  Nodes: %d (%d explicit, %d implicit)\n", sum.NodeCount(), len(sum.ExplicitNodes), len(sum.ImplicitNodes))
	fmt.Printf("  Components: %d\n", len(sum.Components))
	fmt.Printf("  Resistors: %d\n", sum.Resistors)
	fmt.Printf("  Capacitors: %d\n", sum.Capacitors)
	fmt.Printf("  Inductors: %d\n", sum.Inductors)
	fmt.Printf("  NMOS: %d\n", sum.NMOS)
	fmt.Printf("  PMOS: %d\n", sum.PMOS)
	fmt.Printf("  Voltage sources: %d\n", sum.Voltages)
	fmt.Printf("  Current sources: %d\n", sum.Currents)
	fmt.Printf("  Opamps: %d\n", sum.Opamps)
	fmt.Printf("  Parallel blocks: %d\n", sum.ParallelBlocks)

	g, issues := graph.Build(prog)
	reportIssues(path, issues)

	fmt.Println()
	fmt.Println("Net classes:")
	for _, class := range g.Classes() {
		names := make([]string, len(class))
		for i, n := range class {
			names[i] = n.Name
		}
		fmt.Printf("  %s: %s\n", g.PreferredName(class[0].ID), strings.Join(names, ", "))
	}
	return nil
}
