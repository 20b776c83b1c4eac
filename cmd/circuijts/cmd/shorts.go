package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Kreijstal/circuijts/pkg/circuit"
	"github.com/Kreijstal/circuijts/pkg/graph"
)

var shortsDebugDump bool

var shortsCmd = &cobra.Command{
	Use:   "shorts <circuit_file>",
	Short: "Detect topological short circuits",
	Long: `Parse a .circuijt file, build the canonical circuit graph, and report
every topological short circuit: component terminals collapsing onto one
net, independent sources tied across the same node pair, and supply
rails merged together.

Exit code is 0 when no shorts are found, 2 when the report is non-empty.`,
	Args: cobra.ExactArgs(1),
	RunE: runShorts,
}

func init() {
	rootCmd.AddCommand(shortsCmd)
	shortsCmd.Flags().BoolVar(&shortsDebugDump, "debug-dump", false, "dump intermediate AST and graph structures")
}

func runShorts(cmd *cobra.Command, args []string) error {
	path := args[0]
	g, err := loadGraph(path, shortsDebugDump)
	if err != nil {
		return err
	}

	findings := graph.DetectShorts(g)
	fmt.Printf("--- Short Circuit Report for %s ---\n", path)
	fmt.Println(graph.Report(findings))

	if len(findings) > 0 {
		os.Exit(2)
	}
	return nil
}

// loadGraph is the shared front half of every subcommand: parse the
// file, report accumulated issues on stderr without stopping, and lower
// the result into a graph.
func loadGraph(path string, debugDump bool) (*graph.Graph, error) {
	prog, err := circuit.ParseFile(path)
	if err != nil {
		return nil, err
	}

	if debugDump {
		fmt.Println("--- DEBUG DUMP: Parsed statements ---")
		fmt.Println(circuit.Format(prog.Statements))
	}
	reportIssues(path, prog.Issues)

	g, issues := graph.Build(prog)
	reportIssues(path, issues)

	if debugDump {
		dumpGraph(g)
	}
	slog.Debug("graph built",
		"file", path,
		"nodes", len(g.Nodes()),
		"edges", len(g.Edges()),
		"instances", len(g.Instances()))
	return g, nil
}

func reportIssues(path string, issues []error) {
	if len(issues) == 0 {
		return
	}
	fmt.Fprintf(os.Stderr, "%s: %d issue(s):\n", path, len(issues))
	for _, issue := range issues {
		fmt.Fprintf(os.Stderr, "  %v\n", issue)
	}
}

func dumpGraph(g *graph.Graph) {
	fmt.Println("--- DEBUG DUMP: Graph structure ---")
	fmt.Println("Nodes:")
	for _, n := range g.Nodes() {
		fmt.Printf("  %d %s (%s) -> net %q\n", n.ID, n.Name, n.Kind, g.PreferredName(n.ID))
	}
	fmt.Println("Edges:")
	for _, e := range g.Edges() {
		label := e.Instance
		switch e.Kind {
		case graph.EdgeControlled:
			label = e.Expression() + " (" + e.Direction.String() + ")"
		case graph.EdgeNoise:
			label = e.NoiseID + " (" + e.Direction.String() + ")"
		}
		fmt.Printf("  %s: %q -- %q\n", label, g.PreferredName(e.A), g.PreferredName(e.B))
	}
	fmt.Println("Net classes:")
	for _, class := range g.Classes() {
		names := make([]string, len(class))
		for i, n := range class {
			names[i] = n.Name
		}
		fmt.Printf("  %q: %v\n", g.PreferredName(class[0].ID), names)
	}
}
