package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Kreijstal/circuijts/pkg/circuit"
	"github.com/Kreijstal/circuijts/pkg/graph"
)

var (
	fmtWrite     bool
	fmtCanonical bool
)

var fmtCmd = &cobra.Command{
	Use:   "fmt <circuit_file>",
	Short: "Print the canonical form of a circuit file",
	Long: `Reformat a .circuijt file into its canonical textual form.

With --canonical, the file is lowered to the circuit graph and written
back from it: declarations first, terminal blocks for multi-terminal
devices, then chains and aliases with canonical net names.`,
	Args: cobra.ExactArgs(1),
	RunE: runFmt,
}

func init() {
	rootCmd.AddCommand(fmtCmd)
	fmtCmd.Flags().BoolVarP(&fmtWrite, "write", "w", false, "rewrite the file in place instead of printing")
	fmtCmd.Flags().BoolVarP(&fmtCanonical, "canonical", "c", false, "regenerate statements from the lowered graph")
}

func runFmt(cmd *cobra.Command, args []string) error {
	path := args[0]
	prog, err := circuit.ParseFile(path)
	if err != nil {
		return err
	}
	reportIssues(path, prog.Issues)

	stmts := prog.Statements
	if fmtCanonical {
		g, issues := graph.Build(prog)
		reportIssues(path, issues)
		stmts = graph.Reconstruct(g)
	}
	out := circuit.Format(stmts) + "\n"

	if fmtWrite {
		return os.WriteFile(path, []byte(out), 0o644)
	}
	fmt.Print(out)
	return nil
}
