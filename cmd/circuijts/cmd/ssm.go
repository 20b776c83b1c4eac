package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Kreijstal/circuijts/pkg/circuit"
	"github.com/Kreijstal/circuijts/pkg/ssm"
)

var (
	ssmOutputDir string
	ssmStdout    bool
	ssmDebugDump bool
)

var ssmCmd = &cobra.Command{
	Use:   "ssm <circuit_file>",
	Short: "Generate small-signal models for MOS devices",
	Long: `Replace every MOS transistor in a .circuijt file with its small-signal
equivalent (output resistance in parallel with gm and body-effect
controlled sources) and write the model circuit plus the transformation
rules that produced it.`,
	Args: cobra.ExactArgs(1),
	RunE: runSSM,
}

func init() {
	rootCmd.AddCommand(ssmCmd)
	ssmCmd.Flags().StringVarP(&ssmOutputDir, "output-dir", "o", "small_signal_models", "output directory for generated models")
	ssmCmd.Flags().BoolVarP(&ssmStdout, "stdout", "s", false, "print output to stdout instead of files")
	ssmCmd.Flags().BoolVar(&ssmDebugDump, "debug-dump", false, "dump intermediate AST and graph structures")
}

func runSSM(cmd *cobra.Command, args []string) error {
	path := args[0]
	g, err := loadGraph(path, ssmDebugDump)
	if err != nil {
		return err
	}

	stmts, rules := ssm.Generate(g)
	if len(rules) == 0 {
		fmt.Printf("No MOS transistors found in %s\n", path)
		return nil
	}

	header := fmt.Sprintf("; Small Signal Model Generated Automatically\n; Original circuit: %s\n\n", path)
	model := header + circuit.Format(stmts) + "\n"
	rulesText := ssm.RulesText(rules)

	if ssmStdout {
		fmt.Print(model)
		fmt.Println()
		fmt.Print(rulesText)
		return nil
	}

	if err := os.MkdirAll(ssmOutputDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	modelPath := filepath.Join(ssmOutputDir, base+"_ssm.circuijt")
	rulesPath := filepath.Join(ssmOutputDir, base+"_rules.txt")

	if err := os.WriteFile(modelPath, []byte(model), 0o644); err != nil {
		return fmt.Errorf("writing model: %w", err)
	}
	if err := os.WriteFile(rulesPath, []byte(rulesText), 0o644); err != nil {
		return fmt.Errorf("writing rules: %w", err)
	}
	fmt.Printf("Generated small signal model in %s\n", modelPath)
	fmt.Printf("Transformation rules saved to %s\n", rulesPath)
	return nil
}
