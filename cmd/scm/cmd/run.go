package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/scmlang/scm/internal/diag"
	"github.com/scmlang/scm/pkg/scheme"
)

var evalExpr string

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Run a Scheme file or inline expression",
	Long: `Execute a Scheme program from a file or inline expression.

Examples:
  # Run a script file
  scm run program.scm

  # Evaluate an inline expression
  scm run -e "(display (+ 1 2))"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScript,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVarP(&evalExpr, "eval", "e", "", "evaluate inline code instead of reading from file")
}

func runScript(_ *cobra.Command, args []string) error {
	var source, sourceID string

	switch {
	case evalExpr != "":
		source, sourceID = evalExpr, "<eval>"
	case len(args) == 1:
		content, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read file %s: %w", args[0], err)
		}
		source, sourceID = string(content), args[0]
	default:
		return fmt.Errorf("either provide a file path or use -e for inline code")
	}

	cfg, err := loadConfigFlag()
	if err != nil {
		return err
	}

	in, err := scheme.New(cfg)
	if err != nil {
		return fmt.Errorf("constructing interpreter: %w", err)
	}

	if _, err := in.Eval(source, sourceID); err != nil {
		if d, ok := err.(*diag.Diagnostic); ok {
			fmt.Fprint(os.Stderr, d.Format(true))
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		return fmt.Errorf("execution failed")
	}
	return nil
}

// loadConfigFlag reads --config's YAML document if one was given, otherwise
// falls back to scheme.DefaultConfig.
func loadConfigFlag() (scheme.Config, error) {
	if configPath == "" {
		return scheme.DefaultConfig(), nil
	}
	doc, err := os.ReadFile(configPath)
	if err != nil {
		return scheme.Config{}, fmt.Errorf("reading config %s: %w", configPath, err)
	}
	return scheme.LoadConfig(doc)
}
