package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/scmlang/scm/internal/diag"
	"github.com/scmlang/scm/pkg/scheme"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start an interactive Scheme REPL",
	RunE:  runRepl,
}

func init() {
	rootCmd.AddCommand(replCmd)
}

// runRepl reads one line at a time from stdin and evaluates it against a
// single long-lived interpreter, so top-level define/define-syntax forms
// from earlier lines stay visible to later ones. There is no teacher
// line-editing dependency to ground this on (go-dws ships no interactive
// REPL), so it uses bufio.Scanner directly rather than reaching for a
// readline-style library the corpus never imports.
func runRepl(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfigFlag()
	if err != nil {
		return err
	}
	in, err := scheme.New(cfg)
	if err != nil {
		return fmt.Errorf("constructing interpreter: %w", err)
	}

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Println("scm REPL - Ctrl+D to exit")
	for line := 1; ; line++ {
		fmt.Print("scm> ")
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		result, err := in.EvalRepl(text, fmt.Sprintf("<repl:%d>", line))
		if err != nil {
			if d, ok := err.(*diag.Diagnostic); ok {
				fmt.Fprint(os.Stderr, d.Format(true))
			} else {
				fmt.Fprintln(os.Stderr, err)
			}
			continue
		}
		fmt.Println(result.Write())
	}
}
