// Package cmd is the scm command-line front end: a thin cobra tree around
// pkg/scheme, the way the teacher's cmd/dwscript/cmd wraps its own engine.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Version is set by build flags; unset in development builds.
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:     "scm",
	Short:   "An R7RS-small Scheme interpreter",
	Long:    `scm runs programs, or evaluates them interactively, written against the R7RS-small kernel implemented in pkg/scheme.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
`, GitCommit))
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML interpreter config file (see pkg/scheme.LoadConfig)")
}
