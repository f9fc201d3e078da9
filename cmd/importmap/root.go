// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"importmap-cli/internal/issue"
	"importmap-cli/pkg/types"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand builds the command tree for app.
func NewRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "importmap",
		Short: "Parse, inspect and resolve import maps",
		Long: TitleStyle.Render("importmap") + SubtitleStyle.Render(" - Parse, inspect and resolve import maps") + `

importmap reads import map documents as browsers and Deno do: relative
addresses are resolved against a base URL, bad entries are dropped with a
diagnostic, and bare specifiers are resolved through scopes and imports.

` + SubtitleStyle.Render("Examples:") + `
  importmap parse import_map.json             Show the normalized import map
  importmap parse -o json import_map.json     Print it as JSON
  importmap resolve lodash --map map.json     Resolve a specifier
  importmap deno                              Use the import map of deno.json
  importmap explain unknown-key               Explain a diagnostic`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			app.setVerbose(app.verbose)
		},
	}

	rootCmd.SetIn(app.stdin)
	rootCmd.SetOut(app.stdout)
	rootCmd.SetErr(app.stderr)

	rootCmd.PersistentFlags().BoolVarP(&app.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&app.configPath, "config", "", "config file (default is $HOME/.config/importmap/config.cue)")

	rootCmd.AddCommand(newParseCommand(app))
	rootCmd.AddCommand(newResolveCommand(app))
	rootCmd.AddCommand(newDenoCommand(app))
	rootCmd.AddCommand(newConfigCommand(app))
	rootCmd.AddCommand(newExplainCommand(app))

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI and exits with the code carried by an ExitError.
// It is called by main.main().
func Execute() {
	app := NewApp(Dependencies{})
	rootCmd := NewRootCommand(app)

	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(func(w io.Writer, styles fang.Styles, err error) {
			fmt.Fprintln(w, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, app.verbose))
		}),
	); err != nil {
		os.Exit(int(exitCodeOf(err)))
	}
}

// exitCodeOf maps an error returned by a command to the process exit code.
func exitCodeOf(err error) types.ExitCode {
	if err == nil {
		return types.ExitOK
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return types.ExitFailure
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}
