// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"importmap-cli/internal/issue"
)

// ErrUnknownIssue is returned by `importmap explain` for a name that is not
// in the issue catalog.
var ErrUnknownIssue = errors.New("unknown issue")

func newExplainCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "explain [issue]",
		Short: "Explain an error or diagnostic",
		Long: `Explain an error or diagnostic.

The issue is named by its slug (as printed in error hints) or by a
diagnostic kind such as UnknownKey. Without an argument, every issue is
listed.`,
		Example: `  importmap explain
  importmap explain unmapped-specifier
  importmap explain InvalidScope`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				listIssues(app)
				return nil
			}
			return explainIssue(cmd.Context(), app, args[0])
		},
	}
}

func listIssues(app *App) {
	for _, iss := range issue.Values() {
		fmt.Fprintln(app.stdout, CmdStyle.Render(iss.Slug()))
	}
}

func explainIssue(ctx context.Context, app *App, name string) error {
	iss := issue.Lookup(name)
	if iss == nil {
		return issue.NewErrorContext().
			WithOperation("explain issue").
			WithResource(name).
			WithSuggestion("Run 'importmap explain' to list the known issues").
			Wrap(ErrUnknownIssue).
			BuildError()
	}

	loaded, err := app.loadConfig(ctx)
	if err != nil {
		return err
	}

	rendered, err := iss.Render(loaded.Config.UI.ColorScheme.String())
	if err != nil {
		return fmt.Errorf("render issue %s: %w", iss.Slug(), err)
	}
	fmt.Fprint(app.stdout, rendered)
	return nil
}
