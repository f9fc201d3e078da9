// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"importmap-cli/internal/issue"
	"importmap-cli/internal/report"
	"importmap-cli/pkg/importmap"
)

type (
	// resolveOptions holds the flags of `importmap resolve`.
	resolveOptions struct {
		document documentRequest
		referrer string
		json     bool
		strict   bool
	}

	// resolution is one resolved specifier in --json output.
	resolution struct {
		Specifier string `json:"specifier"`
		Referrer  string `json:"referrer"`
		Resolved  string `json:"resolved"`
	}
)

func newResolveCommand(app *App) *cobra.Command {
	opts := &resolveOptions{}

	cmd := &cobra.Command{
		Use:   "resolve <specifier>... --map <file>",
		Short: "Resolve specifiers through an import map",
		Long: `Resolve specifiers through an import map.

Scopes matching the referrer are tried from the longest prefix to the
shortest, then the top-level imports. The first entry that matches decides:
a null entry blocks the specifier, and a specifier no entry covers is
reported as unmapped.

The referrer defaults to the base URL of the import map.`,
		Example: `  importmap resolve lodash --map import_map.json
  importmap resolve preact/hooks --map map.json --referrer https://e.com/app/main.js`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(cmd.Context(), app, opts, args)
		},
	}

	addDocumentFlags(cmd, &opts.document)
	cmd.Flags().StringVarP(&opts.document.Path, "map", "m", "", "import map file, or - for standard input")
	cmd.Flags().StringVarP(&opts.referrer, "referrer", "r", "", "URL of the importing module (default is the base URL)")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print resolutions as JSON")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "exit with status 2 when the import map has warnings")
	_ = cmd.MarkFlagRequired("map")

	return cmd
}

func runResolve(ctx context.Context, app *App, opts *resolveOptions, specifiers []string) error {
	loaded, err := app.loadConfig(ctx)
	if err != nil {
		return err
	}
	cfg := loaded.Config

	res, err := app.parseDocument(ctx, cfg, opts.document)
	if err != nil {
		return err
	}
	if len(res.Diagnostics) > 0 {
		fmt.Fprintln(app.stderr, WarningStyle.Render(report.FormatDiagnostics(res.Warnings())))
	}

	referrer := opts.referrer
	if referrer == "" {
		if referrer, err = documentBaseURL(cfg, opts.document); err != nil {
			return err
		}
	}

	results := make([]resolution, 0, len(specifiers))
	for _, spec := range specifiers {
		resolved, err := res.ImportMap.Resolve(spec, referrer)
		if err != nil {
			return resolveFailure(err, spec, referrer)
		}
		app.logger.Debug("resolved specifier", "specifier", spec, "referrer", referrer, "url", resolved)
		results = append(results, resolution{Specifier: spec, Referrer: referrer, Resolved: resolved})
	}

	if opts.json {
		out, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(app.stdout, string(out))
	} else {
		for _, r := range results {
			fmt.Fprintln(app.stdout, SuccessStyle.Render(r.Resolved))
		}
	}

	return strictCheck(res, opts.strict || cfg.WarningsAsErrors)
}

// resolveFailure turns a resolution error into an ActionableError.
func resolveFailure(err error, spec, referrer string) error {
	ec := issue.NewErrorContext().
		WithOperation("resolve specifier").
		WithResource(spec).
		Wrap(err)

	var rerr *importmap.ResolveError
	if !errors.As(err, &rerr) {
		// The referrer itself did not parse.
		return ec.WithIssue(issue.InvalidBaseURLId).
			WithSuggestion(fmt.Sprintf("Pass an absolute URL with --referrer instead of %q", referrer)).
			BuildError()
	}

	switch rerr.Kind {
	case importmap.Blocked:
		ec.WithIssue(issue.BlockedSpecifierId).
			WithSuggestion(fmt.Sprintf("Remove the null entry %q or give it an address", rerr.Key))
	case importmap.Unmapped:
		ec.WithIssue(issue.UnmappedSpecifierId)
		if rerr.Fallback != "" {
			ec.WithSuggestion("Without a mapping a host would load " + rerr.Fallback)
		}
	default:
		ec.WithIssue(issue.InvalidResolutionId)
	}
	return ec.BuildError()
}
