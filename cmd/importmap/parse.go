// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"importmap-cli/internal/config"
	"importmap-cli/internal/report"
)

// parseOptions holds the flags of `importmap parse`.
type parseOptions struct {
	document documentRequest
	output   string
	strict   bool
	watch    watchOptions
}

func newParseCommand(app *App) *cobra.Command {
	opts := &parseOptions{}

	cmd := &cobra.Command{
		Use:   "parse <file|->",
		Short: "Parse an import map and print the normalized result",
		Long: `Parse an import map and print the normalized result.

Relative addresses and scope prefixes are resolved against the base URL,
which defaults to the file's own file: URL. Entries that cannot be used are
dropped and reported as diagnostics; only a malformed document fails.

Use - to read the document from standard input (requires --base-url).
With --watch the file is parsed again whenever it changes on disk.`,
		Example: `  importmap parse import_map.json
  importmap parse --watch --clear import_map.json
  importmap parse --base-url https://example.com/ -o json import_map.json
  cat import_map.json | importmap parse --base-url https://example.com/ -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.document.Path = args[0]
			return runParse(cmd.Context(), app, opts)
		},
	}

	addDocumentFlags(cmd, &opts.document)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output format: text, json, toml or cue (default from config)")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "exit with status 2 when the import map has warnings")
	cmd.Flags().BoolVar(&opts.document.IgnoreUnknownKeys, "ignore-unknown-keys", false, "do not report top-level keys other than imports and scopes")
	addWatchFlags(cmd, &opts.watch, "the file")

	return cmd
}

// addDocumentFlags registers the flags shared by commands that read an
// import map document.
func addDocumentFlags(cmd *cobra.Command, req *documentRequest) {
	cmd.Flags().StringVar(&req.BaseURL, "base-url", "", "URL relative addresses resolve against (default is the file URL)")
	cmd.Flags().BoolVar(&req.JSONC, "jsonc", false, "accept comments and trailing commas")
	cmd.Flags().BoolVar(&req.ExpandRegistryPrefixes, "expand-registry-prefixes", false, "add key/ entries for npm: and jsr: targets")
}

func runParse(ctx context.Context, app *App, opts *parseOptions) error {
	loaded, err := app.loadConfig(ctx)
	if err != nil {
		return err
	}
	cfg := loaded.Config

	format, err := outputFormat(opts.output, cfg)
	if err != nil {
		return err
	}

	if opts.watch.enabled {
		return watchParse(ctx, app, opts, func(ctx context.Context) error {
			return parseAndReport(ctx, app, cfg, format, opts)
		})
	}
	return parseAndReport(ctx, app, cfg, format, opts)
}

// parseAndReport parses the document once and writes the report.
func parseAndReport(ctx context.Context, app *App, cfg *config.Config, format config.OutputFormat, opts *parseOptions) error {
	res, err := app.parseDocument(ctx, cfg, opts.document)
	if err != nil {
		return err
	}

	for _, d := range res.Diagnostics {
		app.logger.Debug("diagnostic", "kind", d.Kind, "severity", d.Severity, "pos", d.Pos)
	}

	if err := report.Encode(app.stdout, res, format, reportStyles()); err != nil {
		return err
	}

	return strictCheck(res, opts.strict || cfg.WarningsAsErrors)
}

// outputFormat returns the --output flag value, or the configured format.
func outputFormat(flag string, cfg *config.Config) (config.OutputFormat, error) {
	if flag == "" {
		return cfg.Output, nil
	}
	f := config.OutputFormat(flag)
	if err := f.Validate(); err != nil {
		return "", err
	}
	return f, nil
}
