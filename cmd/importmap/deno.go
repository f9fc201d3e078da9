// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"importmap-cli/internal/config"
	"importmap-cli/internal/denoconfig"
	"importmap-cli/internal/issue"
	"importmap-cli/internal/report"
	"importmap-cli/pkg/importmap"
)

// denoOptions holds the flags of `importmap deno`.
type denoOptions struct {
	configFile string
	output     string
	strict     bool
	expand     bool
	info       bool
	watch      watchOptions
}

func newDenoCommand(app *App) *cobra.Command {
	opts := &denoOptions{}

	cmd := &cobra.Command{
		Use:   "deno [dir]",
		Short: "Show the import map selected by a deno.json",
		Long: `Show the import map selected by a deno.json or deno.jsonc.

The config file is searched for in dir (default: the working directory) and
its parents. Inline "imports" and "scopes" take precedence and resolve
against the config file itself; otherwise the "importMap" file is read
relative to the config file.

With --watch the output is refreshed whenever a deno.json or deno.jsonc in
the config directory, or the import map file it names, changes. The set of
watched files is fixed when the watch starts.`,
		Example: `  importmap deno
  importmap deno --deno-config ./deno.jsonc -o json
  importmap deno --info ./packages/app
  importmap deno --watch --ignore '*.bak'`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return runDeno(cmd.Context(), app, opts, dir)
		},
	}

	cmd.Flags().StringVarP(&opts.configFile, "deno-config", "c", "", "deno config file to use instead of searching")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output format: text, json, toml or cue (default from config)")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "exit with status 2 when the import map has warnings")
	cmd.Flags().BoolVar(&opts.expand, "expand-registry-prefixes", false, "add key/ entries for npm: and jsr: targets")
	cmd.Flags().BoolVar(&opts.info, "info", false, "describe the config file instead of printing the import map")
	addWatchFlags(cmd, &opts.watch, "the deno config or its import map")

	return cmd
}

func runDeno(ctx context.Context, app *App, opts *denoOptions, dir string) error {
	loaded, err := app.loadConfig(ctx)
	if err != nil {
		return err
	}
	cfg := loaded.Config

	format, err := outputFormat(opts.output, cfg)
	if err != nil {
		return err
	}

	loader := denoconfig.NewLoader(app.logger, denoconfig.WithMaxSize(cfg.MaxDocumentSize))
	run := func(context.Context) error {
		return denoReport(app, cfg, format, loader, opts, dir)
	}
	if opts.watch.enabled {
		return watchDeno(ctx, app, loader, opts, dir, run)
	}
	return run(ctx)
}

// denoReport loads the deno config once and writes the selected import map
// or, with --info, a description of the config.
func denoReport(app *App, cfg *config.Config, format config.OutputFormat, loader *denoconfig.Loader, opts *denoOptions, dir string) error {
	denoCfg, res, err := loader.Load(dir, opts.configFile)
	if err != nil {
		return denoFailure(err, dir, opts.configFile)
	}

	if opts.info {
		return printDenoInfo(app, denoCfg, res)
	}

	if res == nil {
		fmt.Fprintln(app.stderr, SubtitleStyle.Render(denoCfg.Path+" has no import map"))
		return nil
	}

	if opts.expand || cfg.ExpandRegistryPrefixes {
		res = &importmap.ParseResult{
			ImportMap:   importmap.ExpandRegistryPrefixes(res.ImportMap),
			Diagnostics: res.Diagnostics,
		}
	}

	if err := report.Encode(app.stdout, res, format, reportStyles()); err != nil {
		return err
	}
	return strictCheck(res, opts.strict || cfg.WarningsAsErrors)
}

// watchDeno watches the config directory for deno.json and deno.jsonc, plus
// the import map file the current config names.
func watchDeno(ctx context.Context, app *App, loader *denoconfig.Loader, opts *denoOptions, dir string, report func(context.Context) error) error {
	path := opts.configFile
	if path == "" {
		found, err := loader.Find(dir)
		if err != nil {
			return denoFailure(err, dir, opts.configFile)
		}
		path = found
	} else {
		path = denoconfig.ResolvePath(path, dir)
	}

	files := []string{path}
	if denoCfg, err := loader.Read(path); err == nil && !denoCfg.HasInlineImportMap() && denoCfg.ImportMap() != "" {
		files = append(files, denoconfig.ResolvePath(denoCfg.ImportMap(), denoCfg.Dir()))
	}

	return runWatch(ctx, app, &opts.watch, path, watchTarget{
		files:    files,
		patterns: []string{denoConfigPattern},
		dirs:     []string{filepath.Dir(path)},
		report:   report,
	})
}

func printDenoInfo(app *App, denoCfg *denoconfig.Config, res *importmap.ParseResult) error {
	w := app.stdout
	field := func(name, value string) {
		fmt.Fprintf(w, "%s: %s\n", CmdStyle.Render(name), value)
	}

	field("config", denoCfg.Path)
	if name := denoCfg.Name(); name != "" {
		field("name", name)
	}

	switch {
	case denoCfg.HasInlineImportMap():
		field("import map", "inline")
	case denoCfg.ImportMap() != "":
		field("import map", denoconfig.ResolvePath(denoCfg.ImportMap(), denoCfg.Dir()))
	default:
		field("import map", SubtitleStyle.Render("(none)"))
	}
	if res != nil {
		field("entries", fmt.Sprintf("%d imports, %d scopes", res.ImportMap.Imports.Len(), res.ImportMap.Scopes.Len()))
		field("diagnostics", fmt.Sprintf("%d", len(res.Diagnostics)))
	}

	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	if lock := denoCfg.LockPath(cwd); lock != "" {
		field("lock", lock)
	} else {
		field("lock", SubtitleStyle.Render("(disabled)"))
	}
	if enabled, set := denoCfg.NodeModulesDir(); set {
		field("nodeModulesDir", fmt.Sprintf("%v", enabled))
	}
	field("keys", strings.Join(denoCfg.Keys(), ", "))
	return nil
}

// denoFailure turns a deno config loading error into an ActionableError.
func denoFailure(err error, dir, configFile string) error {
	resource := configFile
	if resource == "" {
		resource = dir
	}

	var perr *importmap.ParseError
	if errors.As(err, &perr) {
		return parseFailure(err, resource, true)
	}
	ec := issue.NewErrorContext().
		WithOperation("load deno config").
		WithResource(resource).
		Wrap(err)

	if errors.Is(err, denoconfig.ErrNotFound) {
		ec.WithIssue(issue.DenoConfigNotFoundId).
			WithSuggestion("Pass --deno-config to name the file directly")
	} else {
		ec.WithIssue(issue.DenoConfigInvalidId)
	}
	return ec.BuildError()
}
