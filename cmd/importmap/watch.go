// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"importmap-cli/internal/issue"
	"importmap-cli/internal/watch"
	"importmap-cli/pkg/types"
)

// denoConfigPattern matches the config files deno looks for in a directory.
const denoConfigPattern = "deno.json{,c}"

// ErrWatchStdin is returned when --watch is combined with a document read
// from standard input.
var ErrWatchStdin = errors.New("cannot watch standard input")

type (
	// watchOptions holds the --watch flags shared by parse and deno.
	watchOptions struct {
		enabled  bool
		clear    bool
		debounce time.Duration
		ignore   []string
	}

	// watchTarget names what a watch observes and how it reports.
	watchTarget struct {
		files    []string
		patterns []string
		dirs     []string
		// report runs once up front and after every change. Its errors are
		// printed and do not stop the watch.
		report func(ctx context.Context) error
	}
)

func addWatchFlags(cmd *cobra.Command, opts *watchOptions, what string) {
	cmd.Flags().BoolVarP(&opts.enabled, "watch", "w", false, "run again whenever "+what+" changes")
	cmd.Flags().BoolVar(&opts.clear, "clear", false, "clear the terminal before each run (with --watch)")
	cmd.Flags().DurationVar(&opts.debounce, "debounce", watch.DefaultDebounce, "quiet period before running again (with --watch)")
	cmd.Flags().StringSliceVar(&opts.ignore, "ignore", nil,
		fmt.Sprintf("file name globs that never trigger a run (with --watch; always ignored: %s)", strings.Join(watch.DefaultIgnores(), " ")))
}

// runWatch reports target once, then again after every change until ctx is
// cancelled.
func runWatch(ctx context.Context, app *App, opts *watchOptions, resource string, target watchTarget) error {
	w, err := watch.New(watch.Config{
		Files:       target.files,
		Patterns:    target.patterns,
		Dirs:        target.dirs,
		Ignore:      opts.ignore,
		Debounce:    opts.debounce,
		ClearScreen: opts.clear,
		Stdout:      app.stdout,
		Stderr:      app.stderr,
		OnChange: func(ctx context.Context, changed []string) error {
			app.logger.Info("change detected", "paths", strings.Join(changed, ", "))
			reportOnce(ctx, app, target.report)
			return nil
		},
	})
	if err != nil {
		ec := issue.NewErrorContext().
			WithOperation("watch " + resource).
			WithResource(resource).
			Wrap(err)
		if errors.Is(err, watch.ErrInvalidPattern) {
			ec.WithSuggestion("Check the --ignore globs")
		} else {
			ec.WithIssue(issue.FileNotFoundId)
		}
		return ec.BuildError()
	}

	reportOnce(ctx, app, target.report)
	app.logger.Info("watching for changes", "dirs", strings.Join(w.Dirs(), ", "))
	return w.Run(ctx)
}

// watchParse watches the document given to `importmap parse`.
func watchParse(ctx context.Context, app *App, opts *parseOptions, report func(ctx context.Context) error) error {
	if types.FilesystemPath(opts.document.Path).IsStdin() {
		return issue.NewErrorContext().
			WithOperation("watch import map").
			WithResource(types.Stdin.DisplayName()).
			WithSuggestion("Pass the path of the import map file to watch").
			Wrap(ErrWatchStdin).
			BuildError()
	}

	return runWatch(ctx, app, &opts.watch, opts.document.Path, watchTarget{
		files:  []string{opts.document.Path},
		report: report,
	})
}

// reportOnce runs report and prints its error instead of returning it.
func reportOnce(ctx context.Context, app *App, report func(ctx context.Context) error) {
	err := report(ctx)
	if err == nil {
		return
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		fmt.Fprintln(app.stderr, WarningStyle.Render(err.Error()))
		return
	}
	fmt.Fprintln(app.stderr, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, app.verbose))
}
