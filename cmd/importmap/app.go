// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"importmap-cli/internal/config"
	"importmap-cli/internal/issue"
	"importmap-cli/pkg/types"
)

type (
	// App wires CLI services and shared dependencies. Every Cobra handler
	// receives an App and reads its configuration and streams through it.
	App struct {
		Config config.Provider
		stdin  io.Reader
		stdout io.Writer
		stderr io.Writer

		// Persistent flag values, bound by NewRootCommand.
		verbose    bool
		configPath string

		logger *log.Logger
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config config.Provider
		Stdin  io.Reader
		Stdout io.Writer
		Stderr io.Writer
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) *App {
	if deps.Stdin == nil {
		deps.Stdin = os.Stdin
	}
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}

	app := &App{
		Config: deps.Config,
		stdin:  deps.Stdin,
		stdout: deps.Stdout,
		stderr: deps.Stderr,
	}
	app.logger = log.NewWithOptions(app.stderr, log.Options{Prefix: config.AppName})
	return app
}

// Logger returns the CLI logger. Debug output is enabled by --verbose or
// ui.verbose.
func (a *App) Logger() *log.Logger { return a.logger }

func (a *App) setVerbose(v bool) {
	a.verbose = v
	if v {
		a.logger.SetLevel(log.DebugLevel)
		return
	}
	a.logger.SetLevel(log.InfoLevel)
}

// loadOptions builds the config LoadOptions for this invocation.
func (a *App) loadOptions() config.LoadOptions {
	opts := config.LoadOptions{ConfigFilePath: types.FilesystemPath(a.configPath)}
	if wd, err := os.Getwd(); err == nil {
		opts.BaseDir = types.FilesystemPath(wd)
	}
	return opts
}

// loadConfig loads the configuration and applies ui.verbose when --verbose
// was not given.
func (a *App) loadConfig(ctx context.Context) (*config.Loaded, error) {
	loaded, err := a.Config.Load(ctx, a.loadOptions())
	if err != nil {
		var ae *issue.ActionableError
		if errors.As(err, &ae) {
			return nil, err
		}
		return nil, issue.NewErrorContext().
			WithOperation("load configuration").
			WithResource(a.configPath).
			WithIssue(issue.ConfigLoadFailedId).
			Wrap(err).
			BuildError()
	}

	if !a.verbose && loaded.Config.UI.Verbose {
		a.setVerbose(true)
	}
	if loaded.Path != "" {
		a.logger.Debug("loaded configuration", "path", loaded.Path)
	} else {
		a.logger.Debug("using default configuration")
	}
	return loaded, nil
}
