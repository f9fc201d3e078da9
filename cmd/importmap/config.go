// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"importmap-cli/internal/config"
	"importmap-cli/internal/issue"
	"importmap-cli/pkg/types"
)

// configKeys lists the keys accepted by `importmap config set`.
var configKeys = []string{
	"base_url",
	"output",
	"warnings_as_errors",
	"expand_registry_prefixes",
	"max_document_size",
	"ui.color_scheme",
	"ui.verbose",
}

// newConfigCommand creates the `importmap config` command tree.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage importmap configuration",
		Long: `Manage importmap configuration.

Configuration is stored in:
  - Linux: ~/.config/importmap/config.cue
  - macOS: ~/Library/Application Support/importmap/config.cue
  - Windows: %APPDATA%\importmap\config.cue

A config.cue in the working directory is used when the file above is
missing. IMPORTMAP_* environment variables override file values.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd.Context(), app)
		},
	})

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(app, force)
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing configuration file")
	cfgCmd.AddCommand(initCmd)

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfigPath(app)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long:  "Set a configuration value.\n\nValid keys: " + strings.Join(configKeys, ", "),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setConfigValue(cmd.Context(), app, args[0], args[1])
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output the effective configuration as CUE",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := app.loadConfig(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprint(app.stdout, config.GenerateCUE(loaded.Config))
			return nil
		},
	})

	return cfgCmd
}

func showConfig(ctx context.Context, app *App) error {
	loaded, err := app.loadConfig(ctx)
	if err != nil {
		return err
	}
	cfg := loaded.Config
	w := app.stdout

	keyStyle := CmdStyle
	valueStyle := SuccessStyle

	fmt.Fprintln(w, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(w)

	if loaded.Path != "" {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), loaded.Path)
	} else {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Fprintln(w)

	baseURL := SubtitleStyle.Render("(file URL of the document)")
	if cfg.BaseURL != "" {
		baseURL = valueStyle.Render(cfg.BaseURL)
	}
	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("base_url"), baseURL)
	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("output"), valueStyle.Render(cfg.Output.String()))
	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("warnings_as_errors"), valueStyle.Render(strconv.FormatBool(cfg.WarningsAsErrors)))
	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("expand_registry_prefixes"), valueStyle.Render(strconv.FormatBool(cfg.ExpandRegistryPrefixes)))
	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("max_document_size"), valueStyle.Render(strconv.FormatInt(cfg.MaxDocumentSize, 10)))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("ui"))
	fmt.Fprintf(w, "  color_scheme: %s\n", valueStyle.Render(cfg.UI.ColorScheme.String()))
	fmt.Fprintf(w, "  verbose: %s\n", valueStyle.Render(strconv.FormatBool(cfg.UI.Verbose)))

	return nil
}

func initConfig(app *App, force bool) error {
	path, err := config.DefaultPath(app.loadOptions())
	if err != nil {
		return err
	}

	if err := config.WriteDefault(types.FilesystemPath(path), force); err != nil {
		return issue.NewErrorContext().
			WithOperation("create configuration").
			WithResource(path).
			WithSuggestion("Pass --force to overwrite the existing file").
			Wrap(err).
			BuildError()
	}

	fmt.Fprintf(app.stdout, "%s Created default configuration at %s\n", SuccessStyle.Render("✓"), path)
	return nil
}

func showConfigPath(app *App) error {
	path, err := config.DefaultPath(app.loadOptions())
	if err != nil {
		return err
	}

	fmt.Fprintf(app.stdout, "Config file: %s\n", path)
	return nil
}

func setConfigValue(ctx context.Context, app *App, key, value string) error {
	loaded, err := app.loadConfig(ctx)
	if err != nil {
		return err
	}
	cfg := *loaded.Config

	var flag bool
	switch key {
	case "warnings_as_errors", "expand_registry_prefixes", "ui.verbose":
		if flag, err = strconv.ParseBool(value); err != nil {
			return fmt.Errorf("invalid %s %q: %w", key, value, err)
		}
	}

	switch key {
	case "base_url":
		cfg.BaseURL = value
	case "output":
		cfg.Output = config.OutputFormat(value)
	case "warnings_as_errors":
		cfg.WarningsAsErrors = flag
	case "expand_registry_prefixes":
		cfg.ExpandRegistryPrefixes = flag
	case "max_document_size":
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid max_document_size %q: %w", value, err)
		}
		cfg.MaxDocumentSize = n
	case "ui.color_scheme":
		cfg.UI.ColorScheme = config.ColorScheme(value)
	case "ui.verbose":
		cfg.UI.Verbose = flag
	default:
		return fmt.Errorf("unknown configuration key: %s\nValid keys: %s", key, strings.Join(configKeys, ", "))
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	path := loaded.Path
	if path == "" {
		if path, err = config.DefaultPath(app.loadOptions()); err != nil {
			return err
		}
	}
	if err := config.Save(types.FilesystemPath(path), &cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Fprintf(app.stdout, "%s Set %s = %s\n", SuccessStyle.Render("✓"), key, value)
	return nil
}
