// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"

	"importmap-cli/internal/issue"
	"importmap-cli/pkg/cueutil"
	"importmap-cli/pkg/fspath"
	"importmap-cli/pkg/platform"
	"importmap-cli/pkg/types"
)

const (
	// AppName is the application name.
	AppName = "importmap"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
	// EnvPrefix prefixes environment overrides, e.g. IMPORTMAP_OUTPUT or
	// IMPORTMAP_UI_VERBOSE.
	EnvPrefix = "IMPORTMAP"
)

// ErrConfigExists is returned by WriteDefault when the file exists and force is not set.
var ErrConfigExists = errors.New("config file already exists")

//go:embed config_schema.cue
var configSchema string

// ConfigDir returns the importmap configuration directory using platform-specific
// conventions: Windows uses %APPDATA%, macOS uses ~/Library/Application Support,
// and Linux/others use $XDG_CONFIG_HOME (defaulting to ~/.config).
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	if configDirOverride != "" {
		return configDirOverride, nil
	}

	var configDir string

	switch runtime.GOOS {
	case platform.Windows:
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case platform.Darwin:
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default: // Linux and others
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// DefaultPath returns where the config file lives for opts, whether or not it exists.
func DefaultPath(opts LoadOptions) (string, error) {
	if opts.ConfigFilePath != "" {
		return string(opts.ConfigFilePath), nil
	}
	cfgDir, err := configDirWithOverride(string(opts.ConfigDirPath))
	if err != nil {
		return "", err
	}
	return filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt), nil
}

// newViper returns a viper instance holding the defaults and the IMPORTMAP_
// environment overrides.
func newViper() *viper.Viper {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("base_url", defaults.BaseURL)
	v.SetDefault("output", string(defaults.Output))
	v.SetDefault("warnings_as_errors", defaults.WarningsAsErrors)
	v.SetDefault("expand_registry_prefixes", defaults.ExpandRegistryPrefixes)
	v.SetDefault("max_document_size", defaults.MaxDocumentSize)
	v.SetDefault("ui.color_scheme", string(defaults.UI.ColorScheme))
	v.SetDefault("ui.verbose", defaults.UI.Verbose)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// loadWithOptions performs option-driven config loading without mutating
// package-level state. It returns the path of the file that was read, or ""
// when only defaults and environment overrides apply.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	if err := opts.Validate(); err != nil {
		return nil, "", err
	}

	v := newViper()
	resolvedPath := ""

	// An explicit --config file is used exclusively and must exist.
	if opts.ConfigFilePath != "" {
		path := string(opts.ConfigFilePath)
		if !fspath.IsFile(types.FilesystemPath(path)) {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(path).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Use 'importmap config init' to create a default configuration").
				WithIssue(issue.ConfigLoadFailedId).
				Wrap(fmt.Errorf("config file not found: %s", path)).
				BuildError()
		}
		resolvedPath = path
	} else {
		candidates := make([]string, 0, 2)
		cfgDir, err := configDirWithOverride(string(opts.ConfigDirPath))
		if err != nil {
			return nil, "", err
		}
		candidates = append(candidates, filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt))
		if opts.BaseDir != "" {
			candidates = append(candidates, filepath.Join(string(opts.BaseDir), ConfigFileName+"."+ConfigFileExt))
		}
		for _, c := range candidates {
			if fspath.IsFile(types.FilesystemPath(c)) {
				resolvedPath = c
				break
			}
		}
		// No config file: defaults and environment only.
	}

	if resolvedPath != "" {
		if err := loadCUEIntoViper(v, resolvedPath); err != nil {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(resolvedPath).
				WithSuggestion("Check that the file contains valid CUE syntax").
				WithSuggestion("Verify the configuration values match the expected schema").
				WithIssue(issue.ConfigLoadFailedId).
				Wrap(err).
				BuildError()
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}

	// Environment overrides bypass the CUE schema, so check the merged result.
	if err := cfg.Validate(); err != nil {
		return nil, "", issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(resolvedPath).
			WithSuggestion("Check " + EnvPrefix + "_* environment variables").
			WithIssue(issue.ConfigLoadFailedId).
			Wrap(err).
			BuildError()
	}

	return &cfg, resolvedPath, nil
}

// configDirWithOverride resolves the configuration directory, honoring
// explicit provider options before platform defaults.
func configDirWithOverride(configDirPath string) (string, error) {
	if configDirPath != "" {
		return configDirPath, nil
	}

	return ConfigDir()
}

// loadCUEIntoViper parses a CUE file, validates it against the #Config schema,
// and merges its contents into Viper.
//
// The file is decoded into a map rather than a struct so that Viper keeps the
// defaults for unset fields and environment variables still take precedence.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	unified, err := cueutil.Validate(configSchema, "#Config", data,
		cueutil.WithFilename(path), cueutil.WithConcrete(false))
	if err != nil {
		return err
	}

	var configMap map[string]any
	if err := unified.Decode(&configMap); err != nil {
		return cueutil.FormatError(err, path)
	}

	if err := v.MergeConfigMap(configMap); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}

	return nil
}

// WriteDefault writes the default configuration to path. It returns
// ErrConfigExists when the file exists and force is false.
func WriteDefault(path types.FilesystemPath, force bool) error {
	if err := path.Validate(); err != nil {
		return err
	}
	if !force && fspath.IsFile(path) {
		return fmt.Errorf("%w: %s", ErrConfigExists, path)
	}
	return Save(path, DefaultConfig())
}

// Save writes cfg to path in CUE form, creating parent directories.
func Save(path types.FilesystemPath, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(string(path)), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(string(path), []byte(GenerateCUE(cfg)), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GenerateCUE generates a CUE representation of the configuration
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// importmap configuration file\n")
	sb.WriteString("// Environment variables prefixed with " + EnvPrefix + "_ override these values.\n\n")

	if cfg.BaseURL != "" {
		fmt.Fprintf(&sb, "base_url: %q\n", cfg.BaseURL)
	}
	fmt.Fprintf(&sb, "output: %q\n", cfg.Output)
	fmt.Fprintf(&sb, "warnings_as_errors: %v\n", cfg.WarningsAsErrors)
	fmt.Fprintf(&sb, "expand_registry_prefixes: %v\n", cfg.ExpandRegistryPrefixes)
	fmt.Fprintf(&sb, "max_document_size: %d\n", cfg.MaxDocumentSize)

	sb.WriteString("\nui: {\n")
	fmt.Fprintf(&sb, "\tcolor_scheme: %q\n", cfg.UI.ColorScheme)
	fmt.Fprintf(&sb, "\tverbose: %v\n", cfg.UI.Verbose)
	sb.WriteString("}\n")

	return sb.String()
}
