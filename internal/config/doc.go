// SPDX-License-Identifier: MPL-2.0

// Package config handles the importmap CLI configuration using Viper with CUE
// as the file format.
//
// Configuration is loaded from ~/.config/importmap/config.cue (or the XDG
// equivalent on Linux, ~/Library/Application Support/importmap/config.cue on
// macOS, %APPDATA%\importmap\config.cue on Windows), falling back to a
// config.cue in the working directory. The file is validated against the
// embedded #Config schema (config_schema.cue). IMPORTMAP_* environment
// variables override file values.
package config
