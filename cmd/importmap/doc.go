// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for importmap.
//
// This package implements the Cobra command hierarchy: parse, resolve and
// deno for working with import maps, config for managing the configuration
// file, and explain for the issue catalog. Commands receive an App holding
// the configuration provider, the logger and the output streams.
package cmd
