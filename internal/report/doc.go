// SPDX-License-Identifier: MPL-2.0

// Package report renders parse results and diagnostics for the CLI.
//
// Encode writes a result as text, JSON, TOML or CUE. JSON and CUE keep the
// definition order of the import map; TOML sorts keys and writes blocked
// entries as false.
package report
