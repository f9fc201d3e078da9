// SPDX-License-Identifier: MPL-2.0

// Package urlutil parses, canonicalizes and resolves URLs the way import maps
// compare them.
//
// Parsing is delegated to net/url and the result is then canonicalized so two
// spellings of the same location serialize to the same string:
//
//   - scheme and (for special schemes) host are lowercased
//   - default ports are dropped and "file://localhost/" becomes "file:///"
//   - backslashes count as path separators for special schemes
//   - "." and ".." segments (including their %2e spellings) are removed
//   - percent-escapes are uppercased
//
// Special schemes are http, https, ws, wss, ftp and file. Every other scheme is
// kept as written, which keeps registry specifiers such as "npm:preact" or
// "jsr:@std/assert" usable as absolute URLs.
package urlutil
