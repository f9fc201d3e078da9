// SPDX-License-Identifier: MPL-2.0

// Package importmap parses import map documents and resolves module
// specifiers against them.
//
// Parsing is best effort: entries that cannot be used are dropped and reported
// as diagnostics on the ParseResult, and only a structurally invalid document
// or base URL fails with a *ParseError.
//
//	res, err := importmap.ParseString(`{"imports": {"lodash": "/vendor/lodash.js"}}`, "https://example.com/")
//	if err != nil {
//	    return err
//	}
//	for _, w := range res.Warnings() {
//	    log.Warn(w)
//	}
//	url, err := res.ImportMap.Resolve("lodash", "https://example.com/app.js")
//
// Resolution failures are returned as *ResolveError values carrying a Kind
// (Blocked, Unmapped or InvalidResolution); callers pick the fallback.
package importmap
