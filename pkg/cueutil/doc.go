// SPDX-License-Identifier: MPL-2.0

// Package cueutil reads JSON and CUE inputs through the CUE toolchain.
//
// Validate checks a document against a definition of an embedded schema and
// is used for the CLI config file:
//
//	v, err := cueutil.Validate(configSchema, "#Config", data,
//	    cueutil.WithFilename(path), cueutil.WithConcrete(false))
//
// Import map documents need more than a decoded value, since member order
// and repeated keys matter. ExtractJSON returns the syntax tree instead, and
// Members, KindOf and StringValue walk it.
package cueutil
