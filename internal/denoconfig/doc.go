// SPDX-License-Identifier: MPL-2.0

// Package denoconfig reads deno.json and deno.jsonc files: it finds the
// nearest one, checks the JSON types of its known fields, and selects the
// import map it declares, either inline or through "importMap".
package denoconfig
