// SPDX-License-Identifier: MPL-2.0

// Package issue holds the catalog of user-facing problems the importmap CLI can
// report, rendered as Markdown, and the ActionableError type that links a
// failure to its remediation steps.
package issue
