// SPDX-License-Identifier: MPL-2.0

// Package testutil provides test helpers for environment variables and
// fixture files. Each helper fails the test on error.
package testutil
