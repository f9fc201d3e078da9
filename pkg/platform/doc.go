// SPDX-License-Identifier: MPL-2.0

// Package platform names the operating systems whose config locations and
// home-directory variables differ.
package platform
