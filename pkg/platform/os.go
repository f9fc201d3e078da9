// SPDX-License-Identifier: MPL-2.0

package platform

// GOOS values compared against runtime.GOOS.
const (
	Windows = "windows"
	Darwin  = "darwin"
	Linux   = "linux"
)
