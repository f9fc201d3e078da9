// SPDX-License-Identifier: MPL-2.0

package specifier

import "strings"

// registrySchemes are the package registry schemes whose bare mappings get an
// implied subpath entry.
var registrySchemes = []string{"npm:", "jsr:"}

// IsRegistry reports whether target points into a package registry.
func IsRegistry(target string) bool {
	for _, scheme := range registrySchemes {
		if strings.HasPrefix(target, scheme) {
			return true
		}
	}
	return false
}

// TrimTrailingSlash removes every trailing "/" from s.
func TrimTrailingSlash(s string) string {
	return strings.TrimRight(s, "/")
}

// NormalizeRegistry trims trailing slashes and makes the path after the first
// colon absolute, so "npm:preact@10/" becomes "npm:/preact@10".
func NormalizeRegistry(s string) string {
	s = TrimTrailingSlash(s)

	i := strings.IndexByte(s, ':')
	if i < 0 {
		return s
	}
	if i+1 < len(s) && s[i+1] == '/' {
		return s
	}
	return s[:i+1] + "/" + s[i+1:]
}
