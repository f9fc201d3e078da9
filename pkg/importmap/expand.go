// SPDX-License-Identifier: MPL-2.0

package importmap

import (
	"importmap-cli/pkg/specifier"
	"importmap-cli/pkg/urlutil"
)

// ExpandRegistryPrefixes returns a copy of m in which every exact entry that
// targets an npm: or jsr: package also gets a prefix entry, so subpath
// imports resolve too:
//
//	"preact": "npm:preact@10"  adds  "preact/": "npm:/preact@10/"
//
// The prefix entry is inserted right after its source entry and is skipped
// when the map already defines it. Scopes are expanded the same way.
func ExpandRegistryPrefixes(m *ImportMap) *ImportMap {
	out := &ImportMap{}
	expandInto(&m.Imports, &out.Imports)
	for prefix, scope := range m.Scopes.All() {
		expanded := &SpecifierMap{}
		expandInto(scope, expanded)
		out.Scopes.set(prefix, expanded)
	}
	return out
}

func expandInto(src, dst *SpecifierMap) {
	for key, addr := range src.All() {
		dst.set(key, addr)

		if specifier.IsPrefix(key) || addr.IsBlocked() || !specifier.IsRegistry(addr.String()) {
			continue
		}
		prefixKey := key + "/"
		if _, exists := src.Get(prefixKey); exists {
			continue
		}
		target, err := urlutil.Parse(specifier.NormalizeRegistry(addr.String()) + "/")
		if err != nil {
			continue
		}
		dst.set(prefixKey, Target(target))
	}
}
