// SPDX-License-Identifier: MPL-2.0

package importmap

import (
	"cmp"
	"errors"
	"slices"

	"importmap-cli/pkg/specifier"
	"importmap-cli/pkg/urlutil"
)

// errEscapesPrefix is the cause of an InvalidResolution when the remainder
// of a prefix match climbs out of the mapped URL.
var errEscapesPrefix = errors.New("resolved URL escapes the mapped prefix")

// Resolve resolves spec as imported from referrer using m.
func Resolve(m *ImportMap, spec, referrer string) (string, error) {
	return m.Resolve(spec, referrer)
}

// Resolve resolves spec as imported from referrer.
//
// Scopes whose prefix matches referrer are consulted from the longest prefix
// to the shortest, then the top-level imports. The first mapping with a
// matching key decides the result. A *ResolveError reports a blocked, unmapped
// or unusable result; an invalid referrer yields a *urlutil.Error.
func (m *ImportMap) Resolve(spec, referrer string) (string, error) {
	ref, err := urlutil.Parse(referrer)
	if err != nil {
		return "", err
	}

	s, err := specifier.Classify(spec, ref)
	if err != nil {
		return "", &ResolveError{Kind: InvalidResolution, Specifier: spec, Referrer: referrer, Err: err}
	}
	normalized := s.Key()

	for _, scope := range m.matchingScopes(ref.String()) {
		if resolved, found, err := resolveIn(scope, s, normalized, referrer); found {
			return resolved, err
		}
	}
	if resolved, found, err := resolveIn(&m.Imports, s, normalized, referrer); found {
		return resolved, err
	}

	rerr := &ResolveError{Kind: Unmapped, Specifier: spec, Referrer: referrer}
	if s.IsURLLike() {
		rerr.Fallback = normalized
	}
	return "", rerr
}

// matchingScopes returns the scopes applying to referrer, longest prefix
// first. Equal-length matching prefixes are the same key, which the scopes
// map already holds once with its last definition.
func (m *ImportMap) matchingScopes(referrer string) []*SpecifierMap {
	type candidate struct {
		prefix string
		scope  *SpecifierMap
	}

	var matches []candidate
	for prefix, scope := range m.Scopes.All() {
		if specifier.MatchesPrefix(prefix, referrer) {
			matches = append(matches, candidate{prefix, scope})
		}
	}
	slices.SortStableFunc(matches, func(a, b candidate) int {
		return cmp.Compare(len(b.prefix), len(a.prefix))
	})

	scopes := make([]*SpecifierMap, len(matches))
	for i, c := range matches {
		scopes[i] = c.scope
	}
	return scopes
}

// resolveIn applies one specifier map. found is false when no key matches.
func resolveIn(sm *SpecifierMap, s specifier.Specifier, normalized, referrer string) (resolved string, found bool, err error) {
	key, addr, ok := sm.match(normalized)
	if !ok {
		return "", false, nil
	}

	if addr.IsBlocked() {
		return "", true, &ResolveError{Kind: Blocked, Specifier: s.Raw, Referrer: referrer, Key: key}
	}
	if key == normalized {
		return addr.String(), true, nil
	}

	target, err := urlutil.Resolve(addr.URL(), normalized[len(key):])
	if err != nil {
		return "", true, &ResolveError{Kind: InvalidResolution, Specifier: s.Raw, Referrer: referrer, Key: key, Err: err}
	}
	if !target.HasPrefix(addr.URL()) {
		return "", true, &ResolveError{Kind: InvalidResolution, Specifier: s.Raw, Referrer: referrer, Key: key, Err: errEscapesPrefix}
	}
	return target.String(), true, nil
}
