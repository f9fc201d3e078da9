// SPDX-License-Identifier: MPL-2.0

package importmap

import (
	"errors"
	"strings"

	"cuelang.org/go/cue/ast"
	"cuelang.org/go/cue/format"

	"importmap-cli/pkg/cueutil"
	"importmap-cli/pkg/diagnostic"
	"importmap-cli/pkg/specifier"
	"importmap-cli/pkg/urlutil"
)

// DefaultMaxSize is the largest document Parse accepts unless WithMaxSize
// says otherwise.
const DefaultMaxSize = cueutil.DefaultMaxFileSize

type (
	// ParseOption configures Parse.
	ParseOption func(*parseConfig)

	parseConfig struct {
		maxSize           int64
		filename          string
		jsonc             bool
		ignoreUnknownKeys bool
	}

	// parser carries the state of one Parse call.
	parser struct {
		base  *urlutil.URL
		diags diagnostic.Collector
	}
)

// WithMaxSize limits the document size in bytes.
func WithMaxSize(n int64) ParseOption {
	return func(c *parseConfig) { c.maxSize = n }
}

// WithFilename names the document in diagnostic positions and errors.
func WithFilename(name string) ParseOption {
	return func(c *parseConfig) { c.filename = name }
}

// WithJSONC accepts comments and trailing commas.
func WithJSONC() ParseOption {
	return func(c *parseConfig) { c.jsonc = true }
}

// WithIgnoreUnknownKeys skips top-level keys other than "imports" and "scopes"
// without reporting them. Used for import maps embedded in larger documents.
func WithIgnoreUnknownKeys() ParseOption {
	return func(c *parseConfig) { c.ignoreUnknownKeys = true }
}

// ParseString is Parse for a string document.
func ParseString(document, baseURL string, opts ...ParseOption) (*ParseResult, error) {
	return Parse([]byte(document), baseURL, opts...)
}

// Parse parses an import map document against baseURL.
//
// Problems with single entries are reported as diagnostics and the entry is
// skipped. Only an invalid base URL or a document whose top level, "imports"
// or "scopes" is not an object fails the whole parse, with a *ParseError.
func Parse(document []byte, baseURL string, opts ...ParseOption) (*ParseResult, error) {
	cfg := parseConfig{maxSize: DefaultMaxSize}
	for _, opt := range opts {
		opt(&cfg)
	}

	base, err := urlutil.Parse(baseURL)
	if err != nil {
		return nil, &ParseError{Kind: InvalidURL, Message: err.Error(), Err: err}
	}

	extractOpts := []cueutil.Option{cueutil.WithMaxFileSize(cfg.maxSize)}
	if cfg.filename != "" {
		extractOpts = append(extractOpts, cueutil.WithFilename(cfg.filename))
	}
	if cfg.jsonc {
		extractOpts = append(extractOpts, cueutil.WithJSONC())
	}

	expr, err := cueutil.ExtractJSON(document, extractOpts...)
	if err != nil {
		return nil, malformed(err, "%v", err)
	}
	if kind := cueutil.KindOf(expr); kind != cueutil.KindObject {
		return nil, malformed(nil, "The import map must be a JSON object, got %s.", kind)
	}
	top, err := cueutil.Members(expr)
	if err != nil {
		return nil, malformed(err, "%v", err)
	}

	imports, hasImports := cueutil.Lookup(top, "imports")
	if hasImports && imports.Kind() != cueutil.KindObject {
		return nil, malformed(nil, "The \"imports\" top-level key must be a JSON object, got %s.", imports.Kind())
	}
	scopes, hasScopes := cueutil.Lookup(top, "scopes")
	if hasScopes && scopes.Kind() != cueutil.KindObject {
		return nil, malformed(nil, "The \"scopes\" top-level key must be a JSON object, got %s.", scopes.Kind())
	}

	p := &parser{base: base}
	seen := make(map[string]bool, len(top))
	for _, m := range top {
		switch m.Key {
		case "imports", "scopes":
			if seen[m.Key] {
				p.diags.Add(diagnostic.Diagnostic{
					Kind:    diagnostic.DuplicateKeyOverwritten,
					Message: "Duplicate top-level key \"" + m.Key + "\" overwrites the earlier definition.",
					Key:     m.Key,
					Pos:     m.Pos(),
				})
			}
			seen[m.Key] = true
		case "integrity":
		default:
			if !cfg.ignoreUnknownKeys {
				p.diags.Add(diagnostic.Diagnostic{
					Kind:    diagnostic.UnknownKey,
					Message: "Invalid top-level key \"" + m.Key + "\". Only \"imports\" and \"scopes\" can be present.",
					Key:     m.Key,
					Pos:     m.Pos(),
				})
			}
		}
	}

	result := &ParseResult{ImportMap: &ImportMap{}}
	if hasImports {
		if err := p.specifierMap(imports.Value, "", &result.ImportMap.Imports); err != nil {
			return nil, malformed(err, "%v", err)
		}
	}
	if hasScopes {
		if err := p.scopes(scopes.Value, &result.ImportMap.Scopes); err != nil {
			return nil, malformed(err, "%v", err)
		}
	}
	result.Diagnostics = p.diags.All()
	return result, nil
}

// specifierMap fills out from the members of obj. scope is the normalized
// scope prefix, or "" for the top-level imports.
func (p *parser) specifierMap(obj ast.Expr, scope string, out *SpecifierMap) error {
	members, err := cueutil.Members(obj)
	if err != nil {
		return err
	}

	for _, m := range members {
		key, ok := p.specifierKey(m, scope)
		if !ok {
			continue
		}
		addr, ok := p.address(m, key, scope)
		if !ok {
			continue
		}
		if out.set(key, addr) {
			p.diags.Add(diagnostic.Diagnostic{
				Kind:    diagnostic.DuplicateKeyOverwritten,
				Message: "Duplicate specifier key \"" + key + "\" overwrites the earlier mapping.",
				Key:     key,
				Scope:   scope,
				Pos:     m.Pos(),
			})
		}
	}
	return nil
}

func (p *parser) specifierKey(m cueutil.Member, scope string) (string, bool) {
	key, err := specifier.NormalizeKey(m.Key, p.base)
	if err == nil {
		return key, true
	}

	msg := "Invalid specifier key \"" + m.Key + "\": " + err.Error() + "."
	if errors.Is(err, specifier.ErrEmpty) {
		msg = "Invalid empty string specifier."
	}
	p.diags.Add(diagnostic.Diagnostic{
		Kind:    diagnostic.InvalidSpecifier,
		Message: msg,
		Key:     m.Key,
		Scope:   scope,
		Pos:     m.Pos(),
	})
	return "", false
}

func (p *parser) address(m cueutil.Member, key, scope string) (Address, bool) {
	d := diagnostic.Diagnostic{Key: key, Scope: scope, Pos: m.Pos()}

	switch m.Kind() {
	case cueutil.KindNull:
		return Address{}, true
	case cueutil.KindString:
	default:
		d.Kind = diagnostic.TypeMismatch
		d.Message = "Invalid address " + render(m.Value) + " for the specifier key \"" + key + "\". Addresses must be strings."
		p.diags.Add(d)
		return Address{}, false
	}

	raw, err := cueutil.StringValue(m.Value)
	if err != nil {
		d.Kind = diagnostic.TypeMismatch
		d.Message = "Invalid address " + render(m.Value) + " for the specifier key \"" + key + "\": " + err.Error() + "."
		p.diags.Add(d)
		return Address{}, false
	}

	target, err := specifier.Classify(raw, p.base)
	if err != nil || !target.IsURLLike() {
		d.Kind = diagnostic.InvalidMappingValue
		d.Message = "Invalid address \"" + raw + "\" for the specifier key \"" + key + "\"."
		p.diags.Add(d)
		return Address{}, false
	}

	if specifier.IsPrefix(key) && !strings.HasSuffix(target.Key(), "/") {
		d.Kind = diagnostic.InvalidMappingValue
		d.Message = "Invalid target address \"" + raw + "\" for package specifier \"" + key +
			"\". Package address targets must end with \"/\"."
		p.diags.Add(d)
		return Address{}, false
	}

	return Target(target.URL), true
}

func (p *parser) scopes(obj ast.Expr, out *ScopesMap) error {
	members, err := cueutil.Members(obj)
	if err != nil {
		return err
	}

	for _, m := range members {
		prefix, err := urlutil.Resolve(p.base, m.Key)
		if err != nil {
			p.diags.Add(diagnostic.Diagnostic{
				Kind:    diagnostic.InvalidScope,
				Message: "Invalid scope \"" + m.Key + "\" (parsed against base URL \"" + p.base.String() + "\").",
				Key:     m.Key,
				Pos:     m.Pos(),
			})
			continue
		}
		key := prefix.String()

		if m.Kind() != cueutil.KindObject {
			p.diags.Add(diagnostic.Diagnostic{
				Kind:    diagnostic.TypeMismatch,
				Message: "The value for the \"" + m.Key + "\" scope prefix must be an object.",
				Key:     m.Key,
				Scope:   key,
				Pos:     m.Pos(),
			})
			continue
		}

		scope := &SpecifierMap{}
		if err := p.specifierMap(m.Value, key, scope); err != nil {
			return err
		}
		if out.set(key, scope) {
			p.diags.Add(diagnostic.Diagnostic{
				Kind:    diagnostic.DuplicateKeyOverwritten,
				Message: "Duplicate scope \"" + key + "\" overwrites the earlier scope.",
				Key:     m.Key,
				Scope:   key,
				Pos:     m.Pos(),
			})
		}
	}
	return nil
}

// render formats a JSON value for a diagnostic message.
func render(x ast.Expr) string {
	b, err := format.Node(x, format.Simplify())
	if err != nil {
		return string(cueutil.KindOf(x))
	}
	return strings.Join(strings.Fields(string(b)), " ")
}
