// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"importmap-cli/pkg/diagnostic"
)

type Id int

const (
	FileNotFoundId Id = iota + 1
	ConfigLoadFailedId
	MalformedDocumentId
	InvalidBaseURLId
	InvalidSpecifierId
	InvalidMappingValueId
	InvalidScopeId
	TypeMismatchId
	DuplicateKeyId
	UnknownKeyId
	BlockedSpecifierId
	UnmappedSpecifierId
	InvalidResolutionId
	DenoConfigNotFoundId
	DenoConfigInvalidId
)

type MarkdownMsg string

type HttpLink string

type Renderer interface {
	Render(in string, stylePath string) (string, error)
}

type Issue struct {
	id       Id          // ID used to lookup the issue
	slug     string      // name accepted by `importmap explain`
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink
	extLinks []HttpLink // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

// Slug returns the kebab-case name of the issue.
func (i *Issue) Slug() string {
	return i.slug
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extraMd += "\n\n"
		extraMd += "## See also\n"
		for _, link := range i.docLinks {
			extraMd += "- [" + string(link) + "](" + string(link) + ")\n"
		}
		for _, link := range i.extLinks {
			extraMd += "- [" + string(link) + "](" + string(link) + ")\n"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

const (
	whatwgImportMaps HttpLink = "https://html.spec.whatwg.org/multipage/webappapis.html#import-maps"
	mdnImportMaps    HttpLink = "https://developer.mozilla.org/en-US/docs/Web/HTML/Element/script/type/importmap"
	denoImportMaps   HttpLink = "https://docs.deno.com/runtime/fundamentals/modules/#import-maps"
)

var (
	render = glamour.Render

	fileNotFoundIssue = &Issue{
		id:   FileNotFoundId,
		slug: "file-not-found",
		mdMsg: `
# Import map file not found!

The file given on the command line does not exist or is not readable.

## Things you can try:
- Check the path and your current directory:
~~~
$ importmap parse ./import_map.json
~~~
- Read the document from standard input instead:
~~~
$ cat import_map.json | importmap parse -
~~~`,
	}

	configLoadFailedIssue = &Issue{
		id:   ConfigLoadFailedId,
		slug: "config-load-failed",
		mdMsg: `
# Failed to load configuration!

The configuration file exists but could not be decoded or does not match the schema.

## Things you can try:
- Show where the configuration is read from:
~~~
$ importmap config path
~~~
- Regenerate a default configuration:
~~~
$ importmap config init --force
~~~
- Valid values for ` + "`output`" + ` are text, json, toml and cue.`,
	}

	malformedDocumentIssue = &Issue{
		id:       MalformedDocumentId,
		slug:     "malformed-document",
		docLinks: []HttpLink{whatwgImportMaps},
		mdMsg: `
# Malformed import map!

The document is not valid JSON, or its top level, "imports" or "scopes" value is not an object.
No partial result is produced.

## A minimal import map:
~~~json
{
  "imports": {
    "lodash": "/vendor/lodash.js"
  },
  "scopes": {}
}
~~~

## Things you can try:
- Use --jsonc if the file contains comments.
- Check for trailing commas and unquoted keys.`,
	}

	invalidBaseURLIssue = &Issue{
		id:   InvalidBaseURLId,
		slug: "invalid-base-url",
		mdMsg: `
# Invalid base URL!

Relative addresses and scope prefixes are resolved against the base URL, so it must be absolute.

## Things you can try:
- Pass an absolute URL:
~~~
$ importmap parse --base-url https://example.com/ import_map.json
~~~
- Omit --base-url to use the document's file URL.`,
	}

	invalidSpecifierIssue = &Issue{
		id:       InvalidSpecifierId,
		slug:     "invalid-specifier",
		docLinks: []HttpLink{whatwgImportMaps},
		mdMsg: `
# Invalid specifier key

The entry was dropped because its key is empty, or it looks like a path
("/", "./", "../") but does not resolve against the base URL.`,
	}

	invalidMappingValueIssue = &Issue{
		id:       InvalidMappingValueId,
		slug:     "invalid-mapping-value",
		docLinks: []HttpLink{whatwgImportMaps},
		mdMsg: `
# Invalid mapping value

The entry was dropped because its address is not a usable URL.

- Addresses are resolved against the base URL.
- A key ending in "/" maps a whole package, so its address must end in "/" too:
~~~json
{ "imports": { "preact/": "https://esm.sh/preact/" } }
~~~`,
	}

	invalidScopeIssue = &Issue{
		id:       InvalidScopeId,
		slug:     "invalid-scope",
		docLinks: []HttpLink{whatwgImportMaps},
		mdMsg: `
# Invalid scope

The scope was dropped because its prefix does not parse as a URL against the base URL.`,
	}

	typeMismatchIssue = &Issue{
		id:       TypeMismatchId,
		slug:     "type-mismatch",
		docLinks: []HttpLink{whatwgImportMaps},
		mdMsg: `
# Type mismatch

A value has the wrong JSON type and was skipped.

- Addresses must be strings or null.
- Scope values must be objects.`,
	}

	duplicateKeyIssue = &Issue{
		id:   DuplicateKeyId,
		slug: "duplicate-key",
		mdMsg: `
# Duplicate key

A key appears twice in the same object. The later value replaces the earlier one
and keeps the earlier position. This is informational and does not fail --strict.`,
	}

	unknownKeyIssue = &Issue{
		id:       UnknownKeyId,
		slug:     "unknown-key",
		docLinks: []HttpLink{whatwgImportMaps},
		mdMsg: `
# Unknown top-level key

Only "imports" and "scopes" are meaningful at the top level. The key was ignored.

## Things you can try:
- Check for typos such as "import" or "scope".
- Pass --ignore-unknown-keys when the map lives inside a larger document.`,
	}

	blockedSpecifierIssue = &Issue{
		id:       BlockedSpecifierId,
		slug:     "blocked-specifier",
		extLinks: []HttpLink{mdnImportMaps},
		mdMsg: `
# Blocked specifier

The best matching entry maps the specifier to null, which blocks it.
Remove the entry or give it an address to allow the import.`,
	}

	unmappedSpecifierIssue = &Issue{
		id:       UnmappedSpecifierId,
		slug:     "unmapped-specifier",
		extLinks: []HttpLink{mdnImportMaps},
		mdMsg: `
# Unmapped specifier

No entry in the matching scopes or in "imports" covers the specifier.
When the specifier is itself a URL, the fallback shown is where a host would load it from.

## Things you can try:
- Add an exact entry or a package prefix ending in "/":
~~~json
{ "imports": { "lodash/": "/vendor/lodash/" } }
~~~`,
	}

	invalidResolutionIssue = &Issue{
		id:       InvalidResolutionId,
		slug:     "invalid-resolution",
		docLinks: []HttpLink{whatwgImportMaps},
		mdMsg: `
# Invalid resolution

A prefix entry matched, but the rest of the specifier did not resolve to a URL
under the mapped address, for example because of ".." segments.`,
	}

	denoConfigNotFoundIssue = &Issue{
		id:       DenoConfigNotFoundId,
		slug:     "deno-config-not-found",
		extLinks: []HttpLink{denoImportMaps},
		mdMsg: `
# No deno.json found!

We searched the directory and its parents for deno.json or deno.jsonc.

## Things you can try:
- Point at the file directly:
~~~
$ importmap deno --deno-config ./deno.jsonc
~~~`,
	}

	denoConfigInvalidIssue = &Issue{
		id:       DenoConfigInvalidId,
		slug:     "deno-config-invalid",
		extLinks: []HttpLink{denoImportMaps},
		mdMsg: `
# Invalid deno configuration

The configuration file was found, but "imports", "scopes" or "importMap" has the wrong type,
or the referenced import map file could not be read.

## Expected shape:
~~~json
{
  "imports": { "@std/assert": "jsr:@std/assert@1" },
  "importMap": "./import_map.json"
}
~~~`,
	}

	issues = map[Id]*Issue{
		fileNotFoundIssue.Id():        fileNotFoundIssue,
		configLoadFailedIssue.Id():    configLoadFailedIssue,
		malformedDocumentIssue.Id():   malformedDocumentIssue,
		invalidBaseURLIssue.Id():      invalidBaseURLIssue,
		invalidSpecifierIssue.Id():    invalidSpecifierIssue,
		invalidMappingValueIssue.Id(): invalidMappingValueIssue,
		invalidScopeIssue.Id():        invalidScopeIssue,
		typeMismatchIssue.Id():        typeMismatchIssue,
		duplicateKeyIssue.Id():        duplicateKeyIssue,
		unknownKeyIssue.Id():          unknownKeyIssue,
		blockedSpecifierIssue.Id():    blockedSpecifierIssue,
		unmappedSpecifierIssue.Id():   unmappedSpecifierIssue,
		invalidResolutionIssue.Id():   invalidResolutionIssue,
		denoConfigNotFoundIssue.Id():  denoConfigNotFoundIssue,
		denoConfigInvalidIssue.Id():   denoConfigInvalidIssue,
	}

	diagnosticIssues = map[diagnostic.Kind]Id{
		diagnostic.InvalidSpecifier:        InvalidSpecifierId,
		diagnostic.InvalidMappingValue:     InvalidMappingValueId,
		diagnostic.InvalidScope:            InvalidScopeId,
		diagnostic.TypeMismatch:            TypeMismatchId,
		diagnostic.DuplicateKeyOverwritten: DuplicateKeyId,
		diagnostic.UnknownKey:              UnknownKeyId,
	}
)

// Values returns every issue ordered by Id.
func Values() []*Issue {
	out := maps.Values(issues)
	slices.SortFunc(out, func(a, b *Issue) int { return int(a.id) - int(b.id) })
	return out
}

func Get(id Id) *Issue {
	return issues[id]
}

// ForDiagnostic returns the issue explaining a diagnostic kind, or nil.
func ForDiagnostic(kind diagnostic.Kind) *Issue {
	id, ok := diagnosticIssues[kind]
	if !ok {
		return nil
	}
	return issues[id]
}

// Lookup finds an issue by slug or by diagnostic kind name, ignoring case.
func Lookup(name string) *Issue {
	name = strings.TrimSpace(name)
	for _, i := range issues {
		if strings.EqualFold(i.slug, name) {
			return i
		}
	}
	for kind, id := range diagnosticIssues {
		if strings.EqualFold(string(kind), name) {
			return issues[id]
		}
	}
	return nil
}
