// SPDX-License-Identifier: MPL-2.0

package urlutil

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple https", "https://example.com/a.js", "https://example.com/a.js"},
		{"empty path becomes slash", "https://example.com", "https://example.com/"},
		{"host and scheme lowercased", "HTTPS://Example.COM/A.js", "https://example.com/A.js"},
		{"default port dropped", "https://example.com:443/x", "https://example.com/x"},
		{"non-default port kept", "http://example.com:8080/x", "http://example.com:8080/x"},
		{"dot segments removed", "https://example.com/a/./b/../c.js", "https://example.com/a/c.js"},
		{"encoded dot segments removed", "https://example.com/a/%2e%2E/b", "https://example.com/b"},
		{"trailing double dot keeps slash", "https://example.com/a/b/..", "https://example.com/a/"},
		{"escapes uppercased", "https://example.com/%c3%a9", "https://example.com/%C3%A9"},
		{"unreserved escapes decoded", "https://example.com/%7euser/%41%2D%5f.js", "https://example.com/~user/A-_.js"},
		{"reserved escapes kept", "https://example.com/a%2fb%3a", "https://example.com/a%2Fb%3A"},
		{"disallowed bytes escaped", "https://example.com/my file.js", "https://example.com/my%20file.js"},
		{"backslashes in special scheme", `https://example.com\a\b`, "https://example.com/a/b"},
		{"missing slashes after special scheme", "https:example.com/x", "https://example.com/x"},
		{"surrounding whitespace trimmed", "  https://example.com/x \n", "https://example.com/x"},
		{"tabs removed", "https://exa\tmple.com/x", "https://example.com/x"},
		{"query and fragment kept", "https://example.com/x?a=1#frag", "https://example.com/x?a=1#frag"},
		{"file localhost", "file://localhost/tmp/x", "file:///tmp/x"},
		{"file without slashes", "file:tmp/x", "file:///tmp/x"},
		{"opaque registry", "npm:preact@10", "npm:preact@10"},
		{"registry with path", "npm:/preact@10/hooks", "npm:/preact@10/hooks"},
		{"jsr scoped", "jsr:@std/assert", "jsr:@std/assert"},
		{"node builtin", "node:fs", "node:fs"},
		{"data url", "data:text/javascript,export default 1", "data:text/javascript,export default 1"},
		{"ipv6 host", "http://[::1]:8080/", "http://[::1]:8080/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			u, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse(%q) unexpected error: %v", tt.input, err)
			}
			if got := u.String(); got != tt.want {
				t.Errorf("Parse(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
	}{
		{"relative without base", "./a.js"},
		{"absolute path without base", "/a.js"},
		{"bare name", "lodash"},
		{"empty", ""},
		{"missing host", "https://"},
		{"bad escape", "https://example.com/%zz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse(tt.input)
			if err == nil {
				t.Fatalf("Parse(%q) expected error", tt.input)
			}
			if !errors.Is(err, ErrInvalidURL) {
				t.Errorf("error should wrap ErrInvalidURL, got: %v", err)
			}
			var uErr *Error
			if !errors.As(err, &uErr) {
				t.Fatalf("error should be *Error, got: %T", err)
			}
			if uErr.Input != tt.input {
				t.Errorf("Error.Input = %q, want %q", uErr.Input, tt.input)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		base string
		ref  string
		want string
	}{
		{"sibling", "https://e.com/a/b.js", "./c.js", "https://e.com/a/c.js"},
		{"parent", "https://e.com/a/b/c.js", "../d.js", "https://e.com/a/d.js"},
		{"parent above root", "https://e.com/a.js", "../../x.js", "https://e.com/x.js"},
		{"absolute path", "https://e.com/a/b.js", "/y", "https://e.com/y"},
		{"network path", "https://e.com/a", "//cdn.com/x.js", "https://cdn.com/x.js"},
		{"absolute ref wins", "https://e.com/a", "http://other.com/", "http://other.com/"},
		{"query only", "https://e.com/a?x=1", "?y=2", "https://e.com/a?y=2"},
		{"fragment only", "https://e.com/a?x=1", "#top", "https://e.com/a?x=1#top"},
		{"same scheme without slashes", "https://e.com/dir/", "https:x.js", "https://e.com/dir/x.js"},
		{"backslash relative", "https://e.com/dir/", `.\x.js`, "https://e.com/dir/x.js"},
		{"hierarchical registry base", "npm:/preact@10/", "hooks", "npm:/preact@10/hooks"},
		{"file base", "file:///project/deno.json", "./import_map.json", "file:///project/import_map.json"},
		{"colon after dot segment", "https://e.com/m.js", "./rel:x.js", "https://e.com/rel:x.js"},
		{"colon after parent segment", "https://e.com/a/m.js", "../a:b.js", "https://e.com/a:b.js"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			base, err := Parse(tt.base)
			if err != nil {
				t.Fatalf("Parse(%q) unexpected error: %v", tt.base, err)
			}
			u, err := Resolve(base, tt.ref)
			if err != nil {
				t.Fatalf("Resolve(%q, %q) unexpected error: %v", tt.base, tt.ref, err)
			}
			if got := u.String(); got != tt.want {
				t.Errorf("Resolve(%q, %q) = %q, want %q", tt.base, tt.ref, got, tt.want)
			}
		})
	}
}

func TestResolve_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		base string
		ref  string
	}{
		{"colon in first absolute-path segment", "https://e.com/", "/bad:url"},
		{"colon in first relative segment", "https://e.com/dir/", "1x:y.js"},
		{"relative against opaque base", "npm:preact", "hooks"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			base, err := Parse(tt.base)
			if err != nil {
				t.Fatalf("Parse(%q) unexpected error: %v", tt.base, err)
			}
			if _, err := Resolve(base, tt.ref); !errors.Is(err, ErrInvalidURL) {
				t.Errorf("Resolve(%q, %q) error = %v, want ErrInvalidURL", tt.base, tt.ref, err)
			}
		})
	}
}

func TestURL_IsSpecial(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  string
		want bool
	}{
		{"HTTPS://E.com:8443/a/b?q", true},
		{"file:///tmp/x", true},
		{"npm:preact", false},
		{"jsr:@std/assert", false},
	}

	for _, tt := range tests {
		u, err := Parse(tt.raw)
		if err != nil {
			t.Fatalf("Parse(%q) error = %v", tt.raw, err)
		}
		if got := u.IsSpecial(); got != tt.want {
			t.Errorf("Parse(%q).IsSpecial() = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestRemoveDotSegments(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"":           "",
		"/":          "/",
		"/a/b/../c":  "/a/c",
		"/..":        "/",
		"/a/./b":     "/a/b",
		"/a/b/.":     "/a/b/",
		"/a/.%2E/b/": "/b/",
	}
	for in, want := range tests {
		if got := removeDotSegments(in); got != want {
			t.Errorf("removeDotSegments(%q) = %q, want %q", in, got, want)
		}
	}
}
