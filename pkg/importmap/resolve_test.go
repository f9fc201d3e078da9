// SPDX-License-Identifier: MPL-2.0

package importmap

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"importmap-cli/pkg/urlutil"
)

func TestResolve(t *testing.T) {
	t.Parallel()

	m := mustParse(t, `{
		"imports": {
			"a/": "/x/",
			"a/b/": "/y/",
			"lodash": "/vendor/lodash.js",
			"https://e.com/app/": "/app-v2/",
			"npm:preact": "https://esm.sh/preact",
			"preact/": "https://esm.sh/preact/"
		},
		"scopes": {
			"/foo/": {"x": "/y"},
			"/foo/deep/": {"x": "/deep-y"},
			"/lib/": {"lodash": "/lib/lodash.js"}
		}
	}`).ImportMap

	tests := []struct {
		name      string
		specifier string
		referrer  string
		want      string
	}{
		{"longest prefix wins", "a/b/c", "https://e.com/main.js", "https://e.com/y/c"},
		{"shorter prefix", "a/c", "https://e.com/main.js", "https://e.com/x/c"},
		{"exact bare", "lodash", "https://e.com/main.js", "https://e.com/vendor/lodash.js"},
		{"url prefix", "/app/mod.js", "https://e.com/main.js", "https://e.com/app-v2/mod.js"},
		{"relative specifier normalized", "./app/mod.js", "https://e.com/main.js", "https://e.com/app-v2/mod.js"},
		{"absolute url key", "npm:preact", "https://e.com/main.js", "https://esm.sh/preact"},
		{"package subpath", "preact/hooks", "https://e.com/main.js", "https://esm.sh/preact/hooks"},
		{"scope applies", "x", "https://e.com/foo/bar.js", "https://e.com/y"},
		{"longest scope wins", "x", "https://e.com/foo/deep/bar.js", "https://e.com/deep-y"},
		{"scope overrides imports", "lodash", "https://e.com/lib/index.js", "https://e.com/lib/lodash.js"},
		{"falls back to imports from scope", "lodash", "https://e.com/foo/bar.js", "https://e.com/vendor/lodash.js"},
		{"prefix exact key", "a/", "https://e.com/main.js", "https://e.com/x/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := m.Resolve(tt.specifier, tt.referrer)
			if err != nil {
				t.Fatalf("Resolve(%q, %q) error = %v", tt.specifier, tt.referrer, err)
			}
			if got != tt.want {
				t.Errorf("Resolve(%q, %q) = %q, want %q", tt.specifier, tt.referrer, got, tt.want)
			}
		})
	}
}

func TestResolve_ScopeScenario(t *testing.T) {
	t.Parallel()

	m := mustParse(t, `{"scopes": {"/foo/": {"x": "/y"}}}`).ImportMap

	got, err := Resolve(m, "x", "https://e.com/foo/bar.js")
	if err != nil || got != "https://e.com/y" {
		t.Errorf("Resolve(x, foo/bar.js) = %q, %v; want https://e.com/y", got, err)
	}

	_, err = Resolve(m, "x", "https://e.com/baz.js")
	if !errors.Is(err, ErrUnmapped) {
		t.Errorf("Resolve(x, baz.js) error = %v, want ErrUnmapped", err)
	}
}

func TestResolve_ExactScopeKey(t *testing.T) {
	t.Parallel()

	m := mustParse(t, `{"scopes": {"/app.js": {"x": "/only-app.js"}}}`).ImportMap

	if got, err := m.Resolve("x", "https://e.com/app.js"); err != nil || got != "https://e.com/only-app.js" {
		t.Errorf("Resolve from exact scope = %q, %v", got, err)
	}
	if _, err := m.Resolve("x", "https://e.com/app.js2"); !errors.Is(err, ErrUnmapped) {
		t.Errorf("non-slash scope must match exactly, got %v", err)
	}
}

func TestResolve_ScopeTieLastDefinitionWins(t *testing.T) {
	t.Parallel()

	// Both keys normalize to the same prefix, so they tie on length.
	m := mustParse(t, `{"scopes": {
		"/s/": {"x": "/first.js"},
		"https://e.com/s/": {"x": "/last.js"}
	}}`).ImportMap

	got, err := m.Resolve("x", "https://e.com/s/mod.js")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got != "https://e.com/last.js" {
		t.Errorf("Resolve() = %q, want the last defined scope", got)
	}
}

func TestResolve_Errors(t *testing.T) {
	t.Parallel()

	m := mustParse(t, `{
		"imports": {
			"a": null,
			"blocked/": null,
			"pkg/": "/pkg/",
			"o/": "npm:/o/"
		},
		"scopes": {
			"/s/": {"a": "/scoped-a.js"}
		}
	}`).ImportMap

	tests := []struct {
		name         string
		specifier    string
		referrer     string
		wantKind     ResolveErrorKind
		wantSentinel error
		wantKey      string
		wantFallback string
	}{
		{"null entry blocks", "a", "https://e.com/main.js", Blocked, ErrBlocked, "a", ""},
		{"null prefix blocks", "blocked/mod.js", "https://e.com/main.js", Blocked, ErrBlocked, "blocked/", ""},
		{"no entry", "b", "https://e.com/main.js", Unmapped, ErrUnmapped, "", ""},
		{"unmapped url carries fallback", "./other.js", "https://e.com/dir/main.js", Unmapped, ErrUnmapped, "", "https://e.com/dir/other.js"},
		{"escapes prefix", "pkg/../../etc/passwd", "https://e.com/main.js", InvalidResolution, ErrInvalidResolution, "pkg/", ""},
		{"remainder reads as scheme", "pkg/x:y", "https://e.com/main.js", InvalidResolution, ErrInvalidResolution, "pkg/", ""},
		{"empty specifier", "", "https://e.com/main.js", InvalidResolution, ErrInvalidResolution, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := m.Resolve(tt.specifier, tt.referrer)
			if got != "" {
				t.Errorf("Resolve() = %q, want empty on error", got)
			}
			var rerr *ResolveError
			if !errors.As(err, &rerr) {
				t.Fatalf("error = %v, want *ResolveError", err)
			}
			if rerr.Kind != tt.wantKind {
				t.Errorf("Kind = %s, want %s", rerr.Kind, tt.wantKind)
			}
			if !errors.Is(err, tt.wantSentinel) {
				t.Errorf("errors.Is(%v, %v) = false", err, tt.wantSentinel)
			}
			if rerr.Key != tt.wantKey {
				t.Errorf("Key = %q, want %q", rerr.Key, tt.wantKey)
			}
			if rerr.Fallback != tt.wantFallback {
				t.Errorf("Fallback = %q, want %q", rerr.Fallback, tt.wantFallback)
			}
		})
	}

	t.Run("scope mapping hides blocked import", func(t *testing.T) {
		t.Parallel()

		got, err := m.Resolve("a", "https://e.com/s/main.js")
		if err != nil || got != "https://e.com/scoped-a.js" {
			t.Errorf("Resolve() = %q, %v", got, err)
		}
	})
}

func TestResolve_InvalidReferrer(t *testing.T) {
	t.Parallel()

	m := mustParse(t, `{"imports": {"a": "/a.js"}}`).ImportMap
	_, err := m.Resolve("a", "main.js")
	if !errors.Is(err, urlutil.ErrInvalidURL) {
		t.Errorf("error = %v, want urlutil.ErrInvalidURL", err)
	}
	var rerr *ResolveError
	if errors.As(err, &rerr) {
		t.Errorf("invalid referrer should not be a *ResolveError")
	}
}

func TestResolve_UnmappedWhenMapEmpty(t *testing.T) {
	t.Parallel()

	m := mustParse(t, `{}`).ImportMap
	for _, s := range []string{"lodash", "./x.js", "https://cdn.example/x.js", "@std/assert"} {
		if _, err := m.Resolve(s, "https://e.com/main.js"); !errors.Is(err, ErrUnmapped) {
			t.Errorf("Resolve(%q) error = %v, want ErrUnmapped", s, err)
		}
	}
}

func TestResolve_ColonAfterDotSegment(t *testing.T) {
	t.Parallel()

	m := mustParse(t, `{"imports": {"./rel:x.js": "/vendor/x.js"}}`).ImportMap

	got, err := m.Resolve("./rel:x.js", "https://e.com/m.js")
	if err != nil {
		t.Fatalf("Resolve(./rel:x.js) error = %v", err)
	}
	if got != "https://e.com/vendor/x.js" {
		t.Errorf("Resolve(./rel:x.js) = %q, want https://e.com/vendor/x.js", got)
	}

	_, err = m.Resolve("../a:b.js", "https://e.com/dir/m.js")
	var re *ResolveError
	if !errors.As(err, &re) || re.Kind != Unmapped {
		t.Fatalf("Resolve(../a:b.js) error = %v, want Unmapped", err)
	}
	if re.Fallback != "https://e.com/a:b.js" {
		t.Errorf("Fallback = %q, want https://e.com/a:b.js", re.Fallback)
	}
}

func TestResolve_UnreservedEscapesMatch(t *testing.T) {
	t.Parallel()

	m := mustParse(t, `{"imports": {"https://e.com/%7euser/": "/home/"}}`).ImportMap

	got, err := m.Resolve("https://e.com/~user/x.js", "https://e.com/m.js")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got != "https://e.com/home/x.js" {
		t.Errorf("Resolve() = %q, want https://e.com/home/x.js", got)
	}
}

func TestResolveError_Messages(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")
	tests := []struct {
		err  *ResolveError
		want string
	}{
		{&ResolveError{Kind: Blocked, Specifier: "a", Key: "a"}, `blocked by null entry for "a"`},
		{&ResolveError{Kind: Unmapped, Specifier: "a", Referrer: "https://e.com/"}, `specifier "a" is not mapped by the import map (referrer "https://e.com/")`},
		{&ResolveError{Kind: InvalidResolution, Specifier: "a", Referrer: "https://e.com/", Err: cause}, `cannot resolve "a" from "https://e.com/": boom`},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
	if !errors.Is(tests[2].err, cause) {
		t.Error("InvalidResolution should unwrap to its cause")
	}
}

func TestResolve_Concurrent(t *testing.T) {
	t.Parallel()

	m := mustParse(t, `{"imports": {"a/": "/x/", "a/b/": "/y/"}, "scopes": {"/s/": {"a/": "/z/"}}}`).ImportMap

	var wg sync.WaitGroup
	errs := make(chan error, 64)
	for i := range 64 {
		wg.Add(1)
		go func() {
			defer wg.Done()

			spec := fmt.Sprintf("a/b/%d.js", i)
			got, err := m.Resolve(spec, "https://e.com/main.js")
			if err != nil {
				errs <- err
				return
			}
			if want := fmt.Sprintf("https://e.com/y/%d.js", i); got != want {
				errs <- fmt.Errorf("Resolve(%q) = %q, want %q", spec, got, want)
				return
			}
			if got, err := m.Resolve("a/q.js", "https://e.com/s/m.js"); err != nil || got != "https://e.com/z/q.js" {
				errs <- fmt.Errorf("scoped Resolve = %q, %v", got, err)
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}
